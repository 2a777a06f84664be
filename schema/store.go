package schema

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/pombredanne/mentat"
)

// Store persists a schema in a SQLite database so the catalog survives
// between runs of the tooling.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

const createIdentsTable = `
CREATE TABLE IF NOT EXISTS idents (
    ident      TEXT PRIMARY KEY,
    entid      INTEGER NOT NULL UNIQUE,
    value_type TEXT
)`

// OpenStore opens or creates the store at path.  A nil logger disables
// logging.
func OpenStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening schema store: %w", err)
	}
	if _, err := db.Exec(createIdentsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema store: %w", err)
	}
	logger.Debug("schema store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes every attribute of schema, replacing existing rows.
func (s *Store) Save(schema *Schema) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO idents (ident, entid, value_type) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	var n int
	var saveErr error
	schema.Attributes(func(ident *mentat.Keyword, entid int64, t mentat.ValueType, ok bool) {
		if saveErr != nil {
			return
		}
		var valueType any
		if ok {
			valueType = t.String()
		}
		if _, err := stmt.Exec(ident.String(), entid, valueType); err != nil {
			saveErr = fmt.Errorf("saving ident %s: %w", ident, err)
			return
		}
		n++
	})
	if saveErr != nil {
		return saveErr
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("schema saved", zap.Int("attributes", n))
	return nil
}

// Load reads the stored schema.
func (s *Store) Load() (*Schema, error) {
	rows, err := s.db.Query(`SELECT ident, entid, value_type FROM idents`)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	defer rows.Close()
	schema := New()
	for rows.Next() {
		var identText string
		var entid int64
		var valueType sql.NullString
		if err := rows.Scan(&identText, &entid, &valueType); err != nil {
			return nil, err
		}
		ident, err := parseIdent(identText)
		if err != nil {
			return nil, fmt.Errorf("corrupt schema store: %w", err)
		}
		if !valueType.Valid {
			if err := schema.Define(ident, entid); err != nil {
				return nil, err
			}
			continue
		}
		t, ok := mentat.ValueTypeByName(valueType.String)
		if !ok {
			return nil, fmt.Errorf("corrupt schema store: unknown value type %q for %s", valueType.String, identText)
		}
		if err := schema.DefineAttribute(ident, entid, t); err != nil {
			return nil, err
		}
	}
	return schema, rows.Err()
}
