// Command mentat is a debugging tool for the query algebrizer: it
// resolves a single argument literal against a schema and a set of
// declared variable types, printing the conversion outcome the way the
// planner would see it.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pombredanne/mentat"
	"github.com/pombredanne/mentat/algebrizer"
	"github.com/pombredanne/mentat/query"
	"github.com/pombredanne/mentat/schema"
)

var (
	schemaPath string
	storePath  string
	varName    string
	attrName   string
	typeNames  []string
	bindings   []string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "mentat",
	Short:         "query algebrizer debugging tool",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger = zap.NewNop()
		}
		return err
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [ flags ] argument",
	Short: "resolve one argument literal against declared variable types",
	Long: `Resolve parses a single argument literal (an integer, keyword,
string, boolean, #inst, #uuid, float, or input variable reference),
then converts it for binding to the destination variable exactly as the
algebrizer would while compiling a query clause.  The variable's
admissible types come from --types, from the declared value type of the
attribute named by --attr, or both intersected.  The outcome is either
a typed value, an "impossible" explanation of why the clause can never
match, or a hard query error.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

var importCmd = &cobra.Command{
	Use:   "import [ flags ] schema.yaml",
	Short: "import a YAML schema description into a schema store",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	resolveCmd.Flags().StringVar(&schemaPath, "schema", "", "path to a YAML schema description")
	resolveCmd.Flags().StringVar(&storePath, "db", "", "path to a SQLite schema store")
	resolveCmd.Flags().StringVar(&varName, "var", "?v", "destination variable")
	resolveCmd.Flags().StringSliceVar(&typeNames, "types", nil, "admissible value types for the variable (default any)")
	resolveCmd.Flags().StringVar(&attrName, "attr", "", "attribute ident whose declared value type seeds the variable's types")
	resolveCmd.Flags().StringArrayVar(&bindings, "in", nil, "input binding of the form ?var=literal (repeatable)")
	importCmd.Flags().StringVar(&storePath, "db", "schema.db", "path to the SQLite schema store to write")
	rootCmd.AddCommand(resolveCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mentat: %s\n", err)
		os.Exit(1)
	}
}

func runResolve(cmd *cobra.Command, args []string) error {
	catalog, err := loadSchema()
	if err != nil {
		return err
	}
	v, err := query.NewVariable(varName)
	if err != nil {
		return err
	}
	arg, err := query.ParseFnArg(args[0])
	if err != nil {
		return err
	}
	cc := algebrizer.NewConjoiningClauses()
	if err := applyBindings(cc, bindings); err != nil {
		return err
	}
	declared, err := parseTypes(typeNames)
	if err != nil {
		return err
	}
	cc.ConstrainVarToTypes(v, declared)
	if attrName != "" {
		if err := constrainToAttribute(cc, catalog, v, attrName); err != nil {
			return err
		}
	}
	knownTypes := cc.KnownTypes(v)
	if t, ok := cc.KnownType(v); ok {
		logger.Debug("variable type fully determined",
			zap.Stringer("var", v),
			zap.Stringer("type", t))
	}
	logger.Debug("resolving argument",
		zap.Stringer("var", v),
		zap.Stringer("arg", arg),
		zap.Stringer("types", knownTypes))
	conversion, err := cc.TypedValueFromArg(catalog, v, arg, knownTypes)
	if err != nil {
		return fmt.Errorf("query error: %w", err)
	}
	switch conversion := conversion.(type) {
	case algebrizer.Val:
		fmt.Println(formatValue(catalog, conversion.Value))
	case algebrizer.Impossible:
		fmt.Printf("impossible: %s\n", conversion.Reason)
	}
	return nil
}

// constrainToAttribute narrows v to the declared value type of the
// named attribute, so a literal resolves the way it would in a pattern
// against that attribute.
func constrainToAttribute(cc *algebrizer.ConjoiningClauses, s *schema.Schema, v query.Variable, name string) error {
	arg, err := query.ParseFnArg(name)
	if err != nil {
		return fmt.Errorf("invalid attribute %q: %w", name, err)
	}
	ident, ok := arg.(query.IdentOrKeyword)
	if !ok {
		return fmt.Errorf("attribute must be an ident, got %s", arg)
	}
	entid, ok := s.LookupEntid(ident.Ident)
	if !ok {
		return fmt.Errorf("unknown attribute %s", ident.Ident)
	}
	t, ok := s.AttributeType(entid)
	if !ok {
		return fmt.Errorf("attribute %s has no declared value type", ident.Ident)
	}
	cc.ConstrainVarToTypes(v, mentat.OfOne(t))
	return nil
}

// formatValue renders a resolved value, annotating refs with their
// ident when the schema knows one.
func formatValue(s *schema.Schema, value mentat.TypedValue) string {
	if ref, ok := value.(mentat.Ref); ok {
		if ident, ok := s.LookupIdent(int64(ref)); ok {
			return fmt.Sprintf("%s: %s (%s)", value.Type(), value, ident)
		}
	}
	return fmt.Sprintf("%s: %s", value.Type(), value)
}

func runImport(cmd *cobra.Command, args []string) error {
	s, err := schema.LoadYAML(args[0])
	if err != nil {
		return err
	}
	store, err := schema.OpenStore(storePath, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(s); err != nil {
		return err
	}
	fmt.Printf("imported %s into %s\n", args[0], storePath)
	return nil
}

// loadSchema reads the catalog from --schema or --db, or returns an
// empty schema when neither is given.
func loadSchema() (*schema.Schema, error) {
	switch {
	case schemaPath != "" && storePath != "":
		return nil, errors.New("use --schema or --db, not both")
	case schemaPath != "":
		return schema.LoadYAML(schemaPath)
	case storePath != "":
		store, err := schema.OpenStore(storePath, logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load()
	default:
		return schema.New(), nil
	}
}

func parseTypes(names []string) (mentat.ValueTypeSet, error) {
	if len(names) == 0 {
		return mentat.AnyValueType, nil
	}
	var set mentat.ValueTypeSet
	for _, name := range names {
		t, ok := mentat.ValueTypeByName(strings.TrimSpace(name))
		if !ok {
			return 0, fmt.Errorf("unknown value type %q", name)
		}
		set = set.Union(mentat.OfOne(t))
	}
	return set, nil
}

// applyBindings declares and binds input variables from ?var=literal
// pairs.  A bare ?var declares the input without supplying a value.
func applyBindings(cc *algebrizer.ConjoiningClauses, bindings []string) error {
	for _, binding := range bindings {
		name, literal, found := strings.Cut(binding, "=")
		v, err := query.NewVariable(name)
		if err != nil {
			return fmt.Errorf("invalid binding %q: %w", binding, err)
		}
		cc.DeclareInput(v)
		if !found {
			continue
		}
		arg, err := query.ParseFnArg(literal)
		if err != nil {
			return fmt.Errorf("invalid binding %q: %w", binding, err)
		}
		value, err := constantValue(arg)
		if err != nil {
			return fmt.Errorf("invalid binding %q: %w", binding, err)
		}
		cc.BindValue(v, value)
	}
	return nil
}

// constantValue interprets a parsed literal as an input value.  Integer
// literals bind as longs; idents bind as keywords.
func constantValue(arg query.FnArg) (mentat.TypedValue, error) {
	switch arg := arg.(type) {
	case query.EntidOrInteger:
		return mentat.Long(arg), nil
	case query.IdentOrKeyword:
		return arg.Ident, nil
	case query.Constant:
		return constantTypedValue(arg)
	}
	return nil, fmt.Errorf("%s cannot be bound as an input value", arg)
}

func constantTypedValue(c query.Constant) (mentat.TypedValue, error) {
	switch c := c.(type) {
	case query.BooleanConstant:
		return mentat.Boolean(c), nil
	case query.InstantConstant:
		return mentat.Instant(c), nil
	case query.UuidConstant:
		return mentat.Uuid(c), nil
	case query.FloatConstant:
		return mentat.Double(c), nil
	case query.TextConstant:
		return mentat.String(c), nil
	}
	return nil, fmt.Errorf("%s cannot be bound as an input value", c)
}
