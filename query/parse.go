package query

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/pombredanne/mentat"
)

// ParseFnArg parses a single argument literal in EDN-ish syntax:
// integers, floats, strings, booleans, keywords (:ns/name), variables
// (?x), source variables ($db), tagged literals (#inst "...",
// #uuid "..."), and vectors of the above.  Integer literals that
// overflow int64 become big-integer constants.
func ParseFnArg(input string) (FnArg, error) {
	p := &argParser{input: input}
	arg, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("trailing input after argument: %q", p.input[p.pos:])
	}
	return arg, nil
}

type argParser struct {
	input string
	pos   int
}

func (p *argParser) parse() (FnArg, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("empty argument")
	}
	switch c := p.input[p.pos]; {
	case c == '[':
		return p.parseVector()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return TextConstant(s), nil
	case c == '#':
		return p.parseTagged()
	case c == ':':
		return IdentOrKeyword{Ident: p.parseKeyword()}, nil
	case c == '?':
		v, err := NewVariable(p.takeSymbol())
		if err != nil {
			return nil, err
		}
		return VariableArg{Var: v}, nil
	case c == '$':
		return SrcVar(p.takeSymbol()), nil
	case c == '-' || c == '+' || unicode.IsDigit(rune(c)):
		return p.parseNumber()
	default:
		sym := p.takeSymbol()
		switch sym {
		case "true":
			return BooleanConstant(true), nil
		case "false":
			return BooleanConstant(false), nil
		}
		return nil, fmt.Errorf("unrecognized argument %q", sym)
	}
}

func (p *argParser) parseVector() (FnArg, error) {
	p.pos++ // consume '['
	var elems Vector
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("unterminated vector")
		}
		if p.input[p.pos] == ']' {
			p.pos++
			return elems, nil
		}
		elem, err := p.parse()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
}

func (p *argParser) parseString() (string, error) {
	start := p.pos
	p.pos++ // consume opening quote
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '\\':
			p.pos += 2
		case '"':
			p.pos++
			return strconv.Unquote(p.input[start:p.pos])
		default:
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *argParser) parseTagged() (FnArg, error) {
	tag := p.takeSymbol()
	p.skipSpace()
	if p.pos >= len(p.input) || p.input[p.pos] != '"' {
		return nil, fmt.Errorf("%s must be followed by a string literal", tag)
	}
	s, err := p.parseString()
	if err != nil {
		return nil, err
	}
	switch tag {
	case "#inst":
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("invalid instant %q: %w", s, err)
		}
		return InstantConstant(t), nil
	case "#uuid":
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid uuid %q: %w", s, err)
		}
		return UuidConstant(u), nil
	}
	return nil, fmt.Errorf("unrecognized tagged literal %s", tag)
}

func (p *argParser) parseKeyword() *mentat.Keyword {
	sym := strings.TrimPrefix(p.takeSymbol(), ":")
	if ns, name, ok := strings.Cut(sym, "/"); ok {
		return mentat.NewKeyword(ns, name)
	}
	return mentat.NewKeyword("", sym)
}

func (p *argParser) parseNumber() (FnArg, error) {
	sym := p.takeSymbol()
	if strings.ContainsAny(sym, ".eE") {
		f, err := strconv.ParseFloat(sym, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", sym, err)
		}
		return FloatConstant(f), nil
	}
	x, err := strconv.ParseInt(sym, 10, 64)
	if err == nil {
		return EntidOrInteger(x), nil
	}
	// Out of int64 range is still a valid literal.
	if n, ok := new(big.Int).SetString(sym, 10); ok {
		return BigIntegerConstant{Int: n}, nil
	}
	return nil, fmt.Errorf("invalid number %q", sym)
}

// takeSymbol consumes a run of non-delimiter characters.
func (p *argParser) takeSymbol() string {
	start := p.pos
	for p.pos < len(p.input) && !isDelimiter(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *argParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t' || p.input[p.pos] == ',' || p.input[p.pos] == '\n') {
		p.pos++
	}
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', ',', '[', ']', '"':
		return true
	}
	return false
}
