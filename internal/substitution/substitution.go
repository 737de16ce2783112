// Package substitution parses and evaluates the $(...) expression grammar
// embedded in launch description attribute values. Parsing and evaluation
// are separate steps: a Template is an immutable parse result, and Eval
// resolves it against an explicit Resolver, never against process globals.
package substitution

import (
	"fmt"
	"strings"
)

// Part is one segment of a parsed template: either a Literal or a Call.
type Part interface {
	isPart()
}

// Literal is a run of plain text between substitutions.
type Literal struct {
	Text string
}

func (Literal) isPart() {}

// Call is a single $(name arg...) substitution. Each argument is itself a
// Template, so calls may nest.
type Call struct {
	Name string
	Args []Template
	// Offset is the byte position of the opening "$(" within the source
	// string, used for error reporting.
	Offset int
}

func (Call) isPart() {}

// Template is a fully parsed attribute value.
type Template struct {
	Source string
	Parts  []Part
}

// HasCalls reports whether the template contains any substitution at all.
func (t Template) HasCalls() bool {
	for _, p := range t.Parts {
		if _, ok := p.(Call); ok {
			return true
		}
	}
	return false
}

// Resolver supplies the values a template evaluation needs. Implementations
// must be pure lookups; Eval calls them at most once per reference.
type Resolver interface {
	// LookupVar returns the resolved value of a launch argument.
	LookupVar(name string) (string, error)
	// LookupEnv returns the value of an environment variable and whether
	// it is set. It must never consult the process environment directly
	// unless the implementation explicitly chooses to snapshot it.
	LookupEnv(name string) (string, bool)
	// PackageShare returns the share directory of a named package.
	PackageShare(name string) (string, error)
}

// ParseError describes a malformed substitution within an attribute value.
type ParseError struct {
	Source string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid substitution in %q at offset %d: %s", e.Source, e.Offset, e.Msg)
}

// Parse splits an attribute value into literal runs and $(...) calls.
// A "$" not followed by "(" is treated as literal text.
func Parse(s string) (Template, error) {
	t := Template{Source: s}
	var lit strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == '$' && i+1 < len(s) && s[i+1] == '(' {
			if lit.Len() > 0 {
				t.Parts = append(t.Parts, Literal{Text: lit.String()})
				lit.Reset()
			}
			call, next, err := parseCall(s, i)
			if err != nil {
				return Template{}, err
			}
			t.Parts = append(t.Parts, call)
			i = next
			continue
		}
		lit.WriteByte(s[i])
		i++
	}
	if lit.Len() > 0 {
		t.Parts = append(t.Parts, Literal{Text: lit.String()})
	}
	return t, nil
}

// parseCall consumes one $(name arg...) starting at s[start] and returns the
// call plus the index just past its closing parenthesis. Arguments are
// whitespace-separated; each argument may itself contain nested calls, which
// are kept balanced rather than split on their inner spaces.
func parseCall(s string, start int) (Call, int, error) {
	i := start + 2 // past "$("
	nameStart := i
	for i < len(s) && s[i] != ' ' && s[i] != ')' {
		i++
	}
	if i == len(s) {
		return Call{}, 0, &ParseError{Source: s, Offset: start, Msg: "unterminated substitution"}
	}
	name := s[nameStart:i]
	if name == "" {
		return Call{}, 0, &ParseError{Source: s, Offset: start, Msg: "missing substitution name"}
	}

	call := Call{Name: name, Offset: start}
	for {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i == len(s) {
			return Call{}, 0, &ParseError{Source: s, Offset: start, Msg: "unterminated substitution"}
		}
		if s[i] == ')' {
			i++
			break
		}
		argStart := i
		depth := 0
		for i < len(s) {
			if s[i] == '$' && i+1 < len(s) && s[i+1] == '(' {
				depth++
				i += 2
				continue
			}
			if depth > 0 {
				if s[i] == ')' {
					depth--
				}
				i++
				continue
			}
			if s[i] == ')' || s[i] == ' ' {
				break
			}
			i++
		}
		if i == len(s) {
			return Call{}, 0, &ParseError{Source: s, Offset: start, Msg: "unterminated substitution"}
		}
		arg, err := Parse(s[argStart:i])
		if err != nil {
			return Call{}, 0, err
		}
		call.Args = append(call.Args, arg)
	}

	if err := checkArity(s, call); err != nil {
		return Call{}, 0, err
	}
	return call, i, nil
}

func checkArity(source string, c Call) error {
	switch c.Name {
	case "var", "find-pkg-share":
		if len(c.Args) != 1 {
			return &ParseError{Source: source, Offset: c.Offset,
				Msg: fmt.Sprintf("$(%s) takes exactly one argument, got %d", c.Name, len(c.Args))}
		}
	case "env":
		if len(c.Args) != 2 {
			return &ParseError{Source: source, Offset: c.Offset,
				Msg: fmt.Sprintf("$(env) takes a variable name and a fallback default, got %d arguments", len(c.Args))}
		}
	default:
		return &ParseError{Source: source, Offset: c.Offset,
			Msg: fmt.Sprintf("unknown substitution %q", c.Name)}
	}
	return nil
}

// Eval resolves the template against r and returns the final string. Errors
// from the resolver are returned unchanged so callers can classify them.
func (t Template) Eval(r Resolver) (string, error) {
	var out strings.Builder
	for _, p := range t.Parts {
		switch part := p.(type) {
		case Literal:
			out.WriteString(part.Text)
		case Call:
			v, err := evalCall(part, r)
			if err != nil {
				return "", err
			}
			out.WriteString(v)
		}
	}
	return out.String(), nil
}

func evalCall(c Call, r Resolver) (string, error) {
	switch c.Name {
	case "var":
		name, err := c.Args[0].Eval(r)
		if err != nil {
			return "", err
		}
		return r.LookupVar(name)
	case "env":
		name, err := c.Args[0].Eval(r)
		if err != nil {
			return "", err
		}
		if v, ok := r.LookupEnv(name); ok {
			return v, nil
		}
		return c.Args[1].Eval(r)
	case "find-pkg-share":
		name, err := c.Args[0].Eval(r)
		if err != nil {
			return "", err
		}
		return r.PackageShare(name)
	}
	// checkArity rejects unknown names at parse time.
	return "", fmt.Errorf("unknown substitution %q", c.Name)
}

// Resolve is a convenience for the common parse-then-eval case.
func Resolve(s string, r Resolver) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return t.Eval(r)
}
