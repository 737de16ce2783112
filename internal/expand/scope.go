package expand

import (
	"errors"
	"fmt"

	"github.com/vk/launchcompose/internal/pkgindex"
)

// PackageResolver answers $(find-pkg-share) lookups.
type PackageResolver interface {
	Share(name string) (string, error)
}

// State tracks a scope through its lifecycle. A scope starts Declared,
// becomes Resolving on the first write, and is sealed Resolved when its
// enclosing element finishes expanding. Resolved is terminal: further writes
// are a programmer error.
type State int

const (
	StateDeclared State = iota
	StateResolving
	StateResolved
)

// Scope holds the resolved argument bindings visible at one point of the
// expansion, plus the explicit environment and package table every
// substitution lookup goes through. Lookups fall through to the parent;
// writes never do.
type Scope struct {
	parent   *Scope
	vars     map[string]string
	environ  map[string]string
	packages PackageResolver
	state    State
}

// NewScope creates a root scope over an explicit environment snapshot and
// package table. Lookups never touch process globals.
func NewScope(environ map[string]string, packages PackageResolver) *Scope {
	if environ == nil {
		environ = map[string]string{}
	}
	return &Scope{
		vars:     make(map[string]string),
		environ:  environ,
		packages: packages,
	}
}

// Child returns a nested scope that inherits this scope's bindings, as a
// group does.
func (s *Scope) Child() *Scope {
	return &Scope{
		parent:   s,
		vars:     make(map[string]string),
		environ:  s.environ,
		packages: s.packages,
	}
}

// Detached returns a fresh scope sharing only the environment and package
// table, as an include expansion does. None of this scope's bindings are
// visible through it.
func (s *Scope) Detached() *Scope {
	return &Scope{
		vars:     make(map[string]string),
		environ:  s.environ,
		packages: s.packages,
	}
}

// State reports where the scope is in its lifecycle.
func (s *Scope) State() State {
	return s.state
}

// Seal marks the scope Resolved. Its bindings are immutable afterwards.
func (s *Scope) Seal() {
	s.state = StateResolved
}

func (s *Scope) mutable() {
	if s.state == StateResolved {
		panic("expand: write to a resolved scope")
	}
	s.state = StateResolving
}

// Declare binds an argument value in this scope. Redeclaring a name within
// one scope is an error.
func (s *Scope) Declare(name, value string) error {
	s.mutable()
	if _, ok := s.vars[name]; ok {
		return fmt.Errorf("argument %q already declared in this scope", name)
	}
	s.vars[name] = value
	return nil
}

// Set assigns a value the way <let> does. The write always lands in this
// scope, shadowing any parent binding, so an assignment made inside a group
// pops with the group instead of escaping to later siblings.
func (s *Scope) Set(name, value string) {
	s.mutable()
	s.vars[name] = value
}

// Lookup walks the scope chain for a resolved binding.
func (s *Scope) Lookup(name string) (string, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return "", false
}

// LookupVar implements substitution.Resolver.
func (s *Scope) LookupVar(name string) (string, error) {
	if v, ok := s.Lookup(name); ok {
		return v, nil
	}
	return "", &Error{Kind: UnresolvedVariable, Expr: name}
}

// LookupEnv implements substitution.Resolver against the scope's snapshot.
func (s *Scope) LookupEnv(name string) (string, bool) {
	v, ok := s.environ[name]
	return v, ok
}

// PackageShare implements substitution.Resolver.
func (s *Scope) PackageShare(name string) (string, error) {
	if s.packages == nil {
		return "", &Error{Kind: MissingPackage, Expr: name, Err: errors.New("no package paths configured")}
	}
	dir, err := s.packages.Share(name)
	if err != nil {
		var nf *pkgindex.NotFoundError
		if errors.As(err, &nf) {
			return "", &Error{Kind: MissingPackage, Expr: name, Err: err}
		}
		return "", err
	}
	return dir, nil
}
