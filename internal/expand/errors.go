package expand

import (
	"fmt"

	"github.com/vk/launchcompose/internal/launch"
)

// Kind classifies expansion failures.
type Kind int

const (
	// UnresolvedVariable marks a $(var) reference to an argument that was
	// never declared, not yet resolved, or declared without a default and
	// never supplied.
	UnresolvedVariable Kind = iota
	// MissingPackage marks a $(find-pkg-share) lookup for a package absent
	// from the index.
	MissingPackage
	// MissingIncludeFile marks an include whose resolved target path does
	// not exist.
	MissingIncludeFile
	// ArgumentBindingMismatch marks a binding for an argument the included
	// description never declares, under strict binding policy.
	ArgumentBindingMismatch
	// CircularInclude marks an include whose target is already on the
	// expansion stack.
	CircularInclude
	// DuplicateArgument marks a second <arg> declaration for the same name
	// in one scope.
	DuplicateArgument
	// InvalidSubstitution marks a malformed $(...) expression.
	InvalidSubstitution
	// InvalidCondition marks an if/unless value that did not resolve to a
	// boolean.
	InvalidCondition
	// MissingParamFile marks a <param from=...> whose resolved path does
	// not exist or cannot be read.
	MissingParamFile
)

func (k Kind) String() string {
	switch k {
	case UnresolvedVariable:
		return "unresolved variable"
	case MissingPackage:
		return "missing package"
	case MissingIncludeFile:
		return "missing include file"
	case ArgumentBindingMismatch:
		return "argument binding mismatch"
	case CircularInclude:
		return "circular include"
	case DuplicateArgument:
		return "duplicate argument"
	case InvalidSubstitution:
		return "invalid substitution"
	case InvalidCondition:
		return "invalid condition"
	case MissingParamFile:
		return "missing parameter file"
	}
	return "unknown error"
}

// Error is a classified expansion failure carrying the offending element's
// source position and the expression that failed.
type Error struct {
	Kind Kind
	Pos  launch.Pos
	Expr string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Pos, e.Kind)
	if e.Expr != "" {
		msg += fmt.Sprintf(" in %q", e.Expr)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
