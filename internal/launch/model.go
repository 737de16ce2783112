package launch

import "fmt"

// Pos locates an element within its source file for diagnostics.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Entity is one element of a launch description tree. The tree is immutable
// after parsing; expansion never mutates it.
type Entity interface {
	SourcePos() Pos
}

// Condition holds the raw if/unless attributes shared by conditional
// entities. Both strings may contain substitutions; empty means absent.
type Condition struct {
	If     string
	Unless string
}

// Description is a parsed launch file.
type Description struct {
	Path     string
	Children []Entity
}

// Arg declares a resolvable argument. A nil Default means the argument is
// required and must be supplied by the caller (an include binding or a
// top-level override).
type Arg struct {
	Pos     Pos
	Name    string
	Default *string
}

// Let assigns a scope-local value. Unlike Arg it may overwrite an earlier
// value with the same name.
type Let struct {
	Pos       Pos
	Name      string
	Value     string
	Condition Condition
}

// Group is a scoping container. A PushNamespace child applies to every node
// declared transitively within the group.
type Group struct {
	Pos       Pos
	Children  []Entity
	Condition Condition
}

// PushNamespace prepends a namespace segment for the remainder of the
// enclosing scope.
type PushNamespace struct {
	Pos       Pos
	Namespace string
}

// Binding maps a resolved parent-scope value onto an argument declared by an
// included description.
type Binding struct {
	Pos   Pos
	Name  string
	Value string
}

// Include references an external launch description to be expanded in place
// with a fresh child scope seeded from Bindings.
type Include struct {
	Pos       Pos
	File      string
	Bindings  []Binding
	Condition Condition
}

// Param sets one node parameter, either inline (Name/Value) or from a
// parameter YAML file (From). Exactly one of the two forms is populated.
type Param struct {
	Pos   Pos
	Name  string
	Value string
	From  string
}

// Remap renames one topic or service for a node.
type Remap struct {
	Pos  Pos
	From string
	To   string
}

// Node declares a process to launch, with its parameters and remappings.
type Node struct {
	Pos       Pos
	Pkg       string
	Exec      string
	Name      string
	Namespace string
	Params    []Param
	Remaps    []Remap
	Condition Condition
}

func (a *Arg) SourcePos() Pos           { return a.Pos }
func (l *Let) SourcePos() Pos           { return l.Pos }
func (g *Group) SourcePos() Pos         { return g.Pos }
func (p *PushNamespace) SourcePos() Pos { return p.Pos }
func (i *Include) SourcePos() Pos       { return i.Pos }
func (n *Node) SourcePos() Pos          { return n.Pos }
