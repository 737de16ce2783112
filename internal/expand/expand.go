package expand

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/launchcompose/internal/ctxlog"
	"github.com/vk/launchcompose/internal/launch"
	"github.com/vk/launchcompose/internal/params"
	"github.com/vk/launchcompose/internal/substitution"
)

// Options configures one expansion pass.
type Options struct {
	// Environ is the environment snapshot $(env) resolves against. Nil
	// means an empty environment; the expander never reads process
	// globals itself.
	Environ map[string]string
	// Packages answers $(find-pkg-share) lookups.
	Packages PackageResolver
	// Arguments seeds the root description's arguments, overriding their
	// declared defaults. Unknown names follow the binding policy.
	Arguments map[string]string
	// StrictBindings makes a binding for an undeclared argument an error
	// instead of a warning.
	StrictBindings bool
}

// Remap is one resolved topic or service rename.
type Remap struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Node is one fully resolved node from the expanded description.
type Node struct {
	Pos        launch.Pos     `json:"-"`
	Package    string         `json:"package"`
	Executable string         `json:"executable"`
	Name       string         `json:"name"`
	Namespace  string         `json:"namespace"`
	Params     []params.Param `json:"-"`
	Remaps     []Remap        `json:"remappings,omitempty"`
}

// Result is the outcome of a successful expansion: the flat node set in
// document order.
type Result struct {
	Nodes []Node
}

type expander struct {
	environ  map[string]string
	packages PackageResolver
	strict   bool
}

// Expand loads the launch description at path and expands it completely.
// Any failure aborts the pass; the returned error is an *Error for every
// classified failure kind.
func Expand(ctx context.Context, path string, opts Options) (*Result, error) {
	ex := &expander{
		environ:  opts.Environ,
		packages: opts.Packages,
		strict:   opts.StrictBindings,
	}
	if ex.environ == nil {
		ex.environ = map[string]string{}
	}
	nodes, err := ex.file(ctx, path, launch.Pos{File: path, Line: 1}, opts.Arguments, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return &Result{Nodes: nodes}, nil
}

// file expands one launch description in a fresh scope seeded with the given
// bindings. pos is the location of the include that referenced it (or the
// file itself for the root); parent is the including scope, nil for the root.
func (ex *expander) file(ctx context.Context, path string, pos launch.Pos, seeds map[string]string, ns []string, stack []string, parent *Scope) ([]Node, error) {
	logger := ctxlog.FromContext(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	for _, onStack := range stack {
		if onStack == abs {
			return nil, &Error{Kind: CircularInclude, Pos: pos, Expr: path}
		}
	}

	desc, err := launch.ParseFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Kind: MissingIncludeFile, Pos: pos, Expr: path, Err: err}
		}
		return nil, err
	}
	logger.Debug("Expanding launch description.", "file", path, "entities", len(desc.Children), "namespace", namespaceString(ns))

	// includes expand detached: only the environment and package table
	// cross the file boundary, never the including scope's bindings
	scope := NewScope(ex.environ, ex.packages)
	if parent != nil {
		scope = parent.Detached()
	}
	declared := make(map[string]struct{})
	nodes, err := ex.entities(ctx, desc.Children, scope, filepath.Dir(abs), ns, seeds, declared, append(stack, abs))
	if err != nil {
		return nil, err
	}
	scope.Seal()

	// Bindings that never matched a declared argument.
	var unmatched []string
	for name := range seeds {
		if _, ok := declared[name]; !ok {
			unmatched = append(unmatched, name)
		}
	}
	sort.Strings(unmatched)
	for _, name := range unmatched {
		if ex.strict {
			return nil, &Error{Kind: ArgumentBindingMismatch, Pos: pos, Expr: name,
				Err: fmt.Errorf("%s declares no argument %q", path, name)}
		}
		logger.Warn("Ignoring binding for undeclared argument.", "argument", name, "file", path)
	}
	return nodes, nil
}

// entities expands a sibling sequence within one scope. The namespace stack
// is copied on entry so pushes are visible to later siblings but never to
// the caller.
func (ex *expander) entities(ctx context.Context, ents []launch.Entity, scope *Scope, baseDir string, ns []string, seeds map[string]string, declared map[string]struct{}, stack []string) ([]Node, error) {
	ns = append([]string(nil), ns...)
	var nodes []Node

	for _, ent := range ents {
		switch e := ent.(type) {
		case *launch.Arg:
			value, seeded := "", false
			if seeds != nil {
				if v, ok := seeds[e.Name]; ok {
					value, seeded = v, true
				}
			}
			if !seeded {
				if e.Default == nil {
					return nil, &Error{Kind: UnresolvedVariable, Pos: e.Pos, Expr: e.Name,
						Err: errors.New("required argument not provided")}
				}
				v, err := ex.resolve(scope, e.Pos, *e.Default)
				if err != nil {
					return nil, err
				}
				value = v
			}
			if err := scope.Declare(e.Name, value); err != nil {
				return nil, &Error{Kind: DuplicateArgument, Pos: e.Pos, Expr: e.Name, Err: err}
			}
			if declared != nil {
				declared[e.Name] = struct{}{}
			}

		case *launch.Let:
			ok, err := ex.condition(scope, e.Pos, e.Condition)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			v, err := ex.resolve(scope, e.Pos, e.Value)
			if err != nil {
				return nil, err
			}
			scope.Set(e.Name, v)

		case *launch.PushNamespace:
			seg, err := ex.resolve(scope, e.Pos, e.Namespace)
			if err != nil {
				return nil, err
			}
			ns = pushNamespace(ns, seg)

		case *launch.Group:
			ok, err := ex.condition(scope, e.Pos, e.Condition)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			child := scope.Child()
			sub, err := ex.entities(ctx, e.Children, child, baseDir, ns, nil, nil, stack)
			if err != nil {
				return nil, err
			}
			child.Seal()
			nodes = append(nodes, sub...)

		case *launch.Include:
			ok, err := ex.condition(scope, e.Pos, e.Condition)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			file, err := ex.resolve(scope, e.Pos, e.File)
			if err != nil {
				return nil, err
			}
			if !filepath.IsAbs(file) {
				// relative include targets resolve against the
				// including file, not the working directory
				file = filepath.Join(baseDir, file)
			}
			bindings := make(map[string]string, len(e.Bindings))
			for _, b := range e.Bindings {
				if _, dup := bindings[b.Name]; dup {
					return nil, &Error{Kind: DuplicateArgument, Pos: b.Pos, Expr: b.Name,
						Err: errors.New("argument bound twice in one include")}
				}
				v, err := ex.resolve(scope, b.Pos, b.Value)
				if err != nil {
					return nil, err
				}
				bindings[b.Name] = v
			}
			sub, err := ex.file(ctx, file, e.Pos, bindings, ns, stack, scope)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, sub...)

		case *launch.Node:
			ok, err := ex.condition(scope, e.Pos, e.Condition)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			node, err := ex.node(scope, e, baseDir, ns)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, *node)
		}
	}
	return nodes, nil
}

// node resolves every attribute, parameter and remapping of one declaration.
func (ex *expander) node(scope *Scope, e *launch.Node, baseDir string, ns []string) (*Node, error) {
	pkg, err := ex.resolve(scope, e.Pos, e.Pkg)
	if err != nil {
		return nil, err
	}
	executable, err := ex.resolve(scope, e.Pos, e.Exec)
	if err != nil {
		return nil, err
	}
	name := executable
	if e.Name != "" {
		if name, err = ex.resolve(scope, e.Pos, e.Name); err != nil {
			return nil, err
		}
	}
	nodeNS := ns
	if e.Namespace != "" {
		seg, err := ex.resolve(scope, e.Pos, e.Namespace)
		if err != nil {
			return nil, err
		}
		nodeNS = pushNamespace(ns, seg)
	}

	out := &Node{
		Pos:        e.Pos,
		Package:    pkg,
		Executable: executable,
		Name:       name,
		Namespace:  namespaceString(nodeNS),
	}

	for _, p := range e.Params {
		if p.From != "" {
			path, err := ex.resolve(scope, p.Pos, p.From)
			if err != nil {
				return nil, err
			}
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			loaded, err := params.LoadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					return nil, &Error{Kind: MissingParamFile, Pos: p.Pos, Expr: path, Err: err}
				}
				return nil, fmt.Errorf("%s: %w", p.Pos, err)
			}
			out.Params = append(out.Params, loaded...)
			continue
		}
		pname, err := ex.resolve(scope, p.Pos, p.Name)
		if err != nil {
			return nil, err
		}
		pvalue, err := ex.resolve(scope, p.Pos, p.Value)
		if err != nil {
			return nil, err
		}
		out.Params = append(out.Params, params.Param{Name: pname, Value: params.Infer(pvalue)})
	}

	for _, r := range e.Remaps {
		from, err := ex.resolve(scope, r.Pos, r.From)
		if err != nil {
			return nil, err
		}
		to, err := ex.resolve(scope, r.Pos, r.To)
		if err != nil {
			return nil, err
		}
		out.Remaps = append(out.Remaps, Remap{From: from, To: to})
	}
	return out, nil
}

// resolve evaluates one attribute value against the scope and classifies
// failures with the element's position.
func (ex *expander) resolve(scope *Scope, pos launch.Pos, raw string) (string, error) {
	v, err := substitution.Resolve(raw, scope)
	if err != nil {
		return "", classify(pos, raw, err)
	}
	return v, nil
}

func classify(pos launch.Pos, raw string, err error) error {
	var ee *Error
	if errors.As(err, &ee) {
		if ee.Pos == (launch.Pos{}) {
			ee.Pos = pos
		}
		return ee
	}
	return &Error{Kind: InvalidSubstitution, Pos: pos, Expr: raw, Err: err}
}

// condition evaluates an if/unless pair. Absent conditions are true.
func (ex *expander) condition(scope *Scope, pos launch.Pos, c launch.Condition) (bool, error) {
	raw, invert := c.If, false
	if c.Unless != "" {
		raw, invert = c.Unless, true
	}
	if raw == "" {
		return true, nil
	}
	v, err := ex.resolve(scope, pos, raw)
	if err != nil {
		return false, err
	}
	b, ok := parseBool(v)
	if !ok {
		return false, &Error{Kind: InvalidCondition, Pos: pos, Expr: raw,
			Err: fmt.Errorf("value %q is not a boolean", v)}
	}
	if invert {
		return !b, nil
	}
	return b, nil
}

func parseBool(s string) (value, ok bool) {
	switch strings.ToLower(s) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// pushNamespace applies one segment to the namespace stack. A leading slash
// makes the segment absolute and replaces the stack.
func pushNamespace(ns []string, seg string) []string {
	seg = launch.TrimNamespace(seg)
	if seg == "" {
		return ns
	}
	if strings.HasPrefix(seg, "/") {
		if seg == "/" {
			return nil
		}
		return strings.Split(seg[1:], "/")
	}
	return append(append([]string(nil), ns...), strings.Split(seg, "/")...)
}

func namespaceString(ns []string) string {
	return "/" + strings.Join(ns, "/")
}
