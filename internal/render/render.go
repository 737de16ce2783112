// Package render prints a resolved node set for humans (text) or for
// machines (json).
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vk/launchcompose/internal/expand"
	"github.com/vk/launchcompose/internal/params"
)

// Text writes one block per node with its parameters and remappings.
func Text(w io.Writer, res *expand.Result) error {
	for i, n := range res.Nodes {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "node %s (package %s, executable %s)\n", qualifiedName(n), n.Package, n.Executable); err != nil {
			return err
		}
		for _, p := range n.Params {
			if _, err := fmt.Fprintf(w, "  param %s = %s\n", p.Name, params.Format(p.Value)); err != nil {
				return err
			}
		}
		for _, r := range n.Remaps {
			if _, err := fmt.Fprintf(w, "  remap %s -> %s\n", r.From, r.To); err != nil {
				return err
			}
		}
	}
	return nil
}

type paramJSON struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type nodeJSON struct {
	Package    string         `json:"package"`
	Executable string         `json:"executable"`
	Name       string         `json:"name"`
	Namespace  string         `json:"namespace"`
	Params     []paramJSON    `json:"parameters,omitempty"`
	Remaps     []expand.Remap `json:"remappings,omitempty"`
}

// JSON writes the node set as a single document.
func JSON(w io.Writer, res *expand.Result) error {
	out := struct {
		Nodes []nodeJSON `json:"nodes"`
	}{Nodes: make([]nodeJSON, 0, len(res.Nodes))}

	for _, n := range res.Nodes {
		nj := nodeJSON{
			Package:    n.Package,
			Executable: n.Executable,
			Name:       n.Name,
			Namespace:  n.Namespace,
			Remaps:     n.Remaps,
		}
		for _, p := range n.Params {
			v, err := params.ToGo(p.Value)
			if err != nil {
				return fmt.Errorf("node %s, parameter %s: %w", qualifiedName(n), p.Name, err)
			}
			nj.Params = append(nj.Params, paramJSON{Name: p.Name, Value: v})
		}
		out.Nodes = append(out.Nodes, nj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// qualifiedName joins namespace and node name into one rooted identifier.
func qualifiedName(n expand.Node) string {
	if n.Namespace == "/" {
		return "/" + n.Name
	}
	return n.Namespace + "/" + n.Name
}
