// Package launch defines the declarative launch description tree and its XML
// frontend. The element set follows the ROS 2 XML launch format: launch, arg,
// let, group, push-ros-namespace, include, node, param, remap.
package launch

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseError reports a structural problem in a launch file, with the
// offending element's location.
type ParseError struct {
	Pos Pos
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// ParseFile reads and parses a launch description from disk.
func ParseFile(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Parse parses a launch description from raw bytes. The path is used only
// for positions in diagnostics.
func Parse(data []byte, path string) (*Description, error) {
	p := &parser{
		dec:  xml.NewDecoder(bytes.NewReader(data)),
		data: data,
		path: path,
	}
	desc, err := p.parseDocument()
	if err != nil {
		return nil, err
	}
	desc.Path = path
	return desc, nil
}

type parser struct {
	dec  *xml.Decoder
	data []byte
	path string
}

// pos derives the current line from the decoder's byte offset.
func (p *parser) pos() Pos {
	off := p.dec.InputOffset()
	if off > int64(len(p.data)) {
		off = int64(len(p.data))
	}
	line := bytes.Count(p.data[:off], []byte{'\n'}) + 1
	return Pos{File: p.path, Line: line}
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.pos(), Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseDocument() (*Description, error) {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil, p.errorf("missing <launch> root element")
		}
		if err != nil {
			return nil, p.errorf("malformed XML: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "launch" {
				return nil, p.errorf("expected <launch> root element, found <%s>", t.Name.Local)
			}
			if len(t.Attr) > 0 {
				return nil, p.errorf("<launch> takes no attributes")
			}
			children, err := p.parseChildren("launch")
			if err != nil {
				return nil, err
			}
			return &Description{Children: children}, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, p.errorf("unexpected text outside <launch>")
			}
		case xml.Comment, xml.ProcInst, xml.Directive:
			// ignored
		}
	}
}

// parseChildren consumes entities until the enclosing element closes.
func (p *parser) parseChildren(parent string) ([]Entity, error) {
	var children []Entity
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.errorf("malformed XML: %v", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return children, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, p.errorf("unexpected text inside <%s>", parent)
			}
		case xml.Comment, xml.ProcInst:
			// ignored
		case xml.StartElement:
			ent, err := p.parseEntity(t)
			if err != nil {
				return nil, err
			}
			children = append(children, ent)
		}
	}
}

func (p *parser) parseEntity(start xml.StartElement) (Entity, error) {
	switch start.Name.Local {
	case "arg":
		return p.parseArg(start)
	case "let":
		return p.parseLet(start)
	case "group":
		return p.parseGroup(start)
	case "push-ros-namespace":
		return p.parsePushNamespace(start)
	case "include":
		return p.parseInclude(start)
	case "node":
		return p.parseNode(start)
	}
	return nil, p.errorf("unknown element <%s>", start.Name.Local)
}

func (p *parser) parseArg(start xml.StartElement) (*Arg, error) {
	pos := p.pos()
	arg := &Arg{Pos: pos}
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "name":
			arg.Name = a.Value
		case "default":
			v := a.Value
			arg.Default = &v
		default:
			return nil, p.errorf("<arg> has unknown attribute %q", a.Name.Local)
		}
	}
	if arg.Name == "" {
		return nil, p.errorf("<arg> requires a name attribute")
	}
	if err := p.expectEmpty("arg"); err != nil {
		return nil, err
	}
	return arg, nil
}

func (p *parser) parseLet(start xml.StartElement) (*Let, error) {
	pos := p.pos()
	let := &Let{Pos: pos}
	var haveValue bool
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "name":
			let.Name = a.Value
		case "value":
			let.Value = a.Value
			haveValue = true
		case "if":
			let.Condition.If = a.Value
		case "unless":
			let.Condition.Unless = a.Value
		default:
			return nil, p.errorf("<let> has unknown attribute %q", a.Name.Local)
		}
	}
	if let.Name == "" || !haveValue {
		return nil, p.errorf("<let> requires name and value attributes")
	}
	if err := checkCondition(pos, let.Condition); err != nil {
		return nil, err
	}
	if err := p.expectEmpty("let"); err != nil {
		return nil, err
	}
	return let, nil
}

func (p *parser) parseGroup(start xml.StartElement) (*Group, error) {
	pos := p.pos()
	grp := &Group{Pos: pos}
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "if":
			grp.Condition.If = a.Value
		case "unless":
			grp.Condition.Unless = a.Value
		default:
			return nil, p.errorf("<group> has unknown attribute %q", a.Name.Local)
		}
	}
	if err := checkCondition(pos, grp.Condition); err != nil {
		return nil, err
	}
	children, err := p.parseChildren("group")
	if err != nil {
		return nil, err
	}
	grp.Children = children
	return grp, nil
}

func (p *parser) parsePushNamespace(start xml.StartElement) (*PushNamespace, error) {
	pos := p.pos()
	push := &PushNamespace{Pos: pos}
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "namespace":
			push.Namespace = a.Value
		default:
			return nil, p.errorf("<push-ros-namespace> has unknown attribute %q", a.Name.Local)
		}
	}
	if push.Namespace == "" {
		return nil, p.errorf("<push-ros-namespace> requires a namespace attribute")
	}
	if err := p.expectEmpty("push-ros-namespace"); err != nil {
		return nil, err
	}
	return push, nil
}

func (p *parser) parseInclude(start xml.StartElement) (*Include, error) {
	pos := p.pos()
	inc := &Include{Pos: pos}
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "file":
			inc.File = a.Value
		case "if":
			inc.Condition.If = a.Value
		case "unless":
			inc.Condition.Unless = a.Value
		default:
			return nil, p.errorf("<include> has unknown attribute %q", a.Name.Local)
		}
	}
	if inc.File == "" {
		return nil, p.errorf("<include> requires a file attribute")
	}
	if err := checkCondition(pos, inc.Condition); err != nil {
		return nil, err
	}

	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.errorf("malformed XML: %v", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return inc, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, p.errorf("unexpected text inside <include>")
			}
		case xml.Comment:
			// ignored
		case xml.StartElement:
			if t.Name.Local != "arg" {
				return nil, p.errorf("<include> allows only <arg> children, found <%s>", t.Name.Local)
			}
			b, err := p.parseBinding(t)
			if err != nil {
				return nil, err
			}
			inc.Bindings = append(inc.Bindings, *b)
		}
	}
}

func (p *parser) parseBinding(start xml.StartElement) (*Binding, error) {
	pos := p.pos()
	b := &Binding{Pos: pos}
	var haveValue bool
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "name":
			b.Name = a.Value
		case "value":
			b.Value = a.Value
			haveValue = true
		default:
			return nil, p.errorf("include <arg> has unknown attribute %q", a.Name.Local)
		}
	}
	if b.Name == "" || !haveValue {
		return nil, p.errorf("include <arg> requires name and value attributes")
	}
	if err := p.expectEmpty("arg"); err != nil {
		return nil, err
	}
	return b, nil
}

func (p *parser) parseNode(start xml.StartElement) (*Node, error) {
	pos := p.pos()
	node := &Node{Pos: pos}
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "pkg":
			node.Pkg = a.Value
		case "exec":
			node.Exec = a.Value
		case "name":
			node.Name = a.Value
		case "namespace":
			node.Namespace = a.Value
		case "if":
			node.Condition.If = a.Value
		case "unless":
			node.Condition.Unless = a.Value
		default:
			return nil, p.errorf("<node> has unknown attribute %q", a.Name.Local)
		}
	}
	if node.Pkg == "" || node.Exec == "" {
		return nil, p.errorf("<node> requires pkg and exec attributes")
	}
	if err := checkCondition(pos, node.Condition); err != nil {
		return nil, err
	}

	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.errorf("malformed XML: %v", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return node, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, p.errorf("unexpected text inside <node>")
			}
		case xml.Comment:
			// ignored
		case xml.StartElement:
			switch t.Name.Local {
			case "param":
				param, err := p.parseParam(t)
				if err != nil {
					return nil, err
				}
				node.Params = append(node.Params, *param)
			case "remap":
				remap, err := p.parseRemap(t)
				if err != nil {
					return nil, err
				}
				node.Remaps = append(node.Remaps, *remap)
			default:
				return nil, p.errorf("<node> allows only <param> and <remap> children, found <%s>", t.Name.Local)
			}
		}
	}
}

func (p *parser) parseParam(start xml.StartElement) (*Param, error) {
	pos := p.pos()
	param := &Param{Pos: pos}
	var haveValue bool
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "name":
			param.Name = a.Value
		case "value":
			param.Value = a.Value
			haveValue = true
		case "from":
			param.From = a.Value
		default:
			return nil, p.errorf("<param> has unknown attribute %q", a.Name.Local)
		}
	}
	fromForm := param.From != ""
	inlineForm := param.Name != "" && haveValue
	if fromForm == inlineForm {
		return nil, &ParseError{Pos: pos, Msg: "<param> requires either name and value, or from"}
	}
	if err := p.expectEmpty("param"); err != nil {
		return nil, err
	}
	return param, nil
}

func (p *parser) parseRemap(start xml.StartElement) (*Remap, error) {
	pos := p.pos()
	remap := &Remap{Pos: pos}
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "from":
			remap.From = a.Value
		case "to":
			remap.To = a.Value
		default:
			return nil, p.errorf("<remap> has unknown attribute %q", a.Name.Local)
		}
	}
	if remap.From == "" || remap.To == "" {
		return nil, p.errorf("<remap> requires from and to attributes")
	}
	if err := p.expectEmpty("remap"); err != nil {
		return nil, err
	}
	return remap, nil
}

// expectEmpty consumes the element's end tag, rejecting any child content.
func (p *parser) expectEmpty(name string) error {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return p.errorf("malformed XML: %v", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return p.errorf("<%s> does not allow text content", name)
			}
		case xml.Comment:
			// ignored
		case xml.StartElement:
			return p.errorf("<%s> does not allow child elements", name)
		}
	}
}

func checkCondition(pos Pos, c Condition) error {
	if c.If != "" && c.Unless != "" {
		return &ParseError{Pos: pos, Msg: "if and unless are mutually exclusive"}
	}
	return nil
}

// TrimNamespace normalizes a namespace segment by stripping trailing slashes.
// A leading slash is preserved because it marks the segment as absolute.
func TrimNamespace(ns string) string {
	for len(ns) > 1 && strings.HasSuffix(ns, "/") {
		ns = ns[:len(ns)-1]
	}
	return ns
}
