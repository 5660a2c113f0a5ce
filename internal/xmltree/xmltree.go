// Package xmltree is a small element tree over encoding/xml, shared by the
// SBML, CellML and MathML code.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Element is one XML element with its attributes, children and text.
type Element struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*Element
	// Text is all character data directly inside the element.
	Text string
	// Segments holds the character data runs between children, so
	// Segments[i] precedes Children[i] and the last run trails them.
	Segments []string
}

// Parse reads a whole document and returns its root element.
func Parse(data []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []*Element
	var root *Element
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name, Attr: append([]xml.Attr(nil), t.Attr...)}
			if n := len(stack); n > 0 {
				parent := stack[n-1]
				parent.Segments = append(parent.Segments, text.String())
				text.Reset()
				parent.Children = append(parent.Children, el)
			} else if root == nil {
				root = el
			} else {
				return nil, fmt.Errorf("xml: multiple root elements")
			}
			stack = append(stack, el)
		case xml.EndElement:
			n := len(stack)
			el := stack[n-1]
			el.Segments = append(el.Segments, text.String())
			text.Reset()
			el.Text = strings.Join(el.Segments, "")
			stack = stack[:n-1]
		case xml.CharData:
			if len(stack) > 0 {
				text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("xml: no root element")
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("xml: unclosed element <%s>", stack[len(stack)-1].Name.Local)
	}
	return root, nil
}

// Local returns the element name without namespace.
func (e *Element) Local() string { return e.Name.Local }

// AttrValue looks an attribute up by local name.
func (e *Element) AttrValue(local string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or def when it is absent.
func (e *Element) AttrOr(local, def string) string {
	if v, ok := e.AttrValue(local); ok {
		return v
	}
	return def
}

// Child returns the first child with the given local name.
func (e *Element) Child(local string) *Element {
	for _, c := range e.Children {
		if c.Name.Local == local {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every direct child with the given local name.
func (e *Element) ChildrenNamed(local string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// Path follows a chain of child names and returns the matching descendants
// of the last step, e.g. Path("listOfSpecies", "species").
func (e *Element) Path(steps ...string) []*Element {
	cur := []*Element{e}
	for _, s := range steps {
		var next []*Element
		for _, c := range cur {
			next = append(next, c.ChildrenNamed(s)...)
		}
		cur = next
	}
	return cur
}

// TrimmedText returns Text without surrounding whitespace.
func (e *Element) TrimmedText() string { return strings.TrimSpace(e.Text) }
