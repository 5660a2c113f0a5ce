package xmltree

import (
	"encoding/xml"
	"strings"
)

// Writer emits indented XML.
type Writer struct {
	b     strings.Builder
	depth int
}

func NewWriter() *Writer {
	w := &Writer{}
	w.b.WriteString(xml.Header)
	return w
}

// A builds an attribute.
func A(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func (w *Writer) indent() {
	for i := 0; i < w.depth; i++ {
		w.b.WriteString("  ")
	}
}

func (w *Writer) tag(name string, attrs []xml.Attr) {
	w.b.WriteByte('<')
	w.b.WriteString(name)
	for _, a := range attrs {
		w.b.WriteByte(' ')
		w.b.WriteString(a.Name.Local)
		w.b.WriteString(`="`)
		w.escape(a.Value)
		w.b.WriteByte('"')
	}
}

func (w *Writer) escape(s string) {
	_ = xml.EscapeText(&w.b, []byte(s))
}

// Open starts an element that will contain children.
func (w *Writer) Open(name string, attrs ...xml.Attr) {
	w.indent()
	w.tag(name, attrs)
	w.b.WriteString(">\n")
	w.depth++
}

// Close ends the innermost open element.
func (w *Writer) Close(name string) {
	w.depth--
	w.indent()
	w.b.WriteString("</" + name + ">\n")
}

// Empty writes a self-closing element.
func (w *Writer) Empty(name string, attrs ...xml.Attr) {
	w.indent()
	w.tag(name, attrs)
	w.b.WriteString("/>\n")
}

// Leaf writes an element holding only text.
func (w *Writer) Leaf(name, text string, attrs ...xml.Attr) {
	w.indent()
	w.tag(name, attrs)
	w.b.WriteByte('>')
	w.b.WriteString(" ")
	w.escape(text)
	w.b.WriteString(" </" + name + ">\n")
}

func (w *Writer) String() string { return w.b.String() }

func (w *Writer) Bytes() []byte { return []byte(w.b.String()) }
