// Package mathml converts between content MathML and infix expression trees.
package mathml

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"antimony/internal/expr"
	"antimony/internal/xmltree"
)

const (
	Namespace  = "http://www.w3.org/1998/Math/MathML"
	timeURL    = "http://www.sbml.org/sbml/symbols/time"
	avogadroSy = "http://www.sbml.org/sbml/symbols/avogadro"
	delayURL   = "http://www.sbml.org/sbml/symbols/delay"
)

var binaryOps = map[string]string{
	"plus":   "+",
	"minus":  "-",
	"times":  "*",
	"divide": "/",
	"power":  "^",
	"eq":     "==",
	"neq":    "!=",
	"lt":     "<",
	"gt":     ">",
	"leq":    "<=",
	"geq":    ">=",
	"and":    "&&",
	"or":     "||",
}

var opElements = func() map[string]string {
	m := make(map[string]string, len(binaryOps))
	for el, op := range binaryOps {
		m[op] = el
	}
	return m
}()

var constants = map[string]string{
	"pi":           "pi",
	"exponentiale": "exponentiale",
	"true":         "true",
	"false":        "false",
	"infinity":     "inf",
	"notanumber":   "nan",
}

// functions maps infix function names to MathML element names where they
// differ or need special handling.
var functions = map[string]string{
	"ceil":      "ceiling",
	"ceiling":   "ceiling",
	"floor":     "floor",
	"abs":       "abs",
	"exp":       "exp",
	"ln":        "ln",
	"sin":       "sin",
	"cos":       "cos",
	"tan":       "tan",
	"sec":       "sec",
	"csc":       "csc",
	"cot":       "cot",
	"sinh":      "sinh",
	"cosh":      "cosh",
	"tanh":      "tanh",
	"arcsin":    "arcsin",
	"arccos":    "arccos",
	"arctan":    "arctan",
	"asin":      "arcsin",
	"acos":      "arccos",
	"atan":      "arctan",
	"xor":       "xor",
	"factorial": "factorial",
}

// FromElement converts a MathML element (either <math> or an expression
// element inside it) to an expression tree.
func FromElement(el *xmltree.Element) (expr.Node, error) {
	switch el.Local() {
	case "math", "semantics":
		for _, c := range el.Children {
			if c.Local() == "annotation" || c.Local() == "annotation-xml" {
				continue
			}
			return FromElement(c)
		}
		return nil, fmt.Errorf("mathml: empty <%s>", el.Local())
	case "ci":
		return &expr.Name{Name: el.TrimmedText()}, nil
	case "cn":
		return number(el)
	case "csymbol":
		url := el.AttrOr("definitionURL", "")
		switch {
		case strings.HasSuffix(url, "/time"):
			return &expr.Name{Name: "time"}, nil
		case strings.HasSuffix(url, "/avogadro"):
			return &expr.Name{Name: "avogadro"}, nil
		}
		return &expr.Name{Name: el.TrimmedText()}, nil
	case "apply":
		return apply(el)
	case "piecewise":
		return piecewise(el)
	}
	if c, ok := constants[el.Local()]; ok {
		return &expr.Name{Name: c}, nil
	}
	return nil, fmt.Errorf("mathml: unsupported element <%s>", el.Local())
}

// Parse reads a standalone <math> document.
func Parse(data []byte) (expr.Node, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, err
	}
	return FromElement(root)
}

func number(el *xmltree.Element) (expr.Node, error) {
	text := el.TrimmedText()
	switch el.AttrOr("type", "real") {
	case "e-notation":
		if len(el.Segments) >= 2 {
			text = strings.TrimSpace(el.Segments[0]) + "e" + strings.TrimSpace(el.Segments[1])
		}
	case "rational":
		if len(el.Segments) >= 2 {
			num, err1 := strconv.ParseFloat(strings.TrimSpace(el.Segments[0]), 64)
			den, err2 := strconv.ParseFloat(strings.TrimSpace(el.Segments[1]), 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("mathml: bad rational %q", el.Text)
			}
			return &expr.Binary{Op: "/", L: expr.NumberNode(num), R: expr.NumberNode(den)}, nil
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("mathml: bad number %q", text)
	}
	if v < 0 {
		return &expr.Unary{Op: "-", X: expr.NumberNode(-v)}, nil
	}
	return expr.NumberNode(v), nil
}

func apply(el *xmltree.Element) (expr.Node, error) {
	if len(el.Children) == 0 {
		return nil, fmt.Errorf("mathml: empty <apply>")
	}
	head := el.Children[0]
	var qualifiers = map[string]*xmltree.Element{}
	var args []expr.Node
	for _, c := range el.Children[1:] {
		switch c.Local() {
		case "degree", "logbase", "bvar":
			qualifiers[c.Local()] = c
			continue
		}
		n, err := FromElement(c)
		if err != nil {
			return nil, err
		}
		args = append(args, n)
	}

	op := head.Local()
	if sym, ok := binaryOps[op]; ok {
		switch {
		case op == "minus" && len(args) == 1:
			return &expr.Unary{Op: "-", X: args[0]}, nil
		case len(args) == 0:
			return nil, fmt.Errorf("mathml: <%s> without arguments", op)
		case len(args) == 1 && (op == "plus" || op == "times" || op == "and" || op == "or"):
			return args[0], nil
		}
		out := args[0]
		for _, a := range args[1:] {
			out = &expr.Binary{Op: sym, L: out, R: a}
		}
		return out, nil
	}

	switch op {
	case "not":
		if len(args) != 1 {
			return nil, fmt.Errorf("mathml: <not> takes one argument")
		}
		return &expr.Unary{Op: "!", X: args[0]}, nil
	case "root":
		if q := qualifiers["degree"]; q != nil && len(q.Children) > 0 {
			deg, err := FromElement(q.Children[0])
			if err != nil {
				return nil, err
			}
			return &expr.Call{Func: "root", Args: append([]expr.Node{deg}, args...)}, nil
		}
		return &expr.Call{Func: "sqrt", Args: args}, nil
	case "log":
		if q := qualifiers["logbase"]; q != nil && len(q.Children) > 0 {
			base, err := FromElement(q.Children[0])
			if err != nil {
				return nil, err
			}
			return &expr.Call{Func: "log", Args: append([]expr.Node{base}, args...)}, nil
		}
		return &expr.Call{Func: "log10", Args: args}, nil
	case "ci":
		return &expr.Call{Func: head.TrimmedText(), Args: args}, nil
	case "csymbol":
		name := head.TrimmedText()
		if strings.HasSuffix(head.AttrOr("definitionURL", ""), "/delay") {
			name = "delay"
		}
		return &expr.Call{Func: name, Args: args}, nil
	case "diff":
		return nil, fmt.Errorf("mathml: <diff> is only supported as the left side of an equation")
	}
	return &expr.Call{Func: op, Args: args}, nil
}

func piecewise(el *xmltree.Element) (expr.Node, error) {
	call := &expr.Call{Func: "piecewise"}
	var otherwise expr.Node
	for _, c := range el.Children {
		switch c.Local() {
		case "piece":
			if len(c.Children) != 2 {
				return nil, fmt.Errorf("mathml: <piece> needs a value and a condition")
			}
			v, err := FromElement(c.Children[0])
			if err != nil {
				return nil, err
			}
			cond, err := FromElement(c.Children[1])
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, v, cond)
		case "otherwise":
			if len(c.Children) != 1 {
				return nil, fmt.Errorf("mathml: <otherwise> needs one value")
			}
			v, err := FromElement(c.Children[0])
			if err != nil {
				return nil, err
			}
			otherwise = v
		}
	}
	if otherwise != nil {
		call.Args = append(call.Args, otherwise)
	}
	return call, nil
}

// Options tunes rendering.
type Options struct {
	// NumberAttrs are added to every <cn> element, for example a units
	// attribute.
	NumberAttrs []xml.Attr
	// TimeVariable, when set, writes time as <ci> of that name instead of
	// the SBML csymbol.
	TimeVariable string
}

// Write emits n wrapped in a <math> element.
func Write(w *xmltree.Writer, n expr.Node, opts Options, mathAttrs ...xml.Attr) {
	attrs := append([]xml.Attr{xmltree.A("xmlns", Namespace)}, mathAttrs...)
	w.Open("math", attrs...)
	write(w, n, opts)
	w.Close("math")
}

// WriteInline emits n without a wrapping <math> element.
func WriteInline(w *xmltree.Writer, n expr.Node, opts Options) {
	write(w, n, opts)
}

func write(w *xmltree.Writer, n expr.Node, opts Options) {
	switch v := n.(type) {
	case *expr.Number:
		attrs := append([]xml.Attr(nil), opts.NumberAttrs...)
		text := expr.FormatFloat(v.Value)
		if v.Value == float64(int64(v.Value)) && !strings.ContainsAny(text, "e") {
			attrs = append(attrs, xmltree.A("type", "integer"))
		}
		w.Leaf("cn", text, attrs...)
	case *expr.Name:
		switch v.Name {
		case "time":
			if opts.TimeVariable != "" {
				w.Leaf("ci", opts.TimeVariable)
				return
			}
			w.Leaf("csymbol", "time", xmltree.A("encoding", "text"), xmltree.A("definitionURL", timeURL))
			return
		case "avogadro":
			w.Leaf("csymbol", "avogadro", xmltree.A("encoding", "text"), xmltree.A("definitionURL", avogadroSy))
			return
		}
		for el, name := range constants {
			if name == v.Name {
				w.Empty(el)
				return
			}
		}
		switch v.Name {
		case "INF", "infinity":
			w.Empty("infinity")
		case "NaN":
			w.Empty("notanumber")
		default:
			w.Leaf("ci", v.Name)
		}
	case *expr.Unary:
		w.Open("apply")
		if v.Op == "!" {
			w.Empty("not")
		} else {
			w.Empty("minus")
		}
		write(w, v.X, opts)
		w.Close("apply")
	case *expr.Binary:
		w.Open("apply")
		w.Empty(opElements[v.Op])
		write(w, v.L, opts)
		write(w, v.R, opts)
		w.Close("apply")
	case *expr.Call:
		writeCall(w, v, opts)
	}
}

func writeCall(w *xmltree.Writer, c *expr.Call, opts Options) {
	switch c.Func {
	case "piecewise":
		w.Open("piecewise")
		i := 0
		for ; i+1 < len(c.Args); i += 2 {
			w.Open("piece")
			write(w, c.Args[i], opts)
			write(w, c.Args[i+1], opts)
			w.Close("piece")
		}
		if i < len(c.Args) {
			w.Open("otherwise")
			write(w, c.Args[i], opts)
			w.Close("otherwise")
		}
		w.Close("piecewise")
		return
	case "sqrt":
		w.Open("apply")
		w.Empty("root")
		for _, a := range c.Args {
			write(w, a, opts)
		}
		w.Close("apply")
		return
	case "root", "log":
		if len(c.Args) == 2 {
			qual := "degree"
			if c.Func == "log" {
				qual = "logbase"
			}
			w.Open("apply")
			w.Empty(c.Func)
			w.Open(qual)
			write(w, c.Args[0], opts)
			w.Close(qual)
			write(w, c.Args[1], opts)
			w.Close("apply")
			return
		}
	case "log10":
		w.Open("apply")
		w.Empty("log")
		for _, a := range c.Args {
			write(w, a, opts)
		}
		w.Close("apply")
		return
	case "delay":
		w.Open("apply")
		w.Leaf("csymbol", "delay", xmltree.A("encoding", "text"), xmltree.A("definitionURL", delayURL))
		for _, a := range c.Args {
			write(w, a, opts)
		}
		w.Close("apply")
		return
	}

	w.Open("apply")
	if el, ok := functions[c.Func]; ok {
		w.Empty(el)
	} else {
		w.Leaf("ci", c.Func)
	}
	for _, a := range c.Args {
		write(w, a, opts)
	}
	w.Close("apply")
}
