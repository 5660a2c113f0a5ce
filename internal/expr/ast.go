// Package expr parses, prints and rewrites the infix math used in rate
// laws, rules, triggers and initial values.
package expr

import (
	"strconv"
	"strings"
)

// Node is a math expression tree node.
type Node interface {
	node()
}

type Number struct {
	Value float64
	// Text is the literal as written, kept so output does not reformat it.
	Text string
}

type Name struct {
	Name string
}

type Unary struct {
	Op string
	X  Node
}

type Binary struct {
	Op   string
	L, R Node
}

type Call struct {
	Func string
	Args []Node
}

func (*Number) node() {}
func (*Name) node()   {}
func (*Unary) node()  {}
func (*Binary) node() {}
func (*Call) node()   {}

// NumberNode builds a literal from a float.
func NumberNode(v float64) *Number {
	return &Number{Value: v, Text: FormatFloat(v)}
}

// FormatFloat prints v in the shortest form that parses back to v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var builtins = map[string]bool{
	"time":         true,
	"pi":           true,
	"exponentiale": true,
	"avogadro":     true,
	"true":         true,
	"false":        true,
	"inf":          true,
	"INF":          true,
	"infinity":     true,
	"nan":          true,
	"NaN":          true,
	"notanumber":   true,
}

// IsBuiltin reports whether name is a predefined constant rather than a
// model symbol.
func IsBuiltin(name string) bool {
	return builtins[name]
}

// Walk calls fn for every node in pre-order.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch v := n.(type) {
	case *Unary:
		Walk(v.X, fn)
	case *Binary:
		Walk(v.L, fn)
		Walk(v.R, fn)
	case *Call:
		for _, a := range v.Args {
			Walk(a, fn)
		}
	}
}

// Names returns the distinct non-builtin identifiers of n in first
// appearance order.
func Names(n Node) []string {
	var out []string
	seen := make(map[string]bool)
	Walk(n, func(n Node) {
		if nm, ok := n.(*Name); ok && !builtins[nm.Name] && !seen[nm.Name] {
			seen[nm.Name] = true
			out = append(out, nm.Name)
		}
	})
	return out
}

// Map returns a copy of n with every non-builtin identifier passed through fn.
func Map(n Node, fn func(string) string) Node {
	switch v := n.(type) {
	case *Number:
		c := *v
		return &c
	case *Name:
		if builtins[v.Name] {
			return &Name{Name: v.Name}
		}
		return &Name{Name: fn(v.Name)}
	case *Unary:
		return &Unary{Op: v.Op, X: Map(v.X, fn)}
	case *Binary:
		return &Binary{Op: v.Op, L: Map(v.L, fn), R: Map(v.R, fn)}
	case *Call:
		args := make([]Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = Map(a, fn)
		}
		return &Call{Func: v.Func, Args: args}
	}
	return nil
}

// Rename parses src, renames its identifiers and prints it again. Empty
// input stays empty.
func Rename(src string, fn func(string) string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	n, err := Parse(src)
	if err != nil {
		return "", err
	}
	return Format(Map(n, fn)), nil
}

// Identifiers returns the model symbols referenced by src.
func Identifiers(src string) ([]string, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	n, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return Names(n), nil
}

// Literal reports whether src is a single numeric literal, possibly negated.
func Literal(src string) (float64, bool) {
	n, err := Parse(src)
	if err != nil {
		return 0, false
	}
	switch v := n.(type) {
	case *Number:
		return v.Value, true
	case *Unary:
		if num, ok := v.X.(*Number); ok && v.Op == "-" {
			return -num.Value, true
		}
	}
	return 0, false
}
