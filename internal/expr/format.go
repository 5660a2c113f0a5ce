package expr

import "strings"

func precedence(n Node) int {
	switch v := n.(type) {
	case *Binary:
		switch v.Op {
		case "||":
			return 1
		case "&&":
			return 2
		case "==", "!=", "<", ">", "<=", ">=":
			return 3
		case "+", "-":
			return 4
		case "*", "/":
			return 5
		case "^":
			return 7
		}
	case *Unary:
		return 6
	}
	return 8
}

// Format prints n in Antimony infix syntax. Products and powers are written
// without spaces, sums and comparisons with one space around the operator.
func Format(n Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

func write(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case nil:
	case *Number:
		if v.Text != "" {
			b.WriteString(v.Text)
		} else {
			b.WriteString(FormatFloat(v.Value))
		}
	case *Name:
		b.WriteString(v.Name)
	case *Unary:
		b.WriteString(v.Op)
		if _, nested := v.X.(*Unary); nested || precedence(v.X) < 6 {
			paren(b, v.X)
		} else {
			write(b, v.X)
		}
	case *Binary:
		p := precedence(v)
		lp, rp := precedence(v.L), precedence(v.R)
		if lp < p || (v.Op == "^" && lp == p) {
			paren(b, v.L)
		} else {
			write(b, v.L)
		}
		switch v.Op {
		case "*", "/", "^":
			b.WriteString(v.Op)
		default:
			b.WriteString(" " + v.Op + " ")
		}
		if rp < p || (rp == p && v.Op != "^") {
			paren(b, v.R)
		} else {
			write(b, v.R)
		}
	case *Call:
		b.WriteString(v.Func)
		b.WriteByte('(')
		for i, a := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			write(b, a)
		}
		b.WriteByte(')')
	}
}

func paren(b *strings.Builder, n Node) {
	b.WriteByte('(')
	write(b, n)
	b.WriteByte(')')
}
