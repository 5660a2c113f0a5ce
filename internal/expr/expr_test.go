package expr

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_Canonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"k1*S1", "k1*S1"},
		{"k1 * S1", "k1*S1"},
		{"a+b*c", "a + b*c"},
		{"(a+b)*c", "(a + b)*c"},
		{"a-(b-c)", "a - (b - c)"},
		{"a-b-c", "a - b - c"},
		{"a^b^c", "a^b^c"},
		{"(a^b)^c", "(a^b)^c"},
		{"-x^2", "-x^2"},
		{"(-x)^2", "(-x)^2"},
		{"a--b", "a - -b"},
		{"x > 5 && y<=2 || !z", "x > 5 && y <= 2 || !z"},
		{"piecewise(1, time>2, 0)", "piecewise(1, time > 2, 0)"},
		{"1.5e-3*V", "1.5e-3*V"},
		{"+a", "a"},
		{"f()", "f()"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Format(n))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "a +", "(a", "f(a,", "a b", "3 $"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestParse_NewlinesInsideParens(t *testing.T) {
	n, err := Parse("k*(a +\n b)")
	require.NoError(t, err)
	assert.Equal(t, "k*(a + b)", Format(n))
}

func TestNamesAndRename(t *testing.T) {
	ids, err := Identifiers("k1*S1 + sin(time*pi) - k1")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "S1"}, ids)

	out, err := Rename("k1*S1 + time", func(s string) string { return "A." + s })
	require.NoError(t, err)
	assert.Equal(t, "A.k1*A.S1 + time", out)

	out, err = Rename("  ", strings.ToUpper)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLiteral(t *testing.T) {
	v, ok := Literal("2.5")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	v, ok = Literal("-3")
	assert.True(t, ok)
	assert.Equal(t, -3.0, v)

	_, ok = Literal("k1")
	assert.False(t, ok)
}

// genExpr builds random expression strings out of a small grammar.
func genExpr(depth int) gopter.Gen {
	leaf := gen.OneGenOf(
		gen.OneConstOf("a", "b", "k1", "S1", "time"),
		gen.OneConstOf("0", "1", "2.5", "1e-3"),
	)
	if depth == 0 {
		return leaf
	}
	sub := genExpr(depth - 1)
	return gen.OneGenOf(
		leaf,
		gopter.CombineGens(sub, gen.OneConstOf("+", "-", "*", "/", "^", " > ", " && "), sub).Map(func(v []interface{}) string {
			return "(" + v[0].(string) + v[1].(string) + v[2].(string) + ")"
		}),
		sub.Map(func(s string) string { return "-" + s }),
		sub.Map(func(s string) string { return "sin(" + s + ")" }),
	)
}

func TestFormat_IdempotentProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("format(parse(format(parse(x)))) == format(parse(x))", prop.ForAll(
		func(src string) bool {
			n, err := Parse(src)
			if err != nil {
				return false
			}
			once := Format(n)
			n2, err := Parse(once)
			if err != nil {
				return false
			}
			return Format(n2) == once
		},
		genExpr(3),
	))

	properties.TestingRun(t)
}
