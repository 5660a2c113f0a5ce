package mathml

import (
	"encoding/xml"
	"testing"

	"antimony/internal/expr"
	"antimony/internal/xmltree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, src string) string {
	t.Helper()
	n, err := expr.Parse(src)
	require.NoError(t, err)

	w := xmltree.NewWriter()
	Write(w, n, Options{})
	back, err := Parse(w.Bytes())
	require.NoError(t, err, w.String())
	return expr.Format(back)
}

func TestRoundTrip(t *testing.T) {
	tests := []string{
		"k1*S1",
		"k1*S1 - k2*S2",
		"a/(b + c)",
		"x^2",
		"-x",
		"sqrt(x)",
		"log10(x)",
		"log(2, x)",
		"exp(-k*time)",
		"piecewise(1, x > 2, 0)",
		"a && b || !c",
		"pi*r^2",
		"delay(x, 2)",
		"myfunc(a, b)",
		"ceil(x)",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			n, err := expr.Parse(src)
			require.NoError(t, err)
			want := expr.Format(n)
			if src == "ceil(x)" {
				want = "ceiling(x)"
			}
			assert.Equal(t, want, roundTrip(t, src))
		})
	}
}

func TestParse_NaryAndConstants(t *testing.T) {
	doc := `<math xmlns="http://www.w3.org/1998/Math/MathML">
  <apply>
    <plus/>
    <ci> a </ci>
    <ci> b </ci>
    <cn> 3 </cn>
    <exponentiale/>
  </apply>
</math>`
	n, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "a + b + 3 + exponentiale", expr.Format(n))
}

func TestParse_Numbers(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{`<math><cn type="e-notation"> 1 <sep/> 3 </cn></math>`, "1000"},
		{`<math><cn type="rational"> 1 <sep/> 2 </cn></math>`, "1/2"},
		{`<math><cn> -4 </cn></math>`, "-4"},
		{`<math><cn type="integer"> 7 </cn></math>`, "7"},
	}
	for _, tt := range tests {
		n, err := Parse([]byte(tt.doc))
		require.NoError(t, err, tt.doc)
		assert.Equal(t, tt.want, expr.Format(n))
	}
}

func TestParse_TimeSymbol(t *testing.T) {
	doc := `<math><csymbol encoding="text" definitionURL="http://www.sbml.org/sbml/symbols/time"> t </csymbol></math>`
	n, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "time", expr.Format(n))
}

func TestParse_Errors(t *testing.T) {
	for _, doc := range []string{
		`<math></math>`,
		`<math><apply/></math>`,
		`<math><lambda><bvar><ci>x</ci></bvar><ci>x</ci></lambda></math>`,
		`<math><cn>abc</cn></math>`,
		`<math><apply><diff/><ci>x</ci></apply></math>`,
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestWrite_NumberAttrs(t *testing.T) {
	w := xmltree.NewWriter()
	Write(w, expr.NumberNode(2), Options{NumberAttrs: []xml.Attr{xmltree.A("sbml:units", "dimensionless")}})
	assert.Contains(t, w.String(), `<cn sbml:units="dimensionless" type="integer"> 2 </cn>`)
}

func TestWrite_TimeVariable(t *testing.T) {
	n, err := expr.Parse("k*time")
	require.NoError(t, err)
	w := xmltree.NewWriter()
	WriteInline(w, n, Options{TimeVariable: "t"})
	assert.Contains(t, w.String(), "<ci> t </ci>")
	assert.NotContains(t, w.String(), "csymbol")
}
