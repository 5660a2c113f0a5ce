package antimony

import (
	"errors"
	"strings"
	"testing"

	"antimony/internal/codec"
	"antimony/internal/diag"
	"antimony/internal/graph"
	"antimony/internal/model"
	"antimony/internal/resolver"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, src string) *graph.Graph {
	t.Helper()
	g, err := New().Parse([]byte(src), codec.ParseOptions{})
	require.NoError(t, err)
	_, err = resolver.Finalize(g)
	require.NoError(t, err)
	return g
}

func module(t *testing.T, g *graph.Graph, name string) *model.Module {
	t.Helper()
	m, ok := g.Module(name)
	require.True(t, ok, "module %q", name)
	return m
}

func TestParse_ModuleScenario(t *testing.T) {
	g := load(t, "module M(x,y): S1 -> S2; k1*S1; end")

	assert.Equal(t, []string{"M"}, g.ModuleNames())
	m := module(t, g, "M")
	assert.Equal(t, []string{"x", "y"}, m.Interface)
	require.Len(t, m.Reactions, 1)

	r := m.Reactions[0]
	assert.Equal(t, "_J0", r.Name)
	assert.Equal(t, []model.Participant{{Name: "S1", Stoich: 1}}, r.Reactants)
	s, ok := m.Symbol(r.Name)
	require.True(t, ok)
	assert.Equal(t, "k1*S1", s.Main)
	assert.Equal(t, "M", g.Main())
}

func TestParse_TopLevelStatementsFormMain(t *testing.T) {
	g := load(t, `
		species S1 = 10, $S2 in cell
		compartment cell = 2
		J0: 2 S1 + S2 => S3; k1*S1
		k1 = 0.1; x := k1*2; S3' = -k1
		S1 is "glucose"
	`)
	assert.Equal(t, model.MainModuleName, g.Main())
	m := module(t, g, model.MainModuleName)

	s1, _ := m.Symbol("S1")
	assert.Equal(t, model.SortSpecies, s1.Sort)
	assert.Equal(t, "10", s1.Initial)
	assert.Equal(t, "glucose", s1.DisplayName)

	s2, _ := m.Symbol("S2")
	assert.True(t, s2.Boundary)
	assert.Equal(t, "cell", s2.Compartment)

	cell, _ := m.Symbol("cell")
	assert.Equal(t, model.SortCompartment, cell.Sort)

	k1, _ := m.Symbol("k1")
	assert.Equal(t, model.SortFormula, k1.Sort)
	x, _ := m.Symbol("x")
	assert.Equal(t, "k1*2", x.Assignment)
	s3, _ := m.Symbol("S3")
	assert.Equal(t, "-k1", s3.Rate)

	require.Len(t, m.Reactions, 1)
	assert.Equal(t, model.DividerTransforms, m.Reactions[0].Divider)
	assert.Equal(t, 2.0, m.Reactions[0].Reactants[0].Stoich)
}

func TestParse_Events(t *testing.T) {
	g := load(t, `
		at time > 5: S1 = 0, k = k/2
		E1: at 2 after S1 < 1, priority=3, persistent=true, t0=false, fromTrigger=false: S1 = 10
	`)
	m := module(t, g, model.MainModuleName)
	require.Len(t, m.Events, 2)

	e0 := m.Events[0]
	assert.Equal(t, "_E0", e0.Name)
	assert.Equal(t, "time > 5", e0.Trigger)
	assert.False(t, e0.Persistent)
	assert.True(t, e0.T0)
	assert.True(t, e0.FromTrigger)
	assert.Equal(t, []model.EventAssignment{{Variable: "S1", Formula: "0"}, {Variable: "k", Formula: "k/2"}}, e0.Assignments)

	e1 := m.Events[1]
	assert.Equal(t, "2", e1.Delay)
	assert.Equal(t, "S1 < 1", e1.Trigger)
	assert.Equal(t, "3", e1.Priority)
	assert.True(t, e1.Persistent)
	assert.False(t, e1.T0)
	assert.False(t, e1.FromTrigger)

	s1, _ := m.Symbol("S1")
	assert.True(t, s1.EventAssigned)
}

func TestParse_InteractionsAndStrands(t *testing.T) {
	g := load(t, `
		J0: A -> B; k*A
		A -o J0
		I1: C -| J0
		D -( J0
		outer: --p0--inner--t1
		inner: p1--g1
	`)
	m := module(t, g, model.MainModuleName)

	require.Len(t, m.Interactions, 3)
	assert.Equal(t, model.DividerActivates, m.Interactions[0].Divider)
	assert.Equal(t, "I1", m.Interactions[1].Name)
	assert.Equal(t, model.DividerInhibits, m.Interactions[1].Divider)
	assert.Equal(t, model.DividerInfluences, m.Interactions[2].Divider)
	assert.Equal(t, []string{"J0"}, m.Interactions[2].Interactees)

	require.Len(t, m.Strands, 2)
	outer := m.Strand("outer")
	require.NotNil(t, outer)
	assert.True(t, outer.OpenUpstream)
	assert.False(t, outer.OpenDownstream)
	inner, _ := m.Symbol("inner")
	assert.True(t, inner.Nested)
	p1, _ := m.Symbol("p1")
	assert.Equal(t, model.SortOperator, p1.Sort)
}

func TestParse_Submodules(t *testing.T) {
	g := load(t, `
		model inner(S1, k1)
		  J0: S1 -> S2; k1*S1
		  k1 = 0.1
		end
		model *outer()
		  A: inner(x, kx) in cell
		  species x = 5
		  kx = 2
		  A.S2 is y
		  delete A.J0
		end
	`)
	assert.Equal(t, "outer", g.Main())
	outer := module(t, g, "outer")
	require.Len(t, outer.Submodules, 1)
	sub := outer.Submodules[0]
	assert.Equal(t, "inner", sub.Module)
	assert.Equal(t, []string{"x", "kx"}, sub.Args)
	assert.Equal(t, "cell", sub.Compartment)
	assert.Equal(t, []model.Identity{{Former: "A.S2", Replacement: "y"}}, outer.Identities)
	assert.Equal(t, []string{"A.J0"}, outer.Deletions)
	assert.False(t, outer.HasSymbol("A.S2"), "dotted names are references, not symbols")
}

func TestParse_Import(t *testing.T) {
	files := map[string]string{
		"lib.txt": "model inner(S1)\n S1 -> ; k*S1\nend\n",
	}
	opts := codec.ParseOptions{
		Location: "main.txt",
		Import: func(ref, from string) ([]byte, string, error) {
			src, ok := files[ref]
			if !ok {
				return nil, "", errors.New("no such file")
			}
			return []byte(src), ref, nil
		},
	}
	g, err := New().Parse([]byte(`import "lib.txt"
		A: inner(x)
	`), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"inner", model.MainModuleName}, g.ModuleNames())

	_, err = New().Parse([]byte(`import "missing.txt"`), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.txt")
}

func TestParse_UnitWarning(t *testing.T) {
	report := diag.NewReport()
	_, err := New().Parse([]byte("unit mM = 1e-3 mole / litre\nS1 = 3\n"), codec.ParseOptions{Report: report})
	require.NoError(t, err)
	require.Len(t, report.Load, 1)
	assert.Contains(t, report.Load[0], "unit definitions are not supported")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"function", "function f(x)\n x^2\nend", "function definitions are not supported"},
		{"missing end", "model M()\n S1 -> S2; k", "missing its 'end'"},
		{"stray end", "end", "'end' without a module definition"},
		{"nested", "model A()\nmodel B()\nend\nend", "cannot be nested"},
		{"redefined", "model A()\nend\nmodel A()\nend", "defined more than once"},
		{"conflict", "J0: A -> B; k\nspecies J0", "cannot be redeclared"},
		{"event option", "at time > 1, color=2: x = 1", "unknown event option"},
		{"bad token", "S1 -> S2 @ k", "unexpected character"},
		{"reaction claims species", "species J0\nJ0: A -> B; k", "already defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Parse([]byte(tt.src), codec.ParseOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, diag.ErrLoad), "%v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

const hierarchical = `
model inner(S1, k1)
  J0: S1 -> S2; k1*S1
  S1 = 10
  k1 = 0.1
end

model *outer()
  A: inner(x, kx)
  species x = 5
  kx = 2
end
`

func TestRender_Hierarchical(t *testing.T) {
	g := load(t, hierarchical)
	out, err := New().Render(g, "", codec.RenderOptions{})
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.Index(text, "model inner(S1, k1)") < strings.Index(text, "model *outer()"))
	assert.Contains(t, text, "  species S1, S2;\n")
	assert.Contains(t, text, "  formula k1;\n")
	assert.Contains(t, text, "  J0: S1 -> S2; k1*S1;\n")
	assert.Contains(t, text, "  A: inner(x, kx);\n")
	assert.Contains(t, text, "  x = 5;\n")
}

func TestRender_Flattened(t *testing.T) {
	g := load(t, hierarchical)
	out, err := New().Render(g, "outer", codec.RenderOptions{Flatten: true})
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "model *outer()")
	assert.Contains(t, text, "  species A__S2, x;\n")
	assert.Contains(t, text, "  A__J0: x -> A__S2; kx*x;\n")
	assert.NotContains(t, text, "A.")
	assert.NotContains(t, text, "A: inner")
}

func TestRender_UnknownModule(t *testing.T) {
	g := load(t, hierarchical)
	_, err := New().Render(g, "nope", codec.RenderOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrNotFound))
}

func renderTwice(src string) (string, string, error) {
	c := New()
	first, err := roundTrip(c, []byte(src))
	if err != nil {
		return "", "", err
	}
	second, err := roundTrip(c, first)
	return string(first), string(second), err
}

func roundTrip(c *Codec, src []byte) ([]byte, error) {
	g, err := c.Parse(src, codec.ParseOptions{})
	if err != nil {
		return nil, err
	}
	if _, err := resolver.Finalize(g); err != nil {
		return nil, err
	}
	return c.Render(g, "", codec.RenderOptions{})
}

func TestRender_Idempotent(t *testing.T) {
	for _, src := range []string{
		hierarchical,
		"module M(x,y): S1 -> S2; k1*S1; end",
		"const species $S0 in c; var k = 3; at k > 2, persistent=true: k = 0",
		"S1 -> S2; k1\nS1 is \"glucose\"\ny in c",
	} {
		first, second, err := renderTwice(src)
		require.NoError(t, err, src)
		assert.Equal(t, first, second, src)
	}
}

var statements = []string{
	"S1 -> S2; k1*S1",
	"2 S2 -> S3; k2*S2^2",
	"$S3 -> S1; k3",
	"S1 = 10",
	"k1 = 0.5",
	"k2 := k1*2",
	"S3' = -k3",
	"species S2 in C",
	"compartment C = 2",
	"at time > 5: S1 = 0, k1 = k1/2",
	"const k3 = 1.5",
	`S1 is "glucose"`,
	"-> S2; k1",
}

func TestRender_IdempotentProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("second render equals first", prop.ForAll(
		func(picks []int) bool {
			lines := make([]string, len(picks))
			for i, p := range picks {
				lines[i] = statements[p]
			}
			first, second, err := renderTwice(strings.Join(lines, "\n"))
			return err == nil && first == second
		},
		gen.SliceOf(gen.IntRange(0, len(statements)-1)),
	))
	properties.TestingRun(t)
}
