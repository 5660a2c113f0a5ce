package cellml

import (
	"errors"
	"strings"
	"testing"

	"antimony/internal/codec"
	"antimony/internal/codec/antimony"
	"antimony/internal/diag"
	"antimony/internal/graph"
	"antimony/internal/model"
	"antimony/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, src string, report *diag.Report) *graph.Graph {
	t.Helper()
	g, err := New().Parse([]byte(src), codec.ParseOptions{Report: report})
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

const siblings = `<?xml version="1.0"?>
<model xmlns="http://www.cellml.org/cellml/1.1#" name="hh">
  <units name="ms"/>
  <component name="membrane">
    <variable name="V" initial_value="-75" units="mV" public_interface="out"/>
    <variable name="t" units="ms"/>
    <variable name="I" units="uA" public_interface="in"/>
    <math xmlns="http://www.w3.org/1998/Math/MathML">
      <apply><eq/>
        <apply><diff/><bvar><ci>t</ci></bvar><ci>V</ci></apply>
        <apply><minus/><ci>I</ci></apply>
      </apply>
    </math>
  </component>
  <component name="stim">
    <variable name="I" initial_value="1" units="uA" public_interface="out"/>
    <variable name="amp" initial_value="2" units="uA"/>
    <variable name="time" units="ms" public_interface="in"/>
    <math xmlns="http://www.w3.org/1998/Math/MathML">
      <apply><eq/><ci>I</ci><apply><times/><ci>amp</ci><ci>time</ci></apply></apply>
    </math>
  </component>
  <connection>
    <map_components component_1="membrane" component_2="stim"/>
    <map_variables variable_1="I" variable_2="I"/>
  </connection>
</model>`

func TestParse_SiblingComponents(t *testing.T) {
	report := diag.NewReport()
	g := load(t, siblings, report)

	assert.Equal(t, []string{"membrane", "stim", "hh"}, g.ModuleNames())
	assert.Equal(t, "hh", g.Main())
	assert.Equal(t, []string{"CellML units definitions were ignored"}, report.Load)

	membrane := module(t, g, "membrane")
	assert.Equal(t, []string{"V", "I"}, membrane.Interface)
	assert.False(t, membrane.HasSymbol("t"), "the variable of integration is dropped")
	v, _ := membrane.Symbol("V")
	assert.Equal(t, "-75", v.Initial)
	assert.Equal(t, "-I", v.Rate)

	stim := module(t, g, "stim")
	assert.False(t, stim.HasSymbol("time"))
	i, _ := stim.Symbol("I")
	assert.Equal(t, "amp*time", i.Assignment)

	hh := module(t, g, "hh")
	require.Len(t, hh.Submodules, 2)
	assert.Equal(t, "membrane", hh.Submodules[0].Module)
	assert.Equal(t, []model.Identity{{Former: "membrane.I", Replacement: "stim.I"}}, hh.Identities)
	require.Len(t, hh.Replacements, 1)
	assert.Equal(t, "stim.I", hh.Replacements[0].Replacement)
}

func TestParse_Encapsulation(t *testing.T) {
	g := load(t, `<model name="outer" xmlns="http://www.cellml.org/cellml/1.1#">
  <component name="outer">
    <variable name="x" initial_value="4" private_interface="out"/>
  </component>
  <component name="inner">
    <variable name="y" public_interface="in"/>
    <variable name="z"/>
    <math xmlns="http://www.w3.org/1998/Math/MathML">
      <apply><eq/><ci>z</ci><apply><times/><cn>2</cn><ci>y</ci></apply></apply>
    </math>
  </component>
  <group>
    <relationship_ref relationship="encapsulation"/>
    <component_ref component="outer"><component_ref component="inner"/></component_ref>
  </group>
  <connection>
    <map_components component_1="outer" component_2="inner"/>
    <map_variables variable_1="x" variable_2="y"/>
  </connection>
</model>`, nil)

	assert.Equal(t, "outer", g.Main())
	outer := module(t, g, "outer")
	x, ok := outer.Symbol("x")
	require.True(t, ok)
	assert.Equal(t, "4", x.Initial)
	require.NotNil(t, outer.Submodule("inner"))
	assert.Equal(t, []model.Identity{{Former: "inner.y", Replacement: "x"}}, outer.Identities)

	inner := module(t, g, "inner")
	z, _ := inner.Symbol("z")
	assert.Equal(t, "2*y", z.Assignment)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not xml", "<model", "invalid CellML"},
		{"wrong root", "<sbml/>", "not <model>"},
		{"import", `<model name="m"><import/></model>`, "imports are not supported"},
		{"duplicate component", `<model name="m"><component name="a"/><component name="a"/></model>`, "more than once"},
		{"undeclared variable", `<model name="m"><component name="a"><math><apply><eq/><ci>q</ci><cn>1</cn></apply></math></component></model>`, "undeclared variable"},
		{"not an equation", `<model name="m"><component name="a"><variable name="q"/><math><apply><plus/><ci>q</ci><cn>1</cn></apply></math></component></model>`, "only equations"},
		{"unknown component", `<model name="m"><component name="a"/><connection><map_components component_1="a" component_2="b"/></connection></model>`, "unknown component"},
		{"unknown variable", `<model name="m"><component name="a"/><component name="b"/><connection><map_components component_1="a" component_2="b"/><map_variables variable_1="x" variable_2="y"/></connection></model>`, "unknown variable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Parse([]byte(tt.doc), codec.ParseOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, diag.ErrLoad), err.Error())
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func fromAntimony(t *testing.T, src string) *graph.Graph {
	t.Helper()
	g, err := antimony.New().Parse([]byte(src), codec.ParseOptions{})
	require.NoError(t, err)
	_, err = resolver.Finalize(g)
	require.NoError(t, err)
	return g
}

func TestRender_Hierarchical(t *testing.T) {
	g := fromAntimony(t, `
		model inner(y)
		  z := 2*y
		end
		A: inner(x)
		x = 4
	`)
	out, err := New().Render(g, "", codec.RenderOptions{})
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, `<model xmlns="http://www.cellml.org/cellml/1.1#" xmlns:cellml="http://www.cellml.org/cellml/1.1#" name="__main">`)
	assert.Contains(t, doc, `<variable name="x" units="dimensionless" initial_value="4" private_interface="out"/>`)
	assert.Contains(t, doc, `<component name="A">`)
	assert.Contains(t, doc, `<variable name="y" units="dimensionless" public_interface="in"/>`)
	assert.Contains(t, doc, `<map_components component_1="A" component_2="__main"/>`)
	assert.Contains(t, doc, `<map_variables variable_1="y" variable_2="x"/>`)
	assert.Contains(t, doc, `<relationship_ref relationship="encapsulation"/>`)
	assert.Equal(t, codec.FormatCellML, codec.Sniff(out))

	back := load(t, doc, nil)
	assert.Equal(t, model.MainModuleName, back.Main())
	main := module(t, back, model.MainModuleName)
	assert.Equal(t, []model.Identity{{Former: "A.y", Replacement: "x"}}, main.Identities)
	a := module(t, back, "A")
	z, _ := a.Symbol("z")
	assert.Equal(t, "2*y", z.Assignment)
}

func TestRender_ReactionsBecomeRates(t *testing.T) {
	g := fromAntimony(t, `
		J0: S1 -> 2 S2; k1*S1
		S1 = 10; S2 = 0; k1 = 0.1
		at S1 < 1: k1 = 0
	`)
	report := diag.NewReport()
	out, err := New().Render(g, "", codec.RenderOptions{Flatten: true, Report: report})
	require.NoError(t, err)
	doc := string(out)
	assert.Contains(t, doc, `<variable name="time" units="dimensionless"/>`)
	assert.NotContains(t, doc, "csymbol")
	assert.NotContains(t, doc, "<group>")
	assert.Contains(t, strings.Join(report.Info[g.Main()], "\n"), "events")

	back := load(t, doc, nil)
	m := module(t, back, back.Main())
	j0, _ := m.Symbol("J0")
	assert.Equal(t, "k1*S1", j0.Assignment)
	s1, _ := m.Symbol("S1")
	assert.Equal(t, "-J0", s1.Rate)
	assert.Equal(t, "10", s1.Initial)
	s2, _ := m.Symbol("S2")
	assert.Equal(t, "2*J0", s2.Rate)
	assert.False(t, m.HasSymbol("time"))
}

func TestRender_UnknownModule(t *testing.T) {
	g := fromAntimony(t, "x = 1\n")
	_, err := New().Render(g, "nope", codec.RenderOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrNotFound))
}
