package builder

import (
	"testing"

	"antimony/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func network() *model.Module {
	m := model.NewModule("net")
	for _, n := range []string{"A", "B", "C"} {
		m.AddSymbol(n).Sort = model.SortSpecies
	}
	x := m.AddSymbol("X")
	x.Sort = model.SortSpecies
	x.Boundary = true

	for _, r := range []struct {
		name string
		rate string
	}{{"J0", "k0*A"}, {"J1", "k1*B"}} {
		s := m.AddSymbol(r.name)
		s.Sort = model.SortReaction
		s.Main = r.rate
	}
	m.Reactions = []*model.Reaction{
		{Name: "J0", Reactants: []model.Participant{{Name: "A", Stoich: 2}, {Name: "X", Stoich: 1}}, Products: []model.Participant{{Name: "B", Stoich: 1}}},
		{Name: "J1", Reactants: []model.Participant{{Name: "B", Stoich: 1}}, Products: []model.Participant{{Name: "C", Stoich: 1}, {Name: "B", Stoich: 3}}},
	}
	m.Finalize()
	return m
}

func TestReactions(t *testing.T) {
	tbl := Reactions(network())

	assert.Equal(t, []string{"J0", "J1"}, tbl.Names)
	assert.Equal(t, []string{"A", "X"}, tbl.Reactants[0])
	assert.Equal(t, []float64{2, 1}, tbl.ReactantStoichiometry[0])
	assert.Equal(t, []string{"C", "B"}, tbl.Products[1])
	assert.Equal(t, []string{"k0*A", "k1*B"}, tbl.Rates)
}

func TestStoichiometryMatrix_Shape(t *testing.T) {
	m := network()
	mx := StoichiometryMatrix(m)

	// X is a boundary species and therefore not a row.
	assert.Equal(t, []string{"A", "B", "C"}, mx.Rows)
	assert.Equal(t, []string{"J0", "J1"}, mx.Columns)
	assert.Equal(t, 3, mx.NumRows())
	assert.Equal(t, len(m.Reactions), mx.NumColumns())

	assert.Equal(t, [][]float64{
		{-2, 0},
		{1, 2},
		{0, 1},
	}, mx.Values)
}

func TestInteractions(t *testing.T) {
	m := model.NewModule("m")
	m.Interactions = []*model.Interaction{
		{Name: "_I0", Interactors: []string{"A"}, Interactees: []string{"J0"}, Divider: model.DividerInhibits},
	}
	tbl := Interactions(m)
	require.Len(t, tbl.Names, 1)
	assert.Equal(t, []string{"J0"}, tbl.Interactees[0])
	assert.Equal(t, model.DividerInhibits, tbl.Dividers[0])
}

func TestStrands(t *testing.T) {
	m := model.NewModule("dna")
	m.AddSymbol("inner").Sort = model.SortStrand
	m.AddSymbol("outer").Sort = model.SortStrand
	m.Strands = []*model.Strand{
		{Name: "inner", Components: []string{"p1", "g1"}},
		{Name: "outer", Components: []string{"p0", "inner", "t1"}, OpenDownstream: true},
	}
	m.Finalize()

	expanded := ExpandedStrands(m)
	require.Len(t, expanded, 1)
	assert.Equal(t, "outer", expanded[0].Name)
	assert.Equal(t, []string{"p0", "p1", "g1", "t1"}, expanded[0].Components)
	assert.True(t, expanded[0].OpenDownstream)
	assert.False(t, expanded[0].OpenUpstream)

	modular := ModularStrands(m)
	require.Len(t, modular, 2)
	assert.Equal(t, []string{"p0", "inner", "t1"}, modular[1].Components)
}
