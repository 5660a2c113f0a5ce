// Package builder derives read-only structural projections from a flattened
// module: participant tables, the stoichiometry matrix and DNA strands.
package builder

import (
	"antimony/internal/classifier"
	"antimony/internal/model"
)

// ReactionTable is the ragged participant layout of a module's reactions.
type ReactionTable struct {
	Names                 []string
	Reactants             [][]string
	Products              [][]string
	ReactantStoichiometry [][]float64
	ProductStoichiometry  [][]float64
	Rates                 []string
}

func Reactions(m *model.Module) *ReactionTable {
	t := &ReactionTable{}
	for _, r := range m.Reactions {
		t.Names = append(t.Names, r.Name)
		names, stoich := split(r.Reactants)
		t.Reactants = append(t.Reactants, names)
		t.ReactantStoichiometry = append(t.ReactantStoichiometry, stoich)
		names, stoich = split(r.Products)
		t.Products = append(t.Products, names)
		t.ProductStoichiometry = append(t.ProductStoichiometry, stoich)
		rate := ""
		if s, ok := m.Symbol(r.Name); ok {
			rate = s.Main
		}
		t.Rates = append(t.Rates, rate)
	}
	return t
}

func split(ps []model.Participant) ([]string, []float64) {
	names := make([]string, 0, len(ps))
	stoich := make([]float64, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name)
		stoich = append(stoich, p.Stoich)
	}
	return names, stoich
}

// InteractionTable mirrors ReactionTable for interactions.
type InteractionTable struct {
	Names       []string
	Interactors [][]string
	Interactees [][]string
	Dividers    []model.Divider
}

func Interactions(m *model.Module) *InteractionTable {
	t := &InteractionTable{}
	for _, i := range m.Interactions {
		t.Names = append(t.Names, i.Name)
		t.Interactors = append(t.Interactors, append([]string(nil), i.Interactors...))
		t.Interactees = append(t.Interactees, append([]string(nil), i.Interactees...))
		t.Dividers = append(t.Dividers, i.Divider)
	}
	return t
}

// Matrix is the stoichiometry matrix: one row per variable species and one
// column per reaction. Entry (i, j) is the product coefficient minus the
// reactant coefficient of species i in reaction j.
type Matrix struct {
	Rows    []string
	Columns []string
	Values  [][]float64
}

func (mx *Matrix) NumRows() int    { return len(mx.Rows) }
func (mx *Matrix) NumColumns() int { return len(mx.Columns) }

func StoichiometryMatrix(m *model.Module) *Matrix {
	mx := &Matrix{}
	row := make(map[string]int)
	for _, s := range m.Symbols() {
		if classifier.Matches(s, model.KindSpeciesVariable) {
			row[s.Name] = len(mx.Rows)
			mx.Rows = append(mx.Rows, s.Name)
		}
	}
	for _, r := range m.Reactions {
		mx.Columns = append(mx.Columns, r.Name)
	}
	mx.Values = make([][]float64, len(mx.Rows))
	for i := range mx.Values {
		mx.Values[i] = make([]float64, len(mx.Columns))
	}
	for j, r := range m.Reactions {
		for _, p := range r.Reactants {
			if i, ok := row[p.Name]; ok {
				mx.Values[i][j] -= p.Stoich
			}
		}
		for _, p := range r.Products {
			if i, ok := row[p.Name]; ok {
				mx.Values[i][j] += p.Stoich
			}
		}
	}
	return mx
}

// StrandView is one DNA strand projection.
type StrandView struct {
	Name           string
	Components     []string
	OpenUpstream   bool
	OpenDownstream bool
}

// ExpandedStrands returns the top-level strands with every nested strand
// inlined recursively. Nested strands are not listed themselves.
func ExpandedStrands(m *model.Module) []StrandView {
	var out []StrandView
	for _, st := range m.Strands {
		if s, ok := m.Symbol(st.Name); ok && s.Nested {
			continue
		}
		out = append(out, StrandView{
			Name:           st.Name,
			Components:     expand(m, st, map[string]bool{}),
			OpenUpstream:   st.OpenUpstream,
			OpenDownstream: st.OpenDownstream,
		})
	}
	return out
}

func expand(m *model.Module, st *model.Strand, seen map[string]bool) []string {
	if seen[st.Name] {
		return nil
	}
	seen[st.Name] = true
	defer delete(seen, st.Name)

	var out []string
	for _, c := range st.Components {
		if inner := m.Strand(c); inner != nil {
			out = append(out, expand(m, inner, seen)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// ModularStrands returns every strand as written.
func ModularStrands(m *model.Module) []StrandView {
	out := make([]StrandView, 0, len(m.Strands))
	for _, st := range m.Strands {
		out = append(out, StrandView{
			Name:           st.Name,
			Components:     append([]string(nil), st.Components...),
			OpenUpstream:   st.OpenUpstream,
			OpenDownstream: st.OpenDownstream,
		})
	}
	return out
}
