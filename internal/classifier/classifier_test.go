package classifier

import (
	"testing"

	"antimony/internal/model"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestClassify_MostSpecific(t *testing.T) {
	tests := []struct {
		name string
		sym  model.Symbol
		want model.SymbolKind
	}{
		{"species default var", model.Symbol{Sort: model.SortSpecies}, model.KindSpeciesVariable},
		{"boundary species", model.Symbol{Sort: model.SortSpecies, Boundary: true}, model.KindSpeciesConstant},
		{"explicit const species", model.Symbol{Sort: model.SortSpecies, Const: model.ConstYes}, model.KindSpeciesConstant},
		{"formula default const", model.Symbol{Sort: model.SortFormula, Initial: "3"}, model.KindFormulaConstant},
		{"formula with rule", model.Symbol{Sort: model.SortFormula, Assignment: "k*2"}, model.KindFormulaVariable},
		{"formula event assigned", model.Symbol{Sort: model.SortFormula, EventAssigned: true}, model.KindFormulaVariable},
		{"explicit var compartment", model.Symbol{Sort: model.SortCompartment, Const: model.ConstNo}, model.KindCompartmentVariable},
		{"operator with rate", model.Symbol{Sort: model.SortOperator, Rate: "1"}, model.KindOperatorVariable},
		{"gene", model.Symbol{Sort: model.SortGene, Main: "k"}, model.KindGene},
		{"reaction", model.Symbol{Sort: model.SortReaction}, model.KindReaction},
		{"top strand", model.Symbol{Sort: model.SortStrand}, model.KindStrandExpanded},
		{"nested strand", model.Symbol{Sort: model.SortStrand, Nested: true}, model.KindStrandModular},
		{"module instance", model.Symbol{Sort: model.SortModule}, model.KindModule},
		{"deleted", model.Symbol{Sort: model.SortDeleted}, model.KindDeleted},
		{"unknown", model.Symbol{}, model.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(&tt.sym))
			assert.True(t, Matches(&tt.sym, tt.want), "a symbol always matches its own kind")
		})
	}
}

func TestGeneIsNeverReportedAsReaction(t *testing.T) {
	g := &model.Symbol{Name: "g1", Sort: model.SortGene, Main: "k1*A"}

	assert.Equal(t, model.KindGene, Classify(g))
	assert.NotEqual(t, model.KindReaction, Classify(g))
	assert.True(t, Matches(g, model.KindReaction), "genes are enumerated with reactions")
	assert.True(t, Matches(g, model.KindDNA))
}

func TestMatches_Supersets(t *testing.T) {
	op := &model.Symbol{Sort: model.SortOperator}
	assert.True(t, Matches(op, model.KindFormula))
	assert.True(t, Matches(op, model.KindFormulaConstant))
	assert.True(t, Matches(op, model.KindDNA))
	assert.False(t, Matches(op, model.KindGene))

	del := &model.Symbol{Sort: model.SortDeleted}
	assert.False(t, Matches(del, model.KindAny))

	for _, s := range []model.Sort{model.SortSpecies, model.SortFormula, model.SortCompartment} {
		assert.False(t, Matches(&model.Symbol{Sort: s}, model.KindUnit))
	}

	nested := &model.Symbol{Sort: model.SortStrand, Nested: true}
	assert.True(t, Matches(nested, model.KindStrandModular))
	assert.False(t, Matches(nested, model.KindStrandExpanded))
}

func TestEquationKind(t *testing.T) {
	assert.Equal(t, model.FormulaKinetic, EquationKind(&model.Symbol{Sort: model.SortReaction}))
	assert.Equal(t, model.FormulaKinetic, EquationKind(&model.Symbol{Sort: model.SortGene}))
	assert.Equal(t, model.FormulaTrigger, EquationKind(&model.Symbol{Sort: model.SortEvent}))
	assert.Equal(t, model.FormulaAssignment, EquationKind(&model.Symbol{Sort: model.SortStrand}))
	assert.Equal(t, model.FormulaInitial, EquationKind(&model.Symbol{Sort: model.SortOperator, Initial: "5"}))
	assert.Equal(t, model.FormulaAssignment, EquationKind(&model.Symbol{Sort: model.SortOperator, Assignment: "2*k"}))
	assert.Equal(t, model.FormulaRate, EquationKind(&model.Symbol{Sort: model.SortOperator, Initial: "1", Rate: "k"}))
	assert.Equal(t, model.FormulaRate, EquationKind(&model.Symbol{Sort: model.SortSpecies, Initial: "1", Rate: "k"}))
	assert.Equal(t, model.FormulaAssignment, EquationKind(&model.Symbol{Sort: model.SortFormula, Assignment: "a+b"}))
	assert.Equal(t, model.FormulaInitial, EquationKind(&model.Symbol{Sort: model.SortCompartment, Initial: "1"}))
}

func TestEquation_SlotLegality(t *testing.T) {
	rxn := &model.Symbol{Sort: model.SortReaction, Main: "k1*S1", Initial: "ignored"}
	assert.Equal(t, "k1*S1", Equation(rxn, SlotMain))
	assert.Empty(t, Equation(rxn, SlotInitial))
	assert.Empty(t, Equation(rxn, SlotRate))

	ev := &model.Symbol{Sort: model.SortEvent, Main: "time > 5"}
	assert.Equal(t, "time > 5", Equation(ev, SlotMain))
	assert.Empty(t, Equation(ev, SlotAssignment))

	ix := &model.Symbol{Sort: model.SortInteraction, Main: "x"}
	assert.Empty(t, Equation(ix, SlotMain))

	sp := &model.Symbol{Sort: model.SortSpecies, Initial: "10", Rate: "-k*S"}
	assert.Equal(t, "-k*S", Equation(sp, SlotMain))
	assert.Equal(t, "10", Equation(sp, SlotInitial))
	assert.Equal(t, "-k*S", Equation(sp, SlotRate))
	assert.Empty(t, Equation(sp, SlotAssignment))
}

func TestClassify_DeterministicProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	genSymbol := gopter.CombineGens(
		gen.IntRange(int(model.SortUnknown), int(model.SortDeleted)),
		gen.IntRange(int(model.ConstUnset), int(model.ConstNo)),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	).Map(func(v []interface{}) *model.Symbol {
		s := &model.Symbol{
			Name:          "x",
			Sort:          model.Sort(v[0].(int)),
			Const:         model.Constness(v[1].(int)),
			Boundary:      v[2].(bool),
			EventAssigned: v[3].(bool),
			Nested:        v[5].(bool),
		}
		if v[4].(bool) {
			s.Assignment = "k*2"
		}
		return s
	})

	properties.Property("classify is stable and always matches its result", prop.ForAll(
		func(s *model.Symbol) bool {
			first := Classify(s)
			second := Classify(s)
			return first == second && (first == model.KindUnknown || Matches(s, first))
		},
		genSymbol,
	))

	properties.Property("most specific kind is never a superset kind", prop.ForAll(
		func(s *model.Symbol) bool {
			switch Classify(s) {
			case model.KindAny, model.KindSpecies, model.KindFormula, model.KindDNA,
				model.KindOperator, model.KindCompartment:
				return false
			}
			return true
		},
		genSymbol,
	))

	properties.TestingRun(t)
}
