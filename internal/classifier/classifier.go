// Package classifier projects stored symbol attributes onto the query kinds.
// Every function here is pure.
package classifier

import "antimony/internal/model"

// Slot names one of the four equation slots of a symbol.
type Slot int

const (
	SlotMain Slot = iota
	SlotInitial
	SlotAssignment
	SlotRate
)

// IsConst resolves the const axis. An explicit const or var wins; rules and
// event assignments make a symbol variable; otherwise species are variable
// and every other sort is constant.
func IsConst(s *model.Symbol) bool {
	switch s.Const {
	case model.ConstYes:
		return true
	case model.ConstNo:
		return false
	}
	if s.Boundary {
		return true
	}
	if s.Assignment != "" || s.Rate != "" || s.EventAssigned {
		return false
	}
	return s.Sort != model.SortSpecies
}

// Classify returns the most specific kind of s.
func Classify(s *model.Symbol) model.SymbolKind {
	switch s.Sort {
	case model.SortSpecies:
		if IsConst(s) {
			return model.KindSpeciesConstant
		}
		return model.KindSpeciesVariable
	case model.SortFormula:
		if IsConst(s) {
			return model.KindFormulaConstant
		}
		return model.KindFormulaVariable
	case model.SortOperator:
		if IsConst(s) {
			return model.KindOperatorConstant
		}
		return model.KindOperatorVariable
	case model.SortCompartment:
		if IsConst(s) {
			return model.KindCompartmentConstant
		}
		return model.KindCompartmentVariable
	case model.SortGene:
		return model.KindGene
	case model.SortReaction:
		return model.KindReaction
	case model.SortInteraction:
		return model.KindInteraction
	case model.SortEvent:
		return model.KindEvent
	case model.SortStrand:
		if s.Nested {
			return model.KindStrandModular
		}
		return model.KindStrandExpanded
	case model.SortModule:
		return model.KindModule
	case model.SortDeleted:
		return model.KindDeleted
	}
	return model.KindUnknown
}

// Matches reports whether s belongs to the possibly broad kind k.
func Matches(s *model.Symbol, k model.SymbolKind) bool {
	switch k {
	case model.KindAny:
		return s.Sort != model.SortDeleted
	case model.KindSpecies:
		return s.Sort == model.SortSpecies
	case model.KindFormula:
		return s.Sort == model.SortFormula || s.Sort == model.SortOperator
	case model.KindDNA:
		return s.Sort == model.SortOperator || s.Sort == model.SortGene
	case model.KindOperator:
		return s.Sort == model.SortOperator
	case model.KindGene:
		return s.Sort == model.SortGene
	case model.KindReaction:
		return s.Sort == model.SortReaction || s.Sort == model.SortGene
	case model.KindInteraction:
		return s.Sort == model.SortInteraction
	case model.KindEvent:
		return s.Sort == model.SortEvent
	case model.KindCompartment:
		return s.Sort == model.SortCompartment
	case model.KindUnknown:
		return s.Sort == model.SortUnknown
	case model.KindSpeciesVariable, model.KindSpeciesConstant:
		return s.Sort == model.SortSpecies && IsConst(s) == (k == model.KindSpeciesConstant)
	case model.KindFormulaVariable, model.KindFormulaConstant:
		isFormula := s.Sort == model.SortFormula || s.Sort == model.SortOperator
		return isFormula && IsConst(s) == (k == model.KindFormulaConstant)
	case model.KindOperatorVariable, model.KindOperatorConstant:
		return s.Sort == model.SortOperator && IsConst(s) == (k == model.KindOperatorConstant)
	case model.KindCompartmentVariable, model.KindCompartmentConstant:
		return s.Sort == model.SortCompartment && IsConst(s) == (k == model.KindCompartmentConstant)
	case model.KindModule:
		return s.Sort == model.SortModule
	case model.KindStrandExpanded:
		return s.Sort == model.SortStrand && !s.Nested
	case model.KindStrandModular:
		return s.Sort == model.SortStrand
	case model.KindUnit:
		return false
	case model.KindDeleted:
		return s.Sort == model.SortDeleted
	}
	return false
}

// EquationKind returns the defining equation slot of s.
func EquationKind(s *model.Symbol) model.FormulaKind {
	switch s.Sort {
	case model.SortReaction, model.SortGene:
		return model.FormulaKinetic
	case model.SortEvent:
		return model.FormulaTrigger
	case model.SortStrand:
		return model.FormulaAssignment
	}
	switch {
	case s.Rate != "":
		return model.FormulaRate
	case s.Assignment != "":
		return model.FormulaAssignment
	}
	return model.FormulaInitial
}

// Legal reports whether slot carries meaning for the sort of s.
func Legal(s *model.Symbol, slot Slot) bool {
	switch s.Sort {
	case model.SortSpecies, model.SortFormula, model.SortOperator, model.SortCompartment, model.SortUnknown:
		return true
	case model.SortStrand, model.SortReaction, model.SortGene, model.SortEvent:
		return slot == SlotMain
	}
	return false
}

// Equation returns the text of slot, or "" when the slot is empty or not
// meaningful for the symbol.
//
// The main slot of a value-bearing symbol is its defining equation: the rate
// rule, else the assignment rule, else the initial value. For reactions and
// genes it is the kinetic law, for events the trigger and for strands the
// equation of the end element.
func Equation(s *model.Symbol, slot Slot) string {
	if !Legal(s, slot) {
		return ""
	}
	switch slot {
	case SlotInitial:
		return s.Initial
	case SlotAssignment:
		return s.Assignment
	case SlotRate:
		return s.Rate
	}
	switch s.Sort {
	case model.SortStrand, model.SortReaction, model.SortGene, model.SortEvent:
		return s.Main
	}
	switch {
	case s.Rate != "":
		return s.Rate
	case s.Assignment != "":
		return s.Assignment
	}
	return s.Initial
}
