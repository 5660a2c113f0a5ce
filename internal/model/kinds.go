package model

// SymbolKind is the query-facing classification of a symbol. The numbering
// is part of the public contract and must not change.
type SymbolKind int

const (
	KindAny SymbolKind = iota
	KindSpecies
	KindFormula
	KindDNA
	KindOperator
	KindGene
	KindReaction
	KindInteraction
	KindEvent
	KindCompartment
	KindUnknown
	KindSpeciesVariable
	KindFormulaVariable
	KindOperatorVariable
	KindCompartmentVariable
	KindSpeciesConstant
	KindFormulaConstant
	KindOperatorConstant
	KindCompartmentConstant
	KindModule
	KindStrandExpanded
	KindStrandModular
	KindUnit
	KindDeleted
)

var kindNames = [...]string{
	"all", "species", "formula", "DNA", "operator", "gene", "reaction",
	"interaction", "event", "compartment", "unknown",
	"variable species", "variable formula", "variable operator", "variable compartment",
	"constant species", "constant formula", "constant operator", "constant compartment",
	"module", "expanded strand", "modular strand", "unit", "deleted",
}

func (k SymbolKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the enumerated kinds.
func (k SymbolKind) Valid() bool {
	return k >= KindAny && k <= KindDeleted
}

// FormulaKind names the defining equation slot of a symbol.
type FormulaKind int

const (
	FormulaInitial FormulaKind = iota
	FormulaAssignment
	FormulaRate
	FormulaKinetic
	FormulaTrigger
)

func (f FormulaKind) String() string {
	switch f {
	case FormulaInitial:
		return "initial"
	case FormulaAssignment:
		return "assignment"
	case FormulaRate:
		return "rate"
	case FormulaKinetic:
		return "kinetic"
	case FormulaTrigger:
		return "trigger"
	}
	return "invalid"
}

// Divider separates the left and right hand sides of a reaction or
// interaction.
type Divider int

const (
	DividerBecomes Divider = iota
	DividerActivates
	DividerInhibits
	DividerInfluences
	DividerTransforms
)

// Arrow returns the Antimony spelling of the divider.
func (d Divider) Arrow() string {
	switch d {
	case DividerBecomes:
		return "->"
	case DividerActivates:
		return "-o"
	case DividerInhibits:
		return "-|"
	case DividerInfluences:
		return "-("
	case DividerTransforms:
		return "=>"
	}
	return "?"
}

// Sort is the declared nature of a symbol, before the const axis and
// flattening views are folded in by the classifier.
type Sort int

const (
	SortUnknown Sort = iota
	SortSpecies
	SortFormula
	SortOperator
	SortGene
	SortReaction
	SortInteraction
	SortEvent
	SortCompartment
	SortStrand
	SortModule
	SortDeleted
)

func (s Sort) String() string {
	switch s {
	case SortSpecies:
		return "species"
	case SortFormula:
		return "formula"
	case SortOperator:
		return "operator"
	case SortGene:
		return "gene"
	case SortReaction:
		return "reaction"
	case SortInteraction:
		return "interaction"
	case SortEvent:
		return "event"
	case SortCompartment:
		return "compartment"
	case SortStrand:
		return "strand"
	case SortModule:
		return "module"
	case SortDeleted:
		return "deleted"
	}
	return "unknown"
}

// Constness is the tri-state const axis. Unset symbols take the default
// of their sort.
type Constness int

const (
	ConstUnset Constness = iota
	ConstYes
	ConstNo
)
