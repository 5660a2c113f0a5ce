package antimony

import (
	"antimony/internal/codec"
	"antimony/internal/diag"
	"antimony/internal/model"
)

// Error kinds. Every error returned by a Session matches one of these with
// errors.Is.
var (
	ErrLoad        = diag.ErrLoad
	ErrNotFound    = diag.ErrNotFound
	ErrUnsupported = diag.ErrUnsupported
	ErrAllocation  = diag.ErrAllocation
)

// Error is the concrete type of every Session error.
type Error = diag.Error

type (
	SymbolKind      = model.SymbolKind
	FormulaKind     = model.FormulaKind
	Divider         = model.Divider
	ReplacementPair = model.ReplacementPair
	Format          = codec.Format
)

const (
	FormatAntimony = codec.FormatAntimony
	FormatSBML     = codec.FormatSBML
	FormatCellML   = codec.FormatCellML
)

// Symbol kinds, numbered as in the libAntimony C API.
const (
	KindAny                 = model.KindAny
	KindSpecies             = model.KindSpecies
	KindFormula             = model.KindFormula
	KindDNA                 = model.KindDNA
	KindOperator            = model.KindOperator
	KindGene                = model.KindGene
	KindReaction            = model.KindReaction
	KindInteraction         = model.KindInteraction
	KindEvent               = model.KindEvent
	KindCompartment         = model.KindCompartment
	KindUnknown             = model.KindUnknown
	KindSpeciesVariable     = model.KindSpeciesVariable
	KindFormulaVariable     = model.KindFormulaVariable
	KindOperatorVariable    = model.KindOperatorVariable
	KindCompartmentVariable = model.KindCompartmentVariable
	KindSpeciesConstant     = model.KindSpeciesConstant
	KindFormulaConstant     = model.KindFormulaConstant
	KindOperatorConstant    = model.KindOperatorConstant
	KindCompartmentConstant = model.KindCompartmentConstant
	KindModule              = model.KindModule
	KindStrandExpanded      = model.KindStrandExpanded
	KindStrandModular       = model.KindStrandModular
	KindUnit                = model.KindUnit
	KindDeleted             = model.KindDeleted
)

const (
	FormulaInitial    = model.FormulaInitial
	FormulaAssignment = model.FormulaAssignment
	FormulaRate       = model.FormulaRate
	FormulaKinetic    = model.FormulaKinetic
	FormulaTrigger    = model.FormulaTrigger
)

const (
	DividerBecomes    = model.DividerBecomes
	DividerActivates  = model.DividerActivates
	DividerInhibits   = model.DividerInhibits
	DividerInfluences = model.DividerInfluences
	DividerTransforms = model.DividerTransforms
)

// DefaultCompartment is reported for symbols outside any compartment.
const DefaultCompartment = model.DefaultCompartment
