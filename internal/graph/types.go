package graph

// Edge is a submodule instantiation: module From contains instance Instance
// of module To.
type Edge struct {
	From     string
	To       string
	Instance string
}

type UnresolvedReason string

const (
	ReasonNoModule UnresolvedReason = "no_module"
	ReasonNoSymbol UnresolvedReason = "no_symbol"
	ReasonArity    UnresolvedReason = "arity"
)

// UnresolvedRef is a reference that could not be bound while linking.
type UnresolvedRef struct {
	Module string
	Target string
	Reason UnresolvedReason
}
