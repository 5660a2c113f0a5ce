package model

import (
	"sort"
	"strings"
)

const (
	// DefaultCompartment is reported for symbols that never had a
	// compartment set or inherited.
	DefaultCompartment = "default_compartment"
	// MainModuleName holds statements that appear outside any module block.
	MainModuleName = "__main"
)

// Symbol is one named entity of a module.
type Symbol struct {
	Name        string
	DisplayName string
	Sort        Sort
	Const       Constness
	// Boundary marks species written with a leading '$'.
	Boundary bool

	Initial    string
	Assignment string
	Rate       string
	// Main is the kinetic law of a reaction or gene, the trigger of an
	// event, or the end-element equation of a strand.
	Main string

	// Compartment is empty when unset.
	Compartment string
	// Lineage is the instance path that owns the symbol in a flattened view.
	Lineage []string

	// EventAssigned is set when some event assigns to the symbol.
	EventAssigned bool
	// Nested is set on strands that appear inside another strand.
	Nested bool
}

// CompartmentOrDefault returns the compartment or DefaultCompartment.
func (s *Symbol) CompartmentOrDefault() string {
	if s.Compartment == "" {
		return DefaultCompartment
	}
	return s.Compartment
}

// Clone copies the symbol, including its lineage slice.
func (s *Symbol) Clone() *Symbol {
	c := *s
	c.Lineage = append([]string(nil), s.Lineage...)
	return &c
}

// Participant is one side entry of a reaction.
type Participant struct {
	Name   string
	Stoich float64
}

type Reaction struct {
	Name      string
	Reactants []Participant
	Products  []Participant
	Divider   Divider
}

type Interaction struct {
	Name        string
	Interactors []string
	Interactees []string
	Divider     Divider
}

type EventAssignment struct {
	Variable string
	Formula  string
}

type Event struct {
	Name        string
	Trigger     string
	Delay       string
	Priority    string
	Persistent  bool
	T0          bool
	FromTrigger bool
	Assignments []EventAssignment
}

// NewEvent returns an event with the documented flag defaults.
func NewEvent(name string) *Event {
	return &Event{Name: name, Persistent: false, T0: true, FromTrigger: true}
}

// Strand is a DNA strand as written: components may name other strands.
type Strand struct {
	Name           string
	Components     []string
	OpenUpstream   bool
	OpenDownstream bool
}

// Submodule is an instantiation of another module.
type Submodule struct {
	Name        string
	Module      string
	Args        []string
	Compartment string
}

// Identity is an explicit `former is replacement` declaration.
type Identity struct {
	Former      string
	Replacement string
}

// Origin records where a replacement pair came from.
type Origin string

const (
	OriginIdentity  Origin = "identity"
	OriginInterface Origin = "interface"
)

// ReplacementPair is a canonicalized former -> replacement link.
type ReplacementPair struct {
	Former               string
	Replacement          string
	FormerSubmodule      string
	ReplacementSubmodule string
	Origin               Origin
}

// Module is one self-contained network definition.
type Module struct {
	Name      string
	Interface []string
	Main      bool

	symbols map[string]*Symbol
	order   []string

	Reactions    []*Reaction
	Interactions []*Interaction
	Events       []*Event
	Strands      []*Strand
	Submodules   []*Submodule
	Identities   []Identity
	Deletions    []string

	// Replacements is filled by the resolver chain.
	Replacements []ReplacementPair

	BareNumbersDimensionless bool
	finalized                bool
}

func NewModule(name string) *Module {
	return &Module{Name: name, symbols: make(map[string]*Symbol)}
}

// AddSymbol returns the symbol called name, creating it with an unknown
// sort on first use. Creation order is the declaration order.
func (m *Module) AddSymbol(name string) *Symbol {
	if s, ok := m.symbols[name]; ok {
		return s
	}
	s := &Symbol{Name: name}
	m.symbols[name] = s
	m.order = append(m.order, name)
	return s
}

// PutSymbol inserts s, replacing any existing symbol of the same name but
// keeping its original position.
func (m *Module) PutSymbol(s *Symbol) {
	if _, ok := m.symbols[s.Name]; !ok {
		m.order = append(m.order, s.Name)
	}
	m.symbols[s.Name] = s
}

// RemoveSymbol drops the symbol and its position.
func (m *Module) RemoveSymbol(name string) {
	if _, ok := m.symbols[name]; !ok {
		return
	}
	delete(m.symbols, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *Module) Symbol(name string) (*Symbol, bool) {
	s, ok := m.symbols[name]
	return s, ok
}

func (m *Module) HasSymbol(name string) bool {
	_, ok := m.symbols[name]
	return ok
}

// Symbols returns all symbols in declaration order.
func (m *Module) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, m.symbols[n])
	}
	return out
}

func (m *Module) NumSymbols() int { return len(m.order) }

func (m *Module) Reaction(name string) *Reaction {
	for _, r := range m.Reactions {
		if r.Name == name {
			return r
		}
	}
	return nil
}

func (m *Module) Interaction(name string) *Interaction {
	for _, i := range m.Interactions {
		if i.Name == name {
			return i
		}
	}
	return nil
}

func (m *Module) Event(name string) *Event {
	for _, e := range m.Events {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (m *Module) Strand(name string) *Strand {
	for _, s := range m.Strands {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (m *Module) Submodule(name string) *Submodule {
	for _, s := range m.Submodules {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// IsEmpty reports whether the module carries no content at all.
func (m *Module) IsEmpty() bool {
	return len(m.order) == 0 && len(m.Submodules) == 0 && len(m.Identities) == 0 && len(m.Deletions) == 0
}

func (m *Module) Finalized() bool { return m.finalized }

// Clone returns a deep copy that may be mutated freely.
func (m *Module) Clone() *Module {
	c := &Module{
		Name:                     m.Name,
		Interface:                append([]string(nil), m.Interface...),
		Main:                     m.Main,
		symbols:                  make(map[string]*Symbol, len(m.symbols)),
		order:                    append([]string(nil), m.order...),
		Identities:               append([]Identity(nil), m.Identities...),
		Deletions:                append([]string(nil), m.Deletions...),
		Replacements:             append([]ReplacementPair(nil), m.Replacements...),
		BareNumbersDimensionless: m.BareNumbersDimensionless,
		finalized:                m.finalized,
	}
	for n, s := range m.symbols {
		c.symbols[n] = s.Clone()
	}
	for _, r := range m.Reactions {
		rc := *r
		rc.Reactants = append([]Participant(nil), r.Reactants...)
		rc.Products = append([]Participant(nil), r.Products...)
		c.Reactions = append(c.Reactions, &rc)
	}
	for _, i := range m.Interactions {
		ic := *i
		ic.Interactors = append([]string(nil), i.Interactors...)
		ic.Interactees = append([]string(nil), i.Interactees...)
		c.Interactions = append(c.Interactions, &ic)
	}
	for _, e := range m.Events {
		ec := *e
		ec.Assignments = append([]EventAssignment(nil), e.Assignments...)
		c.Events = append(c.Events, &ec)
	}
	for _, s := range m.Strands {
		sc := *s
		sc.Components = append([]string(nil), s.Components...)
		c.Strands = append(c.Strands, &sc)
	}
	for _, s := range m.Submodules {
		sc := *s
		sc.Args = append([]string(nil), s.Args...)
		c.Submodules = append(c.Submodules, &sc)
	}
	return c
}

// Finalize derives the attributes that depend on the whole module body:
// event-assigned flags, strand nesting, DNA component sorts and strand end
// equations. Entity lists are put into symbol declaration order so ordinals
// agree with symbol enumeration.
func (m *Module) Finalize() {
	for _, e := range m.Events {
		for _, a := range e.Assignments {
			m.AddSymbol(a.Variable).EventAssigned = true
		}
	}

	strandNames := make(map[string]bool, len(m.Strands))
	for _, st := range m.Strands {
		strandNames[st.Name] = true
	}
	for _, st := range m.Strands {
		for _, c := range st.Components {
			if strandNames[c] {
				m.AddSymbol(c).Nested = true
				continue
			}
			sym := m.AddSymbol(c)
			switch sym.Sort {
			case SortUnknown, SortFormula:
				sym.Sort = SortOperator
			case SortReaction:
				sym.Sort = SortGene
			}
		}
	}
	for _, st := range m.Strands {
		m.AddSymbol(st.Name).Main = m.strandEnd(st, map[string]bool{})
	}

	m.sortEntities()
	m.finalized = true
}

func (m *Module) strandEnd(st *Strand, seen map[string]bool) string {
	if len(st.Components) == 0 || seen[st.Name] {
		return ""
	}
	seen[st.Name] = true
	last := st.Components[len(st.Components)-1]
	if inner := m.Strand(last); inner != nil {
		return m.strandEnd(inner, seen)
	}
	sym, ok := m.symbols[last]
	if !ok {
		return ""
	}
	if sym.Sort == SortGene {
		return sym.Main
	}
	if sym.Assignment != "" {
		return sym.Assignment
	}
	return sym.Initial
}

func (m *Module) position() map[string]int {
	pos := make(map[string]int, len(m.order))
	for i, n := range m.order {
		pos[n] = i
	}
	return pos
}

func (m *Module) sortEntities() {
	pos := m.position()
	sort.SliceStable(m.Reactions, func(i, j int) bool {
		return pos[m.Reactions[i].Name] < pos[m.Reactions[j].Name]
	})
	sort.SliceStable(m.Interactions, func(i, j int) bool {
		return pos[m.Interactions[i].Name] < pos[m.Interactions[j].Name]
	})
	sort.SliceStable(m.Events, func(i, j int) bool {
		return pos[m.Events[i].Name] < pos[m.Events[j].Name]
	})
	sort.SliceStable(m.Strands, func(i, j int) bool {
		return pos[m.Strands[i].Name] < pos[m.Strands[j].Name]
	})
	sort.SliceStable(m.Submodules, func(i, j int) bool {
		return pos[m.Submodules[i].Name] < pos[m.Submodules[j].Name]
	})
}

// SplitPath splits a dotted name into its first segment and the rest.
// Undotted names return an empty scope.
func SplitPath(name string) (scope, rest string) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}
