package antimony

import (
	"antimony/internal/classifier"
	"antimony/internal/diag"
	"antimony/internal/model"
)

// symbolsOfType lists the symbols of the flattened module matching kind, in
// declaration order.
func (s *Session) symbolsOfType(module string, kind SymbolKind) ([]*model.Symbol, string, error) {
	if !kind.Valid() {
		return nil, "", s.fail(diag.NotFoundf("%d is not a valid symbol type", int(kind)))
	}
	m, err := s.flat(module)
	if err != nil {
		return nil, "", err
	}
	var out []*model.Symbol
	for _, sym := range m.Symbols() {
		if classifier.Matches(sym, kind) {
			out = append(out, sym)
		}
	}
	return out, m.Name, nil
}

func (s *Session) projectSymbols(module string, kind SymbolKind, fn func(*model.Symbol) string) ([]string, error) {
	syms, _, err := s.symbolsOfType(module, kind)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(syms))
	for i, sym := range syms {
		out[i] = fn(sym)
	}
	return out, nil
}

func (s *Session) nthSymbol(module string, kind SymbolKind, n int, fn func(*model.Symbol) string) (string, error) {
	syms, name, err := s.symbolsOfType(module, kind)
	if err != nil {
		return "", err
	}
	sym, err := nth(s, syms, n, kind.String()+" symbol", name)
	if err != nil {
		return "", err
	}
	return fn(sym), nil
}

func symbolName(sym *model.Symbol) string    { return sym.Name }
func displayName(sym *model.Symbol) string   { return sym.DisplayName }
func compartmentOf(sym *model.Symbol) string { return sym.CompartmentOrDefault() }

func slot(sl classifier.Slot) func(*model.Symbol) string {
	return func(sym *model.Symbol) string { return classifier.Equation(sym, sl) }
}

// NumSymbolsOfType counts the symbols of the flattened module that belong
// to kind. Superset kinds such as KindSpecies include their variable and
// constant subsets.
func (s *Session) NumSymbolsOfType(module string, kind SymbolKind) (int, error) {
	syms, _, err := s.symbolsOfType(module, kind)
	return len(syms), err
}

func (s *Session) SymbolNamesOfType(module string, kind SymbolKind) ([]string, error) {
	return s.projectSymbols(module, kind, symbolName)
}

// SymbolDisplayNamesOfType returns "" for symbols without a display name.
func (s *Session) SymbolDisplayNamesOfType(module string, kind SymbolKind) ([]string, error) {
	return s.projectSymbols(module, kind, displayName)
}

// SymbolEquationsOfType returns the defining equation of each symbol: the
// rate rule, assignment rule or initial value for values, the kinetic law
// for reactions and genes, the trigger for events.
func (s *Session) SymbolEquationsOfType(module string, kind SymbolKind) ([]string, error) {
	return s.projectSymbols(module, kind, slot(classifier.SlotMain))
}

func (s *Session) SymbolInitialAssignmentsOfType(module string, kind SymbolKind) ([]string, error) {
	return s.projectSymbols(module, kind, slot(classifier.SlotInitial))
}

func (s *Session) SymbolAssignmentRulesOfType(module string, kind SymbolKind) ([]string, error) {
	return s.projectSymbols(module, kind, slot(classifier.SlotAssignment))
}

func (s *Session) SymbolRateRulesOfType(module string, kind SymbolKind) ([]string, error) {
	return s.projectSymbols(module, kind, slot(classifier.SlotRate))
}

func (s *Session) SymbolCompartmentsOfType(module string, kind SymbolKind) ([]string, error) {
	return s.projectSymbols(module, kind, compartmentOf)
}

func (s *Session) NthSymbolNameOfType(module string, kind SymbolKind, n int) (string, error) {
	return s.nthSymbol(module, kind, n, symbolName)
}

func (s *Session) NthSymbolDisplayNameOfType(module string, kind SymbolKind, n int) (string, error) {
	return s.nthSymbol(module, kind, n, displayName)
}

func (s *Session) NthSymbolEquationOfType(module string, kind SymbolKind, n int) (string, error) {
	return s.nthSymbol(module, kind, n, slot(classifier.SlotMain))
}

func (s *Session) NthSymbolInitialAssignmentOfType(module string, kind SymbolKind, n int) (string, error) {
	return s.nthSymbol(module, kind, n, slot(classifier.SlotInitial))
}

func (s *Session) NthSymbolAssignmentRuleOfType(module string, kind SymbolKind, n int) (string, error) {
	return s.nthSymbol(module, kind, n, slot(classifier.SlotAssignment))
}

func (s *Session) NthSymbolRateRuleOfType(module string, kind SymbolKind, n int) (string, error) {
	return s.nthSymbol(module, kind, n, slot(classifier.SlotRate))
}

func (s *Session) NthSymbolCompartmentOfType(module string, kind SymbolKind, n int) (string, error) {
	return s.nthSymbol(module, kind, n, compartmentOf)
}

func (s *Session) symbol(module, name string) (*model.Symbol, error) {
	m, err := s.flat(module)
	if err != nil {
		return nil, err
	}
	sym, ok := m.Symbol(name)
	if !ok {
		return nil, s.fail(diag.NotFoundf("no symbol %q in module %q", name, m.Name))
	}
	return sym, nil
}

// TypeOfSymbol returns the most specific kind of the named symbol.
func (s *Session) TypeOfSymbol(module, name string) (SymbolKind, error) {
	sym, err := s.symbol(module, name)
	if err != nil {
		return KindUnknown, err
	}
	return classifier.Classify(sym), nil
}

func (s *Session) TypeOfEquationForSymbol(module, name string) (FormulaKind, error) {
	sym, err := s.symbol(module, name)
	if err != nil {
		return FormulaInitial, err
	}
	return classifier.EquationKind(sym), nil
}

// CompartmentForSymbol returns DefaultCompartment for symbols that were
// never placed in a compartment.
func (s *Session) CompartmentForSymbol(module, name string) (string, error) {
	sym, err := s.symbol(module, name)
	if err != nil {
		return "", err
	}
	return sym.CompartmentOrDefault(), nil
}
