package antimony

import (
	"antimony/internal/diag"
	"antimony/internal/model"
	"antimony/internal/resolver"
)

// NumModules is the number of modules in the active document, or 0 when
// nothing is loaded.
func (s *Session) NumModules() int {
	doc, ok := s.docs.Active()
	if !ok {
		return 0
	}
	return doc.Graph.Len()
}

// ModuleNames lists the modules of the active document in definition order.
func (s *Session) ModuleNames() []string {
	doc, ok := s.docs.Active()
	if !ok {
		return nil
	}
	return doc.Graph.ModuleNames()
}

func (s *Session) NthModuleName(n int) (string, error) {
	if _, err := s.active(); err != nil {
		return "", err
	}
	return nth(s, s.ModuleNames(), n, "module", "")
}

// MainModuleName is the main module of the active document: the last module
// marked with '*', else the top-level statements, else the last module
// defined.
func (s *Session) MainModuleName() (string, error) {
	doc, err := s.active()
	if err != nil {
		return "", err
	}
	return doc.Graph.Main(), nil
}

// CheckModule reports whether module exists in the active document.
func (s *Session) CheckModule(module string) bool {
	doc, err := s.active()
	if err != nil {
		return false
	}
	if _, ok := doc.Graph.Module(module); !ok {
		s.fail(diag.NotFoundf("no such module: %q", module))
		return false
	}
	return true
}

func (s *Session) NumSymbolsInInterfaceOf(module string) (int, error) {
	m, err := s.module(module)
	if err != nil {
		return 0, err
	}
	return len(m.Interface), nil
}

// SymbolNamesInInterfaceOf returns the parameter list of module in the
// order it was declared.
func (s *Session) SymbolNamesInInterfaceOf(module string) ([]string, error) {
	m, err := s.module(module)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), m.Interface...), nil
}

func (s *Session) NthSymbolNameInInterfaceOf(module string, n int) (string, error) {
	m, err := s.module(module)
	if err != nil {
		return "", err
	}
	return nth(s, m.Interface, n, "interface symbol", m.Name)
}

func (s *Session) replacements(module string) ([]model.ReplacementPair, string, error) {
	m, err := s.module(module)
	if err != nil {
		return nil, "", err
	}
	return m.Replacements, m.Name, nil
}

func (s *Session) replacementsBetween(module, formerSub, replacementSub string) ([]model.ReplacementPair, string, error) {
	pairs, name, err := s.replacements(module)
	if err != nil {
		return nil, "", err
	}
	return resolver.Between(pairs, formerSub, replacementSub), name, nil
}

// NumReplacedSymbolNames counts the canonical replacement pairs of module.
// Chains are collapsed: after "A is B; B is C" both A and B map to C.
func (s *Session) NumReplacedSymbolNames(module string) (int, error) {
	pairs, _, err := s.replacements(module)
	return len(pairs), err
}

// AllReplacementSymbolPairs returns the canonical pairs of module in the
// order their former names first appeared.
func (s *Session) AllReplacementSymbolPairs(module string) ([]ReplacementPair, error) {
	pairs, _, err := s.replacements(module)
	if err != nil {
		return nil, err
	}
	return append([]ReplacementPair(nil), pairs...), nil
}

func (s *Session) NthReplacementSymbolPair(module string, n int) (ReplacementPair, error) {
	pairs, name, err := s.replacements(module)
	if err != nil {
		return ReplacementPair{}, err
	}
	return nth(s, pairs, n, "replacement", name)
}

func (s *Session) NthFormerSymbolName(module string, n int) (string, error) {
	p, err := s.NthReplacementSymbolPair(module, n)
	return p.Former, err
}

func (s *Session) NthReplacementSymbolName(module string, n int) (string, error) {
	p, err := s.NthReplacementSymbolPair(module, n)
	return p.Replacement, err
}

// NumReplacedSymbolNamesBetween counts the pairs whose former lives in
// submodule formerSub and whose replacement lives in replacementSub. An
// empty submodule name selects symbols of module itself.
func (s *Session) NumReplacedSymbolNamesBetween(module, formerSub, replacementSub string) (int, error) {
	pairs, _, err := s.replacementsBetween(module, formerSub, replacementSub)
	return len(pairs), err
}

func (s *Session) AllReplacementSymbolPairsBetween(module, formerSub, replacementSub string) ([]ReplacementPair, error) {
	pairs, _, err := s.replacementsBetween(module, formerSub, replacementSub)
	return pairs, err
}

func (s *Session) NthReplacementSymbolPairBetween(module, formerSub, replacementSub string, n int) (ReplacementPair, error) {
	pairs, name, err := s.replacementsBetween(module, formerSub, replacementSub)
	if err != nil {
		return ReplacementPair{}, err
	}
	return nth(s, pairs, n, "replacement between "+formerSub+" and "+replacementSub, name)
}

func (s *Session) NthFormerSymbolNameBetween(module, formerSub, replacementSub string, n int) (string, error) {
	p, err := s.NthReplacementSymbolPairBetween(module, formerSub, replacementSub, n)
	return p.Former, err
}

func (s *Session) NthReplacementSymbolNameBetween(module, formerSub, replacementSub string, n int) (string, error) {
	p, err := s.NthReplacementSymbolPairBetween(module, formerSub, replacementSub, n)
	return p.Replacement, err
}
