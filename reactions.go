package antimony

import (
	"antimony/internal/builder"
)

func (s *Session) reactionTable(module string) (*builder.ReactionTable, string, error) {
	m, err := s.flat(module)
	if err != nil {
		return nil, "", err
	}
	return builder.Reactions(m), m.Name, nil
}

// NumReactions counts the reactions of the flattened module, genes
// included; TypeOfSymbol still reports a gene as KindGene.
func (s *Session) NumReactions(module string) (int, error) {
	t, _, err := s.reactionTable(module)
	if err != nil {
		return 0, err
	}
	return len(t.Names), nil
}

// NumReactants returns 0 without an error for a reaction with no
// reactants, and 0 with an error when reaction n does not exist.
func (s *Session) NumReactants(module string, n int) (int, error) {
	names, err := s.NthReactionReactantNames(module, n)
	return len(names), err
}

func (s *Session) NumProducts(module string, n int) (int, error) {
	names, err := s.NthReactionProductNames(module, n)
	return len(names), err
}

// ReactantNames returns the reactant names of every reaction, one row per
// reaction.
func (s *Session) ReactantNames(module string) ([][]string, error) {
	t, _, err := s.reactionTable(module)
	if err != nil {
		return nil, err
	}
	return t.Reactants, nil
}

func (s *Session) ProductNames(module string) ([][]string, error) {
	t, _, err := s.reactionTable(module)
	if err != nil {
		return nil, err
	}
	return t.Products, nil
}

func (s *Session) NthReactionReactantNames(module string, n int) ([]string, error) {
	t, name, err := s.reactionTable(module)
	if err != nil {
		return nil, err
	}
	return nth(s, t.Reactants, n, "reaction", name)
}

func (s *Session) NthReactionProductNames(module string, n int) ([]string, error) {
	t, name, err := s.reactionTable(module)
	if err != nil {
		return nil, err
	}
	return nth(s, t.Products, n, "reaction", name)
}

func (s *Session) NthReactionMthReactantName(module string, n, m int) (string, error) {
	names, err := s.NthReactionReactantNames(module, n)
	if err != nil {
		return "", err
	}
	return nth(s, names, m, "reactant", module)
}

func (s *Session) NthReactionMthProductName(module string, n, m int) (string, error) {
	names, err := s.NthReactionProductNames(module, n)
	if err != nil {
		return "", err
	}
	return nth(s, names, m, "product", module)
}

func (s *Session) ReactantStoichiometries(module string) ([][]float64, error) {
	t, _, err := s.reactionTable(module)
	if err != nil {
		return nil, err
	}
	return t.ReactantStoichiometry, nil
}

func (s *Session) ProductStoichiometries(module string) ([][]float64, error) {
	t, _, err := s.reactionTable(module)
	if err != nil {
		return nil, err
	}
	return t.ProductStoichiometry, nil
}

func (s *Session) NthReactionReactantStoichiometries(module string, n int) ([]float64, error) {
	t, name, err := s.reactionTable(module)
	if err != nil {
		return nil, err
	}
	return nth(s, t.ReactantStoichiometry, n, "reaction", name)
}

func (s *Session) NthReactionProductStoichiometries(module string, n int) ([]float64, error) {
	t, name, err := s.reactionTable(module)
	if err != nil {
		return nil, err
	}
	return nth(s, t.ProductStoichiometry, n, "reaction", name)
}

func (s *Session) NthReactionMthReactantStoichiometry(module string, n, m int) (float64, error) {
	st, err := s.NthReactionReactantStoichiometries(module, n)
	if err != nil {
		return 0, err
	}
	return nth(s, st, m, "reactant", module)
}

func (s *Session) NthReactionMthProductStoichiometry(module string, n, m int) (float64, error) {
	st, err := s.NthReactionProductStoichiometries(module, n)
	if err != nil {
		return 0, err
	}
	return nth(s, st, m, "product", module)
}

// NumReactionRates equals NumReactions.
func (s *Session) NumReactionRates(module string) (int, error) {
	return s.NumReactions(module)
}

// ReactionRates returns the kinetic law of every reaction, "" where none
// was given.
func (s *Session) ReactionRates(module string) ([]string, error) {
	t, _, err := s.reactionTable(module)
	if err != nil {
		return nil, err
	}
	return t.Rates, nil
}

func (s *Session) NthReactionRate(module string, n int) (string, error) {
	t, name, err := s.reactionTable(module)
	if err != nil {
		return "", err
	}
	return nth(s, t.Rates, n, "reaction", name)
}

func (s *Session) interactionTable(module string) (*builder.InteractionTable, string, error) {
	m, err := s.flat(module)
	if err != nil {
		return nil, "", err
	}
	return builder.Interactions(m), m.Name, nil
}

func (s *Session) NumInteractions(module string) (int, error) {
	t, _, err := s.interactionTable(module)
	if err != nil {
		return 0, err
	}
	return len(t.Names), nil
}

func (s *Session) NumInteractors(module string, n int) (int, error) {
	names, err := s.NthInteractionInteractorNames(module, n)
	return len(names), err
}

func (s *Session) NumInteractees(module string, n int) (int, error) {
	names, err := s.NthInteractionInteracteeNames(module, n)
	return len(names), err
}

func (s *Session) InteractorNames(module string) ([][]string, error) {
	t, _, err := s.interactionTable(module)
	if err != nil {
		return nil, err
	}
	return t.Interactors, nil
}

func (s *Session) InteracteeNames(module string) ([][]string, error) {
	t, _, err := s.interactionTable(module)
	if err != nil {
		return nil, err
	}
	return t.Interactees, nil
}

func (s *Session) NthInteractionInteractorNames(module string, n int) ([]string, error) {
	t, name, err := s.interactionTable(module)
	if err != nil {
		return nil, err
	}
	return nth(s, t.Interactors, n, "interaction", name)
}

func (s *Session) NthInteractionInteracteeNames(module string, n int) ([]string, error) {
	t, name, err := s.interactionTable(module)
	if err != nil {
		return nil, err
	}
	return nth(s, t.Interactees, n, "interaction", name)
}

func (s *Session) NthInteractionMthInteractorName(module string, n, m int) (string, error) {
	names, err := s.NthInteractionInteractorNames(module, n)
	if err != nil {
		return "", err
	}
	return nth(s, names, m, "interactor", module)
}

func (s *Session) NthInteractionMthInteracteeName(module string, n, m int) (string, error) {
	names, err := s.NthInteractionInteracteeNames(module, n)
	if err != nil {
		return "", err
	}
	return nth(s, names, m, "interactee", module)
}

func (s *Session) InteractionDividers(module string) ([]Divider, error) {
	t, _, err := s.interactionTable(module)
	if err != nil {
		return nil, err
	}
	return t.Dividers, nil
}

func (s *Session) NthInteractionDivider(module string, n int) (Divider, error) {
	t, name, err := s.interactionTable(module)
	if err != nil {
		return DividerBecomes, err
	}
	return nth(s, t.Dividers, n, "interaction", name)
}

// StoichiometryMatrix returns a copy of the matrix: one row per variable
// species and one column per reaction.
func (s *Session) StoichiometryMatrix(module string) ([][]float64, error) {
	mx, err := s.matrix(module)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(mx.Values))
	for i, row := range mx.Values {
		out[i] = append([]float64(nil), row...)
	}
	return out, nil
}

func (s *Session) matrix(module string) (*builder.Matrix, error) {
	doc, err := s.active()
	if err != nil {
		return nil, err
	}
	mx, err := doc.Matrix(module)
	if err != nil {
		return nil, s.fail(err)
	}
	return mx, nil
}

// StoichiometryMatrixRowLabels names the variable species, in row order.
func (s *Session) StoichiometryMatrixRowLabels(module string) ([]string, error) {
	mx, err := s.matrix(module)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), mx.Rows...), nil
}

func (s *Session) StoichiometryMatrixColumnLabels(module string) ([]string, error) {
	mx, err := s.matrix(module)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), mx.Columns...), nil
}

func (s *Session) StoichiometryMatrixNumRows(module string) (int, error) {
	mx, err := s.matrix(module)
	if err != nil {
		return 0, err
	}
	return mx.NumRows(), nil
}

func (s *Session) StoichiometryMatrixNumColumns(module string) (int, error) {
	mx, err := s.matrix(module)
	if err != nil {
		return 0, err
	}
	return mx.NumColumns(), nil
}
