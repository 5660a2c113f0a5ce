package graph

import (
	"fmt"

	"antimony/internal/diag"
	"antimony/internal/expr"
	"antimony/internal/model"
)

// Flatten returns the flattened view of module name. Symbols keep the
// module's declaration order; at each submodule instance the instance's own
// flattened symbols follow, prefixed with "instance.". Replaced formers are
// merged into their replacements and removed, and deleted names are kept
// with the deleted sort. The graph itself is not modified.
func (g *Graph) Flatten(name string) (*model.Module, error) {
	m, err := g.Lookup(name)
	if err != nil {
		return nil, err
	}
	return g.flatten(m, map[string]bool{})
}

func (g *Graph) flatten(m *model.Module, visiting map[string]bool) (*model.Module, error) {
	if visiting[m.Name] {
		return nil, cycleError([]string{m.Name, m.Name})
	}
	visiting[m.Name] = true
	defer delete(visiting, m.Name)

	own := m.Clone()
	out := model.NewModule(m.Name)
	out.Interface = own.Interface
	out.Main = own.Main
	out.BareNumbersDimensionless = own.BareNumbersDimensionless
	out.Replacements = own.Replacements
	out.Reactions = own.Reactions
	out.Interactions = own.Interactions
	out.Events = own.Events
	out.Strands = own.Strands

	for _, sym := range own.Symbols() {
		out.PutSymbol(sym)
		if sym.Sort != model.SortModule {
			continue
		}
		sub := own.Submodule(sym.Name)
		if sub == nil {
			continue
		}
		inner, ok := g.Modules[sub.Module]
		if !ok {
			return nil, diag.Loadf("module %q instantiates undefined module %q", m.Name, sub.Module)
		}
		flat, err := g.flatten(inner, visiting)
		if err != nil {
			return nil, err
		}
		if err := inline(out, flat, sub); err != nil {
			return nil, fmt.Errorf("flatten %s.%s: %w", m.Name, sub.Name, err)
		}
	}

	applyDeletions(out, own.Deletions)
	if err := applyReplacements(out, own.Replacements); err != nil {
		return nil, fmt.Errorf("flatten %s: %w", m.Name, err)
	}
	out.Finalize()
	return out, nil
}

func inline(out, flat *model.Module, sub *model.Submodule) error {
	prefix := sub.Name + "."
	ren := func(n string) string { return prefix + n }

	for _, s := range flat.Symbols() {
		c := s.Clone()
		c.Name = ren(s.Name)
		c.Lineage = append([]string{sub.Name}, s.Lineage...)
		if c.Compartment != "" {
			c.Compartment = ren(c.Compartment)
		} else if sub.Compartment != "" {
			c.Compartment = sub.Compartment
		}
		if err := renameEquations(c, ren); err != nil {
			return err
		}
		out.PutSymbol(c)
	}
	return copyEntities(out, flat, ren)
}

func renameEquations(s *model.Symbol, fn func(string) string) error {
	for _, slot := range []*string{&s.Initial, &s.Assignment, &s.Rate, &s.Main} {
		if *slot == "" {
			continue
		}
		v, err := expr.Rename(*slot, fn)
		if err != nil {
			return fmt.Errorf("symbol %s: %w", s.Name, err)
		}
		*slot = v
	}
	return nil
}

// copyEntities appends renamed copies of the reactions, interactions,
// events and strands of src to dst.
func copyEntities(dst, src *model.Module, fn func(string) string) error {
	c := src.Clone()
	for _, r := range c.Reactions {
		renameReaction(r, fn)
		dst.Reactions = append(dst.Reactions, r)
	}
	for _, i := range c.Interactions {
		renameInteraction(i, fn)
		dst.Interactions = append(dst.Interactions, i)
	}
	for _, e := range c.Events {
		if err := renameEvent(e, fn); err != nil {
			return err
		}
		dst.Events = append(dst.Events, e)
	}
	for _, s := range c.Strands {
		renameStrand(s, fn)
		dst.Strands = append(dst.Strands, s)
	}
	return nil
}

func renameReaction(r *model.Reaction, fn func(string) string) {
	r.Name = fn(r.Name)
	for i := range r.Reactants {
		r.Reactants[i].Name = fn(r.Reactants[i].Name)
	}
	for i := range r.Products {
		r.Products[i].Name = fn(r.Products[i].Name)
	}
}

func renameInteraction(ix *model.Interaction, fn func(string) string) {
	ix.Name = fn(ix.Name)
	for i := range ix.Interactors {
		ix.Interactors[i] = fn(ix.Interactors[i])
	}
	for i := range ix.Interactees {
		ix.Interactees[i] = fn(ix.Interactees[i])
	}
}

func renameEvent(e *model.Event, fn func(string) string) error {
	e.Name = fn(e.Name)
	for _, slot := range []*string{&e.Trigger, &e.Delay, &e.Priority} {
		v, err := expr.Rename(*slot, fn)
		if err != nil {
			return fmt.Errorf("event %s: %w", e.Name, err)
		}
		*slot = v
	}
	for i := range e.Assignments {
		e.Assignments[i].Variable = fn(e.Assignments[i].Variable)
		v, err := expr.Rename(e.Assignments[i].Formula, fn)
		if err != nil {
			return fmt.Errorf("event %s: %w", e.Name, err)
		}
		e.Assignments[i].Formula = v
	}
	return nil
}

func renameStrand(s *model.Strand, fn func(string) string) {
	s.Name = fn(s.Name)
	for i := range s.Components {
		s.Components[i] = fn(s.Components[i])
	}
}

func applyDeletions(m *model.Module, deletions []string) {
	if len(deletions) == 0 {
		return
	}
	gone := make(map[string]bool, len(deletions))
	for _, d := range deletions {
		gone[d] = true
		if s, ok := m.Symbol(d); ok {
			*s = model.Symbol{Name: s.Name, Sort: model.SortDeleted, Lineage: s.Lineage}
		}
	}

	reactions := m.Reactions[:0]
	for _, r := range m.Reactions {
		if !gone[r.Name] {
			reactions = append(reactions, r)
		}
	}
	m.Reactions = reactions

	interactions := m.Interactions[:0]
	for _, i := range m.Interactions {
		if !gone[i.Name] {
			interactions = append(interactions, i)
		}
	}
	m.Interactions = interactions

	events := m.Events[:0]
	for _, e := range m.Events {
		if gone[e.Name] {
			continue
		}
		kept := e.Assignments[:0]
		for _, a := range e.Assignments {
			if !gone[a.Variable] {
				kept = append(kept, a)
			}
		}
		e.Assignments = kept
		events = append(events, e)
	}
	m.Events = events

	strands := m.Strands[:0]
	for _, s := range m.Strands {
		if !gone[s.Name] {
			strands = append(strands, s)
		}
	}
	m.Strands = strands
}

// applyReplacements merges each former into its replacement: empty slots of
// the replacement are filled from the former, the former is removed, and
// every reference to it is redirected.
func applyReplacements(m *model.Module, pairs []model.ReplacementPair) error {
	if len(pairs) == 0 {
		return nil
	}
	rename := make(map[string]string, len(pairs))
	for _, p := range pairs {
		rename[p.Former] = p.Replacement
	}
	for _, p := range pairs {
		former, ok := m.Symbol(p.Former)
		if !ok {
			continue
		}
		repl := m.AddSymbol(p.Replacement)
		mergeInto(repl, former)
		m.RemoveSymbol(p.Former)
	}

	fn := func(n string) string {
		if r, ok := rename[n]; ok {
			return r
		}
		return n
	}
	for _, s := range m.Symbols() {
		if r, ok := rename[s.Compartment]; ok {
			s.Compartment = r
		}
		if err := renameEquations(s, fn); err != nil {
			return err
		}
	}
	for _, r := range m.Reactions {
		renameReaction(r, fn)
	}
	for _, i := range m.Interactions {
		renameInteraction(i, fn)
	}
	for _, e := range m.Events {
		if err := renameEvent(e, fn); err != nil {
			return err
		}
	}
	for _, s := range m.Strands {
		renameStrand(s, fn)
	}
	m.Reactions = dedupeReactions(m.Reactions)
	return nil
}

func mergeInto(dst, src *model.Symbol) {
	if dst.Sort == model.SortUnknown {
		dst.Sort = src.Sort
	}
	if dst.Const == model.ConstUnset {
		dst.Const = src.Const
	}
	dst.Boundary = dst.Boundary || src.Boundary
	fill := func(d *string, s string) {
		if *d == "" {
			*d = s
		}
	}
	fill(&dst.DisplayName, src.DisplayName)
	fill(&dst.Initial, src.Initial)
	fill(&dst.Assignment, src.Assignment)
	fill(&dst.Rate, src.Rate)
	fill(&dst.Main, src.Main)
	fill(&dst.Compartment, src.Compartment)
}

// dedupeReactions drops a reaction whose name collides with an earlier one
// after renaming.
func dedupeReactions(in []*model.Reaction) []*model.Reaction {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, r := range in {
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		out = append(out, r)
	}
	return out
}
