package antimony

import (
	"fmt"
	"io"
	"os"
	"strings"

	"antimony/internal/classifier"
	"antimony/internal/codec"
	"antimony/internal/diag"
	"antimony/internal/model"
)

// Render writes module of the active document in format f. An empty module
// name selects the main module. SBML output is always flattened; asking
// for hierarchical SBML records an SBML warning for the module.
func (s *Session) Render(f Format, module string, flatten bool) ([]byte, error) {
	doc, err := s.active()
	if err != nil {
		return nil, err
	}
	c, err := codec.Get(f)
	if err != nil {
		s.metrics.RecordRender(string(f), err)
		return nil, s.fail(err)
	}
	m, err := doc.Module(module)
	if err != nil {
		s.metrics.RecordRender(string(f), err)
		return nil, s.fail(err)
	}
	if f == FormatSBML {
		s.sink.BeginSBML(m.Name)
	}
	report := diag.NewReport()
	out, err := c.Render(doc.Graph, m.Name, codec.RenderOptions{Flatten: flatten, Report: report})
	s.metrics.RecordRender(string(f), err)
	if err != nil {
		s.logger.Warn("render failed", "format", f, "module", m.Name, "error", err)
		return nil, s.fail(err)
	}
	if f == FormatSBML {
		s.sink.AbsorbSBML(m.Name, report)
	}
	s.logger.Debug("rendered module", "format", f, "module", m.Name, "flatten", flatten, "bytes", len(out))
	return out, nil
}

func (s *Session) renderString(f Format, module string, flatten bool) (string, error) {
	out, err := s.Render(f, module, flatten)
	return string(out), err
}

func (s *Session) writeFile(path string, f Format, module string, flatten bool) error {
	out, err := s.Render(f, module, flatten)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return s.fail(fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}

// AntimonyString writes module and every module it instantiates,
// dependencies first.
func (s *Session) AntimonyString(module string) (string, error) {
	return s.renderString(FormatAntimony, module, false)
}

func (s *Session) WriteAntimonyFile(path, module string) error {
	return s.writeFile(path, FormatAntimony, module, false)
}

// SBMLString writes the flattened module as an SBML Level 3 document.
func (s *Session) SBMLString(module string) (string, error) {
	return s.renderString(FormatSBML, module, true)
}

func (s *Session) WriteSBMLFile(path, module string) error {
	return s.writeFile(path, FormatSBML, module, true)
}

// CompSBMLString requests hierarchical SBML. Hierarchical output is not
// supported, so the module is flattened and a warning is recorded in
// SBMLWarnings.
func (s *Session) CompSBMLString(module string) (string, error) {
	return s.renderString(FormatSBML, module, false)
}

func (s *Session) WriteCompSBMLFile(path, module string) error {
	return s.writeFile(path, FormatSBML, module, false)
}

// CellMLString keeps the module hierarchy as CellML component
// encapsulation.
func (s *Session) CellMLString(module string) (string, error) {
	return s.renderString(FormatCellML, module, false)
}

func (s *Session) WriteCellMLFile(path, module string) error {
	return s.writeFile(path, FormatCellML, module, false)
}

// AddDefaultInitialValues gives every value without an initial value,
// assignment rule or rate rule a default: 1 for parameters and compartments,
// 0 for species. Reactions without a kinetic law get a rate of 0. The
// defaults apply to module and to every module it instantiates.
//
// The active document is replaced by a derived one; earlier query results
// are unaffected.
func (s *Session) AddDefaultInitialValues(module string) error {
	doc, err := s.active()
	if err != nil {
		return err
	}
	m, err := doc.Module(module)
	if err != nil {
		return s.fail(err)
	}
	names, err := doc.Graph.Closure(m.Name)
	if err != nil {
		return s.fail(err)
	}
	g := doc.Graph.Clone()
	for _, name := range names {
		mod, _ := g.Module(name)
		for _, sym := range mod.Symbols() {
			addDefault(sym)
		}
	}
	derived := doc.Derive(g)
	s.docs.Replace(doc.Index, derived)
	return nil
}

func addDefault(sym *model.Symbol) {
	switch sym.Sort {
	case model.SortReaction, model.SortGene:
		if sym.Main == "" {
			sym.Main = "0"
		}
		return
	}
	if sym.Initial != "" || sym.Assignment != "" {
		return
	}
	switch sym.Sort {
	case model.SortSpecies:
		sym.Initial = "0"
	case model.SortCompartment, model.SortFormula, model.SortOperator, model.SortUnknown:
		sym.Initial = "1"
	}
}

// PrintAllDataFor writes a readable summary of everything the query API
// reports about module.
func (s *Session) PrintAllDataFor(w io.Writer, module string) error {
	m, err := s.flat(module)
	if err != nil {
		return err
	}
	raw, err := s.module(module)
	if err != nil {
		return err
	}
	p := &printer{w: w}
	p.line("Module %s:", m.Name)
	if len(raw.Interface) > 0 {
		p.line("  interface: (%s)", strings.Join(raw.Interface, ", "))
	}
	for k := KindSpecies; k <= KindDeleted; k++ {
		var rows []string
		for _, sym := range m.Symbols() {
			if classifier.Classify(sym) != k {
				continue
			}
			row := sym.Name
			if eq := classifier.Equation(sym, classifier.SlotMain); eq != "" {
				row += " = " + eq
			}
			if sym.Sort == model.SortSpecies || sym.Sort == model.SortCompartment {
				row += " in " + sym.CompartmentOrDefault()
			}
			if sym.DisplayName != "" {
				row += fmt.Sprintf(" (%q)", sym.DisplayName)
			}
			rows = append(rows, row)
		}
		if len(rows) == 0 {
			continue
		}
		p.line("  %s:", k)
		for _, row := range rows {
			p.line("    %s", row)
		}
	}
	if len(m.Reactions) > 0 {
		p.line("  reactions:")
		for _, r := range m.Reactions {
			rate := ""
			if sym, ok := m.Symbol(r.Name); ok {
				rate = sym.Main
			}
			p.line("    %s: %s %s %s; %s", r.Name, participants(r.Reactants), r.Divider.Arrow(), participants(r.Products), rate)
		}
	}
	if len(m.Interactions) > 0 {
		p.line("  interactions:")
		for _, ix := range m.Interactions {
			p.line("    %s: %s %s %s", ix.Name, strings.Join(ix.Interactors, " + "), ix.Divider.Arrow(), strings.Join(ix.Interactees, " + "))
		}
	}
	if len(m.Events) > 0 {
		p.line("  events:")
		for _, ev := range m.Events {
			var as []string
			for _, a := range ev.Assignments {
				as = append(as, a.Variable+" = "+a.Formula)
			}
			head := ev.Trigger
			if ev.Delay != "" {
				head = ev.Delay + " after " + head
			}
			p.line("    %s: at %s: %s (priority %q, persistent %t, t0 %t, fromTrigger %t)",
				ev.Name, head, strings.Join(as, ", "), ev.Priority, ev.Persistent, ev.T0, ev.FromTrigger)
		}
	}
	if mx, err := s.matrix(module); err == nil && mx.NumRows() > 0 && mx.NumColumns() > 0 {
		p.line("  stoichiometry matrix (%d x %d):", mx.NumRows(), mx.NumColumns())
		p.line("    %-12s %s", "", strings.Join(mx.Columns, "\t"))
		for i, row := range mx.Values {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = fmt.Sprintf("%g", v)
			}
			p.line("    %-12s %s", mx.Rows[i], strings.Join(cells, "\t"))
		}
	}
	if len(raw.Replacements) > 0 {
		p.line("  replacements:")
		for _, r := range raw.Replacements {
			p.line("    %s -> %s (%s)", r.Former, r.Replacement, r.Origin)
		}
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func participants(ps []model.Participant) string {
	parts := make([]string, len(ps))
	for i, pt := range ps {
		if pt.Stoich == 1 {
			parts[i] = pt.Name
		} else {
			parts[i] = fmt.Sprintf("%g %s", pt.Stoich, pt.Name)
		}
	}
	return strings.Join(parts, " + ")
}
