package antimony

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"antimony/internal/codec"
	"antimony/internal/expr"
	"antimony/internal/graph"
	"antimony/internal/model"
)

// declOrder is the order declaration and value sections list sorts in.
var declOrder = []model.Sort{
	model.SortCompartment,
	model.SortSpecies,
	model.SortFormula,
	model.SortOperator,
	model.SortGene,
	model.SortUnknown,
}

func render(g *graph.Graph, root string, opts codec.RenderOptions) ([]byte, error) {
	if root == "" {
		root = g.Main()
	}
	var b strings.Builder
	if opts.Flatten {
		flat, err := g.Flatten(root)
		if err != nil {
			return nil, err
		}
		w := &moduleWriter{b: &b, m: flat, flat: true}
		if err := w.write(true); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	}

	names, err := g.Closure(root)
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		if i > 0 {
			b.WriteString("\n")
		}
		m, _ := g.Module(name)
		w := &moduleWriter{b: &b, m: m}
		if err := w.write(name == g.Main()); err != nil {
			return nil, err
		}
	}
	return []byte(b.String()), nil
}

type moduleWriter struct {
	b    *strings.Builder
	m    *model.Module
	flat bool
}

// name maps a symbol name to its printed form. Flattened output cannot
// carry dotted names, so the instance separator becomes a double
// underscore.
func (w *moduleWriter) name(n string) string {
	if w.flat {
		return strings.ReplaceAll(n, ".", "__")
	}
	return n
}

func (w *moduleWriter) formula(src string) (string, error) {
	if !w.flat {
		return src, nil
	}
	return expr.Rename(src, w.name)
}

func (w *moduleWriter) line(format string, args ...any) {
	w.b.WriteString("  ")
	fmt.Fprintf(w.b, format, args...)
	w.b.WriteString("\n")
}

func (w *moduleWriter) section(title string) {
	w.b.WriteString("\n  // " + title + ":\n")
}

// visible reports whether s is printed at all.
func (w *moduleWriter) visible(s *model.Symbol) bool {
	return s.Sort != model.SortDeleted && !(w.flat && s.Sort == model.SortModule)
}

// grouped returns the printable symbols of the given sort sorted by name,
// which keeps the output independent of the order symbols were first
// mentioned in.
func (w *moduleWriter) grouped(kind model.Sort) []*model.Symbol {
	var out []*model.Symbol
	for _, s := range w.m.Symbols() {
		if s.Sort == kind && w.visible(s) {
			out = append(out, s)
		}
	}
	sortByName(out, w.name)
	return out
}

func sortByName(syms []*model.Symbol, name func(string) string) {
	sort.SliceStable(syms, func(i, j int) bool { return name(syms[i].Name) < name(syms[j].Name) })
}

func (w *moduleWriter) write(main bool) error {
	star := ""
	if main {
		star = "*"
	}
	iface := make([]string, len(w.m.Interface))
	for i, n := range w.m.Interface {
		iface[i] = w.name(n)
	}
	fmt.Fprintf(w.b, "model %s%s(%s)\n", star, w.m.Name, strings.Join(iface, ", "))

	steps := []func() error{
		w.writeSubmodules,
		w.writeDeclarations,
		w.writeReactions,
		w.writeInteractions,
		w.writeEvents,
		w.writeStrands,
		w.writeLinks,
		w.writeValues,
		w.writeDisplayNames,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("render %s: %w", w.m.Name, err)
		}
	}
	w.b.WriteString("end\n")
	return nil
}

func (w *moduleWriter) writeSubmodules() error {
	if w.flat || len(w.m.Submodules) == 0 {
		return nil
	}
	w.section("Sub-modules")
	for _, sub := range w.m.Submodules {
		text := fmt.Sprintf("%s: %s(%s)", sub.Name, sub.Module, strings.Join(sub.Args, ", "))
		if sub.Compartment != "" {
			text += " in " + sub.Compartment
		}
		w.line("%s;", text)
	}
	return nil
}

func constPrefix(c model.Constness) string {
	switch c {
	case model.ConstYes:
		return "const "
	case model.ConstNo:
		return "var "
	}
	return ""
}

// declKeyword returns the declaration keyword for s, or "" when s is not
// declared.
func (w *moduleWriter) declKeyword(s *model.Symbol) string {
	switch s.Sort {
	case model.SortCompartment:
		return constPrefix(s.Const) + "compartment"
	case model.SortSpecies:
		return constPrefix(s.Const) + "species"
	case model.SortFormula:
		if s.Const == model.ConstUnset {
			return "formula"
		}
		return strings.TrimSpace(constPrefix(s.Const))
	case model.SortOperator:
		return constPrefix(s.Const) + "operator"
	case model.SortGene:
		if w.m.Reaction(s.Name) != nil {
			return ""
		}
		return "gene"
	}
	return ""
}

func (w *moduleWriter) writeDeclarations() error {
	type group struct {
		keyword string
		items   []string
	}
	var groups []*group
	index := map[string]*group{}
	var placements []string

	for _, kind := range declOrder {
		for _, s := range w.grouped(kind) {
			kw := w.declKeyword(s)
			if kw == "" {
				if s.Compartment != "" && kind == model.SortUnknown {
					placements = append(placements, fmt.Sprintf("%s in %s", w.name(s.Name), w.name(s.Compartment)))
				}
				continue
			}
			item := w.name(s.Name)
			if s.Boundary {
				item = "$" + item
			}
			if s.Compartment != "" {
				item += " in " + w.name(s.Compartment)
			}
			gr, ok := index[kw]
			if !ok {
				gr = &group{keyword: kw}
				index[kw] = gr
				groups = append(groups, gr)
			}
			gr.items = append(gr.items, item)
		}
	}
	if len(groups) == 0 && len(placements) == 0 {
		return nil
	}
	w.section("Declarations")
	for _, gr := range groups {
		w.line("%s %s;", gr.keyword, strings.Join(gr.items, ", "))
	}
	for _, p := range placements {
		w.line("%s;", p)
	}
	return nil
}

func (w *moduleWriter) side(ps []model.Participant) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = w.name(p.Name)
		if p.Stoich != 1 {
			parts[i] = expr.FormatFloat(p.Stoich) + " " + parts[i]
		}
	}
	return strings.Join(parts, " + ")
}

func (w *moduleWriter) writeReactions() error {
	if len(w.m.Reactions) == 0 {
		return nil
	}
	w.section("Reactions")
	for _, r := range w.m.Reactions {
		if s, ok := w.m.Symbol(r.Name); ok && !w.visible(s) {
			continue
		}
		text := fmt.Sprintf("%s: %s %s %s", w.name(r.Name), w.side(r.Reactants), r.Divider.Arrow(), w.side(r.Products))
		text = strings.Join(strings.Fields(text), " ")
		if s, ok := w.m.Symbol(r.Name); ok && s.Main != "" {
			rate, err := w.formula(s.Main)
			if err != nil {
				return err
			}
			text += "; " + rate
		}
		w.line("%s;", text)
	}
	return nil
}

func (w *moduleWriter) names(in []string) string {
	out := make([]string, len(in))
	for i, n := range in {
		out[i] = w.name(n)
	}
	return strings.Join(out, " + ")
}

func (w *moduleWriter) writeInteractions() error {
	if len(w.m.Interactions) == 0 {
		return nil
	}
	w.section("Interactions")
	for _, ix := range w.m.Interactions {
		w.line("%s: %s %s %s;", w.name(ix.Name), w.names(ix.Interactors), ix.Divider.Arrow(), w.names(ix.Interactees))
	}
	return nil
}

func (w *moduleWriter) writeEvents() error {
	if len(w.m.Events) == 0 {
		return nil
	}
	w.section("Events")
	for _, ev := range w.m.Events {
		trigger, err := w.formula(ev.Trigger)
		if err != nil {
			return err
		}
		text := w.name(ev.Name) + ": at "
		if ev.Delay != "" {
			delay, err := w.formula(ev.Delay)
			if err != nil {
				return err
			}
			text += delay + " after "
		}
		text += trigger
		if !ev.T0 {
			text += ", t0=false"
		}
		if ev.Priority != "" {
			prio, err := w.formula(ev.Priority)
			if err != nil {
				return err
			}
			text += ", priority=" + prio
		}
		if ev.Persistent {
			text += ", persistent=true"
		}
		if !ev.FromTrigger {
			text += ", fromTrigger=false"
		}
		assigns := make([]string, 0, len(ev.Assignments))
		for _, a := range ev.Assignments {
			f, err := w.formula(a.Formula)
			if err != nil {
				return err
			}
			assigns = append(assigns, w.name(a.Variable)+" = "+f)
		}
		w.line("%s: %s;", text, strings.Join(assigns, ", "))
	}
	return nil
}

func (w *moduleWriter) writeStrands() error {
	if len(w.m.Strands) == 0 {
		return nil
	}
	w.section("DNA strands")
	for _, st := range w.m.Strands {
		comps := make([]string, len(st.Components))
		for i, c := range st.Components {
			comps[i] = w.name(c)
		}
		text := strings.Join(comps, "--")
		if st.OpenUpstream {
			text = "--" + text
		}
		if st.OpenDownstream {
			text += "--"
		}
		w.line("%s: %s;", w.name(st.Name), text)
	}
	return nil
}

func (w *moduleWriter) writeLinks() error {
	if w.flat || (len(w.m.Deletions) == 0 && len(w.m.Identities) == 0) {
		return nil
	}
	w.section("Synchronizations and deletions")
	for _, id := range w.m.Identities {
		w.line("%s is %s;", id.Former, id.Replacement)
	}
	for _, d := range w.m.Deletions {
		w.line("delete %s;", d)
	}
	return nil
}

func (w *moduleWriter) writeValues() error {
	titles := map[model.Sort]string{
		model.SortCompartment: "Compartment initializations",
		model.SortSpecies:     "Species initializations",
		model.SortFormula:     "Variable initializations",
		model.SortOperator:    "Operator initializations",
		model.SortGene:        "Gene initializations",
		model.SortUnknown:     "Other initializations",
	}
	var rules []string
	for _, kind := range declOrder {
		var lines []string
		for _, s := range w.grouped(kind) {
			for _, slot := range []struct {
				op, text string
			}{{" = ", s.Initial}, {" := ", s.Assignment}, {"' = ", s.Rate}} {
				if slot.text == "" {
					continue
				}
				f, err := w.formula(slot.text)
				if err != nil {
					return err
				}
				stmt := w.name(s.Name) + slot.op + f + ";"
				if slot.op == " = " {
					lines = append(lines, stmt)
				} else {
					rules = append(rules, stmt)
				}
			}
		}
		if len(lines) > 0 {
			w.section(titles[kind])
			for _, l := range lines {
				w.line("%s", l)
			}
		}
	}
	if len(rules) > 0 {
		w.section("Rules")
		for _, r := range rules {
			w.line("%s", r)
		}
	}
	return nil
}

func (w *moduleWriter) writeDisplayNames() error {
	var lines []string
	for _, s := range w.m.Symbols() {
		if s.DisplayName != "" && w.visible(s) {
			lines = append(lines, fmt.Sprintf("%s is %s;", w.name(s.Name), strconv.Quote(s.DisplayName)))
		}
	}
	if len(lines) == 0 {
		return nil
	}
	sort.Strings(lines)
	w.section("Display names")
	for _, l := range lines {
		w.line("%s", l)
	}
	return nil
}
