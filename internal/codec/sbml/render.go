package sbml

import (
	"encoding/xml"
	"fmt"
	"strings"

	"antimony/internal/classifier"
	"antimony/internal/codec"
	"antimony/internal/expr"
	"antimony/internal/graph"
	"antimony/internal/mathml"
	"antimony/internal/model"
	"antimony/internal/xmltree"
)

const coreNamespace = "http://www.sbml.org/sbml/level3/version1/core"

type writer struct {
	w      *xmltree.Writer
	m      *model.Module
	opts   codec.RenderOptions
	module string
	math   mathml.Options
	attrs  []xml.Attr
}

func id(name string) string { return strings.ReplaceAll(name, ".", "__") }

func render(g *graph.Graph, root string, opts codec.RenderOptions) ([]byte, error) {
	src, err := g.Lookup(root)
	if err != nil {
		return nil, err
	}
	flat, err := g.Flatten(src.Name)
	if err != nil {
		return nil, err
	}
	wr := &writer{w: xmltree.NewWriter(), m: flat, opts: opts, module: src.Name}
	if !opts.Flatten && len(src.Submodules) > 0 {
		wr.warn("hierarchical SBML output is not supported; module %s was flattened", src.Name)
	}
	if opts.BareNumbersDimensionless || flat.BareNumbersDimensionless {
		wr.math.NumberAttrs = []xml.Attr{xmltree.A("sbml:units", "dimensionless")}
		wr.attrs = []xml.Attr{xmltree.A("xmlns:sbml", coreNamespace)}
	}
	if err := wr.document(); err != nil {
		return nil, fmt.Errorf("render %s as SBML: %w", src.Name, err)
	}
	return wr.w.Bytes(), nil
}

func (wr *writer) info(format string, args ...any) {
	wr.opts.Report.Infof(wr.module, fmt.Sprintf(format, args...))
}

func (wr *writer) warn(format string, args ...any) {
	wr.opts.Report.Warnf(wr.module, fmt.Sprintf(format, args...))
}

func (wr *writer) formula(src string) (expr.Node, error) {
	n, err := expr.Parse(src)
	if err != nil {
		return nil, err
	}
	return expr.Map(n, id), nil
}

// writeMath emits <tag><math/></tag>, or just <math/> when tag is empty.
func (wr *writer) writeMath(tag, src string, attrs ...xml.Attr) error {
	n, err := wr.formula(src)
	if err != nil {
		return err
	}
	if tag != "" {
		wr.w.Open(tag, attrs...)
	}
	mathml.Write(wr.w, n, wr.math, wr.attrs...)
	if tag != "" {
		wr.w.Close(tag)
	}
	return nil
}

func (wr *writer) symbols(keep func(*model.Symbol) bool) []*model.Symbol {
	var out []*model.Symbol
	for _, s := range wr.m.Symbols() {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func boolAttr(name string, v bool) xml.Attr {
	if v {
		return xmltree.A(name, "true")
	}
	return xmltree.A(name, "false")
}

func named(s *model.Symbol, attrs ...xml.Attr) []xml.Attr {
	out := []xml.Attr{xmltree.A("id", id(s.Name))}
	if s.DisplayName != "" {
		out = append(out, xmltree.A("name", s.DisplayName))
	}
	return append(out, attrs...)
}

func isParameter(s *model.Symbol) bool {
	switch s.Sort {
	case model.SortFormula, model.SortOperator, model.SortUnknown:
		return true
	}
	return false
}

func (wr *writer) document() error {
	if len(wr.m.Interactions) > 0 {
		wr.info("%d interactions were not exported because SBML core cannot represent them", len(wr.m.Interactions))
	}
	if len(wr.m.Strands) > 0 {
		wr.info("%d DNA strands were not exported because SBML core cannot represent them", len(wr.m.Strands))
	}

	wr.w.Open("sbml", xmltree.A("xmlns", coreNamespace), xmltree.A("level", "3"), xmltree.A("version", "1"))
	wr.w.Open("model", xmltree.A("id", id(wr.m.Name)), xmltree.A("name", wr.m.Name))
	wr.compartments()
	wr.species()
	wr.parameters()
	steps := []func() error{wr.initialAssignments, wr.rules, wr.reactions, wr.events}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	wr.w.Close("model")
	wr.w.Close("sbml")
	return nil
}

// literal splits an initial value into a numeric attribute or, when it is
// not a plain number, an initial assignment.
func literal(s *model.Symbol) (string, bool) {
	if s.Initial == "" {
		return "", false
	}
	if v, ok := expr.Literal(s.Initial); ok {
		return expr.FormatFloat(v), true
	}
	return "", false
}

func (wr *writer) needsDefaultCompartment() bool {
	for _, s := range wr.m.Symbols() {
		if s.Sort == model.SortSpecies && s.Compartment == "" {
			return !wr.m.HasSymbol(model.DefaultCompartment)
		}
	}
	return false
}

func (wr *writer) compartments() {
	comps := wr.symbols(func(s *model.Symbol) bool { return s.Sort == model.SortCompartment })
	if len(comps) == 0 && !wr.needsDefaultCompartment() {
		return
	}
	wr.w.Open("listOfCompartments")
	if wr.needsDefaultCompartment() {
		wr.w.Empty("compartment", xmltree.A("id", model.DefaultCompartment), xmltree.A("spatialDimensions", "3"),
			xmltree.A("size", "1"), xmltree.A("constant", "true"))
	}
	for _, s := range comps {
		attrs := named(s, xmltree.A("spatialDimensions", "3"))
		if v, ok := literal(s); ok {
			attrs = append(attrs, xmltree.A("size", v))
		}
		if s.Compartment != "" {
			attrs = append(attrs, xmltree.A("outside", id(s.Compartment)))
		}
		attrs = append(attrs, boolAttr("constant", classifier.IsConst(s)))
		wr.w.Empty("compartment", attrs...)
		wr.warn("compartment %q has no units defined", id(s.Name))
	}
	wr.w.Close("listOfCompartments")
}

func (wr *writer) species() {
	list := wr.symbols(func(s *model.Symbol) bool { return s.Sort == model.SortSpecies })
	if len(list) == 0 {
		return
	}
	wr.w.Open("listOfSpecies")
	for _, s := range list {
		attrs := named(s, xmltree.A("compartment", id(s.CompartmentOrDefault())))
		if v, ok := literal(s); ok {
			attrs = append(attrs, xmltree.A("initialConcentration", v))
		}
		attrs = append(attrs,
			xmltree.A("hasOnlySubstanceUnits", "false"),
			boolAttr("boundaryCondition", s.Boundary),
			boolAttr("constant", s.Const == model.ConstYes),
		)
		wr.w.Empty("species", attrs...)
		wr.warn("species %q has no units defined", id(s.Name))
	}
	wr.w.Close("listOfSpecies")
}

func (wr *writer) parameters() {
	list := wr.symbols(isParameter)
	if len(list) == 0 {
		return
	}
	wr.w.Open("listOfParameters")
	for _, s := range list {
		attrs := named(s)
		if v, ok := literal(s); ok {
			attrs = append(attrs, xmltree.A("value", v))
		}
		attrs = append(attrs, boolAttr("constant", classifier.IsConst(s)))
		wr.w.Empty("parameter", attrs...)
		wr.warn("parameter %q has no units defined", id(s.Name))
	}
	wr.w.Close("listOfParameters")
}

func valued(s *model.Symbol) bool {
	return s.Sort == model.SortSpecies || s.Sort == model.SortCompartment || isParameter(s)
}

func (wr *writer) initialAssignments() error {
	list := wr.symbols(func(s *model.Symbol) bool {
		_, lit := literal(s)
		return valued(s) && s.Initial != "" && !lit && s.Assignment == ""
	})
	if len(list) == 0 {
		return nil
	}
	wr.w.Open("listOfInitialAssignments")
	for _, s := range list {
		if err := wr.writeMath("initialAssignment", s.Initial, xmltree.A("symbol", id(s.Name))); err != nil {
			return err
		}
	}
	wr.w.Close("listOfInitialAssignments")
	return nil
}

func (wr *writer) rules() error {
	list := wr.symbols(func(s *model.Symbol) bool {
		return valued(s) && (s.Assignment != "" || s.Rate != "")
	})
	if len(list) == 0 {
		return nil
	}
	wr.w.Open("listOfRules")
	for _, s := range list {
		var err error
		if s.Assignment != "" {
			err = wr.writeMath("assignmentRule", s.Assignment, xmltree.A("variable", id(s.Name)))
		} else {
			err = wr.writeMath("rateRule", s.Rate, xmltree.A("variable", id(s.Name)))
		}
		if err != nil {
			return err
		}
	}
	wr.w.Close("listOfRules")
	return nil
}

func (wr *writer) speciesRefs(list string, ps []model.Participant) {
	if len(ps) == 0 {
		return
	}
	wr.w.Open(list)
	for _, p := range ps {
		wr.w.Empty("speciesReference",
			xmltree.A("species", id(p.Name)),
			xmltree.A("stoichiometry", expr.FormatFloat(p.Stoich)),
			xmltree.A("constant", "true"))
	}
	wr.w.Close(list)
}

func (wr *writer) reactions() error {
	if len(wr.m.Reactions) == 0 {
		return nil
	}
	wr.w.Open("listOfReactions")
	for _, r := range wr.m.Reactions {
		s, ok := wr.m.Symbol(r.Name)
		if !ok {
			continue
		}
		wr.w.Open("reaction", named(s,
			boolAttr("reversible", r.Divider != model.DividerTransforms),
			xmltree.A("fast", "false"))...)
		wr.speciesRefs("listOfReactants", r.Reactants)
		wr.speciesRefs("listOfProducts", r.Products)
		if s.Main != "" {
			if err := wr.writeMath("kineticLaw", s.Main); err != nil {
				return err
			}
		}
		wr.w.Close("reaction")
	}
	wr.w.Close("listOfReactions")
	return nil
}

func (wr *writer) events() error {
	if len(wr.m.Events) == 0 {
		return nil
	}
	wr.w.Open("listOfEvents")
	for _, ev := range wr.m.Events {
		wr.w.Open("event", xmltree.A("id", id(ev.Name)), boolAttr("useValuesFromTriggerTime", ev.FromTrigger))
		if err := wr.writeMath("trigger", ev.Trigger, boolAttr("initialValue", ev.T0), boolAttr("persistent", ev.Persistent)); err != nil {
			return err
		}
		if ev.Delay != "" {
			if err := wr.writeMath("delay", ev.Delay); err != nil {
				return err
			}
		}
		if ev.Priority != "" {
			if err := wr.writeMath("priority", ev.Priority); err != nil {
				return err
			}
		}
		if len(ev.Assignments) > 0 {
			wr.w.Open("listOfEventAssignments")
			for _, a := range ev.Assignments {
				if err := wr.writeMath("eventAssignment", a.Formula, xmltree.A("variable", id(a.Variable))); err != nil {
					return err
				}
			}
			wr.w.Close("listOfEventAssignments")
		}
		wr.w.Close("event")
	}
	wr.w.Close("listOfEvents")
	return nil
}
