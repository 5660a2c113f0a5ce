package sbml

import (
	"fmt"
	"strconv"
	"strings"

	"antimony/internal/classifier"
	"antimony/internal/codec"
	"antimony/internal/diag"
	"antimony/internal/expr"
	"antimony/internal/graph"
	"antimony/internal/mathml"
	"antimony/internal/model"
	"antimony/internal/xmltree"
)

type reader struct {
	m        *model.Module
	report   *diag.Report
	constant map[string]string
	eventSeq int
}

func parse(src []byte, opts codec.ParseOptions) (*graph.Graph, error) {
	root, err := xmltree.Parse(src)
	if err != nil {
		return nil, diag.Loadf("invalid SBML: %v", err)
	}
	if root.Local() != "sbml" {
		return nil, diag.Loadf("invalid SBML: root element is <%s>, not <sbml>", root.Local())
	}
	if lvl := root.AttrOr("level", ""); lvl != "2" && lvl != "3" {
		return nil, diag.Loadf("unsupported SBML level %q", lvl)
	}
	me := root.Child("model")
	if me == nil {
		return nil, diag.Loadf("SBML document has no <model>")
	}
	name := me.AttrOr("id", "")
	if name == "" {
		name = model.MainModuleName
	}
	r := &reader{
		m:        model.NewModule(name),
		report:   opts.Report,
		constant: make(map[string]string),
	}
	r.m.BareNumbersDimensionless = opts.BareNumbersDimensionless

	if len(me.Path("listOfFunctionDefinitions", "functionDefinition")) > 0 {
		return nil, diag.Loadf("function definitions are not supported")
	}
	steps := []func(*xmltree.Element) error{
		r.compartments,
		r.species,
		r.parameters,
		r.initialAssignments,
		r.rules,
		r.reactions,
		r.events,
	}
	for _, step := range steps {
		if err := step(me); err != nil {
			return nil, err
		}
	}
	r.settleConstness()

	g := graph.NewGraph()
	if err := g.AddModule(r.m); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *reader) math(el *xmltree.Element, what string) (string, error) {
	if el == nil {
		return "", nil
	}
	me := el.Child("math")
	if me == nil {
		return "", nil
	}
	n, err := mathml.FromElement(me)
	if err != nil {
		return "", diag.Loadf("%s: %v", what, err)
	}
	return expr.Format(n), nil
}

// declare creates the symbol for an SBML component. Ids must be unique
// across the model.
func (r *reader) declare(el *xmltree.Element, kind string, sort model.Sort) (*model.Symbol, error) {
	id := el.AttrOr("id", "")
	if id == "" {
		return nil, diag.Loadf("SBML %s without an id", kind)
	}
	if r.m.HasSymbol(id) {
		return nil, diag.Loadf("SBML id %q is used more than once", id)
	}
	s := r.m.AddSymbol(id)
	s.Sort = sort
	s.DisplayName = el.AttrOr("name", "")
	if c, ok := el.AttrValue("constant"); ok {
		r.constant[id] = c
	}
	return s, nil
}

func (r *reader) compartments(me *xmltree.Element) error {
	for _, el := range me.Path("listOfCompartments", "compartment") {
		s, err := r.declare(el, "compartment", model.SortCompartment)
		if err != nil {
			return err
		}
		if v, ok := el.AttrValue("size"); ok {
			s.Initial = v
		} else if v, ok := el.AttrValue("volume"); ok {
			s.Initial = v
		}
		s.Compartment = el.AttrOr("outside", "")
	}
	return nil
}

func (r *reader) species(me *xmltree.Element) error {
	for _, el := range me.Path("listOfSpecies", "species") {
		s, err := r.declare(el, "species", model.SortSpecies)
		if err != nil {
			return err
		}
		s.Compartment = el.AttrOr("compartment", "")
		if v, ok := el.AttrValue("initialConcentration"); ok {
			s.Initial = v
		} else if v, ok := el.AttrValue("initialAmount"); ok {
			s.Initial = v
		}
		s.Boundary = el.AttrOr("boundaryCondition", "false") == "true"
	}
	return nil
}

func (r *reader) parameters(me *xmltree.Element) error {
	for _, el := range me.Path("listOfParameters", "parameter") {
		s, err := r.declare(el, "parameter", model.SortFormula)
		if err != nil {
			return err
		}
		s.Initial = el.AttrOr("value", "")
	}
	return nil
}

func (r *reader) target(el *xmltree.Element, attr, what string) (*model.Symbol, error) {
	id := el.AttrOr(attr, "")
	s, ok := r.m.Symbol(id)
	if !ok {
		return nil, diag.Loadf("%s refers to unknown id %q", what, id)
	}
	return s, nil
}

func (r *reader) initialAssignments(me *xmltree.Element) error {
	for _, el := range me.Path("listOfInitialAssignments", "initialAssignment") {
		s, err := r.target(el, "symbol", "initial assignment")
		if err != nil {
			return err
		}
		if s.Initial, err = r.math(el, "initial assignment for "+s.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) rules(me *xmltree.Element) error {
	list := me.Child("listOfRules")
	if list == nil {
		return nil
	}
	for _, el := range list.Children {
		switch el.Local() {
		case "assignmentRule", "rateRule":
			s, err := r.target(el, "variable", el.Local())
			if err != nil {
				return err
			}
			f, err := r.math(el, el.Local()+" for "+s.Name)
			if err != nil {
				return err
			}
			if el.Local() == "rateRule" {
				s.Rate = f
			} else {
				s.Assignment = f
			}
		case "algebraicRule":
			r.report.LoadWarning("algebraic rules are not supported and were ignored")
		}
	}
	return nil
}

func (r *reader) participants(el *xmltree.Element, list string) ([]model.Participant, error) {
	var out []model.Participant
	for _, ref := range el.Path(list, "speciesReference") {
		id := ref.AttrOr("species", "")
		if !r.m.HasSymbol(id) {
			return nil, diag.Loadf("reaction %q refers to unknown species %q", el.AttrOr("id", ""), id)
		}
		stoich := 1.0
		if v, ok := ref.AttrValue("stoichiometry"); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, diag.Loadf("reaction %q: invalid stoichiometry %q", el.AttrOr("id", ""), v)
			}
			stoich = f
		}
		out = append(out, model.Participant{Name: id, Stoich: stoich})
	}
	return out, nil
}

func (r *reader) reactions(me *xmltree.Element) error {
	for _, el := range me.Path("listOfReactions", "reaction") {
		s, err := r.declare(el, "reaction", model.SortReaction)
		if err != nil {
			return err
		}
		rx := &model.Reaction{Name: s.Name, Divider: model.DividerBecomes}
		if el.AttrOr("reversible", "true") == "false" {
			rx.Divider = model.DividerTransforms
		}
		if rx.Reactants, err = r.participants(el, "listOfReactants"); err != nil {
			return err
		}
		if rx.Products, err = r.participants(el, "listOfProducts"); err != nil {
			return err
		}
		law := el.Child("kineticLaw")
		if s.Main, err = r.math(law, "kinetic law of "+s.Name); err != nil {
			return err
		}
		if law != nil {
			if err := r.localParameters(s, law); err != nil {
				return err
			}
		}
		r.m.Reactions = append(r.m.Reactions, rx)
	}
	return nil
}

// localParameters promotes kinetic law parameters to model parameters named
// reaction_parameter and rewrites the law to use them.
func (r *reader) localParameters(s *model.Symbol, law *xmltree.Element) error {
	locals := append(law.Path("listOfParameters", "parameter"), law.Path("listOfLocalParameters", "localParameter")...)
	if len(locals) == 0 {
		return nil
	}
	rename := make(map[string]string, len(locals))
	for _, el := range locals {
		id := el.AttrOr("id", "")
		global := s.Name + "_" + id
		if r.m.HasSymbol(global) {
			return diag.Loadf("local parameter %q of %q collides with %q", id, s.Name, global)
		}
		p := r.m.AddSymbol(global)
		p.Sort = model.SortFormula
		p.Initial = el.AttrOr("value", "")
		p.DisplayName = el.AttrOr("name", "")
		rename[id] = global
	}
	law2, err := expr.Rename(s.Main, func(n string) string {
		if g, ok := rename[n]; ok {
			return g
		}
		return n
	})
	if err != nil {
		return err
	}
	s.Main = law2
	return nil
}

func (r *reader) events(me *xmltree.Element) error {
	for _, el := range me.Path("listOfEvents", "event") {
		if _, ok := el.AttrValue("id"); !ok {
			el.Attr = append(el.Attr, xmltree.A("id", r.eventName()))
		}
		s, err := r.declare(el, "event", model.SortEvent)
		if err != nil {
			return err
		}
		ev := model.NewEvent(s.Name)
		ev.FromTrigger = el.AttrOr("useValuesFromTriggerTime", "true") != "false"
		trig := el.Child("trigger")
		if trig == nil {
			return diag.Loadf("event %q has no trigger", s.Name)
		}
		ev.T0 = trig.AttrOr("initialValue", "true") != "false"
		ev.Persistent = trig.AttrOr("persistent", "false") == "true"
		if ev.Trigger, err = r.math(trig, "trigger of "+s.Name); err != nil {
			return err
		}
		if ev.Delay, err = r.math(el.Child("delay"), "delay of "+s.Name); err != nil {
			return err
		}
		if ev.Priority, err = r.math(el.Child("priority"), "priority of "+s.Name); err != nil {
			return err
		}
		for _, a := range el.Path("listOfEventAssignments", "eventAssignment") {
			v, err := r.target(a, "variable", "event assignment of "+s.Name)
			if err != nil {
				return err
			}
			f, err := r.math(a, "event assignment of "+s.Name)
			if err != nil {
				return err
			}
			v.EventAssigned = true
			ev.Assignments = append(ev.Assignments, model.EventAssignment{Variable: v.Name, Formula: f})
		}
		s.Main = ev.Trigger
		r.m.Events = append(r.m.Events, ev)
	}
	return nil
}

func (r *reader) eventName() string {
	for {
		name := fmt.Sprintf("_E%d", r.eventSeq)
		r.eventSeq++
		if !r.m.HasSymbol(name) {
			return name
		}
	}
}

// settleConstness keeps an explicit constant attribute only where it
// differs from what the symbol would be classified as anyway.
func (r *reader) settleConstness() {
	for id, attr := range r.constant {
		s, _ := r.m.Symbol(id)
		if s.Sort == model.SortReaction || s.Sort == model.SortEvent {
			continue
		}
		want := strings.TrimSpace(attr) == "true"
		s.Const = model.ConstUnset
		if classifier.IsConst(s) != want {
			if want {
				s.Const = model.ConstYes
			} else {
				s.Const = model.ConstNo
			}
		}
	}
}
