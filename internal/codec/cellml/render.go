package cellml

import (
	"encoding/xml"
	"fmt"
	"strings"

	"antimony/internal/codec"
	"antimony/internal/expr"
	"antimony/internal/graph"
	"antimony/internal/mathml"
	"antimony/internal/model"
	"antimony/internal/xmltree"
)

// Namespace is the CellML 1.1 namespace written on the root element.
const Namespace = "http://www.cellml.org/cellml/1.1#"

type connection struct {
	c1, c2 string
	vars   [][2]string
}

type outComponent struct {
	name     string
	m        *model.Module
	flat     bool
	ifaces   map[string]iface
	children []*outComponent
	subs     map[string]*outComponent
}

type renderer struct {
	g      *graph.Graph
	opts   codec.RenderOptions
	module string
	w      *xmltree.Writer
	used   map[string]bool
	comps  []*outComponent
	conns  []*connection
	byPair map[[2]string]*connection
}

func render(g *graph.Graph, root string, opts codec.RenderOptions) ([]byte, error) {
	src, err := g.Lookup(root)
	if err != nil {
		return nil, err
	}
	r := &renderer{
		g:      g,
		opts:   opts,
		module: src.Name,
		w:      xmltree.NewWriter(),
		used:   make(map[string]bool),
		byPair: make(map[[2]string]*connection),
	}
	var top *outComponent
	if opts.Flatten {
		flat, err := g.Flatten(src.Name)
		if err != nil {
			return nil, err
		}
		top = r.add(src.Name, flat)
		top.flat = true
	} else if top, err = r.collect(src.Name, src, map[string]bool{}); err != nil {
		return nil, err
	}

	r.w.Open("model",
		xmltree.A("xmlns", Namespace),
		xmltree.A("xmlns:cellml", Namespace),
		xmltree.A("name", src.Name))
	for _, c := range r.comps {
		if err := r.component(c); err != nil {
			return nil, fmt.Errorf("render %s as CellML: %w", src.Name, err)
		}
	}
	if len(top.children) > 0 {
		r.w.Open("group")
		r.w.Empty("relationship_ref", xmltree.A("relationship", "encapsulation"))
		r.encapsulation(top)
		r.w.Close("group")
	}
	for _, cn := range r.conns {
		r.w.Open("connection")
		r.w.Empty("map_components", xmltree.A("component_1", cn.c1), xmltree.A("component_2", cn.c2))
		for _, v := range cn.vars {
			r.w.Empty("map_variables", xmltree.A("variable_1", v[0]), xmltree.A("variable_2", v[1]))
		}
		r.w.Close("connection")
	}
	r.w.Close("model")
	return r.w.Bytes(), nil
}

func (r *renderer) add(name string, m *model.Module) *outComponent {
	for r.used[name] {
		name += "_"
	}
	r.used[name] = true
	c := &outComponent{name: name, m: m, ifaces: make(map[string]iface), subs: make(map[string]*outComponent)}
	r.comps = append(r.comps, c)
	return c
}

// collect creates one component per module instance. Children are named by
// their instance path joined with underscores.
func (r *renderer) collect(name string, m *model.Module, visiting map[string]bool) (*outComponent, error) {
	if visiting[m.Name] {
		return nil, fmt.Errorf("module %q instantiates itself", m.Name)
	}
	visiting[m.Name] = true
	defer delete(visiting, m.Name)

	c := r.add(name, m)
	for _, sub := range m.Submodules {
		inner, err := r.g.Lookup(sub.Module)
		if err != nil {
			return nil, err
		}
		childName := sub.Name
		if c != r.comps[0] {
			childName = c.name + "_" + sub.Name
		}
		child, err := r.collect(childName, inner, visiting)
		if err != nil {
			return nil, err
		}
		c.children = append(c.children, child)
		c.subs[sub.Name] = child
	}
	for _, p := range m.Replacements {
		r.link(c, p)
	}
	if len(m.Deletions) > 0 {
		r.info("deletions in %s were not exported", m.Name)
	}
	return c, nil
}

// side resolves a replacement name to a component and one of its variables.
func (c *outComponent) side(name string) (*outComponent, string, bool) {
	scope, rest := model.SplitPath(name)
	if scope == "" {
		return c, name, true
	}
	child, ok := c.subs[scope]
	if !ok || strings.Contains(rest, ".") {
		return nil, "", false
	}
	return child, rest, true
}

func (r *renderer) link(owner *outComponent, p model.ReplacementPair) {
	fc, fv, ok1 := owner.side(p.Former)
	rc, rv, ok2 := owner.side(p.Replacement)
	if !ok1 || !ok2 || fc == rc {
		return
	}
	mark := func(c *outComponent, v, dir string) {
		f := c.ifaces[v]
		if c == owner {
			if f.private == "" {
				f.private = dir
			}
		} else if f.public == "" {
			f.public = dir
		}
		c.ifaces[v] = f
	}
	mark(fc, fv, "in")
	mark(rc, rv, "out")

	key := [2]string{fc.name, rc.name}
	cn, ok := r.byPair[key]
	if !ok {
		if rev, ok := r.byPair[[2]string{rc.name, fc.name}]; ok {
			rev.vars = append(rev.vars, [2]string{rv, fv})
			return
		}
		cn = &connection{c1: fc.name, c2: rc.name}
		r.byPair[key] = cn
		r.conns = append(r.conns, cn)
	}
	cn.vars = append(cn.vars, [2]string{fv, rv})
}

func (r *renderer) encapsulation(c *outComponent) {
	if len(c.children) == 0 {
		r.w.Empty("component_ref", xmltree.A("component", c.name))
		return
	}
	r.w.Open("component_ref", xmltree.A("component", c.name))
	for _, child := range c.children {
		r.encapsulation(child)
	}
	r.w.Close("component_ref")
}

func (r *renderer) info(format string, args ...any) {
	r.opts.Report.Infof(r.module, fmt.Sprintf(format, args...))
}

func (r *renderer) warn(format string, args ...any) {
	r.opts.Report.Warnf(r.module, fmt.Sprintf(format, args...))
}

func (c *outComponent) id(name string) string {
	if c.flat {
		return strings.ReplaceAll(name, ".", "__")
	}
	return name
}

func exported(s *model.Symbol) bool {
	switch s.Sort {
	case model.SortSpecies, model.SortCompartment, model.SortFormula,
		model.SortOperator, model.SortUnknown, model.SortReaction:
		return true
	}
	return false
}

type cellEquation struct {
	target string
	rate   bool
	rhs    expr.Node
}

func (r *renderer) component(c *outComponent) error {
	m := c.m
	if len(m.Events) > 0 {
		r.info("%d events in %s were not exported because CellML cannot represent them", len(m.Events), c.name)
	}
	if len(m.Interactions) > 0 {
		r.info("%d interactions in %s were not exported", len(m.Interactions), c.name)
	}
	if len(m.Strands) > 0 {
		r.info("%d DNA strands in %s were not exported", len(m.Strands), c.name)
	}

	ode := speciesRates(m)
	var eqs []cellEquation
	usesTime := false
	r.w.Open("component", xmltree.A("name", c.name))
	for _, s := range m.Symbols() {
		if !exported(s) {
			continue
		}
		name := c.id(s.Name)
		attrs := []xml.Attr{xmltree.A("name", name), xmltree.A("units", "dimensionless")}
		if s.Initial != "" {
			if v, ok := initialValue(s.Initial); ok {
				attrs = append(attrs, xmltree.A("initial_value", c.id(v)))
			} else {
				r.warn("initial value of %q in %s is not a number and was not exported", name, c.name)
			}
		}
		if f, ok := c.ifaces[s.Name]; ok {
			if f.public != "" {
				attrs = append(attrs, xmltree.A("public_interface", f.public))
			}
			if f.private != "" {
				attrs = append(attrs, xmltree.A("private_interface", f.private))
			}
		}
		r.w.Empty("variable", attrs...)

		eq, err := c.equation(s, ode[s.Name])
		if err != nil {
			return err
		}
		if eq != nil {
			eqs = append(eqs, *eq)
			usesTime = usesTime || eq.rate || mentionsTime(eq.rhs)
		}
	}
	if usesTime {
		r.w.Empty("variable", xmltree.A("name", "time"), xmltree.A("units", "dimensionless"))
	}
	if len(eqs) > 0 {
		r.w.Open("math", xmltree.A("xmlns", mathml.Namespace))
		for _, eq := range eqs {
			r.w.Open("apply")
			r.w.Empty("eq")
			if eq.rate {
				r.w.Open("apply")
				r.w.Empty("diff")
				r.w.Open("bvar")
				r.w.Leaf("ci", "time")
				r.w.Close("bvar")
				r.w.Leaf("ci", eq.target)
				r.w.Close("apply")
			} else {
				r.w.Leaf("ci", eq.target)
			}
			mathml.WriteInline(r.w, eq.rhs, mathml.Options{TimeVariable: "time"})
			r.w.Close("apply")
		}
		r.w.Close("math")
	}
	r.w.Close("component")
	return nil
}

// equation returns the defining equation of s, if any. Species changed only
// by reactions get the sum of their reaction fluxes as rate.
func (c *outComponent) equation(s *model.Symbol, flux expr.Node) (*cellEquation, error) {
	eq := &cellEquation{target: c.id(s.Name)}
	var src, what string
	switch {
	case s.Sort == model.SortReaction && s.Main != "":
		src, what = s.Main, "kinetic law"
	case s.Assignment != "":
		src, what = s.Assignment, "assignment rule"
	case s.Rate != "":
		src, what, eq.rate = s.Rate, "rate rule", true
	case flux != nil && !s.Boundary:
		eq.rate = true
		eq.rhs = expr.Map(flux, c.id)
		return eq, nil
	default:
		return nil, nil
	}
	n, err := expr.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s of %s: %w", what, s.Name, err)
	}
	eq.rhs = expr.Map(n, c.id)
	return eq, nil
}

// initialValue accepts the forms CellML 1.1 allows in initial_value: a
// number or the name of another variable.
func initialValue(src string) (string, bool) {
	if v, ok := expr.Literal(src); ok {
		return expr.FormatFloat(v), true
	}
	n, err := expr.Parse(src)
	if err != nil {
		return "", false
	}
	if name, ok := n.(*expr.Name); ok && !expr.IsBuiltin(name.Name) {
		return name.Name, true
	}
	return "", false
}

func mentionsTime(n expr.Node) bool {
	found := false
	expr.Walk(n, func(n expr.Node) {
		if name, ok := n.(*expr.Name); ok && name.Name == "time" {
			found = true
		}
	})
	return found
}

// speciesRates sums the reaction fluxes acting on each species of m, in
// reaction order.
func speciesRates(m *model.Module) map[string]expr.Node {
	out := make(map[string]expr.Node)
	for _, rx := range m.Reactions {
		net := make(map[string]float64)
		var order []string
		tally := func(ps []model.Participant, sign float64) {
			for _, p := range ps {
				if _, seen := net[p.Name]; !seen {
					order = append(order, p.Name)
				}
				net[p.Name] += sign * p.Stoich
			}
		}
		tally(rx.Reactants, -1)
		tally(rx.Products, 1)
		for _, sp := range order {
			n := net[sp]
			if n == 0 {
				continue
			}
			var term expr.Node = &expr.Name{Name: rx.Name}
			if mag := abs(n); mag != 1 {
				term = &expr.Binary{Op: "*", L: expr.NumberNode(mag), R: term}
			}
			prev, ok := out[sp]
			switch {
			case !ok && n < 0:
				out[sp] = &expr.Unary{Op: "-", X: term}
			case !ok:
				out[sp] = term
			case n < 0:
				out[sp] = &expr.Binary{Op: "-", L: prev, R: term}
			default:
				out[sp] = &expr.Binary{Op: "+", L: prev, R: term}
			}
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
