package cellml

import (
	"antimony/internal/codec"
	"antimony/internal/diag"
	"antimony/internal/expr"
	"antimony/internal/graph"
	"antimony/internal/mathml"
	"antimony/internal/model"
	"antimony/internal/xmltree"
)

// iface holds the declared interfaces of one variable.
type iface struct {
	public, private string
}

type component struct {
	name   string
	m      *model.Module
	ifaces map[string]iface
	// bound holds variables of integration, which read as time.
	bound map[string]bool
}

type reader struct {
	model   string
	main    *model.Module
	comps   map[string]*component
	order   []string
	parents map[string]string
	report  *diag.Report
}

func parse(src []byte, opts codec.ParseOptions) (*graph.Graph, error) {
	root, err := xmltree.Parse(src)
	if err != nil {
		return nil, diag.Loadf("invalid CellML: %v", err)
	}
	if root.Local() != "model" {
		return nil, diag.Loadf("invalid CellML: root element is <%s>, not <model>", root.Local())
	}
	if len(root.ChildrenNamed("import")) > 0 {
		return nil, diag.Loadf("CellML imports are not supported")
	}
	if len(root.ChildrenNamed("units")) > 0 {
		opts.Report.LoadWarning("CellML units definitions were ignored")
	}
	name := root.AttrOr("name", "")
	if name == "" {
		name = model.MainModuleName
	}
	r := &reader{
		model:   name,
		main:    model.NewModule(name),
		comps:   make(map[string]*component),
		parents: make(map[string]string),
		report:  opts.Report,
	}
	r.main.BareNumbersDimensionless = opts.BareNumbersDimensionless

	for _, el := range root.ChildrenNamed("component") {
		if err := r.component(el); err != nil {
			return nil, err
		}
	}
	for _, el := range root.ChildrenNamed("group") {
		if err := r.group(el); err != nil {
			return nil, err
		}
	}
	if err := r.instantiate(); err != nil {
		return nil, err
	}
	for _, el := range root.ChildrenNamed("connection") {
		if err := r.connection(el); err != nil {
			return nil, err
		}
	}

	g := graph.NewGraph()
	for _, cname := range r.order {
		if cname == r.model {
			continue
		}
		if err := g.AddModule(r.comps[cname].m); err != nil {
			return nil, err
		}
	}
	if err := g.AddModule(r.main); err != nil {
		return nil, err
	}
	return g, nil
}

// component reads one <component>. The component named like the model is
// the main module itself.
func (r *reader) component(el *xmltree.Element) error {
	cname := el.AttrOr("name", "")
	if cname == "" {
		return diag.Loadf("CellML component without a name")
	}
	if _, dup := r.comps[cname]; dup {
		return diag.Loadf("CellML component %q is defined more than once", cname)
	}
	c := &component{name: cname, ifaces: make(map[string]iface), bound: map[string]bool{"time": true}}
	if cname == r.model {
		c.m = r.main
	} else {
		c.m = model.NewModule(cname)
		c.m.BareNumbersDimensionless = r.main.BareNumbersDimensionless
	}
	r.comps[cname] = c
	r.order = append(r.order, cname)

	for _, v := range el.ChildrenNamed("variable") {
		vname := v.AttrOr("name", "")
		if vname == "" {
			return diag.Loadf("component %q: variable without a name", cname)
		}
		if c.m.HasSymbol(vname) {
			return diag.Loadf("component %q: variable %q is defined more than once", cname, vname)
		}
		s := c.m.AddSymbol(vname)
		s.Sort = model.SortFormula
		s.Initial = v.AttrOr("initial_value", "")
		c.ifaces[vname] = iface{
			public:  v.AttrOr("public_interface", "none"),
			private: v.AttrOr("private_interface", "none"),
		}
	}
	for _, me := range el.ChildrenNamed("math") {
		if err := r.equations(c, me); err != nil {
			return err
		}
	}
	return r.settle(c)
}

type equation struct {
	target string
	rate   bool
	rhs    expr.Node
}

func (r *reader) equations(c *component, me *xmltree.Element) error {
	var eqs []equation
	for _, ap := range me.Children {
		if ap.Local() == "annotation" || ap.Local() == "annotation-xml" {
			continue
		}
		if ap.Local() != "apply" || len(ap.Children) != 3 || ap.Children[0].Local() != "eq" {
			return diag.Loadf("component %q: only equations of the form <apply><eq/>...</apply> are supported", c.name)
		}
		lhs, rhsEl := ap.Children[1], ap.Children[2]
		eq := equation{}
		switch {
		case lhs.Local() == "ci":
			eq.target = lhs.TrimmedText()
		case lhs.Local() == "apply" && len(lhs.Children) == 3 && lhs.Children[0].Local() == "diff":
			bvar := lhs.Children[1].Child("ci")
			if lhs.Children[1].Local() != "bvar" || bvar == nil || lhs.Children[2].Local() != "ci" {
				return diag.Loadf("component %q: malformed derivative", c.name)
			}
			c.bound[bvar.TrimmedText()] = true
			eq.target = lhs.Children[2].TrimmedText()
			eq.rate = true
		default:
			return diag.Loadf("component %q: unsupported left hand side <%s>", c.name, lhs.Local())
		}
		rhs, err := mathml.FromElement(rhsEl)
		if err != nil {
			return diag.Loadf("component %q: equation for %q: %v", c.name, eq.target, err)
		}
		eq.rhs = rhs
		eqs = append(eqs, eq)
	}
	toTime := func(n string) string {
		if c.bound[n] {
			return "time"
		}
		return n
	}
	for _, eq := range eqs {
		s, ok := c.m.Symbol(eq.target)
		if !ok {
			return diag.Loadf("component %q: equation for undeclared variable %q", c.name, eq.target)
		}
		f := expr.Format(expr.Map(eq.rhs, toTime))
		if eq.rate {
			s.Rate = f
		} else {
			s.Assignment = f
		}
	}
	return nil
}

// settle removes variables of integration and collects the public
// interface of the component.
func (r *reader) settle(c *component) error {
	for name := range c.bound {
		if s, ok := c.m.Symbol(name); ok {
			if s.Assignment != "" || s.Rate != "" {
				return diag.Loadf("component %q: variable of integration %q has an equation", c.name, name)
			}
			c.m.RemoveSymbol(name)
		}
	}
	if c.m == r.main {
		return nil
	}
	for _, s := range c.m.Symbols() {
		if pub := c.ifaces[s.Name].public; pub == "in" || pub == "out" {
			c.m.Interface = append(c.m.Interface, s.Name)
		}
	}
	return nil
}

// group reads encapsulation hierarchies. Other relationships carry no
// model structure and are ignored.
func (r *reader) group(el *xmltree.Element) error {
	encapsulation := false
	for _, rel := range el.ChildrenNamed("relationship_ref") {
		if rel.AttrOr("relationship", "") == "encapsulation" {
			encapsulation = true
		}
	}
	if !encapsulation {
		return nil
	}
	var walk func(ref *xmltree.Element) error
	walk = func(ref *xmltree.Element) error {
		parent := ref.AttrOr("component", "")
		if _, ok := r.comps[parent]; !ok {
			return diag.Loadf("encapsulation refers to unknown component %q", parent)
		}
		for _, child := range ref.ChildrenNamed("component_ref") {
			cname := child.AttrOr("component", "")
			if _, ok := r.comps[cname]; !ok {
				return diag.Loadf("encapsulation refers to unknown component %q", cname)
			}
			if prev, ok := r.parents[cname]; ok && prev != parent {
				return diag.Loadf("component %q is encapsulated by both %q and %q", cname, prev, parent)
			}
			r.parents[cname] = parent
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	for _, ref := range el.ChildrenNamed("component_ref") {
		if err := walk(ref); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) parent(cname string) string {
	if p, ok := r.parents[cname]; ok {
		return p
	}
	return r.model
}

func (r *reader) owner(cname string) *model.Module {
	if c, ok := r.comps[cname]; ok {
		return c.m
	}
	return r.main
}

// instantiate places every component inside its encapsulating parent, or
// inside the main module when it has none.
func (r *reader) instantiate() error {
	if p, ok := r.parents[r.model]; ok {
		return diag.Loadf("component %q cannot encapsulate the model component %q", p, r.model)
	}
	for _, cname := range r.order {
		if cname == r.model {
			continue
		}
		pm := r.owner(r.parent(cname))
		if pm.HasSymbol(cname) {
			return diag.Loadf("component %q has the same name as a variable of %q", cname, pm.Name)
		}
		pm.AddSymbol(cname).Sort = model.SortModule
		pm.Submodules = append(pm.Submodules, &model.Submodule{Name: cname, Module: cname})
	}
	return nil
}

// connection turns each mapped variable pair into an identity in the module
// that can see both sides. The side whose interface is "in" is replaced.
func (r *reader) connection(el *xmltree.Element) error {
	mc := el.Child("map_components")
	if mc == nil {
		return diag.Loadf("CellML connection without <map_components>")
	}
	c1, c2 := mc.AttrOr("component_1", ""), mc.AttrOr("component_2", "")
	for _, cname := range []string{c1, c2} {
		if _, ok := r.comps[cname]; !ok {
			return diag.Loadf("connection refers to unknown component %q", cname)
		}
	}
	var owner string
	switch {
	case r.parent(c1) == c2:
		owner = c2
	case r.parent(c2) == c1:
		owner = c1
	case r.parent(c1) == r.parent(c2):
		owner = r.parent(c1)
	default:
		return diag.Loadf("components %q and %q are neither siblings nor parent and child", c1, c2)
	}
	om := r.owner(owner)

	for _, mv := range el.ChildrenNamed("map_variables") {
		v1, v2 := mv.AttrOr("variable_1", ""), mv.AttrOr("variable_2", "")
		if r.comps[c1].bound[v1] || r.comps[c2].bound[v2] {
			continue
		}
		side1, in1, err := r.side(owner, c1, v1)
		if err != nil {
			return err
		}
		side2, _, err := r.side(owner, c2, v2)
		if err != nil {
			return err
		}
		id := model.Identity{Former: side2, Replacement: side1}
		if in1 {
			id = model.Identity{Former: side1, Replacement: side2}
		}
		om.Identities = append(om.Identities, id)
	}
	return nil
}

// side names variable v of component cname as seen from owner, and reports
// whether its interface toward owner is "in".
func (r *reader) side(owner, cname, v string) (string, bool, error) {
	c := r.comps[cname]
	if !c.m.HasSymbol(v) {
		return "", false, diag.Loadf("connection refers to unknown variable %q of component %q", v, cname)
	}
	if cname == owner {
		return v, c.ifaces[v].private == "in", nil
	}
	return cname + "." + v, c.ifaces[v].public == "in", nil
}
