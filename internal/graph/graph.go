package graph

import (
	"fmt"

	"antimony/internal/diag"
	"antimony/internal/model"
)

// Graph maps module names to modules and records the submodule edges
// between them.
type Graph struct {
	Modules map[string]*model.Module
	Edges   []Edge

	// Unresolved collects references that linking or resolution could not
	// bind. A non-empty list fails the load.
	Unresolved []UnresolvedRef

	order []string
	main  string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Modules: make(map[string]*model.Module),
		Edges:   []Edge{},
	}
}

// AddModule appends m in definition order. Redefining a module is a load
// error.
func (g *Graph) AddModule(m *model.Module) error {
	if m == nil {
		return nil
	}
	if _, ok := g.Modules[m.Name]; ok {
		return diag.Loadf("module %q is defined more than once", m.Name)
	}
	g.Modules[m.Name] = m
	g.order = append(g.order, m.Name)
	return nil
}

func (g *Graph) Module(name string) (*model.Module, bool) {
	m, ok := g.Modules[name]
	return m, ok
}

// ModuleNames lists modules in definition order.
func (g *Graph) ModuleNames() []string {
	return append([]string(nil), g.order...)
}

func (g *Graph) Len() int { return len(g.order) }

// Main returns the name of the main module, or "" for an empty graph.
func (g *Graph) Main() string { return g.main }

// LinkSubmodules rebuilds Edges from the submodule instantiations of every
// module. Instances of undefined modules are recorded as unresolved.
func (g *Graph) LinkSubmodules() {
	g.Edges = []Edge{}
	for _, name := range g.order {
		for _, sub := range g.Modules[name].Submodules {
			if _, ok := g.Modules[sub.Module]; !ok {
				g.Unresolved = append(g.Unresolved, UnresolvedRef{
					Module: name,
					Target: sub.Module,
					Reason: ReasonNoModule,
				})
				continue
			}
			g.Edges = append(g.Edges, Edge{From: name, To: sub.Module, Instance: sub.Name})
		}
	}
}

// GetDependencies returns the modules that name instantiates.
func (g *Graph) GetDependencies(name string) []*model.Module {
	var deps []*model.Module
	seen := make(map[string]bool)
	for _, edge := range g.Edges {
		if edge.From == name && !seen[edge.To] {
			seen[edge.To] = true
			deps = append(deps, g.Modules[edge.To])
		}
	}
	return deps
}

// GetDependents returns the modules that instantiate name.
func (g *Graph) GetDependents(name string) []*model.Module {
	var deps []*model.Module
	seen := make(map[string]bool)
	for _, edge := range g.Edges {
		if edge.To == name && !seen[edge.From] {
			seen[edge.From] = true
			deps = append(deps, g.Modules[edge.From])
		}
	}
	return deps
}

// Link finalizes every module, links submodules, rejects cycles and
// selects the main module. It must run before the resolver chain.
func (g *Graph) Link() error {
	if len(g.order) == 0 {
		return diag.Loadf("no modules were defined")
	}
	for _, name := range g.order {
		g.Modules[name].Finalize()
	}
	g.LinkSubmodules()
	for _, u := range g.Unresolved {
		if u.Reason == ReasonNoModule {
			return diag.Loadf("module %q instantiates undefined module %q", u.Module, u.Target)
		}
	}
	if err := g.validateAcyclic(); err != nil {
		return err
	}
	g.selectMain()
	return nil
}

// selectMain picks the last starred module. Without a starred module the
// top-level statements win; otherwise the last defined module is main.
func (g *Graph) selectMain() {
	g.main = ""
	for _, name := range g.order {
		if g.Modules[name].Main {
			g.main = name
		}
	}
	if g.main == "" {
		if _, ok := g.Modules[model.MainModuleName]; ok {
			g.main = model.MainModuleName
		} else {
			g.main = g.order[len(g.order)-1]
		}
	}
	for _, name := range g.order {
		g.Modules[name].Main = name == g.main
	}
}

// Clone deep copies the graph.
func (g *Graph) Clone() *Graph {
	c := NewGraph()
	for _, name := range g.order {
		_ = c.AddModule(g.Modules[name].Clone())
	}
	c.Edges = append(c.Edges, g.Edges...)
	c.Unresolved = append(c.Unresolved, g.Unresolved...)
	c.main = g.main
	return c
}

// Lookup resolves a module and reports a not-found error for unknown names.
// An empty name selects the main module.
func (g *Graph) Lookup(name string) (*model.Module, error) {
	if name == "" {
		name = g.main
	}
	m, ok := g.Modules[name]
	if !ok {
		return nil, diag.NotFoundf("no such module: %q", name)
	}
	return m, nil
}

func (g *Graph) String() string {
	return fmt.Sprintf("graph(%d modules, main=%q)", len(g.order), g.main)
}
