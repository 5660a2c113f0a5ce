package resolver

import (
	"antimony/internal/diag"
	"antimony/internal/graph"
	"antimony/internal/model"
)

// resolvable reports whether name denotes a symbol of m, following dotted
// paths through submodule instances.
func resolvable(g *graph.Graph, m *model.Module, name string) bool {
	if m.HasSymbol(name) {
		return true
	}
	scope, rest := model.SplitPath(name)
	if scope == "" {
		return false
	}
	sub := m.Submodule(scope)
	if sub == nil {
		return false
	}
	inner, ok := g.Module(sub.Module)
	if !ok {
		return false
	}
	return resolvable(g, inner, rest)
}

func unresolved(g *graph.Graph, module, target string, reason graph.UnresolvedReason) {
	g.Unresolved = append(g.Unresolved, graph.UnresolvedRef{Module: module, Target: target, Reason: reason})
}

// IdentityResolver turns `A is B` declarations into raw links.
type IdentityResolver struct{}

func NewIdentityResolver() *IdentityResolver { return &IdentityResolver{} }

func (r *IdentityResolver) Name() string { return "identity" }

func (r *IdentityResolver) Resolve(g *graph.Graph) (ResolveStats, error) {
	var stats ResolveStats
	for _, name := range g.ModuleNames() {
		m := g.Modules[name]
		for _, id := range m.Identities {
			stats.Attempted++
			for _, side := range []string{id.Former, id.Replacement} {
				if !resolvable(g, m, side) {
					unresolved(g, name, side, graph.ReasonNoSymbol)
					return stats, diag.Loadf("in module %q: unable to find %q", name, side)
				}
			}
			if id.Former == id.Replacement {
				stats.Skipped++
				continue
			}
			m.Replacements = append(m.Replacements, model.ReplacementPair{
				Former:      id.Former,
				Replacement: id.Replacement,
				Origin:      model.OriginIdentity,
			})
			stats.Resolved++
		}
	}
	return stats, nil
}

// InterfaceResolver binds the positional arguments of each submodule
// instance to the interface of the instantiated module.
type InterfaceResolver struct{}

func NewInterfaceResolver() *InterfaceResolver { return &InterfaceResolver{} }

func (r *InterfaceResolver) Name() string { return "interface" }

func (r *InterfaceResolver) Resolve(g *graph.Graph) (ResolveStats, error) {
	var stats ResolveStats
	for _, name := range g.ModuleNames() {
		m := g.Modules[name]
		for _, sub := range m.Submodules {
			inner, ok := g.Module(sub.Module)
			if !ok {
				continue
			}
			if len(sub.Args) > len(inner.Interface) {
				unresolved(g, name, sub.Name, graph.ReasonArity)
				return stats, diag.Loadf("in module %q: instance %q passes %d arguments but %q declares %d",
					name, sub.Name, len(sub.Args), inner.Name, len(inner.Interface))
			}
			for i, arg := range sub.Args {
				stats.Attempted++
				if !resolvable(g, m, arg) {
					unresolved(g, name, arg, graph.ReasonNoSymbol)
					return stats, diag.Loadf("in module %q: unable to find %q", name, arg)
				}
				m.Replacements = append(m.Replacements, model.ReplacementPair{
					Former:      sub.Name + "." + inner.Interface[i],
					Replacement: arg,
					Origin:      model.OriginInterface,
				})
				stats.Resolved++
			}
		}
	}
	return stats, nil
}

// DeletionResolver checks that every deleted name exists.
type DeletionResolver struct{}

func NewDeletionResolver() *DeletionResolver { return &DeletionResolver{} }

func (r *DeletionResolver) Name() string { return "deletion" }

func (r *DeletionResolver) Resolve(g *graph.Graph) (ResolveStats, error) {
	var stats ResolveStats
	for _, name := range g.ModuleNames() {
		m := g.Modules[name]
		for _, d := range m.Deletions {
			stats.Attempted++
			if !resolvable(g, m, d) {
				unresolved(g, name, d, graph.ReasonNoSymbol)
				return stats, diag.Loadf("in module %q: cannot delete unknown symbol %q", name, d)
			}
			stats.Resolved++
		}
	}
	return stats, nil
}
