package resolver

import (
	"antimony/internal/graph"
	"antimony/internal/model"
)

// UnionFind groups synchronized symbol names. Union(former, replacement)
// hangs the former's class under the replacement's root, so the root of a
// class is the replacement of the most recent link that touched it.
type UnionFind struct {
	parent map[string]string
	order  []string
	origin map[string]model.Origin
}

func NewUnionFind() *UnionFind {
	return &UnionFind{
		parent: make(map[string]string),
		origin: make(map[string]model.Origin),
	}
}

func (u *UnionFind) add(name string, origin model.Origin) {
	if _, ok := u.parent[name]; ok {
		return
	}
	u.parent[name] = name
	u.order = append(u.order, name)
	u.origin[name] = origin
}

func (u *UnionFind) Find(name string) string {
	root := name
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for name != root {
		next := u.parent[name]
		u.parent[name] = root
		name = next
	}
	return root
}

func (u *UnionFind) Union(former, replacement string, origin model.Origin) {
	u.add(former, origin)
	u.add(replacement, origin)
	rf, rr := u.Find(former), u.Find(replacement)
	if rf == rr {
		return
	}
	u.parent[rf] = rr
}

// Pairs returns (member, root) for every non-root member in first
// appearance order.
func (u *UnionFind) Pairs() []model.ReplacementPair {
	var out []model.ReplacementPair
	for _, name := range u.order {
		root := u.Find(name)
		if root == name {
			continue
		}
		fs, _ := model.SplitPath(name)
		rs, _ := model.SplitPath(root)
		out = append(out, model.ReplacementPair{
			Former:               name,
			Replacement:          root,
			FormerSubmodule:      fs,
			ReplacementSubmodule: rs,
			Origin:               u.origin[name],
		})
	}
	return out
}

// Canonicalizer rewrites the raw links of every module into canonical
// replacement pairs.
type Canonicalizer struct{}

func NewCanonicalizer() *Canonicalizer { return &Canonicalizer{} }

func (c *Canonicalizer) Name() string { return "canonicalize" }

func (c *Canonicalizer) Resolve(g *graph.Graph) (ResolveStats, error) {
	var stats ResolveStats
	for _, name := range g.ModuleNames() {
		m := g.Modules[name]
		uf := NewUnionFind()
		for _, p := range m.Replacements {
			stats.Attempted++
			uf.Union(p.Former, p.Replacement, p.Origin)
		}
		m.Replacements = uf.Pairs()
		stats.Resolved += len(m.Replacements)
	}
	stats.Skipped = stats.Attempted - stats.Resolved
	return stats, nil
}

// Between filters pairs to one (formerSubmodule, replacementSubmodule) scope.
func Between(pairs []model.ReplacementPair, formerSub, replacementSub string) []model.ReplacementPair {
	var out []model.ReplacementPair
	for _, p := range pairs {
		if p.FormerSubmodule == formerSub && p.ReplacementSubmodule == replacementSub {
			out = append(out, p)
		}
	}
	return out
}
