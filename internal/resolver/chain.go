package resolver

import (
	"antimony/internal/graph"
)

type ResolveStats struct {
	Attempted int
	Resolved  int
	Skipped   int
}

type GraphResolver interface {
	Name() string
	Resolve(g *graph.Graph) (ResolveStats, error)
}

type StageResult struct {
	Resolver         string
	Stats            ResolveStats
	UnresolvedBefore int
	UnresolvedAfter  int
	EdgeCount        int
	Err              error
}

type ResolverChain struct {
	resolvers []GraphResolver
}

func NewResolverChain(resolvers ...GraphResolver) *ResolverChain {
	return &ResolverChain{resolvers: resolvers}
}

// NewDefaultChain collects identity and interface links, validates
// deletions and then canonicalizes the links into replacement pairs.
func NewDefaultChain() *ResolverChain {
	return NewResolverChain(
		NewIdentityResolver(),
		NewInterfaceResolver(),
		NewDeletionResolver(),
		NewCanonicalizer(),
	)
}

func (c *ResolverChain) Run(g *graph.Graph) []StageResult {
	if g == nil {
		return nil
	}

	var out []StageResult
	for _, r := range c.resolvers {
		before := len(g.Unresolved)
		stats, err := r.Resolve(g)
		after := len(g.Unresolved)
		out = append(out, StageResult{
			Resolver:         r.Name(),
			Stats:            stats,
			UnresolvedBefore: before,
			UnresolvedAfter:  after,
			EdgeCount:        len(g.Edges),
			Err:              err,
		})
		if err != nil {
			break
		}
	}
	return out
}

// Finalize links g and runs the default chain over it. The first stage
// error aborts finalization.
func Finalize(g *graph.Graph) ([]StageResult, error) {
	if err := g.Link(); err != nil {
		return nil, err
	}
	results := NewDefaultChain().Run(g)
	for _, r := range results {
		if r.Err != nil {
			return results, r.Err
		}
	}
	return results, nil
}
