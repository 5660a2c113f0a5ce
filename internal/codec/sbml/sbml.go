// Package sbml reads SBML Level 2 and 3 core documents and writes flattened
// Level 3 Version 1 documents.
//
// Reading keeps compartments, species, parameters, initial assignments,
// assignment and rate rules, reactions and events. Writing always flattens,
// because SBML core has no notion of submodules; interactions and DNA strands
// are reported as info messages and dropped.
package sbml

import (
	"antimony/internal/codec"
	"antimony/internal/graph"
)

func init() {
	codec.Register(New())
}

type Codec struct{}

func New() *Codec { return &Codec{} }

func (c *Codec) Format() codec.Format { return codec.FormatSBML }

func (c *Codec) Parse(src []byte, opts codec.ParseOptions) (*graph.Graph, error) {
	return parse(src, opts)
}

func (c *Codec) Render(g *graph.Graph, root string, opts codec.RenderOptions) ([]byte, error) {
	return render(g, root, opts)
}
