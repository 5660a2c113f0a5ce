// Package antimony reads and writes the Antimony modular text format.
package antimony

import (
	"antimony/internal/codec"
	"antimony/internal/graph"
)

func init() {
	codec.Register(New())
}

// Codec implements codec.Codec for Antimony text.
type Codec struct{}

func New() *Codec { return &Codec{} }

func (c *Codec) Format() codec.Format { return codec.FormatAntimony }

// Parse reads Antimony source. Statements outside any module block form the
// module named model.MainModuleName, which is kept only when it has content
// or when the source defines nothing else.
func (c *Codec) Parse(src []byte, opts codec.ParseOptions) (*graph.Graph, error) {
	return parse(src, opts)
}

// Render writes root and every module it instantiates, dependencies first.
// With Flatten set it writes the single flattened module instead.
func (c *Codec) Render(g *graph.Graph, root string, opts codec.RenderOptions) ([]byte, error) {
	return render(g, root, opts)
}
