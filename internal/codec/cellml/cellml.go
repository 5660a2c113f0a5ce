// Package cellml reads and writes CellML 1.1 models.
//
// Each component is a module, encapsulation makes components submodules of
// their parent, and connections become identities in the module that sees
// both variables. The component named like the model, if any, is the main
// module. Reactions are written as flux variables with species rates summed
// from them.
package cellml

import (
	"antimony/internal/codec"
	"antimony/internal/graph"
)

func init() {
	codec.Register(New())
}

type Codec struct{}

func New() *Codec { return &Codec{} }

func (c *Codec) Format() codec.Format { return codec.FormatCellML }

func (c *Codec) Parse(src []byte, opts codec.ParseOptions) (*graph.Graph, error) {
	return parse(src, opts)
}

func (c *Codec) Render(g *graph.Graph, root string, opts codec.RenderOptions) ([]byte, error) {
	return render(g, root, opts)
}
