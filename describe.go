package antimony

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"antimony/internal/classifier"
	"antimony/internal/model"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const describeSchemaURL = "antimony://describe.schema.json"

//go:embed describe.schema.json
var describeSchema []byte

var compileDescribeSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(describeSchemaURL, bytes.NewReader(describeSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(describeSchemaURL)
})

// ModuleInfo is a serializable summary of one module as declared.
type ModuleInfo struct {
	Name         string            `json:"name"`
	Main         bool              `json:"main,omitempty"`
	Interface    []string          `json:"interface,omitempty"`
	Uses         []string          `json:"uses,omitempty"`
	UsedBy       []string          `json:"used_by,omitempty"`
	Symbols      []SymbolInfo      `json:"symbols"`
	Reactions    []ReactionInfo    `json:"reactions,omitempty"`
	Events       []string          `json:"events,omitempty"`
	Replacements []ReplacementInfo `json:"replacements,omitempty"`
}

type SymbolInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Equation    string `json:"equation,omitempty"`
	Compartment string `json:"compartment,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

type ReactionInfo struct {
	Name      string   `json:"name"`
	Reactants []string `json:"reactants"`
	Products  []string `json:"products"`
	Rate      string   `json:"rate,omitempty"`
}

type ReplacementInfo struct {
	Former      string `json:"former"`
	Replacement string `json:"replacement"`
	Origin      string `json:"origin"`
}

// Describe summarizes every module of the active document in definition
// order, including which modules each one instantiates and is
// instantiated by.
func (s *Session) Describe() ([]ModuleInfo, error) {
	doc, err := s.active()
	if err != nil {
		return nil, err
	}
	g := doc.Graph
	out := []ModuleInfo{}
	for _, name := range g.ModuleNames() {
		m, _ := g.Module(name)
		info := ModuleInfo{
			Name:      name,
			Main:      name == g.Main(),
			Interface: m.Interface,
			Uses:      moduleNames(g.GetDependencies(name)),
			UsedBy:    moduleNames(g.GetDependents(name)),
			Symbols:   []SymbolInfo{},
		}
		for _, sym := range m.Symbols() {
			si := SymbolInfo{
				Name:        sym.Name,
				Kind:        classifier.Classify(sym).String(),
				Equation:    classifier.Equation(sym, classifier.SlotMain),
				DisplayName: sym.DisplayName,
			}
			if sym.Sort == model.SortSpecies || sym.Sort == model.SortCompartment {
				si.Compartment = sym.CompartmentOrDefault()
			}
			info.Symbols = append(info.Symbols, si)
		}
		for _, r := range m.Reactions {
			ri := ReactionInfo{Name: r.Name, Reactants: []string{}, Products: []string{}}
			for _, p := range r.Reactants {
				ri.Reactants = append(ri.Reactants, p.Name)
			}
			for _, p := range r.Products {
				ri.Products = append(ri.Products, p.Name)
			}
			if sym, ok := m.Symbol(r.Name); ok {
				ri.Rate = sym.Main
			}
			info.Reactions = append(info.Reactions, ri)
		}
		for _, ev := range m.Events {
			info.Events = append(info.Events, ev.Name)
		}
		for _, p := range m.Replacements {
			info.Replacements = append(info.Replacements, ReplacementInfo{
				Former:      p.Former,
				Replacement: p.Replacement,
				Origin:      string(p.Origin),
			})
		}
		out = append(out, info)
	}
	return out, nil
}

// ValidateDescription checks the JSON form of mods against the embedded
// description schema.
func ValidateDescription(mods []ModuleInfo) error {
	schema, err := compileDescribeSchema()
	if err != nil {
		return fmt.Errorf("failed to compile description schema: %w", err)
	}
	raw, err := json.Marshal(mods)
	if err != nil {
		return fmt.Errorf("failed to marshal description for schema validation: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("failed to normalize description for schema validation: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("description schema validation failed: %w", err)
	}
	return nil
}

func moduleNames(mods []*model.Module) []string {
	var out []string
	for _, m := range mods {
		out = append(out, m.Name)
	}
	return out
}
