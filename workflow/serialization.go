package workflow

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition is the serializable static structure of a compiled graph:
// nodes, edges, and conditional branch tables. It carries no state and no
// functions; it exists for export, diffing, and visualization tooling.
type Definition struct {
	Name  string           `json:"name" yaml:"name"`
	Entry string           `json:"entry" yaml:"entry"`
	Nodes []NodeDefinition `json:"nodes" yaml:"nodes"`
}

// NodeDefinition describes one node's outgoing edge. Exactly one of Next
// and Branches is set.
type NodeDefinition struct {
	Name     string            `json:"name" yaml:"name"`
	Next     string            `json:"next,omitempty" yaml:"next,omitempty"`
	Branches map[string]string `json:"branches,omitempty" yaml:"branches,omitempty"`
}

// Definition exports the graph's static structure.
func (g *CompiledGraph) Definition() *Definition {
	def := &Definition{
		Name:  g.name,
		Entry: g.Entry(),
		Nodes: make([]NodeDefinition, 0, len(g.order)),
	}
	for _, name := range g.order {
		nd := NodeDefinition{Name: name}
		if to, ok := g.edges[name]; ok {
			nd.Next = to
		}
		if branches, ok := g.Branches(name); ok {
			nd.Branches = branches
		}
		def.Nodes = append(def.Nodes, nd)
	}
	return def
}

// ToJSON renders the definition as indented JSON.
func (d *Definition) ToJSON() (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal definition to JSON: %w", err)
	}
	return string(data), nil
}

// ToYAML renders the definition as YAML.
func (d *Definition) ToYAML() (string, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal definition to YAML: %w", err)
	}
	return string(data), nil
}
