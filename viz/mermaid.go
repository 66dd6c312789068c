// Package viz renders compiled workflow graphs as text diagrams. It is a
// pure read of the compiled graph's node and edge tables and has no effect
// on execution.
package viz

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BaSui01/graphflow/workflow"
)

// Mermaid renders the graph as a Mermaid flowchart. Static edges use solid
// arrows; conditional branches use dotted arrows annotated with the router
// label. The output renders on mermaid.live, in GitHub markdown, and in
// IDE Mermaid previews.
func Mermaid(g *workflow.CompiledGraph) string {
	var sb strings.Builder
	sb.WriteString("graph TD;\n")
	fmt.Fprintf(&sb, "\t%s([start]);\n", workflow.Start)
	fmt.Fprintf(&sb, "\t%s([end]);\n", workflow.End)
	for _, node := range g.Nodes() {
		fmt.Fprintf(&sb, "\t%s(%s);\n", node, node)
	}

	fmt.Fprintf(&sb, "\t%s --> %s;\n", workflow.Start, g.Entry())
	for _, node := range g.Nodes() {
		if to, ok := g.StaticEdge(node); ok {
			fmt.Fprintf(&sb, "\t%s --> %s;\n", node, to)
			continue
		}
		branches, ok := g.Branches(node)
		if !ok {
			continue
		}
		labels := make([]string, 0, len(branches))
		for label := range branches {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(&sb, "\t%s -. %s .-> %s;\n", node, label, branches[label])
		}
	}
	return sb.String()
}

// Summary renders a one-line-per-edge console listing of the graph.
func Summary(g *workflow.CompiledGraph) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "graph %s (%d nodes)\n", g.Name(), len(g.Nodes()))
	fmt.Fprintf(&sb, "  %s -> %s\n", workflow.Start, g.Entry())
	for _, node := range g.Nodes() {
		if to, ok := g.StaticEdge(node); ok {
			fmt.Fprintf(&sb, "  %s -> %s\n", node, to)
			continue
		}
		branches, ok := g.Branches(node)
		if !ok {
			continue
		}
		labels := make([]string, 0, len(branches))
		for label := range branches {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(&sb, "  %s -[%s]-> %s\n", node, label, branches[label])
		}
	}
	return sb.String()
}

// SaveMermaid writes the diagram to path as a markdown file, creating
// parent directories as needed. Markdown hosts render the embedded Mermaid
// block directly.
func SaveMermaid(g *workflow.CompiledGraph, path string) error {
	content := fmt.Sprintf("# %s\n\n```mermaid\n%s```\n", g.Name(), Mermaid(g))
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write diagram: %w", err)
	}
	return nil
}
