package graph

import (
	"bytes"
	"fmt"
	"os"
)

// ToDOT serializes the graph description to Graphviz DOT format.
//
// The output uses a left-to-right rank direction and filled box nodes, with
// the root drawn as a double octagon. Node IDs and labels are quoted, so
// dependency names may contain spaces or punctuation.
func ToDOT(g Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=filled, fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [label=%q, shape=%s, fillcolor=%q];\n",
		g.Root.ID, g.Root.Label, g.Root.Shape, g.Root.FillColor)

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n", n.ID, n.Label, n.FillColor)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// WriteDOTFile serializes the graph to DOT and writes it to path.
// The file is written in one operation, so a crash never leaves a partially
// written artifact behind.
func WriteDOTFile(g Graph, path string) error {
	if err := os.WriteFile(path, []byte(ToDOT(g)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
