// Package graph builds the dependency graph description from a scan document.
//
// The graph is a star: one root node for the project, one node per retained
// dependency, and one directed edge from the root to each dependency node.
// Nodes carry a three-line label (name, version, type) and a fill color
// derived from the dependency's security status. The graph is built once,
// serialized to DOT with [ToDOT], and handed unchanged to the renderer.
package graph

import (
	"github.com/depdiscover/depviz/pkg/errors"
	"github.com/depdiscover/depviz/pkg/scan"
)

// RootID is the node ID of the project root.
const RootID = "ROOT"

// Node is one node of the graph description.
type Node struct {
	ID        string
	Label     string
	FillColor string
	Shape     string // empty means the graph-level default (box)
}

// Edge is a directed edge between two nodes.
type Edge struct {
	From string
	To   string
}

// Graph is the write-once graph description consumed by the renderer.
type Graph struct {
	Root  Node
	Nodes []Node // dependency nodes, in input order; excludes Root
	Edges []Edge // one root→node edge per dependency node
}

// NodeCount returns the number of dependency nodes, excluding the root.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// Stats reports how the dependency list was partitioned during a build.
type Stats struct {
	Retained int // dependencies turned into nodes
	Skipped  int // system libraries omitted by the filter
}

// Palette maps a security status to a Graphviz fill color.
// Keeping the palette separate from classification lets color schemes change
// without touching [scan.Classify].
type Palette map[scan.Status]string

// DefaultPalette matches the colors emitted by the depdiscover scanner suite.
var DefaultPalette = Palette{
	scan.StatusUnknown: "lightgrey",
	scan.StatusSafe:    "#90EE90",
	scan.StatusWarning: "#FFE4B5",
	scan.StatusDanger:  "#FF6347",
}

// Color returns the fill color for status, falling back to the unknown color
// for statuses missing from the palette.
func (p Palette) Color(status scan.Status) string {
	if c, ok := p[status]; ok {
		return c
	}
	return DefaultPalette[scan.StatusUnknown]
}

// rootFillColor is the fixed fill color of the project root node.
const rootFillColor = "lightblue"

// rootShape visually distinguishes the root from dependency nodes.
const rootShape = "doubleoctagon"

// Options configures a graph build.
type Options struct {
	// SkipSystemLibs omits dependencies whose type is "system".
	SkipSystemLibs bool

	// Palette overrides the status→color mapping. Nil uses DefaultPalette.
	Palette Palette
}

// Build constructs the graph description for a scan document.
//
// Dependencies are processed in input order. System libraries are omitted
// when opts.SkipSystemLibs is set and counted in Stats.Skipped; every other
// dependency produces exactly one node and one root→node edge and is counted
// in Stats.Retained, so Stats.Retained+Stats.Skipped always equals the input
// length.
//
// Node IDs are the dependency names, so a document with two dependencies of
// the same retained name is rejected with an INVALID_INPUT error rather than
// silently collapsing them into one node.
func Build(doc scan.Document, opts Options) (Graph, Stats, error) {
	palette := opts.Palette
	if palette == nil {
		palette = DefaultPalette
	}

	g := Graph{
		Root: Node{
			ID:        RootID,
			Label:     doc.DisplayProjectName(),
			FillColor: rootFillColor,
			Shape:     rootShape,
		},
	}

	var stats Stats
	seen := make(map[string]bool, len(doc.Dependencies))

	for _, dep := range doc.Dependencies {
		if opts.SkipSystemLibs && dep.IsSystem() {
			stats.Skipped++
			continue
		}

		name := dep.DisplayName()
		if seen[name] {
			return Graph{}, Stats{}, errors.New(errors.ErrCodeInvalidInput, "duplicate dependency name: %s", name)
		}
		seen[name] = true

		g.Nodes = append(g.Nodes, Node{
			ID:        name,
			Label:     name + "\n" + dep.DisplayVersion() + "\n(" + dep.DisplayType() + ")",
			FillColor: palette.Color(scan.Classify(dep)),
		})
		g.Edges = append(g.Edges, Edge{From: RootID, To: name})
		stats.Retained++
	}

	return g, stats, nil
}
