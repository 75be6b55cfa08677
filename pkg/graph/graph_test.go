package graph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/depdiscover/depviz/pkg/errors"
	"github.com/depdiscover/depviz/pkg/scan"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name         string
		doc          scan.Document
		opts         Options
		wantRetained int
		wantSkipped  int
		wantErr      bool
		check        func(t *testing.T, g Graph)
	}{
		{
			name: "Empty",
			doc:  scan.Document{},
			opts: Options{SkipSystemLibs: true},
			check: func(t *testing.T, g Graph) {
				if g.NodeCount() != 0 || g.EdgeCount() != 0 {
					t.Errorf("nodes = %d, edges = %d, want 0, 0", g.NodeCount(), g.EdgeCount())
				}
				if g.Root.Label != "Project" {
					t.Errorf("root label = %q, want Project placeholder", g.Root.Label)
				}
			},
		},
		{
			name: "SystemSkipped",
			doc: scan.Document{Dependencies: []scan.Dependency{
				{Name: "libc", Type: "system"},
			}},
			opts:         Options{SkipSystemLibs: true},
			wantRetained: 0,
			wantSkipped:  1,
		},
		{
			name: "SystemRetainedWhenFilterOff",
			doc: scan.Document{Dependencies: []scan.Dependency{
				{Name: "libc", Type: "system"},
				{Name: "libm", Type: "system"},
			}},
			opts:         Options{SkipSystemLibs: false},
			wantRetained: 2,
			wantSkipped:  0,
		},
		{
			name: "LabelAndColor",
			doc: scan.Document{Dependencies: []scan.Dependency{
				{Name: "left-pad", Version: "1.0.0", Type: "library", CVEs: []scan.Finding{{ID: "SAFE"}}},
			}},
			opts:         Options{SkipSystemLibs: true},
			wantRetained: 1,
			check: func(t *testing.T, g Graph) {
				n := g.Nodes[0]
				if n.Label != "left-pad\n1.0.0\n(library)" {
					t.Errorf("label = %q, want three-line label", n.Label)
				}
				if n.FillColor != "#90EE90" {
					t.Errorf("fill = %q, want safe color", n.FillColor)
				}
			},
		},
		{
			name: "DangerColor",
			doc: scan.Document{Dependencies: []scan.Dependency{
				{Name: "openssl", CVEs: []scan.Finding{{ID: "CVE-2023-1234"}}},
			}},
			opts:         Options{},
			wantRetained: 1,
			check: func(t *testing.T, g Graph) {
				if g.Nodes[0].FillColor != "#FF6347" {
					t.Errorf("fill = %q, want danger color", g.Nodes[0].FillColor)
				}
			},
		},
		{
			name: "DefaultsApplied",
			doc: scan.Document{Dependencies: []scan.Dependency{
				{},
			}},
			opts:         Options{},
			wantRetained: 1,
			check: func(t *testing.T, g Graph) {
				if g.Nodes[0].Label != "unknown\n?\n(unknown)" {
					t.Errorf("label = %q, want defaulted label", g.Nodes[0].Label)
				}
			},
		},
		{
			name: "MixedPartition",
			doc: scan.Document{Dependencies: []scan.Dependency{
				{Name: "a", Type: "library"},
				{Name: "b", Type: "system"},
				{Name: "c", Type: "library"},
				{Name: "d", Type: "system"},
				{Name: "e"},
			}},
			opts:         Options{SkipSystemLibs: true},
			wantRetained: 3,
			wantSkipped:  2,
		},
		{
			name: "DuplicateNamesRejected",
			doc: scan.Document{Dependencies: []scan.Dependency{
				{Name: "zlib", Version: "1.0"},
				{Name: "zlib", Version: "2.0"},
			}},
			opts:    Options{},
			wantErr: true,
		},
		{
			name: "DuplicateAllowedWhenFirstIsSkipped",
			doc: scan.Document{Dependencies: []scan.Dependency{
				{Name: "zlib", Type: "system"},
				{Name: "zlib", Type: "library"},
			}},
			opts:         Options{SkipSystemLibs: true},
			wantRetained: 1,
			wantSkipped:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, stats, err := Build(tt.doc, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Build() error = nil, want error")
				}
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("error code = %q, want INVALID_INPUT", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if stats.Retained != tt.wantRetained {
				t.Errorf("Retained = %d, want %d", stats.Retained, tt.wantRetained)
			}
			if stats.Skipped != tt.wantSkipped {
				t.Errorf("Skipped = %d, want %d", stats.Skipped, tt.wantSkipped)
			}
			if stats.Retained+stats.Skipped != len(tt.doc.Dependencies) {
				t.Errorf("Retained+Skipped = %d, want %d", stats.Retained+stats.Skipped, len(tt.doc.Dependencies))
			}
			if g.NodeCount() != stats.Retained {
				t.Errorf("NodeCount() = %d, want %d", g.NodeCount(), stats.Retained)
			}
			if g.EdgeCount() != stats.Retained {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), stats.Retained)
			}
			for _, e := range g.Edges {
				if e.From != RootID {
					t.Errorf("edge %v originates at %q, want %q", e, e.From, RootID)
				}
			}
			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestBuildRootNode(t *testing.T) {
	g, _, err := Build(scan.Document{ProjectName: "my-app"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Root.ID != RootID {
		t.Errorf("root ID = %q, want %q", g.Root.ID, RootID)
	}
	if g.Root.Label != "my-app" {
		t.Errorf("root label = %q, want my-app", g.Root.Label)
	}
	if g.Root.Shape != "doubleoctagon" {
		t.Errorf("root shape = %q, want doubleoctagon", g.Root.Shape)
	}
	if g.Root.FillColor != "lightblue" {
		t.Errorf("root fill = %q, want lightblue", g.Root.FillColor)
	}
}

func TestPaletteFallback(t *testing.T) {
	p := Palette{scan.StatusDanger: "red"}
	if got := p.Color(scan.StatusDanger); got != "red" {
		t.Errorf("Color(danger) = %q, want red", got)
	}
	if got := p.Color(scan.StatusSafe); got != "lightgrey" {
		t.Errorf("Color(safe) = %q, want unknown fallback", got)
	}
}

func TestCustomPalette(t *testing.T) {
	doc := scan.Document{Dependencies: []scan.Dependency{
		{Name: "a", CVEs: []scan.Finding{{ID: "CVE-1"}}},
	}}
	g, _, err := Build(doc, Options{Palette: Palette{scan.StatusDanger: "crimson"}})
	if err != nil {
		t.Fatal(err)
	}
	if g.Nodes[0].FillColor != "crimson" {
		t.Errorf("fill = %q, want crimson", g.Nodes[0].FillColor)
	}
}

func TestToDOT(t *testing.T) {
	doc := scan.Document{
		ProjectName: "demo",
		Dependencies: []scan.Dependency{
			{Name: "zlib", Version: "1.2.13", Type: "library", CVEs: []scan.Finding{{ID: "SAFE"}}},
			{Name: "openssl", Version: "3.0.2", Type: "library", CVEs: []scan.Finding{{ID: "CVE-2023-0286"}}},
		},
	}
	g, _, err := Build(doc, Options{SkipSystemLibs: true})
	if err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(g)

	for _, want := range []string{
		"digraph dependencies {",
		"rankdir=LR;",
		`"ROOT" [label="demo", shape=doubleoctagon, fillcolor="lightblue"];`,
		`"zlib" [label="zlib\n1.2.13\n(library)", fillcolor="#90EE90"];`,
		`"openssl" [label="openssl\n3.0.2\n(library)", fillcolor="#FF6347"];`,
		`"ROOT" -> "zlib";`,
		`"ROOT" -> "openssl";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
}

func TestToDOTEmptyGraph(t *testing.T) {
	g, _, err := Build(scan.Document{}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(g)
	if !strings.Contains(dot, `"ROOT"`) {
		t.Errorf("ToDOT() of empty graph must still contain the root node:\n%s", dot)
	}
	if strings.Contains(dot, "->") {
		t.Errorf("ToDOT() of empty graph must contain no edges:\n%s", dot)
	}
}

func TestToDOTQuotesSpecialNames(t *testing.T) {
	g := Graph{
		Root:  Node{ID: RootID, Label: `my "quoted" project`, Shape: "doubleoctagon", FillColor: "lightblue"},
		Nodes: []Node{{ID: "lib with spaces", Label: "lib with spaces\n?\n(unknown)", FillColor: "lightgrey"}},
		Edges: []Edge{{From: RootID, To: "lib with spaces"}},
	}

	dot := ToDOT(g)
	if !strings.Contains(dot, `"lib with spaces"`) {
		t.Errorf("ToDOT() must quote node IDs with spaces:\n%s", dot)
	}
	if !strings.Contains(dot, `\"quoted\"`) {
		t.Errorf("ToDOT() must escape quotes inside labels:\n%s", dot)
	}
}

func TestWriteDOTFile(t *testing.T) {
	g, _, err := Build(scan.Document{ProjectName: "demo"}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "dependency_graph.gv")
	if err := WriteDOTFile(g, path); err != nil {
		t.Fatalf("WriteDOTFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ToDOT(g) {
		t.Error("file content does not match ToDOT() output")
	}
}
