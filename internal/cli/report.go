package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/depdiscover/depviz/pkg/scan"
)

// reportEntry is one vulnerable dependency in the JSON report.
type reportEntry struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Type     string   `json:"type"`
	Status   string   `json:"status"`
	Findings []string `json:"findings,omitempty"`
}

// report is the JSON report document.
type report struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Project     string         `json:"project"`
	Totals      map[string]int `json:"totals"`
	Vulnerable  []reportEntry  `json:"vulnerable,omitempty"`
}

// newReportCmd creates the report command: summarize a scan document on the
// terminal without rendering anything.
func newReportCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report [depdiscover.json]",
		Short: "Summarize the security status of a scan document",
		Long: `Summarize the security status of a scan document.

The report command counts dependencies per security status and lists the
vulnerable ones with their finding identifiers. With --json the summary is
written to stdout as a machine-readable document.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := defaultInput
			if len(args) > 0 {
				input = args[0]
			}

			doc, err := scan.Load(input)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSONReport(doc)
			}
			printReport(doc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "write the report as JSON to stdout")
	return cmd
}

// summarize counts dependencies per status and collects the vulnerable ones.
func summarize(doc scan.Document) (map[scan.Status]int, []scan.Dependency) {
	totals := make(map[scan.Status]int)
	var vulnerable []scan.Dependency
	for _, dep := range doc.Dependencies {
		status := scan.Classify(dep)
		totals[status]++
		if status == scan.StatusDanger {
			vulnerable = append(vulnerable, dep)
		}
	}
	return totals, vulnerable
}

func printReport(doc scan.Document) {
	totals, vulnerable := summarize(doc)

	fmt.Println()
	fmt.Printf("  %s (%d dependencies)\n", doc.DisplayProjectName(), len(doc.Dependencies))
	fmt.Println()
	for _, status := range []scan.Status{scan.StatusSafe, scan.StatusWarning, scan.StatusDanger, scan.StatusUnknown} {
		if totals[status] > 0 {
			printStatusCount(status, totals[status])
		}
	}

	if len(vulnerable) > 0 {
		fmt.Println()
		printWarning("Vulnerable dependencies:")
		for _, dep := range vulnerable {
			printDetail("%s %s: %s", dep.DisplayName(), dep.DisplayVersion(), findingIDs(dep))
		}
	}
	fmt.Println()
}

// findingIDs joins the finding identifiers of a vulnerable dependency.
func findingIDs(dep scan.Dependency) string {
	ids := ""
	for i, f := range dep.CVEs {
		if i > 0 {
			ids += ", "
		}
		ids += f.ID
	}
	return ids
}

func writeJSONReport(doc scan.Document) error {
	totals, vulnerable := summarize(doc)

	out := report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Project:     doc.DisplayProjectName(),
		Totals:      make(map[string]int, len(totals)),
	}
	for status, count := range totals {
		out.Totals[status.String()] = count
	}
	for _, dep := range vulnerable {
		entry := reportEntry{
			Name:    dep.DisplayName(),
			Version: dep.DisplayVersion(),
			Type:    dep.DisplayType(),
			Status:  scan.StatusDanger.String(),
		}
		for _, f := range dep.CVEs {
			entry.Findings = append(entry.Findings, f.ID)
		}
		out.Vulnerable = append(out.Vulnerable, entry)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
