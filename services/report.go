package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"pypi-scraper/models"
)

type Report struct {
	SearchTerm        string
	Pages             int
	TotalListings     int
	Skipped           int
	EmptyDescriptions int
	Stop              models.StopReason
	Err               error
	// OutputPath is empty when nothing was written.
	OutputPath string
}

// BuildReport summarises a finished run. path is where the listings were
// saved, or "" if there were none.
func BuildReport(term string, result *models.RunResult, path string) Report {
	report := Report{SearchTerm: term, OutputPath: path}
	if result == nil {
		return report
	}

	report.Pages = result.Pages
	report.TotalListings = len(result.Listings)
	report.Skipped = result.Skipped
	report.Stop = result.Stop
	report.Err = result.Err

	for _, l := range result.Listings {
		if strings.TrimSpace(l.Description) == "" {
			report.EmptyDescriptions++
		}
	}
	return report
}

func PrintReport(w io.Writer, report Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("PyPI Search Summary")

	t.AppendRow(table.Row{"Search term", report.SearchTerm})
	t.AppendRow(table.Row{"Pages scraped", report.Pages})
	t.AppendRow(table.Row{"Packages found", report.TotalListings})
	t.AppendRow(table.Row{"Cards skipped", report.Skipped})
	t.AppendRow(table.Row{"Empty descriptions", report.EmptyDescriptions})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Stopped because", stopText(report)})

	out := report.OutputPath
	if out == "" {
		out = "(nothing written)"
	}
	t.AppendRow(table.Row{"Output", out})

	fmt.Fprintln(w)
	t.Render()
}

func stopText(report Report) string {
	if report.Stop == "" {
		return "-"
	}
	if report.Err == nil {
		return string(report.Stop)
	}
	return fmt.Sprintf("%s: %s", report.Stop, truncateText(report.Err.Error(), 60))
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
