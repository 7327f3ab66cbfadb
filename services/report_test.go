package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"pypi-scraper/models"
)

func TestBuildReport(t *testing.T) {
	result := &models.RunResult{
		Listings: []models.Listing{
			{Name: "a", Description: "first", URL: "https://pypi.org/project/a/"},
			{Name: "b", Description: "", URL: "https://pypi.org/project/b/"},
			{Name: "c", Description: "   ", URL: "https://pypi.org/project/c/"},
		},
		Pages:   2,
		Skipped: 1,
		Stop:    models.StopNoMorePages,
	}

	report := BuildReport("api", result, "pypi_packages.csv")
	require.Equal(t, Report{
		SearchTerm:        "api",
		Pages:             2,
		TotalListings:     3,
		Skipped:           1,
		EmptyDescriptions: 2,
		Stop:              models.StopNoMorePages,
		OutputPath:        "pypi_packages.csv",
	}, report)
}

func TestBuildReportNilResult(t *testing.T) {
	report := BuildReport("api", nil, "")
	require.Equal(t, Report{SearchTerm: "api"}, report)
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, Report{
		SearchTerm:    "api",
		Pages:         1,
		TotalListings: 20,
		Stop:          models.StopNavigationFailed,
		Err:           errors.New("results did not change after clicking next"),
	})

	out := buf.String()
	require.Contains(t, out, "PyPI Search Summary")
	require.Contains(t, out, "Packages found")
	require.Contains(t, out, "20")
	require.Contains(t, out, "navigation-failed: results did not change")
	require.Contains(t, out, "(nothing written)")
}

func TestTruncateText(t *testing.T) {
	require.Equal(t, "short", truncateText("short", 10))
	require.Equal(t, "abcdef...", truncateText("abcdefghijklmnop", 9))
	require.Equal(t, "ab", truncateText("abcdef", 2))
}
