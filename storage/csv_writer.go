package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pypi-scraper/models"
	"pypi-scraper/utils"
)

// Header is the fixed first row of every output file.
var Header = []string{"Package Name", "Description", "URL"}

// CSVWriter saves listings to a CSV file.
type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (w *CSVWriter) Path() string {
	return w.path
}

// Write replaces the file at the writer's path with a header row followed by
// one row per listing, in order. With no listings it leaves the filesystem
// untouched.
func (w *CSVWriter) Write(listings []models.Listing) error {
	if len(listings) == 0 {
		utils.Warn("No packages found to save")
		return nil
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create output dir: %w", err)
		}
	}

	utils.Info("Saving %d packages to %s...", len(listings), w.path)
	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	if err := writeRows(file, listings); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("could not close file: %w", err)
	}

	utils.Success("Saved %d packages → %s", len(listings), w.path)
	return nil
}

func writeRows(w io.Writer, listings []models.Listing) error {
	// csv.Writer handles quoting, commas inside fields and line endings
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	for _, l := range listings {
		if err := writer.Write(l.Row()); err != nil {
			return fmt.Errorf("csv write error: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	return nil
}
