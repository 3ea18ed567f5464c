// Package dataset reads institution rate datasets produced by the scraper.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ratedesk/internal/model"
)

// ReadJSON reads an array of institution entries in the page data shape.
// Derived record fields missing from the input are filled in.
func ReadJSON(r io.Reader) ([]model.InstitutionEntry, error) {
	var entries []model.InstitutionEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode json dataset: %w", err)
	}
	for i := range entries {
		entries[i].Name = strings.TrimSpace(entries[i].Name)
		for j := range entries[i].Rates {
			entries[i].Rates[j] = normalizeRecord(entries[i].Rates[j])
		}
	}
	return entries, nil
}

// Load reads a dataset file, choosing the format by extension.
func Load(path string) ([]model.InstitutionEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		entries, err := ReadCSV(f)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return entries, nil
	case ".json":
		entries, err := ReadJSON(f)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("unsupported dataset format %q (want .csv or .json)", filepath.Ext(path))
	}
}
