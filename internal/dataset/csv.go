package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"ratedesk/internal/model"

	log "github.com/sirupsen/logrus"
)

const (
	columnName        = "CreditUnion"
	columnLink        = "Link"
	columnRates       = "Rates"
	columnRatesLegacy = "Rates(30Years)"
)

// ReadCSV reads the scraper's CSV output. Rows with the wrong number of
// fields or without an institution name are skipped.
func ReadCSV(r io.Reader) ([]model.InstitutionEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv is empty")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	nameCol, ok := idx[columnName]
	if !ok {
		return nil, fmt.Errorf("csv header missing %q column", columnName)
	}
	linkCol, hasLink := idx[columnLink]
	ratesCol, hasRates := idx[columnRates]
	if !hasRates {
		ratesCol, hasRates = idx[columnRatesLegacy]
	}

	var entries []model.InstitutionEntry
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}
		if len(record) != len(header) {
			log.WithFields(log.Fields{
				"line":     line,
				"fields":   len(record),
				"expected": len(header),
			}).Warn("Skipping malformed csv row")
			continue
		}

		name := strings.TrimSpace(record[nameCol])
		if name == "" {
			log.WithField("line", line).Warn("Skipping csv row without institution name")
			continue
		}

		entry := model.InstitutionEntry{Name: name}
		if hasLink {
			entry.Link = strings.TrimSpace(record[linkCol])
		}
		if hasRates {
			entry.Rates = ParseRateList(record[ratesCol])
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
