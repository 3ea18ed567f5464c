package db

import (
	"database/sql"
	"fmt"
	"time"

	"ratedesk/internal/model"
)

// ReplaceDataset replaces the cached dataset with entries, keeping their order.
func ReplaceDataset(db *sql.DB, source string, entries []model.InstitutionEntry) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM rate_records`); err != nil {
		return fmt.Errorf("failed to clear rate records: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM institutions`); err != nil {
		return fmt.Errorf("failed to clear institutions: %w", err)
	}

	instStmt, err := tx.Prepare(`INSERT INTO institutions (position, name, link) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare institution insert: %w", err)
	}
	defer instStmt.Close()

	rateStmt, err := tx.Prepare(`
		INSERT INTO rate_records (institution_id, position, loan_type_full, rate_str, numeric_rate, simplified_type, year_term)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare rate insert: %w", err)
	}
	defer rateStmt.Close()

	rateCount := 0
	for i, e := range entries {
		res, err := instStmt.Exec(i, e.Name, e.Link)
		if err != nil {
			return fmt.Errorf("failed to insert institution %q: %w", e.Name, err)
		}
		instID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get institution id: %w", err)
		}

		for j, r := range e.Rates {
			var numeric sql.NullFloat64
			if r.NumericRate != nil {
				numeric = sql.NullFloat64{Float64: *r.NumericRate, Valid: true}
			}
			if _, err := rateStmt.Exec(instID, j, r.LoanTypeFull, r.RateStr, numeric, string(r.SimplifiedType), r.YearTerm); err != nil {
				return fmt.Errorf("failed to insert rate for %q: %w", e.Name, err)
			}
			rateCount++
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO imports (source, institutions, rates) VALUES (?, ?, ?)`,
		source, len(entries), rateCount,
	); err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}
	return nil
}

// ListInstitutions returns the cached dataset in its original order.
func ListInstitutions(db *sql.DB) ([]model.InstitutionEntry, error) {
	rows, err := db.Query(`SELECT id, name, COALESCE(link, '') FROM institutions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list institutions: %w", err)
	}
	defer rows.Close()

	var entries []model.InstitutionEntry
	byID := make(map[int64]int)
	for rows.Next() {
		var id int64
		var e model.InstitutionEntry
		if err := rows.Scan(&id, &e.Name, &e.Link); err != nil {
			return nil, fmt.Errorf("failed to scan institution row: %w", err)
		}
		byID[id] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating institution rows: %w", err)
	}

	rateRows, err := db.Query(`
		SELECT institution_id, loan_type_full, rate_str, numeric_rate, simplified_type, year_term
		FROM rate_records
		ORDER BY institution_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate records: %w", err)
	}
	defer rateRows.Close()

	for rateRows.Next() {
		var instID int64
		var r model.RateRecord
		var numeric sql.NullFloat64
		var simplified string
		if err := rateRows.Scan(&instID, &r.LoanTypeFull, &r.RateStr, &numeric, &simplified, &r.YearTerm); err != nil {
			return nil, fmt.Errorf("failed to scan rate row: %w", err)
		}
		if numeric.Valid {
			v := numeric.Float64
			r.NumericRate = &v
		}
		r.SimplifiedType = model.LoanType(simplified)

		idx, ok := byID[instID]
		if !ok {
			continue
		}
		entries[idx].Rates = append(entries[idx].Rates, r)
	}
	if err := rateRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rate rows: %w", err)
	}

	return entries, nil
}

// GetDatasetInfo describes the most recent import, if any.
func GetDatasetInfo(db *sql.DB) (model.DatasetInfo, error) {
	var info model.DatasetInfo
	var source sql.NullString
	var importedAt string

	err := db.QueryRow(`
		SELECT source, institutions, rates, imported_at
		FROM imports
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&source, &info.Institutions, &info.Rates, &importedAt)
	if err == sql.ErrNoRows {
		return model.DatasetInfo{}, nil
	}
	if err != nil {
		return model.DatasetInfo{}, fmt.Errorf("failed to get dataset info: %w", err)
	}

	info.Source = source.String
	if t, err := time.Parse(time.RFC3339Nano, importedAt); err == nil {
		info.ImportedAt = t
	}
	return info, nil
}
