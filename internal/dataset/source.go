package dataset

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ratedesk/internal/db"
	"ratedesk/internal/model"

	log "github.com/sirupsen/logrus"
)

// ErrNoDataset is returned when neither a file nor a populated cache exists.
var ErrNoDataset = errors.New("no dataset: pass -data or import one first")

// Source locates the dataset: a file to import, the cache, or both.
type Source struct {
	Path string
	DB   *sql.DB
}

// Fetch loads the dataset. A file is imported into the cache when one is
// configured; without a file the cache is read back.
func Fetch(src Source) ([]model.InstitutionEntry, model.DatasetInfo, error) {
	if src.Path != "" {
		entries, err := Load(src.Path)
		if err != nil {
			return nil, model.DatasetInfo{}, err
		}
		if src.DB == nil {
			return entries, describe(src.Path, entries, time.Now()), nil
		}
		if err := db.ReplaceDataset(src.DB, src.Path, entries); err != nil {
			return nil, model.DatasetInfo{}, fmt.Errorf("failed to cache dataset: %w", err)
		}
		info, err := db.GetDatasetInfo(src.DB)
		if err != nil {
			return nil, model.DatasetInfo{}, err
		}
		log.WithFields(log.Fields{
			"source":       src.Path,
			"institutions": info.Institutions,
			"rates":        info.Rates,
		}).Info("Dataset imported")
		return entries, info, nil
	}

	if src.DB == nil {
		return nil, model.DatasetInfo{}, ErrNoDataset
	}
	info, err := db.GetDatasetInfo(src.DB)
	if err != nil {
		return nil, model.DatasetInfo{}, err
	}
	if info == (model.DatasetInfo{}) {
		return nil, model.DatasetInfo{}, ErrNoDataset
	}
	entries, err := db.ListInstitutions(src.DB)
	if err != nil {
		return nil, model.DatasetInfo{}, err
	}
	log.WithFields(log.Fields{
		"source":       info.Source,
		"institutions": len(entries),
	}).Debug("Dataset read from cache")
	return entries, info, nil
}

func describe(source string, entries []model.InstitutionEntry, now time.Time) model.DatasetInfo {
	info := model.DatasetInfo{
		Institutions: len(entries),
		Source:       source,
		ImportedAt:   now,
	}
	for _, e := range entries {
		info.Rates += len(e.Rates)
	}
	return info
}
