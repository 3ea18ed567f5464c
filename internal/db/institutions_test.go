package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"ratedesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "ratedesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func ptr(v float64) *float64 { return &v }

func testEntries() []model.InstitutionEntry {
	return []model.InstitutionEntry{
		{
			Name: "Zeta CU",
			Link: "https://example.com/zeta",
			Rates: []model.RateRecord{
				{LoanTypeFull: "30 Year Fixed", RateStr: "6.5%", NumericRate: ptr(6.5), SimplifiedType: model.LoanTypeConventional, YearTerm: model.Term30Years},
				{LoanTypeFull: "5/1 ARM", RateStr: "N/A", SimplifiedType: model.LoanTypeARM, YearTerm: model.TermOther},
			},
		},
		{Name: "Alpha CU", Link: ""},
		{
			Name: "Mid Federal",
			Link: "https://example.com/mid",
			Rates: []model.RateRecord{
				{LoanTypeFull: "Jumbo 15 Year Fixed", RateStr: "5.875%", NumericRate: ptr(5.875), SimplifiedType: model.LoanTypeJumbo, YearTerm: model.Term15Years},
			},
		},
	}
}

func TestReplaceAndListRoundTrip(t *testing.T) {
	database := openTestDB(t)
	want := testEntries()

	require.NoError(t, ReplaceDataset(database, "rates.csv", want))

	got, err := ListInstitutions(database)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Link, got[i].Link)
		assert.Equal(t, want[i].Rates, got[i].Rates)
	}
	assert.Nil(t, got[0].Rates[1].NumericRate)
}

func TestReplaceDatasetOverwrites(t *testing.T) {
	database := openTestDB(t)
	require.NoError(t, ReplaceDataset(database, "first.csv", testEntries()))
	require.NoError(t, ReplaceDataset(database, "second.json", testEntries()[:1]))

	got, err := ListInstitutions(database)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Zeta CU", got[0].Name)
	assert.Len(t, got[0].Rates, 2)

	info, err := GetDatasetInfo(database)
	require.NoError(t, err)
	assert.Equal(t, "second.json", info.Source)
	assert.Equal(t, 1, info.Institutions)
	assert.Equal(t, 2, info.Rates)
	assert.False(t, info.ImportedAt.IsZero())
}

func TestEmptyCache(t *testing.T) {
	database := openTestDB(t)

	got, err := ListInstitutions(database)
	require.NoError(t, err)
	assert.Empty(t, got)

	info, err := GetDatasetInfo(database)
	require.NoError(t, err)
	assert.Equal(t, model.DatasetInfo{}, info)
}
