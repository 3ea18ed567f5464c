package ratetable

import (
	"testing"

	"ratedesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rate(v float64) *float64 { return &v }

func rec(name, rateStr string, numeric *float64, typ model.LoanType, term string) model.RateRecord {
	return model.RateRecord{
		LoanTypeFull:   name,
		RateStr:        rateStr,
		NumericRate:    numeric,
		SimplifiedType: typ,
		YearTerm:       term,
	}
}

func sampleEntries() []model.InstitutionEntry {
	return []model.InstitutionEntry{
		{
			Name: "Alpha CU",
			Link: "https://example.com/alpha",
			Rates: []model.RateRecord{
				rec("30 Year Conventional Fixed", "6.000%", rate(6.0), model.LoanTypeConventional, model.Term30Years),
				rec("15 Year Conventional Fixed", "5.500%", rate(5.5), model.LoanTypeConventional, model.Term15Years),
			},
		},
		{
			Name: "Bravo Federal",
			Link: "https://example.com/bravo",
			Rates: []model.RateRecord{
				rec("5/1 ARM", "5.250%", rate(5.25), model.LoanTypeARM, model.TermOther),
				rec("30 Year Jumbo Fixed", "6.750%", rate(6.75), model.LoanTypeJumbo, model.Term30Years),
				rec("Jumbo 30 Year 7/1 ARM", "6.100%", rate(6.1), model.LoanTypeJumbo, model.Term30Years),
			},
		},
		{
			Name: "Charlie Savings",
			Link: "https://example.com/charlie",
			Rates: []model.RateRecord{
				rec("30 Year Conventional Fixed", "N/A", nil, model.LoanTypeConventional, model.Term30Years),
			},
		},
		{
			Name:  "Delta Credit Union",
			Link:  "https://example.com/delta",
			Rates: nil,
		},
	}
}

func names(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestMaterialize(t *testing.T) {
	entries := sampleEntries()
	entries[0].Rates = append(entries[0].Rates,
		rec("", "7.000%", rate(7), model.LoanTypeOther, model.TermOther),
		rec("Mystery Program", "", nil, model.LoanTypeOther, model.TermOther),
	)

	rows := Materialize(entries)
	require.Len(t, rows, len(entries))

	for i, r := range rows {
		assert.Equal(t, i, r.SourceIndex)
		assert.True(t, r.Visible)
		assert.Equal(t, NoneDisplay, r.BestRateDisplay())
		assert.Equal(t, NoneDisplay, r.BestProgramDisplay())
	}

	assert.Equal(t, []Program{
		{Name: "30 Year Conventional Fixed", Rate: "6.000%"},
		{Name: "15 Year Conventional Fixed", Rate: "5.500%"},
	}, rows[0].Programs)
	assert.Empty(t, rows[3].Programs)
}

func TestNewRunsInitialFilterPass(t *testing.T) {
	table := New(sampleEntries())

	assert.Equal(t, 4, table.Len())
	assert.Equal(t, 4, table.VisibleLen())
	assert.Equal(t, CategoryAll, table.Category())
	assert.Equal(t, []string{"Alpha CU", "Bravo Federal", "Charlie Savings", "Delta Credit Union"}, names(table.VisibleRows()))

	rows := table.VisibleRows()
	assert.Equal(t, "5.500%", rows[0].BestRateDisplay())
	assert.Equal(t, "15 Year Conventional Fixed", rows[0].BestProgramDisplay())
	assert.Equal(t, "5.250%", rows[1].BestRateDisplay())
	assert.Equal(t, NoneDisplay, rows[2].BestRateDisplay())
	assert.Equal(t, NoneDisplay, rows[3].BestProgramDisplay())
}

func TestEndToEndConventional30(t *testing.T) {
	entries := []model.InstitutionEntry{{
		Name: "Alpha CU",
		Rates: []model.RateRecord{
			rec("30 Year Conventional Fixed", "6.000%", rate(6.0), model.LoanTypeConventional, model.Term30Years),
		},
	}}
	table := New(entries)
	table.SetCategory(CategoryConventional30)
	table.SetSearch("")

	rows := table.VisibleRows()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Visible)
	assert.Equal(t, "6.000%", rows[0].BestRateDisplay())
	assert.Equal(t, "30 Year Conventional Fixed", rows[0].BestProgramDisplay())
}

func TestAllCategoryPicksMinimumRate(t *testing.T) {
	entries := []model.InstitutionEntry{{
		Name: "Tie CU",
		Rates: []model.RateRecord{
			rec("First", "6.5%", rate(6.5), model.LoanTypeConventional, model.Term30Years),
			rec("Unparsed", "call us", nil, model.LoanTypeOther, model.TermOther),
			rec("Second", "5.9%", rate(5.9), model.LoanTypeARM, model.TermOther),
			rec("Third", "5.90%", rate(5.9), model.LoanTypeJumbo, model.Term15Years),
		},
	}}
	table := New(entries)

	best, ok := table.VisibleRows()[0].Best()
	require.True(t, ok)
	assert.Equal(t, "Second", best.LoanTypeFull)
	assert.Equal(t, "5.9%", table.VisibleRows()[0].BestRateDisplay())
}

func TestFixedCategoriesNeverSelectARMPrograms(t *testing.T) {
	table := New(sampleEntries())
	table.SetCategory(CategoryJumbo30)

	rows := table.VisibleRows()
	require.Equal(t, []string{"Bravo Federal"}, names(rows))
	assert.Equal(t, "30 Year Jumbo Fixed", rows[0].BestProgramDisplay())
	assert.Equal(t, "6.750%", rows[0].BestRateDisplay())
}

func TestQualifyingRowWithOnlyARMProgramShowsNone(t *testing.T) {
	entries := []model.InstitutionEntry{{
		Name: "Only ARM Jumbo",
		Rates: []model.RateRecord{
			rec("Jumbo 30 Year 5/1 ARM", "5.000%", rate(5), model.LoanTypeJumbo, model.Term30Years),
		},
	}}
	table := New(entries)
	table.SetCategory(CategoryJumbo30)

	rows := table.VisibleRows()
	require.Len(t, rows, 1)
	assert.Equal(t, NoneDisplay, rows[0].BestRateDisplay())
	assert.Equal(t, NoneDisplay, rows[0].BestProgramDisplay())
}

func TestCategoryVisibility(t *testing.T) {
	tests := []struct {
		category Category
		visible  []string
	}{
		{CategoryAll, []string{"Alpha CU", "Bravo Federal", "Charlie Savings", "Delta Credit Union"}},
		{CategoryARM, []string{"Bravo Federal"}},
		{CategoryConventional30, []string{"Alpha CU", "Charlie Savings"}},
		{CategoryConventional20, []string{}},
		{CategoryConventional15, []string{"Alpha CU"}},
		{CategoryJumbo30, []string{"Bravo Federal"}},
		{CategoryJumbo15, []string{}},
		{Category("bogus"), []string{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			table := New(sampleEntries())
			table.SetCategory(tt.category)
			assert.Equal(t, tt.visible, names(table.VisibleRows()))
		})
	}
}

func TestHeadersPerCategory(t *testing.T) {
	tests := []struct {
		category Category
		want     Headers
	}{
		{CategoryAll, Headers{"BEST RATE", "OVERALL BEST PROGRAM"}},
		{CategoryARM, Headers{"BEST ARM RATE", "BEST ARM PROGRAM"}},
		{CategoryConventional30, Headers{"BEST 30YR CONV FIXED RATE", "BEST 30YR CONV FIXED PROGRAM"}},
		{CategoryConventional20, Headers{"BEST 20YR CONV FIXED RATE", "BEST 20YR CONV FIXED PROGRAM"}},
		{CategoryConventional15, Headers{"BEST 15YR CONV FIXED RATE", "BEST 15YR CONV FIXED PROGRAM"}},
		{CategoryJumbo30, Headers{"BEST 30YR JUMBO FIXED RATE", "BEST 30YR JUMBO FIXED PROGRAM"}},
		{CategoryJumbo15, Headers{"BEST 15YR JUMBO FIXED RATE", "BEST 15YR JUMBO FIXED PROGRAM"}},
		{Category("other"), Headers{"BEST RATE", "BEST PROGRAM"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			table := New(sampleEntries())
			table.SetCategory(tt.category)
			assert.Equal(t, tt.want, table.Headers())
		})
	}
}

func TestSearch(t *testing.T) {
	table := New(sampleEntries())

	table.SetSearch("CREDIT")
	assert.Equal(t, []string{"Delta Credit Union"}, names(table.VisibleRows()))

	table.SetSearch("zzz")
	assert.Empty(t, table.VisibleRows())
	table.SetCategory(CategoryARM)
	assert.Empty(t, table.VisibleRows())

	table.SetSearch("")
	assert.Equal(t, []string{"Bravo Federal"}, names(table.VisibleRows()))
}

func TestBestRateComputedForHiddenRows(t *testing.T) {
	table := New(sampleEntries())
	table.SetSearch("bravo")

	all := table.Rows()
	require.Len(t, all, 4)
	assert.False(t, all[0].Visible)
	assert.Equal(t, "5.500%", all[0].BestRateDisplay())
	assert.Equal(t, "15 Year Conventional Fixed", all[0].BestProgramDisplay())
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCategory("  Jumbo30 ")
	require.NoError(t, err)
	assert.Equal(t, CategoryJumbo30, got)

	_, err = ParseCategory("fha30")
	assert.Error(t, err)
}

func TestCategoryCycling(t *testing.T) {
	assert.Equal(t, CategoryARM, CategoryAll.Next())
	assert.Equal(t, CategoryAll, CategoryJumbo15.Next())
	assert.Equal(t, CategoryJumbo15, CategoryAll.Prev())
	assert.Equal(t, CategoryAll, Category("bogus").Next())
}
