package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ratedesk/internal/model"
	"ratedesk/internal/ratetable"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func testTable() *ratetable.Table {
	return ratetable.New([]model.InstitutionEntry{
		{
			Name: "Alpha CU",
			Link: "https://example.com/alpha?site=1&x=2",
			Rates: []model.RateRecord{
				{LoanTypeFull: "30 Year Conventional Fixed", RateStr: "6.000%", NumericRate: f(6), SimplifiedType: model.LoanTypeConventional, YearTerm: model.Term30Years},
			},
		},
		{
			Name: "Bravo <Federal>",
			Link: "https://example.com/bravo",
			Rates: []model.RateRecord{
				{LoanTypeFull: "5/1 ARM", RateStr: "5.250%", NumericRate: f(5.25), SimplifiedType: model.LoanTypeARM, YearTerm: model.TermOther},
			},
		},
		{Name: "Charlie Savings"},
	})
}

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func TestHTMLListsVisibleRowsInOrder(t *testing.T) {
	table := testTable()
	table.ActivateSort(ratetable.SortBestRate)
	table.ActivateSort(ratetable.SortBestRate) // asc

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, table, fixedNow))
	out := buf.String()

	bravo := strings.Index(out, "Bravo &lt;Federal&gt;")
	alpha := strings.Index(out, "<td>Alpha CU</td>")
	charlie := strings.Index(out, "<td>Charlie Savings</td>")
	require.True(t, bravo > 0 && alpha > 0 && charlie > 0)
	assert.Less(t, bravo, alpha)
	assert.Less(t, alpha, charlie)

	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, `href="https://example.com/alpha?site=1&amp;x=2"`)
	assert.Contains(t, out, `data-sort-key="bestrate" class="asc"`)
	assert.Contains(t, out, "OVERALL BEST PROGRAM")
	assert.Contains(t, out, "3 of 3 institutions")
	assert.Contains(t, out, "Oct 19, 2026 09:30")
}

func TestHTMLOmitsHiddenRowsAndUsesCategoryHeaders(t *testing.T) {
	table := testTable()
	table.SetCategory(ratetable.CategoryARM)

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, table, fixedNow))
	out := buf.String()

	assert.Contains(t, out, "BEST ARM RATE")
	assert.Contains(t, out, "BEST ARM PROGRAM")
	assert.Contains(t, out, "Bravo &lt;Federal&gt;")
	assert.NotContains(t, out, "<td>Alpha CU</td>")
	assert.NotContains(t, out, "Charlie Savings")
	assert.Contains(t, out, "1 of 3 institutions")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "rates.html")
	require.NoError(t, WriteFile(path, testTable(), fixedNow))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))
	assert.Contains(t, string(data), "<title>Mortgage Rates</title>")
}

func TestSaveCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "page.html")
	require.NoError(t, Save(path, []byte("<p>ok</p>")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", string(data))
}
