package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ratedesk/internal/dataset"
	"ratedesk/internal/model"
	"ratedesk/internal/ratetable"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntries() []model.InstitutionEntry {
	return []model.InstitutionEntry{
		{
			Name: "Alpha CU",
			Link: "https://example.com/alpha",
			Rates: []model.RateRecord{
				dataset.NewRateRecord("30 Year Fixed", "6.125%"),
				dataset.NewRateRecord("5/1 ARM", "5.250%"),
			},
		},
		{
			Name:  "Bravo Federal",
			Link:  "https://example.com/bravo",
			Rates: []model.RateRecord{dataset.NewRateRecord("15 Year Fixed", "5.500%")},
		},
		{
			Name:  "Charlie Savings",
			Link:  "https://example.com/charlie",
			Rates: []model.RateRecord{dataset.NewRateRecord("Jumbo 30-Year Fixed", "6.875%")},
		},
		{Name: "Delta Credit Union", Link: "https://example.com/delta"},
	}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = update(t, m, k)
	}
	return m
}

func loadedModel(t *testing.T, opts Options) Model {
	t.Helper()
	m := New(opts)
	m.now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 180, Height: 40})
	m, _ = update(t, m, model.DatasetLoadedMsg{Entries: testEntries()})
	require.NotNil(t, m.rates)
	return m
}

func visibleNames(m Model) []string {
	var names []string
	for _, r := range m.rates.Table().VisibleRows() {
		names = append(names, r.Name)
	}
	return names
}

func TestInitLoadsDatasetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.csv")
	csv := "CreditUnion,Link,Rates,BestRate\nAlpha CU,https://a,30 Year Fixed-6.0%,x\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	m := New(Options{DataPath: path})
	msg := m.Init()()

	loaded, ok := msg.(model.DatasetLoadedMsg)
	require.True(t, ok, "got %T", msg)
	require.Len(t, loaded.Entries, 1)
	assert.Equal(t, "Alpha CU", loaded.Entries[0].Name)
}

func TestInitWithoutSourceReportsError(t *testing.T) {
	msg := New(Options{}).Init()()
	errMsg, ok := msg.(model.ErrorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, dataset.ErrNoDataset)
}

func TestDatasetLoadedAppliesStartupOptions(t *testing.T) {
	m := loadedModel(t, Options{
		Category: ratetable.CategoryAll,
		Search:   "a",
		SortKey:  ratetable.SortBestRate,
		SortDir:  ratetable.Desc,
	})

	assert.Equal(t, "a", m.rates.Table().Search())
	key, dir, ok := m.rates.Table().Sort().Active()
	require.True(t, ok)
	assert.Equal(t, ratetable.SortBestRate, key)
	assert.Equal(t, ratetable.Desc, dir)
	assert.Equal(t, []string{"Delta Credit Union", "Charlie Savings", "Bravo Federal", "Alpha CU"}, visibleNames(m))

	m = loadedModel(t, Options{Category: ratetable.CategoryConventional30})
	assert.Equal(t, []string{"Alpha CU"}, visibleNames(m))
}

func TestSortKeyTogglesActiveColumn(t *testing.T) {
	m := loadedModel(t, Options{})

	m = press(t, m, keyPress("5"), keyPress("s"))
	assert.Equal(t, "Sorted BEST RATE descending", m.info)
	assert.Equal(t, []string{"Delta Credit Union", "Charlie Savings", "Bravo Federal", "Alpha CU"}, visibleNames(m))

	m = press(t, m, keyPress("s"))
	assert.Equal(t, "Sorted BEST RATE ascending", m.info)
	assert.Equal(t, []string{"Alpha CU", "Bravo Federal", "Charlie Savings", "Delta Credit Union"}, visibleNames(m))

	m = press(t, m, keyPress("3"), keyPress("s"))
	assert.Equal(t, "PROGRAMS is not sortable", m.info)
	key, _, _ := m.rates.Table().Sort().Active()
	assert.Equal(t, ratetable.SortBestRate, key)
}

func TestSearchFiltersOnEveryKeystroke(t *testing.T) {
	m := loadedModel(t, Options{})

	m = press(t, m, keyPress("/"))
	require.Equal(t, model.ModeInsert, m.mode)

	m = press(t, m, keyPress("d"))
	assert.Equal(t, []string{"Bravo Federal", "Delta Credit Union"}, visibleNames(m))

	m = press(t, m, keyPress("e"), keyPress("l"))
	assert.Equal(t, []string{"Delta Credit Union"}, visibleNames(m))
	assert.Equal(t, model.ScreenRates, m.screen, "keys typed into search must not trigger nav actions")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, model.ModeNav, m.mode)
	assert.Equal(t, "del", m.rates.Table().Search())

	m = press(t, m, keyPress("/"), tea.KeyMsg{Type: tea.KeyCtrlU}, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, model.ModeNav, m.mode)
	assert.Len(t, visibleNames(m), 4)
}

func TestCategoryCycleChangesHeadersAndRows(t *testing.T) {
	m := loadedModel(t, Options{})

	m = press(t, m, keyPress("f"))
	assert.Equal(t, ratetable.CategoryARM, m.rates.Table().Category())
	assert.Equal(t, "Loan type: ARM", m.info)
	assert.Equal(t, []string{"Alpha CU"}, visibleNames(m))
	assert.Contains(t, m.View(), "BEST ARM PROGRAM")

	m = press(t, m, keyPress("F"), keyPress("F"))
	assert.Equal(t, ratetable.CategoryJumbo15, m.rates.Table().Category())
	assert.Empty(t, visibleNames(m))
	assert.Contains(t, m.View(), "No institutions match.")
}

func TestOpenDetailAndBack(t *testing.T) {
	m := loadedModel(t, Options{})

	m = press(t, m, keyPress("j"), tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, model.ScreenDetail, m.screen)
	require.NotNil(t, m.detail)
	assert.Equal(t, "Bravo Federal", m.detail.Name())

	view := m.View()
	assert.Contains(t, view, "15 Year Fixed")
	assert.Contains(t, view, "OVERALL BEST PROGRAM")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, model.ScreenRates, m.screen)
	assert.Nil(t, m.detail)
}

func TestJumpToTopNeedsDoubleG(t *testing.T) {
	m := loadedModel(t, Options{})

	m = press(t, m, keyPress("G"))
	assert.Equal(t, 3, m.rates.cursor)

	m = press(t, m, keyPress("g"))
	assert.Equal(t, 3, m.rates.cursor)
	m = press(t, m, keyPress("g"))
	assert.Equal(t, 0, m.rates.cursor)
}

func TestHiddenColumnsPersist(t *testing.T) {
	prefsPath := filepath.Join(t.TempDir(), "ui_prefs.json")
	m := loadedModel(t, Options{PrefsPath: prefsPath})

	m = press(t, m, keyPress("c"))
	assert.Equal(t, "Column hidden", m.info)
	assert.NotContains(t, m.View(), "INSTITUTION")

	reloaded := loadedModel(t, Options{PrefsPath: prefsPath})
	prefs := reloaded.rates.Prefs()
	assert.Equal(t, []string{"name"}, prefs.HiddenColumns)
	assert.Equal(t, "link", prefs.ActiveColumn)

	reloaded = press(t, reloaded, keyPress("C"))
	assert.Empty(t, reloaded.rates.Prefs().HiddenColumns)
}

func TestExportWritesCurrentView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "rates.html")
	m := loadedModel(t, Options{ExportPath: path})
	m = press(t, m, keyPress("f"))

	m, cmd := update(t, m, keyPress("e"))
	require.NotNil(t, cmd)

	msg := cmd()
	exported, ok := msg.(model.ExportedMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, 1, exported.Rows)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Alpha CU")
	assert.NotContains(t, string(data), "Bravo Federal")

	m, _ = update(t, m, exported)
	assert.True(t, strings.HasPrefix(m.info, "Exported 1 institution to "))
}

func TestErrorMsgShowsBanner(t *testing.T) {
	m := New(Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = update(t, m, model.ErrorMsg{Err: dataset.ErrNoDataset})
	assert.Contains(t, m.View(), "Error: no dataset")
}

func TestViewShowsSortIndicatorOnActiveColumnOnly(t *testing.T) {
	m := loadedModel(t, Options{})
	m = press(t, m, keyPress("5"), keyPress("s"))

	view := m.View()
	assert.Contains(t, view, "BEST RATE ↓")
	assert.Equal(t, 1, strings.Count(view, "↓"))
	assert.NotContains(t, view, "↑")
}

func TestHelpToggle(t *testing.T) {
	m := loadedModel(t, Options{})
	m = press(t, m, keyPress("?"))
	assert.True(t, m.showingHelp)
	assert.Contains(t, m.View(), "Search institution names")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showingHelp)
}
