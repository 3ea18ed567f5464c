// Package ratetable is the model behind the rate table: one row per
// institution, the loan-type and name filters, best-rate selection and
// column sorting. It has no rendering concerns; the TUI and the HTML
// exporter both draw from it.
package ratetable

import (
	"strings"

	"ratedesk/internal/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NoneDisplay is shown for derived cells that have no matching record.
const NoneDisplay = "None"

// Program is one (name, rate) pair of an institution's program list.
type Program struct {
	Name string
	Rate string
}

// Row is the rendered state of one institution.
type Row struct {
	SourceIndex int
	Name        string
	Link        string
	Visible     bool
	Programs    []Program

	best *model.RateRecord
}

// Best returns the record selected under the active category.
func (r Row) Best() (model.RateRecord, bool) {
	if r.best == nil {
		return model.RateRecord{}, false
	}
	return *r.best, true
}

// BestRateDisplay is the rate string of the selected record, or "None".
func (r Row) BestRateDisplay() string {
	if r.best == nil {
		return NoneDisplay
	}
	return r.best.RateStr
}

// BestProgramDisplay is the program name of the selected record, or "None".
func (r Row) BestProgramDisplay() string {
	if r.best == nil {
		return NoneDisplay
	}
	return r.best.LoanTypeFull
}

// Materialize builds one visible row per entry in input order.
func Materialize(entries []model.InstitutionEntry) []Row {
	rows := make([]Row, 0, len(entries))
	for i, e := range entries {
		var programs []Program
		for _, r := range e.Rates {
			if r.LoanTypeFull == "" || r.RateStr == "" {
				continue
			}
			programs = append(programs, Program{Name: r.LoanTypeFull, Rate: r.RateStr})
		}
		rows = append(rows, Row{
			SourceIndex: i,
			Name:        e.Name,
			Link:        e.Link,
			Visible:     true,
			Programs:    programs,
		})
	}
	return rows
}

// Table owns the row set, the filter inputs and the sort state.
type Table struct {
	entries  []model.InstitutionEntry
	rows     []Row
	order    []int
	sort     SortState
	category Category
	search   string

	collator *collate.Collator
	folder   cases.Caser
}

// New materializes the entries and runs the initial filter pass with the
// "all" category and an empty search term.
func New(entries []model.InstitutionEntry) *Table {
	t := &Table{
		entries:  entries,
		rows:     Materialize(entries),
		sort:     NewSortState(),
		category: CategoryAll,
		collator: collate.New(language.English),
		folder:   cases.Fold(),
	}
	t.Apply()
	return t
}

// Len returns the number of rows, visible or not.
func (t *Table) Len() int {
	return len(t.rows)
}

// VisibleLen returns the number of rows passing the filters.
func (t *Table) VisibleLen() int {
	return len(t.order)
}

// Rows returns every row in original order.
func (t *Table) Rows() []Row {
	return append([]Row(nil), t.rows...)
}

// VisibleRows returns the rows passing the filters in display order.
func (t *Table) VisibleRows() []Row {
	out := make([]Row, 0, len(t.order))
	for _, i := range t.order {
		out = append(out, t.rows[i])
	}
	return out
}

// Entry returns the source entry of a row.
func (t *Table) Entry(r Row) model.InstitutionEntry {
	return t.entries[r.SourceIndex]
}

// Category returns the active loan-type category.
func (t *Table) Category() Category {
	return t.category
}

// Search returns the active search term.
func (t *Table) Search() string {
	return t.search
}

// Headers returns the labels of the derived columns for the active category.
func (t *Table) Headers() Headers {
	return HeadersFor(t.category)
}

// Sort returns a snapshot of the sort state.
func (t *Table) Sort() SortState {
	return t.sort.clone()
}

// SetSearch changes the institution-name search term and re-filters.
func (t *Table) SetSearch(term string) {
	t.search = term
	t.Apply()
}

// SetCategory changes the loan-type category and re-filters.
func (t *Table) SetCategory(c Category) {
	t.category = c
	t.Apply()
}

// ActivateSort toggles the column's direction, makes it the active sort and
// reorders the visible rows. It returns false for columns that cannot sort.
func (t *Table) ActivateSort(key SortKey) bool {
	if _, ok := t.sort.Activate(key); !ok {
		return false
	}
	t.reorder()
	return true
}

// SortBy makes key the active sort column in direction dir.
func (t *Table) SortBy(key SortKey, dir Direction) bool {
	if !t.ActivateSort(key) {
		return false
	}
	if t.sort.Direction(key) != dir {
		t.ActivateSort(key)
	}
	return true
}

// Apply recomputes visibility and the best record of every row, then
// re-applies the active sort.
func (t *Table) Apply() {
	term := t.folder.String(t.search)
	for i := range t.rows {
		row := &t.rows[i]
		rates := t.entries[row.SourceIndex].Rates

		nameMatch := term == "" || strings.Contains(t.folder.String(row.Name), term)
		row.best = selectBest(t.category, rates)
		row.Visible = nameMatch && meetsCategory(t.category, rates)
	}
	t.reorder()
}

func meetsCategory(c Category, rates []model.RateRecord) bool {
	if c == CategoryAll {
		return true
	}
	for _, r := range rates {
		if qualifies(c, r) {
			return true
		}
	}
	return false
}

// selectBest picks the record with the strictly smallest numeric rate among
// the selectable ones; the first one wins ties.
func selectBest(c Category, rates []model.RateRecord) *model.RateRecord {
	var best *model.RateRecord
	for i := range rates {
		r := &rates[i]
		if !selectable(c, *r) {
			continue
		}
		if best == nil || *r.NumericRate < *best.NumericRate {
			best = r
		}
	}
	return best
}
