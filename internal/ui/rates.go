package ui

import (
	"fmt"
	"strings"
	"time"

	"ratedesk/internal/model"
	"ratedesk/internal/ratetable"
	"ratedesk/internal/util"

	"github.com/charmbracelet/lipgloss"
)

type rateColumn struct {
	key     string
	label   string
	width   int
	hidden  bool
	sortKey ratetable.SortKey
}

// RatesModel represents the institutions rate table screen.
type RatesModel struct {
	table *ratetable.Table
	rows  []ratetable.Row
	info  model.DatasetInfo

	cursor int
	offset int

	viewportHeight int

	columns      []rateColumn
	activeColumn int
}

// NewRatesModel creates a new rates model over table.
func NewRatesModel(table *ratetable.Table, info model.DatasetInfo) *RatesModel {
	m := &RatesModel{
		table: table,
		info:  info,
		columns: []rateColumn{
			{key: "name", label: "institution", width: 28, sortKey: ratetable.SortName},
			{key: "link", label: "link", width: 32, sortKey: ratetable.SortLink},
			{key: "programs", label: "programs", width: 10},
			{key: "bestprogram", width: 30, sortKey: ratetable.SortBestProgram},
			{key: "bestrate", width: 10, sortKey: ratetable.SortBestRate},
		},
	}
	m.refresh()
	return m
}

func (m *RatesModel) ApplyPrefs(prefs TablePrefs) {
	hidden := make(map[string]bool, len(prefs.HiddenColumns))
	for _, c := range prefs.HiddenColumns {
		hidden[c] = true
	}
	for i := range m.columns {
		m.columns[i].hidden = hidden[m.columns[i].key]
	}
	if prefs.ActiveColumn != "" {
		for i, c := range m.columns {
			if c.key == prefs.ActiveColumn {
				m.activeColumn = i
				break
			}
		}
	}
	m.ensureVisibleActiveColumn()
}

func (m *RatesModel) Prefs() TablePrefs {
	var hidden []string
	for _, c := range m.columns {
		if c.hidden {
			hidden = append(hidden, c.key)
		}
	}
	return TablePrefs{
		HiddenColumns: hidden,
		ActiveColumn:  m.columns[m.activeColumn].key,
	}
}

// Table returns the model the screen draws from.
func (m *RatesModel) Table() *ratetable.Table {
	return m.table
}

func (m *RatesModel) refresh() {
	m.rows = m.table.VisibleRows()
	m.clampCursor()
}

func (m *RatesModel) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// SetSearch re-filters the table by institution name.
func (m *RatesModel) SetSearch(term string) {
	m.table.SetSearch(term)
	m.refresh()
}

// SetCategory re-filters the table by loan-type category.
func (m *RatesModel) SetCategory(c ratetable.Category) {
	m.table.SetCategory(c)
	m.refresh()
}

// CycleCategory moves to the next (delta > 0) or previous category.
func (m *RatesModel) CycleCategory(delta int) ratetable.Category {
	c := m.table.Category().Next()
	if delta < 0 {
		c = m.table.Category().Prev()
	}
	m.SetCategory(c)
	return c
}

// Selected returns the row under the cursor.
func (m *RatesModel) Selected() (ratetable.Row, bool) {
	if len(m.rows) == 0 {
		return ratetable.Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *RatesModel) columnLabel(col rateColumn) string {
	headers := m.table.Headers()
	switch col.key {
	case "bestprogram":
		return headers.BestProgram
	case "bestrate":
		return headers.BestRate
	default:
		return col.label
	}
}

func (m *RatesModel) visibleColumnIndexes() []int {
	var idxs []int
	for i, c := range m.columns {
		if !c.hidden {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (m *RatesModel) ensureVisibleActiveColumn() {
	if !m.columns[m.activeColumn].hidden {
		return
	}
	for i := range m.columns {
		if !m.columns[i].hidden {
			m.activeColumn = i
			return
		}
	}
	m.columns[0].hidden = false
	m.activeColumn = 0
}

func (m *RatesModel) NextColumn() {
	start := m.activeColumn
	for {
		m.activeColumn = (m.activeColumn + 1) % len(m.columns)
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *RatesModel) PrevColumn() {
	start := m.activeColumn
	for {
		m.activeColumn--
		if m.activeColumn < 0 {
			m.activeColumn = len(m.columns) - 1
		}
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *RatesModel) JumpToColumn(number int) bool {
	if number < 1 || number > len(m.columns) {
		return false
	}
	idx := number - 1
	if m.columns[idx].hidden {
		return false
	}
	m.activeColumn = idx
	return true
}

// SortActiveColumn activates the sort of the active column, flipping its
// remembered direction.
func (m *RatesModel) SortActiveColumn() string {
	col := m.columns[m.activeColumn]
	label := formatHeaderLabel(m.columnLabel(col))
	if col.sortKey == "" || !m.table.ActivateSort(col.sortKey) {
		return fmt.Sprintf("%s is not sortable", label)
	}
	m.refresh()

	order := "ascending"
	if m.table.Sort().Direction(col.sortKey) == ratetable.Desc {
		order = "descending"
	}
	return fmt.Sprintf("Sorted %s %s", label, order)
}

func (m *RatesModel) HideActiveColumn() bool {
	if len(m.visibleColumnIndexes()) <= 1 {
		return false
	}
	m.columns[m.activeColumn].hidden = true
	m.ensureVisibleActiveColumn()
	return true
}

func (m *RatesModel) ShowAllColumns() {
	for i := range m.columns {
		m.columns[i].hidden = false
	}
}

func (m *RatesModel) TableMeta() string {
	col := formatHeaderLabel(m.columnLabel(m.columns[m.activeColumn]))
	parts := []string{fmt.Sprintf("col %s", col)}
	if key, dir, ok := m.table.Sort().Active(); ok {
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(string(key)), dir))
	}
	parts = append(parts, fmt.Sprintf("loan type %s", m.table.Category().Label()))
	if term := m.table.Search(); term != "" {
		parts = append(parts, fmt.Sprintf("search %q", term))
	}
	return strings.Join(parts, "  ·  ")
}

func (m *RatesModel) sortIndicator(col rateColumn) string {
	key, dir, ok := m.table.Sort().Active()
	if !ok || col.sortKey == "" || key != col.sortKey {
		return ""
	}
	if dir == ratetable.Desc {
		return " ↓"
	}
	return " ↑"
}

func (m *RatesModel) cell(row ratetable.Row, col rateColumn) string {
	switch col.key {
	case "name":
		return util.TruncateString(row.Name, col.width)
	case "link":
		if row.Link == "" {
			return "—"
		}
		return util.TruncateString(row.Link, col.width)
	case "programs":
		return fmt.Sprintf("%d", len(row.Programs))
	case "bestprogram":
		return util.TruncateString(row.BestProgramDisplay(), col.width)
	case "bestrate":
		if _, ok := row.Best(); !ok {
			return row.BestRateDisplay()
		}
		return RateStyle.Render(row.BestRateDisplay())
	default:
		return ""
	}
}

// View renders the rate table.
func (m *RatesModel) View(width, height int) string {
	status := m.statusLine(time.Now())

	if len(m.rows) == 0 {
		emptyMsg := "    No institutions match."
		if m.table.Len() == 0 {
			emptyMsg = "    No institutions loaded.\n    Run with -data to import a rates file."
		} else {
			emptyMsg += "\n    Press  /  to change the search or  f  to change the loan type."
		}
		body := EmptyStateStyle.
			Width(width).
			Height(max(0, height-lipgloss.Height(status))).
			Render(emptyMsg)
		return lipgloss.JoinVertical(lipgloss.Left, body, status)
	}

	visible := m.visibleColumnIndexes()
	if len(visible) == 0 {
		return EmptyStateStyle.Width(width).Height(height).Render("No visible columns. Press C to show all columns.")
	}

	widths := make([]int, 0, len(visible))
	headers := make([]string, 0, len(visible))
	totalFixed := 0
	for _, idx := range visible {
		col := m.columns[idx]
		label := formatHeaderLabel(m.columnLabel(col))
		if idx == m.activeColumn {
			label = renderActiveHeaderLabel(label)
		}
		label += m.sortIndicator(col)
		cellWidth := max(col.width+2, lipgloss.Width(label)+4)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}
	if len(widths) > 0 {
		sepTotal := (len(widths) - 1) * tableSeparatorWidth()
		extra := width - totalFixed - sepTotal - 2
		if extra > 0 {
			widths[len(widths)-1] += extra
		}
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)
	divider := renderTableDivider(widths)

	visibleHeight := height - 3
	m.viewportHeight = visibleHeight
	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		row := m.rows[i]
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}

		cells := make([]string, 0, len(visible))
		for _, idx := range visible {
			cells = append(cells, m.cell(row, m.columns[idx]))
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		divider,
		strings.Join(rows, "\n"),
	)
	statusHeight := lipgloss.Height(status)
	contentHeight := lipgloss.Height(content)
	spacerHeight := max(0, height-contentHeight-statusHeight)
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		spacer,
		status,
	)
}

func (m *RatesModel) statusLine(now time.Time) string {
	count := fmt.Sprintf("%d of %s", len(m.rows), util.Plural(m.table.Len(), "institution"))
	rowPos := ""
	if len(m.rows) > 0 {
		rowPos = fmt.Sprintf("  ·  row %d/%d", m.cursor+1, len(m.rows))
	}
	imported := ""
	if !m.info.ImportedAt.IsZero() {
		imported = "  ·  imported " + util.FormatImportedAt(m.info.ImportedAt, now)
	}
	meta := m.TableMeta()
	if meta != "" {
		meta = "  ·  " + meta
	}
	return StatusBarStyle.Render(count + rowPos + imported + meta)
}

// MoveDown moves the cursor down.
func (m *RatesModel) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
		vh := m.viewportHeight
		if vh == 0 {
			vh = 10
		}
		if m.cursor >= m.offset+vh {
			m.offset++
		}
	}
}

// MoveUp moves the cursor up.
func (m *RatesModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		if m.cursor < m.offset {
			m.offset--
		}
	}
}

// JumpToTop jumps to the first row.
func (m *RatesModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last row.
func (m *RatesModel) JumpToBottom() {
	if len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
		vh := m.viewportHeight
		if vh == 0 {
			vh = 10
		}
		if m.cursor >= vh {
			m.offset = m.cursor - vh + 1
		}
	}
}

// HalfPageDown moves down half a page.
func (m *RatesModel) HalfPageDown(pageSize int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += pageSize / 2
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	vh := m.viewportHeight
	if vh == 0 {
		vh = 10
	}
	if m.cursor >= m.offset+vh {
		m.offset = m.cursor - vh + 1
	}
}

// HalfPageUp moves up half a page.
func (m *RatesModel) HalfPageUp(pageSize int) {
	m.cursor -= pageSize / 2
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
}
