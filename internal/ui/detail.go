package ui

import (
	"strings"

	"ratedesk/internal/model"
	"ratedesk/internal/ratetable"
	"ratedesk/internal/util"

	"github.com/charmbracelet/lipgloss"
)

// DetailModel shows one institution with its full program list.
type DetailModel struct {
	row     ratetable.Row
	entry   model.InstitutionEntry
	headers ratetable.Headers
}

// NewDetailModel creates a detail model for row.
func NewDetailModel(row ratetable.Row, entry model.InstitutionEntry, headers ratetable.Headers) *DetailModel {
	return &DetailModel{
		row:     row,
		entry:   entry,
		headers: headers,
	}
}

// Name returns the institution name for the breadcrumb.
func (m *DetailModel) Name() string {
	return m.row.Name
}

// View renders the institution detail.
func (m *DetailModel) View(width, height int) string {
	shortcuts := HelpDescStyle.Render("h back  e export")
	header := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Right).
		Render(shortcuts)

	var sections []string

	var fields []string
	fields = append(fields, renderField("Institution", m.row.Name))
	fields = append(fields, renderField("Link", m.row.Link))
	fields = append(fields, renderField(m.headers.BestProgram, m.row.BestProgramDisplay()))
	fields = append(fields, renderField(m.headers.BestRate, m.row.BestRateDisplay()))
	sections = append(sections, strings.Join(fields, "\n"))

	divider := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.Repeat("─", max(0, width-8)))
	sections = append(sections, divider)

	if len(m.entry.Rates) > 0 {
		sections = append(sections, LabelStyle.Render(util.Plural(len(m.row.Programs), "program")+":"))
		sections = append(sections, m.renderProgramsTable(width))
	} else {
		sections = append(sections, HelpDescStyle.Render("No rate programs published."))
	}

	info := PanelStyle.
		Width(width - 4).
		Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(lipgloss.Left, header, info)
}

func (m *DetailModel) renderProgramsTable(width int) string {
	rateWidth := 10
	typeWidth := 14
	termWidth := 10
	programWidth := max(20, width-rateWidth-typeWidth-termWidth-20)
	widths := []int{programWidth, rateWidth, typeWidth, termWidth}

	header := renderTableRow(
		[]string{
			formatHeaderLabel("program"),
			formatHeaderLabel("rate"),
			formatHeaderLabel("type"),
			formatHeaderLabel("term"),
		},
		widths,
		TableHeaderStyle,
	)
	divider := renderTableDivider(widths)

	best, hasBest := m.row.Best()

	var rows []string
	for _, r := range m.entry.Rates {
		if r.LoanTypeFull == "" || r.RateStr == "" {
			continue
		}
		style := NormalRowStyle
		if hasBest && r.LoanTypeFull == best.LoanTypeFull && r.RateStr == best.RateStr {
			style = BestRowStyle
		}
		cells := []string{
			util.TruncateString(r.LoanTypeFull, programWidth),
			r.RateStr,
			string(r.SimplifiedType),
			r.YearTerm,
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		divider,
		strings.Join(rows, "\n"),
	)
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}
