package ui

import (
	"bytes"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ratedesk/internal/dataset"
	"ratedesk/internal/model"
	"ratedesk/internal/ratetable"
	"ratedesk/internal/render"
	"ratedesk/internal/util"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
)

// Options configures the root model.
type Options struct {
	DataPath   string
	DB         *sql.DB
	Category   ratetable.Category
	Search     string
	SortKey    ratetable.SortKey
	SortDir    ratetable.Direction
	ExportPath string
	// PrefsPath is where column preferences persist; empty disables it.
	PrefsPath string
}

// Model is the root Bubble Tea model.
type Model struct {
	opts   Options
	screen model.Screen
	mode   model.Mode
	gState GState

	width  int
	height int

	error       string
	info        string
	showingHelp bool

	rates  *RatesModel
	detail *DetailModel
	search textinput.Model

	keys       KeyMap
	searchKeys SearchKeyMap
	prefs      UIPreferences
	now        func() time.Time
}

// New creates a new root model.
func New(opts Options) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "institution name"
	search.CharLimit = 80
	search.SetValue(opts.Search)

	return Model{
		opts:       opts,
		screen:     model.ScreenRates,
		mode:       model.ModeNav,
		gState:     GStateIdle,
		search:     search,
		keys:       DefaultKeyMap(),
		searchKeys: DefaultSearchKeyMap(),
		prefs:      loadUIPreferences(opts.PrefsPath),
		now:        time.Now,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return loadDatasetCmd(dataset.Source{Path: m.opts.DataPath, DB: m.opts.DB})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle ctrl+c globally
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.mode == model.ModeInsert {
			return m.handleSearchInput(msg)
		}

		if key.Matches(msg, m.keys.Help) {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}

		return m.handleNavMode(msg)

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		log.WithError(msg.Err).Error("Command failed")
		return m, nil

	case model.DatasetLoadedMsg:
		m.rates = NewRatesModel(m.buildTable(msg.Entries), msg.Info)
		m.rates.ApplyPrefs(m.prefs.Rates)
		m.error = ""
		log.WithFields(log.Fields{
			"institutions": len(msg.Entries),
			"visible":      m.rates.Table().VisibleLen(),
			"category":     m.rates.Table().Category(),
		}).Info("Dataset loaded")
		return m, nil

	case model.ExportedMsg:
		m.error = ""
		m.info = fmt.Sprintf("Exported %s to %s", util.Plural(msg.Rows, "institution"), msg.Path)
		log.WithFields(log.Fields{
			"path": msg.Path,
			"rows": msg.Rows,
		}).Info("Exported html")
		return m, nil

	default:
		// The search box needs its blink messages
		if m.mode == model.ModeInsert {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m Model) buildTable(entries []model.InstitutionEntry) *ratetable.Table {
	table := ratetable.New(entries)
	if m.opts.Category != "" && m.opts.Category != ratetable.CategoryAll {
		table.SetCategory(m.opts.Category)
	}
	if term := m.search.Value(); term != "" {
		table.SetSearch(term)
	}
	if m.opts.SortKey != "" {
		dir := m.opts.SortDir
		if dir == "" {
			dir = ratetable.Asc
		}
		table.SortBy(m.opts.SortKey, dir)
	}
	return table
}

// View renders the model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	var content string
	var breadcrumbParts []string

	// Header: 2 lines, Footer: 2 lines, filter bar: 1 line
	contentHeight := m.height - 4

	switch m.screen {
	case model.ScreenRates:
		breadcrumbParts = []string{"Rates"}
		contentHeight--
		if m.rates != nil {
			content = m.rates.View(m.width, contentHeight)
		} else if m.error == "" {
			content = EmptyStateStyle.Render("Loading rates...")
		}
	case model.ScreenDetail:
		breadcrumbParts = []string{"Rates", "Detail"}
		if m.detail != nil {
			breadcrumbParts = []string{"Rates", m.detail.Name()}
			content = m.detail.View(m.width, contentHeight)
		}
	}

	header := renderHeader(breadcrumbParts, m.width)
	footer := RenderHelp(m.screen, m.mode, m.width)

	// Ensure content fills the available height to anchor footer at bottom
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		Render(content)

	parts := []string{header}
	if m.screen == model.ScreenRates {
		parts = append(parts, m.renderFilterBar())
	}
	if m.error != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderFilterBar() string {
	category := ratetable.CategoryAll
	if m.rates != nil {
		category = m.rates.Table().Category()
	} else if m.opts.Category != "" {
		category = m.opts.Category
	}

	search := m.search.View()
	if m.mode != model.ModeInsert && m.search.Value() == "" {
		search = HelpDescStyle.Render("/ search")
	}
	chip := ChipStyle.Render("‹ " + category.Label() + " ›")
	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 2).
		Render(search + "    " + LabelStyle.Render("Loan type:") + " " + chip)
}

func renderHeader(breadcrumbParts []string, width int) string {
	// Left side: app name + breadcrumb
	title := HeaderStyle.Render("ratedesk")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	dateStr := time.Now().Format("Mon 02 Jan")
	right := BreadcrumbStyle.Render(dateStr) + "  "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))

	headerContent := left + strings.Repeat(" ", padding) + right
	return TitleStyle.Width(width).Render(headerContent)
}

// handleSearchInput feeds keys to the search box; every edit re-filters.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.searchKeys.Done), key.Matches(msg, m.searchKeys.Cancel):
		m.mode = model.ModeNav
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.searchKeys.Clear):
		m.search.SetValue("")
		m.applySearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applySearch()
	return m, cmd
}

func (m *Model) applySearch() {
	if m.rates == nil {
		return
	}
	if term := m.search.Value(); term != m.rates.Table().Search() {
		m.rates.SetSearch(term)
	}
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle "gg" state machine
	if key.Matches(msg, m.keys.Top) {
		if m.gState == GStateIdle {
			m.gState = GStateFirstG
			return m, nil
		}
		m.gState = GStateIdle
		if m.screen == model.ScreenRates && m.rates != nil {
			m.rates.JumpToTop()
		}
		return m, nil
	}
	m.gState = GStateIdle

	if key.Matches(msg, m.keys.Export) && m.rates != nil {
		return m.export()
	}

	switch m.screen {
	case model.ScreenRates:
		return m.handleRatesNav(msg)
	case model.ScreenDetail:
		return m.handleDetailNav(msg)
	}
	return m, nil
}

func (m *Model) currentTable() tableController {
	if m.screen == model.ScreenRates && m.rates != nil {
		return m.rates
	}
	return nil
}

func (m *Model) persistCurrentTablePrefs() {
	if m.rates == nil {
		return
	}
	m.prefs.Rates = m.rates.Prefs()
	if err := saveUIPreferences(m.opts.PrefsPath, m.prefs); err != nil {
		log.WithError(err).Warn("Failed to save ui preferences")
	}
}

func (m Model) handleRatesNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Search) {
		m.mode = model.ModeInsert
		m.info = ""
		return m, m.search.Focus()
	}
	if m.rates == nil {
		return m, nil
	}

	if t := m.currentTable(); t != nil {
		switch {
		case key.Matches(msg, m.keys.NextColumn):
			t.NextColumn()
			m.persistCurrentTablePrefs()
			return m, nil
		case key.Matches(msg, m.keys.PrevColumn):
			t.PrevColumn()
			m.persistCurrentTablePrefs()
			return m, nil
		case key.Matches(msg, m.keys.ColumnJump):
			n, _ := strconv.Atoi(msg.String())
			if t.JumpToColumn(n) {
				m.info = fmt.Sprintf("Jumped to column %d", n)
				m.persistCurrentTablePrefs()
			} else {
				m.info = fmt.Sprintf("Column %d unavailable", n)
			}
			return m, nil
		case key.Matches(msg, m.keys.Sort):
			m.info = t.SortActiveColumn()
			return m, nil
		case key.Matches(msg, m.keys.HideColumn):
			if t.HideActiveColumn() {
				m.info = "Column hidden"
				m.persistCurrentTablePrefs()
			} else {
				m.info = "Cannot hide last visible column"
			}
			return m, nil
		case key.Matches(msg, m.keys.ShowColumns):
			t.ShowAllColumns()
			m.info = "All columns shown"
			m.persistCurrentTablePrefs()
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.NextCategory):
		c := m.rates.CycleCategory(1)
		m.info = "Loan type: " + c.Label()
	case key.Matches(msg, m.keys.PrevCategory):
		c := m.rates.CycleCategory(-1)
		m.info = "Loan type: " + c.Label()
	case key.Matches(msg, m.keys.Open):
		row, ok := m.rates.Selected()
		if !ok {
			return m, nil
		}
		table := m.rates.Table()
		m.detail = NewDetailModel(row, table.Entry(row), table.Headers())
		m.screen = model.ScreenDetail
		m.info = ""
	case key.Matches(msg, m.keys.Down):
		m.rates.MoveDown()
	case key.Matches(msg, m.keys.Up):
		m.rates.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		m.rates.JumpToBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.rates.HalfPageDown(m.height / 2)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.rates.HalfPageUp(m.height / 2)
	}
	return m, nil
}

func (m Model) handleDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
		m.screen = model.ScreenRates
		m.detail = nil
	}
	return m, nil
}

// export renders the page here so the command never touches the table.
func (m Model) export() (tea.Model, tea.Cmd) {
	path := m.opts.ExportPath
	if path == "" {
		path = "mortgage_rates.html"
	}

	var buf bytes.Buffer
	if err := render.HTML(&buf, m.rates.Table(), m.now()); err != nil {
		m.error = err.Error()
		return m, nil
	}
	m.info = "Exporting..."
	return m, exportCmd(path, buf.Bytes(), m.rates.Table().VisibleLen())
}

// Commands

func loadDatasetCmd(src dataset.Source) tea.Cmd {
	return func() tea.Msg {
		entries, info, err := dataset.Fetch(src)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.DatasetLoadedMsg{Entries: entries, Info: info}
	}
}

func exportCmd(path string, page []byte, rows int) tea.Cmd {
	return func() tea.Msg {
		if err := render.Save(path, page); err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.ExportedMsg{Path: path, Rows: rows}
	}
}
