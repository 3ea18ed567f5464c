package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ratedesk/internal/ratetable"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type OnboardingSettings struct {
	Completed bool   `json:"completed"`
	DataPath  string `json:"data_path"`
	Category  string `json:"category"`
}

func onboardingPath(configDir string) string {
	return filepath.Join(configDir, "onboarding.json")
}

func loadOnboardingSettings(configDir string) (OnboardingSettings, error) {
	path := onboardingPath(configDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return OnboardingSettings{}, nil
		}
		return OnboardingSettings{}, err
	}

	var settings OnboardingSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return OnboardingSettings{}, err
	}
	return settings, nil
}

func saveOnboardingSettings(configDir string, settings OnboardingSettings) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(onboardingPath(configDir), data, 0644)
}

// shouldRunOnboarding reports whether there is nothing to show without setup:
// no dataset configured, no cache yet and not a headless export.
func shouldRunOnboarding(settings OnboardingSettings, config *Config) bool {
	if settings.Completed || config.DataPath != "" || config.Export != "" {
		return false
	}
	if _, err := os.Stat(config.DBPath); err == nil {
		return false
	}
	return true
}

func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type onboardingStep int

const (
	stepData onboardingStep = iota
	stepCategory
	stepDone
)

type onboardingModel struct {
	step      onboardingStep
	dataInput textinput.Model
	category  int
	settings  OnboardingSettings
	status    string
	warning   string
	width     int
	height    int
}

var (
	obColorSurface = lipgloss.Color("#2A332C")
	obColorMuted   = lipgloss.Color("#7E8C80")
	obColorText    = lipgloss.Color("#D6E0D3")
	obColorAccent  = lipgloss.Color("#8FA082")
	obColorDanger  = lipgloss.Color("#f38ba8")

	obTitleStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obHeaderStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabsStyle = lipgloss.NewStyle().
			Padding(0, 2).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabInactive = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 2)

	obTabActive = lipgloss.NewStyle().
			Foreground(obColorText).
			Bold(true).
			Underline(true).
			Padding(0, 2)

	obPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorMuted).
			Padding(1, 2)

	obInputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorAccent).
			Padding(0, 1)

	obLabelStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obMutedStyle = lipgloss.NewStyle().
			Foreground(obColorMuted)

	obOptionStyle = lipgloss.NewStyle().
			Foreground(obColorText)

	obOptionSelected = lipgloss.NewStyle().
				Foreground(obColorAccent).
				Background(obColorSurface).
				Bold(true)

	obWarnStyle = lipgloss.NewStyle().
			Foreground(obColorDanger)

	obFooterStyle = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(obColorMuted)
)

func newOnboardingModel() onboardingModel {
	in := textinput.New()
	in.Placeholder = "~/Downloads/mortgage_rates.csv"
	in.CharLimit = 512
	in.Prompt = "file> "
	in.TextStyle = lipgloss.NewStyle().Foreground(obColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(obColorMuted)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(obColorText).Background(obColorAccent)
	in.Focus()

	return onboardingModel{
		step:      stepData,
		dataInput: in,
		settings:  OnboardingSettings{Completed: true},
	}
}

func (m onboardingModel) Init() tea.Cmd { return textinput.Blink }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch m.step {
		case stepData:
			switch msg.String() {
			case "enter":
				path := expandHome(strings.TrimSpace(m.dataInput.Value()))
				if path == "" {
					m.warning = "Enter a file path, or press esc to skip."
					return m, nil
				}
				if _, err := os.Stat(path); err != nil {
					m.warning = fmt.Sprintf("Cannot read %s", path)
					return m, nil
				}
				m.settings.DataPath = path
				m.warning = ""
				m.step = stepCategory
				return m, nil
			case "esc":
				m.warning = ""
				m.step = stepCategory
				return m, nil
			case "ctrl+c":
				m.status = "Setup canceled. Pass -data to load rates."
				m.step = stepDone
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.dataInput, cmd = m.dataInput.Update(msg)
			return m, cmd
		case stepCategory:
			switch msg.String() {
			case "up", "k":
				if m.category > 0 {
					m.category--
				}
				return m, nil
			case "down", "j":
				if m.category < len(ratetable.Categories)-1 {
					m.category++
				}
				return m, nil
			case "enter":
				m.settings.Category = string(ratetable.Categories[m.category])
				m.status = "Setup saved."
				if m.settings.DataPath == "" {
					m.status = "Setup saved. No rates file yet: pass -data to import one."
				}
				m.step = stepDone
				return m, tea.Quit
			case "esc", "h":
				m.step = stepData
				return m, nil
			case "ctrl+c", "q":
				m.status = "Setup canceled. Pass -data to load rates."
				m.step = stepDone
				return m, tea.Quit
			}
			return m, nil
		}
	}
	return m, nil
}

func (m onboardingModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	header := m.renderHeader(width)
	tabs := m.renderTabs(width)
	footer := m.renderFooter(width)

	contentHeight := max(8, height-6)
	content := m.renderContent(width, contentHeight)
	ui := lipgloss.JoinVertical(lipgloss.Left, header, tabs, content, footer)

	return lipgloss.NewStyle().
		Foreground(obColorText).
		Width(width).
		Height(height).
		Render(ui)
}

func (m onboardingModel) renderHeader(width int) string {
	left := "  " + obTitleStyle.Render("ratedesk") + " " + obMutedStyle.Render("› Setup")
	right := obMutedStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return obHeaderStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m onboardingModel) renderTabs(width int) string {
	dataTab := obTabInactive.Render("Rates File")
	categoryTab := obTabInactive.Render("Loan Type")
	if m.step == stepData {
		dataTab = obTabActive.Render("Rates File")
	}
	if m.step == stepCategory {
		categoryTab = obTabActive.Render("Loan Type")
	}
	return obTabsStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Left, "  ", dataTab, categoryTab))
}

func (m onboardingModel) renderFooter(width int) string {
	switch m.step {
	case stepData:
		return obFooterStyle.Width(width).Render("enter continue  esc skip  ctrl+c cancel")
	case stepCategory:
		return obFooterStyle.Width(width).Render("↑↓/jk to navigate  enter to confirm  esc back  q cancel")
	default:
		return obFooterStyle.Width(width).Render("Setup complete")
	}
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}

	var body string
	switch m.step {
	case stepData:
		input := obInputStyle.Width(max(30, cardWidth-14)).Render(m.dataInput.View())
		lines := []string{
			obLabelStyle.Render("Where is your mortgage rates file?"),
			"",
			obMutedStyle.Render("The scraper writes a CSV with CreditUnion, Link and Rates columns."),
			obMutedStyle.Render("A JSON export of the rates page works too."),
			"",
			input,
		}
		if m.warning != "" {
			lines = append(lines, "", obWarnStyle.Render(m.warning))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	case stepCategory:
		lines := []string{obLabelStyle.Render("Which loan type should open by default?"), ""}
		for i, c := range ratetable.Categories {
			if i == m.category {
				lines = append(lines, "  "+obOptionSelected.Render("→ "+c.Label()))
			} else {
				lines = append(lines, "    "+obOptionStyle.Render(c.Label()))
			}
		}
		lines = append(lines, "", obMutedStyle.Render("You can change this later in ~/.ratedesk/onboarding.json"))
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	default:
		msg := obMutedStyle.Render(m.status)
		if strings.Contains(m.status, "-data") {
			msg = obWarnStyle.Render(m.status)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, obLabelStyle.Render("Onboarding Complete"), "", msg)
	}

	card := obPanelStyle.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func runOnboarding(configDir string) (OnboardingSettings, error) {
	model := newOnboardingModel()
	prog := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return OnboardingSettings{}, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return OnboardingSettings{}, fmt.Errorf("unexpected onboarding model type")
	}
	if err := saveOnboardingSettings(configDir, m.settings); err != nil {
		return OnboardingSettings{}, err
	}
	return m.settings, nil
}
