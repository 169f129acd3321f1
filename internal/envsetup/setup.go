// envsetup provides a lightweight .env configuration wizard.
// It runs from `web setup` or on first web startup when no .env file exists,
// collecting the database URL, the romanizer, and any LLM credentials.
package envsetup

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultDatabaseURL = "./olchiki.db"

type step int

const (
	stepWelcome step = iota
	stepDatabase
	stepRomanizer
	stepLLMKey
	stepAdminKey
	stepConfirm
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type model struct {
	step        step
	path        string
	databaseURL string
	romanizer   string
	llmAPIKey   string
	adminAPIKey string
	textInput   textinput.Model
	saved       bool
	err         error
}

func New() model {
	return newModel(".env")
}

func newModel(path string) model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	return model{
		step:      stepWelcome,
		path:      path,
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleEnter()
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// next clears the input and moves to s, masking the input on secret steps.
func (m model) next(s step) model {
	m.step = s
	m.textInput.SetValue("")
	if s == stepLLMKey || s == stepAdminKey {
		m.textInput.EchoMode = textinput.EchoPassword
	} else {
		m.textInput.EchoMode = textinput.EchoNormal
	}
	return m
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	m.err = nil
	value := strings.TrimSpace(m.textInput.Value())

	switch m.step {
	case stepWelcome:
		m = m.next(stepDatabase)

	case stepDatabase:
		if value == "" {
			value = defaultDatabaseURL
		}
		m.databaseURL = value
		m = m.next(stepRomanizer)

	case stepRomanizer:
		switch strings.ToLower(value) {
		case "", "1", "rule":
			m.romanizer = "rule"
			m = m.next(stepAdminKey)
		case "2", "anthropic":
			m.romanizer = "anthropic"
			m = m.next(stepLLMKey)
		case "3", "google":
			m.romanizer = "google"
			m = m.next(stepLLMKey)
		default:
			m.err = errors.New("Please enter 1, 2, or 3")
			m.textInput.SetValue("")
		}

	case stepLLMKey:
		if value == "" {
			m.err = errors.New("API key is required")
			return m, nil
		}
		m.llmAPIKey = value
		m = m.next(stepAdminKey)

	case stepAdminKey:
		m.adminAPIKey = value
		m = m.next(stepConfirm)

	case stepConfirm:
		switch strings.ToLower(value) {
		case "", "y", "yes":
			if err := m.writeEnvFile(); err != nil {
				m.err = err
				return m, nil
			}
			m.saved = true
			return m, tea.Quit
		case "n", "no":
			m = newModel(m.path)
		}
	}

	return m, nil
}

// DefaultLLMModel is the model written to .env for an LLM romanizer.
func DefaultLLMModel(provider string) string {
	if provider == "google" {
		return "gemini-2.0-flash"
	}
	return "claude-sonnet-4-5-20250929"
}

func (m model) envContent() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DATABASE_URL=%s\n", m.databaseURL)
	fmt.Fprintf(&b, "ROMANIZER=%s\n", m.romanizer)
	switch m.romanizer {
	case "anthropic":
		fmt.Fprintf(&b, "LLM_MODEL=%s\nANTHROPIC_API_KEY=%s\n", DefaultLLMModel(m.romanizer), m.llmAPIKey)
	case "google":
		fmt.Fprintf(&b, "LLM_MODEL=%s\nGOOGLE_API_KEY=%s\n", DefaultLLMModel(m.romanizer), m.llmAPIKey)
	}
	if m.adminAPIKey != "" {
		fmt.Fprintf(&b, "ADMIN_API_KEY=%s\n", m.adminAPIKey)
	}
	return b.String()
}

func (m model) writeEnvFile() error {
	if err := os.WriteFile(m.path, []byte(m.envContent()), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", m.path, err)
	}
	return nil
}

func (m model) View() string {
	var s strings.Builder

	switch m.step {
	case stepWelcome:
		s.WriteString(titleStyle.Render("Ol Chiki - Env Setup"))
		s.WriteString("\n\n")
		s.WriteString("This wizard will help you configure the transliteration service.\n")
		s.WriteString("You'll choose:\n\n")
		s.WriteString("  - Where batch history is stored (SQLite file or PostgreSQL URL)\n")
		s.WriteString("  - How native Indic script is romanized\n")
		s.WriteString("  - An optional admin API key for batch history\n")
		s.WriteString("\n")
		s.WriteString(dimStyle.Render("Press Enter to continue, Ctrl+C to exit"))

	case stepDatabase:
		s.WriteString(titleStyle.Render("Step 1: Database"))
		s.WriteString("\n\n")
		s.WriteString("Enter a SQLite file path or a postgres:// URL.\n")
		s.WriteString(dimStyle.Render("Leave empty for "+defaultDatabaseURL) + "\n\n")
		s.WriteString(labelStyle.Render("Database URL:"))

	case stepRomanizer:
		s.WriteString(titleStyle.Render("Step 2: Romanizer"))
		s.WriteString("\n\n")
		s.WriteString("How should native script be romanized before conversion?\n\n")
		s.WriteString("  1. Built-in rules (no API key needed)\n")
		s.WriteString("  2. Anthropic (Claude)\n")
		s.WriteString("  3. Google (Gemini)\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Enter 1, 2, or 3:"))

	case stepLLMKey:
		s.WriteString(titleStyle.Render("Step 3: LLM API Key"))
		s.WriteString("\n\n")
		if m.romanizer == "anthropic" {
			s.WriteString("Create a key at " + linkStyle.Render("https://console.anthropic.com") + "\n")
		} else {
			s.WriteString("Create a key at " + linkStyle.Render("https://aistudio.google.com/apikey") + "\n")
		}
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Paste your API key here:"))

	case stepAdminKey:
		s.WriteString(titleStyle.Render("Admin API Key"))
		s.WriteString("\n\n")
		s.WriteString("Requests to /api/v1/batches must send this value in X-API-Key.\n")
		s.WriteString(dimStyle.Render("Leave empty to disable batch history endpoints") + "\n\n")
		s.WriteString(labelStyle.Render("Admin API key:"))

	case stepConfirm:
		s.WriteString(titleStyle.Render("Configuration Complete"))
		s.WriteString("\n\n")
		s.WriteString("  Database:  " + successStyle.Render(m.databaseURL) + "\n")
		s.WriteString("  Romanizer: " + successStyle.Render(m.romanizer) + "\n")
		if m.llmAPIKey != "" {
			s.WriteString("  LLM Key:   " + successStyle.Render(maskToken(m.llmAPIKey)) + "\n")
		}
		if m.adminAPIKey != "" {
			s.WriteString("  Admin Key: " + successStyle.Render(maskToken(m.adminAPIKey)) + "\n")
		}
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Save this configuration to " + m.path + "? [Y/n]:"))
	}

	if m.step != stepWelcome {
		s.WriteString("\n")
		s.WriteString(m.textInput.View())
	}
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}

	s.WriteString("\n")
	return s.String()
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// Run starts the setup wizard and returns true if setup was completed successfully
func Run() (bool, error) {
	p := tea.NewProgram(New())
	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m := finalModel.(model)
	return m.saved, nil
}

// NeedsSetup checks if .env file exists
func NeedsSetup() bool {
	_, err := os.Stat(".env")
	return os.IsNotExist(err)
}
