package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dictator/pkg/dictation"
	"dictator/pkg/language"
)

var (
	colorRed   = lipgloss.Color("#FF0000")
	colorCyan  = lipgloss.Color("#00FFFF")
	colorGray  = lipgloss.Color("#666666")
	colorWhite = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	recordingStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	overlayStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// Messages sent by teaPresenter from the dictation goroutine.
type (
	stateMsg    dictation.State
	overlayMsg  struct{ text string }
	languageMsg language.Language
	stoppedMsg  struct{ err error }
)

type poster interface {
	Post(dictation.Message) error
}

type model struct {
	svc      poster
	provider string
	state    dictation.State
	lang     language.Language
	overlay  string
	err      string
	quitting bool
}

func newModel(svc poster, provider string, lang language.Language) model {
	return model{svc: svc, provider: provider, lang: lang}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case stateMsg:
		m.state = dictation.State(msg)
	case overlayMsg:
		m.overlay = msg.text
	case languageMsg:
		m.lang = language.Language(msg)
	case stoppedMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case " ":
		if m.state == dictation.Recording {
			m.post(dictation.HotkeyUp{})
		} else {
			m.post(dictation.HotkeyDown{})
		}
	case "l":
		next := language.English
		if m.lang == language.English {
			next = language.Spanish
		}
		m.post(dictation.SelectLanguage{Language: next})
	case "d":
		m.post(dictation.SetDefault{})
	case "q", "ctrl+c":
		m.post(dictation.Exit{})
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) post(msg dictation.Message) {
	if err := m.svc.Post(msg); err != nil {
		m.err = err.Error()
		return
	}
	m.err = ""
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("dictator"))
	b.WriteString("  ")
	b.WriteString(helpStyle.Render(m.provider + " · " + m.lang.Title()))
	b.WriteString("\n\n")

	switch m.state {
	case dictation.Recording:
		b.WriteString(recordingStyle.Render("● recording"))
	case dictation.Transcribing:
		b.WriteString(idleStyle.Render("○ transcribing..."))
	default:
		b.WriteString(idleStyle.Render("○ idle"))
	}
	b.WriteString("\n")

	if m.overlay != "" {
		b.WriteString("\n")
		b.WriteString(overlayStyle.Render(m.overlay))
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(recordingStyle.Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space: start/stop  l: language  d: set default  q: quit"))
	b.WriteString("\n")
	return b.String()
}

// teaPresenter forwards dictation display updates into the program.
type teaPresenter struct {
	p *tea.Program
}

var _ dictation.Presenter = (*teaPresenter)(nil)

func (t *teaPresenter) ShowState(s dictation.State)         { t.p.Send(stateMsg(s)) }
func (t *teaPresenter) ShowMessage(text string)             { t.p.Send(overlayMsg{text: text}) }
func (t *teaPresenter) HideMessage()                        { t.p.Send(overlayMsg{}) }
func (t *teaPresenter) ShowLanguage(lang language.Language) { t.p.Send(languageMsg(lang)) }
