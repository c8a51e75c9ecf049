// Package tui provides the interactive control surface for the trainer.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/ColonelBlimp/cwtrainer/internal/speech"
	"github.com/ColonelBlimp/cwtrainer/internal/trainer"
)

const (
	frequencyStep = 50.0 // Hz
	volumeStep    = 3.0  // dB
)

// Controller is the part of the scheduler the UI drives. *trainer.Scheduler
// implements it.
type Controller interface {
	Start() error
	Stop()
	Active() bool
	Session() uuid.UUID
	State() trainer.State
	Settings() trainer.Settings
	SetWPM(int) int
	SetRepetitions(int) int
	SetToneFrequency(float64) float64
	SetToneVolume(float64) float64
	SetLanguage(string) speech.Language
	SetAnnounce(bool) bool
}

type eventMsg trainer.Event

// eventsClosedMsg is delivered once the event channel has been closed.
type eventsClosedMsg struct{}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	charStyle    = lipgloss.NewStyle().Bold(true).Padding(1, 4).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#C89A3A"))
	patternStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea trainer UI.
type Model struct {
	ctrl   Controller
	events <-chan trainer.Event
	keys   keyMap
	help   help.Model

	char       rune
	pattern    string
	revealed   bool
	repetition int
	count      int
	err        error
	width      int
}

// NewModel constructs the UI. events carries scheduler events, see Events.
func NewModel(ctrl Controller, events <-chan trainer.Event) *Model {
	return &Model{
		ctrl:   ctrl,
		events: events,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

// Events returns a buffered event channel and an observer that feeds it.
// The observer drops events rather than block the scheduler when the UI
// falls behind.
func Events(size int) (chan trainer.Event, trainer.Observer) {
	ch := make(chan trainer.Event, size)
	return ch, func(e trainer.Event) {
		select {
		case ch <- e:
		default:
		}
	}
}

func waitForEvent(events <-chan trainer.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(e)
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return waitForEvent(m.events)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case eventMsg:
		m.handleEvent(trainer.Event(msg))
		return m, waitForEvent(m.events)
	case eventsClosedMsg:
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleEvent(e trainer.Event) {
	switch e.Kind {
	case trainer.EventCharacter:
		m.char = e.Char
		m.pattern = e.Pattern
		m.revealed = false
		m.repetition = 0
		m.count++
	case trainer.EventRepetition:
		m.repetition = e.Repetition
	case trainer.EventRevealed:
		m.revealed = true
	case trainer.EventStopped:
		m.revealed = true
		if e.Err != nil {
			m.err = e.Err
		}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	set := m.ctrl.Settings()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Faster):
		m.ctrl.SetWPM(set.WPM + 1)
	case key.Matches(msg, m.keys.Slower):
		m.ctrl.SetWPM(set.WPM - 1)
	case key.Matches(msg, m.keys.MoreReps):
		m.ctrl.SetRepetitions(set.Repetitions + 1)
	case key.Matches(msg, m.keys.LessReps):
		m.ctrl.SetRepetitions(set.Repetitions - 1)
	case key.Matches(msg, m.keys.Higher):
		m.ctrl.SetToneFrequency(set.Tone.FrequencyHz + frequencyStep)
	case key.Matches(msg, m.keys.Lower):
		m.ctrl.SetToneFrequency(set.Tone.FrequencyHz - frequencyStep)
	case key.Matches(msg, m.keys.Louder):
		m.ctrl.SetToneVolume(set.Tone.VolumeDb + volumeStep)
	case key.Matches(msg, m.keys.Quieter):
		m.ctrl.SetToneVolume(set.Tone.VolumeDb - volumeStep)
	case key.Matches(msg, m.keys.Language):
		m.ctrl.SetLanguage(string(set.Language.Next()))
	case key.Matches(msg, m.keys.Announce):
		m.ctrl.SetAnnounce(!set.Announce)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) toggle() {
	if m.ctrl.Active() {
		m.ctrl.Stop()
		return
	}
	m.err = m.ctrl.Start()
	if m.err == nil {
		m.count = 0
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	set := m.ctrl.Settings()

	b.WriteString(titleStyle.Render("CW Trainer"))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render(m.ctrl.State().String()))
	if id := m.ctrl.Session(); id != uuid.Nil {
		b.WriteString(labelStyle.Render("  session " + id.String()[:8]))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderSettings(set))
	b.WriteString("\n\n")
	b.WriteString(m.renderCharacter(set))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderSettings(set trainer.Settings) string {
	announce := "off"
	if set.Announce {
		announce = "on"
	}
	fields := []struct{ label, value string }{
		{"WPM", fmt.Sprintf("%d", set.WPM)},
		{"Reps", fmt.Sprintf("%d", set.Repetitions)},
		{"Tone", fmt.Sprintf("%.0f Hz", set.Tone.FrequencyHz)},
		{"Volume", fmt.Sprintf("%.0f dB", set.Tone.VolumeDb)},
		{"Language", set.Language.String()},
		{"Announce", announce},
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = labelStyle.Render(f.label+" ") + valueStyle.Render(f.value)
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderCharacter(set trainer.Settings) string {
	if m.char == 0 {
		return labelStyle.Render("Press space to start")
	}
	shown := "?"
	pattern := ""
	if m.revealed {
		shown = string(m.char)
		pattern = patternStyle.Render(m.pattern)
	}
	status := labelStyle.Render(fmt.Sprintf("repetition %d/%d  character %d", m.repetition, set.Repetitions, m.count))
	return lipgloss.JoinHorizontal(lipgloss.Center, charStyle.Render(shown), "  ", pattern) + "\n" + status
}
