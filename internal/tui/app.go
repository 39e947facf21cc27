package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/framecannon/internal/clips"
	"github.com/kikiluvv/framecannon/internal/editor"
	"github.com/kikiluvv/framecannon/internal/render"
	"github.com/kikiluvv/framecannon/internal/surface"
	"github.com/kikiluvv/framecannon/pkg/util"
)

// HeaderRows is the number of rows drawn above the timeline.
const HeaderRows = 1

// MarginCols is the layer cursor column left of the gutter.
const MarginCols = 1

// DefaultCellWidth is how many timeline pixels one terminal column covers.
const DefaultCellWidth = 10.0

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f4f4f5")).
			Background(lipgloss.Color("#7c3aed")).
			Bold(true).
			Padding(0, 1)

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22d3ee")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c084fc")).
			Bold(true)
)

const helpText = "space play · +/- zoom · ←/→ scroll · ↑/↓ layer · l lock · v show · s split · p placeholder · r regenerate · x delete · ctrl+s save · q quit"

// Options configure the editor UI.
type Options struct {
	// Path is where ctrl+s writes the project. Empty disables saving.
	Path      string
	CellWidth float64
	FPS       int
	Prompt    string
}

type frameMsg time.Time

type savedMsg struct{ err error }

// Model is the bubbletea model driving one editor session.
type Model struct {
	session   *editor.Session
	logger    zerolog.Logger
	path      string
	prompt    string
	cellWidth float64
	interval  time.Duration

	width, height int
	last          time.Time
	pressed       bool
	cursor        int
	status        string

	// input collects a placeholder prompt while prompting is set
	input     textinput.Model
	prompting bool
	promptAt  float64
}

// New builds the model. The session keeps ownership of all editing state.
func New(logger zerolog.Logger, session *editor.Session, opts Options) Model {
	if opts.CellWidth <= 0 {
		opts.CellWidth = DefaultCellWidth
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Prompt == "" {
		opts.Prompt = "untitled scene"
	}
	ti := textinput.New()
	ti.Prompt = "prompt> "
	ti.PromptStyle = promptStyle
	ti.CharLimit = 200
	ti.Width = 60

	return Model{
		input:     ti,
		session:   session,
		logger:    logger.With().Str("component", "tui").Logger(),
		path:      opts.Path,
		prompt:    opts.Prompt,
		cellWidth: opts.CellWidth,
		interval:  time.Second / time.Duration(opts.FPS),
	}
}

// Run opens the editor full screen and blocks until the user quits.
func Run(logger zerolog.Logger, session *editor.Session, opts Options) error {
	p := tea.NewProgram(New(logger, session, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.frame()
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
		cols := max(msg.Width-MarginCols-render.GutterWidth, 1)
		m.session.Surface().SetViewportWidth(float64(cols) * m.cellWidth)
		return m, nil

	case frameMsg:
		now := time.Time(msg)
		if !m.last.IsZero() {
			m.session.Tick(now.Sub(m.last).Seconds())
		}
		m.last = now
		return m, m.frame()

	case savedMsg:
		if msg.err != nil {
			m.logger.Error().Err(msg.err).Str("path", m.path).Msg("save failed")
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.status = "saved " + m.path
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompting {
		return m.handlePrompt(msg)
	}
	s := m.session.Surface()
	lanes := s.Lanes()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		s.TogglePlay()
	case "+", "=":
		s.ZoomIn()
	case "-", "_":
		s.ZoomOut()
	case "left":
		s.ScrollBy(-8 * m.cellWidth)
	case "right":
		s.ScrollBy(8 * m.cellWidth)
	case "home":
		m.session.Seek(0)
	case "end":
		m.session.Seek(m.session.Duration())
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(lanes)-1 {
			m.cursor++
		}
	case "l":
		if m.cursor < len(lanes) {
			m.session.Registry().ToggleLock(lanes[m.cursor].Layer.ID)
		}
	case "v":
		if m.cursor < len(lanes) {
			m.session.Registry().ToggleVisibility(lanes[m.cursor].Layer.ID)
		}
	case "s":
		if !s.SplitAtPlayhead() {
			m.status = "nothing to split here"
		}
	case "p":
		m.prompting = true
		m.promptAt = m.session.CurrentTime()
		m.input.SetValue(m.prompt)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "r":
		if id, ok := s.Selected(); !ok || !s.Regenerate(id) {
			m.status = "select a placeholder to regenerate"
		} else {
			m.status = "generating…"
		}
	case "x", "delete":
		if id, ok := s.Selected(); ok && m.session.RemoveClip(id) {
			s.ClearSelection()
		}
	case "esc":
		s.Cancel()
		m.pressed = false
		s.ClearSelection()
	case "ctrl+s":
		if m.path == "" {
			m.status = "no project path"
			return m, nil
		}
		session, path := m.session, m.path
		return m, func() tea.Msg { return savedMsg{err: session.Save(path)} }
	}
	return m, nil
}

func (m Model) handlePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.prompting = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.prompting = false
		m.input.Blur()
		if v := strings.TrimSpace(m.input.Value()); v != "" {
			m.prompt = v
		}
		c, err := m.session.InsertPlaceholder(m.prompt, m.promptAt)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.session.Surface().Select(c.ID)
		m.status = "placeholder inserted"
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// pointer maps a terminal cell to viewport pixels. It reports false for the
// gutter and the rows outside the timeline.
func (m Model) pointer(col, row int) (x, y float64, lane int, ok bool) {
	col -= MarginCols
	x = float64(col-render.GutterWidth)*m.cellWidth + m.cellWidth/2
	r := row - HeaderRows
	if r < 0 {
		return 0, 0, -1, false
	}
	if r < render.RulerRows {
		return x, -1, -1, col >= render.GutterWidth
	}
	lanes := m.session.Surface().Lanes()
	lane = r - render.RulerRows
	if lane >= len(lanes) {
		return 0, 0, -1, false
	}
	return x, lanes[lane].Y + 1, lane, col >= render.GutterWidth
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	s := m.session.Surface()
	x, y, lane, inside := m.pointer(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if msg.Ctrl {
				s.ZoomIn()
			} else {
				s.ScrollBy(-4 * m.cellWidth)
			}
			return
		case tea.MouseButtonWheelDown:
			if msg.Ctrl {
				s.ZoomOut()
			} else {
				s.ScrollBy(4 * m.cellWidth)
			}
			return
		case tea.MouseButtonLeft:
		default:
			return
		}
		if !inside {
			if lane >= 0 {
				m.cursor = lane
			}
			return
		}
		m.pressed = true
		if y >= 0 && !s.PointerDownWithin(x, y, m.cellWidth) {
			s.ClearSelection()
		}

	case tea.MouseActionMotion:
		if m.pressed {
			s.PointerMove(x)
		}

	case tea.MouseActionRelease:
		if !m.pressed {
			return
		}
		m.pressed = false
		if s.Mode() != surface.ModeIdle && s.PointerUp(x) {
			return
		}
		s.Click(x)
	}
}

func (m Model) View() string {
	s := m.session.Surface()
	var b strings.Builder

	clock := clockStyle.Render(fmt.Sprintf("%s / %s",
		util.FormatPrecise(m.session.CurrentTime()),
		util.FormatPrecise(m.session.Duration())))
	state := "paused"
	if m.session.Playing() {
		state = "playing"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render(m.session.Name()), " ", clock, " ",
		statusStyle.Render(fmt.Sprintf("%s · zoom %.2fx · %s", state, s.Zoom(), s.Mode())))
	b.WriteString(header)
	b.WriteString("\n")

	frame := render.FrameOf(s, m.cellWidth, m.session.RegenerateAvailable(), m.session.Peaks())
	timeline := render.Timeline(frame)
	lines := strings.Split(timeline, "\n")
	for i := range lines {
		mark := " "
		if i-render.RulerRows == m.cursor {
			mark = cursorStyle.Render("›")
		}
		lines[i] = mark + lines[i]
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")

	if m.prompting {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(m.selection()))
	if m.status != "" {
		b.WriteString("  ")
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText))
	return b.String()
}

func (m Model) selection() string {
	id, ok := m.session.Surface().Selected()
	if !ok {
		return "no selection"
	}
	c, ok := m.session.Clip(id)
	if !ok {
		return "no selection"
	}
	title := c.Title
	if title == "" {
		title = string(c.Type())
	}
	desc := fmt.Sprintf("%s · %s → %s", title, util.FormatPrecise(c.Start), util.FormatPrecise(c.End()))
	if c.Placeholder {
		desc += " · placeholder"
	}
	if c.PendingGeneration {
		desc += " · pending"
	}
	if _, ok := c.Content.(clips.Image); ok && c.MaxDuration > 0 {
		desc += fmt.Sprintf(" · max %.1fs", c.MaxDuration)
	}
	return desc
}
