package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/minimize"
)

const (
	historySize     = 200
	maxStepsPerTick = 64
)

// TickMsg advances the minimizer by one frame.
type TickMsg time.Time

// Model is the live view of a minimization. Only the first two coordinates
// of each particle are drawn.
type Model struct {
	minimizer minimize.Minimizer
	initial   dynamo.State
	sides     []float64
	dim       int
	title     string

	state        *minimize.State
	energyHist   []float64
	stepsPerTick int
	maxSteps     int
	running      bool
	showHelp     bool
	err          error
	theme        Theme

	width, height int
}

// Option configures a Model.
type Option func(*Model)

// WithTheme selects the color theme by name.
func WithTheme(name string) Option {
	return func(m *Model) { m.theme = GetTheme(name) }
}

// WithStepsPerTick sets how many steps run per frame.
func WithStepsPerTick(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.stepsPerTick = n
		}
	}
}

// WithMaxSteps pauses the view once n steps have run. Zero means no limit.
func WithMaxSteps(n int) Option {
	return func(m *Model) { m.maxSteps = n }
}

// NewModel initializes mz at R0. sides holds the box lengths used to map
// positions onto the canvas.
func NewModel(mz minimize.Minimizer, R0 dynamo.State, sides []float64, title string, opts ...Option) (*Model, error) {
	if len(sides) < 2 {
		return nil, dynamo.Invalidf("live view needs at least 2 dimensions, got %d", len(sides))
	}
	st, err := mz.Init(R0)
	if err != nil {
		return nil, err
	}
	m := &Model{
		minimizer:    mz,
		initial:      R0.Clone(),
		sides:        append([]float64(nil), sides...),
		dim:          len(sides),
		title:        title,
		state:        st,
		stepsPerTick: 1,
		running:      true,
		theme:        ThemeCyberpunk,
		width:        100,
		height:       30,
	}
	for _, o := range opts {
		o(m)
	}
	m.energyHist = append(m.energyHist, st.Energy)
	return m, nil
}

// State returns the current minimizer state.
func (m *Model) State() *minimize.State { return m.state }

// Err returns the error that stopped the run, if any.
func (m *Model) Err() error { return m.err }

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "n":
			if !m.running {
				m.advance(1)
			}
		case "+", "=":
			if m.stepsPerTick < maxStepsPerTick {
				m.stepsPerTick *= 2
			}
		case "-", "_":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		case "r":
			m.reset()
		case "t":
			m.theme = m.theme.next()
		case "?":
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		if m.running {
			m.advance(m.stepsPerTick)
		}
		return m, tick()
	}

	return m, nil
}

// advance applies up to n steps, stopping on the first error.
func (m *Model) advance(n int) {
	for i := 0; i < n; i++ {
		if m.maxSteps > 0 && m.state.Step >= m.maxSteps {
			m.running = false
			return
		}
		if err := m.minimizer.Apply(m.state); err != nil {
			m.err = err
			m.running = false
			return
		}
		m.energyHist = append(m.energyHist, m.state.Energy)
		if len(m.energyHist) > historySize {
			m.energyHist = m.energyHist[1:]
		}
	}
}

func (m *Model) reset() {
	st, err := m.minimizer.Init(m.initial)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.state = st
	m.err = nil
	m.energyHist = append(m.energyHist[:0], st.Energy)
}

// canvasSize returns the braille canvas size in cells, keeping the box
// aspect ratio. A cell covers 2x4 dots and is roughly twice as tall as wide.
func (m *Model) canvasSize() (int, int) {
	w := m.width - 52
	if w < 20 {
		w = 20
	}
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	aspect := m.sides[1] / m.sides[0]
	if want := int(float64(w) * aspect / 2); want < h {
		h = want
	} else {
		w = int(float64(h) * 2 / aspect)
	}
	if w < 4 {
		w = 4
	}
	if h < 2 {
		h = 2
	}
	return w, h
}

func (m *Model) drawParticles() string {
	w, h := m.canvasSize()
	c := NewCanvas(w, h)
	c.Frame()
	R := m.state.Position
	for i := 0; i+m.dim <= len(R); i += m.dim {
		c.Plot(R[i], R[i+1], m.sides[0], m.sides[1])
	}
	return c.String()
}

func (m *Model) View() string {
	var s strings.Builder

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = "FAILED"
	case !m.running:
		status = "PAUSED"
	}
	st := m.state
	fmax := st.Force.MaxNorm(m.dim)

	s.WriteString(m.theme.header().Render(strings.ToUpper(m.title)))
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Status") + m.theme.status(m.running, m.err != nil).Render(status) + "\n")
	s.WriteString(labelStyle.Render("Minimizer") + valueStyle.Render(m.minimizer.Name()) + "\n")
	s.WriteString(labelStyle.Render("Particles") + valueStyle.Render(fmt.Sprintf("%d", st.Position.Count(m.dim))) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d", st.Step)) + "\n")
	if m.maxSteps > 0 {
		s.WriteString(labelStyle.Render("Progress") + valueStyle.Render(ProgressBar(float64(st.Step)/float64(m.maxSteps), 20)) + "\n")
	}
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.6g", st.Energy)) + "\n")
	s.WriteString(labelStyle.Render("Max Force") + valueStyle.Render(fmt.Sprintf("%.6g", fmax)) + "\n")
	s.WriteString(labelStyle.Render("dt") + valueStyle.Render(fmt.Sprintf("%.4g", st.Dt)) + "\n")
	s.WriteString(labelStyle.Render("alpha") + valueStyle.Render(fmt.Sprintf("%.4g", st.Alpha)) + "\n")
	s.WriteString(labelStyle.Render("Resets") + valueStyle.Render(fmt.Sprintf("%d", st.Resets)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%d steps/frame", m.stepsPerTick)) + "\n")

	if len(m.energyHist) > 1 {
		graph := asciigraph.Plot(m.energyHist,
			asciigraph.Height(6),
			asciigraph.Width(30),
			asciigraph.Caption("Energy"),
		)
		s.WriteString(m.theme.graph().Render(graph) + "\n")
	}

	if m.err != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Error).Width(40).Render(m.err.Error()) + "\n")
	}

	if m.showHelp {
		s.WriteString(helpStyle.Render("space pause • n step • +/- speed • r reset • t theme • q quit"))
	} else {
		s.WriteString(helpStyle.Render("? help"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.canvas().Render(m.drawParticles()),
		statsStyle.Render(s.String()),
	)
}
