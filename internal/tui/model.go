package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/plasmagen/internal/evolve"
	"github.com/san-kum/plasmagen/internal/session"
)

type state int

const (
	stateWaiting state = iota
	stateRating
	stateDone
)

type generationMsg session.Generation

type finishedMsg struct{ text string }

type tickMsg time.Time

type model struct {
	state   state
	gen     session.Generation
	ratings []evolve.Rating
	cursor  int
	start   time.Time
	now     time.Time
	status  string

	actions chan<- session.Action
	fps     float64
	columns int
	width   int
	height  int
}

func newModel(actions chan<- session.Action, fps float64) model {
	if fps <= 0 {
		fps = 12
	}
	return model{
		state:   stateWaiting,
		status:  "rendering generation 0",
		actions: actions,
		fps:     fps,
		columns: 3,
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd { return m.tick() }

func (m model) tick() tea.Cmd {
	return tea.Tick(time.Duration(float64(time.Second)/m.fps), func(t time.Time) tea.Msg { return tickMsg(t) })
}

// emit delivers an action to the session without blocking the UI loop.
func (m model) emit(a session.Action) tea.Cmd {
	ch := m.actions
	return func() tea.Msg {
		ch <- a
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.columns = max(1, msg.Width/(m.cardWidth()+1))
		return m, nil
	case generationMsg:
		m.gen = session.Generation(msg)
		m.ratings = make([]evolve.Rating, len(m.gen.Genomes))
		m.cursor = min(m.cursor, max(0, len(m.ratings)-1))
		m.start = time.Now()
		m.now = m.start
		m.state = stateRating
		m.status = fmt.Sprintf("generation %d", m.gen.Number)
		if m.gen.Replaced > 0 {
			m.status += fmt.Sprintf("  (%d respawned)", m.gen.Replaced)
		}
		return m, nil
	case finishedMsg:
		m.state = stateDone
		m.status = msg.text
		return m, tea.Quit
	case tickMsg:
		m.now = time.Time(msg)
		return m, m.tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.state = stateDone
		m.status = "aborted"
		return m, tea.Sequence(m.emit(session.Abort()), tea.Quit)
	}
	if m.state != stateRating {
		return m, nil
	}

	n := len(m.ratings)
	switch msg.String() {
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "up":
		if m.cursor-m.columns >= 0 {
			m.cursor -= m.columns
		}
	case "down":
		if m.cursor+m.columns < n {
			m.cursor += m.columns
		}
	case "f":
		return m.rate(evolve.Favorite)
	case "k":
		return m.rate(evolve.Keep)
	case "d":
		return m.rate(evolve.Discard)
	case "u":
		return m.rate(evolve.Unrated)
	case "enter", "n":
		m.state = stateWaiting
		m.status = fmt.Sprintf("rendering generation %d", m.gen.Number+1)
		return m, m.emit(session.Advance())
	case "e":
		m.status = "exporting"
		return m, m.emit(session.Export(m.cursor))
	}
	return m, nil
}

func (m model) rate(r evolve.Rating) (model, tea.Cmd) {
	if m.cursor >= len(m.ratings) {
		return m, nil
	}
	m.ratings[m.cursor] = r
	return m, m.emit(session.Rate(m.cursor, r))
}

func (m model) cardWidth() int {
	if len(m.gen.Previews) > 0 && m.gen.Previews[0] != nil {
		return m.gen.Previews[0].Width + 2
	}
	return 26
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString("\n  " + cyan.Render("p l a s m a g e n") + "  " + m.statusLine() + "\n\n")

	if m.state == stateRating || (m.state == stateWaiting && len(m.gen.Previews) > 0) {
		b.WriteString(m.viewGrid())
		b.WriteString("\n")
	}

	b.WriteString(dim.Render("  ←→↑↓ select   f favorite  k keep  d discard  u clear   enter next   e export   q quit") + "\n")
	return b.String()
}

func (m model) statusLine() string {
	switch m.state {
	case stateWaiting:
		return yellow.Render("○ ") + dim.Render(m.status)
	case stateDone:
		return dim.Render(m.status)
	}
	favs, keeps := 0, 0
	for _, r := range m.ratings {
		switch r {
		case evolve.Favorite:
			favs++
		case evolve.Keep:
			keeps++
		}
	}
	return green.Render("● ") + white.Render(m.status) + dim.Render(fmt.Sprintf("  %d favorite  %d keep", favs, keeps))
}

func (m model) viewGrid() string {
	var rows []string
	var row []string
	for i, p := range m.gen.Previews {
		if p == nil || len(p.Frames) == 0 {
			continue
		}
		body := Thumbnail(p.Frames[p.FrameAt(m.now.Sub(m.start))])
		label := m.label(i)
		style := card
		if i == m.cursor {
			style = selectedCard
		}
		row = append(row, style.Render(lipgloss.JoinVertical(lipgloss.Left, body, label)))
		if len(row) == m.columns {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m model) label(i int) string {
	mark := dimmer.Render("·")
	if i < len(m.ratings) {
		switch m.ratings[i] {
		case evolve.Favorite:
			mark = magenta.Render("★")
		case evolve.Keep:
			mark = green.Render("+")
		case evolve.Discard:
			mark = red.Render("×")
		}
	}
	id := ""
	if i < len(m.gen.IDs) {
		id = m.gen.IDs[i][:8]
	}
	frames := len(m.gen.Previews[i].Frames)
	return fmt.Sprintf("%s %s %s", mark, dim.Render(fmt.Sprintf("#%d %s", i+1, id)), dimmer.Render(fmt.Sprintf("%df", frames)))
}
