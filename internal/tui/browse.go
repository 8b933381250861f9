// Package tui provides the interactive log browser.
//
// The browser shows the tips of a logview.View as a checklist next to the
// log they produce. Toggling a tip calls View.SetSelected and redraws the log
// from View.CurrentLog, so the terminal always shows the committed state.
//
// Models are used from the bubbletea event loop only.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/javanhut/lineage/internal/lineage"
	"github.com/javanhut/lineage/internal/logview"
	"github.com/javanhut/lineage/internal/seals"
	"github.com/javanhut/lineage/internal/timeago"
)

// Options configures the browser.
type Options struct {
	// Nicknames shows seal nicknames instead of short ids.
	Nicknames bool

	// OnSelect is called after a selection change has been applied to the
	// view, for example to persist it. Errors are shown in the footer.
	OnSelect func(changes map[string]bool) error

	// Now overrides the clock used for relative dates.
	Now func() time.Time
}

// Model is the bubbletea model for the log browser.
type Model struct {
	view *logview.View
	opts Options

	tips   []logview.Tip
	cursor int

	log    viewport.Model
	width  int
	height int
	ready  bool

	status   string
	err      error
	quitting bool
}

// New creates a browser over view.
func New(view *logview.View, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return Model{
		view: view,
		opts: opts,
		tips: view.Tips(),
	}
}

// Run starts the browser on the terminal and blocks until it exits.
func Run(view *logview.View, opts Options) error {
	_, err := tea.NewProgram(New(view, opts), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.logSize()
		if !m.ready {
			m.log = viewport.New(w, h)
			m.ready = true
		} else {
			m.log.Width = w
			m.log.Height = h
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.tips)-1 {
				m.cursor++
			}

		case " ", "space", "enter", "x":
			if m.cursor < len(m.tips) {
				tip := m.tips[m.cursor]
				m.apply(map[string]bool{tip.Name: !tip.Selected})
			}

		case "a":
			m.apply(m.all(true))

		case "n":
			m.apply(m.all(false))

		case "+":
			m.recompute(m.view.Bound() * 2)

		case "-":
			m.recompute(max(1, m.view.Bound()/2))

		case "ctrl+d", "pgdown":
			m.log.HalfViewDown()

		case "ctrl+u", "pgup":
			m.log.HalfViewUp()

		case "g", "home":
			m.log.GotoTop()

		case "G", "end":
			m.log.GotoBottom()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m Model) all(selected bool) map[string]bool {
	changes := make(map[string]bool, len(m.tips))
	for _, tip := range m.tips {
		changes[tip.Name] = selected
	}
	return changes
}

func (m *Model) apply(changes map[string]bool) {
	if len(changes) == 0 {
		return
	}
	if err := m.view.Select(changes); err != nil {
		m.err = err
		return
	}
	m.err = nil
	if m.opts.OnSelect != nil {
		if err := m.opts.OnSelect(changes); err != nil {
			m.err = fmt.Errorf("save selection: %w", err)
		}
	}
	m.refresh()
}

func (m *Model) recompute(bound int) {
	if err := m.view.Recompute(bound); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.refresh()
}

func (m *Model) refresh() {
	m.tips = m.view.Tips()
	if m.cursor >= len(m.tips) {
		m.cursor = max(0, len(m.tips)-1)
	}
	nodes := m.view.CurrentLog()
	m.status = fmt.Sprintf("%d commits, limit %d", len(nodes), m.view.Bound())
	if m.ready {
		m.log.SetContent(m.renderLog(nodes))
	}
}

func (m Model) logSize() (int, int) {
	w := m.width - tipsWidth - 1
	h := m.height - headerHeight - footerHeight
	return max(w, 10), max(h, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading...\n"
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		tipsPaneStyle.Height(m.log.Height).Render(m.renderTips()),
		m.log.View(),
	)
	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(), body, m.renderFooter()))
}

func (m Model) renderHeader() string {
	return titleStyle.Render("lineage") + " " + mutedStyle.Render(m.status)
}

func (m Model) renderFooter() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error())
	}
	return mutedStyle.Render("space toggle · a all · n none · +/- limit · j/k move · q quit")
}

func (m Model) renderTips() string {
	if len(m.tips) == 0 {
		return mutedStyle.Render("no timelines")
	}
	var b strings.Builder
	for i, tip := range m.tips {
		box := "[ ]"
		if tip.Selected {
			box = "[x]"
		}
		name := tip.Name
		if tip.Head {
			name += " *"
		}
		line := fmt.Sprintf("%s %s", box, name)
		if i == m.cursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = textStyle.Render("  " + line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderLog(nodes []lineage.Node) string {
	if len(nodes) == 0 {
		return mutedStyle.Render("No commits for the selected timelines.")
	}
	labels := m.labels()
	now := m.opts.Now()
	cardWidth := max(m.log.Width-2, 8)

	cards := make([]string, len(nodes))
	for i, n := range nodes {
		id := n.ID.Short()
		if m.opts.Nicknames {
			id = seals.Nickname(n.ID)
		}
		head := idStyle.Render(id)
		if names := labels[n.ID]; len(names) > 0 {
			head += " " + tipLabelStyle.Render("("+strings.Join(names, ", ")+")")
		}
		meta := mutedStyle.Render(fmt.Sprintf("%s · %s", n.Author, timeago.Unix(n.Time, now)))
		cards[i] = cardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, head, textStyle.Render(n.Summary), meta))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m Model) labels() map[lineage.ID][]string {
	labels := make(map[lineage.ID][]string)
	for _, tip := range m.tips {
		labels[tip.Target] = append(labels[tip.Target], tip.Name)
	}
	return labels
}

// Err returns the last error shown in the footer.
func (m Model) Err() error {
	return m.err
}
