package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/ramstk-analysis/pkg/allocation"
	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
	"github.com/dd0wney/ramstk-analysis/pkg/pubsub"
	"github.com/dd0wney/ramstk-analysis/pkg/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginBottom(1)

	parentStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))
)

type model struct {
	sess     *session.Session
	events   *pubsub.Subscription
	parentID int
	children table.Model
	help     help.Model
	keys     keyMap
	width    int
	message  string
	level    int // 0 ok, 1 warning, 2 error
}

func newModel(sess *session.Session, events *pubsub.Subscription) (model, error) {
	root, err := sess.Tree.Root()
	if err != nil {
		return model{}, err
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Name", Width: 18},
			{Title: "Method", Width: 7},
			{Title: "R alloc", Width: 12},
			{Title: "h alloc", Width: 12},
			{Title: "MTBF alloc", Width: 12},
			{Title: "Result 1", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	m := model{
		sess:     sess,
		events:   events,
		parentID: root.ID,
		children: t,
		help:     help.New(),
		keys:     keys,
	}
	m.refresh()
	return m, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Enter):
			if id, ok := m.selectedID(); ok && m.sess.Tree.HasChildren(id) {
				m.open(id)
			}
			return m, nil

		case key.Matches(msg, m.keys.Back):
			if p, err := m.sess.Tree.Parent(m.parentID); err == nil {
				m.open(p.ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.Method):
			m.cycleMethod()
			return m, nil

		case key.Matches(msg, m.keys.Chaining):
			m.toggleChaining()
			return m, nil

		case key.Matches(msg, m.keys.Goals):
			_, err := m.sess.Allocation.DoCalculateGoals(m.parentID)
			m.finish(err, fmt.Sprintf("goals calculated for %d", m.parentID))
			return m, nil

		case key.Matches(msg, m.keys.Allocate):
			_, err := m.sess.Allocation.DoCalculateAllocation(m.parentID)
			m.finish(err, fmt.Sprintf("allocated below %d", m.parentID))
			return m, nil

		case key.Matches(msg, m.keys.Similar):
			if id, ok := m.selectedID(); ok {
				m.sess.Select(id)
				err := m.sess.SimilarItem.DoCalculateSimilarItem(id)
				m.finish(err, fmt.Sprintf("similar item calculated for %d", id))
			}
			return m, nil

		case key.Matches(msg, m.keys.RollUp):
			err := m.sess.SimilarItem.DoRollUpChangeDescriptions(m.parentID)
			m.finish(err, fmt.Sprintf("change descriptions rolled up into %d", m.parentID))
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.children, cmd = m.children.Update(msg)
	return m, cmd
}

// open makes id the parent whose children are listed and selects it.
func (m *model) open(id int) {
	m.parentID = id
	m.sess.Select(id)
	m.children.SetCursor(0)
	m.refresh()
}

func (m *model) cycleMethod() {
	err := m.sess.Tree.Update(m.parentID, func(n *hardware.Node) {
		n.AllocationMethodID = n.AllocationMethodID%int(allocation.FOO) + 1
	})
	if err != nil {
		m.setMessage(2, err.Error())
		return
	}
	n, _ := m.sess.Tree.Get(m.parentID)
	m.setMessage(0, "method: "+methodName(n.AllocationMethodID))
}

func (m *model) toggleChaining() {
	opts := m.sess.Allocation.Options()
	if opts.Chaining == allocation.ChainSiblings {
		opts.Chaining = allocation.IndependentSiblings
	} else {
		opts.Chaining = allocation.ChainSiblings
	}
	m.sess.Allocation.SetOptions(opts)
	m.setMessage(0, "chaining: "+opts.Chaining.String())
}

// finish reports a calculation: the hard error, else any fail events it
// published, else success.
func (m *model) finish(err error, ok string) {
	defer m.refresh()

	var warnings []string
	for _, ev := range m.drain() {
		if strings.HasPrefix(ev.Topic, "fail_") {
			warnings = append(warnings, ev.Message)
		}
	}
	if err != nil {
		m.setMessage(2, err.Error())
		return
	}
	if len(warnings) > 0 {
		m.setMessage(1, strings.Join(warnings, "\n"))
		return
	}
	m.setMessage(0, ok)
}

func (m *model) drain() []pubsub.Event {
	if m.events == nil {
		return nil
	}
	var events []pubsub.Event
	for {
		select {
		case ev := <-m.events.Channel():
			events = append(events, ev)
		default:
			return events
		}
	}
}

func (m *model) setMessage(level int, msg string) {
	m.level, m.message = level, msg
}

func (m *model) selectedID() (int, bool) {
	row := m.children.SelectedRow()
	if row == nil {
		return 0, false
	}
	id, err := strconv.Atoi(row[0])
	return id, err == nil
}

func (m *model) refresh() {
	nodes, _ := m.sess.Tree.Children(m.parentID)
	rows := make([]table.Row, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		rows[i] = table.Row{
			strconv.Itoa(n.ID),
			n.Name,
			methodName(n.AllocationMethodID),
			num(n.ReliabilityAlloc),
			num(n.HazardRateAlloc),
			num(n.MTBFAlloc),
			num(n.Results[0]),
		}
	}
	m.children.SetRows(rows)
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("RAMSTK reliability allocation"))
	b.WriteString("\n")

	if p, err := m.sess.Tree.Get(m.parentID); err == nil {
		b.WriteString(parentStyle.Render(fmt.Sprintf(
			"%d %s\nmethod %s  chaining %s\nR goal %s  h goal %s  MTBF goal %s",
			p.ID, p.Name,
			methodName(p.AllocationMethodID), m.sess.Allocation.Options().Chaining,
			num(p.ReliabilityGoal), num(p.HazardRateGoal), num(p.MTBFGoal),
		)))
		b.WriteString("\n")
	}

	b.WriteString(m.children.View())
	b.WriteString("\n\n")

	if m.message != "" {
		switch m.level {
		case 2:
			b.WriteString(errorStyle.Render(m.message))
		case 1:
			b.WriteString(warnStyle.Render(m.message))
		default:
			b.WriteString(successStyle.Render(m.message))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func methodName(id int) string {
	meth, err := allocation.ParseMethod(id)
	if err != nil {
		return "-"
	}
	return meth.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', 8, 64)
}
