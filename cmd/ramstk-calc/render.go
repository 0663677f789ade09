package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

var columns = []string{"ID", "Name", "Method", "R goal", "h goal", "MTBF goal", "R alloc", "h alloc", "MTBF alloc", "Result 1"}

// renderNodes prints ids as a table in the order given.
func renderNodes(w io.Writer, tree *hardware.Tree, ids []int) error {
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		n, err := tree.Get(id)
		if err != nil {
			return err
		}
		rows = append(rows, nodeRow(&n))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			return cellStyle
		}).
		Headers(columns...).
		Rows(rows...)

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func nodeRow(n *hardware.Node) []string {
	return []string{
		strconv.Itoa(n.ID),
		n.Name,
		methodName(n.AllocationMethodID),
		num(n.ReliabilityGoal),
		num(n.HazardRateGoal),
		num(n.MTBFGoal),
		num(n.ReliabilityAlloc),
		num(n.HazardRateAlloc),
		num(n.MTBFAlloc),
		num(n.Results[0]),
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', 8, 64)
}
