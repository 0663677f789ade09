// Command ramstk-tui browses a hardware tree and runs allocations and
// similar item analyses interactively.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/ramstk-analysis/pkg/config"
	"github.com/dd0wney/ramstk-analysis/pkg/pubsub"
	"github.com/dd0wney/ramstk-analysis/pkg/session"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	treePath := flag.String("tree", "", "YAML hardware tree, used when no database is configured")
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	if err := run(*configPath, *treePath, *logPath); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func run(configPath, treePath, logPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// the terminal belongs to the UI
	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}

	ctx := context.Background()
	sess, err := session.Open(ctx, cfg, session.Options{TreePath: treePath, LogOutput: logOut})
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.SelectRoot(); err != nil {
		return err
	}
	events, err := sess.Bus.Subscribe(ctx, pubsub.AllTopics)
	if err != nil {
		return err
	}

	m, err := newModel(sess, events)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}

	if sess.Store != nil {
		if err := sess.Save(ctx); err != nil {
			return fmt.Errorf("save: %w", err)
		}
		fmt.Println(sess.Tree.Len(), "hardware items saved")
	}
	return nil
}
