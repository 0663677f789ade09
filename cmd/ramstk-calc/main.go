// Command ramstk-calc runs one calculation against a hardware tree and
// prints the affected items.
//
//	ramstk-calc -tree system.yaml -op allocate -node 1
//	ramstk-calc -config ramstk.yaml -op similar-item -node 3 -save
//	ramstk-calc -tree system.yaml -op allocate-tree -history runs.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dd0wney/ramstk-analysis/pkg/allocation"
	"github.com/dd0wney/ramstk-analysis/pkg/analysis"
	"github.com/dd0wney/ramstk-analysis/pkg/audit"
	"github.com/dd0wney/ramstk-analysis/pkg/config"
	"github.com/dd0wney/ramstk-analysis/pkg/pubsub"
	"github.com/dd0wney/ramstk-analysis/pkg/session"
)

// Operations accepted by -op.
const (
	opGoals        = "goals"
	opAllocate     = "allocate"
	opAllocateTree = "allocate-tree"
	opSimilarItem  = "similar-item"
	opRollUp       = "roll-up"
)

type options struct {
	configPath string
	treePath   string
	op         string
	nodeID     int
	chaining   string
	save       bool
	history    string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML configuration file")
	flag.StringVar(&o.treePath, "tree", "", "YAML hardware tree, used when no database is configured")
	flag.StringVar(&o.op, "op", opAllocate, "operation: goals, allocate, allocate-tree, similar-item or roll-up")
	flag.IntVar(&o.nodeID, "node", 1, "hardware ID to calculate")
	flag.StringVar(&o.chaining, "chaining", "", "sibling chaining for Equal and AGREE: chain or independent")
	flag.BoolVar(&o.save, "save", false, "write results back to the program database")
	flag.StringVar(&o.history, "history", "", "write the calculation events to this .json, .jsonl or .csv file")
	flag.Parse()

	if err := run(context.Background(), o, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.chaining != "" {
		cfg.Allocation.Chaining = o.chaining
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	sess, err := session.Open(ctx, cfg, session.Options{TreePath: o.treePath, LogOutput: stderr})
	if err != nil {
		return err
	}
	defer sess.Close()

	warnings, err := sess.Bus.Subscribe(ctx, pubsub.AllTopics)
	if err != nil {
		return err
	}

	if err := sess.SelectRoot(); err != nil {
		return err
	}
	if err := sess.Select(o.nodeID); err != nil {
		return err
	}

	ids, err := calculate(sess, o.op, o.nodeID, stdout)
	if err != nil {
		return err
	}

	var history []*audit.Event
	for _, ev := range drain(warnings) {
		if strings.HasPrefix(ev.Topic, "fail_") {
			fmt.Fprintln(stderr, warnStyle.Render(fmt.Sprintf("warning: hardware %d: %s", ev.NodeID, ev.Message)))
		}
		if e, ok := audit.FromBusEvent(ev); ok {
			history = append(history, e)
		}
	}

	if err := renderNodes(stdout, sess.Tree, ids); err != nil {
		return err
	}

	if o.save {
		if sess.Store == nil {
			return errors.New("-save needs a database")
		}
		if err := sess.Save(ctx, ids...); err != nil {
			return err
		}
		fmt.Fprintln(stdout, okStyle.Render(fmt.Sprintf("saved %d hardware items", len(ids))))
	}

	if o.history != "" {
		if err := writeHistory(o.history, history); err != nil {
			return err
		}
	}
	return nil
}

func writeHistory(path string, events []*audit.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if err := audit.Export(f, events, audit.FormatForPath(path)); err != nil {
		f.Close()
		return fmt.Errorf("history: %w", err)
	}
	return f.Close()
}

// calculate runs op and returns the ids of the items it changed.
func calculate(sess *session.Session, op string, id int, stdout io.Writer) ([]int, error) {
	switch op {
	case opGoals:
		if _, err := sess.Allocation.DoCalculateGoals(id); err != nil {
			return nil, err
		}
		return []int{id}, nil

	case opAllocate:
		out, err := sess.Allocation.DoCalculateAllocation(id)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(stdout, titleStyle.Render(fmt.Sprintf("%s allocation below hardware %d (%s)",
			out.Method, id, sess.Allocation.Options().Chaining)))
		return analysis.Family(sess.Tree, id)

	case opAllocateTree:
		res, err := sess.Allocation.DoAllocateTree(id)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(stdout, titleStyle.Render(fmt.Sprintf("allocated below %d items, %d failures",
			len(res.Allocated), len(res.Failures))))
		return subtree(sess, id), nil

	case opSimilarItem:
		if err := sess.SimilarItem.DoCalculateSimilarItem(id); err != nil {
			return nil, err
		}
		return []int{id}, nil

	case opRollUp:
		if err := sess.SimilarItem.DoRollUpChangeDescriptions(id); err != nil {
			return nil, err
		}
		return []int{id}, nil
	}
	return nil, fmt.Errorf("unknown operation %q", op)
}

// subtree lists id and its descendants, breadth first.
func subtree(sess *session.Session, id int) []int {
	ids := []int{id}
	for i := 0; i < len(ids); i++ {
		children, _ := sess.Tree.Children(ids[i])
		for _, c := range children {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func drain(sub *pubsub.Subscription) []pubsub.Event {
	var events []pubsub.Event
	for {
		select {
		case ev := <-sub.Channel():
			events = append(events, ev)
		default:
			return events
		}
	}
}

// methodName renders an allocation_method_id for display.
func methodName(id int) string {
	m, err := allocation.ParseMethod(id)
	if err != nil {
		return "-"
	}
	return m.String()
}
