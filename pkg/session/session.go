// Package session assembles a working calculation environment from
// configuration: the logger, metrics, message bus, hardware tree and the
// managers that calculate against it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dd0wney/ramstk-analysis/pkg/allocation"
	"github.com/dd0wney/ramstk-analysis/pkg/analysis"
	"github.com/dd0wney/ramstk-analysis/pkg/audit"
	"github.com/dd0wney/ramstk-analysis/pkg/config"
	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
	"github.com/dd0wney/ramstk-analysis/pkg/logging"
	"github.com/dd0wney/ramstk-analysis/pkg/metrics"
	"github.com/dd0wney/ramstk-analysis/pkg/programdb"
	"github.com/dd0wney/ramstk-analysis/pkg/pubsub"
)

// ErrNoSource is returned when neither a database URL nor a tree file is
// given.
var ErrNoSource = errors.New("no hardware source: set database.url or give a tree file")

// Options select where the tree comes from and where logs go.
type Options struct {
	// TreePath is a YAML fixture. It is used when the configuration has no
	// database URL.
	TreePath string

	// LogOutput defaults to os.Stderr.
	LogOutput io.Writer

	// Logger replaces the logger built from the configuration.
	Logger logging.Logger
}

// Session owns everything a command needs to run calculations.
type Session struct {
	Config      *config.Config
	Logger      logging.Logger
	Metrics     *metrics.Registry
	Bus         *pubsub.PubSub
	Tree        *hardware.Tree
	Allocation  *analysis.AllocationManager
	SimilarItem *analysis.SimilarItemManager

	// History records every calculation event. It is nil when
	// history.size is 0.
	History *audit.AuditLogger

	// Store is nil when the tree came from a fixture.
	Store hardware.Store
	db    *programdb.PGStore

	stopHistory context.CancelFunc
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg *config.Config, w io.Writer) *logging.StreamLogger {
	if w == nil {
		w = os.Stderr
	}
	return logging.New(w, logging.ParseLevel(cfg.LogLevel), logging.ParseFormat(cfg.LogFormat))
}

// Open loads the tree for cfg.Database.RevisionID and builds the managers.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Session{Config: cfg, Logger: opts.Logger}
	if s.Logger == nil {
		s.Logger = NewLogger(cfg, opts.LogOutput)
	}
	if cfg.Metrics.Enabled {
		s.Metrics = metrics.NewRegistry()
	}
	s.Bus = pubsub.NewPubSub(pubsub.WithMetrics(s.Metrics))

	tree, err := s.loadTree(ctx, opts.TreePath)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Tree = tree

	chaining, err := allocation.ParseChaining(cfg.Allocation.Chaining)
	if err != nil {
		s.Close()
		return nil, err
	}

	deps := analysis.Deps{
		Bus:         s.Bus,
		Logger:      s.Logger,
		Metrics:     s.Metrics,
		MissionTime: cfg.Allocation.DefaultMissionTime,
	}
	if s.Allocation, err = analysis.NewAllocationManager(tree, allocation.Options{Chaining: chaining}, deps); err != nil {
		s.Close()
		return nil, err
	}
	if s.SimilarItem, err = analysis.NewSimilarItemManager(tree, deps); err != nil {
		s.Close()
		return nil, err
	}

	if cfg.History.Size > 0 {
		if err := s.startHistory(cfg.History.Size); err != nil {
			s.Close()
			return nil, err
		}
	}

	s.Logger.Info("session ready",
		logging.RevisionID(cfg.Database.RevisionID),
		logging.Count(tree.Len()),
		logging.String("chaining", chaining.String()),
	)
	return s, nil
}

func (s *Session) startHistory(size int) error {
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := s.Bus.Subscribe(ctx, pubsub.AllTopics)
	if err != nil {
		cancel()
		return err
	}
	s.History = audit.NewAuditLogger(size)
	s.stopHistory = cancel
	go audit.Record(ctx, sub, s.History, s.Logger)
	return nil
}

func (s *Session) loadTree(ctx context.Context, path string) (*hardware.Tree, error) {
	rev := s.Config.Database.RevisionID

	if url := s.Config.Database.URL; url != "" {
		db, err := programdb.NewPGStore(ctx, url,
			programdb.WithLogger(s.Logger),
			programdb.WithMetrics(s.Metrics),
		)
		if err != nil {
			return nil, err
		}
		s.db, s.Store = db, db
		return db.LoadTree(ctx, rev)
	}

	if path == "" {
		return nil, ErrNoSource
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tree: %w", err)
	}
	defer f.Close()

	tree, err := hardware.LoadFixture(f)
	if err != nil {
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.SetHardwareItems(tree.Len())
	}
	s.Logger.Info("loaded hardware fixture", logging.Path(path), logging.Count(tree.Len()))
	return tree, nil
}

// Select records id as the selected hardware item on both managers. The
// root's hazard rate becomes the system hazard rate used by ARINC.
func (s *Session) Select(id int) error {
	n, err := s.Tree.Get(id)
	if err != nil {
		return err
	}
	s.Allocation.OnSelectHardware(n.ID, n.HazardRateActive)
	s.SimilarItem.OnSelectHardware(n.ID, n.HazardRateActive)
	return nil
}

// SelectRoot selects the root, and with it the system hazard rate.
func (s *Session) SelectRoot() error {
	root, err := s.Tree.Root()
	if err != nil {
		return err
	}
	return s.Select(root.ID)
}

// Save writes the listed nodes, or the whole tree, to the store. Without a
// store it does nothing.
func (s *Session) Save(ctx context.Context, ids ...int) error {
	if s.Store == nil {
		return nil
	}
	return analysis.SaveNodes(ctx, s.Store, s.Config.Database.RevisionID, s.Tree, ids...)
}

// Ping checks the program database, when there is one.
func (s *Session) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Ping(ctx)
}

// Close shuts down the history, the bus and the database pool.
func (s *Session) Close() {
	if s.stopHistory != nil {
		s.stopHistory()
	}
	if s.Bus != nil {
		s.Bus.Shutdown()
	}
	if s.db != nil {
		s.db.Close()
	}
}
