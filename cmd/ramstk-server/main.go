// Command ramstk-server serves reliability allocation and similar item
// calculations over GraphQL for one revision of a hardware tree.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dd0wney/ramstk-analysis/pkg/config"
	"github.com/dd0wney/ramstk-analysis/pkg/graphql"
	"github.com/dd0wney/ramstk-analysis/pkg/health"
	"github.com/dd0wney/ramstk-analysis/pkg/logging"
	"github.com/dd0wney/ramstk-analysis/pkg/pubsub"
	"github.com/dd0wney/ramstk-analysis/pkg/server"
	"github.com/dd0wney/ramstk-analysis/pkg/session"
	tlsconfig "github.com/dd0wney/ramstk-analysis/pkg/tls"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	treePath := flag.String("tree", "", "YAML hardware tree, used when no database is configured")
	addr := flag.String("addr", "", "listen address (overrides server.addr)")
	maxDepth := flag.Int("max-depth", graphql.DefaultMaxDepth, "maximum GraphQL query depth")
	flag.Parse()

	if err := run(*configPath, *treePath, *addr, *maxDepth); err != nil {
		fmt.Fprintln(os.Stderr, "ramstk-server:", err)
		os.Exit(1)
	}
}

func run(configPath, treePath, addr string, maxDepth int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := session.NewLogger(cfg, os.Stderr)
	sess, err := session.Open(ctx, cfg, session.Options{TreePath: treePath, Logger: logger})
	if err != nil {
		return err
	}
	defer sess.Close()

	// ARINC needs the system hazard rate.
	if err := sess.SelectRoot(); err != nil {
		return err
	}

	schema, err := graphql.GenerateSchema(&graphql.Service{
		Allocation:  sess.Allocation,
		SimilarItem: sess.SimilarItem,
		Tree:        sess.Tree,
		Store:       sess.Store,
		History:     sess.History,
		RevisionID:  cfg.Database.RevisionID,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	hc := health.NewHealthChecker()
	hc.RegisterCheck("hardware_tree", health.TreeCheck(sess.Tree.Len))
	hc.RegisterReadinessCheck("hardware_tree", health.TreeCheck(sess.Tree.Len))
	hc.RegisterCheck("memory", health.MemoryCheck())
	if sess.Store != nil {
		hc.RegisterCheck("database", health.DatabaseCheck(sess.Ping))
		hc.RegisterReadinessCheck("database", health.DatabaseCheck(sess.Ping))
	}

	if cfg.Server.EventsURL != "" {
		bridge, err := pubsub.NewBridge(ctx, sess.Bus, cfg.Server.EventsURL, logger, sess.Metrics)
		if err != nil {
			return err
		}
		defer bridge.Close()
		go bridge.Run()

		// the history, when enabled, also listens on every topic
		want := 1
		if sess.History != nil {
			want++
		}
		hc.RegisterCheck("event_bridge", health.SubscriberCheck(func() int {
			return sess.Bus.GetSubscriberCount(pubsub.AllTopics)
		}, want))
	}

	router := server.NewRouter(server.Routes{
		GraphQL: graphql.NewGraphQLHandler(schema, graphql.WithMaxDepth(maxDepth), graphql.WithLogger(logger)),
		Health:  hc,
		Metrics: sess.Metrics,
		Logger:  logger,
	})

	gs := server.NewGracefulServer(cfg.Server.Addr, router, logger)
	if t := cfg.Server.TLS; t.Enabled {
		tc := tlsconfig.DefaultConfig()
		tc.Enabled = true
		tc.CertFile, tc.KeyFile, tc.CAFile = t.CertFile, t.KeyFile, t.CAFile
		if len(t.Hosts) > 0 {
			tc.Hosts = t.Hosts
		}
		tlsCfg, err := tlsconfig.LoadTLSConfig(tc)
		if err != nil {
			return err
		}
		gs.SetTLSConfig(tlsCfg)
		if t.CertFile == "" {
			logger.Warn("serving with a generated self-signed certificate", logging.String("hosts", strings.Join(tc.Hosts, ",")))
		}
	}
	gs.SetConfigReloadFunc(func() error {
		next, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger.SetLevel(logging.ParseLevel(next.LogLevel))
		return nil
	})

	logger.Info("ramstk server starting",
		logging.String("addr", cfg.Server.Addr),
		logging.RevisionID(cfg.Database.RevisionID),
		logging.Bool("metrics", sess.Metrics != nil),
		logging.Bool("events", cfg.Server.EventsURL != ""),
		logging.Bool("tls", cfg.Server.TLS.Enabled),
	)
	return gs.Start(ctx)
}
