// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/tm2map"
	"github.com/poiesic/tm2map/core"
	"github.com/poiesic/tm2map/server"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tm2map",
		Usage: "Map NAMASTE traditional-medicine terms to ICD-11 TM2 codes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"TM2MAP_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory holding the term table and curated match index",
				Value:   ".",
				EnvVars: []string{"TM2MAP_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "terms",
				Usage:   "Path to the term table (.csv or .xlsx); overrides --data-dir",
				EnvVars: []string{"TM2MAP_TERMS"},
			},
			&cli.StringFlag{
				Name:    "curated",
				Usage:   "Path to the curated match index (.json); overrides --data-dir",
				EnvVars: []string{"TM2MAP_CURATED"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (in-memory when empty)",
				EnvVars: []string{"TM2MAP_DB"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   server.DefaultConfig().Addr,
						EnvVars: []string{"TM2MAP_ADDR"},
					},
					&cli.StringSliceFlag{
						Name:    "cors-origin",
						Usage:   "Origin allowed to call the API (repeatable, * for any)",
						Value:   cli.NewStringSlice(server.DefaultConfig().AllowedOrigins...),
						EnvVars: []string{"TM2MAP_CORS_ORIGINS"},
					},
					&cli.StringFlag{
						Name:    "static-dir",
						Usage:   "Directory of a built frontend to serve",
						EnvVars: []string{"TM2MAP_STATIC_DIR"},
					},
					&cli.DurationFlag{
						Name:  "read-timeout",
						Usage: "Maximum duration for reading a request",
						Value: server.DefaultConfig().ReadTimeout,
					},
					&cli.DurationFlag{
						Name:  "write-timeout",
						Usage: "Maximum duration for writing a response",
						Value: server.DefaultConfig().WriteTimeout,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search terms, labels and synonyms",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: server.DefaultSearchLimit,
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Trace each step of the search",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
				},
			},
			{
				Name:      "translate",
				Usage:     "Translate a source code to its target code",
				ArgsUsage: "<code>",
				Action:    translateCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show mapping statistics",
				Action: statsCommand,
			},
			{
				Name:   "snapshot",
				Usage:  "Show the loaded snapshot and its load history",
				Action: snapshotCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "history",
						Usage: "Number of past loads to list",
						Value: 5,
					},
				},
			},
			{
				Name:   "settings",
				Usage:  "Show the integration settings",
				Action: settingsCommand,
				Subcommands: []*cli.Command{
					{
						Name:   "set",
						Usage:  "Update the integration settings",
						Action: settingsSetCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "client-id", Usage: "Client identifier"},
							&cli.StringFlag{Name: "callback-url", Usage: "OAuth callback URL"},
							&cli.StringFlag{Name: "environment", Usage: "Target environment name"},
						},
					},
				},
			},
		},
	}
}

// openService builds a Service from the global flags.
func openService(c *cli.Context) (*tm2map.Service, error) {
	return tm2map.NewService(c.Context,
		tm2map.WithDataDir(c.String("data-dir")),
		tm2map.WithTermTable(c.String("terms")),
		tm2map.WithCuratedIndex(c.String("curated")),
		tm2map.WithDatabasePath(c.String("db")),
		tm2map.WithLogger(slog.Default()),
	)
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	cfg := server.NewConfig(
		server.WithAddr(c.String("addr")),
		server.WithAllowedOrigins(c.StringSlice("cors-origin")...),
		server.WithStaticDir(c.String("static-dir")),
		server.WithTimeouts(c.Duration("read-timeout"), c.Duration("write-timeout")),
	)
	srv, err := svc.NewServer(cfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := c.App.Writer
	var results []core.MappingResult
	if c.Bool("verbose") {
		results = svc.Engine().SearchWithMonitor(query, c.Int("limit"), &traceMonitor{out: out})
	} else {
		results = svc.Engine().Search(query, c.Int("limit"))
	}

	if c.Bool("json") {
		return printJSON(out, results)
	}
	fmt.Fprintf(out, "Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Fprintf(out, "%d: '%s' (%s) -> %s [%0.2f]\n", i, hit.Term, hit.ID, hit.Match, hit.Confidence)
	}
	return nil
}

func translateCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("translate expects exactly one code")
	}
	code := c.Args().First()

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, found := svc.Engine().Translate(code)
	if !found {
		return fmt.Errorf("code %s not found", code)
	}
	return printJSON(c.App.Writer, result)
}

func statsCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	return printJSON(c.App.Writer, svc.Engine().Stats())
}

func snapshotCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := c.App.Writer
	info := svc.Engine().Snapshot()
	fmt.Fprintf(out, "fingerprint: %016x\n", uint64(info.Fingerprint))
	fmt.Fprintf(out, "term table:  %s (found=%t, rows=%d)\n", info.TermTablePath, info.TermTableFound, info.TermCount)
	fmt.Fprintf(out, "curated:     %s (found=%t, entries=%d)\n", info.CuratedIndexPath, info.CuratedIndexFound, info.CuratedCount)
	fmt.Fprintf(out, "loaded at:   %s\n", info.LoadedAt.Format(time.RFC3339))

	if n := c.Int("history"); n > 0 {
		history, err := svc.SnapshotRepository().GetSnapshotHistory(c.Context, n)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "history (%d):\n", len(history))
		for _, h := range history {
			fmt.Fprintf(out, "  %s  %016x  terms=%d curated=%d\n", h.LoadedAt.Format(time.RFC3339), uint64(h.Fingerprint), h.TermCount, h.CuratedCount)
		}
	}
	return nil
}

func settingsCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	settings, err := svc.Settings().Get(c.Context)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, settings)
}

func settingsSetCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	current, err := svc.Settings().Get(c.Context)
	if err != nil {
		return err
	}
	next := *current
	if c.IsSet("client-id") {
		next.ClientID = c.String("client-id")
	}
	if c.IsSet("callback-url") {
		next.CallbackURL = c.String("callback-url")
	}
	if c.IsSet("environment") {
		next.Environment = c.String("environment")
	}

	updated, err := svc.Settings().Update(c.Context, &next)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, updated)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// traceMonitor prints each search step.
type traceMonitor struct {
	out   io.Writer
	start time.Time
}

func (m *traceMonitor) Start(query string, limit int) {
	m.start = time.Now()
	fmt.Fprintf(m.out, "search %q limit=%d\n", query, limit)
}

func (m *traceMonitor) CuratedHit(result core.MappingResult) {
	fmt.Fprintf(m.out, "  curated hit %s %q [%0.2f]\n", result.ID, result.Term, result.Confidence)
}

func (m *traceMonitor) TableHit(result core.MappingResult) {
	fmt.Fprintf(m.out, "  table hit %s %q [%0.2f]\n", result.ID, result.Term, result.Confidence)
}

func (m *traceMonitor) DuplicateSkipped(id string) {
	fmt.Fprintf(m.out, "  skipped duplicate %s\n", id)
}

func (m *traceMonitor) Finish(results []core.MappingResult) {
	fmt.Fprintf(m.out, "done: %d results in %s\n", len(results), time.Since(m.start))
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
