package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/albibenni/focus/internal/focus/common/clock"
	"github.com/albibenni/focus/internal/focus/common/log"
	"github.com/albibenni/focus/internal/focus/config"
	"github.com/albibenni/focus/internal/focus/domain"
	"github.com/albibenni/focus/internal/focus/gateways/flush"
	"github.com/albibenni/focus/internal/focus/gateways/hostsio"
	"github.com/albibenni/focus/internal/focus/gateways/procs"
	"github.com/albibenni/focus/internal/focus/repos/catalog"
	"github.com/albibenni/focus/internal/focus/repos/hostindex"
	"github.com/albibenni/focus/internal/focus/repos/journal"
	"github.com/albibenni/focus/internal/focus/services/editor"
	"github.com/albibenni/focus/internal/focus/services/resolver"
	"github.com/albibenni/focus/internal/focus/services/session"
)

// historyLimit is how many journal records status shows.
const historyLimit = 5

// Application holds all the components of the tool
type Application struct {
	config    *config.AppConfig
	logger    log.Logger
	hosts     *hostsio.File
	index     *hostindex.Index
	journal   *journal.Store
	probe     *procs.Probe
	scheduler *session.Scheduler
}

// buildApplication constructs all components and wires them together. It
// does not touch the host file. A journal that cannot be opened is logged
// and left out.
func buildApplication(cfg *config.AppConfig, cat *catalog.Catalog) *Application {
	logger := log.GetLogger()

	app := &Application{
		config: cfg,
		logger: logger,
		hosts:  hostsio.New(hostsio.Options{Path: cfg.HostsPath, Atomic: cfg.AtomicWrite}),
		index:  hostindex.New(cat.Hosts(), hostindex.DefaultFPRate),
		probe:  procs.New(procs.Options{Name: appName}),
	}

	if cfg.Journal != "" {
		store, err := journal.Open(cfg.Journal)
		if err != nil {
			logger.Warn(map[string]any{"path": cfg.Journal, "error": err.Error()}, "session journal unavailable")
		} else {
			app.journal = store
		}
	}

	opts := session.Options{
		Resolver: resolver.New(resolver.Options{Catalog: cat, Logger: logger.Named("resolver")}),
		Hosts:    app.hosts,
		Editor:   editor.New(editor.Options{Loopback: cfg.Loopback, MarkEntries: cfg.MarkEntries}),
		Flusher: flush.New(flush.Options{
			Command: cfg.FlushCommand,
			Flag:    cfg.FlushFlag,
			Logger:  logger.Named("flush"),
		}),
		Clock:  &clock.RealClock{},
		Logger: logger.Named("session"),
	}
	if app.journal != nil {
		opts.Journal = app.journal
	}
	app.scheduler = session.New(opts)

	logger.Debug(map[string]any{
		"version":      version,
		"hosts_path":   cfg.HostsPath,
		"loopback":     cfg.Loopback,
		"flush":        strings.TrimSpace(cfg.FlushCommand + " " + cfg.FlushFlag),
		"atomic_write": cfg.AtomicWrite,
		"mark_entries": cfg.MarkEntries,
		"journal":      app.journal != nil,
		"catalog":      app.index.Len(),
	}, "application built")
	return app
}

// Close releases the journal and flushes buffered log entries.
func (app *Application) Close() {
	if app.journal != nil {
		if err := app.journal.Close(); err != nil {
			app.logger.Warn(map[string]any{"error": err.Error()}, "closing journal")
		}
	}
	_ = app.logger.Sync()
}

// Status is a read-only view of what focus has left behind.
type Status struct {
	HostsPath string
	Pending   *domain.Record
	History   []domain.Record
	Blocked   []editor.Entry
	Others    []procs.Info
	Warnings  []string
}

// Status inspects the host file, the journal and the process table. Only an
// unreadable host file is an error; the other probes degrade to warnings.
func (app *Application) Status(ctx context.Context) (Status, error) {
	st := Status{HostsPath: app.hosts.Path()}

	content, err := app.hosts.ReadText()
	if err != nil {
		return st, err
	}
	st.Blocked, err = editor.Scan(strings.NewReader(content), app.index, app.logger.Named("scan"))
	if err != nil {
		return st, fmt.Errorf("scanning %s: %w", st.HostsPath, err)
	}

	if app.journal != nil {
		rec, ok, err := app.journal.Pending()
		switch {
		case err != nil:
			st.Warnings = append(st.Warnings, fmt.Sprintf("journal unreadable: %v", err))
		case ok:
			st.Pending = &rec
		}
		hist, err := app.journal.History(historyLimit)
		if err != nil {
			st.Warnings = append(st.Warnings, fmt.Sprintf("journal history unreadable: %v", err))
		}
		st.History = hist
	} else if app.config.Journal != "" {
		st.Warnings = append(st.Warnings, "session journal unavailable (another focus may be running)")
	}

	others, err := app.probe.Others(ctx)
	if err != nil {
		st.Warnings = append(st.Warnings, fmt.Sprintf("process list unavailable: %v", err))
	}
	st.Others = others

	bloomRejects, exactChecks := app.index.Stats()
	app.logger.Debug(map[string]any{"bloom_rejects": bloomRejects, "exact_checks": exactChecks}, "status scan done")
	return st, nil
}
