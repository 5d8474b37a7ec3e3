package session

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/albibenni/focus/internal/focus/common/clock"
	"github.com/albibenni/focus/internal/focus/common/log"
	"github.com/albibenni/focus/internal/focus/domain"
)

// Request is one session as asked for by the caller.
type Request struct {
	Tokens   []string
	Duration time.Duration
}

// Report describes how far a session got.
type Report struct {
	State     domain.State
	BlockSet  domain.BlockSet
	Duration  time.Duration
	StartedAt time.Time
	EndedAt   time.Time
	// FlushErr combines every cache flush failure of the session. Flush
	// failures never stop a session.
	FlushErr error
}

// Scheduler runs the resolve, apply, hold, restore lifecycle.
type Scheduler struct {
	resolver Resolver
	hosts    HostsFile
	editor   Editor
	flusher  Flusher
	journal  Journal
	clock    clock.Clock
	logger   log.Logger
}

type Options struct {
	Resolver Resolver
	Hosts    HostsFile
	Editor   Editor
	Flusher  Flusher
	// Journal may be nil.
	Journal Journal
	Clock   clock.Clock
	Logger  log.Logger
}

func New(opts Options) *Scheduler {
	s := &Scheduler{
		resolver: opts.Resolver,
		hosts:    opts.Hosts,
		editor:   opts.Editor,
		flusher:  opts.Flusher,
		journal:  opts.Journal,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
	if s.clock == nil {
		s.clock = &clock.RealClock{}
	}
	if s.logger == nil {
		s.logger = log.NewNoopLogger()
	}
	return s
}

// Run executes one session. It blocks for req.Duration between applying
// and restoring; the hold is not interruptible.
//
// A failure after resolution is returned as *domain.SessionError along with
// a Report in StateFailed. When the failing stage is apply or restore the
// journal entry is left pending so that Recover can repair the host file.
func (s *Scheduler) Run(ctx context.Context, req Request) (Report, error) {
	report := Report{
		State:     domain.StateIdle,
		Duration:  req.Duration,
		StartedAt: s.clock.Now(),
	}
	s.warnPending()

	set, err := s.resolver.Resolve(req.Tokens)
	if err != nil {
		report.State = domain.StateFailed
		report.EndedAt = s.clock.Now()
		return report, fmt.Errorf("resolving tokens: %w", err)
	}
	report.BlockSet = set
	report.State = domain.StateResolved
	s.logger.Info(map[string]any{"hosts": set.Hosts(), "duration": req.Duration.String()}, "session resolved")

	content, err := s.hosts.ReadText()
	if err != nil {
		return s.fail(report, domain.StageSnapshot, err)
	}
	snapshot := domain.Snapshot{Path: s.hosts.Path(), Content: content, TakenAt: s.clock.Now()}
	id, journaled := s.begin(snapshot, set, req.Duration)

	if err := s.hosts.WriteText(s.editor.Apply(content, set)); err != nil {
		return s.fail(report, domain.StageApply, err)
	}
	report.State = domain.StateApplied
	s.logger.Info(map[string]any{"path": snapshot.Path, "hosts": set.Len()}, "blocklist applied")
	report.FlushErr = multierr.Append(report.FlushErr, s.flush(ctx, "apply"))

	report.State = domain.StateHolding
	s.logger.Info(map[string]any{"duration": req.Duration.String(), "until": snapshot.TakenAt.Add(req.Duration).Format(time.RFC3339)}, "holding")
	s.clock.Sleep(req.Duration)

	if err := s.hosts.WriteText(s.editor.Restore(snapshot)); err != nil {
		return s.fail(report, domain.StageRestore, err)
	}
	report.State = domain.StateRestored
	report.EndedAt = s.clock.Now()
	s.logger.Info(map[string]any{"path": snapshot.Path}, "host file restored")
	report.FlushErr = multierr.Append(report.FlushErr, s.flush(ctx, "restore"))

	if journaled {
		s.finish(id, domain.OutcomeRestored)
	}
	return report, nil
}

func (s *Scheduler) fail(report Report, stage domain.Stage, err error) (Report, error) {
	report.State = domain.StateFailed
	report.EndedAt = s.clock.Now()
	serr := &domain.SessionError{Stage: stage, Err: err}
	fields := map[string]any{"stage": stage.String(), "error": err.Error()}
	if serr.HostFileModified() {
		fields["host_file_modified"] = true
	}
	s.logger.Error(fields, "session failed")
	return report, serr
}

func (s *Scheduler) flush(ctx context.Context, phase string) error {
	if err := s.flusher.Flush(ctx); err != nil {
		s.logger.Warn(map[string]any{"phase": phase, "error": err.Error()}, "cache flush failed")
		return fmt.Errorf("flush after %s: %w", phase, err)
	}
	s.logger.Debug(map[string]any{"phase": phase}, "cache flushed")
	return nil
}

func (s *Scheduler) warnPending() {
	if s.journal == nil {
		return
	}
	rec, ok, err := s.journal.Pending()
	if err != nil {
		s.logger.Warn(map[string]any{"error": err.Error()}, "journal unreadable")
		return
	}
	if !ok {
		return
	}
	s.logger.Warn(map[string]any{
		"id":         rec.ID,
		"path":       rec.HostsPath,
		"started_at": rec.StartedAt.Format(time.RFC3339),
		"hosts":      len(rec.Hosts),
	}, "previous session did not restore the host file; run 'focus restore' to repair it")
}

func (s *Scheduler) begin(snapshot domain.Snapshot, set domain.BlockSet, d time.Duration) (uint64, bool) {
	if s.journal == nil {
		return 0, false
	}
	id, err := s.journal.Begin(domain.Record{
		HostsPath: snapshot.Path,
		Snapshot:  snapshot.Content,
		Hosts:     set.Hosts(),
		StartedAt: snapshot.TakenAt,
		HoldUntil: snapshot.TakenAt.Add(d),
	})
	if err != nil {
		s.logger.Warn(map[string]any{"error": err.Error()}, "journal write failed; session continues without recovery record")
		return 0, false
	}
	return id, true
}

func (s *Scheduler) finish(id uint64, outcome domain.Outcome) {
	if err := s.journal.Finish(id, outcome, s.clock.Now()); err != nil {
		s.logger.Warn(map[string]any{"id": id, "error": err.Error()}, "journal update failed")
	}
}
