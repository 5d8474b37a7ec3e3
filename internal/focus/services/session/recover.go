package session

import (
	"context"
	"fmt"

	"github.com/albibenni/focus/internal/focus/domain"
)

// Recovery describes what Recover did.
type Recovery struct {
	Record   domain.Record
	Found    bool
	FlushErr error
}

// Recover writes the snapshot of the pending journal entry back to the host
// file, flushes the cache and marks the entry recovered. Without a journal
// or a pending entry it does nothing.
func (s *Scheduler) Recover(ctx context.Context) (Recovery, error) {
	var out Recovery
	if s.journal == nil {
		return out, nil
	}
	rec, ok, err := s.journal.Pending()
	if err != nil {
		return out, fmt.Errorf("reading journal: %w", err)
	}
	if !ok {
		return out, nil
	}
	out.Record = rec
	out.Found = true

	if rec.HostsPath != s.hosts.Path() {
		return out, domain.NewInputError("pending session targets %s but the configured host file is %s", rec.HostsPath, s.hosts.Path())
	}

	snapshot := domain.Snapshot{Path: rec.HostsPath, Content: rec.Snapshot, TakenAt: rec.StartedAt}
	if err := s.hosts.WriteText(s.editor.Restore(snapshot)); err != nil {
		s.logger.Error(map[string]any{"id": rec.ID, "error": err.Error()}, "recovery failed")
		return out, &domain.SessionError{Stage: domain.StageRestore, Err: err}
	}
	s.logger.Info(map[string]any{"id": rec.ID, "path": rec.HostsPath}, "host file recovered")
	out.FlushErr = s.flush(ctx, "recover")
	s.finish(rec.ID, domain.OutcomeRecovered)
	return out, nil
}
