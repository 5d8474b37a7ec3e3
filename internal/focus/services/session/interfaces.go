package session

import (
	"context"
	"time"

	"github.com/albibenni/focus/internal/focus/domain"
)

type Resolver interface {
	Resolve(tokens []string) (domain.BlockSet, error)
}

// HostsFile is the read-text / write-text capability over the host file.
type HostsFile interface {
	Path() string
	ReadText() (string, error)
	WriteText(content string) error
}

type Editor interface {
	Apply(content string, set domain.BlockSet) string
	Restore(snapshot domain.Snapshot) string
}

type Flusher interface {
	Flush(ctx context.Context) error
}

// Journal records snapshots for recovery. Optional.
type Journal interface {
	Begin(r domain.Record) (uint64, error)
	Finish(id uint64, outcome domain.Outcome, at time.Time) error
	Pending() (domain.Record, bool, error)
}
