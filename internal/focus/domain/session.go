package domain

import (
	"fmt"
	"time"
)

// State is a position in the session lifecycle.
type State uint8

const (
	StateIdle State = iota
	StateResolved
	StateApplied
	StateHolding
	StateRestored
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolved:
		return "resolved"
	case StateApplied:
		return "applied"
	case StateHolding:
		return "holding"
	case StateRestored:
		return "restored"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Stage identifies the step that failed a session.
type Stage uint8

const (
	// StageSnapshot: the host file could not be read; nothing was modified.
	StageSnapshot Stage = iota + 1
	// StageApply: writing the blocked content failed; the file may be partially written.
	StageApply
	// StageRestore: writing the snapshot back failed; the file stays blocked.
	StageRestore
)

func (s Stage) String() string {
	switch s {
	case StageSnapshot:
		return "snapshot"
	case StageApply:
		return "apply"
	case StageRestore:
		return "restore"
	default:
		return fmt.Sprintf("Stage(%d)", s)
	}
}

// Snapshot is the verbatim content of the host file captured before a session mutates it.
type Snapshot struct {
	Path    string
	Content string
	TakenAt time.Time
}

// HoldDuration converts a whole number of minutes into the session hold.
// minutes must not exceed MaxMinutes.
func HoldDuration(minutes uint) time.Duration {
	return time.Duration(minutes) * 60 * time.Second
}
