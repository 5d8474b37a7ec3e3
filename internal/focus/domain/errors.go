package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInput marks missing or unparsable caller input. Always raised before any file access.
	ErrInput = errors.New("invalid input")
	// ErrFileUnavailable marks a host file or snapshot source that cannot be read.
	ErrFileUnavailable = errors.New("file unavailable")
	// ErrWriteFailure marks a failed write of the host file.
	ErrWriteFailure = errors.New("write failure")
	// ErrCacheFlush marks a failed resolver cache flush. Never fatal to a session.
	ErrCacheFlush = errors.New("cache flush failure")
	// ErrUnknownPreset is an internal invariant violation: presets are only
	// referenced through the fixed catalog.
	ErrUnknownPreset = errors.New("unknown preset")
)

// SessionError reports the stage that terminated a session and its cause.
type SessionError struct {
	Stage Stage
	Err   error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session failed at %s: %v", e.Stage, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// HostFileModified reports whether the failure may have left the host file changed.
func (e *SessionError) HostFileModified() bool {
	return e.Stage == StageApply || e.Stage == StageRestore
}

// NewInputError wraps a formatted message with ErrInput.
func NewInputError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}
