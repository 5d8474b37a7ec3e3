package domain

import "time"

// Outcome is how a journaled session ended.
type Outcome string

const (
	// OutcomePending: the session started and has not restored the host file yet.
	OutcomePending Outcome = "pending"
	// OutcomeRestored: the session restored its snapshot.
	OutcomeRestored Outcome = "restored"
	// OutcomeRecovered: a later run wrote the snapshot back.
	OutcomeRecovered Outcome = "recovered"
)

// Record is what the journal keeps about one session: enough to put the
// host file back if the process dies during the hold.
type Record struct {
	ID        uint64    `json:"id"`
	HostsPath string    `json:"hosts_path"`
	Snapshot  string    `json:"snapshot"`
	Hosts     []string  `json:"hosts"`
	StartedAt time.Time `json:"started_at"`
	HoldUntil time.Time `json:"hold_until"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
	Outcome   Outcome   `json:"outcome"`
}
