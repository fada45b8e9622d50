package domain

import "time"

// Journal outcomes.
const (
	JournalOK     = "ok"
	JournalFailed = "failed"
)

// JournalEntry is one audited orchestration write. The journal is
// append-only: with no server-side transaction to lean on, the audit
// trail is how a partially-applied submission is reconstructed.
type JournalEntry struct {
	SessionID  string
	DocumentID int64
	Step       string
	Outcome    string
	Detail     string
	At         time.Time
}
