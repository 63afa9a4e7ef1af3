package models

import "github.com/google/uuid"

// NewParticipantID returns a fresh stable identifier for callers that
// construct a Participant without an existing stable key (e.g. no
// pre-existing plugin-assigned id for the scoring node). Callers that
// already have a stable identifier — the common case, since ids must
// stay the same across rebuilds for addresses to remain comparable —
// should use that instead of calling this.
func NewParticipantID() string {
	return uuid.New().String()
}
