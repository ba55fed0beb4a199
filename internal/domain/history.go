package domain

import "time"

// HistoryEventKind names the lifecycle event recorded by a transition.
type HistoryEventKind string

const (
	HistoryCreated               HistoryEventKind = "CREATED"
	HistoryAllocated             HistoryEventKind = "ALLOCATED"
	HistoryMarkedForReview       HistoryEventKind = "MARKED_FOR_REVIEW"
	HistoryApprovedAndClosed     HistoryEventKind = "APPROVED_AND_CLOSED"
	HistoryReallocatedToG1       HistoryEventKind = "REALLOCATED_TO_G1"
	HistoryReallocatedToSameTeam HistoryEventKind = "REALLOCATED_TO_SAME_TEAM"
)

// HistoryEvent is a write-once audit record. Entries are ordered by
// insertion; the timestamp is informational only.
type HistoryEvent struct {
	Event     HistoryEventKind `json:"event"`
	Actor     string           `json:"actor"`
	Role      Role             `json:"role"`
	TeamID    *string          `json:"team_id,omitempty"`
	TeamName  *string          `json:"team_name,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// History is the ordered, append-only audit trail of a ticket. The only
// exposed mutation is Append, which returns a new value and never aliases
// the receiver's backing array, so earlier snapshots stay intact.
type History []HistoryEvent

// Append returns a copy of the history with the event added at the end.
func (h History) Append(event HistoryEvent) History {
	next := make(History, len(h), len(h)+1)
	copy(next, h)
	return append(next, event)
}
