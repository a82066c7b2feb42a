package vote

import "errors"

// Kind selects which entity/ledger table pair a ballot applies to.
type Kind string

const (
	KindReport  Kind = "report"
	KindComment Kind = "comment"
)

var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidVote = errors.New("invalid vote type: use 1 (upvote), -1 (downvote) or 0 (remove)")

	// ErrConflict is returned when a vote transaction keeps losing to
	// concurrent transactions after the configured number of retries.
	ErrConflict = errors.New("vote transaction conflict")
)

// resolve applies the ballot state machine. previous is the voter's
// current ballot (0 when none), requested the incoming vote type.
// Resubmitting the held vote toggles it off; switching applies the
// difference. The returned resulting value is what the ledger must
// hold afterwards (0 meaning the ledger row is deleted) and delta is
// added to the entity score.
func resolve(previous, requested int) (resulting, delta int) {
	switch {
	case requested == 0:
		return 0, -previous
	case requested == previous:
		// toggle off
		return 0, -previous
	default:
		return requested, requested - previous
	}
}

func validVoteType(v int) bool {
	return v == 0 || v == 1 || v == -1
}
