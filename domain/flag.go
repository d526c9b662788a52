package domain

// Flag marks a candidate for a job listing from the company side.
// At most one live flag exists per (user, job listing) pair; the client
// treats existence as a boolean.
type Flag struct {
	ID           string
	UserID       string
	JobListingID string
}

// FlagPhase is the side-channel state for one (user, job listing) pair.
type FlagPhase int

const (
	FlagUnknown FlagPhase = iota
	FlagChecking
	FlagFlagged
	FlagUnflagged
)

func (p FlagPhase) String() string {
	switch p {
	case FlagChecking:
		return "checking"
	case FlagFlagged:
		return "flagged"
	case FlagUnflagged:
		return "unflagged"
	}
	return "unknown"
}
