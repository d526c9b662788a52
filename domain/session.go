package domain

// SessionID identifies one scheduled interview pairing a candidate
// with a company for a given job listing.
type SessionID string

// Session carries the metadata needed to scope a chat view.
type Session struct {
	ID           SessionID
	JobListingID string
	CandidateID  string
	CompanyID    string
}
