// Package domain contains core concepts of the interview chat.
// This file defines Message and sender identity rules.
// Message identity is immutable; only content may change, and only
// through its original sender.
package domain

import (
	"time"
)

// Role is the display role attached to every sender.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCompany Role = "company"
	RoleUser    Role = "user"
)

// ParseRole maps a wire value to a Role, falling back to RoleUser for
// anything unrecognized so a rendering layer always has something to show.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleCompany, RoleUser:
		return Role(s)
	}
	return RoleUser
}

// Sender identifies the author of a message.
type Sender struct {
	ID   string
	Role Role
}

// Message represents one chat entry. The ID is assigned by the server
// and stays stable across edits.
type Message struct {
	ID        string
	Sender    Sender
	Content   string
	CreatedAt time.Time
}

// Before reports whether m sorts ahead of other.
// The ordering key is creation time with the ID as tiebreak.
func (m Message) Before(other Message) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.ID < other.ID
	}
	return m.CreatedAt.Before(other.CreatedAt)
}
