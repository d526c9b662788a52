// Package auth holds the client-side view of the platform credential.
// Token issuance lives elsewhere; this package only inspects claims
// for UX-level identity checks. The gateway and the REST API verify
// every call on their side.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"fairchat/domain"
	"fairchat/errors"
)

// Claims is the payload the platform puts inside its bearer tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Credential is the bearer token bound to a chat view.
type Credential string

func (c Credential) Empty() bool { return c == "" }

// Identity extracts the sender identity carried by the token without
// verifying the signature. The client never trusts this for anything
// beyond showing or hiding affordances.
func (c Credential) Identity() (domain.Sender, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(string(c), &claims); err != nil {
		return domain.Sender{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return domain.Sender{}, fmt.Errorf("%w: missing user_id claim", errors.ErrInvalidToken)
	}
	return domain.Sender{
		ID:   claims.UserID,
		Role: domain.ParseRole(claims.Role),
	}, nil
}
