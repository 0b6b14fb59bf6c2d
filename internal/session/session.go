// Package session holds the authenticated patient session and its
// persistence. The session is an explicit object with create/clear
// lifecycle; a later login overwrites an earlier one (last-write-wins).
package session

import (
	"context"

	"github.com/medhub/patient-portal/internal/identity"
)

// Session is the persisted state of an authenticated patient: the raw
// bearer token plus the display name returned at login.
type Session struct {
	Token       string `json:"token"`
	PatientName string `json:"patient_name,omitempty"`
}

// Claims decodes the identity claims carried by the session token.
// A missing or malformed token means "no identity", not an error.
func (s *Session) Claims() (*identity.Claims, bool) {
	if s == nil {
		return nil, false
	}
	return identity.Decode(s.Token)
}

// PatientID returns the patient id from the token claims, or 0 when the
// token is absent or carries none.
func (s *Session) PatientID() int64 {
	claims, ok := s.Claims()
	if !ok {
		return 0
	}
	return claims.PatientID
}

// Store persists the current session. Load returns (nil, nil) when no
// session exists.
type Store interface {
	Save(ctx context.Context, sess *Session) error
	Load(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
}
