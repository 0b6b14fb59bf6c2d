// Package identity extracts patient claims from session tokens for
// propagation on outbound gateway requests.
package identity

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the payload of a patient session token. The token is
// signed by the patient service; this side only reads the claims and
// forwards them, it never establishes trust from them.
type Claims struct {
	jwt.RegisteredClaims
	PatientID int64  `json:"patientId,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Decode parses the token payload without verifying the signature.
// Malformed base64, invalid JSON, or a missing segment all yield
// (nil, false); callers treat that as "no identity available".
func Decode(token string) (*Claims, bool) {
	if strings.TrimSpace(token) == "" {
		return nil, false
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
