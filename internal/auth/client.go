// Package auth handles patient login, registration, and logout against
// the patient service, and owns the session lifecycle around them.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/medhub/patient-portal/internal/gateway"
	"github.com/medhub/patient-portal/internal/session"
	"github.com/medhub/patient-portal/pkg/logging"
)

// Client wraps the auth channel and session store.
type Client struct {
	channel  *gateway.Channel
	sessions session.Store
	logger   *logging.Logger
}

// NewClient creates an auth client.
func NewClient(channel *gateway.Channel, sessions session.Store, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{channel: channel, sessions: sessions, logger: logger}
}

type loginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// Login authenticates the patient and persists a fresh session. An
// existing session is overwritten, not merged.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var resp loginResponse
	if err := c.channel.PostJSON(ctx, "/patients/login", body, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, errors.New("login: gateway returned no token")
	}

	sess := &session.Session{Token: resp.Token, PatientName: resp.Name}
	if err := c.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	c.logger.Info("patient logged in", "patient_id", sess.PatientID())
	return sess, nil
}

// Register creates a patient account. It does not log the patient in.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.channel.PostJSON(ctx, "/patients/register", body, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout clears the persisted session entirely.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.logger.Info("session cleared")
	return nil
}
