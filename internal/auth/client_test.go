package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhub/patient-portal/internal/gateway"
	"github.com/medhub/patient-portal/internal/session"
	"github.com/medhub/patient-portal/pkg/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, sessions session.Store) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	ch := gateway.NewAuthChannel(gateway.Config{
		BaseURL:  ts.URL,
		Sessions: sessions,
		Logger:   logging.New("error"),
	})
	return NewClient(ch, sessions, logging.New("error"))
}

func TestLoginPersistsSession(t *testing.T) {
	sessions := session.NewMemoryStore()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/patients/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice@example.com", body["email"])
		_, _ = w.Write([]byte(`{"token":"tok-abc","name":"Alice"}`))
	}, sessions)

	sess, err := c.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", sess.Token)
	assert.Equal(t, "Alice", sess.PatientName)

	stored, err := sessions.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "tok-abc", stored.Token)
}

func TestLoginOverwritesExistingSession(t *testing.T) {
	sessions := session.NewMemoryStore()
	require.NoError(t, sessions.Save(context.Background(), &session.Session{Token: "old", PatientName: "Old"}))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"new"}`))
	}, sessions)

	_, err := c.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	stored, err := sessions.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", stored.Token)
	assert.Empty(t, stored.PatientName, "last write wins, no merge")
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	sessions := session.NewMemoryStore()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad credentials"}`, http.StatusUnauthorized)
	}, sessions)

	_, err := c.Login(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)

	stored, err := sessions.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestLoginEmptyTokenRejected(t *testing.T) {
	sessions := session.NewMemoryStore()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Alice"}`))
	}, sessions)

	_, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/patients/register", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Bob", body["name"])
		w.WriteHeader(http.StatusCreated)
	}, session.NewMemoryStore())

	require.NoError(t, c.Register(context.Background(), "Bob", "bob@example.com", "pw"))
}

func TestLogoutClearsSession(t *testing.T) {
	sessions := session.NewMemoryStore()
	require.NoError(t, sessions.Save(context.Background(), &session.Session{Token: "tok"}))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("logout must not hit the network")
	}, sessions)

	require.NoError(t, c.Logout(context.Background()))
	stored, err := sessions.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}
