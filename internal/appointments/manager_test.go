package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhub/patient-portal/internal/gateway"
	"github.com/medhub/patient-portal/internal/session"
	"github.com/medhub/patient-portal/pkg/logging"
)

func newTestManager(t *testing.T, handler http.HandlerFunc) *Manager {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	ch := gateway.NewSchedulingChannel(gateway.Config{
		BaseURL:  ts.URL,
		Sessions: session.NewMemoryStore(),
		Logger:   logging.New("error"),
	})
	return NewManager(ch, logging.New("error"))
}

func confirmAlways(int64) bool { return true }

func TestListReplacesMirror(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/appointments", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":1,"doctorId":3,"patientId":42,"date":"2030-01-01","timeSlot":"09:00-09:30","status":"CONFIRMED"},
			{"id":2,"doctorId":5,"patientId":42,"date":"2030-01-02","timeSlot":"14:00-14:30","status":"PENDING"}
		]`))
	})

	appts, err := m.List(context.Background())
	require.NoError(t, err)
	require.Len(t, appts, 2)
	assert.Equal(t, StatusConfirmed, appts[0].Status)
	assert.Len(t, m.Mirror(), 2)
}

func TestListFailureLeavesMirror(t *testing.T) {
	var fail atomic.Bool
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"doctorId":3,"patientId":42,"date":"2030-01-01","timeSlot":"09:00-09:30","status":"CONFIRMED"}]`))
	})

	_, err := m.List(context.Background())
	require.NoError(t, err)

	fail.Store(true)
	_, err = m.List(context.Background())
	require.Error(t, err)
	assert.Len(t, m.Mirror(), 1, "mirror must survive a failed refresh")
}

func TestCancelRemovesExactlyOne(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/appointments":
			_, _ = w.Write([]byte(`[
				{"id":1,"doctorId":3,"patientId":42,"date":"2030-01-01","timeSlot":"09:00-09:30","status":"CONFIRMED"},
				{"id":2,"doctorId":5,"patientId":42,"date":"2030-01-02","timeSlot":"14:00-14:30","status":"PENDING"},
				{"id":3,"doctorId":7,"patientId":42,"date":"2030-01-03","timeSlot":"15:00-15:30","status":"PENDING"}
			]`))
		case "/appointments/cancel":
			_, _ = w.Write([]byte(`{"status":"cancelled"}`))
		default:
			http.NotFound(w, r)
		}
	})

	_, err := m.List(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Cancel(context.Background(), 2, confirmAlways))

	mirror := m.Mirror()
	require.Len(t, mirror, 2)
	assert.Equal(t, int64(1), mirror[0].ID)
	assert.Equal(t, int64(3), mirror[1].ID)
}

func TestCancelFailureLeavesMirrorUnchanged(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/appointments":
			_, _ = w.Write([]byte(`[{"id":1,"doctorId":3,"patientId":42,"date":"2030-01-01","timeSlot":"09:00-09:30","status":"CONFIRMED"}]`))
		case "/appointments/cancel":
			http.NotFound(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	_, err := m.List(context.Background())
	require.NoError(t, err)

	err = m.Cancel(context.Background(), 1, confirmAlways)
	require.Error(t, err)
	assert.Len(t, m.Mirror(), 1)
}

func TestCancelDeclinedMakesNoNetworkCall(t *testing.T) {
	var calls atomic.Int64
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/appointments/cancel" {
			calls.Add(1)
		}
		_, _ = w.Write([]byte(`{}`))
	})

	err := m.Cancel(context.Background(), 1, func(int64) bool { return false })
	require.NoError(t, err)
	assert.Zero(t, calls.Load())
}

func TestCancelSendsID(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/appointments/cancel" {
			var body map[string]int64
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, int64(17), body["id"])
		}
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, m.Cancel(context.Background(), 17, nil))
}
