// Package appointments manages the patient's appointment list: fetching
// it from the scheduling service and cancelling entries with optimistic
// local removal.
package appointments

import (
	"context"
	"fmt"
	"sync"

	"github.com/medhub/patient-portal/internal/gateway"
	"github.com/medhub/patient-portal/pkg/logging"
)

// Appointment statuses reported by the scheduling service. StatusBooked
// is synthesized by the local fallback path only.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
	StatusBooked    = "BOOKED"
)

// Appointment is owned by the remote scheduling service; the manager
// holds a local mirror of it.
type Appointment struct {
	ID        int64  `json:"id"`
	DoctorID  int64  `json:"doctorId"`
	PatientID int64  `json:"patientId"`
	Date      string `json:"date"`
	TimeSlot  string `json:"timeSlot"`
	Status    string `json:"status"`
}

// ConfirmFunc is the pre-cancellation gesture supplied by the caller.
// Returning false aborts the cancellation before any network call.
type ConfirmFunc func(id int64) bool

// Manager fetches the patient's appointments and performs cancellation.
// The local mirror is the source of truth between explicit listings.
type Manager struct {
	channel *gateway.Channel
	logger  *logging.Logger

	mu     sync.Mutex
	mirror []Appointment
}

// NewManager creates a lifecycle manager over the scheduling channel.
func NewManager(channel *gateway.Channel, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{channel: channel, logger: logger}
}

// List fetches the caller's appointments and replaces the local mirror on
// success. Failures leave the mirror untouched and are returned to the
// caller; initial load and refresh share the same policy.
func (m *Manager) List(ctx context.Context) ([]Appointment, error) {
	var appts []Appointment
	if err := m.channel.GetJSON(ctx, "/appointments", &appts); err != nil {
		m.logger.Error("fetching appointments failed", "error", err)
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	m.mu.Lock()
	m.mirror = appts
	m.mu.Unlock()
	return m.Mirror(), nil
}

// Mirror returns a copy of the locally held appointment list.
func (m *Manager) Mirror() []Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Appointment, len(m.mirror))
	copy(out, m.mirror)
	return out
}

// Cancel posts a cancellation for the given appointment after the
// caller-supplied confirmation gesture. On success exactly the matching
// entry is removed from the mirror; on failure the mirror is unchanged
// and the error is surfaced. No re-fetch is performed.
func (m *Manager) Cancel(ctx context.Context, id int64, confirm ConfirmFunc) error {
	if confirm != nil && !confirm(id) {
		m.logger.Debug("cancellation declined", "appointment_id", id)
		return nil
	}

	body := map[string]int64{"id": id}
	if err := m.channel.PostJSON(ctx, "/appointments/cancel", body, nil); err != nil {
		m.logger.Error("cancellation failed", "appointment_id", id, "error", err)
		return fmt.Errorf("cancel appointment %d: %w", id, err)
	}

	m.mu.Lock()
	kept := m.mirror[:0]
	for _, a := range m.mirror {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	m.mirror = kept
	m.mu.Unlock()

	m.logger.Info("appointment cancelled", "appointment_id", id)
	return nil
}
