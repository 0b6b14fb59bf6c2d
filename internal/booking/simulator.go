package booking

import (
	"context"
	"math/rand"
	"time"

	"github.com/medhub/patient-portal/internal/appointments"
)

// Simulator is the offline booking responder used when the scheduling
// service fails with a non-conflict error.
type Simulator interface {
	Book(ctx context.Context, req Request) (*appointments.Appointment, error)
}

// LocalSimulator manufactures a successful booking after a fixed delay,
// echoing the submitted fields with a synthesized id and BOOKED status.
type LocalSimulator struct {
	delay time.Duration
	newID func() int64
}

// NewLocalSimulator creates a simulator with the given response delay.
func NewLocalSimulator(delay time.Duration) *LocalSimulator {
	return &LocalSimulator{
		delay: delay,
		newID: func() int64 { return rand.Int63n(1000) + 1 },
	}
}

func (s *LocalSimulator) Book(ctx context.Context, req Request) (*appointments.Appointment, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	patientID := req.PatientID
	if patientID == 0 {
		patientID = 1
	}
	return &appointments.Appointment{
		ID:        s.newID(),
		DoctorID:  req.DoctorID,
		PatientID: patientID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		Status:    appointments.StatusBooked,
	}, nil
}
