// Package booking drives the appointment submission state machine:
// primary attempt against the scheduling service, conflict detection,
// and a single fallback attempt against a local simulator when the
// backend is unreachable.
package booking

import (
	"errors"
	"fmt"
)

// Validation errors for incomplete or malformed requests. These are
// boundary checks; a well-behaved caller disables submission until all
// fields are present.
var (
	ErrMissingDoctor   = errors.New("doctor is required")
	ErrMissingDate     = errors.New("date is required")
	ErrMissingTimeSlot = errors.New("time slot is required")
)

// timeSlots is the fixed half-hour schedule: 09:00-12:00 and 14:00-17:00.
var timeSlots = []string{
	"09:00-09:30", "09:30-10:00", "10:00-10:30", "10:30-11:00",
	"11:00-11:30", "11:30-12:00", "14:00-14:30", "14:30-15:00",
	"15:00-15:30", "15:30-16:00", "16:00-16:30", "16:30-17:00",
}

// TimeSlots returns the valid booking slots in display order.
func TimeSlots() []string {
	out := make([]string, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// ValidTimeSlot reports whether s is one of the twelve fixed slots.
func ValidTimeSlot(s string) bool {
	for _, slot := range timeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Request is one appointment submission. PatientID is optional in user
// input; the orchestrator merges it from the session token when absent.
type Request struct {
	DoctorID  int64  `json:"doctorId"`
	Date      string `json:"date"`
	TimeSlot  string `json:"timeSlot"`
	PatientID int64  `json:"patientId,omitempty"`
}

// Validate checks the three required fields and the slot enumeration.
func (r Request) Validate() error {
	if r.DoctorID <= 0 {
		return ErrMissingDoctor
	}
	if r.Date == "" {
		return ErrMissingDate
	}
	if r.TimeSlot == "" {
		return ErrMissingTimeSlot
	}
	if !ValidTimeSlot(r.TimeSlot) {
		return fmt.Errorf("invalid time slot %q", r.TimeSlot)
	}
	return nil
}
