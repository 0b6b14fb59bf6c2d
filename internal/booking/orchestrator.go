package booking

import (
	"context"
	"time"

	"github.com/medhub/patient-portal/internal/appointments"
	"github.com/medhub/patient-portal/internal/gateway"
	"github.com/medhub/patient-portal/internal/observability/metrics"
	"github.com/medhub/patient-portal/internal/session"
	"github.com/medhub/patient-portal/pkg/logging"
)

// State is the terminal state of one submission attempt.
type State string

const (
	StateSuccess  State = "SUCCESS"
	StateConflict State = "CONFLICT"
	StateFailed   State = "FAILED"
)

// User-facing messages for the terminal states.
const (
	MsgBooked   = "Appointment booked successfully! Redirecting..."
	MsgConflict = "This time slot is already booked. Please choose another time."
	MsgFailed   = "Booking failed. Please try again."
)

// Result is the outcome of one submission. Fallback is set when the
// appointment came from the local simulator rather than the scheduling
// service. RedirectAfter is the post-success navigation delay.
type Result struct {
	State         State
	Message       string
	Appointment   *appointments.Appointment
	Fallback      bool
	RedirectAfter time.Duration
}

// Orchestrator submits appointment requests as an explicit two-stage
// pipeline: attempt primary, classify into success/conflict/other, and
// only on "other" invoke the simulator once. A conflict never reaches
// the fallback stage.
type Orchestrator struct {
	scheduling    *gateway.Channel
	sessions      session.Store
	simulator     Simulator
	logger        *logging.Logger
	metrics       *metrics.ClientMetrics
	redirectDelay time.Duration
}

// NewOrchestrator creates a booking orchestrator. redirectDelay is the
// delay advertised to the caller after a successful booking.
func NewOrchestrator(scheduling *gateway.Channel, sessions session.Store, sim Simulator, logger *logging.Logger, m *metrics.ClientMetrics, redirectDelay time.Duration) *Orchestrator {
	if logger == nil {
		logger = logging.Default()
	}
	if redirectDelay <= 0 {
		redirectDelay = 2 * time.Second
	}
	return &Orchestrator{
		scheduling:    scheduling,
		sessions:      sessions,
		simulator:     sim,
		logger:        logger,
		metrics:       m,
		redirectDelay: redirectDelay,
	}
}

// Submit runs one booking attempt to a terminal state. Submissions are
// not deduplicated client-side; a duplicate slot is expected to come
// back as a conflict from the backend.
func (o *Orchestrator) Submit(ctx context.Context, req Request) Result {
	if err := req.Validate(); err != nil {
		return Result{State: StateFailed, Message: err.Error()}
	}

	// Redundant identity in the body, in case a proxy hop drops the
	// X-Patient-Id header between here and the scheduling service.
	if req.PatientID == 0 {
		req.PatientID = o.sessionPatientID(ctx)
	}

	var appt appointments.Appointment
	err := o.scheduling.PostJSON(ctx, "/appointments/book", req, &appt)
	switch {
	case err == nil:
		o.logger.Info("appointment booked",
			"appointment_id", appt.ID,
			"doctor_id", req.DoctorID,
			"time_slot", req.TimeSlot,
		)
		return Result{State: StateSuccess, Message: MsgBooked, Appointment: &appt, RedirectAfter: o.redirectDelay}
	case gateway.IsConflict(err):
		o.logger.Info("booking conflict",
			"doctor_id", req.DoctorID,
			"date", req.Date,
			"time_slot", req.TimeSlot,
		)
		return Result{State: StateConflict, Message: MsgConflict}
	}

	o.logger.Warn("scheduling service unavailable, attempting simulated booking", "error", err)
	o.metrics.ObserveFallback(metrics.FallbackBookingSimulator)

	sim, simErr := o.simulator.Book(ctx, req)
	switch {
	case simErr == nil:
		return Result{State: StateSuccess, Message: MsgBooked, Appointment: sim, Fallback: true, RedirectAfter: o.redirectDelay}
	case gateway.IsConflict(simErr):
		// Reserved for responder parity; the local simulator itself
		// never reports conflicts.
		return Result{State: StateConflict, Message: MsgConflict}
	default:
		o.logger.Error("simulated booking failed", "error", simErr)
		return Result{State: StateFailed, Message: MsgFailed}
	}
}

func (o *Orchestrator) sessionPatientID(ctx context.Context) int64 {
	if o.sessions == nil {
		return 0
	}
	sess, err := o.sessions.Load(ctx)
	if err != nil || sess == nil {
		return 0
	}
	return sess.PatientID()
}
