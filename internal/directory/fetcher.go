// Package directory retrieves the doctor listing from the gateway and
// degrades to a built-in catalog when the backend is unavailable, so the
// booking flow stays usable during outages.
package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/medhub/patient-portal/internal/gateway"
	"github.com/medhub/patient-portal/internal/observability/metrics"
	"github.com/medhub/patient-portal/pkg/logging"
)

// Doctor is a read-only record owned by the remote directory service.
type Doctor struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	Availability   string  `json:"availability"`
	Rating         float64 `json:"rating,omitempty"`
	Experience     string  `json:"experience,omitempty"`
}

// Fetcher lists available doctors.
type Fetcher struct {
	channel *gateway.Channel
	logger  *logging.Logger
	metrics *metrics.ClientMetrics
	now     func() time.Time
}

// NewFetcher creates a directory fetcher over the given channel.
func NewFetcher(channel *gateway.Channel, logger *logging.Logger, m *metrics.ClientMetrics) *Fetcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Fetcher{channel: channel, logger: logger, metrics: m, now: time.Now}
}

// Fetch returns the doctor listing. Every call is a fresh attempt with a
// cache-busting parameter; on any failure the built-in catalog is served
// instead of an error, so the listing is never empty.
func (f *Fetcher) Fetch(ctx context.Context) []Doctor {
	path := fmt.Sprintf("/doctors?t=%d", f.now().UnixMilli())

	var doctors []Doctor
	if err := f.channel.GetJSON(ctx, path, &doctors); err != nil {
		f.logger.Warn("doctor directory unavailable, serving built-in catalog", "error", err)
		f.metrics.ObserveFallback(metrics.FallbackDirectoryCatalog)
		return BuiltinCatalog()
	}
	return doctors
}

// BuiltinCatalog returns a fresh copy of the offline doctor catalog.
func BuiltinCatalog() []Doctor {
	return []Doctor{
		{ID: 1, Name: "Dr. Rajesh Kumar", Specialization: "Cardiology", Availability: "Mon-Fri"},
		{ID: 2, Name: "Dr. Priya Sharma", Specialization: "Dermatology", Availability: "Tue-Thu"},
		{ID: 3, Name: "Dr. Amit Patel", Specialization: "Pediatrics", Availability: "Mon-Wed"},
		{ID: 4, Name: "Dr. Meera Reddy", Specialization: "Neurology", Availability: "Wed-Fri"},
		{ID: 5, Name: "Dr. Sanjay Gupta", Specialization: "Orthopedics", Availability: "Mon-Thu"},
		{ID: 6, Name: "Dr. Anjali Desai", Specialization: "Gynecology", Availability: "Tue-Fri"},
		{ID: 7, Name: "Dr. Vikram Singh", Specialization: "Psychiatry", Availability: "Mon-Wed"},
		{ID: 8, Name: "Dr. Kavita Iyer", Specialization: "Ophthalmology", Availability: "Wed-Sat"},
		{ID: 9, Name: "Dr. Arjun Malhotra", Specialization: "ENT", Availability: "Mon-Fri"},
		{ID: 10, Name: "Dr. Sunita Verma", Specialization: "Dentistry", Availability: "Tue-Sat"},
	}
}
