// Package gatewaysim is an in-process rendition of the hospital service
// gateway (patient, doctor, and appointment services) for development
// and end-to-end tests. It issues real HS256 tokens, serves the seeded
// doctor catalog, and enforces slot-conflict semantics the way the
// production scheduling service does.
package gatewaysim

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medhub/patient-portal/internal/appointments"
	"github.com/medhub/patient-portal/internal/booking"
	"github.com/medhub/patient-portal/internal/directory"
	httpmiddleware "github.com/medhub/patient-portal/internal/http/middleware"
	"github.com/medhub/patient-portal/internal/identity"
	"github.com/medhub/patient-portal/pkg/logging"
)

// Config holds simulator settings.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	Logger    *logging.Logger
}

type patientRecord struct {
	ID       int64
	Name     string
	Email    string
	Password string
}

// Server implements the gateway API surface in memory.
type Server struct {
	cfg    Config
	logger *logging.Logger

	mu            sync.Mutex
	patients      map[string]*patientRecord
	nextPatientID int64
	appts         map[int64]*appointments.Appointment
	nextApptID    int64
	doctors       []directory.Doctor
}

// New creates a simulator seeded with the built-in doctor catalog.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	return &Server{
		cfg:           cfg,
		logger:        cfg.Logger,
		patients:      make(map[string]*patientRecord),
		nextPatientID: 1,
		appts:         make(map[int64]*appointments.Appointment),
		nextApptID:    1,
		doctors:       directory.BuiltinCatalog(),
	}
}

// Routes returns the gateway HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(s.logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/patients/register", s.handleRegister)
	r.Post("/patients/login", s.handleLogin)
	r.Get("/doctors", s.handleDoctors)
	r.Post("/appointments/book", s.handleBook)
	r.Get("/appointments", s.handleList)
	r.Post("/appointments/cancel", s.handleCancel)

	return r
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(strings.TrimSpace(body.Name)) < 2 {
		writeError(w, http.StatusBadRequest, "name must be at least 2 characters")
		return
	}
	if !strings.Contains(body.Email, "@") || !strings.Contains(body.Email, ".") {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(body.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.patients[body.Email]; exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	p := &patientRecord{
		ID:       s.nextPatientID,
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	}
	s.nextPatientID++
	s.patients[body.Email] = p

	writeJSON(w, http.StatusCreated, map[string]any{"id": p.ID, "name": p.Name})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	p, ok := s.patients[body.Email]
	s.mu.Unlock()
	if !ok || p.Password != body.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	now := time.Now()
	claims := &identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
		PatientID: p.ID,
		Name:      p.Name,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token, "name": p.Name})
}

func (s *Server) handleDoctors(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	doctors := make([]directory.Doctor, len(s.doctors))
	copy(doctors, s.doctors)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, doctors)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var req booking.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Header identity wins over the body field, matching the gateway.
	if patientID := s.patientID(r); patientID > 0 {
		req.PatientID = patientID
	}
	if req.PatientID == 0 {
		writeError(w, http.StatusBadRequest, "patient identity missing")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.appts {
		if a.DoctorID == req.DoctorID && a.Date == req.Date && a.TimeSlot == req.TimeSlot && a.Status != appointments.StatusCancelled {
			writeError(w, http.StatusConflict, "time slot already booked")
			return
		}
	}

	appt := &appointments.Appointment{
		ID:        s.nextApptID,
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		Status:    appointments.StatusConfirmed,
	}
	s.nextApptID++
	s.appts[appt.ID] = appt

	writeJSON(w, http.StatusOK, appt)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	patientID := s.patientID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]appointments.Appointment, 0)
	if patientID > 0 {
		for _, a := range s.appts {
			if a.PatientID == patientID {
				out = append(out, *a)
			}
		}
	}
	sortAppointments(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	appt, ok := s.appts[body.ID]
	if !ok {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}
	appt.Status = appointments.StatusCancelled
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// patientID resolves the caller's identity: the X-Patient-Id header when
// present, otherwise the verified bearer token.
func (s *Server) patientID(r *http.Request) int64 {
	if header := r.Header.Get("X-Patient-Id"); header != "" {
		if id, err := strconv.ParseInt(header, 10, 64); err == nil {
			return id
		}
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return 0
	}
	claims := &identity.Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(auth, "Bearer "), claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0
	}
	return claims.PatientID
}

func sortAppointments(appts []appointments.Appointment) {
	sort.Slice(appts, func(i, j int) bool { return appts[i].ID < appts[j].ID })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
