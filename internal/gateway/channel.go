// Package gateway provides the outbound request channels used to talk to
// the hospital service gateway. Three logically independent channels
// (auth, directory, scheduling) share one configuration; every request is
// stamped with the current session's bearer token and patient id in a
// single authoritative step at send time.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/medhub/patient-portal/internal/observability/metrics"
	"github.com/medhub/patient-portal/internal/session"
	"github.com/medhub/patient-portal/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// Channel names, used as log/metric labels.
const (
	ChannelAuth       = "auth"
	ChannelDirectory  = "directory"
	ChannelScheduling = "scheduling"
)

// Config is shared by all three channels.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Sessions session.Store
	Logger   *logging.Logger
	Metrics  *metrics.ClientMetrics
}

// Channel is an HTTP client scoped to one logical backend area.
type Channel struct {
	name       string
	baseURL    string
	httpClient *http.Client
	sessions   session.Store
	logger     *logging.Logger
	metrics    *metrics.ClientMetrics
	tracer     trace.Tracer
}

// NewAuthChannel returns the channel for /patients endpoints.
func NewAuthChannel(cfg Config) *Channel { return newChannel(ChannelAuth, cfg) }

// NewDirectoryChannel returns the channel for /doctors endpoints.
func NewDirectoryChannel(cfg Config) *Channel { return newChannel(ChannelDirectory, cfg) }

// NewSchedulingChannel returns the channel for /appointments endpoints.
func NewSchedulingChannel(cfg Config) *Channel { return newChannel(ChannelScheduling, cfg) }

func newChannel(name string, cfg Config) *Channel {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Channel{
		name:       name,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		sessions:   cfg.Sessions,
		logger:     logger.With("channel", name),
		metrics:    cfg.Metrics,
		tracer:     otel.Tracer("patient-portal/gateway"),
	}
}

// Name returns the channel identifier.
func (c *Channel) Name() string { return c.name }

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Channel) GetJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST with a JSON body and decodes the response into
// out when out is non-nil.
func (c *Channel) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Channel) doJSON(ctx context.Context, method, path string, body, out any) error {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	ctx, span := c.tracer.Start(ctx, c.name+" "+method)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("gateway.channel", c.name),
		attribute.String("url.path", path),
	)

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	c.attachIdentity(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(c.name, method, "error")
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveRequest(c.name, method, "error")
		return fmt.Errorf("read response: %w", err)
	}

	c.metrics.ObserveRequest(c.name, method, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := apiMessage(respBody)
		c.logger.Warn("gateway non-2xx response",
			"status", resp.StatusCode,
			"method", method,
			"path", path,
		)
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// attachIdentity re-derives auth headers from the stored session at call
// time, so header freshness never depends on an earlier bulk merge.
func (c *Channel) attachIdentity(ctx context.Context, req *http.Request) {
	if c.sessions == nil {
		return
	}
	sess, err := c.sessions.Load(ctx)
	if err != nil {
		c.logger.Warn("session load failed, sending unauthenticated request", "error", err)
		return
	}
	if sess == nil || sess.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	if claims, ok := sess.Claims(); ok && claims.PatientID > 0 {
		req.Header.Set("X-Patient-Id", strconv.FormatInt(claims.PatientID, 10))
	}
}

// apiMessage extracts a human-readable message from an error body,
// preferring the gateway's {"message": ...} / {"error": ...} envelope.
func apiMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}
