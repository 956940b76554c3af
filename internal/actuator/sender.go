package actuator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nerrad567/gift-relay-core/internal/policy"
)

// Default HTTP parameters for the actuator contract.
const (
	// DefaultSendTimeout bounds a single command POST.
	DefaultSendTimeout = 10 * time.Second

	// commandPath is the firmware's fixed command endpoint.
	commandPath = "/gift"

	// maxResponseSize limits how much of a command response is read.
	maxResponseSize = 4 * 1024
)

// Logger defines the logging interface for the sender.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// AttemptRecorder receives the outcome of every delivery attempt.
// *stats.Session satisfies this.
type AttemptRecorder interface {
	RecordAttempt(ok bool)
}

// commandPayload is the JSON body POSTed to the controller.
type commandPayload struct {
	Relay     string `json:"relay"`
	Waktu     int    `json:"waktu"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
}

// commandResponse is the optional JSON body returned by the controller.
type commandResponse struct {
	Status string `json:"status"`
}

// Sender delivers commands to a single actuator address.
type Sender struct {
	address  string
	client   *http.Client
	timeout  time.Duration
	logger   Logger
	recorder AttemptRecorder
}

// Option configures a Sender.
type Option func(*Sender)

// WithTimeout sets the per-command POST timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the sender logger.
func WithLogger(logger Logger) Option {
	return func(s *Sender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHTTPClient overrides the HTTP client. Mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Sender) {
		if client != nil {
			s.client = client
		}
	}
}

// New creates a Sender for the given actuator address.
//
// Parameters:
//   - address: Dotted-quad or host address of the controller (port 80)
//   - recorder: Receives every attempt outcome (may be nil in tests)
//   - opts: Optional configuration
func New(address string, recorder AttemptRecorder, opts ...Option) *Sender {
	s := &Sender{
		address:  address,
		client:   &http.Client{},
		timeout:  DefaultSendTimeout,
		logger:   noopLogger{},
		recorder: recorder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Address returns the actuator address the sender targets.
func (s *Sender) Address() string {
	return s.address
}

// Send delivers one command to the actuator.
//
// The payload is {"relay", "waktu", "user", "timestamp"} and success is
// exactly HTTP 200; a non-JSON 200 body is still success. Any other
// status, timeout, or transport error is a failure. The attempt is always
// recorded, success or failure, and failures never raise past this
// boundary.
//
// Parameters:
//   - ctx: Context bounding the request (timeout applied on top)
//   - cmd: The relay command to deliver
//   - actor: Display name of the gift sender, echoed to the firmware
//
// Returns:
//   - bool: true if the actuator acknowledged with HTTP 200
func (s *Sender) Send(ctx context.Context, cmd policy.Command, actor string) bool {
	ok, detail := s.deliver(ctx, cmd, actor)

	if s.recorder != nil {
		s.recorder.RecordAttempt(ok)
	}

	if ok {
		s.logger.Info("command delivered",
			"relay", string(cmd.Action),
			"duration_s", cmd.Duration,
			"actor", actor,
			"detail", detail,
		)
	} else {
		s.logger.Warn("command delivery failed",
			"relay", string(cmd.Action),
			"duration_s", cmd.Duration,
			"actor", actor,
			"reason", detail,
		)
	}

	return ok
}

// deliver performs the POST and interprets the response.
func (s *Sender) deliver(ctx context.Context, cmd policy.Command, actor string) (bool, string) {
	payload := commandPayload{
		Relay:     string(cmd.Action),
		Waktu:     cmd.Duration,
		User:      actor,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Sprintf("encoding command: %v", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf("http://%s%s", s.address, commandPath)
	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Sprintf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Sprintf("actuator unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("actuator returned HTTP %d", resp.StatusCode)
	}

	// 200 is success regardless of body; the status field is best-effort.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return true, "ok (response body unreadable)"
	}

	var parsed commandResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil || parsed.Status == "" {
		return true, "ok"
	}
	return true, fmt.Sprintf("ok (status=%s)", parsed.Status)
}

// Reachable issues the startup presence probe (GET /).
//
// A negative outcome is informational only: commands are still attempted
// later, since reachability may change after startup.
func (s *Sender) Reachable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, fmt.Sprintf("http://%s/", s.address), nil)
	if err != nil {
		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	return resp.StatusCode == http.StatusOK
}
