package actuator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gift-relay-core/internal/policy"
)

// mockRecorder captures attempt outcomes.
type mockRecorder struct {
	mu        sync.Mutex
	attempted int
	succeeded int
}

func (m *mockRecorder) RecordAttempt(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempted++
	if ok {
		m.succeeded++
	}
}

func senderFor(t *testing.T, srv *httptest.Server, rec AttemptRecorder) *Sender {
	t.Helper()
	address := strings.TrimPrefix(srv.URL, "http://")
	return New(address, rec, WithHTTPClient(srv.Client()), WithTimeout(2*time.Second))
}

func TestSend_Success(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gift" {
			t.Errorf("path = %q, want /gift", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.Write([]byte(`{"status":"activated"}`))
	}))
	defer srv.Close()

	rec := &mockRecorder{}
	s := senderFor(t, srv, rec)

	ok := s.Send(context.Background(), policy.Command{Action: policy.ActionAll, Duration: 2}, "alice")
	if !ok {
		t.Fatal("Send() = false, want true")
	}

	if got["relay"] != "semuarelaynyala" {
		t.Errorf("payload relay = %v, want semuarelaynyala", got["relay"])
	}
	if got["waktu"] != float64(2) {
		t.Errorf("payload waktu = %v, want 2", got["waktu"])
	}
	if got["user"] != "alice" {
		t.Errorf("payload user = %v, want alice", got["user"])
	}
	if ts, ok := got["timestamp"].(string); !ok || ts == "" {
		t.Errorf("payload timestamp missing: %v", got["timestamp"])
	} else if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", ts, err)
	}

	if rec.attempted != 1 || rec.succeeded != 1 {
		t.Errorf("recorder = %d/%d, want 1/1", rec.succeeded, rec.attempted)
	}
}

func TestSend_NonJSON200IsStillSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK!"))
	}))
	defer srv.Close()

	rec := &mockRecorder{}
	s := senderFor(t, srv, rec)

	if !s.Send(context.Background(), policy.Command{Action: policy.ActionPrimary, Duration: 1}, "bob") {
		t.Error("Send() = false for non-JSON 200 body, want true")
	}
	if rec.succeeded != 1 {
		t.Errorf("succeeded = %d, want 1", rec.succeeded)
	}
}

func TestSend_ServerErrorIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	rec := &mockRecorder{}
	s := senderFor(t, srv, rec)

	if s.Send(context.Background(), policy.Command{Action: policy.ActionAll, Duration: 3}, "carol") {
		t.Error("Send() = true for HTTP 500, want false")
	}
	if rec.attempted != 1 || rec.succeeded != 0 {
		t.Errorf("recorder = %d/%d, want 0/1", rec.succeeded, rec.attempted)
	}
}

func TestSend_UnreachableIsFailure(t *testing.T) {
	rec := &mockRecorder{}
	s := New("192.0.2.5", rec, WithTimeout(50*time.Millisecond))

	if s.Send(context.Background(), policy.Command{Action: policy.ActionAll, Duration: 2}, "dave") {
		t.Error("Send() = true for unreachable actuator, want false")
	}
	if rec.attempted != 1 || rec.succeeded != 0 {
		t.Errorf("recorder = %d/%d, want 0/1", rec.succeeded, rec.attempted)
	}
}

func TestReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("esp32"))
	}))
	defer srv.Close()

	s := senderFor(t, srv, nil)
	if !s.Reachable(context.Background()) {
		t.Error("Reachable() = false for responding actuator, want true")
	}

	down := New("192.0.2.5", nil, WithTimeout(50*time.Millisecond))
	if down.Reachable(context.Background()) {
		t.Error("Reachable() = true for unreachable actuator, want false")
	}
}
