package scanner

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Default scan parameters. These match the scanner configuration defaults
// and bound the worst-case scan to timeout x hosts / concurrency.
const (
	// DefaultConcurrency is the worker pool width for probing.
	DefaultConcurrency = 50

	// DefaultProbeTimeout bounds each individual probe.
	DefaultProbeTimeout = 2 * time.Second

	// hostCount is the number of host suffixes probed in a /24 (1..254).
	hostCount = 254
)

// externalProbeAddr is the well-known address dialed to learn which local
// interface the kernel routes outbound traffic through. UDP dial does not
// exchange any packets at the application layer.
const externalProbeAddr = "8.8.8.8:80"

// Logger defines the logging interface for the scanner.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Scanner probes a /24 subnet for relay controller candidates.
type Scanner struct {
	concurrency  int
	probeTimeout time.Duration
	placeholder  string
	client       *http.Client
	logger       Logger

	// onProgress, if set, is called after each completed probe with the
	// running completion count. Purely a side channel for UIs.
	onProgress func(done, total int)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithConcurrency sets the worker pool width (minimum 1).
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithProbeTimeout sets the per-probe timeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.probeTimeout = d
		}
	}
}

// WithPlaceholderName sets the fallback device name used when a probe
// response yields no extractable name.
func WithPlaceholderName(name string) Option {
	return func(s *Scanner) {
		if name != "" {
			s.placeholder = name
		}
	}
}

// WithLogger sets the scanner logger.
func WithLogger(logger Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProgress sets the progress side channel.
func WithProgress(fn func(done, total int)) Option {
	return func(s *Scanner) {
		s.onProgress = fn
	}
}

// WithHTTPClient overrides the HTTP client used for probes. Mainly for
// tests; the default client disables keep-alives to avoid holding 254
// idle connections.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scanner) {
		if client != nil {
			s.client = client
		}
	}
}

// New creates a Scanner with the given options.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		concurrency:  DefaultConcurrency,
		probeTimeout: DefaultProbeTimeout,
		placeholder:  DefaultDeviceName,
		logger:       noopLogger{},
		client: &http.Client{
			Transport: &http.Transport{
				DisableKeepAlives:   true,
				MaxIdleConnsPerHost: 1,
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LocalSubnet determines the local /24 prefix (e.g. "192.168.1") by
// opening an outbound UDP socket to a well-known external address and
// reading the local endpoint the kernel selected. No application-layer
// packets are exchanged.
//
// Returns:
//   - string: Local IP address of the routing-selected interface
//   - string: The /24 prefix of that address
//   - error: If no route is available
func LocalSubnet() (localIP, prefix string, err error) {
	conn, err := net.Dial("udp", externalProbeAddr)
	if err != nil {
		return "", "", fmt.Errorf("determining local subnet: %w", err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", "", ErrNoLocalAddress
	}

	localIP = addr.IP.String()
	parts := strings.Split(localIP, ".")
	if len(parts) != 4 {
		return "", "", fmt.Errorf("%w: %q", ErrNoLocalAddress, localIP)
	}

	return localIP, strings.Join(parts[:3], "."), nil
}

// Scan probes every host in the subnet (suffixes 1..254) concurrently and
// returns the stable-partitioned result: matched candidates first, in
// completion order, followed by unmatched ones.
//
// Scan blocks until all probes complete. Individual probe failures and
// timeouts are normal negative outcomes and never abort the scan.
//
// Parameters:
//   - ctx: Context bounding the whole scan
//   - prefix: The /24 prefix to scan (e.g. "192.168.1")
//
// Returns:
//   - ScanResult: All responding hosts, matches first
//   - error: Only if the context is cancelled before completion
func (s *Scanner) Scan(ctx context.Context, prefix string) (ScanResult, error) {
	s.logger.Info("scanning subnet",
		"prefix", prefix,
		"hosts", hostCount,
		"concurrency", s.concurrency,
		"probe_timeout", s.probeTimeout,
	)

	var (
		mu    sync.Mutex
		found []Candidate
		done  int
		wg    sync.WaitGroup
	)
	sem := make(chan struct{}, s.concurrency)

	for suffix := 1; suffix <= hostCount; suffix++ {
		ip := fmt.Sprintf("%s.%d", prefix, suffix)

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			candidate, err := Probe(ctx, s.client, ip, s.probeTimeout, s.placeholder)
			if err != nil {
				s.logger.Debug("probe error", "ip", ip, "error", err)
			}

			mu.Lock()
			if candidate != nil {
				found = append(found, *candidate)
			}
			done++
			completed := done
			mu.Unlock()

			if s.onProgress != nil {
				s.onProgress(completed, hostCount)
			}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return ScanResult{}, fmt.Errorf("scan interrupted: %w", err)
	}

	result := partition(found)
	s.logger.Info("scan complete",
		"responding", len(result.Candidates),
		"matches", len(result.Matches()),
	)

	return result, nil
}

// partition orders candidates with all matches before all non-matches,
// preserving the relative order within each group.
func partition(candidates []Candidate) ScanResult {
	ordered := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.IsMatch {
			ordered = append(ordered, c)
		}
	}
	for _, c := range candidates {
		if !c.IsMatch {
			ordered = append(ordered, c)
		}
	}
	return ScanResult{Candidates: ordered}
}
