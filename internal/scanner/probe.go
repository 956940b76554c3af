package scanner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// maxProbeBodySize limits how much of a probe response body is read.
// Device landing pages are tiny; anything larger is not interesting.
const maxProbeBodySize = 64 * 1024

// DefaultDeviceName is the placeholder used when no name can be extracted
// from the probe response. The value matches the hostname the target
// firmware announces by default; it carries no semantic meaning and can be
// overridden via scanner config.
const DefaultDeviceName = "esp32-D9AEEC"

// deviceIndicators is the fixed vocabulary used to classify a responder
// as a likely relay controller. Matching is case-insensitive over the
// response body and headers.
var deviceIndicators = []string{
	"esp32", "esp-32", "espressif",
	"arduino", "iot", "relay",
	"tiktok", "gift", "donation",
}

// namePatterns is the display-name extraction chain, tried in priority
// order against the lower-cased response body. First match wins.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<title>(.*?)</title>`),
	regexp.MustCompile(`(?i)<h1>(.*?)</h1>`),
	regexp.MustCompile(`(?i)<h2>(.*?)</h2>`),
	regexp.MustCompile(`(?i)device[_\s]*name["\s]*[:=]["\s]*([^"<>\n]+)`),
	regexp.MustCompile(`(?i)name["\s]*[:=]["\s]*([^"<>\n]+)`),
}

// Probe issues a single bounded-timeout HTTP GET against a host and
// classifies the response.
//
// A connection failure, timeout, or any other transport error is a normal
// negative scan outcome: Probe returns (nil, nil). A Candidate is returned
// for any host that produced an HTTP response, whether or not it matched
// the indicator vocabulary.
//
// Parameters:
//   - ctx: Context bounding the probe (a per-probe timeout is applied on top)
//   - client: Shared HTTP client (connection reuse across probes)
//   - ip: Dotted-quad host address
//   - timeout: Per-probe timeout
//   - placeholder: Device name used when the extraction chain finds nothing
//     (empty means DefaultDeviceName)
func Probe(ctx context.Context, client *http.Client, ip string, timeout time.Duration, placeholder string) (*Candidate, error) {
	if placeholder == "" {
		placeholder = DefaultDeviceName
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, fmt.Sprintf("http://%s/", ip), nil)
	if err != nil {
		return nil, fmt.Errorf("building probe request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		// Unreachable, refused, or timed out: absent, not an error.
		return nil, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBodySize))
	if err != nil {
		return nil, nil
	}

	content := strings.ToLower(string(body))
	headers := strings.ToLower(flattenHeaders(resp.Header))

	candidate := &Candidate{
		IP:         ip,
		StatusCode: resp.StatusCode,
		DeviceName: placeholder,
	}

	seen := make(map[string]bool, len(deviceIndicators))
	for _, indicator := range deviceIndicators {
		if seen[indicator] {
			continue
		}
		if strings.Contains(content, indicator) || strings.Contains(headers, indicator) {
			candidate.IsMatch = true
			candidate.Indicators = append(candidate.Indicators, indicator)
			seen[indicator] = true
		}
	}

	candidate.DeviceName = extractDeviceName(content, resp.Header, placeholder)

	return candidate, nil
}

// extractDeviceName walks the name pattern chain over the response body,
// falling back to the Server header and finally the placeholder.
func extractDeviceName(content string, header http.Header, placeholder string) string {
	for _, pattern := range namePatterns {
		if m := pattern.FindStringSubmatch(content); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				return name
			}
		}
	}

	if server := header.Get("Server"); server != "" {
		return fmt.Sprintf("HTTP Server (%s)", server)
	}

	return placeholder
}

// flattenHeaders renders response headers as a single searchable string.
func flattenHeaders(h http.Header) string {
	var sb strings.Builder
	for key, values := range h {
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(values, ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}
