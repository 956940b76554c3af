package scanner

// Candidate is a single responding host found during a scan.
//
// Candidates are created by Probe and never mutated afterwards.
type Candidate struct {
	// IP is the dotted-quad address of the host.
	IP string `json:"ip"`

	// StatusCode is the HTTP status returned by the probe GET.
	StatusCode int `json:"status_code"`

	// IsMatch reports whether any device indicator was found in the
	// response body or headers.
	IsMatch bool `json:"is_match"`

	// DeviceName is the best-effort display name extracted from the
	// response (see extractDeviceName for the fallback chain).
	DeviceName string `json:"device_name"`

	// Indicators lists the matched vocabulary entries in first-seen
	// order, duplicates suppressed.
	Indicators []string `json:"indicators"`
}

// ScanResult is the ordered outcome of a full subnet scan.
//
// All matched candidates precede all unmatched ones (stable partition);
// this ordering drives the 1-based numbering of the selection menu.
type ScanResult struct {
	// Candidates holds every responding host, matches first.
	Candidates []Candidate `json:"candidates"`
}

// Matches returns the candidates with IsMatch set.
func (r ScanResult) Matches() []Candidate {
	var out []Candidate
	for _, c := range r.Candidates {
		if c.IsMatch {
			out = append(out, c)
		}
	}
	return out
}

// Empty reports whether the scan found no responding hosts at all.
func (r ScanResult) Empty() bool {
	return len(r.Candidates) == 0
}
