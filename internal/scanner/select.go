package scanner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Select prompts the operator to choose a candidate from a scan result.
//
// The menu numbering is 1-based over result.Candidates (matches first, per
// the stable partition). Entering 0 requests manual address entry and
// Select returns ErrManualEntry. Invalid indices and non-numeric input are
// rejected and re-prompted without aborting.
//
// Parameters:
//   - r: Input stream (stdin in production, a strings.Reader in tests)
//   - w: Output stream for the menu and prompts
//   - result: Partitioned scan result to choose from
//
// Returns:
//   - Candidate: The chosen candidate
//   - error: ErrManualEntry for sentinel 0, ErrNoSelection if input ends
func Select(r io.Reader, w io.Writer, result ScanResult) (Candidate, error) {
	printMenu(w, result)

	scan := bufio.NewScanner(r)
	for {
		fmt.Fprintf(w, "\nSelect device (1-%d, 0 for manual entry): ", len(result.Candidates))
		if !scan.Scan() {
			return Candidate{}, ErrNoSelection
		}

		input := strings.TrimSpace(scan.Text())
		choice, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(w, "Invalid input %q: enter a number\n", input)
			continue
		}

		if choice == 0 {
			return Candidate{}, ErrManualEntry
		}

		if choice < 1 || choice > len(result.Candidates) {
			fmt.Fprintf(w, "Invalid choice %d: enter 1-%d or 0\n", choice, len(result.Candidates))
			continue
		}

		selected := result.Candidates[choice-1]
		fmt.Fprintf(w, "Selected: %s (%s)\n", selected.DeviceName, selected.IP)
		return selected, nil
	}
}

// printMenu renders the numbered candidate table.
func printMenu(w io.Writer, result ScanResult) {
	fmt.Fprintln(w, "Devices found on network:")
	for i, c := range result.Candidates {
		kind := "HTTP Device"
		if c.IsMatch {
			kind = "ESP32/IoT"
		}
		indicators := "-"
		if len(c.Indicators) > 0 {
			indicators = strings.Join(c.Indicators, ", ")
		}
		fmt.Fprintf(w, "  %d. %-15s %-30s %-12s %s\n", i+1, c.IP, c.DeviceName, kind, indicators)
	}
}

// WriteHandoff writes the selected address as a one-line temporary file
// for the launching wrapper to consume.
func WriteHandoff(path, ip string) error {
	if err := os.WriteFile(path, []byte(ip), 0600); err != nil {
		return fmt.Errorf("writing handoff file: %w", err)
	}
	return nil
}

// ConsumeHandoff reads the selected address from the handoff file and
// deletes it. The file is a narrow one-shot interprocess handoff, never a
// persistent store.
//
// Returns:
//   - string: The address, whitespace-trimmed
//   - error: If the file cannot be read (deletion failures are ignored)
func ConsumeHandoff(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading handoff file: %w", err)
	}
	_ = os.Remove(path)

	return strings.TrimSpace(string(data)), nil
}
