package policy

// Action identifies which relays the actuator should activate.
//
// The values are the literal strings the ESP32 firmware expects in the
// "relay" field of the command payload.
type Action string

const (
	// ActionPrimary activates relay 1 only.
	ActionPrimary Action = "relay1nyala"

	// ActionAll activates every relay.
	ActionAll Action = "semuarelaynyala"

	// ActionSecondary activates relay 2 only.
	ActionSecondary Action = "relay2nyala"
)

// Command is a single timed actuation derived from a gift score.
type Command struct {
	// Action selects which relays to activate.
	Action Action `json:"action"`

	// Duration is how long the relays stay on, in seconds. Always > 0.
	Duration int `json:"duration"`
}

// band is one row of the threshold table. Bands are evaluated low-to-high
// and the first band whose Max is >= score wins.
type band struct {
	max      int // inclusive upper bound of the score range
	action   Action
	duration int
}

// bands is the canonical threshold table. The final entry handles every
// score above the last bounded band.
var bands = []band{
	{max: 2, action: ActionPrimary, duration: 1},
	{max: 19, action: ActionAll, duration: 2},
	{max: 50, action: ActionAll, duration: 3},
	{max: 100, action: ActionPrimary, duration: 4},
	{max: 200, action: ActionSecondary, duration: 5},
	{max: 500, action: ActionAll, duration: 7},
}

// topBand applies to any score above the highest bounded band.
var topBand = band{action: ActionAll, duration: 10}

// Decide maps a score to a Command.
//
// Decide is total: every integer score, including negatives, selects
// exactly one band. Negative scores clamp to the lowest band.
func Decide(score int) Command {
	for _, b := range bands {
		if score <= b.max {
			return Command{Action: b.action, Duration: b.duration}
		}
	}
	return Command{Action: topBand.action, Duration: topBand.duration}
}
