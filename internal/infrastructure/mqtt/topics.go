package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the Gift Relay MQTT hierarchy.
//
// Most topics use the flat scheme giftrelay/{category}/{name}; stream
// event topics carry an extra identity level so instances following
// different upstream users stay isolated on a shared broker.
const (
	// TopicPrefix is the base for all Gift Relay topics.
	TopicPrefix = "giftrelay"

	// TopicPrefixEvent is the base for upstream stream events.
	TopicPrefixEvent = "giftrelay/event"

	// TopicPrefixCommand is the base for relay command topics.
	TopicPrefixCommand = "giftrelay/command"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "giftrelay/system"
)

// Topics provides builders for Gift Relay MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	giftTopic := topics.EventGift("nyala_live")
//	// Returns: "giftrelay/event/nyala_live/gift"
type Topics struct{}

// EventGift returns the topic carrying gift events for the given
// upstream identity. Scoping by identity lets several instances share
// a broker without crossing streams.
//
// Example: giftrelay/event/nyala_live/gift
func (Topics) EventGift(identity string) string {
	return fmt.Sprintf("%s/%s/gift", TopicPrefixEvent, sanitizeIdentity(identity))
}

// EventConnect returns the topic carrying stream connection
// notifications for the given upstream identity.
//
// Example: giftrelay/event/nyala_live/connect
func (Topics) EventConnect(identity string) string {
	return fmt.Sprintf("%s/%s/connect", TopicPrefixEvent, sanitizeIdentity(identity))
}

// sanitizeIdentity makes an upstream username safe as a single topic
// level. MQTT reserves /, + and # in topic names.
func sanitizeIdentity(identity string) string {
	identity = strings.TrimSpace(identity)
	replacer := strings.NewReplacer("/", "-", "+", "-", "#", "-", " ", "-")
	return replacer.Replace(identity)
}

// CommandSent returns the topic where dispatched relay commands are
// mirrored for external observers.
//
// Example: giftrelay/command/sent
func (Topics) CommandSent() string {
	return fmt.Sprintf("%s/sent", TopicPrefixCommand)
}

// SystemStatus returns the system status topic.
//
// Example: giftrelay/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: giftrelay/system/shutdown
func (Topics) SystemShutdown() string {
	return fmt.Sprintf("%s/shutdown", TopicPrefixSystem)
}

// AllEvents returns a pattern matching all stream event topics across
// every identity.
//
// Pattern: giftrelay/event/#
func (Topics) AllEvents() string {
	return fmt.Sprintf("%s/#", TopicPrefixEvent)
}

// AllTopics returns a pattern matching all Gift Relay topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: giftrelay/#
func (Topics) AllTopics() string {
	return "giftrelay/#"
}
