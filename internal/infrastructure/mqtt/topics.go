package mqtt

import (
	"fmt"
	"strings"
)

// Topic roots.
const (
	// TopicPrefix is the root of every Gray Logic topic.
	TopicPrefix = "graylogic"

	// TopicPrefixSystem holds service-wide topics such as status.
	TopicPrefixSystem = "graylogic/system"

	// tiltSuffix is appended to a command topic for tilt position commands.
	tiltSuffix = "tilt"
)

// Topics builds the MQTT topics used by the service.
//
//	mqtt.Topics{}.BridgeCommand("wevolor", "abc-1-cov")
//	// graylogic/command/wevolor/abc-1-cov
type Topics struct{}

// BridgeCommand returns the command topic of one entity.
//
// Example: graylogic/command/wevolor/abc-1-cov
func (Topics) BridgeCommand(protocol, address string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, protocol, address)
}

// BridgeTiltCommand returns the tilt position topic of one cover.
//
// Example: graylogic/command/wevolor/abc-1-cov/tilt
func (t Topics) BridgeTiltCommand(protocol, address string) string {
	return t.BridgeCommand(protocol, address) + "/" + tiltSuffix
}

// AllBridgeCommands matches every command topic of protocol, tilt
// topics included.
//
// Pattern: graylogic/command/wevolor/#
func (Topics) AllBridgeCommands(protocol string) string {
	return fmt.Sprintf("%s/command/%s/#", TopicPrefix, protocol)
}

// ParseBridgeCommand splits a topic matched by AllBridgeCommands into
// the entity address and whether it is the tilt topic.
func (Topics) ParseBridgeCommand(protocol, topic string) (address string, tilt bool, ok bool) {
	prefix := fmt.Sprintf("%s/command/%s/", TopicPrefix, protocol)
	rest, found := strings.CutPrefix(topic, prefix)
	if !found || rest == "" {
		return "", false, false
	}
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1:
		return parts[0], false, true
	case len(parts) == 2 && parts[1] == tiltSuffix && parts[0] != "":
		return parts[0], true, true
	}
	return "", false, false
}

// SystemStatus returns the retained service status topic.
//
// Example: graylogic/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// Discovery returns a Home Assistant discovery config topic. nodeID and
// objectID are sanitised with TopicID.
//
// Example: homeassistant/cover/wevolor_abc/abc-1-cov/config
func (Topics) Discovery(prefix, component, nodeID, objectID string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", prefix, component, TopicID(nodeID), TopicID(objectID))
}

// TopicID lowercases s and replaces every character outside
// [a-z0-9_-] with an underscore so it is safe as a topic level.
func TopicID(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, strings.ToLower(s))
}
