// Package naming derives deterministic bus resource names from agent addresses.
package naming

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultConsumerGroup is the subscription suffix used when none is configured.
const DefaultConsumerGroup = "main-consumer"

const (
	topicPrefix        = "agent-inbox-"
	subscriptionPrefix = "agent-sub-"
	dlqPrefix          = "dlq-agent-inbox-"
)

// Names holds every resource name derived for one address.
type Names struct {
	Sanitized    string `json:"sanitized"`
	Digest       string `json:"digest"`
	Topic        string `json:"topic"`
	Subscription string `json:"subscription"`
	DLQTopic     string `json:"dlqTopic"`
}

// Derive returns the names for address with the default consumer group.
func Derive(address string) Names {
	return DeriveFor(address, DefaultConsumerGroup)
}

// DeriveFor returns the names for address and the given consumer group.
// An empty group falls back to DefaultConsumerGroup.
func DeriveFor(address, group string) Names {
	if group == "" {
		group = DefaultConsumerGroup
	}

	sanitized := Sanitize(address)
	sum := sha256.Sum256([]byte(sanitized))
	digest := hex.EncodeToString(sum[:])

	return Names{
		Sanitized:    sanitized,
		Digest:       digest,
		Topic:        topicPrefix + digest,
		Subscription: subscriptionPrefix + digest + "-" + group,
		DLQTopic:     dlqPrefix + digest,
	}
}

// Sanitize lowercases address, replaces every rune outside [a-z0-9] with '-',
// collapses runs of '-' and trims them from both ends.
func Sanitize(address string) string {
	lower := strings.ToLower(address)

	var b strings.Builder
	b.Grow(len(lower))

	dash := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}

	return strings.Trim(b.String(), "-")
}
