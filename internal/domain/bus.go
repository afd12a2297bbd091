package domain

import "time"

// Subscription defaults applied to every agent inbox.
const (
	DefaultAckDeadline         = 10 * time.Second
	DefaultRetention           = 7 * 24 * time.Hour
	DefaultMaxDeliveryAttempts = 5
)

// SubscriptionSpec describes a pull subscription on an agent inbox.
type SubscriptionSpec struct {
	Name                string
	Topic               string
	DeadLetterTopic     string
	AckDeadline         time.Duration
	Retention           time.Duration
	MaxDeliveryAttempts int
}
