package domain

import (
	"strings"
	"time"
)

// MappingStatus is the routing status of an agent mapping.
type MappingStatus string

const (
	MappingStatusActive   MappingStatus = "ACTIVE"
	MappingStatusInactive MappingStatus = "INACTIVE"
)

func (s MappingStatus) String() string { return string(s) }

func (s MappingStatus) IsValid() bool {
	switch s {
	case MappingStatusActive, MappingStatusInactive:
		return true
	}
	return false
}

// DestinationType identifies the kind of bus resource an inbox name refers to.
type DestinationType string

const (
	DestinationTypeBusTopic DestinationType = "BUS_TOPIC"
)

func (d DestinationType) String() string { return string(d) }

func (d DestinationType) IsValid() bool {
	return d == DestinationTypeBusTopic
}

// AgentMapping binds an agent address to its inbox and routing status.
type AgentMapping struct {
	Address           string
	DestinationType   DestinationType
	InboxName         string
	Status            MappingStatus
	RegisteredAt      time.Time
	LastUpdatedAt     time.Time
	LastHealthCheckAt *time.Time
	UpdatedBy         *string
	Description       *string
	OwnerTeam         *string
}

// Routable reports whether the mapping has everything the router needs to publish.
func (m *AgentMapping) Routable() bool {
	return m.Status == MappingStatusActive && strings.TrimSpace(m.InboxName) != ""
}

// MappingPatch lists the mutable fields of a mapping. Nil means untouched.
// LastHealthCheckAt is only set by health reconciliation, never by clients.
type MappingPatch struct {
	DestinationType   *DestinationType
	InboxName         *string
	Status            *MappingStatus
	Description       *string
	OwnerTeam         *string
	LastHealthCheckAt *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p MappingPatch) IsEmpty() bool {
	return p.DestinationType == nil &&
		p.InboxName == nil &&
		p.Status == nil &&
		p.Description == nil &&
		p.OwnerTeam == nil &&
		p.LastHealthCheckAt == nil
}

// Apply returns a copy of m with the patch applied.
func (p MappingPatch) Apply(m AgentMapping) AgentMapping {
	if p.DestinationType != nil {
		m.DestinationType = *p.DestinationType
	}
	if p.InboxName != nil {
		m.InboxName = *p.InboxName
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.Description != nil {
		m.Description = NullIfEmpty(*p.Description)
	}
	if p.OwnerTeam != nil {
		m.OwnerTeam = NullIfEmpty(*p.OwnerTeam)
	}
	if p.LastHealthCheckAt != nil {
		t := *p.LastHealthCheckAt
		m.LastHealthCheckAt = &t
	}
	return m
}

// NullIfEmpty returns nil for an empty string and a pointer to s otherwise.
// Metadata patches use an empty string to clear a field.
func NullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MappingFilter narrows a mapping listing.
type MappingFilter struct {
	Status    *MappingStatus
	OwnerTeam *string
	Limit     int
	Offset    int
}

// NextUpdatedAt returns the lastUpdatedAt value for a mutation happening at now.
// The result is strictly after prev so that every mutation advances it, even
// when the wall clock stalls or steps backwards. Postgres stores microseconds.
func NextUpdatedAt(prev, now time.Time) time.Time {
	now = now.UTC().Truncate(time.Microsecond)
	floor := prev.UTC().Add(time.Microsecond)
	if now.Before(floor) {
		return floor
	}
	return now
}
