package domain

import "time"

// ReportedStatus is the health an agent reports about itself.
type ReportedStatus string

const (
	ReportedHealthy   ReportedStatus = "HEALTHY"
	ReportedUnhealthy ReportedStatus = "UNHEALTHY"
)

func (s ReportedStatus) String() string { return string(s) }

func (s ReportedStatus) IsValid() bool {
	switch s {
	case ReportedHealthy, ReportedUnhealthy:
		return true
	}
	return false
}

// MappingStatus translates reported health into routing status.
func (s ReportedStatus) MappingStatus() MappingStatus {
	if s == ReportedHealthy {
		return MappingStatusActive
	}
	return MappingStatusInactive
}

// HealthReport is a self-reported health signal from an agent.
type HealthReport struct {
	Address        string
	ReportedStatus ReportedStatus
	Details        map[string]any
	Timestamp      *time.Time
}
