package health

import (
	"fmt"
	"strings"
	"time"
)

// Policy decides whether a health report may overwrite the stored state.
type Policy string

const (
	// PolicyReceiptOrder applies every report; the last one received wins.
	PolicyReceiptOrder Policy = "receipt_order"
	// PolicyLatestTimestamp ignores reports older than the stored health check time.
	PolicyLatestTimestamp Policy = "latest_timestamp"
)

// ParsePolicy maps a config value to a Policy. Empty selects PolicyReceiptOrder.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyReceiptOrder, nil
	case PolicyReceiptOrder, PolicyLatestTimestamp:
		return p, nil
	default:
		return "", fmt.Errorf("unknown health policy %q", s)
	}
}

func (p Policy) String() string { return string(p) }

// accepts reports whether a report effective at ts may be applied on top of
// a record last checked at stored.
func (p Policy) accepts(stored *time.Time, ts time.Time) bool {
	if p != PolicyLatestTimestamp || stored == nil {
		return true
	}
	return !ts.Before(*stored)
}
