// Package dashboard is the display-side view-model over the backend API:
// attendance aggregation counters and ordering, medical status
// normalization, in-memory filtering and CSV/PDF export. It holds no
// network code; rows come from pkg/client.
package dashboard

import "strings"

// StatusBucket is the normalized medical verdict shown on screen.
type StatusBucket string

const (
	StatusPassed StatusBucket = "passed"
	StatusReview StatusBucket = "review"
	StatusFailed StatusBucket = "failed"
)

// Normalize maps the portal's free-text result onto a display bucket. It is
// total: anything unrecognized lands in review so a strange value is flagged
// for a human rather than silently passed or failed.
func Normalize(raw string) StatusBucket {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "passed":
		return StatusPassed
	case "review", "manual_review", "ko'rik", "korik":
		return StatusReview
	case "failed", "fail", "rejected":
		return StatusFailed
	default:
		return StatusReview
	}
}

// ColorToken names the badge style for a bucket. The tokens reuse the event
// status palette so the tables stay visually consistent.
func (b StatusBucket) ColorToken() string {
	switch b {
	case StatusPassed:
		return "ACCEPTED"
	case StatusFailed:
		return "REJECTED"
	default:
		return "WARNING"
	}
}

// Rank orders buckets for picking the decisive exam among same-timestamp
// results: passed=3, review=2, failed=1.
func (b StatusBucket) Rank() int {
	switch b {
	case StatusPassed:
		return 3
	case StatusReview:
		return 2
	case StatusFailed:
		return 1
	default:
		return 0
	}
}
