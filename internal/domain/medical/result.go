package medical

import "strings"

// ResultBucket is the closed set of display buckets an exam result maps to.
type ResultBucket string

const (
	ResultPassed ResultBucket = "passed"
	ResultReview ResultBucket = "review"
	ResultFailed ResultBucket = "failed"
)

// NormalizeResult maps the free-text result field emitted by the portal onto
// exactly one bucket. The portal has been observed emitting English and Uzbek
// variants; anything unrecognized falls to review so an unreadable result is
// never silently treated as passed.
func NormalizeResult(raw string) ResultBucket {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "passed":
		return ResultPassed
	case "review", "manual_review", "ko'rik", "korik":
		return ResultReview
	case "failed", "fail", "rejected":
		return ResultFailed
	default:
		return ResultReview
	}
}

// ResultRank orders results for latest-exam tie-breaking: a definite pass
// outranks a review, which outranks a fail; unparseable results rank lowest.
func ResultRank(raw string) int {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "passed":
		return 3
	case "review", "manual_review", "ko'rik", "korik":
		return 2
	case "failed", "fail", "rejected":
		return 1
	default:
		return 0
	}
}
