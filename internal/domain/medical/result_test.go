package medical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeResult(t *testing.T) {
	tests := []struct {
		raw  string
		want ResultBucket
	}{
		{"passed", ResultPassed},
		{"PASSED", ResultPassed},
		{"  Passed  ", ResultPassed},
		{"review", ResultReview},
		{"manual_review", ResultReview},
		{"ko'rik", ResultReview},
		{"korik", ResultReview},
		{"failed", ResultFailed},
		{"fail", ResultFailed},
		{"rejected", ResultFailed},
		{"", ResultReview},
		{"что-то странное", ResultReview},
		{"ok", ResultReview},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeResult(tt.raw), "raw=%q", tt.raw)
	}
}

func TestResultRank(t *testing.T) {
	assert.Equal(t, 3, ResultRank("passed"))
	assert.Equal(t, 2, ResultRank("ko'rik"))
	assert.Equal(t, 1, ResultRank("rejected"))
	assert.Equal(t, 0, ResultRank("garbage"))

	// A definite pass always outranks anything unreadable.
	assert.Greater(t, ResultRank("Passed"), ResultRank(""))
}
