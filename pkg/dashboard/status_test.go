package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTotal(t *testing.T) {
	tests := []struct {
		raw   string
		want  StatusBucket
		color string
	}{
		{"passed", StatusPassed, "ACCEPTED"},
		{"PASSED ", StatusPassed, "ACCEPTED"},
		{"ko'rik", StatusReview, "WARNING"},
		{"korik", StatusReview, "WARNING"},
		{"manual_review", StatusReview, "WARNING"},
		{"failed", StatusFailed, "REJECTED"},
		{"fail", StatusFailed, "REJECTED"},
		{"rejected", StatusFailed, "REJECTED"},
		{"", StatusReview, "WARNING"},
		{"whatever the portal invents next", StatusReview, "WARNING"},
	}
	for _, tt := range tests {
		got := Normalize(tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
		assert.Equal(t, tt.color, got.ColorToken(), "raw=%q", tt.raw)
	}
}

func TestRankOrdering(t *testing.T) {
	assert.Greater(t, StatusPassed.Rank(), StatusReview.Rank())
	assert.Greater(t, StatusReview.Rank(), StatusFailed.Rank())
	assert.Greater(t, StatusFailed.Rank(), StatusBucket("junk").Rank())
}
