package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetectionResultIsSpam(t *testing.T) {
	tests := []struct {
		name  string
		state int
		score int
		want  bool
	}{
		{"flagged at cutoff", StateSpam, 80, true},
		{"flagged above cutoff", StateSpam, 95, true},
		{"flagged below cutoff", StateSpam, 79, false},
		{"benign with high score", StateBenign, 95, false},
		{"benign with low score", StateBenign, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DetectionResult{State: tt.state, SpamScore: tt.score}
			assert.Equal(t, tt.want, r.IsSpam())
		})
	}
}

func TestDaysSinceJoin(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	p := &RiskProfile{}
	assert.Equal(t, -1, p.DaysSinceJoin(now), "unknown join time")

	joined := now.Add(-49 * time.Hour)
	p.JoinedTime = &joined
	assert.Equal(t, 2, p.DaysSinceJoin(now), "partial days truncate")

	joined = now
	assert.Equal(t, 0, p.DaysSinceJoin(now))
}

func TestDisplayName(t *testing.T) {
	p := &RiskProfile{Username: "alice", FirstName: "Alice"}
	assert.Equal(t, "alice", p.DisplayName())

	p.Username = ""
	assert.Equal(t, "Alice", p.DisplayName())
}

func TestDefaultGroupPolicy(t *testing.T) {
	p := DefaultGroupPolicy(123)
	assert.Equal(t, int64(123), p.GroupID)
	assert.True(t, p.Enabled)
	assert.Equal(t, 80, p.SpamScoreThreshold)
	assert.Equal(t, 3, p.JoinedTimeThresholdDays)
	assert.Equal(t, 3, p.SpeechCountThreshold)
	assert.Equal(t, 1, p.VerificationTimesThreshold)
}
