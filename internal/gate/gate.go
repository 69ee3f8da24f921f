// Package gate decides whether a message is worth an expensive
// classification call at all.
package gate

import (
	"time"

	"antispam/internal/models"
)

// ShouldCheck reports whether the user's message must be sent to the
// detector. The gate is an OR of disqualifying conditions: any one unmet
// threshold forces a check. It deliberately over-checks rather than ever
// skipping an under-vetted user.
func ShouldCheck(profile *models.RiskProfile, policy *models.GroupPolicy, now time.Time) bool {
	if profile.IsVerified {
		return false
	}

	// Unknown join time means the user predates tracking; always check.
	if profile.JoinedTime == nil {
		return true
	}

	if profile.DaysSinceJoin(now) < policy.JoinedTimeThresholdDays {
		return true
	}
	if profile.NumberOfSpeeches < policy.SpeechCountThreshold {
		return true
	}
	if profile.VerificationTimes < policy.VerificationTimesThreshold {
		return true
	}

	return false
}
