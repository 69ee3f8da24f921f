// Package detector talks to an OpenAI-compatible chat-completions API to
// classify messages as spam.
package detector

import (
	"context"
	"time"

	"antispam/internal/models"
)

// Summary is the risk-profile digest surfaced to the model alongside the
// message content.
type Summary struct {
	DaysSinceJoin int
	SpeechCount   int
	Username      string
	FirstName     string
	RiskFactors   []string
}

// NewSummary builds the model-facing digest from a stored profile.
// riskFactors carries optional account-origin flags from the caller.
func NewSummary(profile *models.RiskProfile, now time.Time, riskFactors []string) Summary {
	days := profile.DaysSinceJoin(now)
	if days < 0 {
		days = 0
	}
	return Summary{
		DaysSinceJoin: days,
		SpeechCount:   profile.NumberOfSpeeches,
		Username:      profile.Username,
		FirstName:     profile.FirstName,
		RiskFactors:   riskFactors,
	}
}

// Detector is the classifier consumed by the pipeline. Both calls may take
// multiple seconds and must never run on the message-delivery path. A nil
// result with a non-nil error means detection failed; callers take no
// enforcement action in that case. The millisecond value is the observed
// latency and is populated on success and on failure.
type Detector interface {
	DetectText(ctx context.Context, text string, summary Summary) (*models.DetectionResult, int64, error)
	DetectPhoto(ctx context.Context, photoURL string, summary Summary, caption string) (*models.DetectionResult, int64, error)
}
