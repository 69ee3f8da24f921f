package models

import "time"

// DetectionState is the binary flag returned by the model.
const (
	StateBenign = 0
	StateSpam   = 1
)

// ModelSpamCutoff is the model-side cutoff applied on top of the binary
// state. This is intentionally a separate knob from the per-group
// GroupPolicy.SpamScoreThreshold used for enforcement; do not unify them.
const ModelSpamCutoff = 80

// DetectionResult is the classifier's verdict for one message. It lives
// only for the duration of that message's processing and is persisted only
// inside a DetectionLog row.
type DetectionResult struct {
	State     int    `json:"state"`
	SpamScore int    `json:"spam_score"`
	Reason    string `json:"spam_reason"`
	MockText  string `json:"spam_mock_text"`
}

// IsSpam reports whether the model flagged the message and scored it at or
// above the fixed model cutoff.
func (r *DetectionResult) IsSpam() bool {
	return r.State == StateSpam && r.SpamScore >= ModelSpamCutoff
}

// DetectionLog represents a row in the append-only 'detection_log' table,
// one per classified message.
type DetectionLog struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	GroupID         int64     `db:"group_id" json:"group_id"`
	Username        string    `db:"username" json:"username"`
	MessageType     string    `db:"message_type" json:"message_type"` // "text" or "photo"
	MessageText     string    `db:"message_text" json:"message_text"`
	SpamScore       int       `db:"spam_score" json:"spam_score"`
	SpamReason      string    `db:"spam_reason" json:"spam_reason"`
	SpamMockText    string    `db:"spam_mock_text" json:"spam_mock_text"`
	IsSpam          bool      `db:"is_spam" json:"is_spam"`
	IsBanned        bool      `db:"is_banned" json:"is_banned"`
	DetectionTimeMs int64     `db:"detection_time_ms" json:"detection_time_ms"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// DailyStats represents a row in the 'daily_stats' table, keyed by
// (group_id, date). All mutations are atomic upserts.
type DailyStats struct {
	GroupID        int64     `db:"group_id" json:"group_id"`
	Date           time.Time `db:"date" json:"date"`
	TotalChecks    int       `db:"total_checks" json:"total_checks"`
	SpamDetected   int       `db:"spam_detected" json:"spam_detected"`
	UsersBanned    int       `db:"users_banned" json:"users_banned"`
	FalsePositives int       `db:"false_positives" json:"false_positives"`
}
