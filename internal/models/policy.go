package models

// GroupPolicy represents a row in the 'group_policy' table. One row per
// group; created on the first enable call and never physically deleted
// (disabling sets Enabled to false).
type GroupPolicy struct {
	GroupID                    int64 `db:"group_id" json:"group_id"`
	Enabled                    bool  `db:"enabled" json:"enabled"`
	CheckText                  bool  `db:"check_text" json:"check_text"`
	CheckPhoto                 bool  `db:"check_photo" json:"check_photo"`
	SpamScoreThreshold         int   `db:"spam_score_threshold" json:"spam_score_threshold"`
	JoinedTimeThresholdDays    int   `db:"joined_time_threshold_days" json:"joined_time_threshold_days"`
	SpeechCountThreshold       int   `db:"speech_count_threshold" json:"speech_count_threshold"`
	VerificationTimesThreshold int   `db:"verification_times_threshold" json:"verification_times_threshold"`
	AutoDeleteDelaySeconds     int   `db:"auto_delete_delay_seconds" json:"auto_delete_delay_seconds"`
}

// DefaultGroupPolicy returns the policy applied when a group is enabled for
// the first time.
func DefaultGroupPolicy(groupID int64) *GroupPolicy {
	return &GroupPolicy{
		GroupID:                    groupID,
		Enabled:                    true,
		CheckText:                  true,
		CheckPhoto:                 true,
		SpamScoreThreshold:         80,
		JoinedTimeThresholdDays:    3,
		SpeechCountThreshold:       3,
		VerificationTimesThreshold: 1,
		AutoDeleteDelaySeconds:     120,
	}
}
