package models

import "time"

// RiskProfile represents a row in the 'risk_profile' table, keyed by
// (user_id, group_id). Created lazily on the first observed message or join
// event. IsVerified is monotonic: once set, the pipeline never unsets it.
type RiskProfile struct {
	UserID            int64      `db:"user_id" json:"user_id"`
	GroupID           int64      `db:"group_id" json:"group_id"`
	Username          string     `db:"username" json:"username"`
	FirstName         string     `db:"first_name" json:"first_name"`
	JoinedTime        *time.Time `db:"joined_time" json:"joined_time,omitempty"` // Nullable: unknown join date
	NumberOfSpeeches  int        `db:"number_of_speeches" json:"number_of_speeches"`
	VerificationTimes int        `db:"verification_times" json:"verification_times"`
	IsVerified        bool       `db:"is_verified" json:"is_verified"`
}

// DaysSinceJoin returns full days elapsed since the user joined, or -1 when
// the join time is unknown.
func (p *RiskProfile) DaysSinceJoin(now time.Time) int {
	if p.JoinedTime == nil {
		return -1
	}
	return int(now.Sub(*p.JoinedTime).Hours() / 24)
}

// DisplayName returns the username when present, the first name otherwise.
func (p *RiskProfile) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}
	return p.FirstName
}
