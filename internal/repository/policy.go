package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"antispam/internal/models"
)

type GroupPolicyRepository interface {
	GetPolicy(groupID int64) (*models.GroupPolicy, error)
	IsGroupEnabled(groupID int64) (bool, error)
	EnableGroup(groupID int64) error
	DisableGroup(groupID int64) error
	UpdatePolicy(policy *models.GroupPolicy) error
	GetAllEnabledGroups() ([]int64, error)
}

type groupPolicyRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewGroupPolicyRepository(db *sqlx.DB, logger *zap.Logger) GroupPolicyRepository {
	return &groupPolicyRepository{db: db, logger: logger}
}

// GetPolicy returns the group's policy, or nil when the group has never
// been enabled.
func (r *groupPolicyRepository) GetPolicy(groupID int64) (*models.GroupPolicy, error) {
	var policy models.GroupPolicy
	query := `SELECT group_id, enabled, check_text, check_photo, spam_score_threshold,
	                 joined_time_threshold_days, speech_count_threshold,
	                 verification_times_threshold, auto_delete_delay_seconds
	          FROM group_policy WHERE group_id = $1`
	err := r.db.Get(&policy, query, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (r *groupPolicyRepository) IsGroupEnabled(groupID int64) (bool, error) {
	var enabled bool
	query := `SELECT enabled FROM group_policy WHERE group_id = $1`
	err := r.db.Get(&enabled, query, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return enabled, nil
}

// EnableGroup creates the policy row with defaults on first enable, or
// flips enabled back on for an existing row.
func (r *groupPolicyRepository) EnableGroup(groupID int64) error {
	p := models.DefaultGroupPolicy(groupID)
	query := `INSERT INTO group_policy
	            (group_id, enabled, check_text, check_photo, spam_score_threshold,
	             joined_time_threshold_days, speech_count_threshold,
	             verification_times_threshold, auto_delete_delay_seconds)
	          VALUES ($1, TRUE, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (group_id) DO UPDATE SET enabled = TRUE`
	_, err := r.db.Exec(query, p.GroupID, p.CheckText, p.CheckPhoto, p.SpamScoreThreshold,
		p.JoinedTimeThresholdDays, p.SpeechCountThreshold,
		p.VerificationTimesThreshold, p.AutoDeleteDelaySeconds)
	if err != nil {
		r.logger.Error("Failed to enable group", zap.Int64("group_id", groupID), zap.Error(err))
		return err
	}
	r.logger.Info("Enabled anti-spam for group", zap.Int64("group_id", groupID))
	return nil
}

// DisableGroup keeps the row and its thresholds, only turning the pipeline off.
func (r *groupPolicyRepository) DisableGroup(groupID int64) error {
	query := `UPDATE group_policy SET enabled = FALSE WHERE group_id = $1`
	_, err := r.db.Exec(query, groupID)
	if err != nil {
		r.logger.Error("Failed to disable group", zap.Int64("group_id", groupID), zap.Error(err))
		return err
	}
	r.logger.Info("Disabled anti-spam for group", zap.Int64("group_id", groupID))
	return nil
}

func (r *groupPolicyRepository) UpdatePolicy(policy *models.GroupPolicy) error {
	query := `UPDATE group_policy
	          SET check_text = $1, check_photo = $2, spam_score_threshold = $3,
	              joined_time_threshold_days = $4, speech_count_threshold = $5,
	              verification_times_threshold = $6, auto_delete_delay_seconds = $7
	          WHERE group_id = $8`
	result, err := r.db.Exec(query, policy.CheckText, policy.CheckPhoto, policy.SpamScoreThreshold,
		policy.JoinedTimeThresholdDays, policy.SpeechCountThreshold,
		policy.VerificationTimesThreshold, policy.AutoDeleteDelaySeconds, policy.GroupID)
	if err != nil {
		r.logger.Error("Failed to update policy", zap.Int64("group_id", policy.GroupID), zap.Error(err))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *groupPolicyRepository) GetAllEnabledGroups() ([]int64, error) {
	var groups []int64
	query := `SELECT group_id FROM group_policy WHERE enabled = TRUE`
	if err := r.db.Select(&groups, query); err != nil {
		return nil, err
	}
	return groups, nil
}
