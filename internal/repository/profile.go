package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"antispam/internal/models"
)

type RiskProfileRepository interface {
	GetOrCreateProfile(userID, groupID int64, username, firstName string) (*models.RiskProfile, error)
	IncrementSpeechCount(userID, groupID int64) error
	MarkVerified(userID, groupID int64) error
}

type riskProfileRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewRiskProfileRepository(db *sqlx.DB, logger *zap.Logger) RiskProfileRepository {
	return &riskProfileRepository{db: db, logger: logger}
}

const selectProfile = `SELECT user_id, group_id, username, first_name, joined_time,
                              number_of_speeches, verification_times, is_verified
                       FROM risk_profile WHERE user_id = $1 AND group_id = $2`

// GetOrCreateProfile returns the profile for (user, group), creating it with
// joined_time = NOW() when the user has not been seen before.
func (r *riskProfileRepository) GetOrCreateProfile(userID, groupID int64, username, firstName string) (*models.RiskProfile, error) {
	var profile models.RiskProfile
	err := r.db.Get(&profile, selectProfile, userID, groupID)
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Two concurrent first messages can race here; the conflict clause makes
	// the second insert a no-op and the re-select returns the winner's row.
	insert := `INSERT INTO risk_profile (user_id, group_id, username, first_name, joined_time)
	           VALUES ($1, $2, $3, $4, NOW())
	           ON CONFLICT (user_id, group_id) DO NOTHING`
	if _, err := r.db.Exec(insert, userID, groupID, username, firstName); err != nil {
		r.logger.Error("Failed to create risk profile",
			zap.Int64("user_id", userID),
			zap.Int64("group_id", groupID),
			zap.Error(err))
		return nil, err
	}

	if err := r.db.Get(&profile, selectProfile, userID, groupID); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *riskProfileRepository) IncrementSpeechCount(userID, groupID int64) error {
	query := `UPDATE risk_profile
	          SET number_of_speeches = number_of_speeches + 1
	          WHERE user_id = $1 AND group_id = $2`
	if _, err := r.db.Exec(query, userID, groupID); err != nil {
		r.logger.Error("Failed to increment speech count",
			zap.Int64("user_id", userID),
			zap.Int64("group_id", groupID),
			zap.Error(err))
		return err
	}
	return nil
}

// MarkVerified bumps the verification pass counter and sets is_verified in
// one statement. is_verified is never unset by the pipeline.
func (r *riskProfileRepository) MarkVerified(userID, groupID int64) error {
	query := `UPDATE risk_profile
	          SET verification_times = verification_times + 1,
	              is_verified = TRUE
	          WHERE user_id = $1 AND group_id = $2`
	if _, err := r.db.Exec(query, userID, groupID); err != nil {
		r.logger.Error("Failed to mark user verified",
			zap.Int64("user_id", userID),
			zap.Int64("group_id", groupID),
			zap.Error(err))
		return err
	}
	return nil
}
