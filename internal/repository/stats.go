package repository

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"antispam/internal/models"
)

type StatsRepository interface {
	RecordCheck(groupID int64, spamDetected, userBanned bool) error
	RecordFalsePositive(groupID int64) error
	GetGroupStats(groupID int64, days int) ([]*models.DailyStats, error)
}

type statsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewStatsRepository(db *sqlx.DB, logger *zap.Logger) StatsRepository {
	return &statsRepository{db: db, logger: logger}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RecordCheck upserts the current day's counters in one atomic statement.
// Each call represents exactly one classified message.
func (r *statsRepository) RecordCheck(groupID int64, spamDetected, userBanned bool) error {
	query := `INSERT INTO daily_stats (group_id, date, total_checks, spam_detected, users_banned, false_positives)
	          VALUES ($1, CURRENT_DATE, 1, $2, $3, 0)
	          ON CONFLICT (group_id, date) DO UPDATE SET
	            total_checks = daily_stats.total_checks + 1,
	            spam_detected = daily_stats.spam_detected + $2,
	            users_banned = daily_stats.users_banned + $3`
	_, err := r.db.Exec(query, groupID, boolToInt(spamDetected), boolToInt(userBanned))
	if err != nil {
		r.logger.Error("Failed to update daily stats", zap.Int64("group_id", groupID), zap.Error(err))
		return err
	}
	return nil
}

// RecordFalsePositive is invoked only from the admin override flow, after a
// successful platform unban.
func (r *statsRepository) RecordFalsePositive(groupID int64) error {
	query := `INSERT INTO daily_stats (group_id, date, total_checks, spam_detected, users_banned, false_positives)
	          VALUES ($1, CURRENT_DATE, 0, 0, 0, 1)
	          ON CONFLICT (group_id, date) DO UPDATE SET
	            false_positives = daily_stats.false_positives + 1`
	_, err := r.db.Exec(query, groupID)
	if err != nil {
		r.logger.Error("Failed to record false positive", zap.Int64("group_id", groupID), zap.Error(err))
		return err
	}
	return nil
}

func (r *statsRepository) GetGroupStats(groupID int64, days int) ([]*models.DailyStats, error) {
	var stats []*models.DailyStats
	query := `SELECT group_id, date, total_checks, spam_detected, users_banned, false_positives
	          FROM daily_stats
	          WHERE group_id = $1 AND date >= CURRENT_DATE - $2 * INTERVAL '1 day'
	          ORDER BY date DESC`
	if err := r.db.Select(&stats, query, groupID, days); err != nil {
		return nil, err
	}
	return stats, nil
}
