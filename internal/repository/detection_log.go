package repository

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"antispam/internal/models"
)

type DetectionLogRepository interface {
	SaveLog(log *models.DetectionLog) error
	GetRecent(groupID int64, limit int) ([]*models.DetectionLog, error)
}

type detectionLogRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewDetectionLogRepository(db *sqlx.DB, logger *zap.Logger) DetectionLogRepository {
	return &detectionLogRepository{db: db, logger: logger}
}

// SaveLog appends one audit row per classified message. Rows are never
// mutated or deleted.
func (r *detectionLogRepository) SaveLog(log *models.DetectionLog) error {
	query := `INSERT INTO detection_log
	            (user_id, group_id, username, message_type, message_text,
	             spam_score, spam_reason, spam_mock_text, is_spam, is_banned,
	             detection_time_ms)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id, created_at`
	err := r.db.QueryRowx(query, log.UserID, log.GroupID, log.Username, log.MessageType,
		log.MessageText, log.SpamScore, log.SpamReason, log.SpamMockText,
		log.IsSpam, log.IsBanned, log.DetectionTimeMs).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to save detection log",
			zap.Int64("user_id", log.UserID),
			zap.Int64("group_id", log.GroupID),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *detectionLogRepository) GetRecent(groupID int64, limit int) ([]*models.DetectionLog, error) {
	var logs []*models.DetectionLog
	query := `SELECT id, user_id, group_id, username, message_type, message_text,
	                 spam_score, spam_reason, spam_mock_text, is_spam, is_banned,
	                 detection_time_ms, created_at
	          FROM detection_log
	          WHERE group_id = $1
	          ORDER BY created_at DESC
	          LIMIT $2`
	if err := r.db.Select(&logs, query, groupID, limit); err != nil {
		return nil, err
	}
	return logs, nil
}
