// Package enforcer turns a classifier verdict into platform actions,
// degrading gracefully when individual actions are rejected.
package enforcer

import (
	"fmt"

	"go.uber.org/zap"

	"antispam/internal/callback"
	"antispam/internal/models"
	"antispam/internal/repository"
)

// Platform is the narrow slice of the chat platform the pipeline consumes.
// The tgbotapi adapter implements it; tests use fakes.
type Platform interface {
	DeleteMessage(groupID int64, messageID int) error
	BanMember(groupID, userID int64) error
	UnbanMember(groupID, userID int64) error
	// GetMemberRole does a fresh role lookup; callers must not cache it.
	GetMemberRole(groupID, userID int64) (string, error)
	// SendMessage returns the sent message's id. control may be nil.
	SendMessage(groupID int64, text string, control *Control) (int, error)
	EditMessage(groupID int64, messageID int, text string) error
}

// Control describes one inline button attached to a notification.
type Control struct {
	Label string
	Data  string
}

// UnbanControl builds the reversal button attached to a successful-ban
// notification.
func UnbanControl(userID int64) *Control {
	return &Control{
		Label: "✅ Unban this user",
		Data:  callback.Format(callback.Unban, userID),
	}
}

// Outcome reports what the engine actually did for one verdict.
type Outcome struct {
	MessageDeleted   bool
	UserBanned       bool
	NotificationText string
	UnbanControl     *Control // set only when the ban succeeded
}

// Engine applies verdicts against the group's policy.
type Engine struct {
	platform Platform
	profiles repository.RiskProfileRepository
	logger   *zap.Logger
}

func NewEngine(platform Platform, profiles repository.RiskProfileRepository, logger *zap.Logger) *Engine {
	return &Engine{platform: platform, profiles: profiles, logger: logger}
}

// Enforce interprets the verdict for one message. A nil result is a no-op:
// the classification failure was already logged upstream. A clean verdict
// marks the profile verified. A spam verdict below the group's configured
// threshold is recorded but triggers zero platform calls. At or above the
// threshold, deletion and ban are attempted independently; neither failure
// aborts the other, and the notification never claims an action that did
// not succeed.
func (e *Engine) Enforce(result *models.DetectionResult, policy *models.GroupPolicy, profile *models.RiskProfile, messageID int, detectionTimeMs int64) Outcome {
	if result == nil {
		return Outcome{}
	}

	if !result.IsSpam() {
		if err := e.profiles.MarkVerified(profile.UserID, profile.GroupID); err == nil {
			e.logger.Info("User passed verification",
				zap.Int64("user_id", profile.UserID),
				zap.Int64("group_id", profile.GroupID))
		}
		return Outcome{}
	}

	if result.SpamScore < policy.SpamScoreThreshold {
		e.logger.Info("Spam detected below action threshold",
			zap.Int64("user_id", profile.UserID),
			zap.Int64("group_id", profile.GroupID),
			zap.Int("spam_score", result.SpamScore),
			zap.Int("threshold", policy.SpamScoreThreshold))
		return Outcome{}
	}

	outcome := Outcome{}

	if err := e.platform.DeleteMessage(profile.GroupID, messageID); err != nil {
		e.logger.Error("Failed to delete spam message",
			zap.Int64("group_id", profile.GroupID),
			zap.Int("message_id", messageID),
			zap.Error(err))
	} else {
		outcome.MessageDeleted = true
		e.logger.Info("Deleted spam message",
			zap.Int64("user_id", profile.UserID),
			zap.Int64("group_id", profile.GroupID))
	}

	if err := e.platform.BanMember(profile.GroupID, profile.UserID); err != nil {
		e.logger.Warn("Failed to ban user (bot may lack ban permission)",
			zap.Int64("user_id", profile.UserID),
			zap.Int64("group_id", profile.GroupID),
			zap.Error(err))
	} else {
		outcome.UserBanned = true
		e.logger.Info("Banned user",
			zap.Int64("user_id", profile.UserID),
			zap.Int64("group_id", profile.GroupID))
	}

	switch {
	case outcome.UserBanned:
		outcome.NotificationText = fmt.Sprintf(
			"🚫 Spam detected, user banned\n\n"+
				"👤 User: %s\n"+
				"📊 Spam score: %d/100\n"+
				"📝 Reason: %s\n"+
				"💬 Comment: %s\n"+
				"⏱️ Detection took: %dms",
			profile.DisplayName(), result.SpamScore, result.Reason, result.MockText, detectionTimeMs)
		outcome.UnbanControl = UnbanControl(profile.UserID)
	case outcome.MessageDeleted:
		outcome.NotificationText = fmt.Sprintf(
			"⚠️ Spam detected, message deleted\n\n"+
				"👤 User: %s\n"+
				"📊 Spam score: %d/100\n"+
				"📝 Reason: %s\n"+
				"💬 Comment: %s\n"+
				"⏱️ Detection took: %dms\n\n"+
				"❌ Could not ban the user (ban permission likely missing)\n"+
				"💡 Grant the bot ban permission for full protection",
			profile.DisplayName(), result.SpamScore, result.Reason, result.MockText, detectionTimeMs)
	default:
		// Nothing succeeded; an announcement would claim actions that never
		// happened, so there is nothing to send.
		e.logger.Error("Failed to take any action against spam",
			zap.Int64("user_id", profile.UserID),
			zap.Int64("group_id", profile.GroupID))
	}

	return outcome
}
