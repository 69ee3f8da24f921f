package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleCommand serves the admin command surface. Every command requires a
// fresh administrator/creator role lookup in the group it is issued in.
func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "antispam_on", "antispam_off", "antispam_stats", "antispam_config":
	default:
		return
	}

	role, err := b.GetMemberRole(message.Chat.ID, message.From.ID)
	if err != nil || (role != "administrator" && role != "creator") {
		b.reply(message.Chat.ID, "⚠️ Only group administrators can use this command")
		return
	}

	switch message.Command() {
	case "antispam_on":
		if err := b.policies.EnableGroup(message.Chat.ID); err != nil {
			b.reply(message.Chat.ID, "❌ Failed to enable anti-spam")
			return
		}
		b.reply(message.Chat.ID, "✅ Anti-spam protection enabled")
	case "antispam_off":
		if err := b.policies.DisableGroup(message.Chat.ID); err != nil {
			b.reply(message.Chat.ID, "❌ Failed to disable anti-spam")
			return
		}
		b.reply(message.Chat.ID, "✅ Anti-spam protection disabled")
	case "antispam_stats":
		b.replyStats(message.Chat.ID)
	case "antispam_config":
		b.replyConfig(message.Chat.ID)
	}
}

func (b *Bot) replyStats(groupID int64) {
	stats, err := b.stats.GetGroupStats(groupID, 7)
	if err != nil {
		b.logger.Error("Failed to load group stats", zap.Int64("group_id", groupID), zap.Error(err))
		b.reply(groupID, "❌ Failed to load statistics")
		return
	}
	if len(stats) == 0 {
		b.reply(groupID, "📊 No checks recorded in the last 7 days")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 Anti-spam statistics, last 7 days\n")
	var checks, spam, banned, falsePos int
	for _, day := range stats {
		checks += day.TotalChecks
		spam += day.SpamDetected
		banned += day.UsersBanned
		falsePos += day.FalsePositives
		fmt.Fprintf(&sb, "\n%s — checks: %d, spam: %d, bans: %d, reversals: %d",
			day.Date.Format("2006-01-02"), day.TotalChecks, day.SpamDetected, day.UsersBanned, day.FalsePositives)
	}
	fmt.Fprintf(&sb, "\n\nTotal: %d checks, %d spam, %d bans, %d reversals", checks, spam, banned, falsePos)
	b.reply(groupID, sb.String())
}

func (b *Bot) replyConfig(groupID int64) {
	policy, err := b.policies.GetPolicy(groupID)
	if err != nil {
		b.logger.Error("Failed to load policy", zap.Int64("group_id", groupID), zap.Error(err))
		b.reply(groupID, "❌ Failed to load configuration")
		return
	}
	if policy == nil {
		b.reply(groupID, "ℹ️ Anti-spam has never been enabled here. Use /antispam_on first.")
		return
	}

	text := fmt.Sprintf(
		"⚙️ Anti-spam configuration\n\n"+
			"Enabled: %v\n"+
			"Check text: %v\n"+
			"Check photos: %v\n"+
			"Spam score threshold: %d\n"+
			"New-member window: %d days\n"+
			"Message count threshold: %d\n"+
			"Verification passes required: %d\n"+
			"Notification auto-delete: %ds",
		policy.Enabled, policy.CheckText, policy.CheckPhoto,
		policy.SpamScoreThreshold, policy.JoinedTimeThresholdDays,
		policy.SpeechCountThreshold, policy.VerificationTimesThreshold,
		policy.AutoDeleteDelaySeconds)
	b.reply(groupID, text)
}

// reply is a helper to send a simple text message.
func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
