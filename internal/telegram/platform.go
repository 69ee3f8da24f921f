package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"antispam/internal/enforcer"
)

// The Bot is the enforcer's Platform.
var _ enforcer.Platform = (*Bot)(nil)

func (b *Bot) DeleteMessage(groupID int64, messageID int) error {
	_, err := b.api.Request(tgbotapi.NewDeleteMessage(groupID, messageID))
	return err
}

func (b *Bot) BanMember(groupID, userID int64) error {
	_, err := b.api.Request(tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: groupID,
			UserID: userID,
		},
	})
	return err
}

func (b *Bot) UnbanMember(groupID, userID int64) error {
	_, err := b.api.Request(tgbotapi.UnbanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: groupID,
			UserID: userID,
		},
		OnlyIfBanned: true,
	})
	return err
}

func (b *Bot) GetMemberRole(groupID, userID int64) (string, error) {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: groupID,
			UserID: userID,
		},
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

func (b *Bot) SendMessage(groupID int64, text string, control *enforcer.Control) (int, error) {
	msg := tgbotapi.NewMessage(groupID, text)
	if control != nil {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(control.Label, control.Data),
			),
		)
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (b *Bot) EditMessage(groupID int64, messageID int, text string) error {
	_, err := b.api.Send(tgbotapi.NewEditMessageText(groupID, messageID, text))
	return err
}
