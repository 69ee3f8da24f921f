// Package telegram adapts the Bot API to the pipeline: it implements the
// platform operations the enforcer consumes and feeds updates into the
// guard.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"antispam/internal/guard"
	"antispam/internal/repository"
)

// Bot owns the long-polling update loop and the platform adapter.
type Bot struct {
	api      *tgbotapi.BotAPI
	guard    *guard.Guard
	policies repository.GroupPolicyRepository
	stats    repository.StatsRepository
	logger   *zap.Logger
}

// NewBot creates a new Telegram bot instance.
func NewBot(token string, policies repository.GroupPolicyRepository, stats repository.StatsRepository, logger *zap.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))

	return &Bot{
		api:      botAPI,
		policies: policies,
		stats:    stats,
		logger:   logger,
	}, nil
}

// SetGuard attaches the pipeline orchestrator. The guard needs the bot as
// its Platform, so the two are wired in two steps.
func (b *Bot) SetGuard(g *guard.Guard) { b.guard = g }

// Start begins listening for updates from Telegram.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Telegram bot started, waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram bot shutting down...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.CallbackQuery != nil {
				b.handleCallbackQuery(update.CallbackQuery)
			} else if update.Message != nil {
				b.handleMessage(update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.Chat == nil || message.From == nil {
		return
	}

	if len(message.NewChatMembers) > 0 {
		for _, member := range message.NewChatMembers {
			b.guard.OnMemberJoin(guard.JoinEvent{
				GroupID:   message.Chat.ID,
				UserID:    member.ID,
				Username:  member.UserName,
				FirstName: member.FirstName,
				FromBot:   member.IsBot,
			})
		}
		return
	}

	if message.IsCommand() {
		b.handleCommand(message)
		return
	}

	event := guard.MessageEvent{
		GroupID:      message.Chat.ID,
		UserID:       message.From.ID,
		Username:     message.From.UserName,
		FirstName:    message.From.FirstName,
		MessageID:    message.MessageID,
		Text:         message.Text,
		Caption:      message.Caption,
		MediaGroupID: message.MediaGroupID,
		FromBot:      message.From.IsBot,
	}

	if len(message.Photo) > 0 {
		// Largest size is last.
		photo := message.Photo[len(message.Photo)-1]
		file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: photo.FileID})
		if err != nil {
			b.logger.Error("Failed to resolve photo file", zap.Error(err))
		} else {
			event.PhotoURL = file.Link(b.api.Token)
		}
	}

	b.guard.OnMessage(event)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	b.logger.Info("Received callback query",
		zap.String("data", query.Data),
		zap.Int64("user_id", query.From.ID))

	if query.Message == nil {
		return
	}

	result := b.guard.OnCallback(guard.CallbackEvent{
		GroupID:        query.Message.Chat.ID,
		ActorID:        query.From.ID,
		ActorFirstName: query.From.FirstName,
		Data:           query.Data,
		MessageID:      query.Message.MessageID,
		MessageText:    query.Message.Text,
	})

	var callback tgbotapi.CallbackConfig
	if result.ShowAlert {
		callback = tgbotapi.NewCallbackWithAlert(query.ID, result.Text)
	} else {
		callback = tgbotapi.NewCallback(query.ID, result.Text)
	}
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("Failed to send callback response", zap.Error(err))
	}
}
