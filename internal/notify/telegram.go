package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/domain"
)

// Telegram message size cap.
const maxMessageLen = 4096

type TelegramConfig struct {
	Token  string
	ChatID int64
	Debug  bool
}

// Telegram sends run summaries to a fixed editorial chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

func NewTelegram(cfg TelegramConfig, logger *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	api.Debug = cfg.Debug

	logger.Info("telegram notifier authorized",
		zap.String("username", api.Self.UserName),
	)

	return &Telegram{
		api:    api,
		chatID: cfg.ChatID,
		logger: logger,
	}, nil
}

func (t *Telegram) RunCompleted(ctx context.Context, run *domain.ArticleRun) error {
	text := FormatRunSummary(run)

	for _, part := range SplitMessage(text, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(t.chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		if _, err := t.api.Send(msg); err != nil {
			t.logger.Error("send notification failed",
				zap.String("run_id", run.ID),
				zap.Error(err),
			)
			return fmt.Errorf("send notification: %w", err)
		}
	}

	return nil
}

var _ Notifier = (*Telegram)(nil)
