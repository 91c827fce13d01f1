package notifierimpl

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/contentflow/internal/notifier"
	"github.com/orgball2608/contentflow/pkg/formatter"
	"github.com/orgball2608/contentflow/pkg/logger"
	"github.com/orgball2608/contentflow/pkg/retry"
)

type TelegramImpl struct {
	TgBot  *tgbotapi.BotAPI
	ChatID int64
	Logger logger.Logger
	Retry  retry.Config
}

var _ notifier.Notifier = (*TelegramImpl)(nil)

// NewTelegram logs the bot in. endpoint is a tgbotapi endpoint format.
func NewTelegram(token, endpoint string, chatID int64, log logger.Logger) (*TelegramImpl, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	tgBot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{})
	if err != nil {
		log.Error("Error creating bot", "error", err)
		return nil, err
	}

	return &TelegramImpl{
		TgBot:  tgBot,
		ChatID: chatID,
		Logger: log,
		Retry:  retry.DefaultConfig(),
	}, nil
}

func (tg *TelegramImpl) Send(ctx context.Context, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := "*" + formatter.EscapeMarkdownV2(title) + "*"
	if body != "" {
		text += "\n\n" + formatter.EscapeMarkdownV2(body)
	}

	msg := tgbotapi.NewMessage(tg.ChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	send := func(context.Context) error {
		_, err := tg.TgBot.Send(msg)
		return classify(err)
	}
	if err := retry.Do(ctx, tg.Logger, "SendMessage", tg.Retry, send); err != nil {
		tg.Logger.Error("Error sending message",
			"chat_id", tg.ChatID,
			"error", err)
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	tg.Logger.Info("Message sent", "chat_id", tg.ChatID)
	return nil
}

// classify stops retries on requests Telegram rejected for good, such as a
// malformed message or an unknown chat. Rate limits are retried.
func classify(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
		return retry.Permanent(err)
	}
	return err
}
