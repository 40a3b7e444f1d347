package notify

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"flzt_checkin/internal/model"
)

// telegram rejects longer texts
const telegramTextLimit = 4096

type TelegramProbe struct {
	settings model.TelegramSettings
}

func NewTelegramProbe(s model.TelegramSettings) *TelegramProbe {
	return &TelegramProbe{settings: s}
}

func (p *TelegramProbe) Name() string { return "telegram" }

func (p *TelegramProbe) Deliver(ctx context.Context, msg Message) (bool, error) {
	token := strings.TrimSpace(p.settings.BotToken)
	if token == "" || p.settings.UserID == 0 {
		return false, nil
	}

	opts := []telego.BotOption{telego.WithDiscardLogger()}
	if host := strings.TrimSpace(p.settings.APIHost); host != "" {
		opts = append(opts, telego.WithAPIServer(strings.TrimRight(host, "/")))
	}
	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	text := msg.Title + "\n\n" + msg.Content
	if r := []rune(text); len(r) > telegramTextLimit {
		text = string(r[:telegramTextLimit])
	}
	_, err = bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: tu.ID(p.settings.UserID),
		Text:   text,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
