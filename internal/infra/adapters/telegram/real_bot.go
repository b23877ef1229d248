package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"club-bridge/internal/config"
	"club-bridge/internal/domain/ports/adapter"
	"club-bridge/internal/usecase"
)

// botAPI is the part of tgbotapi.BotAPI the adapter needs.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter polls updates with tgbotapi and hands replies to the reply bridge.
type RealTelegramBotAdapter struct {
	bot    botAPI
	cfg    *config.BotConfig
	reply  usecase.ReplyUseCase
	logger *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return newAdapter(bot, cfg, logger), nil
}

func newAdapter(bot botAPI, cfg *config.BotConfig, logger *zerolog.Logger) *RealTelegramBotAdapter {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	l := logger.With().Str("component", "TelegramBot").Logger()
	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		logger:        &l,
		updateWorkers: workers,
	}
}

// StartPolling blocks until ctx is cancelled, fanning updates out to a worker pool.
// The reply use case is passed here because it needs the adapter to send its notices.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context, reply usecase.ReplyUseCase) error {
	if reply == nil {
		return errors.New("reply use case is nil")
	}
	r.reply = reply

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)
	defer r.bot.StopReceivingUpdates()

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for up := range updateChan {
				if err := r.handleUpdate(ctx, up); err != nil {
					r.logger.Error().Err(err).Int("worker", id).Int("update_id", up.UpdateID).Msg("handle update")
				}
			}
		}(i)
	}

	r.logger.Info().Int("workers", r.updateWorkers).Msg("telegram polling started")
	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				close(updateChan)
				wg.Wait()
				return nil
			}
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// SendMessage sends text with an optional inline keyboard.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := tgbotapi.NewMessage(params.ChatID, params.Text)
	msg.ParseMode = params.ParseMode
	msg.DisableWebPagePreview = params.DisablePreview
	if kb, ok := buildKeyboard(params.Buttons); ok {
		msg.ReplyMarkup = kb
	}
	_, err := r.bot.Send(msg)
	return err
}

// buildKeyboard maps button rows onto an inline keyboard.
//   - If btn.URL is set, the button opens a link
//   - Else if btn.Data is set, the button sends callback data
//   - Else the label doubles as callback data
func buildKeyboard(rows [][]adapter.InlineButton) (tgbotapi.InlineKeyboardMarkup, bool) {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		line := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				line = append(line, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				line = append(line, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				line = append(line, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, line)
	}
	if len(kbRows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...), true
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return r.handleQuery(update.CallbackQuery)
	}
	msg, ok, err := convertInbound(&update)
	if err != nil || !ok {
		return err
	}
	outcome, err := r.reply.HandleReply(ctx, msg)
	if err != nil {
		return err
	}
	r.logger.Debug().Str("outcome", string(outcome)).Int64("chat_id", msg.ChatID).Msg("message handled")
	return nil
}

// handleQuery acknowledges inline button presses. Approving or rejecting a
// profile happens on the site, so the moderation buttons are only logged.
func (r *RealTelegramBotAdapter) handleQuery(query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}
	// Stop telegram spinner when we return
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	action, userID, ok := usecase.ParseModerationCallback(strings.TrimSpace(query.Data))
	if !ok {
		r.logger.Warn().Str("data", query.Data).Int64("from", query.From.ID).Msg("unknown callback data")
		return nil
	}
	r.logger.Info().Str("action", action).Str("user_id", userID).Int64("moderator", query.From.ID).Msg("moderation button pressed")
	return nil
}
