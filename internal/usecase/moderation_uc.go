package usecase

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/adapter"
	"club-bridge/internal/infra/i18n"
	"club-bridge/internal/infra/logging"
	"club-bridge/internal/infra/metrics"

	"github.com/rs/zerolog"
)

//go:embed templates/moderation_review.html
var moderationFS embed.FS

var reviewTmpl = template.Must(template.ParseFS(moderationFS, "templates/moderation_review.html"))

// Callback actions carried by the admin chat buttons.
const (
	ActionApproveUser = "approve_user"
	ActionRejectUser  = "reject_user"
)

// maxIntroRunes keeps the review message under the telegram length cap.
const maxIntroRunes = 3000

// ParseModerationCallback splits "approve_user:<id>" style callback data.
func ParseModerationCallback(data string) (action, userID string, ok bool) {
	action, userID, found := strings.Cut(data, ":")
	if !found || userID == "" {
		return "", "", false
	}
	switch action {
	case ActionApproveUser, ActionRejectUser:
		return action, userID, true
	}
	return "", "", false
}

// Compile-time check
var _ ModerationUseCase = (*moderationUC)(nil)

// ModerationUseCase sends the telegram notices around profile review.
// The Approved and Rejected variants report whether a message was sent.
type ModerationUseCase interface {
	NotifyProfileNeedsReview(ctx context.Context, user *model.User, intro *model.Post) error
	NotifyProfileApproved(ctx context.Context, user *model.User) (bool, error)
	NotifyProfileRejected(ctx context.Context, user *model.User) (bool, error)
}

type moderationUC struct {
	bot         adapter.TelegramBotAdapter
	tr          *i18n.Translator
	links       Links
	adminChatID int64
	log         *zerolog.Logger
}

func NewModerationUseCase(bot adapter.TelegramBotAdapter, tr *i18n.Translator, links Links, adminChatID int64, logger *zerolog.Logger) *moderationUC {
	l := logger.With().Str("component", "ModerationUC").Logger()
	return &moderationUC{bot: bot, tr: tr, links: links, adminChatID: adminChatID, log: &l}
}

func (m *moderationUC) NotifyProfileNeedsReview(ctx context.Context, user *model.User, intro *model.Post) error {
	defer logging.TraceDuration(m.log, "ModerationUC.NotifyProfileNeedsReview")()

	profileURL := m.links.Profile(user.Slug)
	var introText string
	if intro != nil {
		introText = truncateRunes(intro.Text, maxIntroRunes)
	}

	var buf bytes.Buffer
	err := reviewTmpl.Execute(&buf, map[string]any{
		"Title":      m.tr.T("moderation_review_title"),
		"ProfileURL": profileURL,
		"Name":       user.FullName,
		"Email":      user.Email,
		"Intro":      introText,
	})
	if err != nil {
		return fmt.Errorf("render review message: %w", err)
	}

	err = m.bot.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:    m.adminChatID,
		Text:      buf.String(),
		ParseMode: adapter.ParseModeHTML,
		Buttons: [][]adapter.InlineButton{
			{
				{Text: m.tr.T("moderation_approve_button"), Data: ActionApproveUser + ":" + user.ID},
				{Text: m.tr.T("moderation_reject_button"), Data: ActionRejectUser + ":" + user.ID},
			},
			{
				{Text: m.tr.T("moderation_view_button"), URL: profileURL},
			},
		},
	})
	metrics.IncMessageSent("admin", err)
	if err != nil {
		return fmt.Errorf("send review request: %w", err)
	}
	m.log.Info().Str("user_id", user.ID).Msg("profile sent to review")
	return nil
}

func (m *moderationUC) NotifyProfileApproved(ctx context.Context, user *model.User) (bool, error) {
	defer logging.TraceDuration(m.log, "ModerationUC.NotifyProfileApproved")()
	return m.direct(ctx, user, m.tr.T("moderation_approved", m.links.Profile(user.Slug)))
}

func (m *moderationUC) NotifyProfileRejected(ctx context.Context, user *model.User) (bool, error) {
	defer logging.TraceDuration(m.log, "ModerationUC.NotifyProfileRejected")()
	return m.direct(ctx, user, m.tr.T("moderation_rejected", m.links.Profile(user.Slug)))
}

func (m *moderationUC) direct(ctx context.Context, user *model.User, text string) (bool, error) {
	if !user.HasTelegram() {
		m.log.Debug().Str("user_id", user.ID).Msg("user has no telegram, skipping notice")
		return false, nil
	}
	err := m.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: user.TelegramID, Text: text})
	metrics.IncMessageSent("user", err)
	if err != nil {
		return false, fmt.Errorf("send moderation notice: %w", err)
	}
	return true, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
