package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"club-bridge/internal/domain"
	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/adapter"
	"club-bridge/internal/domain/ports/repository"
	"club-bridge/internal/infra/i18n"
	"club-bridge/internal/infra/logging"
	"club-bridge/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// ReplyOutcome tags how an inbound reply was handled.
type ReplyOutcome string

const (
	OutcomeIgnored        ReplyOutcome = "ignored"
	OutcomeUnlinked       ReplyOutcome = "unlinked"
	OutcomeNoLink         ReplyOutcome = "no_link"
	OutcomeCommentMissing ReplyOutcome = "comment_missing"
	OutcomeRateLimited    ReplyOutcome = "rate_limited"
	OutcomeReplied        ReplyOutcome = "replied"
)

// BotUserAgent marks comments created from chat replies.
const BotUserAgent = "TelegramBot (like TwitterBot)"

// maxThreadDepth bounds the walk to the top-level ancestor.
const maxThreadDepth = 64

var commentURLRe = regexp.MustCompile(`^https?:[/|.|\w|\s|-]*/post/.+?/comment/([a-fA-F0-9\-]+)/`)

// CommentIDFromURL extracts the comment id from a comment permalink.
func CommentIDFromURL(u string) (string, bool) {
	m := commentURLRe.FindStringSubmatch(u)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Compile-time check
var _ ReplyUseCase = (*replyUC)(nil)

// ReplyUseCase turns a chat reply to a bot notification into a site comment.
// The error is non-nil only for infrastructure failures.
type ReplyUseCase interface {
	HandleReply(ctx context.Context, msg model.InboundMessage) (ReplyOutcome, error)
}

type replyUC struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	limiter  adapter.CommentRateLimiter
	bot      adapter.TelegramBotAdapter
	tr       *i18n.Translator
	links    Links
	log      *zerolog.Logger
}

func NewReplyUseCase(
	users repository.UserRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	limiter adapter.CommentRateLimiter,
	bot adapter.TelegramBotAdapter,
	tr *i18n.Translator,
	links Links,
	logger *zerolog.Logger,
) *replyUC {
	l := logger.With().Str("component", "ReplyUC").Logger()
	return &replyUC{
		users:    users,
		posts:    posts,
		comments: comments,
		limiter:  limiter,
		bot:      bot,
		tr:       tr,
		links:    links,
		log:      &l,
	}
}

// replyState is threaded through the guard steps.
type replyState struct {
	msg       model.InboundMessage
	log       *zerolog.Logger
	user      *model.User
	commentID string
	target    *model.Comment
	created   *model.Comment
}

// replyStep returns a non-empty outcome to stop the chain.
type replyStep func(ctx context.Context, st *replyState) (ReplyOutcome, error)

func (r *replyUC) HandleReply(ctx context.Context, msg model.InboundMessage) (ReplyOutcome, error) {
	defer logging.TraceDuration(r.log, "ReplyUC.HandleReply")()

	ctx = logging.WithTgID(ctx, msg.SenderID)
	st := &replyState{msg: msg, log: logging.With(ctx, r.log)}

	steps := []replyStep{
		r.requireReply,
		r.resolveSender,
		r.extractCommentLink,
		r.resolveTarget,
		r.checkRateLimit,
		r.createComment,
		r.confirm,
	}
	for _, step := range steps {
		outcome, err := step(ctx, st)
		if outcome != "" {
			metrics.IncReplyOutcome(string(outcome))
		}
		if err != nil {
			st.log.Error().Err(err).Msg("reply handling failed")
			return outcome, err
		}
		if outcome != "" {
			return outcome, nil
		}
	}
	// confirm always returns an outcome
	return OutcomeReplied, nil
}

func (r *replyUC) requireReply(ctx context.Context, st *replyState) (ReplyOutcome, error) {
	if st.msg.ReplyTo == nil || st.msg.Text == "" {
		return OutcomeIgnored, nil
	}
	return "", nil
}

func (r *replyUC) resolveSender(ctx context.Context, st *replyState) (ReplyOutcome, error) {
	u, err := r.users.FindByTelegramID(ctx, repository.NoTX, st.msg.SenderID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		st.log.Info().Str("reason", string(OutcomeUnlinked)).Msg("reply from unknown telegram user")
		r.send(ctx, "user", adapter.SendMessageParams{
			ChatID: st.msg.SenderID,
			Text:   r.tr.T("reply_unlinked", r.links.Host),
		})
		return OutcomeUnlinked, nil
	case err != nil:
		return "", fmt.Errorf("find user by telegram id: %w", err)
	}
	st.user = u
	st.log = logging.With(logging.WithUserID(ctx, u.ID), st.log)
	return "", nil
}

func (r *replyUC) extractCommentLink(ctx context.Context, st *replyState) (ReplyOutcome, error) {
	for _, e := range st.msg.ReplyTo.Entities {
		if e.Type != model.EntityTextLink {
			continue
		}
		if id, ok := CommentIDFromURL(e.URL); ok {
			st.commentID = id
			return "", nil
		}
	}
	st.log.Info().
		Str("reason", string(OutcomeNoLink)).
		Int("entities", len(st.msg.ReplyTo.Entities)).
		Msg("comment url not found in replied message")
	return OutcomeNoLink, nil
}

func (r *replyUC) resolveTarget(ctx context.Context, st *replyState) (ReplyOutcome, error) {
	c, err := r.comments.FindByID(ctx, repository.NoTX, st.commentID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		st.log.Info().Str("reason", string(OutcomeCommentMissing)).Str("comment_id", st.commentID).Msg("replied comment not found")
		return OutcomeCommentMissing, nil
	case err != nil:
		return "", fmt.Errorf("find comment: %w", err)
	}
	st.target = c
	return "", nil
}

// checkRateLimit lets the comment through when the limiter itself is down.
// The budget is spent in createComment, after the comment is stored.
func (r *replyUC) checkRateLimit(ctx context.Context, st *replyState) (ReplyOutcome, error) {
	ok, err := r.limiter.AllowComment(ctx, st.user.ID)
	if err != nil {
		st.log.Warn().Err(err).Msg("rate limiter unavailable, allowing comment")
		return "", nil
	}
	if ok {
		return "", nil
	}
	metrics.IncRateLimitTriggered()
	st.log.Info().Str("reason", string(OutcomeRateLimited)).Msg("comment rate limit reached")
	r.send(ctx, "user", adapter.SendMessageParams{
		ChatID: st.msg.ChatID,
		Text:   r.tr.T("reply_rate_limited"),
	})
	return OutcomeRateLimited, nil
}

func (r *replyUC) createComment(ctx context.Context, st *replyState) (ReplyOutcome, error) {
	root := r.topLevelAncestor(ctx, st.target)

	c, err := model.NewComment(st.target.PostID, st.user.ID, root.ID, st.msg.Text)
	if err != nil {
		return "", fmt.Errorf("build comment: %w", err)
	}
	c.UserAgent = BotUserAgent
	c.Metadata, err = auditMetadata(st.msg.Raw)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if err := r.comments.Create(ctx, repository.NoTX, c); err != nil {
		return "", fmt.Errorf("create comment: %w", err)
	}
	st.created = c
	if err := r.limiter.RecordComment(ctx, st.user.ID); err != nil {
		st.log.Warn().Err(err).Msg("failed to record comment against the rate limit")
	}
	return "", nil
}

func (r *replyUC) confirm(ctx context.Context, st *replyState) (ReplyOutcome, error) {
	post, err := r.posts.FindByID(ctx, repository.NoTX, st.created.PostID)
	if err != nil {
		return OutcomeReplied, fmt.Errorf("find post of created comment: %w", err)
	}
	url := r.links.Comment(post.Slug, st.created.ID)
	st.log.Info().Str("comment_id", st.created.ID).Msg("reply stored as comment")
	if err := r.bot.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:         st.msg.ChatID,
		Text:           r.tr.T("reply_done", url),
		ParseMode:      adapter.ParseModeMarkdown,
		DisablePreview: true,
	}); err != nil {
		metrics.IncMessageSent("user", err)
		return OutcomeReplied, fmt.Errorf("send confirmation: %w", err)
	}
	metrics.IncMessageSent("user", nil)
	return OutcomeReplied, nil
}

// topLevelAncestor follows ReplyToID up to the thread root. A broken chain
// stops at the last comment that could be loaded.
func (r *replyUC) topLevelAncestor(ctx context.Context, c *model.Comment) *model.Comment {
	cur := c
	for i := 0; i < maxThreadDepth && !cur.IsTopLevel(); i++ {
		parent, err := r.comments.FindByID(ctx, repository.NoTX, cur.ReplyToID)
		if err != nil {
			r.log.Warn().Err(err).Str("comment_id", cur.ReplyToID).Msg("thread parent not found")
			break
		}
		cur = parent
	}
	return cur
}

// send delivers a notice to the user; failures are logged, not returned.
func (r *replyUC) send(ctx context.Context, target string, p adapter.SendMessageParams) {
	err := r.bot.SendMessage(ctx, p)
	metrics.IncMessageSent(target, err)
	if err != nil {
		r.log.Warn().Err(err).Int64("chat_id", p.ChatID).Msg("failed to send telegram message")
	}
}

func auditMetadata(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	return json.Marshal(map[string]json.RawMessage{"telegram": raw})
}
