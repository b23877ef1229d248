package usecase

import (
	"context"
	"fmt"
	"time"

	"club-bridge/internal/domain"
	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/adapter"
	"club-bridge/internal/domain/ports/repository"
	"club-bridge/internal/infra/logging"
	"club-bridge/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ DigestUseCase = (*digestUC)(nil)

// DigestUseCase assembles the daily personal digest and the weekly club journal.
// Both return domain.ErrEmptyDigest when there is nothing worth sending.
type DigestUseCase interface {
	Daily(ctx context.Context, userSlug string, now time.Time) (*DailyDigest, error)
	Weekly(ctx context.Context, now time.Time) (*WeeklyDigest, error)
}

type DailyDigest struct {
	User      *model.User
	Window    model.Window
	Events    []model.Activity
	Posts     []*model.Post
	Comments  []*model.CommentWithPost
	Intros    []*model.Post
	Horoscope *model.Horoscope
}

type WeeklyDigest struct {
	Window      model.Window
	IssueNumber int
	AuthorIntro string
	Featured    *model.Post
	Posts       []*model.Post
	Video       Video
	Comments    []*model.CommentWithPost
	Intros      []*model.Post
	NewbieCount int
}

// DigestOptions tune the digest use case. Zero values are replaced by defaults.
type DigestOptions struct {
	LaunchDate       time.Time
	HoroscopeTimeout time.Duration
}

type digestUC struct {
	users     repository.UserRepository
	settings  repository.SettingsRepository
	agg       *ContentAggregator
	picker    *HighlightPicker
	horoscope adapter.HoroscopeSource
	opts      DigestOptions
	log       *zerolog.Logger
}

// NewDigestUseCase wires the digest pipeline. horoscope may be nil.
func NewDigestUseCase(
	users repository.UserRepository,
	settings repository.SettingsRepository,
	agg *ContentAggregator,
	picker *HighlightPicker,
	horoscope adapter.HoroscopeSource,
	opts DigestOptions,
	logger *zerolog.Logger,
) *digestUC {
	if opts.HoroscopeTimeout <= 0 {
		opts.HoroscopeTimeout = 3 * time.Second
	}
	l := logger.With().Str("component", "DigestUC").Logger()
	return &digestUC{
		users:     users,
		settings:  settings,
		agg:       agg,
		picker:    picker,
		horoscope: horoscope,
		opts:      opts,
		log:       &l,
	}
}

func (d *digestUC) Daily(ctx context.Context, userSlug string, now time.Time) (*DailyDigest, error) {
	defer logging.TraceDuration(d.log, "DigestUC.Daily")()

	user, err := d.users.FindBySlug(ctx, repository.NoTX, userSlug)
	if err != nil {
		metrics.IncDigestRender(string(model.DigestKindDaily), "not_found")
		return nil, err
	}
	w := DigestWindow(now, model.DigestKindDaily)

	events, err := d.agg.ActivityForUser(ctx, user.ID, w)
	if err != nil {
		return nil, d.fail(model.DigestKindDaily, err)
	}
	posts, err := d.agg.TopContent(ctx, w, DailyPostLimit)
	if err != nil {
		return nil, d.fail(model.DigestKindDaily, fmt.Errorf("top content: %w", err))
	}
	comments, err := d.agg.TopComments(ctx, w, DailyCommentLimit)
	if err != nil {
		return nil, d.fail(model.DigestKindDaily, fmt.Errorf("top comments: %w", err))
	}
	intros, _, err := d.agg.NewMembers(ctx, w)
	if err != nil {
		return nil, d.fail(model.DigestKindDaily, err)
	}

	if len(posts) == 0 && len(comments) == 0 && len(intros) == 0 {
		metrics.IncDigestRender(string(model.DigestKindDaily), "empty")
		return nil, domain.ErrEmptyDigest
	}

	metrics.IncDigestRender(string(model.DigestKindDaily), "ok")
	return &DailyDigest{
		User:      user,
		Window:    w,
		Events:    events,
		Posts:     posts,
		Comments:  comments,
		Intros:    intros,
		Horoscope: d.fetchHoroscope(ctx),
	}, nil
}

func (d *digestUC) Weekly(ctx context.Context, now time.Time) (*WeeklyDigest, error) {
	defer logging.TraceDuration(d.log, "DigestUC.Weekly")()

	w := DigestWindow(now, model.DigestKindWeekly)

	intros, newbies, err := d.agg.NewMembers(ctx, w)
	if err != nil {
		return nil, d.fail(model.DigestKindWeekly, err)
	}
	featured, err := d.picker.FeaturedPost(ctx, w)
	if err != nil {
		return nil, d.fail(model.DigestKindWeekly, err)
	}
	var skipPosts []string
	if featured != nil {
		skipPosts = append(skipPosts, featured.ID)
	}
	posts, err := d.agg.TopContent(ctx, w, WeeklyPostLimit, skipPosts...)
	if err != nil {
		return nil, d.fail(model.DigestKindWeekly, fmt.Errorf("top content: %w", err))
	}
	video, err := d.picker.TopVideo(ctx, w)
	if err != nil {
		return nil, d.fail(model.DigestKindWeekly, err)
	}
	var skipComments []string
	if video.Comment != nil {
		skipComments = append(skipComments, video.Comment.ID)
	}
	comments, err := d.agg.TopComments(ctx, w, WeeklyCommentLimit, skipComments...)
	if err != nil {
		return nil, d.fail(model.DigestKindWeekly, fmt.Errorf("top comments: %w", err))
	}
	intro, err := d.settings.DigestIntro(ctx, repository.NoTX)
	if err != nil {
		return nil, d.fail(model.DigestKindWeekly, fmt.Errorf("digest intro: %w", err))
	}

	if intro == "" && len(posts) == 0 && len(comments) == 0 {
		metrics.IncDigestRender(string(model.DigestKindWeekly), "empty")
		return nil, domain.ErrEmptyDigest
	}

	metrics.IncDigestRender(string(model.DigestKindWeekly), "ok")
	return &WeeklyDigest{
		Window:      w,
		IssueNumber: IssueNumber(w.End, d.opts.LaunchDate),
		AuthorIntro: intro,
		Featured:    featured,
		Posts:       posts,
		Video:       video,
		Comments:    comments,
		Intros:      intros,
		NewbieCount: newbies,
	}, nil
}

func (d *digestUC) fail(kind model.DigestKind, err error) error {
	metrics.IncDigestRender(string(kind), "error")
	d.log.Error().Err(err).Str("kind", string(kind)).Msg("digest query failed")
	return err
}

// fetchHoroscope never fails the digest: errors, timeouts and panics of the
// source only drop the decoration.
func (d *digestUC) fetchHoroscope(ctx context.Context) (h *model.Horoscope) {
	if d.horoscope == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Msg("horoscope source panicked")
			h = nil
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.opts.HoroscopeTimeout)
	defer cancel()

	h, err := d.horoscope.Horoscope(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("horoscope unavailable")
		return nil
	}
	return h
}
