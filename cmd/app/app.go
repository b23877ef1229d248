package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"club-bridge/internal/config"
	"club-bridge/internal/domain/ports/adapter"
	"club-bridge/internal/domain/ports/repository"
	"club-bridge/internal/infra/adapters/horoscope"
	tele "club-bridge/internal/infra/adapters/telegram"
	"club-bridge/internal/infra/db/memstore"
	pg "club-bridge/internal/infra/db/postgres"
	"club-bridge/internal/infra/i18n"
	"club-bridge/internal/infra/logging"
	"club-bridge/internal/infra/metrics"
	red "club-bridge/internal/infra/redis"
	"club-bridge/internal/usecase"
)

// app holds every wired dependency shared by the subcommands.
type app struct {
	cfg   *config.Config
	log   *zerolog.Logger
	tr    *i18n.Translator
	links usecase.Links

	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	votes    repository.VoteRepository
	settings repository.SettingsRepository
	tm       repository.TransactionManager

	pool           *pgxpool.Pool
	redis          red.RedisClient
	limiter        adapter.CommentRateLimiter
	horoscope      adapter.HoroscopeSource
	horoscopeCache *red.HoroscopeCache

	bot    adapter.TelegramBotAdapter
	poller *tele.RealTelegramBotAdapter

	digestUC     usecase.DigestUseCase
	subsUC       usecase.SubscriptionUseCase
	replyUC      usecase.ReplyUseCase
	moderationUC usecase.ModerationUseCase
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(cfgPath, devMode)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	a := &app{cfg: cfg, log: logger, links: usecase.NewLinks(cfg.App.Host)}

	a.tr, err = i18n.NewTranslator(i18n.LocalesFS, cfg.App.Lang)
	if err != nil {
		logger.Warn().Err(err).Str("lang", cfg.App.Lang).Msg("falling back to default locale")
		if a.tr, err = i18n.NewTranslator(i18n.LocalesFS, i18n.DefaultLang); err != nil {
			return nil, err
		}
	}

	if cfg.Redis.URL != "" {
		if a.redis, err = red.NewClient(ctx, &cfg.Redis); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	if cfg.Runtime.Dev {
		if err := a.openMemStore(); err != nil {
			a.Close()
			return nil, err
		}
	} else if err := a.openPostgres(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.wireHoroscope()

	if err := a.wireBot(); err != nil {
		a.Close()
		return nil, err
	}

	agg := usecase.NewContentAggregator(a.users, a.posts, a.comments, a.votes)
	picker := usecase.NewHighlightPicker(a.posts, a.comments)
	a.digestUC = usecase.NewDigestUseCase(a.users, a.settings, agg, picker, a.horoscope, usecase.DigestOptions{
		LaunchDate:       cfg.LaunchTime(),
		HoroscopeTimeout: cfg.Horoscope.Timeout,
	}, logger)
	a.subsUC = usecase.NewSubscriptionUseCase(a.users, a.tm, logger)
	a.replyUC = usecase.NewReplyUseCase(a.users, a.posts, a.comments, a.limiter, a.bot, a.tr, a.links, logger)
	a.moderationUC = usecase.NewModerationUseCase(a.bot, a.tr, a.links, cfg.Bot.AdminChatID, logger)
	return a, nil
}

func (a *app) openMemStore() error {
	store := memstore.New()
	if path := a.cfg.Database.Fixture; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read fixture: %w", err)
		}
		if err := store.Load(data); err != nil {
			return fmt.Errorf("load fixture: %w", err)
		}
		a.log.Info().Str("fixture", path).Msg("in-memory store seeded")
	}
	a.users, a.posts, a.comments = store, store.Posts, store.Comments
	a.votes, a.settings, a.tm = store, store, store
	if a.redis != nil {
		a.limiter = red.NewRateLimiter(a.redis, a.cfg.Comments.DailyLimit)
	} else {
		a.limiter = memstore.NewLimiter(store, a.cfg.Comments.DailyLimit)
	}
	return nil
}

func (a *app) openPostgres(ctx context.Context) error {
	pool, err := pg.NewPgxPool(ctx, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	a.pool = pool
	a.users = pg.NewUserRepoCacheDecorator(pg.NewPostgresUserRepo(pool), a.redis, a.cfg.Redis.TTL)
	a.posts = pg.NewPostgresPostRepo(pool)
	a.comments = pg.NewPostgresCommentRepo(pool)
	a.votes = pg.NewPostgresVoteRepo(pool)
	a.settings = pg.NewPostgresSettingsRepo(pool)
	a.tm = pg.NewTxManager(pool)
	a.limiter = red.NewRateLimiter(a.redis, a.cfg.Comments.DailyLimit)
	return nil
}

// wireHoroscope leaves a.horoscope nil when no upstream is configured, so the
// daily digest renders without it.
func (a *app) wireHoroscope() {
	if a.cfg.Horoscope.URL == "" {
		return
	}
	src := horoscope.NewHTTPSource(a.cfg.Horoscope.URL, a.cfg.Horoscope.Timeout)
	if a.redis == nil {
		a.horoscope = src
		return
	}
	a.horoscopeCache = red.NewHoroscopeCache(a.redis, src, a.cfg.Horoscope.TTL)
	a.horoscope = a.horoscopeCache
}

func (a *app) wireBot() error {
	if a.cfg.Bot.Token == "" {
		a.bot = tele.NewNoopBotAdapter(a.log)
		return nil
	}
	bot, err := tele.NewRealTelegramBotAdapter(&a.cfg.Bot, a.log)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	a.bot, a.poller = bot, bot
	return nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
