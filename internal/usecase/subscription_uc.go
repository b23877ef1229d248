package usecase

import (
	"context"

	"club-bridge/internal/domain"
	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/repository"
	"club-bridge/internal/infra/logging"
	"club-bridge/internal/infra/metrics"
	"club-bridge/internal/infra/security"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase flips email flags from capability links. A wrong
// (userID, secret) pair is reported as domain.ErrNotFound, same as an unknown user.
type SubscriptionUseCase interface {
	ConfirmEmail(ctx context.Context, userID, secret string) error
	UnsubscribeAll(ctx context.Context, userID, secret string) error
	SetDigest(ctx context.Context, userID, secret, digestType string) (model.DigestType, error)
}

type subscriptionUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewSubscriptionUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *subscriptionUC {
	l := logger.With().Str("component", "SubscriptionUC").Logger()
	return &subscriptionUC{users: users, tm: tm, log: &l}
}

func (s *subscriptionUC) ConfirmEmail(ctx context.Context, userID, secret string) error {
	defer logging.TraceDuration(s.log, "SubscriptionUC.ConfirmEmail")()
	return s.mutate(ctx, userID, secret, "confirm", func(u *model.User) bool {
		if u.IsEmailVerified {
			return false
		}
		u.ConfirmEmail()
		return true
	})
}

func (s *subscriptionUC) UnsubscribeAll(ctx context.Context, userID, secret string) error {
	defer logging.TraceDuration(s.log, "SubscriptionUC.UnsubscribeAll")()
	return s.mutate(ctx, userID, secret, "unsubscribe", func(u *model.User) bool {
		if u.IsEmailUnsubscribed && u.DigestType == model.DigestTypeNope {
			return false
		}
		u.UnsubscribeAll()
		return true
	})
}

// SetDigest validates digestType before touching the user, so an unknown
// value never causes a write.
func (s *subscriptionUC) SetDigest(ctx context.Context, userID, secret, digestType string) (model.DigestType, error) {
	defer logging.TraceDuration(s.log, "SubscriptionUC.SetDigest")()

	dt, err := model.ParseDigestType(digestType)
	if err != nil {
		return "", err
	}
	err = s.mutate(ctx, userID, secret, "digest_"+string(dt), func(u *model.User) bool {
		if u.DigestType == dt && !u.IsEmailUnsubscribed {
			return false
		}
		u.SwitchDigest(dt)
		return true
	})
	if err != nil {
		return "", err
	}
	return dt, nil
}

// mutate loads the user behind the capability link, applies change and saves
// only when change reports a difference.
func (s *subscriptionUC) mutate(ctx context.Context, userID, secret, action string, change func(u *model.User) bool) error {
	log := logging.With(logging.WithUserID(ctx, userID), s.log)

	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := s.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		u, err := s.users.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !security.SecretsEqual(u.SecretHash, secret) {
			return domain.ErrNotFound
		}
		if !change(u) {
			return nil
		}
		return s.users.Save(ctx, tx, u)
	})
	if err != nil {
		log.Debug().Err(err).Str("action", action).Msg("subscription change rejected")
		return err
	}
	metrics.IncSubscriptionChange(action)
	log.Info().Str("action", action).Msg("subscription changed")
	return nil
}
