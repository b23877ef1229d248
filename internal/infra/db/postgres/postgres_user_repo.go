package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"club-bridge/internal/domain"
	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

const userColumns = `
id, slug, full_name, email, telegram_id, secret_hash,
is_email_verified, is_email_unsubscribed, email_digest_type,
is_profile_reviewed, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		tgID *int64
		dt   string
	)
	err := row.Scan(&u.ID, &u.Slug, &u.FullName, &u.Email, &tgID, &u.SecretHash,
		&u.IsEmailVerified, &u.IsEmailUnsubscribed, &dt,
		&u.IsProfileReviewed, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if tgID != nil {
		u.TelegramID = *tgID
	}
	u.DigestType = model.DigestType(dt)
	return &u, nil
}

func (r *PostgresUserRepo) findOne(ctx context.Context, tx repository.Tx, where string, arg interface{}) (*model.User, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(exec.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, err
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.findOne(ctx, tx, `id = $1`, id)
}

func (r *PostgresUserRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.User, error) {
	return r.findOne(ctx, tx, `slug = $1`, slug)
}

func (r *PostgresUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	if tgID <= 0 {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, tx, `telegram_id = $1`, tgID)
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
UPDATE users
   SET email = $2,
       is_email_verified = $3,
       is_email_unsubscribed = $4,
       email_digest_type = $5,
       updated_at = $6
 WHERE id = $1;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := exec.Exec(ctx, q, u.ID, u.Email, u.IsEmailVerified, u.IsEmailUnsubscribed, string(u.DigestType), u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) CountReviewed(ctx context.Context, tx repository.Tx, w model.Window) (int, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	err = exec.QueryRow(ctx, `
SELECT COUNT(*) FROM users
 WHERE is_profile_reviewed AND created_at BETWEEN $1 AND $2;`, w.Start, w.End).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reviewed users: %w", err)
	}
	return n, nil
}
