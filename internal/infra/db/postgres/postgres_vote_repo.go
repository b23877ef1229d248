package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/repository"
)

var (
	_ repository.VoteRepository     = (*PostgresVoteRepo)(nil)
	_ repository.SettingsRepository = (*PostgresSettingsRepo)(nil)
)

type PostgresVoteRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresVoteRepo(pool *pgxpool.Pool) *PostgresVoteRepo {
	return &PostgresVoteRepo{pool: pool}
}

func (r *PostgresVoteRepo) CountReceived(ctx context.Context, tx repository.Tx, authorID string, w model.Window) (int, error) {
	const q = `
SELECT
  (SELECT COUNT(*) FROM post_votes v JOIN posts p ON p.id = v.post_id
    WHERE p.author_id = $1 AND v.created_at BETWEEN $2 AND $3)
+ (SELECT COUNT(*) FROM comment_votes v JOIN comments c ON c.id = v.comment_id
    WHERE c.author_id = $1 AND v.created_at BETWEEN $2 AND $3);`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := exec.QueryRow(ctx, q, authorID, w.Start, w.End).Scan(&n); err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return n, nil
}

type PostgresSettingsRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresSettingsRepo(pool *pgxpool.Pool) *PostgresSettingsRepo {
	return &PostgresSettingsRepo{pool: pool}
}

func (r *PostgresSettingsRepo) DigestIntro(ctx context.Context, tx repository.Tx) (string, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return "", err
	}
	var intro string
	err = exec.QueryRow(ctx, `SELECT COALESCE(digest_intro, '') FROM god_settings ORDER BY id LIMIT 1`).Scan(&intro)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("digest intro: %w", err)
	}
	return intro, nil
}
