//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"club-bridge/internal/domain"
	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
)

func insertUser(t *testing.T, id, slug string, tgID *int64, reviewed bool, createdAt time.Time) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `
INSERT INTO users (id, slug, full_name, telegram_id, secret_hash, is_profile_reviewed, created_at, updated_at)
VALUES ($1, $2, $2, $3, 'secret', $4, $5, $5)`, id, slug, tgID, reviewed, createdAt)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
}

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewPostgresUserRepo(testPool)
	ctx := context.Background()

	t.Run("should find and update flags", func(t *testing.T) {
		cleanup(t)
		tg := int64(123456789)
		insertUser(t, "u1", "alice", &tg, true, time.Now())
		insertUser(t, "u2", "bob", nil, false, time.Now())

		// 1. Read the user back by Telegram ID
		found, err := repo.FindByTelegramID(ctx, nil, tg)
		if err != nil {
			t.Fatalf("Failed to find user by telegram ID: %v", err)
		}
		if found.ID != "u1" || found.SecretHash != "secret" {
			t.Errorf("unexpected user: %+v", found)
		}

		// 2. Users without telegram are found by slug and carry a zero id
		bob, err := repo.FindBySlug(ctx, nil, "bob")
		if err != nil {
			t.Fatalf("FindBySlug: %v", err)
		}
		if bob.HasTelegram() {
			t.Error("bob must not have telegram")
		}

		// 3. Update flags inside a transaction
		tm := NewTxManager(testPool)
		err = tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			u, err := repo.FindByID(ctx, tx, "u1")
			if err != nil {
				return err
			}
			u.UnsubscribeAll()
			return repo.Save(ctx, tx, u)
		})
		if err != nil {
			t.Fatalf("WithTx: %v", err)
		}
		updated, _ := repo.FindByID(ctx, nil, "u1")
		if !updated.IsEmailUnsubscribed || updated.DigestType != model.DigestTypeNope {
			t.Errorf("flags not persisted: %+v", updated)
		}
	})

	t.Run("should report missing users", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByID(ctx, nil, "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := repo.Save(ctx, nil, &model.User{ID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound on save, got %v", err)
		}
	})

	t.Run("should count reviewed users in window", func(t *testing.T) {
		cleanup(t)
		now := time.Now()
		insertUser(t, "u1", "a", nil, true, now.Add(-time.Hour))
		insertUser(t, "u2", "b", nil, false, now.Add(-time.Hour))
		insertUser(t, "u3", "c", nil, true, now.Add(-30*24*time.Hour))

		n, err := repo.CountReviewed(ctx, nil, model.Window{Start: now.Add(-24 * time.Hour), End: now})
		if err != nil {
			t.Fatalf("CountReviewed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1, got %d", n)
		}
	})
}
