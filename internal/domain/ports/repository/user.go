package repository

import (
	"context"

	"club-bridge/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindBySlug(ctx context.Context, tx Tx, slug string) (*model.User, error)
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	// Save persists the email and digest flags of an existing user.
	Save(ctx context.Context, tx Tx, u *model.User) error
	// CountReviewed counts users created in the window whose profile passed review.
	CountReviewed(ctx context.Context, tx Tx, w model.Window) (int, error)
}
