package model

import (
	"time"

	"club-bridge/internal/domain"
)

// DigestType is the user's email digest preference.
type DigestType string

const (
	DigestTypeDaily  DigestType = "daily"
	DigestTypeWeekly DigestType = "weekly"
	DigestTypeNope   DigestType = "nope"
)

// ParseDigestType accepts only the known digest preferences, matched exactly.
func ParseDigestType(s string) (DigestType, error) {
	switch DigestType(s) {
	case DigestTypeDaily:
		return DigestTypeDaily, nil
	case DigestTypeWeekly:
		return DigestTypeWeekly, nil
	case DigestTypeNope:
		return DigestTypeNope, nil
	}
	return "", domain.ErrNotFound
}

// User is the club member as seen by the bridge. The content store owns it;
// the bridge only flips email and digest flags.
type User struct {
	ID                  string
	Slug                string
	FullName            string
	Email               string
	TelegramID          int64
	SecretHash          string
	IsEmailVerified     bool
	IsEmailUnsubscribed bool
	DigestType          DigestType
	IsProfileReviewed   bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// HasTelegram reports whether the account is linked to a telegram chat.
func (u *User) HasTelegram() bool { return u != nil && u.TelegramID > 0 }

func (u *User) ConfirmEmail() {
	u.IsEmailVerified = true
	u.UpdatedAt = time.Now()
}

func (u *User) UnsubscribeAll() {
	u.IsEmailUnsubscribed = true
	u.DigestType = DigestTypeNope
	u.UpdatedAt = time.Now()
}

func (u *User) SwitchDigest(t DigestType) {
	u.DigestType = t
	u.IsEmailUnsubscribed = false
	u.UpdatedAt = time.Now()
}
