//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"club-bridge/internal/domain"
)

// --- User Model Tests ---

func TestParseDigestType(t *testing.T) {
	tests := []struct {
		in      string
		want    DigestType
		wantErr bool
	}{
		{in: "daily", want: DigestTypeDaily},
		{in: "weekly", want: DigestTypeWeekly},
		{in: "nope", want: DigestTypeNope},
		{in: "hourly", wantErr: true},
		{in: "", wantErr: true},
		{in: "DAILY", wantErr: true},
		{in: " daily", wantErr: true},
		{in: "weekly\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDigestType(tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUserFlags(t *testing.T) {
	t.Run("unsubscribe all clears the digest", func(t *testing.T) {
		u := &User{ID: "u1", DigestType: DigestTypeDaily}
		u.UnsubscribeAll()
		if !u.IsEmailUnsubscribed {
			t.Error("expected unsubscribed flag to be set")
		}
		if u.DigestType != DigestTypeNope {
			t.Errorf("expected digest to be nope, got %q", u.DigestType)
		}
	})

	t.Run("switching digest resubscribes", func(t *testing.T) {
		u := &User{ID: "u1", IsEmailUnsubscribed: true, DigestType: DigestTypeNope}
		u.SwitchDigest(DigestTypeWeekly)
		if u.IsEmailUnsubscribed {
			t.Error("expected unsubscribed flag to be cleared")
		}
		if u.DigestType != DigestTypeWeekly {
			t.Errorf("expected weekly, got %q", u.DigestType)
		}
	})

	t.Run("telegram link", func(t *testing.T) {
		if (&User{ID: "u1"}).HasTelegram() {
			t.Error("user without telegram id reported as linked")
		}
		if !(&User{ID: "u1", TelegramID: 42}).HasTelegram() {
			t.Error("linked user reported as unlinked")
		}
	})
}

// --- Comment Model Tests ---

func TestNewComment(t *testing.T) {
	t.Run("should create a visible comment", func(t *testing.T) {
		c, err := NewComment("post-1", "user-1", "", "hello")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if c.ID == "" {
			t.Error("expected comment ID to be generated")
		}
		if !c.IsShown() {
			t.Error("expected new comment to be shown")
		}
		if !c.IsTopLevel() {
			t.Error("expected comment without parent to be top level")
		}
	})

	t.Run("should fail without text", func(t *testing.T) {
		_, err := NewComment("post-1", "user-1", "", "")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

// --- Digest Model Tests ---

func TestWindowContains(t *testing.T) {
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: start.Add(24 * time.Hour)}

	if !w.Contains(start) || !w.Contains(w.End) {
		t.Error("window bounds must be inclusive")
	}
	if w.Contains(start.Add(-time.Second)) || w.Contains(w.End.Add(time.Second)) {
		t.Error("window must exclude instants outside its bounds")
	}
}

func TestContainsVideoLink(t *testing.T) {
	cases := map[string]bool{
		"look https://youtu.be/abc":           true,
		"https://www.youtube.com/watch?v=xyz": true,
		"http://youtu.be/abc":                 false,
		"https://vimeo.com/123":               false,
		"":                                    false,
	}
	for in, want := range cases {
		if got := ContainsVideoLink(in); got != want {
			t.Errorf("ContainsVideoLink(%q) = %v, want %v", in, got, want)
		}
	}
}
