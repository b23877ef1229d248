//go:build !integration

package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/adapter"
	"club-bridge/internal/infra/db/memstore"
	"club-bridge/internal/usecase"
)

const commentLink = "https://club.test/post/alice-one/comment/0000aaaa-bb11-cc22-dd33-eeeeffff0001/"

func seedReply() *memstore.Store {
	s := memstore.New()
	s.AddUser(&model.User{ID: "u1", Slug: "alice", TelegramID: 1001})
	s.AddUser(&model.User{ID: "u2", Slug: "bob", TelegramID: 1002})
	s.AddPost(&model.Post{ID: "p1", Slug: "alice-one", Type: model.PostTypePost, AuthorID: "u1", IsVisible: true})
	s.AddComment(&model.Comment{ID: "0000aaaa-bb11-cc22-dd33-eeeeffff0000", PostID: "p1", AuthorID: "u1", Text: "root", IsVisible: true})
	s.AddComment(&model.Comment{ID: "0000aaaa-bb11-cc22-dd33-eeeeffff0001", PostID: "p1", AuthorID: "u1",
		ReplyToID: "0000aaaa-bb11-cc22-dd33-eeeeffff0000", Text: "child", IsVisible: true})
	return s
}

func replyMsg(sender int64, url string) model.InboundMessage {
	return model.InboundMessage{
		SenderID: sender,
		ChatID:   sender,
		Text:     "thanks!",
		ReplyTo: &model.QuotedMessage{
			ID:   7,
			Text: "New comment",
			Entities: []model.MessageEntity{
				{Type: "bold"},
				{Type: model.EntityTextLink, URL: url},
			},
		},
		Raw: json.RawMessage(`{"update_id":1}`),
	}
}

type replyFixture struct {
	store   *memstore.Store
	bot     *MockTelegramBot
	limiter *stubLimiter
	uc      usecase.ReplyUseCase
}

func newReplyFixture(t *testing.T) *replyFixture {
	f := &replyFixture{store: seedReply(), bot: &MockTelegramBot{}, limiter: &stubLimiter{allow: true}}
	f.uc = usecase.NewReplyUseCase(f.store, f.store.Posts, f.store.Comments, f.limiter, f.bot,
		newTestTranslator(t), newTestLinks(), newTestLogger())
	return f
}

func TestReplyUseCase_HandleReply(t *testing.T) {
	ctx := context.Background()

	t.Run("message without reply target has no side effects", func(t *testing.T) {
		f := newReplyFixture(t)
		before := f.store.CommentCount()
		msg := replyMsg(1002, commentLink)
		msg.ReplyTo = nil

		outcome, err := f.uc.HandleReply(ctx, msg)
		if err != nil || outcome != usecase.OutcomeIgnored {
			t.Fatalf("got (%s, %v), want ignored", outcome, err)
		}
		if f.store.CommentCount() != before || len(f.bot.Messages()) != 0 || f.limiter.calls != 0 {
			t.Error("expected zero side effects")
		}
	})

	t.Run("unknown sender gets instructions", func(t *testing.T) {
		f := newReplyFixture(t)
		msg := replyMsg(5555, commentLink)
		msg.ChatID = -100

		outcome, err := f.uc.HandleReply(ctx, msg)
		if err != nil || outcome != usecase.OutcomeUnlinked {
			t.Fatalf("got (%s, %v), want unlinked", outcome, err)
		}
		sent := f.bot.Messages()
		if len(sent) != 1 || sent[0].ChatID != 5555 {
			t.Fatalf("expected one message to the sender, got %+v", sent)
		}
		if !strings.Contains(sent[0].Text, "https://club.test") {
			t.Errorf("instruction should point at the site: %q", sent[0].Text)
		}
	})

	t.Run("quoted message without comment link is dropped", func(t *testing.T) {
		f := newReplyFixture(t)
		msg := replyMsg(1002, "https://club.test/post/alice-one/")
		msg.ReplyTo.Entities = append(msg.ReplyTo.Entities, model.MessageEntity{Type: "url", URL: commentLink})

		outcome, err := f.uc.HandleReply(ctx, msg)
		if err != nil || outcome != usecase.OutcomeNoLink {
			t.Fatalf("got (%s, %v), want no_link", outcome, err)
		}
		if len(f.bot.Messages()) != 0 {
			t.Error("no message expected")
		}
	})

	t.Run("unknown comment is dropped", func(t *testing.T) {
		f := newReplyFixture(t)
		outcome, err := f.uc.HandleReply(ctx, replyMsg(1002, "https://club.test/post/x/comment/deadbeef/"))
		if err != nil || outcome != usecase.OutcomeCommentMissing {
			t.Fatalf("got (%s, %v), want comment_missing", outcome, err)
		}
		if len(f.bot.Messages()) != 0 {
			t.Error("no message expected")
		}
	})

	t.Run("rate limited user is told so in the chat", func(t *testing.T) {
		f := newReplyFixture(t)
		f.limiter.allow = false
		before := f.store.CommentCount()
		msg := replyMsg(1002, commentLink)
		msg.ChatID = -100

		outcome, err := f.uc.HandleReply(ctx, msg)
		if err != nil || outcome != usecase.OutcomeRateLimited {
			t.Fatalf("got (%s, %v), want rate_limited", outcome, err)
		}
		sent := f.bot.Messages()
		if len(sent) != 1 || sent[0].ChatID != -100 {
			t.Fatalf("expected one message to the chat, got %+v", sent)
		}
		if f.store.CommentCount() != before {
			t.Error("no comment expected")
		}
	})

	t.Run("valid reply creates one threaded comment and one confirmation", func(t *testing.T) {
		// --- Arrange ---
		f := newReplyFixture(t)
		before := f.store.CommentCount()

		// --- Act ---
		outcome, err := f.uc.HandleReply(ctx, replyMsg(1002, commentLink))

		// --- Assert ---
		if err != nil || outcome != usecase.OutcomeReplied {
			t.Fatalf("got (%s, %v), want replied", outcome, err)
		}
		if f.store.CommentCount() != before+1 {
			t.Fatalf("expected exactly one new comment")
		}
		created := f.store.CommentsByAuthor("u2")
		if len(created) != 1 {
			t.Fatalf("expected one comment by bob, got %d", len(created))
		}
		c := created[0]
		if c.PostID != "p1" || c.Text != "thanks!" {
			t.Errorf("unexpected comment: %+v", c)
		}
		if c.ReplyToID != "0000aaaa-bb11-cc22-dd33-eeeeffff0000" {
			t.Errorf("expected reply under the thread root, got %q", c.ReplyToID)
		}
		if c.UserAgent != usecase.BotUserAgent {
			t.Errorf("UserAgent = %q", c.UserAgent)
		}
		var meta map[string]json.RawMessage
		if err := json.Unmarshal(c.Metadata, &meta); err != nil || string(meta["telegram"]) != `{"update_id":1}` {
			t.Errorf("metadata = %s (%v)", c.Metadata, err)
		}

		sent := f.bot.Messages()
		if len(sent) != 1 {
			t.Fatalf("expected one confirmation, got %d", len(sent))
		}
		wantURL := "https://club.test/post/alice-one/comment/" + c.ID + "/"
		if !strings.Contains(sent[0].Text, wantURL) || sent[0].ParseMode != adapter.ParseModeMarkdown {
			t.Errorf("confirmation = %+v, want link %s", sent[0], wantURL)
		}
	})

	t.Run("limiter outage lets the comment through", func(t *testing.T) {
		f := newReplyFixture(t)
		f.limiter.allow = false
		f.limiter.err = errors.New("redis down")
		outcome, err := f.uc.HandleReply(ctx, replyMsg(1002, commentLink))
		if err != nil || outcome != usecase.OutcomeReplied {
			t.Fatalf("got (%s, %v), want replied", outcome, err)
		}
	})

	t.Run("store failure is returned", func(t *testing.T) {
		f := newReplyFixture(t)
		f.store.CreateCommentErr = errors.New("db down")
		_, err := f.uc.HandleReply(ctx, replyMsg(1002, commentLink))
		if err == nil {
			t.Fatal("expected error")
		}
		if len(f.bot.Messages()) != 0 {
			t.Error("no confirmation expected")
		}
		if len(f.limiter.recorded) != 0 {
			t.Errorf("a failed create must not spend the budget, recorded %v", f.limiter.recorded)
		}
	})

	t.Run("stored comment spends the budget once", func(t *testing.T) {
		f := newReplyFixture(t)
		outcome, err := f.uc.HandleReply(ctx, replyMsg(1002, commentLink))
		if err != nil || outcome != usecase.OutcomeReplied {
			t.Fatalf("got (%s, %v), want replied", outcome, err)
		}
		if len(f.limiter.recorded) != 1 {
			t.Errorf("recorded = %v, want one entry", f.limiter.recorded)
		}
	})

	t.Run("record failure still confirms", func(t *testing.T) {
		f := newReplyFixture(t)
		f.limiter.recordErr = errors.New("redis down")
		outcome, err := f.uc.HandleReply(ctx, replyMsg(1002, commentLink))
		if err != nil || outcome != usecase.OutcomeReplied {
			t.Fatalf("got (%s, %v), want replied", outcome, err)
		}
		if len(f.bot.Messages()) != 1 {
			t.Errorf("expected one confirmation, got %d", len(f.bot.Messages()))
		}
	})
}

func TestCommentIDFromURL(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{commentLink, "0000aaaa-bb11-cc22-dd33-eeeeffff0001", true},
		{"http://club.test/post/a/comment/ABCDEF/", "ABCDEF", true},
		{"https://club.test/post/a/comment/xyz/", "", false},
		{"https://club.test/post/a/", "", false},
		{"see https://club.test/post/a/comment/abc/", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			id, ok := usecase.CommentIDFromURL(tt.url)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("got (%q, %v), want (%q, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}
