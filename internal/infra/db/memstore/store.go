// Package memstore is an in-memory content store implementing the same
// repository contracts as the Postgres adapter. It backs unit tests and
// the --dev mode of the CLI.
package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v4"

	"club-bridge/internal/domain"
	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/repository"
)

var (
	_ repository.UserRepository     = (*Store)(nil)
	_ repository.PostRepository     = (*PostRepo)(nil)
	_ repository.CommentRepository  = (*CommentRepo)(nil)
	_ repository.VoteRepository     = (*Store)(nil)
	_ repository.SettingsRepository = (*Store)(nil)
	_ repository.TransactionManager = (*Store)(nil)
)

// Store holds every entity. Posts and Comments expose the post and comment
// repositories, whose method names collide with the user repository.
type Store struct {
	mu          sync.RWMutex
	users       map[string]*model.User
	posts       map[string]*model.Post
	comments    map[string]*model.Comment
	votes       []model.Vote
	digestIntro string

	Posts    *PostRepo
	Comments *CommentRepo

	// Error hooks for exercising failure paths.
	SaveUserErr      error
	CreateCommentErr error
}

func New() *Store {
	s := &Store{
		users:    map[string]*model.User{},
		posts:    map[string]*model.Post{},
		comments: map[string]*model.Comment{},
	}
	s.Posts = &PostRepo{s: s}
	s.Comments = &CommentRepo{s: s}
	return s
}

// ---- seeding ----

func (s *Store) AddUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

func (s *Store) AddPost(p *model.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.posts[p.ID] = &cp
}

func (s *Store) AddComment(c *model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.comments[c.ID] = &cp
}

func (s *Store) AddVote(v model.Vote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = append(s.votes, v)
}

func (s *Store) SetDigestIntro(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digestIntro = text
}

// CommentCount returns how many comments are stored.
func (s *Store) CommentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments)
}

// CommentsByAuthor returns the author's comments in no particular order.
func (s *Store) CommentsByAuthor(authorID string) []*model.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Comment
	for _, c := range s.comments {
		if c.AuthorID == authorID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out
}

// Load seeds the store from a JSON fixture (see Fixture).
func (s *Store) Load(data []byte) error {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	for i := range f.Users {
		s.AddUser(&f.Users[i])
	}
	for i := range f.Posts {
		s.AddPost(&f.Posts[i])
	}
	for i := range f.Comments {
		s.AddComment(&f.Comments[i])
	}
	for _, v := range f.Votes {
		s.AddVote(v)
	}
	s.SetDigestIntro(f.DigestIntro)
	return nil
}

// Fixture is the JSON seed format accepted by Load.
type Fixture struct {
	Users       []model.User    `json:"users"`
	Posts       []model.Post    `json:"posts"`
	Comments    []model.Comment `json:"comments"`
	Votes       []model.Vote    `json:"votes"`
	DigestIntro string          `json:"digest_intro"`
}

// ---- transactions ----

func (s *Store) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// ---- users ----

func (s *Store) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Slug == slug {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if tgID > 0 && u.TelegramID == tgID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if s.SaveUserErr != nil {
		return s.SaveUserErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) CountReviewed(ctx context.Context, tx repository.Tx, w model.Window) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.users {
		if u.IsProfileReviewed && w.Contains(u.CreatedAt) {
			n++
		}
	}
	return n, nil
}

// ---- votes & settings ----

func (s *Store) CountReceived(ctx context.Context, tx repository.Tx, authorID string, w model.Window) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.votes {
		if !w.Contains(v.CreatedAt) {
			continue
		}
		switch {
		case v.PostID != "":
			if p, ok := s.posts[v.PostID]; ok && p.AuthorID == authorID {
				n++
			}
		case v.CommentID != "":
			if c, ok := s.comments[v.CommentID]; ok && c.AuthorID == authorID {
				n++
			}
		}
	}
	return n, nil
}

func (s *Store) DigestIntro(ctx context.Context, tx repository.Tx) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.digestIntro, nil
}

// ---- posts ----

type PostRepo struct{ s *Store }

func (r *PostRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PostRepo) Find(ctx context.Context, tx repository.Tx, f repository.PostFilter) ([]*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Post
	for _, p := range r.s.posts {
		if !matchPost(p, f) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Upvotes != b.Upvotes {
			return a.Upvotes > b.Upvotes
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.Before(b.PublishedAt)
		}
		return a.ID < b.ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *PostRepo) FindIntroByAuthor(ctx context.Context, tx repository.Tx, authorID string) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.posts {
		if p.AuthorID == authorID && p.Type == model.PostTypeIntro {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func matchPost(p *model.Post, f repository.PostFilter) bool {
	if !p.IsVisible || !f.Window.Contains(p.PublishedAt) {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, p.Type) {
		return false
	}
	if containsType(f.ExcludeTypes, p.Type) || containsStr(f.ExcludeIDs, p.ID) {
		return false
	}
	if f.OnlyApproved && !p.IsApprovedByModerator {
		return false
	}
	if f.LabelCode != "" && p.LabelCode != f.LabelCode {
		return false
	}
	if p.Upvotes < f.MinUpvotes {
		return false
	}
	if len(f.URLContainsAny) > 0 && !containsAny(p.URL, f.URLContainsAny) {
		return false
	}
	return true
}

// ---- comments ----

type CommentRepo struct{ s *Store }

func (r *CommentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CommentRepo) Create(ctx context.Context, tx repository.Tx, c *model.Comment) error {
	if r.s.CreateCommentErr != nil {
		return r.s.CreateCommentErr
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[c.ID]; ok {
		return domain.ErrInvalidArgument
	}
	if _, ok := r.s.posts[c.PostID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.s.comments[c.ID] = &cp
	return nil
}

func (r *CommentRepo) Find(ctx context.Context, tx repository.Tx, f repository.CommentFilter) ([]*model.CommentWithPost, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.CommentWithPost
	for _, c := range r.s.comments {
		if !c.IsShown() || !f.Window.Contains(c.CreatedAt) {
			continue
		}
		if containsStr(f.ExcludeIDs, c.ID) || c.Upvotes < f.MinUpvotes {
			continue
		}
		if len(f.TextContainsAny) > 0 && !containsAny(c.Text, f.TextContainsAny) {
			continue
		}
		p, ok := r.s.posts[c.PostID]
		if !ok {
			continue
		}
		cwp := &model.CommentWithPost{
			Comment:   *c,
			PostSlug:  p.Slug,
			PostType:  p.Type,
			PostTitle: p.Title,
		}
		if a, ok := r.s.users[c.AuthorID]; ok {
			cwp.AuthorSlug = a.Slug
			cwp.AuthorName = a.FullName
		}
		out = append(out, cwp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Upvotes != b.Upvotes {
			return a.Upvotes > b.Upvotes
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *CommentRepo) CountOnPostsOf(ctx context.Context, tx repository.Tx, authorID string, w model.Window) ([]model.ActivityCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.group(w, func(c *model.Comment, p *model.Post) bool {
		return p.AuthorID == authorID
	}), nil
}

func (r *CommentRepo) CountRepliesTo(ctx context.Context, tx repository.Tx, authorID string, w model.Window) ([]model.ActivityCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.group(w, func(c *model.Comment, _ *model.Post) bool {
		if c.ReplyToID == "" {
			return false
		}
		parent, ok := r.s.comments[c.ReplyToID]
		return ok && parent.AuthorID == authorID
	}), nil
}

// group counts shown comments in w matching pred, grouped by post. Caller holds the read lock.
func (r *CommentRepo) group(w model.Window, pred func(*model.Comment, *model.Post) bool) []model.ActivityCount {
	counts := map[string]*model.ActivityCount{}
	for _, c := range r.s.comments {
		if !c.IsShown() || !w.Contains(c.CreatedAt) {
			continue
		}
		p, ok := r.s.posts[c.PostID]
		if !ok || !pred(c, p) {
			continue
		}
		ac, ok := counts[p.ID]
		if !ok {
			ac = &model.ActivityCount{Post: model.PostRef{Type: p.Type, Slug: p.Slug, Title: p.Title}}
			counts[p.ID] = ac
		}
		ac.Count++
	}
	out := make([]model.ActivityCount, 0, len(counts))
	for _, ac := range counts {
		out = append(out, *ac)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Post.Slug < out[j].Post.Slug })
	return out
}

// ---- helpers ----

func containsType(ts []model.PostType, t model.PostType) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

func containsStr(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
