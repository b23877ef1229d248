package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"club-bridge/internal/domain"
	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/repository"
)

var _ repository.CommentRepository = (*PostgresCommentRepo)(nil)

type PostgresCommentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCommentRepo(pool *pgxpool.Pool) *PostgresCommentRepo {
	return &PostgresCommentRepo{pool: pool}
}

const commentColumns = `
c.id, c.post_id, c.author_id, COALESCE(c.reply_to_id, ''), c.text, c.upvotes,
c.is_visible, c.is_deleted, c.useragent, COALESCE(c.metadata, '{}'::jsonb), c.created_at, c.updated_at`

func commentDest(c *model.Comment, meta *[]byte) []interface{} {
	return []interface{}{&c.ID, &c.PostID, &c.AuthorID, &c.ReplyToID, &c.Text, &c.Upvotes,
		&c.IsVisible, &c.IsDeleted, &c.UserAgent, meta, &c.CreatedAt, &c.UpdatedAt}
}

func (r *PostgresCommentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Comment, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var (
		c    model.Comment
		meta []byte
	)
	err = exec.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments c WHERE c.id = $1`, id).Scan(commentDest(&c, &meta)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	c.Metadata = meta
	return &c, nil
}

// Create inserts a single row. Post counters are maintained by the site.
func (r *PostgresCommentRepo) Create(ctx context.Context, tx repository.Tx, c *model.Comment) error {
	const q = `
INSERT INTO comments (
  id, post_id, author_id, reply_to_id, text, upvotes,
  is_visible, is_deleted, useragent, metadata, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	var replyTo, meta interface{}
	if c.ReplyToID != "" {
		replyTo = c.ReplyToID
	}
	if len(c.Metadata) > 0 {
		meta = string(c.Metadata)
	}
	_, err = exec.Exec(ctx, q, c.ID, c.PostID, c.AuthorID, replyTo, c.Text, c.Upvotes,
		c.IsVisible, c.IsDeleted, c.UserAgent, meta, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrNotFound
		}
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *PostgresCommentRepo) Find(ctx context.Context, tx repository.Tx, f repository.CommentFilter) ([]*model.CommentWithPost, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	q := &whereBuilder{}
	q.add("c.is_visible")
	q.add("NOT c.is_deleted")
	q.add("c.created_at BETWEEN %s AND %s", f.Window.Start, f.Window.End)
	if len(f.ExcludeIDs) > 0 {
		q.add("NOT (c.id = ANY(%s))", f.ExcludeIDs)
	}
	if f.MinUpvotes > 0 {
		q.add("c.upvotes >= %s", f.MinUpvotes)
	}
	if len(f.TextContainsAny) > 0 {
		q.addAnyContains("c.text", f.TextContainsAny)
	}

	sql := `SELECT ` + commentColumns + `, p.slug, p.type, p.title, COALESCE(u.slug, ''), COALESCE(u.full_name, '')
  FROM comments c
  JOIN posts p ON p.id = c.post_id
  LEFT JOIN users u ON u.id = c.author_id
 WHERE ` + q.where() + `
 ORDER BY c.upvotes DESC, c.created_at ASC, c.id ASC` + q.limit(f.Limit)

	rows, err := exec.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	defer rows.Close()

	var out []*model.CommentWithPost
	for rows.Next() {
		var (
			cwp  model.CommentWithPost
			meta []byte
			pt   string
		)
		dest := append(commentDest(&cwp.Comment, &meta), &cwp.PostSlug, &pt, &cwp.PostTitle, &cwp.AuthorSlug, &cwp.AuthorName)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		cwp.Metadata = meta
		cwp.PostType = model.PostType(pt)
		out = append(out, &cwp)
	}
	return out, rows.Err()
}

func (r *PostgresCommentRepo) CountOnPostsOf(ctx context.Context, tx repository.Tx, authorID string, w model.Window) ([]model.ActivityCount, error) {
	const q = `
SELECT p.type, p.slug, p.title, COUNT(c.id)
  FROM comments c
  JOIN posts p ON p.id = c.post_id
 WHERE p.author_id = $1
   AND c.is_visible AND NOT c.is_deleted
   AND c.created_at BETWEEN $2 AND $3
 GROUP BY p.id, p.type, p.slug, p.title
 ORDER BY p.slug;`
	return r.countGrouped(ctx, tx, q, authorID, w)
}

func (r *PostgresCommentRepo) CountRepliesTo(ctx context.Context, tx repository.Tx, authorID string, w model.Window) ([]model.ActivityCount, error) {
	const q = `
SELECT p.type, p.slug, p.title, COUNT(c.id)
  FROM comments c
  JOIN comments parent ON parent.id = c.reply_to_id
  JOIN posts p ON p.id = c.post_id
 WHERE parent.author_id = $1
   AND c.is_visible AND NOT c.is_deleted
   AND c.created_at BETWEEN $2 AND $3
 GROUP BY p.id, p.type, p.slug, p.title
 ORDER BY p.slug;`
	return r.countGrouped(ctx, tx, q, authorID, w)
}

func (r *PostgresCommentRepo) countGrouped(ctx context.Context, tx repository.Tx, q, authorID string, w model.Window) ([]model.ActivityCount, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, q, authorID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	defer rows.Close()

	var out []model.ActivityCount
	for rows.Next() {
		var (
			ac model.ActivityCount
			pt string
		)
		if err := rows.Scan(&pt, &ac.Post.Slug, &ac.Post.Title, &ac.Count); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		ac.Post.Type = model.PostType(pt)
		out = append(out, ac)
	}
	return out, rows.Err()
}
