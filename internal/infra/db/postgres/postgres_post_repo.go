package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"club-bridge/internal/domain"
	"club-bridge/internal/domain/model"
	"club-bridge/internal/domain/ports/repository"
)

var _ repository.PostRepository = (*PostgresPostRepo)(nil)

type PostgresPostRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPostRepo(pool *pgxpool.Pool) *PostgresPostRepo {
	return &PostgresPostRepo{pool: pool}
}

const postColumns = `
p.id, p.slug, p.type, p.title, p.text, p.url, p.author_id, COALESCE(p.label_code, ''),
p.upvotes, p.comment_count, p.is_visible, p.is_approved_by_moderator, p.published_at, p.created_at`

func scanPost(row pgx.Row) (*model.Post, error) {
	var (
		p  model.Post
		pt string
	)
	err := row.Scan(&p.ID, &p.Slug, &pt, &p.Title, &p.Text, &p.URL, &p.AuthorID, &p.LabelCode,
		&p.Upvotes, &p.CommentCount, &p.IsVisible, &p.IsApprovedByModerator, &p.PublishedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Type = model.PostType(pt)
	return &p, nil
}

func (r *PostgresPostRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Post, error) {
	return r.findOne(ctx, tx, `p.id = $1`, id)
}

func (r *PostgresPostRepo) FindIntroByAuthor(ctx context.Context, tx repository.Tx, authorID string) (*model.Post, error) {
	return r.findOne(ctx, tx, `p.author_id = $1 AND p.type = 'intro'`, authorID)
}

func (r *PostgresPostRepo) findOne(ctx context.Context, tx repository.Tx, where string, arg interface{}) (*model.Post, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	p, err := scanPost(exec.QueryRow(ctx, `SELECT `+postColumns+` FROM posts p WHERE `+where+` LIMIT 1`, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

func (r *PostgresPostRepo) Find(ctx context.Context, tx repository.Tx, f repository.PostFilter) ([]*model.Post, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	q := &whereBuilder{}
	q.add("p.is_visible")
	q.add("p.published_at BETWEEN %s AND %s", f.Window.Start, f.Window.End)
	if len(f.Types) > 0 {
		q.add("p.type = ANY(%s)", postTypes(f.Types))
	}
	if len(f.ExcludeTypes) > 0 {
		q.add("NOT (p.type = ANY(%s))", postTypes(f.ExcludeTypes))
	}
	if len(f.ExcludeIDs) > 0 {
		q.add("NOT (p.id = ANY(%s))", f.ExcludeIDs)
	}
	if f.OnlyApproved {
		q.add("p.is_approved_by_moderator")
	}
	if f.LabelCode != "" {
		q.add("p.label_code = %s", f.LabelCode)
	}
	if f.MinUpvotes > 0 {
		q.add("p.upvotes >= %s", f.MinUpvotes)
	}
	if len(f.URLContainsAny) > 0 {
		q.addAnyContains("p.url", f.URLContainsAny)
	}

	sql := `SELECT ` + postColumns + ` FROM posts p WHERE ` + q.where() +
		` ORDER BY p.upvotes DESC, p.published_at ASC, p.id ASC` + q.limit(f.Limit)

	rows, err := exec.Query(ctx, sql, q.args...)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer rows.Close()

	var out []*model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func postTypes(ts []model.PostType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}

// whereBuilder numbers placeholders while conditions are appended. Each %s in
// a condition consumes one argument.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (b *whereBuilder) add(cond string, args ...interface{}) {
	ph := make([]interface{}, len(args))
	for i, a := range args {
		b.args = append(b.args, a)
		ph[i] = fmt.Sprintf("$%d", len(b.args))
	}
	if len(ph) > 0 {
		cond = fmt.Sprintf(cond, ph...)
	}
	b.conds = append(b.conds, cond)
}

// addAnyContains matches when column contains at least one of subs.
func (b *whereBuilder) addAnyContains(column string, subs []string) {
	parts := make([]string, len(subs))
	for i, s := range subs {
		b.args = append(b.args, s)
		parts[i] = fmt.Sprintf("strpos(%s, $%d) > 0", column, len(b.args))
	}
	b.conds = append(b.conds, "("+strings.Join(parts, " OR ")+")")
}

func (b *whereBuilder) where() string {
	if len(b.conds) == 0 {
		return "TRUE"
	}
	return strings.Join(b.conds, " AND ")
}

func (b *whereBuilder) limit(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", n)
}
