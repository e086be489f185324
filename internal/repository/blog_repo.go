package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"courseai/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BlogRepository interface {
	// CreateBlog inserts b and fills in its id. A taken slug is ErrDuplicate.
	CreateBlog(ctx context.Context, b *model.Blog) error
	// GetBlogBySlug returns nil if no post has that slug.
	GetBlogBySlug(ctx context.Context, slug string) (*model.Blog, error)
	ListBlogs(ctx context.Context, filter model.BlogFilter) ([]model.Blog, error)
	// UpdateBlog overwrites every mutable column of the post with b's id and
	// reports false if it no longer exists.
	UpdateBlog(ctx context.Context, b *model.Blog) (bool, error)
	DeleteBlog(ctx context.Context, slug string) (bool, error)
	ListCategories(ctx context.Context, publishedOnly bool) ([]string, error)
	ListTags(ctx context.Context, publishedOnly bool) ([]string, error)
}

type blogRepo struct {
	pool *pgxpool.Pool
}

func NewBlogRepo(pool *pgxpool.Pool) BlogRepository {
	return &blogRepo{pool: pool}
}

const blogColumns = `id, slug, title, content, excerpt, category, tags, COALESCE(author_id::text, ''), status, published_at, created_at, updated_at`

func scanBlog(row pgx.Row, b *model.Blog) error {
	var status string
	if err := row.Scan(
		&b.ID,
		&b.Slug,
		&b.Title,
		&b.Content,
		&b.Excerpt,
		&b.Category,
		&b.Tags,
		&b.AuthorID,
		&status,
		&b.PublishedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return err
	}
	b.Status = model.BlogStatus(status)
	return nil
}

func (r *blogRepo) CreateBlog(ctx context.Context, b *model.Blog) error {
	query := `
		INSERT INTO blogs (slug, title, content, excerpt, category, tags, author_id, status, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, NULLIF($7, '')::uuid, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		b.Slug, b.Title, b.Content, b.Excerpt, b.Category, b.Tags, b.AuthorID,
		string(b.Status), b.PublishedAt, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		switch {
		case isPgError(err, pgUniqueViolation):
			return fmt.Errorf("creating blog %s: %w", b.Slug, ErrDuplicate)
		case isPgError(err, pgForeignKeyViolation):
			return fmt.Errorf("creating blog for author %s: %w", b.AuthorID, ErrMissingReference)
		}
		return fmt.Errorf("creating blog %s: %w", b.Slug, err)
	}
	return nil
}

func (r *blogRepo) GetBlogBySlug(ctx context.Context, slug string) (*model.Blog, error) {
	query := `SELECT ` + blogColumns + ` FROM blogs WHERE slug = $1`
	var b model.Blog
	if err := scanBlog(r.pool.QueryRow(ctx, query, slug), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting blog %s: %w", slug, err)
	}
	return &b, nil
}

// ListBlogs returns published posts by publish date and drafts after them,
// newest first within each group.
func (r *blogRepo) ListBlogs(ctx context.Context, filter model.BlogFilter) ([]model.Blog, error) {
	where, args := blogFilterClause(filter)
	query := `SELECT ` + blogColumns + ` FROM blogs` + where +
		` ORDER BY published_at DESC NULLS LAST, created_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing blogs: %w", err)
	}
	defer rows.Close()

	blogs := []model.Blog{}
	for rows.Next() {
		var b model.Blog
		if err := scanBlog(rows, &b); err != nil {
			return nil, fmt.Errorf("scanning blog row: %w", err)
		}
		blogs = append(blogs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating blog rows: %w", err)
	}
	return blogs, nil
}

// blogFilterClause builds the WHERE clause for filter with numbered params.
func blogFilterClause(filter model.BlogFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+next(string(filter.Status)))
	}
	if filter.Category != "" {
		conds = append(conds, "lower(category) = lower("+next(filter.Category)+")")
	}
	if filter.Tag != "" {
		conds = append(conds, "tags ? "+next(filter.Tag))
	}
	if filter.Search != "" {
		p := next("%" + escapeLike(filter.Search) + "%")
		conds = append(conds, "(title ILIKE "+p+" OR excerpt ILIKE "+p+" OR content ILIKE "+p+")")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *blogRepo) UpdateBlog(ctx context.Context, b *model.Blog) (bool, error) {
	if !validID(b.ID) {
		return false, nil
	}
	query := `
		UPDATE blogs
		SET title = $1, content = $2, excerpt = $3, category = $4, tags = $5::jsonb,
		    status = $6, published_at = $7, updated_at = $8
		WHERE id = $9
	`
	tag, err := r.pool.Exec(ctx, query,
		b.Title, b.Content, b.Excerpt, b.Category, b.Tags,
		string(b.Status), b.PublishedAt, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating blog %s: %w", b.Slug, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *blogRepo) DeleteBlog(ctx context.Context, slug string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blogs WHERE slug = $1`, slug)
	if err != nil {
		return false, fmt.Errorf("deleting blog %s: %w", slug, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *blogRepo) ListCategories(ctx context.Context, publishedOnly bool) ([]string, error) {
	query := `SELECT DISTINCT category FROM blogs WHERE category <> ''`
	if publishedOnly {
		query += ` AND status = 'published'`
	}
	return r.queryStrings(ctx, query+` ORDER BY category`, "categories")
}

func (r *blogRepo) ListTags(ctx context.Context, publishedOnly bool) ([]string, error) {
	query := `SELECT DISTINCT tag FROM blogs, jsonb_array_elements_text(tags) AS tag`
	if publishedOnly {
		query += ` WHERE status = 'published'`
	}
	return r.queryStrings(ctx, query+` ORDER BY tag`, "tags")
}

func (r *blogRepo) queryStrings(ctx context.Context, query, what string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing blog %s: %w", what, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning blog %s: %w", what, err)
	}
	if values == nil {
		return []string{}, nil
	}
	return values, nil
}
