package postgres

import (
	"context"
	"errors"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// BlogRepo implements BlogRepository using PostgreSQL.
type BlogRepo struct{ db *DB }

// NewBlogRepo constructs a blog repository.
func NewBlogRepo(db *DB) *BlogRepo { return &BlogRepo{db: db} }

// ListWithRelations reads blogs, likes and comment ids in one read-only snapshot.
func (r *BlogRepo) ListWithRelations(ctx context.Context) (blogs []model.Blog, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const selBlogs = `
SELECT b.id, b.title, b.content, b.image_url, b.category_id, COALESCE(c.name, ''), COALESCE(b.tags, '{}'), b.author_id, b.created_at
FROM blogs b LEFT JOIN categories c ON c.id = b.category_id
ORDER BY b.created_at DESC`
	const selLikes = `SELECT blog_id, user_id FROM likes ORDER BY id`
	const selComments = `SELECT id, blog_id FROM comments ORDER BY created_at`

	rows, err := tx.Query(ctx, selBlogs)
	if err != nil {
		return nil, err
	}
	byID := map[int64]int{}
	for rows.Next() {
		b, scanErr := scanBlog(rows)
		if scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		b.Likes = []uuid.UUID{}
		b.Comments = []model.Comment{}
		byID[b.ID] = len(blogs)
		blogs = append(blogs, *b)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, selLikes)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			blogID int64
			userID uuid.UUID
		)
		if err = rows.Scan(&blogID, &userID); err != nil {
			rows.Close()
			return nil, err
		}
		if i, ok := byID[blogID]; ok {
			blogs[i].Likes = append(blogs[i].Likes, userID)
		}
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, selComments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c model.Comment
		if err = rows.Scan(&c.ID, &c.BlogID); err != nil {
			return nil, err
		}
		if i, ok := byID[c.BlogID]; ok {
			blogs[i].Comments = append(blogs[i].Comments, c)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return blogs, nil
}

// Create inserts a blog and returns it with its category name.
func (r *BlogRepo) Create(ctx context.Context, in model.NewBlog) (*model.Blog, error) {
	const q = `
WITH ins AS (
  INSERT INTO blogs (title, content, image_url, category_id, tags, author_id)
  VALUES ($1, $2, $3, $4, $5, $6)
  RETURNING id, title, content, image_url, category_id, tags, author_id, created_at
)
SELECT ins.id, ins.title, ins.content, ins.image_url, ins.category_id, COALESCE(c.name, ''), COALESCE(ins.tags, '{}'), ins.author_id, ins.created_at
FROM ins LEFT JOIN categories c ON c.id = ins.category_id`
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return scanBlog(r.db.Pool.QueryRow(ctx, q, in.Title, in.Content, in.ImageURL, in.CategoryID, tags, in.AuthorID))
}

// Update changes the non-nil fields of upd and returns the stored row.
// An empty ImageURL and a zero CategoryID clear the column.
func (r *BlogRepo) Update(ctx context.Context, id int64, upd model.BlogUpdate) (*model.Blog, error) {
	const q = `
WITH upd AS (
  UPDATE blogs
  SET title = COALESCE($2, title),
      content = COALESCE($3, content),
      image_url = CASE WHEN $4::text IS NULL THEN image_url ELSE NULLIF($4::text, '') END,
      category_id = CASE WHEN $5::bigint IS NULL THEN category_id ELSE NULLIF($5::bigint, 0) END,
      tags = COALESCE($6, tags)
  WHERE id = $1
  RETURNING id, title, content, image_url, category_id, tags, author_id, created_at
)
SELECT upd.id, upd.title, upd.content, upd.image_url, upd.category_id, COALESCE(c.name, ''), COALESCE(upd.tags, '{}'), upd.author_id, upd.created_at
FROM upd LEFT JOIN categories c ON c.id = upd.category_id`
	b, err := scanBlog(r.db.Pool.QueryRow(ctx, q, id, upd.Title, upd.Content, upd.ImageURL, upd.CategoryID, upd.Tags))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	return b, err
}

// Delete removes a blog by ID; likes and comments cascade.
func (r *BlogRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM blogs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Count returns the exact number of blogs.
func (r *BlogRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db.Pool, `SELECT COUNT(*) FROM blogs`)
}

func scanBlog(row pgx.Row) (*model.Blog, error) {
	var (
		b      model.Blog
		author uuid.NullUUID
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Content, &b.ImageURL, &b.CategoryID, &b.CategoryName, &b.Tags, &author, &b.CreatedAt); err != nil {
		return nil, err
	}
	if author.Valid {
		b.AuthorID = author.UUID
	}
	return &b, nil
}
