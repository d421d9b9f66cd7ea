package repository

import (
	"context"

	"github.com/and161185/boolog/internal/model"
	"github.com/gofrs/uuid/v5"
)

// BlogRepository provides access to blogs and their aggregated relations.
type BlogRepository interface {
	// ListWithRelations returns all blogs newest-first with category name,
	// like user ids and comment ids attached.
	ListWithRelations(ctx context.Context) ([]model.Blog, error)
	// Create inserts a blog and returns the stored row.
	Create(ctx context.Context, in model.NewBlog) (*model.Blog, error)
	// Update applies a partial change and returns the stored row without relations.
	Update(ctx context.Context, id int64, upd model.BlogUpdate) (*model.Blog, error)
	// Delete removes a blog.
	Delete(ctx context.Context, id int64) error
	// Count returns the exact number of blogs.
	Count(ctx context.Context) (int64, error)
}

// LikeRepository toggles (blog, user) like pairs.
type LikeRepository interface {
	// Toggle removes the pair if present, otherwise inserts it, atomically.
	Toggle(ctx context.Context, blogID int64, userID uuid.UUID) (model.LikeAction, error)
}

// CommentRepository provides access to comments.
type CommentRepository interface {
	// Create inserts a comment and returns the stored row.
	Create(ctx context.Context, blogID int64, userID uuid.UUID, content string) (*model.Comment, error)
	// ListByBlog returns a blog's comments oldest-first.
	ListByBlog(ctx context.Context, blogID int64) ([]model.Comment, error)
	// Delete removes a comment.
	Delete(ctx context.Context, id int64) error
	// Count returns the exact number of comments.
	Count(ctx context.Context) (int64, error)
	// CountByUser returns the number of comments written by each user.
	CountByUser(ctx context.Context) (map[uuid.UUID]int, error)
}

// CategoryRepository provides access to categories.
type CategoryRepository interface {
	// List returns all categories.
	List(ctx context.Context) ([]model.Category, error)
	// Create inserts a category.
	Create(ctx context.Context, name string) (*model.Category, error)
}
