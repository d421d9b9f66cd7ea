package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/model"
	"github.com/and161185/boolog/internal/repository"
	"github.com/and161185/boolog/internal/validate"
)

// Default authors shown when no profile row matches.
var (
	DefaultBlogAuthor    = model.Author{Username: model.AdminUsername}
	DefaultCommentAuthor = model.Author{Username: "Unknown"}
)

// ContentRepos groups the repositories the content service reads and writes.
type ContentRepos struct {
	Blogs      repository.BlogRepository
	Likes      repository.LikeRepository
	Comments   repository.CommentRepository
	Categories repository.CategoryRepository
	Profiles   repository.ProfileRepository
}

type likeKey struct {
	blogID int64
	userID uuid.UUID
}

// BlogService keeps the in-memory blog list in step with every confirmed
// gateway write. Readers always see a whole list: each mutation swaps or
// merges one entry under the lock, and a failed write changes nothing.
type BlogService struct {
	repos ContentRepos
	val   *validate.Validator
	log   *zap.Logger

	mu         sync.RWMutex
	items      []model.Blog
	loading    bool
	loaded     map[int64]bool // blogs whose full comments are cached
	categories []model.Category
	catsReady  bool

	catGroup singleflight.Group
	toggles  keyedMutex[likeKey]
}

// NewBlogService constructs BlogService.
func NewBlogService(repos ContentRepos, log *zap.Logger) *BlogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BlogService{repos: repos, val: validate.New(), log: log.Named("blogs"), loaded: map[int64]bool{}}
}

// Items returns the current list, newest first.
func (s *BlogService) Items() []model.Blog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Loading reports whether a FetchAll is in flight.
func (s *BlogService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Get returns the cached blog id.
func (s *BlogService) Get(id int64) (model.Blog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return model.Blog{}, false
}

func (s *BlogService) indexOf(id int64) int {
	return slices.IndexFunc(s.items, func(b model.Blog) bool { return b.ID == id })
}

// FetchAll reloads every blog with its relations and authors. The newest
// response overwrites the list; on failure the previous list stays.
func (s *BlogService) FetchAll(ctx context.Context) ([]model.Blog, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	blogs, err := s.repos.Blogs.ListWithRelations(ctx)
	if err != nil {
		return nil, gatewayErr("fetch blogs", err)
	}

	authors := s.authors(ctx, authorIDs(blogs))
	for i := range blogs {
		blogs[i].Author = DefaultBlogAuthor
		if a, ok := authors[blogs[i].AuthorID]; ok {
			blogs[i].Author = a
		}
	}

	s.mu.Lock()
	s.items = blogs
	s.loaded = map[int64]bool{}
	s.mu.Unlock()

	s.log.Debug("blogs loaded", zap.Int("count", len(blogs)))
	return slices.Clone(blogs), nil
}

func (s *BlogService) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func authorIDs(blogs []model.Blog) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, b := range blogs {
		if b.AuthorID != uuid.Nil && !seen[b.AuthorID] {
			seen[b.AuthorID] = true
			ids = append(ids, b.AuthorID)
		}
	}
	return ids
}

// authors batch-loads display authors; a failed lookup yields an empty map.
func (s *BlogService) authors(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]model.Author {
	out := map[uuid.UUID]model.Author{}
	if len(ids) == 0 {
		return out
	}
	profiles, err := s.repos.Profiles.ListByIDs(ctx, ids)
	if err != nil {
		s.log.Warn("fetch author profiles", zap.Int("ids", len(ids)), zap.Error(err))
		return out
	}
	for _, p := range profiles {
		out[p.ID] = model.Author{Username: p.Username, AvatarURL: p.AvatarURL}
	}
	return out
}

func (s *BlogService) author(ctx context.Context, id uuid.UUID, def model.Author) model.Author {
	if id == uuid.Nil {
		return def
	}
	p, err := s.repos.Profiles.GetByID(ctx, id)
	if err != nil {
		s.log.Debug("author lookup", zap.Stringer("id", id), zap.Error(err))
		return def
	}
	return model.Author{Username: p.Username, AvatarURL: p.AvatarURL}
}

// Create inserts a blog and prepends it to the list with its author attached.
func (s *BlogService) Create(ctx context.Context, in model.NewBlog) (*model.Blog, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Tags = cleanTags(in.Tags)
	if err := s.val.Struct(in); err != nil {
		return nil, err
	}
	b, err := s.repos.Blogs.Create(ctx, in)
	if err != nil {
		return nil, gatewayErr("create blog", err)
	}
	b.Author = s.author(ctx, b.AuthorID, DefaultBlogAuthor)
	b.Likes = []uuid.UUID{}
	b.Comments = []model.Comment{}

	s.mu.Lock()
	s.items = append([]model.Blog{*b}, s.items...)
	s.loaded[b.ID] = true
	s.mu.Unlock()
	return b, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// ToggleLike flips the like of userID on blogID. Toggles of the same pair
// are serialised here and the write itself is atomic in the gateway.
func (s *BlogService) ToggleLike(ctx context.Context, blogID int64, userID uuid.UUID) (model.LikeAction, error) {
	if userID == uuid.Nil {
		return "", errs.ErrUnauthorized
	}
	unlock := s.toggles.Lock(likeKey{blogID: blogID, userID: userID})
	defer unlock()

	action, err := s.repos.Likes.Toggle(ctx, blogID, userID)
	if err != nil {
		return "", gatewayErr("toggle like", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(blogID); i >= 0 {
		b := s.items[i]
		likes := slices.DeleteFunc(slices.Clone(b.Likes), func(id uuid.UUID) bool { return id == userID })
		if action == model.Liked {
			likes = append(likes, userID)
		}
		b.Likes = likes
		s.items[i] = b
	}
	return action, nil
}

// AddComment inserts a comment and appends it to the cached blog.
func (s *BlogService) AddComment(ctx context.Context, blogID int64, userID uuid.UUID, content string) (*model.Comment, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty comment", errs.ErrValidation)
	}
	c, err := s.repos.Comments.Create(ctx, blogID, userID, content)
	if err != nil {
		return nil, gatewayErr("add comment", err)
	}
	a := s.author(ctx, userID, DefaultCommentAuthor)
	c.Author = &a

	s.mu.Lock()
	if i := s.indexOf(blogID); i >= 0 {
		b := s.items[i]
		b.Comments = append(slices.Clone(b.Comments), *c)
		s.items[i] = b
	}
	s.mu.Unlock()
	return c, nil
}

// FetchComments returns a blog's full comments oldest first. The first
// call per blog hits the gateway; later calls use the cache.
func (s *BlogService) FetchComments(ctx context.Context, blogID int64) ([]model.Comment, error) {
	s.mu.RLock()
	if s.loaded[blogID] {
		if i := s.indexOf(blogID); i >= 0 {
			out := slices.Clone(s.items[i].Comments)
			s.mu.RUnlock()
			return out, nil
		}
	}
	s.mu.RUnlock()

	comments, err := s.repos.Comments.ListByBlog(ctx, blogID)
	if err != nil {
		return nil, gatewayErr("fetch comments", err)
	}
	ids := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		if !slices.Contains(ids, c.UserID) {
			ids = append(ids, c.UserID)
		}
	}
	authors := s.authors(ctx, ids)
	for i := range comments {
		a, ok := authors[comments[i].UserID]
		if !ok {
			a = DefaultCommentAuthor
		}
		comments[i].Author = &a
	}

	s.mu.Lock()
	if i := s.indexOf(blogID); i >= 0 {
		b := s.items[i]
		b.Comments = comments
		s.items[i] = b
		s.loaded[blogID] = true
	}
	s.mu.Unlock()
	return slices.Clone(comments), nil
}

// DeleteComment removes a comment from the gateway and from the cached blog.
// Only the comment author or the admin may delete it.
func (s *BlogService) DeleteComment(ctx context.Context, actor Session, commentID, blogID int64) error {
	if err := RequireSession(actor); err != nil {
		return err
	}
	comments, err := s.FetchComments(ctx, blogID)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(comments, func(c model.Comment) bool { return c.ID == commentID })
	if i < 0 {
		return fmt.Errorf("comment %d on blog %d: %w", commentID, blogID, errs.ErrNotFound)
	}
	if comments[i].UserID != actor.User().ID && !actor.IsAdmin() {
		return fmt.Errorf("%w: not the comment author", errs.ErrForbidden)
	}
	if err := s.repos.Comments.Delete(ctx, commentID); err != nil {
		return gatewayErr("delete comment", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(blogID); i >= 0 {
		b := s.items[i]
		b.Comments = slices.DeleteFunc(slices.Clone(b.Comments), func(c model.Comment) bool { return c.ID == commentID })
		s.items[i] = b
	}
	return nil
}

// DeleteBlog removes a blog; its likes and comments go with it.
func (s *BlogService) DeleteBlog(ctx context.Context, id int64) error {
	if err := s.repos.Blogs.Delete(ctx, id); err != nil {
		return gatewayErr("delete blog", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(slices.Clone(s.items), func(b model.Blog) bool { return b.ID == id })
	delete(s.loaded, id)
	return nil
}

// UpdateBlog applies upd and merges the stored row into the cached entry,
// keeping its author, likes and comments.
func (s *BlogService) UpdateBlog(ctx context.Context, id int64, upd model.BlogUpdate) (*model.Blog, error) {
	if err := validateBlogUpdate(s.val, &upd); err != nil {
		return nil, err
	}
	row, err := s.repos.Blogs.Update(ctx, id, upd)
	if err != nil {
		return nil, gatewayErr("update blog", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		row.Author = DefaultBlogAuthor
		return row, nil
	}
	b := s.items[i]
	b.Title = row.Title
	b.Content = row.Content
	b.ImageURL = row.ImageURL
	b.CategoryID = row.CategoryID
	b.CategoryName = row.CategoryName
	b.Tags = row.Tags
	s.items[i] = b
	return &b, nil
}

func validateBlogUpdate(v *validate.Validator, upd *model.BlogUpdate) error {
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		upd.Title = &t
		if err := v.Var("title", t, "required"); err != nil {
			return err
		}
	}
	if upd.Content != nil {
		c := strings.TrimSpace(*upd.Content)
		upd.Content = &c
		if err := v.Var("content", c, "required"); err != nil {
			return err
		}
	}
	if upd.ImageURL != nil && *upd.ImageURL != "" {
		if err := v.Var("image_url", *upd.ImageURL, "url"); err != nil {
			return err
		}
	}
	if upd.CategoryID != nil && *upd.CategoryID < 0 {
		return fmt.Errorf("%w: category_id: gte", errs.ErrValidation)
	}
	if upd.Tags != nil {
		upd.Tags = cleanTags(upd.Tags)
	}
	return nil
}

// FetchCategories returns the cached categories, loading them once.
// Concurrent first calls share one gateway request.
func (s *BlogService) FetchCategories(ctx context.Context) ([]model.Category, error) {
	s.mu.RLock()
	if s.catsReady {
		out := slices.Clone(s.categories)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()
	return s.RefreshCategories(ctx)
}

// RefreshCategories reloads the category cache.
func (s *BlogService) RefreshCategories(ctx context.Context) ([]model.Category, error) {
	v, err, _ := s.catGroup.Do("categories", func() (any, error) {
		cats, err := s.repos.Categories.List(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.categories = cats
		s.catsReady = true
		s.mu.Unlock()
		return cats, nil
	})
	if err != nil {
		return nil, gatewayErr("fetch categories", err)
	}
	return slices.Clone(v.([]model.Category)), nil
}

// Categories returns the cached categories without any I/O.
func (s *BlogService) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// ArrangeComments pins the earliest comment first and orders the rest
// newest first. Ties on the earliest time pin the first one seen.
func ArrangeComments(comments []model.Comment) []model.Comment {
	if len(comments) == 0 {
		return []model.Comment{}
	}
	first := 0
	for i, c := range comments {
		if c.CreatedAt.Before(comments[first].CreatedAt) {
			first = i
		}
	}
	rest := make([]model.Comment, 0, len(comments)-1)
	rest = append(rest, comments[:first]...)
	rest = append(rest, comments[first+1:]...)
	slices.SortStableFunc(rest, func(a, b model.Comment) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return append([]model.Comment{comments[first]}, rest...)
}
