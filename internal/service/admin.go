package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/model"
	"github.com/and161185/boolog/internal/validate"
)

// AdminService is the dashboard surface. Every call takes the acting
// session and fails unless it belongs to the configured admin.
type AdminService struct {
	repos      ContentRepos
	content    *BlogService
	adminEmail string
	val        *validate.Validator
	log        *zap.Logger
}

// NewAdminService constructs AdminService over the shared content service.
func NewAdminService(repos ContentRepos, content *BlogService, adminEmail string, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{
		repos:      repos,
		content:    content,
		adminEmail: normEmail(adminEmail),
		val:        validate.New(),
		log:        log.Named("admin"),
	}
}

func (a *AdminService) guard(s Session) error { return RequireAdmin(s, a.adminEmail) }

// Stats counts profiles, blogs and comments concurrently.
func (a *AdminService) Stats(ctx context.Context, s Session) (model.Stats, error) {
	if err := a.guard(s); err != nil {
		return model.Stats{}, err
	}
	var st model.Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { st.Users, err = a.repos.Profiles.Count(gctx); return })
	g.Go(func() (err error) { st.Blogs, err = a.repos.Blogs.Count(gctx); return })
	g.Go(func() (err error) { st.Comments, err = a.repos.Comments.Count(gctx); return })
	if err := g.Wait(); err != nil {
		return model.Stats{}, gatewayErr("fetch stats", err)
	}
	return st, nil
}

// AddCategory creates a category and reloads the category cache.
func (a *AdminService) AddCategory(ctx context.Context, s Session, name string) (*model.Category, error) {
	if err := a.guard(s); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := a.val.Var("name", name, "required,max=64"); err != nil {
		return nil, err
	}
	c, err := a.repos.Categories.Create(ctx, name)
	if err != nil {
		return nil, gatewayErr("add category", err)
	}
	if _, err := a.content.RefreshCategories(ctx); err != nil {
		a.log.Warn("refresh categories", zap.Error(err))
	}
	return c, nil
}

// PublishBlog creates a blog authored by the admin.
func (a *AdminService) PublishBlog(ctx context.Context, s Session, in model.NewBlog) (*model.Blog, error) {
	if err := a.guard(s); err != nil {
		return nil, err
	}
	in.AuthorID = s.User().ID
	return a.content.Create(ctx, in)
}

// EditBlog applies a partial blog change.
func (a *AdminService) EditBlog(ctx context.Context, s Session, id int64, upd model.BlogUpdate) (*model.Blog, error) {
	if err := a.guard(s); err != nil {
		return nil, err
	}
	return a.content.UpdateBlog(ctx, id, upd)
}

// DeleteBlog removes a blog.
func (a *AdminService) DeleteBlog(ctx context.Context, s Session, id int64) error {
	if err := a.guard(s); err != nil {
		return err
	}
	return a.content.DeleteBlog(ctx, id)
}

// Users lists the non-admin profiles, newest first.
func (a *AdminService) Users(ctx context.Context, s Session) ([]model.Profile, error) {
	if err := a.guard(s); err != nil {
		return nil, err
	}
	all, err := a.repos.Profiles.List(ctx)
	if err != nil {
		return nil, gatewayErr("list users", err)
	}
	return slices.DeleteFunc(all, model.Profile.IsAdmin), nil
}

// EditUser changes any profile field, role included. Only the acting
// admin's own profile may carry the admin email or display name.
func (a *AdminService) EditUser(ctx context.Context, s Session, id uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error) {
	if err := a.guard(s); err != nil {
		return nil, err
	}
	if id == s.User().ID && upd.Role != nil && *upd.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: cannot demote yourself", errs.ErrValidation)
	}
	if err := validateProfileUpdate(a.val, &upd); err != nil {
		return nil, err
	}
	if id != s.User().ID {
		if err := reservedIdentity(a.adminEmail, upd); err != nil {
			return nil, err
		}
	}
	p, err := a.repos.Profiles.Update(ctx, id, upd)
	if err != nil {
		return nil, gatewayErr("edit user", err)
	}
	a.log.Info("user edited", zap.Stringer("id", id))
	return p, nil
}

// DeleteUser removes a profile other than the acting admin's.
func (a *AdminService) DeleteUser(ctx context.Context, s Session, id uuid.UUID) error {
	if err := a.guard(s); err != nil {
		return err
	}
	if id == s.User().ID {
		return fmt.Errorf("%w: cannot delete yourself", errs.ErrValidation)
	}
	if err := a.repos.Profiles.Delete(ctx, id); err != nil {
		return gatewayErr("delete user", err)
	}
	a.log.Info("user deleted", zap.Stringer("id", id))
	return nil
}
