package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/model"
)

func adminSess() *AdminSession {
	id := uuid.Must(uuid.NewV4())
	return &AdminSession{
		Auth:    model.AuthSession{UserID: id, Email: adminEmail},
		Account: model.Profile{ID: id, Email: adminEmail, Username: model.AdminUsername, Role: model.RoleAdmin},
	}
}

func newAdminFixture(ps ...model.Profile) (*fixture, *AdminService, *BlogService) {
	f := newFixture(ps...)
	content := NewBlogService(f.repos, nil)
	return f, NewAdminService(f.repos, content, adminEmail, nil), content
}

func TestAdmin_Guard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, a, _ := newAdminFixture()

	_, err := a.Stats(ctx, nil)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	user := &UserSession{Account: model.Profile{ID: uuid.Must(uuid.NewV4()), Email: "u@x.io"}}
	_, err = a.Stats(ctx, user)
	require.ErrorIs(t, err, errs.ErrForbidden)

	other := adminSess()
	other.Auth.Email = "someone@else.io"
	_, err = a.Users(ctx, other)
	require.ErrorIs(t, err, errs.ErrForbidden)

	require.ErrorIs(t, a.DeleteBlog(ctx, user, 1), errs.ErrForbidden)
	_, err = a.PublishBlog(ctx, user, model.NewBlog{Title: "t", Content: "c"})
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestAdmin_Stats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, a, _ := newAdminFixture(
		model.Profile{ID: uuid.Must(uuid.NewV4()), Email: "a@x.io", Username: "aaa"},
		model.Profile{ID: uuid.Must(uuid.NewV4()), Email: "b@x.io", Username: "bbb"},
	)
	f.blogs.rows = []model.Blog{{ID: 1}}
	f.comments.rows = []model.Comment{{ID: 1, BlogID: 1}, {ID: 2, BlogID: 1}, {ID: 3, BlogID: 1}}

	st, err := a.Stats(ctx, adminSess())
	require.NoError(t, err)
	require.Equal(t, model.Stats{Users: 2, Blogs: 1, Comments: 3}, st)

	f.profiles.countErr = errors.New("down")
	_, err = a.Stats(ctx, adminSess())
	require.ErrorIs(t, err, errs.ErrFetch)
}

func TestAdmin_ContentOps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, a, content := newAdminFixture()
	s := adminSess()

	_, err := a.AddCategory(ctx, s, "  ")
	require.ErrorIs(t, err, errs.ErrValidation)

	c, err := a.AddCategory(ctx, s, " Go ")
	require.NoError(t, err)
	require.Equal(t, "Go", c.Name)
	require.Equal(t, []model.Category{*c}, content.Categories(), "cache refreshed")

	_, err = a.AddCategory(ctx, s, "Go")
	require.ErrorIs(t, err, errs.ErrDuplicateIdentity)

	_, err = a.PublishBlog(ctx, s, model.NewBlog{Title: "", Content: "c"})
	require.ErrorIs(t, err, errs.ErrValidation)

	b, err := a.PublishBlog(ctx, s, model.NewBlog{Title: "Hello", Content: "World", CategoryID: &c.ID})
	require.NoError(t, err)
	require.Equal(t, s.User().ID, b.AuthorID)
	require.Equal(t, DefaultBlogAuthor, b.Author, "admin profile not in table yet")
	require.Len(t, f.blogs.rows, 1)

	title := "Hello again"
	got, err := a.EditBlog(ctx, s, b.ID, model.BlogUpdate{Title: &title})
	require.NoError(t, err)
	require.Equal(t, title, got.Title)

	require.NoError(t, a.DeleteBlog(ctx, s, b.ID))
	require.Empty(t, content.Items())
}

func TestAdmin_Users(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := adminSess()
	alice := model.Profile{ID: uuid.Must(uuid.NewV4()), Email: "alice@x.io", Username: "alice", Role: model.RoleUser}
	_, a, _ := newAdminFixture(s.Account, alice)

	users, err := a.Users(ctx, s)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, alice.ID, users[0].ID)

	demote := model.RoleUser
	_, err = a.EditUser(ctx, s, s.User().ID, model.ProfileUpdate{Role: &demote})
	require.ErrorIs(t, err, errs.ErrValidation)

	promote := model.RoleAdmin
	p, err := a.EditUser(ctx, s, alice.ID, model.ProfileUpdate{Role: &promote})
	require.NoError(t, err)
	require.True(t, p.IsAdmin())

	bogus := model.Role("root")
	_, err = a.EditUser(ctx, s, alice.ID, model.ProfileUpdate{Role: &bogus})
	require.ErrorIs(t, err, errs.ErrValidation)

	email, name := adminEmail, model.AdminUsername
	_, err = a.EditUser(ctx, s, alice.ID, model.ProfileUpdate{Email: &email})
	require.ErrorIs(t, err, errs.ErrReservedIdentity)
	_, err = a.EditUser(ctx, s, alice.ID, model.ProfileUpdate{Username: &name})
	require.ErrorIs(t, err, errs.ErrReservedIdentity)
	_, err = a.EditUser(ctx, s, s.User().ID, model.ProfileUpdate{Email: &email, Username: &name})
	require.NoError(t, err, "the admin keeps its own identity")

	require.ErrorIs(t, a.DeleteUser(ctx, s, s.User().ID), errs.ErrValidation)
	require.NoError(t, a.DeleteUser(ctx, s, alice.ID))
	require.ErrorIs(t, a.DeleteUser(ctx, s, alice.ID), errs.ErrNotFound)
}
