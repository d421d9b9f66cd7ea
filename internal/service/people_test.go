package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/boolog/internal/engagement"
	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/listquery"
	"github.com/and161185/boolog/internal/model"
)

func TestPeople_RefreshAndList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now()
	alice := model.Profile{ID: uuid.Must(uuid.NewV4()), Email: "alice@x.io", Username: "alice", CreatedAt: now.Add(-48 * time.Hour)}
	bob := model.Profile{ID: uuid.Must(uuid.NewV4()), Email: "bob@y.io", Username: "bob", CreatedAt: now}
	f := newFixture(alice, bob)
	f.comments.rows = []model.Comment{{ID: 1, UserID: alice.ID}, {ID: 2, UserID: alice.ID}}
	p := NewPeopleService(f.repos, NewBlogService(f.repos, nil), nil)

	require.Zero(t, p.List(listquery.Query{}).Total)

	members, err := p.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)

	page := p.List(listquery.Query{Sort: listquery.SortPopular})
	require.Equal(t, 2, page.Total)
	require.Equal(t, alice.ID, page.Data[0].ID)
	require.Equal(t, 70, page.Data[0].Points)
	require.Equal(t, 50, page.Data[1].Points)

	page = p.List(listquery.Query{})
	require.Equal(t, bob.ID, page.Data[0].ID, "newest first by default")

	page = p.List(listquery.Query{Search: "Y.IO"})
	require.Equal(t, 1, page.Total)
	require.Equal(t, "bob", page.Data[0].Username)

	f.profiles.listErr = errors.New("down")
	_, err = p.Refresh(ctx)
	require.ErrorIs(t, err, errs.ErrFetch)
	require.Equal(t, 2, p.List(listquery.Query{}).Total, "failed refresh keeps the directory")
}

func TestPeople_PublicProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	alice := model.Profile{
		ID:        uuid.Must(uuid.NewV4()),
		Email:     "alice@x.io",
		Username:  "alice smith",
		CreatedAt: time.Now().Add(-72 * time.Hour),
	}
	f := newFixture(alice)
	f.comments.rows = []model.Comment{{ID: 1, UserID: alice.ID}}
	f.cats.rows = []model.Category{{ID: 1, Name: "Go"}, {ID: 2, Name: "SQL"}, {ID: 3, Name: "Ops"}, {ID: 4, Name: "UX"}}
	f.blogs.rows = []model.Blog{{ID: 1, Title: "mine", AuthorID: alice.ID}, {ID: 2, Title: "theirs"}}
	content := NewBlogService(f.repos, nil)
	_, err := content.FetchAll(ctx)
	require.NoError(t, err)
	p := NewPeopleService(f.repos, content, nil)

	_, err = p.PublicProfile(ctx, " ")
	require.ErrorIs(t, err, errs.ErrNotFound)
	_, err = p.PublicProfile(ctx, "ghost")
	require.ErrorIs(t, err, errs.ErrNotFound)

	card, err := p.PublicProfile(ctx, "alice smith")
	require.NoError(t, err)
	require.Equal(t, 1, card.Comments)
	require.Equal(t, 60, card.Points)
	require.Equal(t, 1, card.Level)
	require.Equal(t, "AS", card.Initials)
	require.Equal(t, engagement.AvatarColor("alice smith"), card.Color)
	require.Len(t, card.Interests, 3)
	require.Len(t, card.Blogs, 1)
	require.Equal(t, int64(1), card.Blogs[0].ID)
	require.GreaterOrEqual(t, card.MemberDays, 2)
	require.Equal(t, engagement.Reading(alice.ID.String()), card.Reading)

	again, err := p.PublicProfile(ctx, "alice smith")
	require.NoError(t, err)
	require.Equal(t, card.Interests, again.Interests, "interests are stable per user")

	f.cats.err = errors.New("down")
	fresh := NewPeopleService(f.repos, NewBlogService(f.repos, nil), nil)
	card, err = fresh.PublicProfile(ctx, "alice smith")
	require.NoError(t, err, "categories are optional for the card")
	require.Empty(t, card.Interests)
}
