package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/and161185/boolog/internal/engagement"
	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/listquery"
	"github.com/and161185/boolog/internal/model"
)

// PeopleService is the member directory and public profile view.
type PeopleService struct {
	repos   ContentRepos
	content *BlogService
	log     *zap.Logger

	mu      sync.RWMutex
	members []model.Member
}

// NewPeopleService constructs PeopleService.
func NewPeopleService(repos ContentRepos, content *BlogService, log *zap.Logger) *PeopleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PeopleService{repos: repos, content: content, log: log.Named("people")}
}

// Refresh loads every profile with its comment count and points.
func (p *PeopleService) Refresh(ctx context.Context) ([]model.Member, error) {
	var (
		profiles []model.Profile
		counts   map[uuid.UUID]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profiles, err = p.repos.Profiles.List(gctx)
		return
	})
	g.Go(func() (err error) {
		counts, err = p.repos.Comments.CountByUser(gctx)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, gatewayErr("fetch members", err)
	}

	members := make([]model.Member, len(profiles))
	for i, pr := range profiles {
		n := counts[pr.ID]
		members[i] = model.Member{Profile: pr, Comments: n, Points: engagement.ActivityPoints(n)}
	}

	p.mu.Lock()
	p.members = members
	p.mu.Unlock()
	return slices.Clone(members), nil
}

// List runs the member pipeline over the last refreshed directory.
func (p *PeopleService) List(q listquery.Query) listquery.Page[model.Member] {
	p.mu.RLock()
	members := p.members
	p.mu.RUnlock()
	return listquery.Members.Run(members, q)
}

// Card is the public profile view of one member.
type Card struct {
	model.Member
	Level      int                     `json:"level"`
	Interests  []model.Category        `json:"interests"`
	Reading    engagement.ReadingStats `json:"reading"`
	Color      string                  `json:"color"`
	Gradient   string                  `json:"gradient"`
	Initials   string                  `json:"initials"`
	Blogs      []model.Blog            `json:"blogs"`
	MemberDays int                     `json:"member_days"`
}

// PublicProfile builds the card of username. Unknown users give errs.ErrNotFound.
func (p *PeopleService) PublicProfile(ctx context.Context, username string) (*Card, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errs.ErrNotFound
	}
	pr, err := p.repos.Profiles.GetByUsername(ctx, username)
	if err != nil {
		return nil, gatewayErr("fetch profile", err)
	}

	counts, err := p.repos.Comments.CountByUser(ctx)
	if err != nil {
		return nil, gatewayErr("fetch profile", err)
	}
	cats, err := p.content.FetchCategories(ctx)
	if err != nil {
		p.log.Warn("categories for profile card", zap.Error(err))
	}

	var own []model.Blog
	for _, b := range p.content.Items() {
		if b.AuthorID == pr.ID {
			own = append(own, b)
		}
	}

	n := counts[pr.ID]
	points := engagement.ActivityPoints(n)
	id := pr.ID.String()
	return &Card{
		Member:     model.Member{Profile: *pr, Comments: n, Points: points},
		Level:      engagement.Level(points),
		Interests:  engagement.Interests(id, cats),
		Reading:    engagement.Reading(id),
		Color:      engagement.AvatarColor(pr.Username),
		Gradient:   engagement.AvatarGradient(pr.Username),
		Initials:   engagement.Initials(pr.Username),
		Blogs:      own,
		MemberDays: engagement.DaysElapsed(pr.CreatedAt, time.Now()),
	}, nil
}
