package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/limiter"
	"github.com/and161185/boolog/internal/localstore"
	"github.com/and161185/boolog/internal/model"
	"github.com/and161185/boolog/internal/repository"
)

/************ profiles ************/

type fakeProfiles struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Profile

	createErr, upsertErr, getErr, listErr, updateErr, countErr error
	upserts                                                   int
}

var _ repository.ProfileRepository = (*fakeProfiles)(nil)

func newFakeProfiles(ps ...model.Profile) *fakeProfiles {
	f := &fakeProfiles{byID: map[uuid.UUID]*model.Profile{}}
	for _, p := range ps {
		c := p
		f.byID[p.ID] = &c
	}
	return f
}

func (f *fakeProfiles) Create(_ context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, x := range f.byID {
		if x.Email == p.Email || x.Username == p.Username {
			return errs.ErrDuplicateIdentity
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.Must(uuid.NewV4())
	}
	p.CreatedAt = time.Now()
	c := *p
	f.byID[p.ID] = &c
	return nil
}

func (f *fakeProfiles) Upsert(_ context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	c := *p
	f.byID[p.ID] = &c
	return nil
}

func (f *fakeProfiles) find(match func(*model.Profile) bool) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, p := range f.byID {
		if match(p) {
			c := *p
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	return f.find(func(p *model.Profile) bool { return p.ID == id })
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	return f.find(func(p *model.Profile) bool { return p.Email == email })
}

func (f *fakeProfiles) GetByUsername(_ context.Context, username string) (*model.Profile, error) {
	return f.find(func(p *model.Profile) bool { return p.Username == username })
}

func (f *fakeProfiles) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Profile
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) List(_ context.Context) ([]model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Profile, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b model.Profile) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (f *fakeProfiles) Update(_ context.Context, id uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if upd.Email != nil {
		p.Email = *upd.Email
	}
	if upd.Username != nil {
		p.Username = *upd.Username
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = upd.AvatarURL
		if *upd.AvatarURL == "" {
			p.AvatarURL = nil
		}
	}
	if upd.Role != nil {
		p.Role = *upd.Role
	}
	c := *p
	return &c, nil
}

func (f *fakeProfiles) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeProfiles) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), f.countErr
}

/************ managed auth ************/

type fakeManaged struct {
	email, password string
	id              uuid.UUID

	active     *model.AuthSession
	signInErr  error
	getErr     error
	signOutErr error
	signOuts   int
}

var _ ManagedAuth = (*fakeManaged)(nil)

func (m *fakeManaged) SignInWithPassword(_ context.Context, email, password string) (*model.AuthSession, error) {
	if m.signInErr != nil {
		return nil, m.signInErr
	}
	if email != m.email || password != m.password {
		return nil, errs.ErrInvalidCredentials
	}
	m.active = &model.AuthSession{UserID: m.id, Email: email, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	return m.active, nil
}

func (m *fakeManaged) GetSession(context.Context) (*model.AuthSession, error) {
	return m.active, m.getErr
}

func (m *fakeManaged) SignOut(context.Context) error {
	m.signOuts++
	m.active = nil
	return m.signOutErr
}

/************ local store ************/

type memStore struct {
	m      map[string][]byte
	putErr error
}

var _ localstore.Store = (*memStore)(nil)

func newMemStore() *memStore { return &memStore{m: map[string][]byte{}} }

func (s *memStore) Get(k string) ([]byte, error) {
	v, ok := s.m[k]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Put(k string, v []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.m[k] = v
	return nil
}

func (s *memStore) Delete(k string) error { delete(s.m, k); return nil }

/************ limiter ************/

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

/************ content ************/

type fakeBlogs struct {
	mu     sync.Mutex
	rows   []model.Blog
	nextID int64

	listErr, createErr, updateErr, deleteErr error
	listCalls                                int
}

var _ repository.BlogRepository = (*fakeBlogs)(nil)

func (f *fakeBlogs) ListWithRelations(context.Context) ([]model.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Blog, len(f.rows))
	for i, r := range f.rows {
		r.Likes = slices.Clone(r.Likes)
		r.Comments = slices.Clone(r.Comments)
		out[i] = r
	}
	return out, nil
}

func (f *fakeBlogs) Create(_ context.Context, in model.NewBlog) (*model.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	b := model.Blog{
		ID: f.nextID, Title: in.Title, Content: in.Content, ImageURL: in.ImageURL,
		CategoryID: in.CategoryID, Tags: in.Tags, AuthorID: in.AuthorID, CreatedAt: time.Now(),
	}
	f.rows = append([]model.Blog{b}, f.rows...)
	return &b, nil
}

func (f *fakeBlogs) Update(_ context.Context, id int64, upd model.BlogUpdate) (*model.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.rows {
		if f.rows[i].ID != id {
			continue
		}
		r := &f.rows[i]
		if upd.Title != nil {
			r.Title = *upd.Title
		}
		if upd.Content != nil {
			r.Content = *upd.Content
		}
		if upd.Tags != nil {
			r.Tags = upd.Tags
		}
		if upd.ImageURL != nil {
			r.ImageURL = upd.ImageURL
			if *upd.ImageURL == "" {
				r.ImageURL = nil
			}
		}
		if upd.CategoryID != nil {
			r.CategoryID = upd.CategoryID
			if *upd.CategoryID == 0 {
				r.CategoryID = nil
			}
		}
		out := *r
		out.Likes, out.Comments = nil, nil
		return &out, nil
	}
	return nil, errs.ErrNotFound
}

func (f *fakeBlogs) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	n := len(f.rows)
	f.rows = slices.DeleteFunc(f.rows, func(b model.Blog) bool { return b.ID == id })
	if len(f.rows) == n {
		return errs.ErrNotFound
	}
	return nil
}

func (f *fakeBlogs) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

type fakeLikes struct {
	mu    sync.Mutex
	pairs map[likeKey]bool
	err   error
	calls int
}

var _ repository.LikeRepository = (*fakeLikes)(nil)

func (f *fakeLikes) Toggle(_ context.Context, blogID int64, userID uuid.UUID) (model.LikeAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.pairs == nil {
		f.pairs = map[likeKey]bool{}
	}
	k := likeKey{blogID, userID}
	if f.pairs[k] {
		delete(f.pairs, k)
		return model.Unliked, nil
	}
	f.pairs[k] = true
	return model.Liked, nil
}

type fakeComments struct {
	mu     sync.Mutex
	rows   []model.Comment
	nextID int64

	createErr, listErr, deleteErr error
	listCalls                     int
}

var _ repository.CommentRepository = (*fakeComments)(nil)

func (f *fakeComments) Create(_ context.Context, blogID int64, userID uuid.UUID, content string) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	c := model.Comment{ID: f.nextID, BlogID: blogID, UserID: userID, Content: content, CreatedAt: time.Now()}
	f.rows = append(f.rows, c)
	return &c, nil
}

func (f *fakeComments) ListByBlog(_ context.Context, blogID int64) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Comment{}
	for _, c := range f.rows {
		if c.BlogID == blogID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.rows = slices.DeleteFunc(f.rows, func(c model.Comment) bool { return c.ID == id })
	return nil
}

func (f *fakeComments) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

func (f *fakeComments) CountByUser(context.Context) (map[uuid.UUID]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uuid.UUID]int{}
	for _, c := range f.rows {
		out[c.UserID]++
	}
	return out, nil
}

type fakeCategories struct {
	mu    sync.Mutex
	rows  []model.Category
	err   error
	calls int
}

var _ repository.CategoryRepository = (*fakeCategories)(nil)

func (f *fakeCategories) List(context.Context) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.rows), nil
}

func (f *fakeCategories) Create(_ context.Context, name string) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		if c.Name == name {
			return nil, errs.ErrDuplicateIdentity
		}
	}
	c := model.Category{ID: int64(len(f.rows) + 1), Name: name, CreatedAt: time.Now()}
	f.rows = append(f.rows, c)
	return &c, nil
}

type fixture struct {
	profiles *fakeProfiles
	blogs    *fakeBlogs
	likes    *fakeLikes
	comments *fakeComments
	cats     *fakeCategories
	repos    ContentRepos
}

func newFixture(ps ...model.Profile) *fixture {
	f := &fixture{
		profiles: newFakeProfiles(ps...),
		blogs:    &fakeBlogs{},
		likes:    &fakeLikes{},
		comments: &fakeComments{},
		cats:     &fakeCategories{},
	}
	f.repos = ContentRepos{Blogs: f.blogs, Likes: f.likes, Comments: f.comments, Categories: f.cats, Profiles: f.profiles}
	return f
}
