package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/boolog/internal/config"
	"github.com/and161185/boolog/internal/limiter"
	"github.com/and161185/boolog/internal/localstore"
	"github.com/and161185/boolog/internal/logger"
	"github.com/and161185/boolog/internal/managedauth"
	"github.com/and161185/boolog/internal/repository/postgres"
	"github.com/and161185/boolog/internal/service"
	"github.com/and161185/boolog/internal/validate"
)

// app holds the lazily opened dependencies of one CLI invocation.
type app struct {
	envFile string

	cfg   *config.Config
	log   *zap.Logger
	store *localstore.Badger
	db    *postgres.DB

	repos   service.ContentRepos
	managed *managedauth.Client
	auth    *service.AuthServiceImpl
	blogs   *service.BlogService
	admin   *service.AdminService
	people  *service.PeopleService
}

// loadConfig reads settings and builds the logger.
func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(a.envFile, validate.New())
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.cfg, a.log = cfg, log
	return nil
}

// openStore opens the local durable store under the state dir.
func (a *app) openStore() error {
	if a.store != nil {
		return nil
	}
	if err := a.loadConfig(); err != nil {
		return err
	}
	st, err := localstore.Open(a.cfg.StateDir, a.log)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	a.store = st
	return nil
}

// open connects to the database and builds every service.
func (a *app) open(ctx context.Context) error {
	if a.db != nil {
		return nil
	}
	if err := a.openStore(); err != nil {
		return err
	}
	db, err := postgres.New(ctx, a.cfg.DSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	a.db = db

	a.repos = service.ContentRepos{
		Blogs:      postgres.NewBlogRepo(db),
		Likes:      postgres.NewLikeRepo(db),
		Comments:   postgres.NewCommentRepo(db),
		Categories: postgres.NewCategoryRepo(db),
		Profiles:   postgres.NewProfileRepo(db),
	}
	lim := limiter.NewPG(db.Pool, a.cfg.LoginWindow, a.cfg.LoginMaxFails, a.cfg.LoginBlockFor)
	a.managed = managedauth.New(postgres.NewAuthUserRepo(db), a.store, []byte(a.cfg.SigningKey), a.cfg.AuthTTL)
	a.auth = service.NewAuthService(a.repos.Profiles, a.managed, a.store, lim, a.cfg.AdminEmail, a.log)
	a.blogs = service.NewBlogService(a.repos, a.log)
	a.admin = service.NewAdminService(a.repos, a.blogs, a.cfg.AdminEmail, a.log)
	a.people = service.NewPeopleService(a.repos, a.blogs, a.log)
	return nil
}

// session restores the current session, failing when there is none.
func (a *app) session(ctx context.Context) (service.Session, error) {
	s, err := a.auth.CheckSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := service.RequireSession(s); err != nil {
		return nil, fmt.Errorf("%w: sign in first", err)
	}
	return s, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.log != nil {
			a.log.Warn("close local store", zap.Error(err))
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
