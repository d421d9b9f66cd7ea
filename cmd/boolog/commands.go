package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/listquery"
	"github.com/and161185/boolog/internal/localstore"
	"github.com/and161185/boolog/internal/migrate"
	"github.com/and161185/boolog/internal/model"
	"github.com/and161185/boolog/internal/service"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "boolog",
		Short:         "Read, write and administer the boolog blog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.envFile, "env", ".env", "dotenv file loaded before reading BOOLOG_* variables")

	root.AddCommand(
		versionCmd(),
		migrateCmd(a),
		signUpCmd(a),
		signInCmd(a),
		signOutCmd(a),
		whoamiCmd(a),
		profileCmd(a),
		blogsCmd(a),
		blogCmd(a),
		categoriesCmd(a),
		likeCmd(a),
		commentCmd(a),
		uncommentCmd(a),
		usersCmd(a),
		userCmd(a),
		themeCmd(a),
		adminCmd(a),
	)
	instrument(root, a.logger)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "boolog %s (%s)\n", version, buildDate)
		},
	}
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Apply, roll back or inspect the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			ctx := cmd.Context()
			dir := "up"
			if len(args) == 1 {
				dir = args[0]
			}
			switch dir {
			case "down":
				return migrate.Down(ctx, a.cfg.DSN)
			case "version":
				v, err := migrate.Version(ctx, a.cfg.DSN)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			default:
				return migrate.Up(ctx, a.cfg.DSN)
			}
		},
	}
}

func signUpCmd(a *app) *cobra.Command {
	var email, password, username string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			p, err := a.auth.SignUp(cmd.Context(), email, password, username)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (6 to 72 characters)")
	cmd.Flags().StringVarP(&username, "username", "u", "", "public username")
	return cmd
}

func signInCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			s, err := a.auth.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), viewSession(s))
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

func signOutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			a.auth.SignOut(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			s, err := a.auth.CheckSession(cmd.Context())
			if err != nil {
				return err
			}
			if s == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			return printJSON(cmd.OutOrStdout(), viewSession(s))
		},
	}
}

func profileCmd(a *app) *cobra.Command {
	var email, username, avatar string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change your email, username or avatar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			var upd model.ProfileUpdate
			f := cmd.Flags()
			if f.Changed("email") {
				upd.Email = &email
			}
			if f.Changed("username") {
				upd.Username = &username
			}
			if f.Changed("avatar") {
				upd.AvatarURL = &avatar
			}
			p, err := a.auth.UpdateProfile(cmd.Context(), s.User().ID, upd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "new email address")
	cmd.Flags().StringVarP(&username, "username", "u", "", "new username")
	cmd.Flags().StringVar(&avatar, "avatar", "", "new avatar URL")
	return cmd
}

// queryFlags are the list flags shared by blogs and users.
type queryFlags struct {
	search string
	sort   string
	page   int
}

func (q *queryFlags) bind(cmd *cobra.Command, sorts []string, def string) {
	cmd.Flags().StringVarP(&q.search, "search", "s", "", "case-insensitive search")
	cmd.Flags().StringVar(&q.sort, "sort", def, "sort key: "+strings.Join(sorts, ", "))
	cmd.Flags().IntVar(&q.page, "page", 1, "page number")
}

func (q *queryFlags) query() listquery.Query {
	return listquery.Query{Search: q.search, Sort: q.sort, Page: q.page}
}

func blogsCmd(a *app) *cobra.Command {
	var (
		q        queryFlags
		category string
	)
	cmd := &cobra.Command{
		Use:   "blogs",
		Short: "List blogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := parseCategory(category)
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			items, err := a.blogs.FetchAll(cmd.Context())
			if err != nil {
				return err
			}
			page := listquery.Blogs.Run(listquery.ByCategory(items, cat), q.query())
			now := time.Now()
			return printJSON(cmd.OutOrStdout(), mapPage(page, func(b model.Blog) blogRow { return rowOf(b, now) }))
		},
	}
	q.bind(cmd, listquery.Blogs.SortKeys(), listquery.Blogs.DefaultSort)
	cmd.Flags().StringVarP(&category, "category", "c", "all", "category id or all")
	return cmd
}

func blogCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "blog <id>",
		Short: "Show a blog with its comment thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			ctx := cmd.Context()
			b, err := a.loadBlog(ctx, id)
			if err != nil {
				return err
			}
			comments, err := a.blogs.FetchComments(ctx, id)
			if err != nil {
				return err
			}
			d := blogDetail{
				blogRow:  rowOf(b, time.Now()),
				Content:  b.Content,
				ImageURL: b.ImageURL,
				Thread:   listquery.Paginate(service.ArrangeComments(comments), page, listquery.CommentPageSize),
			}
			d.Comments = len(comments)
			if s, err := a.auth.CheckSession(ctx); err == nil && s != nil {
				d.LikedBy = b.LikedBy(s.User().ID)
			}
			return printJSON(cmd.OutOrStdout(), d)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "comment page")
	return cmd
}

// loadBlog refreshes the list and returns blog id.
func (a *app) loadBlog(ctx context.Context, id int64) (model.Blog, error) {
	if _, err := a.blogs.FetchAll(ctx); err != nil {
		return model.Blog{}, err
	}
	b, ok := a.blogs.Get(id)
	if !ok {
		return model.Blog{}, fmt.Errorf("blog %d: %w", id, errs.ErrNotFound)
	}
	return b, nil
}

func categoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			cats, err := a.blogs.FetchCategories(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cats)
		},
	}
}

func likeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "like <blog-id>",
		Short: "Like a blog, or remove your like",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			action, err := a.blogs.ToggleLike(cmd.Context(), id, s.User().ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), action)
			return nil
		},
	}
}

func commentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <blog-id> <text...>",
		Short: "Comment on a blog",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			c, err := a.blogs.AddComment(cmd.Context(), id, s.User().ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	}
}

func uncommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "uncomment <blog-id> <comment-id>",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			blogID, err := parseID(args[0])
			if err != nil {
				return err
			}
			commentID, err := parseID(args[1])
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			if _, err := a.loadBlog(ctx, blogID); err != nil {
				return err
			}
			if err := a.blogs.DeleteComment(ctx, s, commentID, blogID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}

func usersCmd(a *app) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Browse the member directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			if _, err := a.people.Refresh(cmd.Context()); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a.people.List(q.query()))
		},
	}
	q.bind(cmd, listquery.Members.SortKeys(), listquery.Members.DefaultSort)
	return cmd
}

func userCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "user <username>",
		Short: "Show a member's public profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			if _, err := a.blogs.FetchAll(cmd.Context()); err != nil {
				a.log.Warn("blogs for profile card", zap.Error(err))
			}
			card, err := a.people.PublicProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), card)
		},
	}
}

func themeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the colour theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openStore(); err != nil {
				return err
			}
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			t, err := runTheme(a.store, arg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

// runTheme shows the stored theme for "", flips it for "toggle" and sets it otherwise.
func runTheme(st localstore.Store, arg string) (localstore.Theme, error) {
	switch arg {
	case "":
		return localstore.LoadTheme(st), nil
	case "toggle":
		return localstore.Toggle(st)
	}
	t, err := localstore.ParseTheme(arg)
	if err != nil {
		return "", err
	}
	if err := localstore.SaveTheme(st, t); err != nil {
		return "", err
	}
	return t, nil
}
