package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/model"
	"github.com/and161185/boolog/internal/service"
)

func adminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Dashboard operations for the admin account",
	}
	cmd.AddCommand(
		adminStatsCmd(a),
		adminPublishCmd(a),
		adminEditCmd(a),
		adminDeleteBlogCmd(a),
		adminAddCategoryCmd(a),
		adminUsersCmd(a),
		adminEditUserCmd(a),
		adminDeleteUserCmd(a),
		adminProvisionCmd(a),
	)
	return cmd
}

// adminRun opens the app and resolves the session before fn; the
// admin guard itself runs inside the dashboard service.
func adminRun(a *app, fn func(cmd *cobra.Command, args []string, s service.Session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(cmd.Context()); err != nil {
			return err
		}
		s, err := a.session(cmd.Context())
		if err != nil {
			return err
		}
		return fn(cmd, args, s)
	}
}

func adminStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count users, blogs and comments",
		Args:  cobra.NoArgs,
		RunE: adminRun(a, func(cmd *cobra.Command, _ []string, s service.Session) error {
			st, err := a.admin.Stats(cmd.Context(), s)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		}),
	}
}

// blogFlags are the editable blog fields.
type blogFlags struct {
	title, content, image, category, tags string
}

func (b *blogFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&b.title, "title", "t", "", "title")
	f.StringVarP(&b.content, "content", "b", "", "body text")
	f.StringVar(&b.image, "image", "", "cover image URL, empty to clear")
	f.StringVarP(&b.category, "category", "c", "", `category id, "none" to clear`)
	f.StringVar(&b.tags, "tags", "", "comma separated tags")
}

func (b *blogFlags) newBlog() (model.NewBlog, error) {
	in := model.NewBlog{Title: b.title, Content: b.content, Tags: splitTags(b.tags)}
	if b.image != "" {
		in.ImageURL = &b.image
	}
	cat, err := parseCategory(b.category)
	if err != nil {
		return in, err
	}
	in.CategoryID = cat
	return in, nil
}

// update keeps only the flags set on cmd.
func (b *blogFlags) update(cmd *cobra.Command) (model.BlogUpdate, error) {
	var upd model.BlogUpdate
	f := cmd.Flags()
	if f.Changed("title") {
		upd.Title = &b.title
	}
	if f.Changed("content") {
		upd.Content = &b.content
	}
	if f.Changed("image") {
		upd.ImageURL = &b.image
	}
	if f.Changed("category") {
		var id int64
		if c := strings.TrimSpace(b.category); c != "" && !strings.EqualFold(c, "none") {
			var err error
			if id, err = parseID(c); err != nil {
				return upd, err
			}
		}
		upd.CategoryID = &id
	}
	if f.Changed("tags") {
		upd.Tags = splitTags(b.tags)
		if upd.Tags == nil {
			upd.Tags = []string{}
		}
	}
	return upd, nil
}

func adminPublishCmd(a *app) *cobra.Command {
	var bf blogFlags
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a new blog",
		Args:  cobra.NoArgs,
		RunE: adminRun(a, func(cmd *cobra.Command, _ []string, s service.Session) error {
			in, err := bf.newBlog()
			if err != nil {
				return err
			}
			b, err := a.admin.PublishBlog(cmd.Context(), s, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), b)
		}),
	}
	bf.bind(cmd)
	return cmd
}

func adminEditCmd(a *app) *cobra.Command {
	var bf blogFlags
	cmd := &cobra.Command{
		Use:   "edit <blog-id>",
		Short: "Edit a blog",
		Args:  cobra.ExactArgs(1),
		RunE: adminRun(a, func(cmd *cobra.Command, args []string, s service.Session) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			upd, err := bf.update(cmd)
			if err != nil {
				return err
			}
			if _, err := a.blogs.FetchAll(cmd.Context()); err != nil {
				return err
			}
			b, err := a.admin.EditBlog(cmd.Context(), s, id, upd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), b)
		}),
	}
	bf.bind(cmd)
	return cmd
}

func adminDeleteBlogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-blog <blog-id>",
		Short: "Delete a blog with its likes and comments",
		Args:  cobra.ExactArgs(1),
		RunE: adminRun(a, func(cmd *cobra.Command, args []string, s service.Session) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.admin.DeleteBlog(cmd.Context(), s, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		}),
	}
}

func adminAddCategoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add-category <name...>",
		Short: "Create a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: adminRun(a, func(cmd *cobra.Command, args []string, s service.Session) error {
			c, err := a.admin.AddCategory(cmd.Context(), s, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		}),
	}
}

func adminUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List regular accounts",
		Args:  cobra.NoArgs,
		RunE: adminRun(a, func(cmd *cobra.Command, _ []string, s service.Session) error {
			users, err := a.admin.Users(cmd.Context(), s)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), users)
		}),
	}
}

func adminEditUserCmd(a *app) *cobra.Command {
	var email, username, avatar, role string
	cmd := &cobra.Command{
		Use:   "edit-user <user-id>",
		Short: "Edit any account, role included",
		Args:  cobra.ExactArgs(1),
		RunE: adminRun(a, func(cmd *cobra.Command, args []string, s service.Session) error {
			id, err := parseUUID(args[0])
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
			if f.Changed("role") {
				r := model.Role(role)
				upd.Role = &r
			}
			p, err := a.admin.EditUser(cmd.Context(), s, id, upd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "new email address")
	cmd.Flags().StringVarP(&username, "username", "u", "", "new username")
	cmd.Flags().StringVar(&avatar, "avatar", "", "new avatar URL")
	cmd.Flags().StringVar(&role, "role", "", "admin or user")
	return cmd
}

func adminDeleteUserCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user <user-id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: adminRun(a, func(cmd *cobra.Command, args []string, s service.Session) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			if err := a.admin.DeleteUser(cmd.Context(), s, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		}),
	}
}

// adminProvisionCmd creates the managed credential of the configured admin.
// It needs no session.
func adminProvisionCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create the admin credential in managed auth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			if password == "" {
				return fmt.Errorf("%w: --password is required", errs.ErrValidation)
			}
			id, err := a.managed.Provision(cmd.Context(), a.cfg.AdminEmail, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s provisioned as %s\n", a.cfg.AdminEmail, id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password")
	return cmd
}
