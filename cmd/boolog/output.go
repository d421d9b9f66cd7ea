package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/boolog/internal/engagement"
	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/listquery"
	"github.com/and161185/boolog/internal/model"
	"github.com/and161185/boolog/internal/service"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", errs.ErrValidation, s)
	}
	return id, nil
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.FromString(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad user id %q", errs.ErrValidation, s)
	}
	return id, nil
}

// parseCategory maps "" and "all" to no filter.
func parseCategory(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return nil, nil
	}
	id, err := parseID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

type sessionView struct {
	ID       uuid.UUID  `json:"id"`
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	Admin    bool       `json:"admin"`
}

func viewSession(s service.Session) sessionView {
	p := s.Profile()
	return sessionView{ID: s.User().ID, Email: s.User().Email, Username: p.Username, Role: p.Role, Admin: s.IsAdmin()}
}

// blogRow is the list rendition of a blog.
type blogRow struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Category  string    `json:"category,omitempty"`
	Tags      []string  `json:"tags"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	Views     string    `json:"views"`
	CreatedAt time.Time `json:"created_at"`
}

func rowOf(b model.Blog, now time.Time) blogRow {
	views := engagement.Views(strconv.FormatInt(b.ID, 10), b.CreatedAt, now)
	return blogRow{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author.Username,
		Category:  b.CategoryName,
		Tags:      b.Tags,
		Likes:     len(b.Likes),
		Comments:  len(b.Comments),
		Views:     engagement.FormatViews(views),
		CreatedAt: b.CreatedAt,
	}
}

type blogDetail struct {
	blogRow
	Content  string                        `json:"content"`
	ImageURL *string                       `json:"image_url,omitempty"`
	LikedBy  bool                          `json:"liked_by_you"`
	Thread   listquery.Page[model.Comment] `json:"thread"`
}

// mapPage converts the items of p keeping its navigation.
func mapPage[T, U any](p listquery.Page[T], f func(T) U) listquery.Page[U] {
	out := listquery.Page[U]{
		Data:         make([]U, len(p.Data)),
		Page:         p.Page,
		Total:        p.Total,
		PageSize:     p.PageSize,
		TotalPages:   p.TotalPages,
		NextPage:     p.NextPage,
		PreviousPage: p.PreviousPage,
		Buttons:      p.Buttons,
	}
	for i, it := range p.Data {
		out.Data[i] = f(it)
	}
	return out
}
