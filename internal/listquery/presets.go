package listquery

import (
	"cmp"
	"strings"

	"github.com/and161185/boolog/internal/model"
)

// Sort keys.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortAlpha     = "alpha"
	SortAlphaDesc = "alpha_desc"
	SortLikes     = "likes"
	SortComments  = "comments"
	SortPopular   = "popular"
)

// Page sizes per list.
const (
	BlogPageSize    = 6
	MemberPageSize  = 9
	CommentPageSize = 5
)

func byTitle(a, b model.Blog) int {
	return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
}

func blogByCreated(a, b model.Blog) int { return a.CreatedAt.Compare(b.CreatedAt) }

// Blogs searches title, content and tags.
var Blogs = Pipeline[model.Blog]{
	Fields: func(b model.Blog) []string {
		return append([]string{b.Title, b.Content}, b.Tags...)
	},
	Sorts: map[string]Compare[model.Blog]{
		SortNewest:    Reverse(blogByCreated),
		SortOldest:    blogByCreated,
		SortAlpha:     byTitle,
		SortAlphaDesc: Reverse(byTitle),
		SortLikes: func(a, b model.Blog) int {
			return cmp.Compare(len(b.Likes), len(a.Likes))
		},
		SortComments: func(a, b model.Blog) int {
			return cmp.Compare(len(b.Comments), len(a.Comments))
		},
	},
	DefaultSort: SortNewest,
	PageSize:    BlogPageSize,
}

func memberByCreated(a, b model.Member) int { return a.CreatedAt.Compare(b.CreatedAt) }

func byUsername(a, b model.Member) int {
	return cmp.Compare(strings.ToLower(a.Username), strings.ToLower(b.Username))
}

// Members searches username and email.
var Members = Pipeline[model.Member]{
	Fields: func(m model.Member) []string { return []string{m.Username, m.Email} },
	Sorts: map[string]Compare[model.Member]{
		SortNewest:    Reverse(memberByCreated),
		SortOldest:    memberByCreated,
		SortAlpha:     byUsername,
		SortAlphaDesc: Reverse(byUsername),
		SortPopular: func(a, b model.Member) int {
			return cmp.Compare(b.Points, a.Points)
		},
	},
	DefaultSort: SortNewest,
	PageSize:    MemberPageSize,
}

func commentByCreated(a, b model.Comment) int { return a.CreatedAt.Compare(b.CreatedAt) }

func commentAuthor(c model.Comment) string {
	if c.Author == nil {
		return ""
	}
	return c.Author.Username
}

// Comments searches content and author name.
var Comments = Pipeline[model.Comment]{
	Fields: func(c model.Comment) []string { return []string{c.Content, commentAuthor(c)} },
	Sorts: map[string]Compare[model.Comment]{
		SortNewest: Reverse(commentByCreated),
		SortOldest: commentByCreated,
	},
	DefaultSort: SortNewest,
	PageSize:    CommentPageSize,
}

// ByCategory keeps blogs in category id; a nil id keeps all.
func ByCategory(blogs []model.Blog, id *int64) []model.Blog {
	if id == nil {
		return blogs
	}
	out := make([]model.Blog, 0, len(blogs))
	for _, b := range blogs {
		if b.CategoryID != nil && *b.CategoryID == *id {
			out = append(out, b)
		}
	}
	return out
}
