// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Role is the access level of a profile.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// AdminUsername is the display name forced onto every admin profile.
const AdminUsername = "Admin"

// Profile is an identity row of the profiles table.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	PwdHash   string    `json:"-"` // bcrypt; empty for the admin
	AvatarURL *string   `json:"avatar_url"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }

// ProfileUpdate is a partial profile change; nil fields are left untouched.
type ProfileUpdate struct {
	Email     *string
	Username  *string
	AvatarURL *string
	Role      *Role
}

// Author is the display subset of a profile attached to blogs and comments.
type Author struct {
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

// Category groups blogs; created by the admin.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment belongs to exactly one blog. In list views only ID and BlogID are populated.
type Comment struct {
	ID        int64     `json:"id"`
	BlogID    int64     `json:"blog_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Author    *Author   `json:"author,omitempty"`
}

// Blog is a published article with its aggregated relations.
type Blog struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	ImageURL     *string     `json:"image_url"`
	CategoryID   *int64      `json:"category_id"`
	CategoryName string      `json:"category_name,omitempty"`
	Tags         []string    `json:"tags"`
	AuthorID     uuid.UUID   `json:"author_id"`
	CreatedAt    time.Time   `json:"created_at"`
	Author       Author      `json:"author"`
	Likes        []uuid.UUID `json:"likes"`    // user ids
	Comments     []Comment   `json:"comments"` // ids only until loaded
}

// LikedBy reports whether userID is in the blog's like set.
func (b Blog) LikedBy(userID uuid.UUID) bool {
	for _, id := range b.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// NewBlog is a blog insert intent.
type NewBlog struct {
	Title      string   `validate:"required"`
	Content    string   `validate:"required"`
	ImageURL   *string  `validate:"omitempty,url"`
	CategoryID *int64   `validate:"omitempty,gt=0"`
	Tags       []string `validate:"dive,required"`
	AuthorID   uuid.UUID
}

// BlogUpdate is a partial blog change; nil fields are left untouched.
// An empty ImageURL or a zero CategoryID clears the field.
type BlogUpdate struct {
	Title      *string
	Content    *string
	ImageURL   *string
	CategoryID *int64
	Tags       []string
}

// LikeAction reports the outcome of a like toggle.
type LikeAction string

const (
	Liked   LikeAction = "like"
	Unliked LikeAction = "unlike"
)

// Stats are the exact row counts shown on the admin dashboard.
type Stats struct {
	Users    int64 `json:"users_count"`
	Blogs    int64 `json:"blogs_count"`
	Comments int64 `json:"comments_count"`
}

// AuthUser is a credential row of the managed-auth service.
type AuthUser struct {
	ID        uuid.UUID
	Email     string
	PwdHash   []byte // Argon2id(password, Salt)
	Salt      []byte
	CreatedAt time.Time
}

// AuthSession is an active managed-auth session.
type AuthSession struct {
	UserID    uuid.UUID
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Member is a profile row of the people directory with its activity figures.
type Member struct {
	Profile
	Comments int `json:"comments"`
	Points   int `json:"points"`
}
