package models

import (
	"strings"
	"time"
)

type User struct {
	UserID                 int64     `json:"userId" db:"user_id"`
	Username               string    `json:"username" db:"username"`
	FirstName              string    `json:"firstName" db:"first_name"`
	LastName               string    `json:"lastName" db:"last_name"`
	Email                  string    `json:"email" db:"email"`
	PasswordHash           string    `json:"-" db:"password_hash"`
	RefreshToken           string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime time.Time `json:"-" db:"refresh_token_expiry_time"`
	CreatedAt              time.Time `json:"createdAt" db:"created_at"`
}

// DisplayName falls back to the username when no name was given on signup.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

type Group struct {
	GroupID     int64  `json:"groupId" db:"group_id"`
	Title       string `json:"title" db:"title"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`
}

type Post struct {
	PostID    int64     `json:"postId" db:"post_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
	GroupID   *int64    `json:"groupId" db:"group_id"`
	Image     *string   `json:"image" db:"image"`

	// joined for rendering, never written
	AuthorUsername string  `json:"authorUsername" db:"author_username"`
	GroupSlug      *string `json:"groupSlug" db:"group_slug"`
	GroupTitle     *string `json:"groupTitle" db:"group_title"`
}

// OwnerID makes a post subject to ownership checks.
func (p *Post) OwnerID() int64 {
	return p.AuthorID
}

type Comment struct {
	CommentID      int64     `json:"commentId" db:"comment_id"`
	Text           string    `json:"text" db:"text"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	AuthorID       int64     `json:"authorId" db:"author_id"`
	PostID         int64     `json:"postId" db:"post_id"`
	AuthorUsername string    `json:"authorUsername" db:"author_username"`
}

func (c *Comment) OwnerID() int64 {
	return c.AuthorID
}

type Follow struct {
	FollowID int64 `json:"followId" db:"follow_id"`
	UserID   int64 `json:"userId" db:"user_id"`
	AuthorID int64 `json:"authorId" db:"author_id"`
}
