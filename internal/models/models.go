package models

import (
	"io"
	"time"
)

type User struct {
	UserID                 string    `json:"id" db:"user_id"`
	Username               string    `json:"username" db:"username"`
	Email                  string    `json:"email" db:"email"`
	PasswordHash           string    `json:"-" db:"password_hash"`
	ProfilePicture         *string   `json:"-" db:"profile_picture"`
	RefreshToken           string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime time.Time `json:"-" db:"refresh_token_expiry_time"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
}

// UserSummary is a user row enriched with follow information for a given requester.
type UserSummary struct {
	UserID         string    `db:"user_id"`
	Username       string    `db:"username"`
	ProfilePicture *string   `db:"profile_picture"`
	CreatedAt      time.Time `db:"created_at"`
	FollowersCount int       `db:"followers_count"`
	FollowingCount int       `db:"following_count"`
	IsFollowing    bool      `db:"is_following"`
}

type Post struct {
	PostID    string    `db:"post_id"`
	AuthorID  string    `db:"author_id"`
	Content   string    `db:"content"`
	ImageKey  *string   `db:"image_key"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// Joined from users, read-only.
	AuthorUsername       string  `db:"author_username"`
	AuthorProfilePicture *string `db:"author_profile_picture"`
}

type Comment struct {
	CommentID       string    `db:"comment_id"`
	PostID          string    `db:"post_id"`
	AuthorID        string    `db:"author_id"`
	ParentCommentID *string   `db:"parent_comment_id"`
	Content         string    `db:"content"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`

	AuthorUsername       string  `db:"author_username"`
	AuthorProfilePicture *string `db:"author_profile_picture"`
}

// PostStats holds the per-requester derived fields of a post.
type PostStats struct {
	LikesCount    int
	CommentsCount int
	IsLiked       bool
}

// ViewType selects which posts a listing returns.
type ViewType string

const (
	ViewHome      ViewType = "home"
	ViewProfile   ViewType = "profile"
	ViewFollowing ViewType = "following"
)

// PostFilter is the resolved listing request.
type PostFilter struct {
	ViewType    ViewType
	Username    string
	RequesterID string
}

type AuthorView struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
}

type PostView struct {
	ID            string     `json:"id"`
	Author        AuthorView `json:"author"`
	Content       string     `json:"content"`
	Image         *string    `json:"image"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LikesCount    int        `json:"likes_count"`
	CommentsCount int        `json:"comments_count"`
	IsLiked       bool       `json:"is_liked"`
}

type CommentView struct {
	ID            string        `json:"id"`
	Author        AuthorView    `json:"author"`
	Content       string        `json:"content"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	ParentComment *string       `json:"parent_comment"`
	Replies       []CommentView `json:"replies"`
}

type UserView struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	ProfilePicture *string   `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	IsFollowing    bool      `json:"is_following"`
}

type LikeResult struct {
	Message    string `json:"message"`
	IsLiked    bool   `json:"is_liked"`
	LikesCount int    `json:"likes_count"`
}

type FollowResult struct {
	Message     string `json:"message"`
	IsFollowing bool   `json:"is_following"`
}

// Upload is an image file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}
