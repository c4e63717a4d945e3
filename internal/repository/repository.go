package repository

import (
	"context"
	"time"

	"devconnect/internal/models"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	VerifyPassword(ctx context.Context, username, password string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)
	UpdateProfilePicture(ctx context.Context, userID string, objectKey *string) error
	ListUsers(ctx context.Context, requesterID string) ([]models.UserSummary, error)
	GetSummaryByUsername(ctx context.Context, username, requesterID string) (*models.UserSummary, error)
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)
	ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	Exists(ctx context.Context, postID string) (bool, error)
	List(ctx context.Context) ([]models.Post, error)
	ListByUsername(ctx context.Context, username string) ([]models.Post, error)
	ListByAuthorIDs(ctx context.Context, authorIDs []string) ([]models.Post, error)
	Stats(ctx context.Context, postIDs []string, requesterID string) (map[string]models.PostStats, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, postID string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, commentID string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string, order string) ([]models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, commentID string) error
}

type LikeRepository interface {
	Toggle(ctx context.Context, postID, userID string) (bool, int, error)
}

type TablesRepository interface {
	CountTablesDB(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

type Repository struct {
	User    UserRepository
	Post    PostRepository
	Comment CommentRepository
	Like    LikeRepository
	Tables  TablesRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:    NewUserRepository(db),
		Post:    NewPostRepository(db),
		Comment: NewCommentRepository(db),
		Like:    NewLikeRepository(db),
		Tables:  NewTablesRepository(db),
	}
}
