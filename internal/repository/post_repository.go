package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"devconnect/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

type CreatePostRequest struct {
	AuthorID string         `json:"author_id"`
	Content  string         `json:"content"`
	Image    *models.Upload `json:"-"`
}

// UpdatePostRequest changes a post's content. A nil Content leaves it as is.
type UpdatePostRequest struct {
	PostID      string  `json:"post_id"`
	RequesterID string  `json:"-"`
	Content     *string `json:"content"`
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

const postSelect = `
	SELECT p.post_id, p.author_id, p.content, p.image_key, p.created_at, p.updated_at,
		u.username AS author_username, u.profile_picture AS author_profile_picture
	FROM posts p
	JOIN users u ON u.user_id = p.author_id`

const postOrder = `
	ORDER BY p.created_at DESC, p.post_id DESC`

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (post_id, author_id, content, image_key, created_at, updated_at)
		VALUES (:post_id, :author_id, :content, :image_key, :created_at, :updated_at)
	`

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := r.DB.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	query := postSelect + `
		WHERE p.post_id = $1
	`

	var post models.Post
	err := r.DB.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

func (r *PostRepositoryImpl) Exists(ctx context.Context, postID string) (bool, error) {
	var exists bool

	err := r.DB.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM posts WHERE post_id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("failed to check post: %w", err)
	}

	return exists, nil
}

func (r *PostRepositoryImpl) selectPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	posts := []models.Post{}

	if err := r.DB.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

func (r *PostRepositoryImpl) List(ctx context.Context) ([]models.Post, error) {
	return r.selectPosts(ctx, postSelect+postOrder)
}

func (r *PostRepositoryImpl) ListByUsername(ctx context.Context, username string) ([]models.Post, error) {
	query := postSelect + `
		WHERE u.username = $1` + postOrder

	return r.selectPosts(ctx, query, username)
}

func (r *PostRepositoryImpl) ListByAuthorIDs(ctx context.Context, authorIDs []string) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}

	query := postSelect + `
		WHERE p.author_id = ANY($1::uuid[])` + postOrder

	return r.selectPosts(ctx, query, pq.Array(authorIDs))
}

type postStatsRow struct {
	PostID        string `db:"post_id"`
	LikesCount    int    `db:"likes_count"`
	CommentsCount int    `db:"comments_count"`
	IsLiked       bool   `db:"is_liked"`
}

// Stats computes like and top-level comment counts for the given posts, and
// whether requesterID has liked each of them. Nothing is cached.
func (r *PostRepositoryImpl) Stats(ctx context.Context, postIDs []string, requesterID string) (map[string]models.PostStats, error) {
	stats := make(map[string]models.PostStats, len(postIDs))
	if len(postIDs) == 0 {
		return stats, nil
	}

	query := `
		SELECT p.post_id,
			(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.post_id) AS likes_count,
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.post_id AND c.parent_comment_id IS NULL) AS comments_count,
			EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.post_id AND l.user_id::text = $2) AS is_liked
		FROM posts p
		WHERE p.post_id = ANY($1::uuid[])
	`

	var rows []postStatsRow
	if err := r.DB.SelectContext(ctx, &rows, query, pq.Array(postIDs), requesterID); err != nil {
		return nil, fmt.Errorf("failed to get post stats: %w", err)
	}

	for _, row := range rows {
		stats[row.PostID] = models.PostStats{
			LikesCount:    row.LikesCount,
			CommentsCount: row.CommentsCount,
			IsLiked:       row.IsLiked,
		}
	}

	return stats, nil
}

func (r *PostRepositoryImpl) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts SET
			content = :content,
			image_key = :image_key,
			updated_at = :updated_at
		WHERE post_id = :post_id AND author_id = :author_id
	`

	post.UpdatedAt = time.Now()

	result, err := r.DB.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("post %s: %w", post.PostID, ErrNotFound)
	}

	return nil
}

// Delete removes the post. Comments and likes go with it through ON DELETE CASCADE.
func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}

	return nil
}
