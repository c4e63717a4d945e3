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
)

type commentRepository struct {
	db *sqlx.DB
}

type CreateCommentRequest struct {
	PostID   string `json:"-"`
	AuthorID string `json:"-"`
	Content  string `json:"content"`
}

type CreateReplyRequest struct {
	ParentID string `json:"-"`
	AuthorID string `json:"-"`
	Content  string `json:"content"`
}

type UpdateCommentRequest struct {
	CommentID   string `json:"-"`
	RequesterID string `json:"-"`
	Content     string `json:"content"`
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentSelect = `
	SELECT c.comment_id, c.post_id, c.author_id, c.parent_comment_id, c.content, c.created_at, c.updated_at,
		u.username AS author_username, u.profile_picture AS author_profile_picture
	FROM comments c
	JOIN users u ON u.user_id = c.author_id`

// Create stores a comment. For a reply the insert only succeeds when the
// parent belongs to the same post; otherwise ErrParentMismatch is returned.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CommentID == "" {
		comment.CommentID = uuid.New().String()
	}

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	if comment.ParentCommentID == nil {
		query := `
			INSERT INTO comments (comment_id, post_id, author_id, parent_comment_id, content, created_at, updated_at)
			VALUES (:comment_id, :post_id, :author_id, NULL, :content, :created_at, :updated_at)
		`

		if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO comments (comment_id, post_id, author_id, parent_comment_id, content, created_at, updated_at)
		SELECT $1::uuid, parent.post_id, $2::uuid, parent.comment_id, $3::text, $4::timestamptz, $4::timestamptz
		FROM comments parent
		WHERE parent.comment_id = $5 AND parent.post_id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		comment.CommentID,
		comment.AuthorID,
		comment.Content,
		now,
		*comment.ParentCommentID,
		comment.PostID,
	)
	if err != nil {
		return fmt.Errorf("failed to create reply: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check inserted rows: %w", err)
	}

	if rowsAffected == 0 {
		return ErrParentMismatch
	}

	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*models.Comment, error) {
	query := commentSelect + `
		WHERE c.comment_id = $1
	`

	var comment models.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return &comment, nil
}

// ListByPost returns every comment of the post, replies included, in creation
// order ("asc") or reverse creation order ("desc").
func (r *commentRepository) ListByPost(ctx context.Context, postID string, order string) ([]models.Comment, error) {
	direction := "ASC"
	if order == "desc" {
		direction = "DESC"
	}

	query := commentSelect + `
		WHERE c.post_id = $1
		ORDER BY c.created_at ` + direction + `, c.comment_id ` + direction

	comments := []models.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	query := `
		UPDATE comments SET
			content = :content,
			updated_at = :updated_at
		WHERE comment_id = :comment_id AND author_id = :author_id
	`

	comment.UpdatedAt = time.Now()

	result, err := r.db.NamedExecContext(ctx, query, comment)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("comment %s: %w", comment.CommentID, ErrNotFound)
	}

	return nil
}

// Delete removes the comment. Its direct replies become top-level comments
// (parent_comment_id is ON DELETE SET NULL).
func (r *commentRepository) Delete(ctx context.Context, commentID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE comment_id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}

	return nil
}
