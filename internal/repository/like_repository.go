package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// advisoryLockQuery serializes toggles on the same key until the transaction ends.
const advisoryLockQuery = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

const postShareLockQuery = `SELECT post_id FROM posts WHERE post_id = $1 FOR SHARE`

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle flips the like of userID on postID in one transaction and returns
// whether the post is liked afterwards together with the new like count.
// Concurrent toggles for the same pair are serialized by an advisory lock;
// the (post_id, user_id) unique key backs that up with ON CONFLICT DO NOTHING,
// so a lost race reads as "liked" instead of failing. The post row is held
// FOR SHARE so it cannot be deleted before the transaction commits.
func (r *likeRepository) Toggle(ctx context.Context, postID, userID string) (bool, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, advisoryLockQuery, "like:"+postID+":"+userID); err != nil {
		return false, 0, fmt.Errorf("failed to lock like: %w", err)
	}

	var lockedID string
	if err := tx.GetContext(ctx, &lockedID, postShareLockQuery, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, 0, fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return false, 0, fmt.Errorf("failed to check post: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to delete like: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check deleted rows: %w", err)
	}

	liked := deleted == 0
	if liked {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO likes (like_id, post_id, user_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (post_id, user_id) DO NOTHING
		`, uuid.New().String(), postID, userID, time.Now())
		if isForeignKeyViolation(err) {
			return false, 0, fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		if err != nil {
			return false, 0, fmt.Errorf("failed to create like: %w", err)
		}
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID); err != nil {
		return false, 0, fmt.Errorf("failed to count likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("failed to commit like: %w", err)
	}

	return liked, count, nil
}
