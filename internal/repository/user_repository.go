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
	"golang.org/x/crypto/bcrypt"
)

type userRepository struct {
	db *sqlx.DB
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userSummarySelect = `
	SELECT u.user_id, u.username, u.profile_picture, u.created_at,
		(SELECT COUNT(*) FROM follows f WHERE f.following_id = u.user_id) AS followers_count,
		(SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.user_id) AS following_count,
		EXISTS (SELECT 1 FROM follows f WHERE f.follower_id::text = $1 AND f.following_id = u.user_id) AS is_following
	FROM users u`

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.UserID = uuid.New().String()
	user.PasswordHash = string(hashedPassword)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO users (user_id, username, email, password_hash, refresh_token, refresh_token_expiry_time, created_at)
		VALUES (:user_id, :username, :email, :password_hash, :refresh_token, :refresh_token_expiry_time, :created_at)
	`

	_, err = r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Username, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User

	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := r.getUser(ctx, `SELECT * FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return user, err
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := r.getUser(ctx, `SELECT * FROM users WHERE username = $1`, username)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return user, err
}

func (r *userRepository) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $1, refresh_token_expiry_time = $2
		WHERE user_id = $3
	`

	_, err := r.db.ExecContext(ctx, query, refreshToken, expiryTime, userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	query := `
		SELECT * FROM users
		WHERE refresh_token = $1
		AND refresh_token_expiry_time > CURRENT_TIMESTAMP
	`

	user, err := r.getUser(ctx, query, refreshToken)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	return user, err
}

func (r *userRepository) UpdateProfilePicture(ctx context.Context, userID string, objectKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET profile_picture = $1 WHERE user_id = $2`, objectKey, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile picture: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	return nil
}

func (r *userRepository) ListUsers(ctx context.Context, requesterID string) ([]models.UserSummary, error) {
	query := userSummarySelect + `
		WHERE u.user_id::text <> $1
		ORDER BY u.username
	`

	users := []models.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query, requesterID); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

func (r *userRepository) GetSummaryByUsername(ctx context.Context, username, requesterID string) (*models.UserSummary, error) {
	query := userSummarySelect + `
		WHERE u.username = $2
	`

	var user models.UserSummary
	err := r.db.GetContext(ctx, &user, query, requesterID, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT following_id FROM follows WHERE follower_id = $1`

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get following list: %w", err)
	}

	return ids, nil
}

// ToggleFollow removes the follow edge if present and creates it otherwise.
// It reports whether the follower follows the target afterwards.
func (r *userRepository) ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, advisoryLockQuery, "follow:"+followerID+":"+followingID); err != nil {
		return false, fmt.Errorf("failed to lock follow: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check deleted rows: %w", err)
	}

	following := deleted == 0
	if following {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO follows (follower_id, following_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (follower_id, following_id) DO NOTHING
		`, followerID, followingID, time.Now())
		if err != nil {
			return false, fmt.Errorf("failed to create follow: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit follow: %w", err)
	}

	return following, nil
}
