package service

import (
	"context"
	"fmt"

	"devconnect/internal/events"
	"devconnect/internal/models"
	"devconnect/internal/repository"
	"devconnect/internal/storage"

	log "github.com/sirupsen/logrus"
)

const avatarPrefix = "avatars"

type UserService interface {
	ListUsers(ctx context.Context, requesterID string) ([]models.UserView, error)
	GetMe(ctx context.Context, requesterID string) (*models.UserView, error)
	GetProfile(ctx context.Context, username, requesterID string) (*models.UserView, error)
	ToggleFollow(ctx context.Context, followerID, targetID string) (*models.FollowResult, error)
	UpdateProfilePicture(ctx context.Context, userID string, upload *models.Upload) (*models.UserView, error)
}

type userService struct {
	userRepo   repository.UserRepository
	storage    storage.Storage
	serializer *Serializer
	publisher  events.Publisher
}

func NewUserService(
	userRepo repository.UserRepository,
	storage storage.Storage,
	serializer *Serializer,
	publisher events.Publisher,
) UserService {
	return &userService{
		userRepo:   userRepo,
		storage:    storage,
		serializer: serializer,
		publisher:  publisher,
	}
}

func (s *userService) ListUsers(ctx context.Context, requesterID string) ([]models.UserView, error) {
	users, err := s.userRepo.ListUsers(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	return s.serializer.Users(ctx, users), nil
}

func (s *userService) GetMe(ctx context.Context, requesterID string) (*models.UserView, error) {
	user, err := s.userRepo.GetUserByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, user.Username, requesterID)
}

func (s *userService) GetProfile(ctx context.Context, username, requesterID string) (*models.UserView, error) {
	summary, err := s.userRepo.GetSummaryByUsername(ctx, username, requesterID)
	if err != nil {
		return nil, err
	}

	view := s.serializer.User(ctx, summary)
	return &view, nil
}

func (s *userService) ToggleFollow(ctx context.Context, followerID, targetID string) (*models.FollowResult, error) {
	if followerID == targetID {
		return nil, ErrSelfFollow
	}

	if _, err := s.userRepo.GetUserByID(ctx, targetID); err != nil {
		return nil, err
	}

	following, err := s.userRepo.ToggleFollow(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}

	result := &models.FollowResult{Message: "User unfollowed successfully", IsFollowing: following}
	eventType := events.UserUnfollowed
	if following {
		result.Message = "User followed successfully"
		eventType = events.UserFollowed
	}

	s.publisher.Publish(ctx, events.Event{
		Type:     eventType,
		ActorID:  followerID,
		TargetID: targetID,
	})

	return result, nil
}

// UpdateProfilePicture uploads a new picture and replaces the stored key.
// The previous object is deleted once the row points at the new one.
func (s *userService) UpdateProfilePicture(ctx context.Context, userID string, upload *models.Upload) (*models.UserView, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := s.storage.UploadImage(ctx, avatarPrefix, upload)
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile picture: %w", err)
	}

	if err := s.userRepo.UpdateProfilePicture(ctx, userID, &key); err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}

	if user.ProfilePicture != nil && *user.ProfilePicture != "" {
		s.removeImage(ctx, *user.ProfilePicture)
	}

	return s.GetProfile(ctx, user.Username, userID)
}

func (s *userService) removeImage(ctx context.Context, key string) {
	if err := s.storage.DeleteImage(ctx, key); err != nil {
		log.Warnf("[user] failed to delete image %s: %v", key, err)
	}
}
