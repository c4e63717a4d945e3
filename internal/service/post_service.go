package service

import (
	"context"
	"fmt"
	"strings"

	"devconnect/internal/events"
	"devconnect/internal/models"
	"devconnect/internal/repository"
	"devconnect/internal/storage"

	log "github.com/sirupsen/logrus"
)

const postImagePrefix = "posts"

type PostService interface {
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.PostView, error)
	GetPost(ctx context.Context, postID, requesterID string) (*models.PostView, error)
	CreatePost(ctx context.Context, req repository.CreatePostRequest) (*models.PostView, error)
	UpdatePost(ctx context.Context, req repository.UpdatePostRequest) (*models.PostView, error)
	DeletePost(ctx context.Context, postID, requesterID string) error
	ToggleLike(ctx context.Context, postID, requesterID string) (*models.LikeResult, error)
}

type postService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	likeRepo   repository.LikeRepository
	storage    storage.Storage
	serializer *Serializer
	publisher  events.Publisher
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
	storage storage.Storage,
	serializer *Serializer,
	publisher events.Publisher,
) PostService {
	return &postService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		likeRepo:   likeRepo,
		storage:    storage,
		serializer: serializer,
		publisher:  publisher,
	}
}

// ParseViewType maps the view_type query value to a ViewType. Unknown values
// and the empty string select the home view.
func ParseViewType(value string) models.ViewType {
	switch models.ViewType(strings.ToLower(strings.TrimSpace(value))) {
	case models.ViewProfile:
		return models.ViewProfile
	case models.ViewFollowing:
		return models.ViewFollowing
	default:
		return models.ViewHome
	}
}

func (p *postService) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.PostView, error) {
	var (
		posts []models.Post
		err   error
	)

	switch {
	case filter.ViewType == models.ViewFollowing:
		var followingIDs []string
		followingIDs, err = p.userRepo.GetFollowingIDs(ctx, filter.RequesterID)
		if err != nil {
			return nil, err
		}
		posts, err = p.postRepo.ListByAuthorIDs(ctx, followingIDs)
	case filter.ViewType == models.ViewProfile && filter.Username != "":
		posts, err = p.postRepo.ListByUsername(ctx, filter.Username)
	default:
		posts, err = p.postRepo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	return p.serializer.Posts(ctx, filter.RequesterID, posts)
}

func (p *postService) GetPost(ctx context.Context, postID, requesterID string) (*models.PostView, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return p.serializer.Post(ctx, requesterID, post)
}

// CreatePost stores a post authored by req.AuthorID. The optional image is
// uploaded first and removed again if the row cannot be written.
func (p *postService) CreatePost(ctx context.Context, req repository.CreatePostRequest) (*models.PostView, error) {
	if strings.TrimSpace(req.Content) == "" && req.Image == nil {
		return nil, ErrEmptyPost
	}

	post := &models.Post{
		AuthorID: req.AuthorID,
		Content:  req.Content,
	}

	if req.Image != nil {
		key, err := p.storage.UploadImage(ctx, postImagePrefix, req.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload post image: %w", err)
		}
		post.ImageKey = &key
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		if post.ImageKey != nil {
			p.removeImage(ctx, *post.ImageKey)
		}
		return nil, err
	}

	p.publisher.Publish(ctx, events.Event{
		Type:    events.PostCreated,
		ActorID: req.AuthorID,
		PostID:  post.PostID,
	})

	return p.GetPost(ctx, post.PostID, req.AuthorID)
}

func (p *postService) UpdatePost(ctx context.Context, req repository.UpdatePostRequest) (*models.PostView, error) {
	post, err := p.postRepo.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != req.RequesterID {
		return nil, ErrForbidden
	}

	if req.Content == nil {
		return p.serializer.Post(ctx, req.RequesterID, post)
	}

	if strings.TrimSpace(*req.Content) == "" && post.ImageKey == nil {
		return nil, ErrEmptyPost
	}

	post.Content = *req.Content
	if err := p.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return p.serializer.Post(ctx, req.RequesterID, post)
}

func (p *postService) DeletePost(ctx context.Context, postID, requesterID string) error {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != requesterID {
		return ErrForbidden
	}

	if err := p.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	if post.ImageKey != nil {
		p.removeImage(ctx, *post.ImageKey)
	}

	return nil
}

func (p *postService) ToggleLike(ctx context.Context, postID, requesterID string) (*models.LikeResult, error) {
	liked, count, err := p.likeRepo.Toggle(ctx, postID, requesterID)
	if err != nil {
		return nil, err
	}

	result := &models.LikeResult{
		Message:    "Post unliked successfully",
		IsLiked:    liked,
		LikesCount: count,
	}
	eventType := events.PostUnliked
	if liked {
		result.Message = "Post liked successfully"
		eventType = events.PostLiked
	}

	p.publisher.Publish(ctx, events.Event{
		Type:    eventType,
		ActorID: requesterID,
		PostID:  postID,
	})

	return result, nil
}

func (p *postService) removeImage(ctx context.Context, key string) {
	if err := p.storage.DeleteImage(ctx, key); err != nil {
		log.Warnf("[post] failed to delete image %s: %v", key, err)
	}
}
