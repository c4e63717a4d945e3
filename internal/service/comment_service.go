package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devconnect/internal/events"
	"devconnect/internal/models"
	"devconnect/internal/repository"
)

type CommentService interface {
	ListComments(ctx context.Context, postID string) ([]models.CommentView, error)
	GetComment(ctx context.Context, commentID string) (*models.CommentView, error)
	CreateComment(ctx context.Context, req repository.CreateCommentRequest) (*models.CommentView, error)
	Reply(ctx context.Context, req repository.CreateReplyRequest) (*models.CommentView, error)
	UpdateComment(ctx context.Context, req repository.UpdateCommentRequest) (*models.CommentView, error)
	DeleteComment(ctx context.Context, commentID, requesterID string) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	serializer  *Serializer
	publisher   events.Publisher
	order       string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	serializer *Serializer,
	publisher events.Publisher,
	order string,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		serializer:  serializer,
		publisher:   publisher,
		order:       order,
	}
}

func (s *commentService) requirePost(ctx context.Context, postID string) error {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("post %s: %w", postID, repository.ErrNotFound)
	}
	return nil
}

// ListComments returns the post's top-level comments, each with its replies nested.
func (s *commentService) ListComments(ctx context.Context, postID string) ([]models.CommentView, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID, s.order)
	if err != nil {
		return nil, err
	}

	return s.serializer.CommentForest(ctx, comments), nil
}

func (s *commentService) GetComment(ctx context.Context, commentID string) (*models.CommentView, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, comment.PostID, s.order)
	if err != nil {
		return nil, err
	}

	view, ok := s.serializer.CommentSubtree(ctx, comments, commentID)
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", commentID, repository.ErrNotFound)
	}

	return &view, nil
}

// CreateComment stores a top-level comment on req.PostID authored by req.AuthorID.
func (s *commentService) CreateComment(ctx context.Context, req repository.CreateCommentRequest) (*models.CommentView, error) {
	if err := s.requirePost(ctx, req.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   req.PostID,
		AuthorID: req.AuthorID,
		Content:  strings.TrimSpace(req.Content),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:      events.CommentCreated,
		ActorID:   req.AuthorID,
		PostID:    req.PostID,
		CommentID: comment.CommentID,
	})

	return s.created(ctx, comment.CommentID)
}

// Reply stores a reply to req.ParentID. The post and parent are taken from the
// stored parent and the author from req.AuthorID; nothing else is trusted.
func (s *commentService) Reply(ctx context.Context, req repository.CreateReplyRequest) (*models.CommentView, error) {
	parent, err := s.commentRepo.GetByID(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}

	reply := &models.Comment{
		PostID:          parent.PostID,
		AuthorID:        req.AuthorID,
		ParentCommentID: &parent.CommentID,
		Content:         strings.TrimSpace(req.Content),
	}

	if err := s.commentRepo.Create(ctx, reply); err != nil {
		if errors.Is(err, repository.ErrParentMismatch) {
			// the parent disappeared between the lookup and the insert
			return nil, fmt.Errorf("comment %s: %w", req.ParentID, repository.ErrNotFound)
		}
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:      events.CommentReplied,
		ActorID:   req.AuthorID,
		PostID:    parent.PostID,
		CommentID: reply.CommentID,
		TargetID:  parent.CommentID,
	})

	return s.created(ctx, reply.CommentID)
}

// created re-reads a new comment so that the author projection is filled in.
func (s *commentService) created(ctx context.Context, commentID string) (*models.CommentView, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	view, _ := s.serializer.CommentSubtree(ctx, []models.Comment{*comment}, commentID)
	return &view, nil
}

func (s *commentService) UpdateComment(ctx context.Context, req repository.UpdateCommentRequest) (*models.CommentView, error) {
	comment, err := s.commentRepo.GetByID(ctx, req.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID != req.RequesterID {
		return nil, ErrForbidden
	}

	comment.Content = strings.TrimSpace(req.Content)
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.GetComment(ctx, req.CommentID)
}

func (s *commentService) DeleteComment(ctx context.Context, commentID, requesterID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != requesterID {
		return ErrForbidden
	}

	return s.commentRepo.Delete(ctx, commentID)
}
