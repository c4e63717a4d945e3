package service

import (
	"devconnect/internal/config"
	"devconnect/internal/events"
	"devconnect/internal/repository"
	"devconnect/internal/storage"
)

type Service struct {
	User    UserService
	Post    PostService
	Comment CommentService
	Auth    AuthService
	Tables  TablesService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, publisher events.Publisher) *Service {
	serializer := NewSerializer(rep.Post, storage)

	return &Service{
		User:    NewUserService(rep.User, storage, serializer, publisher),
		Post:    NewPostService(rep.Post, rep.User, rep.Like, storage, serializer, publisher),
		Comment: NewCommentService(rep.Comment, rep.Post, serializer, publisher, cfg.CommentOrder),
		Auth:    NewAuthService(rep.User, cfg),
		Tables:  NewTablesService(rep.Tables),
	}
}
