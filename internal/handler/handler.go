package handlers

import (
	"reflect"
	"strings"

	"devconnect/internal/config"
	"devconnect/internal/service"

	"github.com/go-playground/validator/v10"
)

type Handlers struct {
	UserService    service.UserService
	AuthService    service.AuthService
	PostService    service.PostService
	CommentService service.CommentService
	TablesService  service.TablesService
	Cfg            *config.Config
	Validate       *validator.Validate
}

func NewHandlers(service *service.Service, config *config.Config) *Handlers {
	return &Handlers{
		UserService:    service.User,
		AuthService:    service.Auth,
		PostService:    service.Post,
		CommentService: service.Comment,
		TablesService:  service.Tables,
		Cfg:            config,
		Validate:       NewValidator(),
	}
}

// NewValidator reports field errors under their json names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
