package handlers

import (
	"net/http"
	"strings"

	"devconnect/internal/models"
	"devconnect/internal/repository"
	"devconnect/internal/service"
)

// PostRequest is the writable part of a post. Any author sent by the client
// is dropped during decoding.
type PostRequest struct {
	Content string `json:"content" validate:"max=5000"`
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := models.PostFilter{
		ViewType:    service.ParseViewType(query.Get("view_type")),
		Username:    strings.TrimSpace(query.Get("username")),
		RequesterID: userID,
	}

	posts, err := h.PostService.ListPosts(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, posts, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	post, err := h.PostService.GetPost(r.Context(), postID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

// CreatePost accepts JSON or multipart/form-data with an optional "image" file.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	req := repository.CreatePostRequest{AuthorID: userID}

	if isMultipart(r) {
		if errs := h.parseMultipart(w, r, "image"); errs != nil {
			WriteValidationErrors(w, errs)
			return
		}

		upload, closeFile, errs := h.formImage(r, "image")
		if errs != nil {
			WriteValidationErrors(w, errs)
			return
		}
		defer closeFile()

		body := PostRequest{Content: r.FormValue("content")}
		if err := h.Validate.Struct(body); err != nil {
			WriteValidationErrors(w, fieldErrors(err))
			return
		}

		req.Content = body.Content
		req.Image = upload
	} else {
		var body PostRequest
		if !h.decodeAndValidate(w, r, &body) {
			return
		}
		req.Content = body.Content
	}

	if strings.TrimSpace(req.Content) == "" && req.Image == nil {
		WriteValidationErrors(w, map[string]string{"content": "Provide content or an image."})
		return
	}

	post, err := h.PostService.CreatePost(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, post, http.StatusCreated)
}

// PostUpdateRequest tells an omitted content apart from an empty one.
type PostUpdateRequest struct {
	Content *string `json:"content" validate:"omitempty,max=5000"`
}

// UpdatePost serves both PUT and PATCH; content is the only writable field.
// PUT replaces it, so an omitted content means empty. PATCH leaves an omitted
// content unchanged.
func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body PostUpdateRequest
	if !h.decodeAndValidate(w, r, &body) {
		return
	}

	if body.Content == nil && r.Method == http.MethodPut {
		empty := ""
		body.Content = &empty
	}

	post, err := h.PostService.UpdatePost(r.Context(), repository.UpdatePostRequest{
		PostID:      postID,
		RequesterID: userID,
		Content:     body.Content,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.PostService.DeletePost(r.Context(), postID, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, nil, http.StatusNoContent)
}

func (h *Handlers) LikePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.PostService.ToggleLike(r.Context(), postID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, result, http.StatusOK)
}
