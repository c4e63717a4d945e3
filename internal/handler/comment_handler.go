package handlers

import (
	"net/http"
	"strings"

	"devconnect/internal/repository"
)

// CommentRequest carries the only client-controlled comment field. Post,
// parent and author always come from the path and the token.
type CommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func (h *Handlers) decodeComment(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body CommentRequest
	if !h.decodeAndValidate(w, r, &body) {
		return "", false
	}

	content := strings.TrimSpace(body.Content)
	if content == "" {
		WriteValidationErrors(w, map[string]string{"content": "This field may not be blank."})
		return "", false
	}

	return content, true
}

func (h *Handlers) GetComments(w http.ResponseWriter, r *http.Request) {
	if _, ok := requester(w, r); !ok {
		return
	}

	postID, ok := pathID(w, r, "post_id")
	if !ok {
		return
	}

	comments, err := h.CommentService.ListComments(r.Context(), postID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, comments, http.StatusOK)
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	postID, ok := pathID(w, r, "post_id")
	if !ok {
		return
	}

	content, ok := h.decodeComment(w, r)
	if !ok {
		return
	}

	comment, err := h.CommentService.CreateComment(r.Context(), repository.CreateCommentRequest{
		PostID:   postID,
		AuthorID: userID,
		Content:  content,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, comment, http.StatusCreated)
}

func (h *Handlers) GetComment(w http.ResponseWriter, r *http.Request) {
	if _, ok := requester(w, r); !ok {
		return
	}

	commentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	comment, err := h.CommentService.GetComment(r.Context(), commentID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, comment, http.StatusOK)
}

func (h *Handlers) ReplyToComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	parentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	content, ok := h.decodeComment(w, r)
	if !ok {
		return
	}

	reply, err := h.CommentService.Reply(r.Context(), repository.CreateReplyRequest{
		ParentID: parentID,
		AuthorID: userID,
		Content:  content,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, reply, http.StatusCreated)
}

func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	commentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	content, ok := h.decodeComment(w, r)
	if !ok {
		return
	}

	comment, err := h.CommentService.UpdateComment(r.Context(), repository.UpdateCommentRequest{
		CommentID:   commentID,
		RequesterID: userID,
		Content:     content,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, comment, http.StatusOK)
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	commentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.CommentService.DeleteComment(r.Context(), commentID, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, nil, http.StatusNoContent)
}
