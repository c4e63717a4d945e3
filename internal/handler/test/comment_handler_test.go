package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"devconnect/internal/models"
	"devconnect/internal/repository"
	"devconnect/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const replyID = "55555555-5555-5555-5555-555555555555"

func sampleComment(id string, parent *string, replies ...models.CommentView) *models.CommentView {
	if replies == nil {
		replies = []models.CommentView{}
	}
	return &models.CommentView{
		ID:            id,
		Author:        models.AuthorView{ID: aliceID, Username: "alice"},
		Content:       "nice",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
		ParentComment: parent,
		Replies:       replies,
	}
}

func TestGetCommentsHandler(t *testing.T) {
	env := newTestEnv()
	reply := sampleComment(replyID, strPtr(commentID))
	env.Comments.On("ListComments", anyCtx, postID).
		Return([]models.CommentView{*sampleComment(commentID, nil, *reply)}, nil)

	rr := env.serve(httptest.NewRequest(http.MethodGet, "/api/posts/"+postID+"/comments", nil), aliceID)

	assert.Equal(t, http.StatusOK, rr.Code)
	var comments []models.CommentView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Nil(t, comments[0].ParentComment)
	require.Len(t, comments[0].Replies, 1)
	assert.Equal(t, replyID, comments[0].Replies[0].ID)
	assert.Equal(t, commentID, *comments[0].Replies[0].ParentComment)
	env.assertExpectations(t)
}

func TestGetCommentsHandler_MissingPost(t *testing.T) {
	env := newTestEnv()
	env.Comments.On("ListComments", anyCtx, postID).Return(nil, repository.ErrNotFound)

	rr := env.serve(httptest.NewRequest(http.MethodGet, "/api/posts/"+postID+"/comments", nil), aliceID)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateCommentHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		shouldCallMock bool
		serviceErr     error
		expectedStatus int
	}{
		{
			name:           "payload post, author and parent are ignored",
			body:           `{"content":"  first!  ","post":"` + commentID + `","author":"` + bobID + `","parent_comment":"` + replyID + `"}`,
			shouldCallMock: true,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "blank content",
			body:           `{"content":"   "}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing content",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing post",
			body:           `{"content":"first!"}`,
			shouldCallMock: true,
			serviceErr:     repository.ErrNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			if tt.shouldCallMock {
				call := env.Comments.On("CreateComment", anyCtx, repository.CreateCommentRequest{
					PostID:   postID,
					AuthorID: aliceID,
					Content:  "first!",
				})
				if tt.serviceErr != nil {
					call.Return(nil, tt.serviceErr)
				} else {
					call.Return(sampleComment(commentID, nil), nil)
				}
			}

			req := jsonRequest(http.MethodPost, "/api/posts/"+postID+"/comments", strings.NewReader(tt.body))
			rr := env.serve(req, aliceID)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if !tt.shouldCallMock {
				env.Comments.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything)
			}
			env.assertExpectations(t)
		})
	}
}

func TestCreateCommentHandler_ValidationMessage(t *testing.T) {
	env := newTestEnv()

	rr := env.serve(jsonRequest(http.MethodPost, "/api/posts/"+postID+"/comments", strings.NewReader(`{}`)), aliceID)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"errors":{"content":"This field is required."}}`, rr.Body.String())
}

func TestReplyHandler(t *testing.T) {
	env := newTestEnv()
	env.Comments.On("Reply", anyCtx, repository.CreateReplyRequest{
		ParentID: commentID,
		AuthorID: bobID,
		Content:  "agreed",
	}).Return(sampleComment(replyID, strPtr(commentID)), nil)

	body := `{"content":"agreed","post":"` + replyID + `","parent_comment":"` + replyID + `","author":"` + aliceID + `"}`
	rr := env.serve(jsonRequest(http.MethodPost, "/api/comments/"+commentID+"/reply", strings.NewReader(body)), bobID)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var reply models.CommentView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reply))
	assert.Equal(t, commentID, *reply.ParentComment)
	env.assertExpectations(t)
}

func TestReplyHandler_MissingParent(t *testing.T) {
	env := newTestEnv()
	env.Comments.On("Reply", anyCtx, mock.Anything).Return(nil, repository.ErrNotFound)

	rr := env.serve(jsonRequest(http.MethodPost, "/api/comments/"+commentID+"/reply", strings.NewReader(`{"content":"agreed"}`)), bobID)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetCommentHandler(t *testing.T) {
	env := newTestEnv()
	env.Comments.On("GetComment", anyCtx, commentID).Return(sampleComment(commentID, nil), nil)

	rr := env.serve(httptest.NewRequest(http.MethodGet, "/api/comments/"+commentID, nil), aliceID)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.serve(httptest.NewRequest(http.MethodGet, "/api/comments/123", nil), aliceID)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	env.assertExpectations(t)
}

func TestUpdateCommentHandler(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{"author edits", nil, http.StatusOK},
		{"other user", service.ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			call := env.Comments.On("UpdateComment", anyCtx, repository.UpdateCommentRequest{
				CommentID:   commentID,
				RequesterID: aliceID,
				Content:     "edited",
			})
			if tt.serviceErr != nil {
				call.Return(nil, tt.serviceErr)
			} else {
				call.Return(sampleComment(commentID, nil), nil)
			}

			rr := env.serve(jsonRequest(http.MethodPatch, "/api/comments/"+commentID, strings.NewReader(`{"content":"edited"}`)), aliceID)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			env.assertExpectations(t)
		})
	}
}

func TestDeleteCommentHandler(t *testing.T) {
	env := newTestEnv()
	env.Comments.On("DeleteComment", anyCtx, commentID, aliceID).Return(nil)

	rr := env.serve(httptest.NewRequest(http.MethodDelete, "/api/comments/"+commentID, nil), aliceID)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	env.assertExpectations(t)
}
