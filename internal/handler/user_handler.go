package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	users, err := h.UserService.ListUsers(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, users, http.StatusOK)
}

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.GetMe(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, user, http.StatusOK)
}

func (h *Handlers) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.GetProfile(r.Context(), mux.Vars(r)["username"], userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, user, http.StatusOK)
}

func (h *Handlers) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	targetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.UserService.ToggleFollow(r.Context(), userID, targetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, result, http.StatusOK)
}

// UpdateProfilePicture expects multipart/form-data with a "profile_picture" file.
func (h *Handlers) UpdateProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}

	if !isMultipart(r) {
		WriteError(w, "Content-Type must be multipart/form-data", http.StatusUnsupportedMediaType)
		return
	}

	if errs := h.parseMultipart(w, r, "profile_picture"); errs != nil {
		WriteValidationErrors(w, errs)
		return
	}

	upload, closeFile, errs := h.formImage(r, "profile_picture")
	if errs != nil {
		WriteValidationErrors(w, errs)
		return
	}
	defer closeFile()

	if upload == nil {
		WriteValidationErrors(w, map[string]string{"profile_picture": "No file was submitted."})
		return
	}

	user, err := h.UserService.UpdateProfilePicture(r.Context(), userID, upload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, user, http.StatusOK)
}
