package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"devconnect/internal/repository"
	"devconnect/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	WriteSuccess(w, ErrorResponse{Error: message}, statusCode)
}

func WriteSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Errorf("[handler] failed to encode response: %v", err)
	}
}

func WriteValidationErrors(w http.ResponseWriter, errs map[string]string) {
	WriteSuccess(w, ValidationErrorResponse{Errors: errs}, http.StatusBadRequest)
}

// fieldErrors converts validator errors to a json field -> message map.
func fieldErrors(err error) map[string]string {
	errs := map[string]string{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["non_field_errors"] = "Invalid data."
		return errs
	}

	for _, fe := range verrs {
		errs[fe.Field()] = fieldMessage(fe)
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes
// the 400 response itself and reports whether the handler may continue.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}

	if err := h.Validate.Struct(dst); err != nil {
		WriteValidationErrors(w, fieldErrors(err))
		return false
	}

	return true
}

// writeServiceError maps service and repository errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		WriteError(w, "Not found.", http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, "You do not have permission to perform this action.", http.StatusForbidden)
	case errors.Is(err, service.ErrSelfFollow):
		WriteError(w, "You cannot follow yourself.", http.StatusBadRequest)
	case errors.Is(err, service.ErrEmptyPost):
		WriteValidationErrors(w, map[string]string{"content": "Provide content or an image."})
	case errors.Is(err, repository.ErrAlreadyExists):
		WriteValidationErrors(w, map[string]string{"username": "A user with that username already exists."})
	case errors.Is(err, repository.ErrInvalidCredentials):
		WriteError(w, "No active account found with the given credentials", http.StatusUnauthorized)
	default:
		log.WithField("user", UsernameFromContext(r.Context())).
			Errorf("[handler] %s %s: %v", r.Method, r.URL.Path, err)
		WriteError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// requester returns the authenticated user id, writing 401 when absent.
func requester(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, "Authentication credentials were not provided.", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// pathID returns the uuid path variable name, writing 404 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		WriteError(w, "Not found.", http.StatusNotFound)
		return "", false
	}
	return id.String(), true
}
