package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes registers every endpoint. Paths are matched without a trailing
// slash; the middleware chain strips it before routing.
func (h *Handlers) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/tables", h.TablesHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/users/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/token", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/token/refresh", h.RefreshToken).Methods(http.MethodPost)

	api.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/me", h.GetCurrentUser).Methods(http.MethodGet)
	api.HandleFunc("/users/me/profile-picture", h.UpdateProfilePicture).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}/follow", h.ToggleFollow).Methods(http.MethodPost)
	api.HandleFunc("/users/{username}", h.GetUserProfile).Methods(http.MethodGet)

	api.HandleFunc("/posts", h.GetPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts", h.CreatePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", h.GetPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", h.UpdatePost).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/posts/{id}", h.DeletePost).Methods(http.MethodDelete)
	api.HandleFunc("/posts/{id}/like", h.LikePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{post_id}/comments", h.GetComments).Methods(http.MethodGet)
	api.HandleFunc("/posts/{post_id}/comments", h.CreateComment).Methods(http.MethodPost)

	api.HandleFunc("/comments/{id}", h.GetComment).Methods(http.MethodGet)
	api.HandleFunc("/comments/{id}", h.UpdateComment).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/comments/{id}", h.DeleteComment).Methods(http.MethodDelete)
	api.HandleFunc("/comments/{id}/reply", h.ReplyToComment).Methods(http.MethodPost)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "Not found.", http.StatusNotFound)
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// a subrouter does not inherit these from its parent
	for _, router := range []*mux.Router{r, api} {
		router.NotFoundHandler = notFound
		router.MethodNotAllowedHandler = methodNotAllowed
	}

	return r
}
