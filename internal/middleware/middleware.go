package middleware

import (
	"net/http"
	"strings"

	handlers "devconnect/internal/handler"
	"devconnect/internal/service"

	log "github.com/sirupsen/logrus"
)

type Middleware func(http.Handler) http.Handler

var publicPaths = map[string]bool{
	"/health":             true,
	"/tables":             true,
	"/api/users/register": true,
	"/api/token":          true,
	"/api/token/refresh":  true,
}

// AuthMiddleware verifies the bearer token and stores the requester in the context.
func AuthMiddleware(authService service.AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				handlers.WriteError(w, "Authentication credentials were not provided.", http.StatusUnauthorized)
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				handlers.WriteError(w, "Authorization header must be 'Bearer <token>'", http.StatusUnauthorized)
				return
			}

			user, err := authService.GetUserFromToken(parts[1])
			if err != nil {
				log.Debugf("[AuthMiddleware] rejected token from %s: %v", clientIP(r), err)
				handlers.WriteError(w, "Given token not valid for any token type", http.StatusUnauthorized)
				return
			}

			ctx := handlers.WithUser(r.Context(), user.UserID, user.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// TrimSlashMiddleware makes "/api/posts/" and "/api/posts" the same route.
func TrimSlashMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) > 1 && strings.HasSuffix(r.URL.Path, "/") {
			r.URL.Path = strings.TrimRight(r.URL.Path, "/")
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Chain wraps h so that the last middleware runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}

func clientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}

	return ip
}
