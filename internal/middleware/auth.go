package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pliu/courier/internal/auth"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// SessionCookie is the signed cookie carrying the authenticated user id.
const SessionCookie = "courier_session"

// Auth resolves the session cookie to a user id and places it in the
// request context. Requests without a valid signed cookie get 401; the core
// below this point always sees an authenticated actor.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		userIDStr, err := auth.VerifyCookie(cookie.Value)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		userID, err := strconv.Atoi(userIDStr)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID extracts the authenticated user id set by Auth.
func UserID(r *http.Request) int {
	id, _ := r.Context().Value(UserIDKey).(int)
	return id
}
