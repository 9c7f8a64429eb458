package middleware

import (
	"cafe-server/utils/errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader carries the plain admin key.
const AdminKeyHeader = "X-Admin-Key"

// AdminKeyMiddleware lets a request through only when its admin key matches
// keyHash (bcrypt). An empty keyHash disables the protected routes entirely.
func AdminKeyMiddleware(keyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				WriteError(w, errors.ErrForbidden.WithDetails("admin endpoints are disabled"))
				return
			}
			key := r.Header.Get(AdminKeyHeader)
			if key == "" {
				WriteError(w, errors.ErrUnauthorized)
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
				WriteError(w, errors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
