package auth

import (
	"context"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

type ctxKey string

const userKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey).(*User)
	return u, ok
}

// RequireAuth verifies the bearer token and re-loads the subject's user row,
// so a token for a user that no longer resolves is rejected.
func RequireAuth(jwtSvc *JWT, db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(h, "Bearer ")

			claims, err := jwtSvc.Verify(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			var u User
			if err := db.Where("email = ?", claims.Email).First(&u).Error; err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, &u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
