package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/vbonduro/wardrobe/internal/domain"
)

const (
	userHeader = "X-User-ID"
	userCookie = "wardrobe_uid"
	cookieAge  = 365 * 24 * 60 * 60
)

type userKey struct{}

// identifyUser resolves the caller's id from the X-User-ID header or the
// wardrobe_uid cookie. Browsers without a valid cookie are issued a new one.
// A header value is passed through as is and validated by the service.
func identifyUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(userHeader)
		if id == "" {
			if c, err := r.Cookie(userCookie); err == nil && domain.ValidateUserID(c.Value) == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     userCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   cookieAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, id)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userKey{}).(string)
	return id
}
