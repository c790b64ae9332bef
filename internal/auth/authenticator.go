package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jobhive/jobhive/internal/store/model"
)

// HeaderAuthenticator reads the actor from trusted gateway headers. Session
// verification happens upstream, this middleware only materializes the
// actor into the request context.
type HeaderAuthenticator struct{}

const (
	userIDHeader = "X-Jobhive-User"
	roleHeader   = "X-Jobhive-Role"
)

func NewHeaderAuthenticator() *HeaderAuthenticator {
	return &HeaderAuthenticator{}
}

func (a *HeaderAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get(userIDHeader))
		if err != nil {
			http.Error(w, "missing or malformed user header", http.StatusUnauthorized)
			return
		}

		role := r.Header.Get(roleHeader)
		switch role {
		case model.RoleJobSeeker, model.RoleEmployer, model.RoleAdmin:
		default:
			http.Error(w, "unknown role", http.StatusUnauthorized)
			return
		}

		ctx := NewActorContext(r.Context(), Actor{ID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
