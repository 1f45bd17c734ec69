package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/segyhp/library-engine/internal/domain"
	customError "github.com/segyhp/library-engine/pkg/errors"
	"github.com/segyhp/library-engine/pkg/response"
)

// Headers set by the identity provider in front of the API
const (
	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
)

type authKey struct{}

// IdentityMiddleware turns the identity headers into a domain.AuthContext.
// Requests without them continue anonymously and are rejected by any
// operation that needs a caller; malformed headers are rejected here.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawID, rawRole := r.Header.Get(UserIDHeader), r.Header.Get(UserRoleHeader)
		if rawID == "" && rawRole == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := strconv.ParseInt(rawID, 10, 64)
		role, ok := domain.ParseRole(rawRole)
		if err != nil || id <= 0 || !ok {
			response.FromError(w, r, customError.WrapUnauthenticated())
			return
		}

		auth := domain.AuthContext{UserID: id, Role: role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authKey{}, auth)))
	})
}

// AuthFrom returns the caller identity, or the anonymous zero value
func AuthFrom(ctx context.Context) domain.AuthContext {
	auth, _ := ctx.Value(authKey{}).(domain.AuthContext)
	return auth
}
