package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/manishrnl/authservice/internal/common"
)

type contextKey string

const contextUsernameKey contextKey = "username"

// UsernameFromContext returns the subject of the verified access token that
// authenticated the request.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(contextUsernameKey).(string)
	return username, ok
}

func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if header == "" {
			writeError(w, common.ErrorUnauthorized)
			return
		}
		if !strings.HasPrefix(header, common.BearerPrefix) {
			writeError(w, common.ErrorUnauthorized)
			return
		}
		username, err := a.accessTokens.Verify(strings.TrimPrefix(header, common.BearerPrefix))
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), contextUsernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
