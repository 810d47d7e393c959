package session

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"music-platform/internal/apperr"
)

// Middleware resolves a bearer token into the request principal. Requests
// without a token pass through as anonymous; a bad token is rejected.
func (i *Issuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			next.ServeHTTP(w, r)
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(w, "invalid Authorization header")
			return
		}
		userID, err := i.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}
		ctx := WithPrincipal(r.Context(), userID)
		if i.accounts != nil {
			acct, found, err := i.accounts(r.Context(), userID)
			switch {
			case err != nil:
				i.log.Error("account lookup failed", zap.String("user_id", userID), zap.Error(err))
				reject(w, apperr.KindUnexpected, "internal error")
				return
			case !found:
				unauthorized(w, "invalid token")
				return
			case !acct.Active:
				reject(w, apperr.KindInactiveAccount, "account is inactive")
				return
			}
			ctx = withAccount(ctx, acct)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Principal(r.Context()) == "" {
			unauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	reject(w, apperr.KindInvalidCredentials, msg)
}

func reject(w http.ResponseWriter, kind apperr.Kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(kind))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    false,
		"message":    msg,
		"error_kind": kind,
	})
}
