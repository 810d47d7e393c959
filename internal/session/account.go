package session

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"music-platform/internal/apperr"
)

// Account is the current standing of the user a token was issued to.
type Account struct {
	Active bool
	Admin  bool
}

// AccountFunc looks up userID. found is false when the user no longer exists.
type AccountFunc func(ctx context.Context, userID string) (acct Account, found bool, err error)

// WithAccounts makes the middleware check every token against the user's
// current standing, so deactivation and role changes apply to tokens that
// were already issued.
func (i *Issuer) WithAccounts(fn AccountFunc, log *zap.Logger) *Issuer {
	if log == nil {
		log = zap.NewNop()
	}
	i.accounts = fn
	i.log = log
	return i
}

type accountKey struct{}

func withAccount(ctx context.Context, acct Account) context.Context {
	return context.WithValue(ctx, accountKey{}, acct)
}

// IsAdmin reports whether the requester holds the admin role. It is false
// for anonymous callers and when no account lookup is configured.
func IsAdmin(ctx context.Context) bool {
	acct, _ := ctx.Value(accountKey{}).(Account)
	return acct.Active && acct.Admin
}

// RequireAdmin rejects anonymous requests and requesters without the admin
// role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Principal(r.Context()) == "" {
			unauthorized(w, "authentication required")
			return
		}
		if !IsAdmin(r.Context()) {
			reject(w, apperr.KindAccessDenied, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
