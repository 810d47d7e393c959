package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	token, expires, err := iss.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	uid, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestParse_Rejects(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	t.Run("WrongSecret", func(t *testing.T) {
		token, _, err := NewIssuer("other", time.Hour).Issue("user-1")
		require.NoError(t, err)
		_, err = iss.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		old := NewIssuer("secret", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, err := old.Issue("user-1")
		require.NoError(t, err)
		_, err = iss.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("NotAnAccessToken", func(t *testing.T) {
		claims := &TokenClaims{UserID: "user-1", TokenType: "refresh"}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = iss.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := iss.Parse("abc.def.ghi")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestMiddleware(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	var seen string
	h := iss.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Principal(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Anonymous", func(t *testing.T) {
		seen = "unset"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "", seen)
	})

	t.Run("Bearer", func(t *testing.T) {
		token, _, err := iss.Issue("user-7")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-7", seen)
	})

	t.Run("BadToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"invalid token","error_kind":"invalid_credentials"}`, w.Body.String())
	})

	t.Run("BadScheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), "user-1"))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMiddleware_AccountStanding(t *testing.T) {
	accounts := map[string]Account{
		"listener": {Active: true},
		"admin":    {Active: true, Admin: true},
		"gone":     {Active: false},
	}
	iss := NewIssuer("secret", time.Hour).WithAccounts(func(_ context.Context, id string) (Account, bool, error) {
		if id == "broken" {
			return Account{}, false, errors.New("conn refused")
		}
		acct, ok := accounts[id]
		return acct, ok, nil
	}, nil)

	var admin bool
	h := iss.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin = IsAdmin(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	call := func(uid string) *httptest.ResponseRecorder {
		token, _, err := iss.Issue(uid)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	w := call("listener")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, admin)

	w = call("admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, admin)

	// A token issued before deactivation stops working right away.
	w = call("gone")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"account is inactive","error_kind":"inactive_account"}`, w.Body.String())

	w = call("deleted")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call("broken")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	serve := func(ctx context.Context) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil).WithContext(ctx))
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, serve(context.Background()).Code)

	listener := WithPrincipal(context.Background(), "user-1")
	w := serve(withAccount(listener, Account{Active: true}))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"error_kind":"access_denied"`)

	// Without an account lookup nobody is an admin.
	assert.Equal(t, http.StatusForbidden, serve(listener).Code)

	assert.Equal(t, http.StatusNoContent, serve(withAccount(listener, Account{Active: true, Admin: true})).Code)
}
