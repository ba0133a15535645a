package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DoctorPortal/models"
	"DoctorPortal/store"
	"DoctorPortal/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingUsers struct{}

func (failingUsers) FindByEmail(context.Context, string) (models.User, error) {
	return nil, errors.New("db down")
}

func TestAuthenticate(t *testing.T) {
	tokens := token.New("secret", time.Hour)
	good, err := tokens.Issue("a@x.com")
	require.NoError(t, err)
	expired, err := token.New("secret", time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Issue("a@x.com")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		ok     bool
	}{
		{"missing", "", http.StatusUnauthorized, false},
		{"no scheme", good, http.StatusUnauthorized, false},
		{"wrong scheme", "Basic " + good, http.StatusUnauthorized, false},
		{"empty token", "Bearer ", http.StatusUnauthorized, false},
		{"garbage", "Bearer abc.def.ghi", http.StatusForbidden, false},
		{"expired", "Bearer " + expired, http.StatusForbidden, false},
		{"valid", "Bearer " + good, http.StatusOK, true},
		{"lowercase scheme", "bearer " + good, http.StatusOK, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Authenticate(tokens, tc.header)
			assert.Equal(t, tc.ok, r.OK)
			assert.Equal(t, tc.status, r.Status)
			if tc.ok {
				assert.Equal(t, "a@x.com", r.Identity)
			}
		})
	}
}

func TestAuthorizeAdmin(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	_, err := s.Users.Upsert(ctx, "user@x.com", map[string]interface{}{"name": "U"})
	require.NoError(t, err)
	_, err = s.Users.Upsert(ctx, "doc@x.com", map[string]interface{}{"role": "doctor"})
	require.NoError(t, err)
	_, err = s.Users.SetRole(ctx, "admin@x.com", "admin")
	require.NoError(t, err)

	assert.True(t, AuthorizeAdmin(ctx, s.Users, "admin@x.com").OK)
	assert.Equal(t, http.StatusForbidden, AuthorizeAdmin(ctx, s.Users, "user@x.com").Status)
	assert.Equal(t, http.StatusForbidden, AuthorizeAdmin(ctx, s.Users, "doc@x.com").Status)
	assert.Equal(t, http.StatusForbidden, AuthorizeAdmin(ctx, s.Users, "ghost@x.com").Status)
	assert.Equal(t, http.StatusUnauthorized, AuthorizeAdmin(ctx, s.Users, "").Status)

	failed := AuthorizeAdmin(ctx, failingUsers{}, "admin@x.com")
	assert.Equal(t, http.StatusInternalServerError, failed.Status)
	assert.EqualError(t, failed.Err, "db down")
}

func TestRequireAdmin_LogsLookupError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		c.Set(IdentityKey, "admin@x.com")
		c.Next()
	}, RequireAdmin(failingUsers{}, zap.New(core)), func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.FilterMessage("admin role lookup failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "db down", entries[0].ContextMap()["error"])
}

func TestMiddlewareChainStopsOnFailure(t *testing.T) {
	ctx := context.Background()
	tokens := token.New("secret", time.Hour)
	s := store.NewMemory()
	_, err := s.Users.SetRole(ctx, "admin@x.com", "admin")
	require.NoError(t, err)

	reached := 0
	r := gin.New()
	r.GET("/admin-only", RequireAuthenticated(tokens), RequireAdmin(s.Users, nil), func(c *gin.Context) {
		reached++
		c.String(http.StatusOK, Identity(c))
	})

	do := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"User not found"}`, w.Body.String())

	w = do("Bearer nope")
	assert.Equal(t, http.StatusForbidden, w.Code)

	userTok, err := tokens.Issue("user@x.com")
	require.NoError(t, err)
	w = do("Bearer " + userTok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 0, reached)

	adminTok, err := tokens.Issue("admin@x.com")
	require.NoError(t, err)
	w = do("Bearer " + adminTok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin@x.com", w.Body.String())
	assert.Equal(t, 1, reached)
}

func TestRequireAdminWithoutIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireAdmin(store.NewMemory().Users, nil), func(c *gin.Context) {
		t.Fatal("handler must not run")
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
