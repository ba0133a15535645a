package middleware

import (
	"context"
	"net/http"
	"strings"

	"DoctorPortal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdentityKey is the gin context key holding the verified email.
const IdentityKey = "email"

// Verifier validates a token and returns the identity it was issued for.
type Verifier interface {
	Verify(token string) (string, error)
}

// UserLookup finds the stored user for an identity; nil when absent.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// Result is the outcome of an authorization check. OK is set only when the
// request may proceed; otherwise Status and Reason describe the rejection.
type Result struct {
	OK       bool
	Identity string
	Status   int
	Reason   string
	// Err is the lookup failure behind a 500, if any.
	Err error
}

func allow(identity string) Result {
	return Result{OK: true, Identity: identity, Status: http.StatusOK}
}

func deny(status int, reason string) Result {
	return Result{Status: status, Reason: reason}
}

// Authenticate checks an Authorization header value of the form
// "Bearer <token>".
func Authenticate(v Verifier, header string) Result {
	scheme, tok, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return deny(http.StatusUnauthorized, "User not found")
	}
	email, err := v.Verify(strings.TrimSpace(tok))
	if err != nil {
		return deny(http.StatusForbidden, "Forbidden access")
	}
	return allow(email)
}

// AuthorizeAdmin requires the stored user for identity to have the admin role.
func AuthorizeAdmin(ctx context.Context, users UserLookup, identity string) Result {
	if identity == "" {
		return deny(http.StatusUnauthorized, "User not found")
	}
	u, err := users.FindByEmail(ctx, identity)
	if err != nil {
		r := deny(http.StatusInternalServerError, "Unable to verify role")
		r.Err = err
		return r
	}
	if !u.IsAdmin() {
		return deny(http.StatusForbidden, "Forbidden access")
	}
	return allow(identity)
}

func abort(c *gin.Context, r Result) {
	c.AbortWithStatusJSON(r.Status, gin.H{"message": r.Reason})
}

// RequireAuthenticated stops the chain unless the bearer token verifies.
func RequireAuthenticated(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := Authenticate(v, c.GetHeader("Authorization"))
		if !r.OK {
			abort(c, r)
			return
		}
		c.Set(IdentityKey, r.Identity)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuthenticated.
func RequireAdmin(users UserLookup, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		identity := Identity(c)
		r := AuthorizeAdmin(c.Request.Context(), users, identity)
		if !r.OK {
			if r.Status == http.StatusInternalServerError {
				log.Error("admin role lookup failed", zap.String("email", identity), zap.Error(r.Err))
			}
			abort(c, r)
			return
		}
		c.Next()
	}
}

// Identity returns the verified email stored by RequireAuthenticated.
func Identity(c *gin.Context) string {
	return c.GetString(IdentityKey)
}
