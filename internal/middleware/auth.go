package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/auth"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/response"
)

// IdentityKey is the gin context key the authenticated identity is stored under.
const IdentityKey = "identity"

const unauthorizedMessage = "Unauthorized. Please log in."

// TokenVerifier resolves a bearer token to the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	log      logr.Logger
}

func NewAuthMiddleware(verifier TokenVerifier, log logr.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, log: log.WithName("auth")}
}

// Authenticate rejects requests without a valid bearer token. Every failure
// gets the same 401 body; the cause is only logged.
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			am.log.V(1).Info("rejected request", "reason", "missing bearer token", "path", c.Request.URL.Path)
			response.Abort(c, response.KindUnauthenticated, unauthorizedMessage)
			return
		}

		identity, err := am.verifier.Verify(token)
		if err != nil {
			am.log.V(1).Info("rejected request", "reason", err.Error(), "path", c.Request.URL.Path)
			response.Abort(c, response.KindUnauthenticated, unauthorizedMessage)
			return
		}

		c.Set(IdentityKey, identity)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// IdentityFrom returns the identity set by Authenticate, or nil.
func IdentityFrom(c *gin.Context) *auth.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*auth.Identity)
	return id
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
