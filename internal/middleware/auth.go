package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	ContextAuthUserID     = "authUserID"
	ContextProfessionalID = "professionalID"
)

// ProfessionalLookup maps the token subject to a professional id. ok is false
// when the user has not created a profile yet.
type ProfessionalLookup func(ctx context.Context, authUserID string) (id uint, ok bool, err error)

// AuthMiddleware verifies HS256 tokens issued by the auth provider. The "sub"
// claim is the auth user id.
func AuthMiddleware(secret string, lookup ProfessionalLookup, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || strings.TrimSpace(sub) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_payload"})
			return
		}
		c.Set(ContextAuthUserID, sub)

		id, ok, err := lookup(c.Request.Context(), sub)
		if err != nil {
			log.Error("auth: professional lookup failed", zap.String("sub", sub), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth_lookup_failed"})
			return
		}
		if ok {
			c.Set(ContextProfessionalID, id)
		}

		c.Next()
	}
}

// RequireProfessional rejects authenticated users without a profile.
func RequireProfessional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextProfessionalID); !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "profile_required"})
			return
		}
		c.Next()
	}
}

// ProfessionalID reads the id set by AuthMiddleware.
func ProfessionalID(c *gin.Context) uint {
	v, _ := c.Get(ContextProfessionalID)
	id, _ := v.(uint)
	return id
}

func AuthUserID(c *gin.Context) string {
	return c.GetString(ContextAuthUserID)
}
