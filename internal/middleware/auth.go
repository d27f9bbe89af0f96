package middleware

import (
	"net/http"
	"strings"

	"github.com/bfrpaulondev/fitness-api/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ClaimsKey = "claims"
	userIDKey = "user_id"
)

// JWTClaims are the claims this service reads from access tokens issued by
// the auth service. user_id falls back to the standard "sub" claim.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		raw := claims.UserID
		if raw == "" {
			raw = claims.Subject
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token sin usuario valido"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
// It returns nil on routes not guarded by JWTAuth.
func GetClaims(c *gin.Context) *JWTClaims {
	v, _ := c.Get(ClaimsKey)
	claims, _ := v.(*JWTClaims)
	return claims
}

// UserID returns the authenticated user. ok is false outside JWTAuth.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
