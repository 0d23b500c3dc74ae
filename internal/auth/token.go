package auth

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/fansite/forum/internal/forum"
)

// Claims are the bearer token claims understood by the forum
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// TokenResolver reads the actor from an HS256 bearer token
type TokenResolver struct {
	secret []byte
}

// NewTokenResolver creates a bearer token resolver
func NewTokenResolver(secret string) *TokenResolver {
	return &TokenResolver{secret: []byte(secret)}
}

// Resolve implements Resolver. Requests without a bearer token are anonymous.
func (r *TokenResolver) Resolve(c *gin.Context) (*forum.Actor, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, nil
	}
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(tokenString) == "" {
		return nil, nil
	}

	claims, err := r.Verify(strings.TrimSpace(tokenString))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return &forum.Actor{UserID: claims.Subject, Role: normalizeRole(claims.Role)}, nil
}

// Verify checks the signature and expiry of a token and returns its claims
func (r *TokenResolver) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token verification failed: invalid claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token verification failed: missing subject")
	}
	return claims, nil
}
