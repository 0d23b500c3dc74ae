package auth

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/fansite/forum/internal/forum"
)

// ErrInvalidCredentials indicates credentials were presented but could not be verified
var ErrInvalidCredentials = errors.New("invalid credentials")

// Resolver turns an inbound request into the acting user.
// A nil actor with a nil error means the request is anonymous.
type Resolver interface {
	Resolve(c *gin.Context) (*forum.Actor, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(c *gin.Context) (*forum.Actor, error)

// Resolve calls f
func (f ResolverFunc) Resolve(c *gin.Context) (*forum.Actor, error) {
	return f(c)
}

// Chain tries each resolver in order and returns the first actor found.
// An error from any resolver stops the chain.
func Chain(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(c *gin.Context) (*forum.Actor, error) {
		for _, r := range resolvers {
			actor, err := r.Resolve(c)
			if err != nil {
				return nil, err
			}
			if actor != nil {
				return actor, nil
			}
		}
		return nil, nil
	})
}

func normalizeRole(role string) string {
	if role == forum.RoleAdmin {
		return forum.RoleAdmin
	}
	return forum.RoleUser
}
