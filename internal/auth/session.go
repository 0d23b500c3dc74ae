package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/fansite/forum/internal/forum"
	"github.com/fansite/forum/pkg/config"
)

// Session keys written by the site's login flow
const (
	SessionUserKey = "user_id"
	SessionRoleKey = "role"
)

// SessionMiddleware installs the cookie session store shared with the main site
func SessionMiddleware(cfg *config.SessionConfig) gin.HandlerFunc {
	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(cfg.Name, store)
}

// SessionResolver reads the actor from the cookie session.
// SessionMiddleware must run first.
type SessionResolver struct{}

// Resolve implements Resolver
func (SessionResolver) Resolve(c *gin.Context) (*forum.Actor, error) {
	session := sessions.Default(c)

	raw := session.Get(SessionUserKey)
	if raw == nil {
		return nil, nil
	}
	userID := fmt.Sprint(raw)
	if userID == "" {
		return nil, nil
	}

	role, _ := session.Get(SessionRoleKey).(string)
	return &forum.Actor{UserID: userID, Role: normalizeRole(role)}, nil
}
