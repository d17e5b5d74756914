package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitdocsync/internal/config"
	"gitdocsync/internal/pkg/errcode"
	"gitdocsync/internal/pkg/password"
	"gitdocsync/internal/pkg/response"
)

const ContextUserKey = "user"

// BasicAuth verifies credentials against the configured bcrypt user list
// and records the username for checked_in_by attribution.
func BasicAuth(users []config.AuthUser) gin.HandlerFunc {
	hashes := make(map[string]string, len(users))
	for _, u := range users {
		hashes[u.Username] = u.PasswordHash
	}
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			unauthorized(c)
			return
		}
		hash, found := hashes[user]
		if !found || password.Compare(hash, pass) != nil {
			unauthorized(c)
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="gitdocsync"`)
	response.Error(c, http.StatusUnauthorized, errcode.Unauthorized, "invalid credentials")
	c.Abort()
}
