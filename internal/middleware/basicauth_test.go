package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"gitdocsync/internal/config"
	"gitdocsync/internal/pkg/password"
)

func authEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hash, err := password.Hash("secret")
	require.NoError(t, err)
	engine := gin.New()
	engine.Use(BasicAuth([]config.AuthUser{{Username: "alice", PasswordHash: hash}}))
	engine.GET("/whoami", func(c *gin.Context) {
		user, _ := c.Get(ContextUserKey)
		c.String(http.StatusOK, "%v", user)
	})
	return engine
}

func TestBasicAuth(t *testing.T) {
	engine := authEngine(t)

	tests := []struct {
		name       string
		user, pass string
		withCreds  bool
		wantCode   int
	}{
		{name: "valid credentials", user: "alice", pass: "secret", withCreds: true, wantCode: http.StatusOK},
		{name: "wrong password", user: "alice", pass: "nope", withCreds: true, wantCode: http.StatusUnauthorized},
		{name: "unknown user", user: "bob", pass: "secret", withCreds: true, wantCode: http.StatusUnauthorized},
		{name: "no credentials", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.withCreds {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				require.Equal(t, "alice", w.Body.String())
			} else {
				require.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")
			}
		})
	}
}
