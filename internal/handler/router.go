package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitdocsync/internal/pkg/logutil"
)

type RouterDeps struct {
	Push     *PushHandler
	Show     *ShowHandler
	Pull     *PullHandler
	TranxNum string
}

type routeKey struct {
	method string
	route  string
}

// RegisterRoutes wires the single action-code endpoint. Dispatch is a
// direct lookup on (HTTP method, route query parameter); an unknown pair
// or a wrong transaction number is logged and answered with an empty
// body, matching the host platform's silent not-found behavior.
func RegisterRoutes(api gin.IRoutes, deps RouterDeps) {
	table := map[routeKey]gin.HandlerFunc{
		{http.MethodPost, "push"}: deps.Push.Handle,
		{http.MethodGet, "show"}:  deps.Show.Handle,
		{http.MethodPost, "pull"}: deps.Pull.Handle,
	}
	dispatch := func(c *gin.Context) {
		logger := logutil.From(c.Request.Context())
		if tranx := c.Query("tranxNum"); tranx != deps.TranxNum {
			logger.Warn("unknown transaction number", zap.String("tranxNum", tranx))
			c.Status(http.StatusOK)
			return
		}
		route := c.Query("route")
		h, ok := table[routeKey{c.Request.Method, route}]
		if !ok {
			logger.Warn("route not found",
				zap.String("method", c.Request.Method),
				zap.String("route", route),
			)
			c.Status(http.StatusOK)
			return
		}
		h(c)
	}
	api.POST("/actioncode", dispatch)
	api.GET("/actioncode", dispatch)
}
