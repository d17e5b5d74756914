package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON writes data as a plain JSON body. The action-code protocol has no
// envelope: push/show/pull bodies are bare maps keyed by document id.
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorBody{Code: code, Message: message})
}
