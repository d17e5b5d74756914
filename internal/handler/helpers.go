package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitdocsync/internal/middleware"
	"gitdocsync/internal/pkg/errcode"
	appErr "gitdocsync/internal/pkg/errors"
	"gitdocsync/internal/pkg/response"
)

func getUser(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserKey)
	user, _ := value.(string)
	return user
}

func handleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case appErr.IsNotFound(err):
		response.Error(c, http.StatusNotFound, errcode.NotFound, "not found")
	case appErr.IsConflict(err):
		response.Error(c, http.StatusConflict, errcode.Conflict, "conflict")
	case err == appErr.ErrInvalid:
		response.Error(c, http.StatusBadRequest, errcode.Invalid, "invalid request")
	default:
		response.Error(c, http.StatusInternalServerError, errcode.Internal, "internal error")
	}
}
