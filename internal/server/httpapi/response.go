package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func fail(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, Response{Code: httpStatus, Message: message})
}

var httpStatuses = []struct {
	err    error
	status int
}{
	{common.ErrorNotFound, http.StatusNotFound},
	{common.ErrorAlreadyExists, http.StatusConflict},
	{common.ErrorPermissionDenied, http.StatusForbidden},
	{common.ErrorInvalidArgument, http.StatusBadRequest},
	{common.ErrorUnauthorized, http.StatusUnauthorized},
	{common.ErrInvalidToken, http.StatusUnauthorized},
	{common.ErrTokenExpired, http.StatusUnauthorized},
	{common.ErrorUnavailable, http.StatusServiceUnavailable},
}

// statusOf maps a service error to an HTTP status and a client-safe message.
func statusOf(err error) (int, string) {
	for _, m := range httpStatuses {
		if errors.Is(err, m.err) {
			return m.status, m.err.Error()
		}
	}
	return http.StatusInternalServerError, common.ErrorInternal.Error()
}
