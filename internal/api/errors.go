package api

import (
	"errors"
	"net/http"
	"time"

	"newsroom/internal/apperr"
	"newsroom/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// genericErrorMessage replaces unexpected error text in production.
const genericErrorMessage = "Something went wrong!"

// Envelope 统一的 API 响应结构
type Envelope struct {
	Success    bool         `json:"success"`
	Data       any          `json:"data,omitempty"`
	Message    string       `json:"message,omitempty"`
	Code       string       `json:"code,omitempty"`
	Errors     any          `json:"errors,omitempty"`
	Pagination *entity.Meta `json:"pagination,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
	TraceID    string       `json:"traceId,omitempty"`
}

// Respond 返回成功响应
func Respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
		TraceID:   GetRequestID(c),
	})
}

// RespondPage 返回带分页的成功响应
func RespondPage(c *gin.Context, data any, meta *entity.Meta) {
	c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Data:       data,
		Pagination: meta,
		Timestamp:  time.Now().UTC(),
		TraceID:    GetRequestID(c),
	})
}

// WriteError is the single error boundary. Expected errors keep their code
// and message; anything else becomes a 500 whose text is hidden in
// production. 5xx are logged at error level, 4xx at warn.
func WriteError(c *gin.Context, err error, production bool) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal(err.Error(), err)
	}
	status := appErr.Status()

	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"code":     appErr.Code,
		"status":   status,
		"method":   c.Request.Method,
		"path":     c.Request.URL.Path,
		"trace_id": GetRequestID(c),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}

	message := appErr.Message
	if status >= http.StatusInternalServerError && production {
		message = genericErrorMessage
	}
	c.AbortWithStatusJSON(status, Envelope{
		Success:   false,
		Message:   message,
		Code:      appErr.Code,
		Errors:    appErr.Details,
		Timestamp: time.Now().UTC(),
		TraceID:   GetRequestID(c),
	})
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context) {
	WriteError(c, apperr.Validation("Invalid request payload", apperr.CodeBadPayload), false)
}

// fail writes err using the handler's environment.
func (h *HTTPHandler) fail(c *gin.Context, err error) {
	WriteError(c, err, h.cfg.IsProduction())
}

// NotFoundHandler answers unmatched routes.
func NotFoundHandler(c *gin.Context) {
	WriteError(c, apperr.NotFound("Route "+c.Request.URL.Path+" not found", apperr.CodeNotFound), false)
}

var errPanic = errors.New("panic recovered")
