package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/forum-backend/internal/domain/aggregates"
	"github.com/yungbote/forum-backend/internal/platform/apierr"
	"github.com/yungbote/forum-backend/internal/platform/ctxutil"
	"github.com/yungbote/forum-backend/internal/platform/logger"
)

const (
	MsgInternal       = "Internal server error"
	MsgRelationExists = "Relation already exists"
	MsgTimedOut       = "Request timed out"
)

type ErrorBody struct {
	Error string `json:"error"`
}

func RespondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: message})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// StatusOf maps err to the HTTP status and the client-facing message. Only
// validation and not_found messages are passed through; everything else gets
// a fixed message.
func StatusOf(err error) (int, string) {
	if ae, ok := apierr.As(err); ok {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		msg := ae.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return status, msg
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return http.StatusBadRequest, domainagg.MessageOf(err)
	case domainagg.CodeNotFound:
		return http.StatusNotFound, domainagg.MessageOf(err)
	case domainagg.CodeConflict:
		return http.StatusBadRequest, MsgRelationExists
	case domainagg.CodeTimeout:
		return http.StatusGatewayTimeout, MsgTimedOut
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// RespondErr writes err as an error body. Server-side failures are logged
// with their cause; the cause never reaches the client.
func RespondErr(c *gin.Context, log *logger.Logger, err error) {
	status, msg := StatusOf(err)
	if log != nil {
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"error", err,
		}
		fields = append(fields, ctxutil.LogFields(c.Request.Context())...)
		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		default:
			log.Debug("request rejected", fields...)
		}
	}
	RespondError(c, status, msg)
}
