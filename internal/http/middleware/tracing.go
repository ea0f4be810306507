package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Tracing opens a server span per request. With no tracer provider installed
// the spans are non-recording.
func Tracing(serviceName string) gin.HandlerFunc {
	if serviceName == "" {
		serviceName = "forum-backend"
	}
	return otelgin.Middleware(serviceName)
}
