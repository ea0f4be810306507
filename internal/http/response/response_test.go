package response

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/forum-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/forum-backend/internal/domain/aggregates"
	"github.com/yungbote/forum-backend/internal/platform/apierr"
	"github.com/yungbote/forum-backend/internal/platform/ctxutil"
	"github.com/yungbote/forum-backend/internal/platform/logger"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", domainagg.NewError(domainagg.CodeValidation, "op", "Title is required", nil), http.StatusBadRequest, "Title is required"},
		{"parent missing", domainagg.NewError(domainagg.CodeNotFound, "op", "Parent theme not found", nil), http.StatusNotFound, "Parent theme not found"},
		{"conflict", aggregates.MapError("op", errors.New("UNIQUE constraint failed: topic_relation.parent_id")), http.StatusBadRequest, MsgRelationExists},
		{"timeout", aggregates.MapError("op", context.DeadlineExceeded), http.StatusGatewayTimeout, MsgTimedOut},
		{"internal", aggregates.MapError("op", errors.New("connection reset")), http.StatusInternalServerError, MsgInternal},
		{"plain", errors.New("boom"), http.StatusInternalServerError, MsgInternal},
		{"api error", apierr.New(http.StatusBadRequest, "Invalid topic id", errors.New("strconv")), http.StatusBadRequest, "Invalid topic id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := StatusOf(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.msg, msg)
		})
	}
}

func TestRespondErrLogsRequestIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/api/forum/1", nil)
	c.Request = req.WithContext(ctxutil.WithTraceData(req.Context(), &ctxutil.TraceData{TraceID: "t-1", RequestID: "r-1"}))

	RespondErr(c, log, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
}
