package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskpilot/backend/api/transport"
	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, errorType := mapError(err)
	h.respondJSON(ctx, status, transport.ErrorResponse{
		Error:     userMessage(err),
		ErrorType: errorType,
	})
}

// userMessage strips wrapped causes from the response body. Upstream
// failures carry the raw provider error inside the domain error, and
// that detail belongs in the logs, not in the JSON the caller sees.
func userMessage(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	return "an unexpected error occurred"
}

// mapError translates domain error codes into HTTP status codes and the
// error_type labels the UI keys on.
func mapError(err error) (int, string) {
	switch domain.CodeOf(err) {
	case domain.ErrCodeInvalidInput, domain.ErrCodeInvalidField:
		return http.StatusBadRequest, "input_error"
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, "not_found"
	case domain.ErrCodeUpstream, domain.ErrCodeRoundLimit:
		return http.StatusBadGateway, "api_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
