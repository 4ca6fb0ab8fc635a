package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskpilot/backend/api/transport"
	"github.com/taskpilot/backend/pkg/httpcontext"
	agentUC "github.com/taskpilot/backend/usecase/agent"
	taskUC "github.com/taskpilot/backend/usecase/task"
)

type CommandHandler struct {
	baseHandler
	agent *agentUC.UseCase
	tasks *taskUC.UseCase
}

func NewCommandHandler(agent *agentUC.UseCase, tasks *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{
		baseHandler: newBaseHandler(adapter, logger),
		agent:       agent,
		tasks:       tasks,
	}
}

// Execute processes one natural-language command.
// POST /api/command
func (h *CommandHandler) Execute(ctx *fasthttp.RequestCtx) {
	var req transport.CommandRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.ErrorResponse{
			Error:     "invalid request: please send a JSON body with a 'message' field",
			ErrorType: "input_error",
		})
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.agent.Execute(stdCtx, req.Message)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	resp := transport.CommandResponse{
		Ok:         true,
		Reply:      result.Reply,
		Operations: result.Outcomes,
	}

	// The command already succeeded; a failed refresh degrades to empty
	// lists rather than failing the whole request.
	if tasks, err := h.tasks.ListTasks(stdCtx); err == nil {
		resp.Tasks = tasks
	} else {
		h.logger.Warn("task refresh after command failed", zap.Error(err))
	}
	if categories, err := h.tasks.Categories(stdCtx); err == nil {
		resp.Categories = categories
	}

	h.respondJSON(ctx, http.StatusOK, resp)
}
