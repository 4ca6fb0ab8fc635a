package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskpilot/backend/api/handler"
)

type Handlers struct {
	Command *apiHandler.CommandHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

// Middleware wraps a handler; middlewares apply outermost-first.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, middlewares ...Middleware) *router.Router {
	r := router.New()

	r.GET("/api/health", wrap(handlers.Health.Check, middlewares))
	r.GET("/api/tasks", wrap(handlers.Task.GetTasks, middlewares))
	r.POST("/api/command", wrap(handlers.Command.Execute, middlewares))

	return r
}

func wrap(h fasthttp.RequestHandler, middlewares []Middleware) fasthttp.RequestHandler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
