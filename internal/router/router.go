package router

import (
	"fmt"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskmanager/api/handler"
	"github.com/fastygo/taskmanager/api/transport"
	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/internal/middleware"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Task     *apiHandler.TaskHandler
	Activity *apiHandler.ActivityHandler
	Health   *apiHandler.HealthHandler
}

// Middleware is the set of wrappers applied around the route table.
type Middleware struct {
	Auth           func(fasthttp.RequestHandler) fasthttp.RequestHandler
	AllowedOrigins []string
	Logger         *zap.Logger
}

// New builds the route table and returns it wrapped in the request-id,
// access-log and CORS middleware.
func New(handlers Handlers, mw Middleware) fasthttp.RequestHandler {
	logger := mw.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	authMiddleware := mw.Auth

	r := router.New()
	r.RedirectTrailingSlash = false
	r.HandleOPTIONS = false

	r.GET("/health", handlers.Health.Check)

	r.POST("/api/users/register", handlers.Auth.Register)
	r.POST("/api/users/login", handlers.Auth.Login)
	r.GET("/api/users/me", authMiddleware(handlers.Auth.Me))

	r.GET("/api/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PUT("/api/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	r.GET("/api/activity", authMiddleware(handlers.Activity.List))

	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		transport.WriteError(ctx, fasthttp.StatusNotFound, transport.ErrorBody{
			Message: fmt.Sprintf("route %s %s not found", ctx.Method(), ctx.Path()),
			Code:    string(domain.ErrCodeNotFound),
		})
	}
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		transport.WriteError(ctx, fasthttp.StatusMethodNotAllowed, transport.ErrorBody{
			Message: "method not allowed",
			Code:    string(domain.ErrCodeInvalid),
		})
	}
	r.PanicHandler = func(ctx *fasthttp.RequestCtx, recovered interface{}) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.ByteString("path", ctx.Path()))
		transport.WriteError(ctx, fasthttp.StatusInternalServerError, transport.ErrorBody{
			Message: "internal server error",
			Code:    string(domain.ErrCodeInternal),
		})
	}

	return middleware.Chain(r.Handler,
		middleware.RequestLogger(logger),
		middleware.CORS(mw.AllowedOrigins),
	)
}
