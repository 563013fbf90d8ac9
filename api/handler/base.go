package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/api/transport"
	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/internal/middleware"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
	appLogger "github.com/fastygo/taskmanager/pkg/logger"
)

// Option customizes handler behaviour shared by every resource.
type Option func(*baseHandler)

// WithSplitForbidden answers owner mismatches with 403 instead of 401.
func WithSplitForbidden(split bool) Option {
	return func(h *baseHandler) {
		if split {
			h.forbiddenStatus = http.StatusForbidden
		} else {
			h.forbiddenStatus = http.StatusUnauthorized
		}
	}
}

type baseHandler struct {
	adapter         *httpcontext.Adapter
	logger          *zap.Logger
	forbiddenStatus int
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger, opts ...Option) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := baseHandler{adapter: adapter, logger: logger, forbiddenStatus: http.StatusUnauthorized}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	transport.WriteJSON(ctx, status, payload)
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error) {
	status, code := h.mapError(err)
	body := transport.ErrorBody{Code: code}

	var dErr *domain.Error
	if status != http.StatusInternalServerError && errors.As(err, &dErr) {
		body.Message = dErr.Message
	} else {
		body.Message = "internal server error"
		body.Detail = err.Error()
		appLogger.WithRequestID(stdCtx, h.logger).Error("request failed",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err))
	}
	h.respondJSON(ctx, status, body)
}

func (h baseHandler) mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return h.forbiddenStatus, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	case domain.IsDomainError(err, domain.ErrCodeRateLimited):
		return http.StatusTooManyRequests, string(domain.ErrCodeRateLimited)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// currentUser answers 401 when the request carries no resolved identity.
func (h baseHandler) currentUser(ctx *fasthttp.RequestCtx) (*domain.User, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.ErrorBody{
			Message: domain.ErrUnauthorized.Message,
			Code:    string(domain.ErrCodeUnauthorized),
		})
		return nil, false
	}
	return user, true
}

// decode reads a JSON body into dst. An empty body decodes to the zero value.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dst); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.ErrorBody{
			Message: domain.ErrInvalidPayload.Message,
			Code:    string(domain.ErrCodeInvalid),
		})
		return false
	}
	return true
}

func parseInt(value []byte, fallback int) int {
	if v, err := strconv.Atoi(string(value)); err == nil {
		return v
	}
	return fallback
}
