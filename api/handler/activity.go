package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
	"github.com/fastygo/taskmanager/repository"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

type ActivityHandler struct {
	baseHandler
	journal repository.ActivityRepository
}

func NewActivityHandler(journal repository.ActivityRepository, adapter *httpcontext.Adapter, logger *zap.Logger, opts ...Option) *ActivityHandler {
	return &ActivityHandler{
		baseHandler: newBaseHandler(adapter, logger, opts...),
		journal:     journal,
	}
}

// @Summary Recent activity of the caller
// @Tags activity
// @Router /api/activity [get]
func (h *ActivityHandler) List(ctx *fasthttp.RequestCtx) {
	user, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	if h.journal == nil {
		h.respondJSON(ctx, http.StatusOK, []domain.Activity{})
		return
	}

	limit := parseInt(ctx.QueryArgs().Peek("limit"), defaultActivityLimit)
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	activities, err := h.journal.ListByUser(stdCtx, user.ID, limit)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, activities)
}
