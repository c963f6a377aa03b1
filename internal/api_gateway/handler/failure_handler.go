package handler

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/carteira-sync/internal/api_gateway/service"
	"github.com/carteira-sync/internal/domain/failure"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultFailureLimit = 50
	maxFailureLimit     = 500
	defaultFailureSpan  = 24 * time.Hour
)

// FailureHandler serves the persistence failure audit trail
type FailureHandler struct {
	failures service.FailureLog
	logger   *slog.Logger
}

func NewFailureHandler(logger *slog.Logger, failures service.FailureLog) *FailureHandler {
	return &FailureHandler{
		failures: failures,
		logger:   logger,
	}
}

// FailurePage is one page of recorded failure events
type FailurePage struct {
	Events []*failure.Event `json:"events"`
	Total  *int64           `json:"total,omitempty"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// List filters by ?entity when given, otherwise by the ?from/?to window
// (RFC 3339), which defaults to the last 24 hours.
func (h *FailureHandler) List(c *gin.Context) {
	limit, offset, ok := h.pageParams(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	page := FailurePage{Limit: limit, Offset: offset}

	if entity := c.Query("entity"); entity != "" {
		events, err := h.failures.GetByEntity(ctx, entity, limit, offset)
		if err != nil {
			RespondError(c, h.logger, err)
			return
		}
		total, err := h.failures.CountByEntity(ctx, entity)
		if err != nil {
			RespondError(c, h.logger, err)
			return
		}
		page.Events = events
		page.Total = &total
		RespondOK(c, page)
		return
	}

	to := time.Now().UTC()
	from := to.Add(-defaultFailureSpan)
	var err error
	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse(time.RFC3339, raw); err != nil {
			RespondBadRequest(c, "Invalid from: "+err.Error())
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse(time.RFC3339, raw); err != nil {
			RespondBadRequest(c, "Invalid to: "+err.Error())
			return
		}
	}
	if !from.Before(to) {
		RespondBadRequest(c, "from must be before to")
		return
	}

	events, err := h.failures.GetByTimeRange(ctx, from, to, limit, offset)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	page.Events = events
	RespondOK(c, page)
}

func (h *FailureHandler) GetByID(c *gin.Context) {
	raw := c.Param("event_id")
	eventID, err := uuid.Parse(raw)
	if err != nil {
		RespondBadRequest(c, "Invalid event_id")
		return
	}

	event, err := h.failures.GetByEventID(c.Request.Context(), eventID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, event)
}

func (h *FailureHandler) pageParams(c *gin.Context) (int, int, bool) {
	limit := defaultFailureLimit
	offset := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondBadRequest(c, "limit must be a positive integer")
			return 0, 0, false
		}
		limit = min(n, maxFailureLimit)
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondBadRequest(c, "offset must not be negative")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}
