package handler

import (
	"time"

	"github.com/carteira-sync/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports context load state and persistence failure counters
type HealthHandler struct {
	status   service.StatusService
	failures service.FailureCounter
}

func NewHealthHandler(status service.StatusService, failures service.FailureCounter) *HealthHandler {
	return &HealthHandler{status: status, failures: failures}
}

// Check always answers 200; "loading" means some context has not finished
// its initial load yet.
func (h *HealthHandler) Check(c *gin.Context) {
	contexts := h.status.Status()

	status := "ok"
	for _, ctx := range contexts {
		if ctx.Status != "loaded" {
			status = "loading"
			break
		}
	}

	body := gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"contexts":  contexts,
	}
	if h.failures != nil {
		body["persistence_failures"] = gin.H{
			"total":     h.failures.Total(),
			"counters": h.failures.Snapshot(),
		}
	}
	RespondOK(c, body)
}
