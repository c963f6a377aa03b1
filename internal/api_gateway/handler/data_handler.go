package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/carteira-sync/internal/api_gateway/middleware"
	"github.com/carteira-sync/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// DataHandler handles whole-dataset operations: export, import and purge
type DataHandler struct {
	dataService service.DataService
	logger      *slog.Logger
}

func NewDataHandler(logger *slog.Logger, dataService service.DataService) *DataHandler {
	return &DataHandler{
		dataService: dataService,
		logger:      logger,
	}
}

// Export streams the current dataset as a JSON attachment
func (h *DataHandler) Export(c *gin.Context) {
	snapshot, document, err := h.dataService.Export(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("carteira-%s.json", snapshot.ExportedAt.UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/json", document)
}

func (h *DataHandler) Import(c *gin.Context) {
	if err := h.dataService.Import(c.Request.Context(), c.Request.Body); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondNoContent(c)
}

// PreviewPurge counts what a purge would remove and issues its confirmation token
func (h *DataHandler) PreviewPurge(c *gin.Context) {
	preview, err := h.dataService.PreviewPurge(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, preview)
}

func (h *DataHandler) Purge(c *gin.Context) {
	var req PurgeRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	if err := h.dataService.Purge(c.Request.Context(), req.Token); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	h.logger.Info("Dataset purged", "correlation_id", middleware.GetCorrelationID(c))
	RespondNoContent(c)
}
