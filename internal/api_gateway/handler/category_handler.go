package handler

import (
	"log/slog"

	"github.com/carteira-sync/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *slog.Logger
}

func NewCategoryHandler(logger *slog.Logger, categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// List returns every category in display order
func (h *CategoryHandler) List(c *gin.Context) {
	RespondOK(c, h.categoryService.Categories())
}

func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}

	cat, err := h.categoryService.Category(id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, cat)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	cat, err := h.categoryService.CreateCategory(req.toCategory())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, cat)
}

// Update answers 409 when a system category would be renamed or retyped
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	cat, err := h.categoryService.UpdateCategory(id, req.toCategory())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}

	violation, err := h.categoryService.DeleteCategory(id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	if violation != nil {
		RespondViolation(c, violation)
		return
	}
	RespondNoContent(c)
}
