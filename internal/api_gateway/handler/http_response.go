package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/carteira-sync/internal/api_gateway/middleware"
	"github.com/carteira-sync/internal/dataops"
	"github.com/carteira-sync/internal/domain/account"
	"github.com/carteira-sync/internal/domain/budget"
	"github.com/carteira-sync/internal/domain/card"
	"github.com/carteira-sync/internal/domain/category"
	"github.com/carteira-sync/internal/domain/failure"
	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/domain/transaction"
	"github.com/carteira-sync/internal/store/remote"
	"github.com/carteira-sync/internal/workspace"
	"github.com/gin-gonic/gin"
)

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

// ErrorInfo represents error information in a response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewResponse creates a new response with data
func NewResponse(data interface{}) *Response {
	return &Response{Data: data}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message string) *Response {
	return &Response{
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	response := NewResponse(data)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	response := NewErrorResponse(code, message)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondNoContent sends a 204 No Content response
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// RespondUnauthorized sends a 401 Unauthorized response with an error
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// RespondNotFound sends a 404 Not Found response with an error
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, "NOT_FOUND", message)
}

// RespondConflict sends a 409 Conflict response with an error
func RespondConflict(c *gin.Context, message string) {
	RespondWithError(c, http.StatusConflict, "CONFLICT", message)
}

// RespondViolation sends a 409 Conflict carrying the violation that blocked a delete
func RespondViolation(c *gin.Context, v *shared.Violation) {
	response := NewErrorResponse("DELETE_BLOCKED", v.String())
	response.Data = v
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(http.StatusConflict, response)
}

// RespondNotImplemented sends a 501 Not Implemented response with an error
func RespondNotImplemented(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotImplemented, "NOT_IMPLEMENTED", message)
}

// RespondBadGateway sends a 502 Bad Gateway response for remote backend failures
func RespondBadGateway(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadGateway, "REMOTE_UNAVAILABLE", message)
}

// RespondInternalError sends a 500 Internal Server Error response with an error
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}

// invalidInput lists the domain errors that describe a bad request body
var invalidInput = []error{
	shared.ErrInvalidPeriod,
	account.ErrEmptyName, account.ErrNameTooLong, account.ErrMissingDate, account.ErrInvalidColor,
	category.ErrEmptyName, category.ErrInvalidType, category.ErrNegativeBudget,
	transaction.ErrMissingAccount, transaction.ErrMissingCategory, transaction.ErrMissingDate,
	transaction.ErrInvalidType, transaction.ErrZeroAmount, transaction.ErrInvalidOccurrences,
	transaction.ErrSameAccount, transaction.ErrNonPositiveAmount, transaction.ErrBrokenTransfer,
	card.ErrEmptyName, card.ErrInvalidDay, card.ErrNegativeLimit,
	card.ErrMissingCard, card.ErrMissingCategory, card.ErrMissingPurchaseDate,
	card.ErrNonPositiveTotal, card.ErrInvalidInstallments,
	budget.ErrMissingCategory, budget.ErrNegativeAmount,
}

// RespondError maps a service error onto the matching status code
func RespondError(c *gin.Context, logger *slog.Logger, err error) {
	var notFound shared.ErrNotFound
	switch {
	case errors.As(err, &notFound):
		RespondNotFound(c, notFound.Error())
		return
	case errors.Is(err, failure.ErrEventNotFound{}):
		RespondNotFound(c, err.Error())
		return
	case errors.Is(err, category.ErrSystemReadOnly), errors.Is(err, dataops.ErrInvalidPurgeToken):
		RespondConflict(c, err.Error())
		return
	case errors.Is(err, dataops.ErrImportNotSupported):
		RespondNotImplemented(c, err.Error())
		return
	case errors.Is(err, identity.ErrSessionExpired), errors.Is(err, identity.ErrInvalidSession), errors.Is(err, identity.ErrEmptyToken):
		RespondUnauthorized(c, err.Error())
		return
	case errors.Is(err, workspace.ErrMissingTransferCategory):
		logger.Error("Transfer category missing", "error", err)
		RespondInternalError(c)
		return
	}

	for _, target := range invalidInput {
		if errors.Is(err, target) {
			RespondBadRequest(c, err.Error())
			return
		}
	}

	switch remote.KindOf(err) {
	case remote.KindUnauthorized:
		RespondUnauthorized(c, "Remote backend rejected the session")
		return
	case remote.KindTransient, remote.KindConflictTargetMissing, remote.KindConstraint, remote.KindNotFound:
		logger.Warn("Remote backend failure", "error", err)
		RespondBadGateway(c, err.Error())
		return
	}

	logger.Error("Request failed", "error", err)
	RespondInternalError(c)
}
