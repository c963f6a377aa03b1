package api_gateway

import (
	"log/slog"

	"github.com/carteira-sync/internal/api_gateway/handler"
	"github.com/carteira-sync/internal/api_gateway/middleware"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	session      *handler.SessionHandler
	accounts     *handler.AccountHandler
	categories   *handler.CategoryHandler
	transactions *handler.TransactionHandler
	cards        *handler.CardHandler
	budgets      *handler.BudgetHandler
	data         *handler.DataHandler
	health       *handler.HealthHandler
	failures     *handler.FailureHandler // nil without an audit store
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h handlers, limiter *middleware.RateLimiter) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger, "/health"))
	r.Use(middleware.CorrelationID())

	v1 := r.Group("/api/v1")
	{
		session := v1.Group("/session")
		{
			session.GET("", h.session.Current)
			session.POST("", h.session.SignIn)
			session.DELETE("", h.session.SignOut)
		}

		accounts := v1.Group("/accounts")
		{
			accounts.GET("", h.accounts.List)
			accounts.POST("", h.accounts.Create)
			accounts.GET("/:id", h.accounts.GetByID)
			accounts.PUT("/:id", h.accounts.Update)
			accounts.PATCH("/:id/opening-value", h.accounts.SetOpeningValue)
			accounts.DELETE("/:id", h.accounts.Delete)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", h.categories.List)
			categories.POST("", h.categories.Create)
			categories.GET("/:id", h.categories.GetByID)
			categories.PUT("/:id", h.categories.Update)
			categories.DELETE("/:id", h.categories.Delete)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.GET("", h.transactions.List)
			transactions.POST("", h.transactions.Create)
			transactions.GET("/:id", h.transactions.GetByID)
			transactions.PUT("/:id", h.transactions.Update)
			transactions.DELETE("/:id", h.transactions.Delete)
		}
		v1.POST("/transfers", h.transactions.CreateTransfer)
		v1.POST("/recurrences", h.transactions.CreateRecurring)
		v1.DELETE("/recurrences/:id", h.transactions.DeleteRecurrence)

		cards := v1.Group("/cards")
		{
			cards.GET("", h.cards.List)
			cards.POST("", h.cards.Create)
			cards.GET("/:id", h.cards.GetByID)
			cards.PUT("/:id", h.cards.Update)
			cards.DELETE("/:id", h.cards.Delete)
			cards.GET("/:id/statement", h.cards.Statement)
		}

		purchases := v1.Group("/purchases")
		{
			purchases.GET("", h.cards.ListPurchases)
			purchases.POST("", h.cards.CreatePurchase)
			purchases.GET("/:id", h.cards.GetPurchase)
			purchases.DELETE("/:id", h.cards.DeletePurchase)
		}

		installments := v1.Group("/installments")
		{
			installments.GET("", h.cards.ListInstallments)
			installments.PATCH("/:id", h.cards.SetInstallmentPaid)
		}

		budgets := v1.Group("/budgets")
		{
			budgets.GET("", h.budgets.List)
			budgets.PUT("", h.budgets.Set)
			budgets.DELETE("/:id", h.budgets.Delete)
		}

		// Whole-dataset operations share a per-client rate limit
		data := v1.Group("/data", middleware.RateLimit(limiter, logger))
		{
			data.GET("/export", h.data.Export)
			data.POST("/import", h.data.Import)
			data.POST("/purge/preview", h.data.PreviewPurge)
			data.POST("/purge", h.data.Purge)
		}

		if h.failures != nil {
			failures := v1.Group("/failures")
			{
				failures.GET("", h.failures.List)
				failures.GET("/:event_id", h.failures.GetByID)
			}
		}
	}

	r.GET("/health", h.health.Check)
}
