// Package controller is the HTTP boundary. The customer intake site and
// the admin panel are separate SPAs; everything here is JSON over REST
// with CORS opened for their origins.
package controller

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/driftwoodsurf/booking_server/internal/controller/handlers"
	"github.com/driftwoodsurf/booking_server/internal/service"
)

// NewRouter wires the REST surface. Auth middleware is mounted by the
// deployment in front of /api/admin; it is not this layer's concern.
func NewRouter(
	booking *service.BookingService,
	expense *service.ExpenseService,
	finance *service.FinanceService,
	pricing *service.Pricing,
	allowedOrigins []string,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	h := handlers.New(booking, expense, finance, pricing, logger)

	api := router.Group("/api")
	{
		api.POST("/requests", h.CreateRequest)
		api.GET("/meta/time-grid", h.TimeGrid)

		admin := api.Group("/admin")
		{
			admin.GET("/requests", h.ListRequests)
			admin.GET("/requests/:id", h.GetRequest)
			admin.PATCH("/requests/:id", h.UpdateRequest)
			admin.POST("/requests/:id/decide", h.DecideRequest)
			admin.GET("/requests/:id/balance", h.RequestBalance)
			admin.GET("/availability", h.SlotAvailability)

			admin.GET("/sessions", h.ListSessions)
			admin.GET("/sessions/:id", h.GetSession)
			admin.PATCH("/sessions/:id/status", h.UpdateSessionStatus)
			admin.PATCH("/sessions/:id/payment", h.UpdateSessionPayment)
			admin.DELETE("/sessions/:id", h.DeleteSession)

			admin.POST("/expenses", h.CreateExpense)
			admin.GET("/expenses", h.ListExpenses)
			admin.GET("/expenses/:id", h.GetExpense)
			admin.POST("/expenses/:id/receipts", h.AttachReceipt)
			admin.DELETE("/expenses/:id", h.DeleteExpense)

			admin.GET("/finance/summary", h.FinanceSummary)
		}
	}

	return router
}
