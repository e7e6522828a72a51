package routes

import (
	"github.com/gin-gonic/gin"

	"txledger/internal/api/handlers"
	"txledger/internal/domain/ledger"
)

// RegisterRoutes wires the full HTTP surface onto router, with each
// handler closing over svc at construction time.
func RegisterRoutes(router *gin.Engine, svc *ledger.Service) {
	router.POST("/accounts", handlers.MakeCreateAccountHandler(svc))
	router.GET("/accounts/:id", handlers.MakeGetAccountHandler(svc))
	router.GET("/accounts/:id/history", handlers.MakeAccountHistoryHandler(svc))

	router.POST("/accounts/:id/transactions", handlers.MakeProcessTransactionHandler(svc))
	router.POST("/accounts/:id/deposit", handlers.MakeDepositHandler(svc))
	router.POST("/accounts/:id/withdraw", handlers.MakeWithdrawHandler(svc))
	router.POST("/accounts/transfer", handlers.MakeTransferHandler(svc))

	router.GET("/metrics", handlers.MakeMetricsHandler())
	router.GET("/prometheus", handlers.PrometheusHandler())
}
