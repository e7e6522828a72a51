package testenv

import (
	"testing"

	"github.com/gin-gonic/gin"

	"txledger/internal/api/middleware"
	"txledger/internal/api/routes"
	"txledger/internal/config"
	"txledger/internal/domain/ledger"
	"txledger/internal/infrastructure/messaging"
	storepg "txledger/internal/store/postgres"
)

// NewTestRouter builds a gin.Engine wired to a *ledger.Service backed
// by store, with a no-op event publisher, registering the full route
// table so integration tests exercise the real HTTP surface.
func NewTestRouter(t *testing.T, store *storepg.Store) (*gin.Engine, *ledger.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := ledger.NewService(store, messaging.NewNoOpEventPublisher())

	cfg := &config.Config{
		CORS: config.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"*"},
		},
	}

	router := gin.New()
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.Metrics())
	routes.RegisterRoutes(router, svc)

	return router, svc
}
