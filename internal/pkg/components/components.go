// Package components wires the process together: config, logger,
// store, event publisher, router, and graceful shutdown, in the
// teacher's sync.Once singleton Container pattern.
package components

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"txledger/internal/api/middleware"
	"txledger/internal/api/routes"
	"txledger/internal/config"
	"txledger/internal/domain/ledger"
	"txledger/internal/infrastructure/messaging"
	"txledger/internal/infrastructure/messaging/kafka"
	"txledger/internal/pkg/logging"
	"txledger/internal/store/postgres"
)

// Container holds all application components and their dependencies.
type Container struct {
	Config         *config.Config
	Store          *postgres.Store
	EventPublisher messaging.EventPublisher
	Service        *ledger.Service
	Router         *gin.Engine
	Server         *http.Server
}

var (
	instance     *Container
	instanceOnce sync.Once
	instanceErr  error
)

// GetInstance returns the singleton container instance.
func GetInstance() (*Container, error) {
	instanceOnce.Do(func() {
		instance, instanceErr = newContainer()
	})
	return instance, instanceErr
}

// New creates and initializes all application components. Kept as an
// alias of GetInstance for backward compatibility with main.go.
func New() (*Container, error) {
	return GetInstance()
}

func newContainer() (*Container, error) {
	container := &Container{}

	if err := container.initConfig(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	if err := container.initLogger(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := container.initStore(); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := container.initEventPublisher(); err != nil {
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	container.initService()
	if err := container.initServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	logging.Info("All components initialized successfully", nil)
	return container, nil
}

func (c *Container) initConfig() error {
	c.Config = config.Load()
	return nil
}

func (c *Container) initLogger() error {
	logging.Init(c.Config)
	logging.Info("Logger initialized", map[string]interface{}{
		"level": c.Config.Logging.Level,
	})
	return nil
}

func (c *Container) initStore() error {
	dbConfig := postgres.NewConfigFromAppConfig(c.Config.Database)

	store, err := postgres.New(context.Background(), dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create postgres store: %w", err)
	}
	c.Store = store

	logging.Info("Store initialized", map[string]interface{}{
		"type":     "postgresql",
		"host":     c.Config.Database.Host,
		"database": c.Config.Database.Database,
	})
	return nil
}

func (c *Container) initEventPublisher() error {
	if !c.Config.Kafka.Enabled {
		logging.Info("Kafka disabled, using no-op event publisher", nil)
		c.EventPublisher = messaging.NewNoOpEventPublisher()
		return nil
	}

	kafkaConfig := kafka.NewConfigFromAppConfig(c.Config.Kafka)

	publisher, err := messaging.NewKafkaEventPublisher(kafkaConfig)
	if err != nil {
		// The process still starts if Kafka is unreachable; event
		// publication is best-effort, not part of the commit path.
		logging.Warn("Failed to initialize Kafka, using no-op event publisher", map[string]interface{}{
			"error": err.Error(),
		})
		c.EventPublisher = messaging.NewNoOpEventPublisher()
		return nil
	}

	c.EventPublisher = publisher
	logging.Info("Kafka event publisher initialized", map[string]interface{}{
		"brokers": kafkaConfig.Brokers,
	})
	return nil
}

func (c *Container) initService() {
	c.Service = ledger.NewService(c.Store, c.EventPublisher)
}

func (c *Container) initServer() error {
	if os.Getenv("ENVIRONMENT") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	c.Router = gin.Default()
	c.Router.Use(middleware.RequestContext())
	c.Router.Use(middleware.CORS(c.Config))
	c.Router.Use(middleware.Metrics())
	c.Router.Use(middleware.RateLimit(c.Config))

	routes.RegisterRoutes(c.Router, c.Service)

	c.Server = &http.Server{
		Addr:           ":" + c.Config.Server.Port,
		Handler:        c.Router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	logging.Info("HTTP server configured", map[string]interface{}{
		"port": c.Config.Server.Port,
	})
	return nil
}

// Start begins serving HTTP requests and blocks until shutdown.
func (c *Container) Start() error {
	logging.Info("Starting HTTP server", map[string]interface{}{
		"address": c.Server.Addr,
	})

	go func() {
		if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Server failed to start", err, nil)
			os.Exit(1)
		}
	}()

	c.waitForShutdown()
	return nil
}

func (c *Container) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", err, nil)
	}

	logging.Info("Server shutdown complete", nil)
}

// Shutdown gracefully stops all components.
func (c *Container) Shutdown(ctx context.Context) error {
	if err := c.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			logging.Error("Failed to close event publisher", err, nil)
		}
	}

	if c.Store != nil {
		c.Store.Close()
	}

	return nil
}
