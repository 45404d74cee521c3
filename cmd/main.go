/**
 * @description
 * This is the main entry point for the transfer-service. It is responsible for
 * initializing all components of the service, including configuration, database
 * connection, the Redis status cache, the message broker, repositories, the core
 * application service, the expiry sweep, and the HTTP server. It wires
 * everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/xfer/transfer-service/internal/api"
	"github.com/xfer/transfer-service/internal/app"
	"github.com/xfer/transfer-service/internal/config"
	"github.com/xfer/transfer-service/internal/store"
	rmrabbit "github.com/xfer/transfer-service/pkg/rabbitmq"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"jwt secret must be configured\" env=JWT_SECRET")
	}

	log.Printf("level=info component=bootstrap msg=\"starting transfer-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	poolConfig.MaxConns = 50
	poolConfig.MinConns = 10
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer to publish lifecycle events. The
	// service stays up without the broker; events are dropped with a warning.
	var eventProducer rmrabbit.Publisher
	rabbitProducer, err := rmrabbit.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		eventProducer = &rmrabbit.EventProducerFallback{}
	} else {
		defer rabbitProducer.Close()
		eventProducer = rabbitProducer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Redis backs the status polling cache. Missing Redis degrades polling to
	// database reads.
	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"redis url missing; status cache disabled\" env=REDIS_URL")
	} else {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; status cache disabled\" err=%v", parseErr)
		} else {
			redisClient = redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelPing()
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; status cache disabled\" err=%v", pingErr)
				redisClient.Close()
				redisClient = nil
			} else {
				defer redisClient.Close()
				log.Println("level=info component=bootstrap msg=\"redis connected\"")
			}
		}
	}
	// A nil *redis.Client must not reach the interface-typed parameter, or the
	// cache's nil checks stop working.
	statusCacheTTL := time.Duration(cfg.StatusCacheTTLSeconds) * time.Second
	statusCache := app.NewRedisStatusCache(nil, statusCacheTTL)
	if redisClient != nil {
		statusCache = app.NewRedisStatusCache(redisClient, statusCacheTTL)
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	// Initialize the core application service with its dependencies.
	transferService := app.NewService(
		repository,
		statusCache,
		eventProducer,
		cfg.MinAmount,
		cfg.MaxAmount,
		time.Duration(cfg.PendingTransferTTLMinutes)*time.Minute,
	)

	// Start the expiry sweep for stale pending transfers.
	sweeper := app.NewSweeper(transferService)
	if err := sweeper.Start(cfg.ExpirySweepSchedule); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"expiry sweep start failed\" schedule=%q err=%v", cfg.ExpirySweepSchedule, err)
	}
	defer sweeper.Stop()

	// Initialize the API handlers.
	transferHandlers := api.NewTransferHandlers(transferService)

	// Set up the HTTP router and define the API routes.
	router := chi.NewRouter()
	router.Mount("/api/v1", api.TransferRoutes(transferHandlers, cfg.JWTSecret))

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
