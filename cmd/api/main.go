package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "commscore/cmd/api/router/v1"
	cacheadapter "commscore/internal/infrastructure/cache/adapter"
	cacheport "commscore/internal/infrastructure/cache/port"
	"commscore/internal/infrastructure/database"
	eventadapter "commscore/internal/infrastructure/events/adapter"
	eventport "commscore/internal/infrastructure/events/port"
	queueadapter "commscore/internal/infrastructure/queue/adapter"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Entitlement snapshots go to Redis when available; a process-local
	// cache keeps single-node deployments working without one.
	var cache cacheport.Cache
	if redis, err := cacheadapter.NewRedisAdapter(); err != nil {
		log.Printf("redis unavailable, using in-process cache: %v", err)
		cache = cacheadapter.NewMemoryCache()
	} else {
		cache = redis
		defer redis.Close()
	}

	queue, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		log.Fatalf("failed to connect task queue: %v", err)
	}
	defer queue.Close()

	var publisher eventport.Publisher
	if amqp, err := eventadapter.NewAmqpPublisherFromEnv(); err != nil {
		log.Printf("amqp unavailable, events disabled: %v", err)
		publisher = eventadapter.NopPublisher{}
	} else {
		publisher = amqp
		defer amqp.Close()
	}

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, pool, queue, cache, publisher)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()
	log.Printf("api listening on :%s", port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
