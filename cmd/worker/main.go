package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	eventadapter "commscore/internal/infrastructure/events/adapter"
	eventport "commscore/internal/infrastructure/events/port"
	queueadapter "commscore/internal/infrastructure/queue/adapter"
	commstask "commscore/internal/pkg/comms/application/task"
	messagetask "commscore/internal/pkg/message/application/task"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	srv, err := queueadapter.NewAsynqServer()
	if err != nil {
		log.Fatalf("failed to build worker server: %v", err)
	}

	var publisher eventport.Publisher
	if amqp, err := eventadapter.NewAmqpPublisherFromEnv(); err != nil {
		log.Printf("amqp unavailable, events disabled: %v", err)
		publisher = eventadapter.NopPublisher{}
	} else {
		publisher = amqp
		defer amqp.Close()
	}

	messagetask.RegisterMentionFanoutTask(srv, publisher)
	commstask.RegisterAuditTask(srv, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	log.Print("worker running")
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("worker: %v", err)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		log.Printf("worker stop: %v", err)
	}
}
