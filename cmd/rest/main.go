package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"qbwc-sync-be/internal/bootstrap"
	"qbwc-sync-be/internal/config"
	"qbwc-sync-be/internal/server"
	"qbwc-sync-be/internal/tracer"
	"qbwc-sync-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	shutdownTracer := tracer.InitTracer(cfg.Tracing)
	defer shutdownTracer(context.Background())

	// 2. Initialize Database
	gormDB, err := database.OpenGorm(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	// 4. Start Background Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		log.Println("Background: Starting audit consumer...")
		if err := container.AuditConsumer.Consume(ctx); err != nil {
			log.Printf("Background audit consumer error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		cancel()
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
