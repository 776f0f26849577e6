package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"news-chatter-be/internal/bootstrap"
	"news-chatter-be/internal/config"
	"news-chatter-be/internal/server"
	"news-chatter-be/internal/tracer"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Init(ctx, "news-chatter-be")
	if err != nil {
		log.Printf("tracing disabled: %v", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	// Turn persistence runs off the websocket hot path.
	go func() {
		if err := container.Consumer.Run(ctx); err != nil {
			container.Logger.Error("main", "turn consumer stopped", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	app := server.New(container)

	go func() {
		container.Logger.Info("main", "server listening", map[string]interface{}{
			"port": cfg.App.Port,
		})
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			container.Logger.Error("main", "server stopped", map[string]interface{}{
				"error": err.Error(),
			})
			stop()
		}
	}()

	<-ctx.Done()
	container.Logger.Info("main", "shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		container.Logger.Error("main", "graceful shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	container.Close(shutdownCtx)
	_ = shutdownTracer(shutdownCtx)
}
