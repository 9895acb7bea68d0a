// Command makereald runs the toHtml proxy: it accepts wireframe images
// over HTTP and returns generated documents from the completion endpoint.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sketchwire/makereal"
	"github.com/sketchwire/makereal/openai"
	"github.com/sketchwire/makereal/server"
)

func main() {
	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; requests will fail as unconfigured")
	}

	addr := os.Getenv("MAKEREAL_ADDR")
	if addr == "" {
		addr = ":8787"
	}

	client := openai.NewClient(openai.ClientOptions{
		APIKey:  apiKey,
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	})
	srv := server.New(client, server.Options{
		Request: makereal.RequestOptions{
			Model: os.Getenv("MAKEREAL_MODEL"),
		},
		Logger: logger,
	})

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
