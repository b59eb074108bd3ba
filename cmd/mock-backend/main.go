// Command mock-backend serves an in-memory MARK backend for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/billie-coop/mark/internal/logging"
	"github.com/billie-coop/mark/internal/mockbackend"
)

func main() {
	addr := pflag.String("addr", "127.0.0.1:5000", "listen address")
	steps := pflag.Int("steps", 5, "status polls before a job completes")
	llmDown := pflag.Bool("llm-unavailable", false, "report the LLM service as offline")
	level := pflag.String("log-level", "info", "log level (debug, info, warn, error)")
	pflag.Parse()

	logger := logging.New(os.Stderr, *level)

	backend := mockbackend.New(mockbackend.Options{
		Steps:          *steps,
		LLMUnavailable: *llmDown,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting mock backend", "addr", *addr, "steps", *steps)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintln(os.Stderr, "server error:", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
