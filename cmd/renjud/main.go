// Command renjud serves the Renju analysis API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jaminalder/codex-renju/internal/app"
	"github.com/jaminalder/codex-renju/internal/config"
	"github.com/jaminalder/codex-renju/internal/store"
	"github.com/jaminalder/codex-renju/internal/web"
)

func main() {
	configPath := flag.String("config", "", "JSON config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	size := flag.Int("size", 0, "default board size (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[renjud] config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *size != 0 {
		cfg.BoardSize = *size
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[renjud] config: %v", err)
	}
	cs := config.NewStore(cfg)

	var st store.Store = store.NewMemory()
	if cfg.DBPath != "" {
		db, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatalf("[renjud] open %s: %v", cfg.DBPath, err)
		}
		st = db
		log.Printf("[renjud] using sqlite store at %s", cfg.DBPath)
	}
	defer st.Close()

	svc := app.NewService(st, cs, log.Default())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", web.NewServer(svc, cs))

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Printf("[renjud] listening on %s", cfg.Addr)
	select {
	case <-sigCtx.Done():
		log.Printf("[renjud] shutdown signal received: %v", sigCtx.Err())
	case err, ok := <-serverErrCh:
		if ok {
			log.Printf("[renjud] server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[renjud] graceful shutdown failed: %v", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Printf("[renjud] forced close failed: %v", closeErr)
		}
	}
}
