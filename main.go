package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gaitlab/stride.report/api"
	"github.com/gaitlab/stride.report/internal/config"
	"github.com/gaitlab/stride.report/internal/db"
	"github.com/gaitlab/stride.report/internal/session"
)

var (
	configPath = flag.String("config", "", "Path to analysis config JSON (optional)")
	listen     = flag.String("listen", "", "Listen address (overrides config)")
	dbPath     = flag.String("db-path", "", "Results database path (overrides config)")
	dataDir    = flag.String("data-dir", "", "Session data directory (overrides config)")
	migrateUp  = flag.Bool("migrate", false, "Apply pending database migrations on startup")
)

func main() {
	flag.Parse()

	cfg := config.EmptyAnalysisConfig()
	if *configPath != "" {
		loaded, err := config.LoadAnalysisConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *listen != "" {
		cfg.ListenAddr = listen
	}
	if *dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if *dataDir != "" {
		cfg.DataDir = dataDir
	}

	database, err := db.Open(cfg.GetDatabasePath())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if *migrateUp {
		if err := database.MigrateUp(); err != nil {
			log.Fatalf("Migrations failed: %v", err)
		}
	}
	if err := database.CheckMigrations(); err != nil {
		log.Fatalf("Database schema check failed: %v", err)
	}

	fetcher := session.NewClient(cfg.GetAPIBaseURL(), cfg.GetDataDir())

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()
		apiMux := api.NewServer(cfg, database, fetcher).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("got request %q", r.URL.Path)
			mux.ServeHTTP(w, r)
		})

		server := &http.Server{
			Addr:    cfg.GetListenAddr(),
			Handler: h,
		}

		go func() {
			log.Printf("listening on %s", cfg.GetListenAddr())
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
