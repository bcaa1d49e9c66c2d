package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/my-vote/cliparse"
	"github.com/danielhkuo/my-vote/db"
	"github.com/danielhkuo/my-vote/metrics"
	"github.com/danielhkuo/my-vote/middleware"
	"github.com/danielhkuo/my-vote/router"
	"github.com/danielhkuo/my-vote/source"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// The database is optional unless datasets are served from it
	var store *db.Store
	if cfg.DatabaseURL != "" {
		var dbConn *sql.DB
		dbConn, err = db.Open(cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()

		// Create schema (tables)
		if err := db.CreateSchema(dbConn); err != nil {
			slog.Error("schema creation failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Database schema ready", "type", cfg.DatabaseType)
		store = db.NewStore(dbConn)
	}

	loader, err := newLoader(ctx, cfg, store)
	if err != nil {
		slog.Error("dataset source failed", "driver", cfg.DataDriver, "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	catalog := source.NewCatalog(loader, m)

	// Create router
	mux := router.NewRouter(catalog, store, cfg, m)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal, then let in-flight requests finish
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "data_driver", loader.Driver())
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// newLoader picks the dataset source named by the config.
func newLoader(ctx context.Context, cfg cliparse.Config, store *db.Store) (source.Loader, error) {
	keys := source.Keys{House: cfg.HouseKey, Senate: cfg.SenateKey}

	switch cfg.DataDriver {
	case source.DriverS3:
		return source.NewS3(ctx, source.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		}, keys)
	case source.DriverDB:
		if store == nil {
			return nil, errors.New("db data driver needs a database")
		}
		return source.DB{Store: store}, nil
	default:
		return source.FS{Dir: cfg.DataDir, Keys: keys}, nil
	}
}
