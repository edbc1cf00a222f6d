// Package app wires configuration, logging, storage, the record store and
// the transports together, and runs the servers until a shutdown signal.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/usuaris/internal/config"
	"github.com/patric-chuzhbe/usuaris/internal/db/jsondb"
	"github.com/patric-chuzhbe/usuaris/internal/db/memorystorage"
	"github.com/patric-chuzhbe/usuaris/internal/db/mysqldb"
	"github.com/patric-chuzhbe/usuaris/internal/db/postgresdb"
	"github.com/patric-chuzhbe/usuaris/internal/db/storage"
	"github.com/patric-chuzhbe/usuaris/internal/grpcserver"
	"github.com/patric-chuzhbe/usuaris/internal/ipchecker"
	"github.com/patric-chuzhbe/usuaris/internal/logger"
	"github.com/patric-chuzhbe/usuaris/internal/models"
	"github.com/patric-chuzhbe/usuaris/internal/router"
	"github.com/patric-chuzhbe/usuaris/internal/service"
)

const shutdownTimeout = 10 * time.Second

// App holds everything needed to serve the user records.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	store       *service.Service
	httpHandler http.Handler
}

// New loads the configuration, initializes the logger, opens the storage
// selected by the configuration, seeds it when empty and builds the router.
func New(configOptions ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(configOptions...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	app.store, err = service.New(app.db, app.cfg.IDPolicy)
	if err != nil {
		return nil, errors.Join(err, app.db.Close())
	}

	if !app.cfg.SkipSeed {
		seeded, err := app.store.Seed(context.Background(), models.SeedUsers())
		if err != nil {
			return nil, errors.Join(err, app.db.Close())
		}
		if seeded {
			logger.Log.Infoln("the collection was empty, seed records inserted")
		}
	}

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, errors.Join(err, app.db.Close())
	}

	app.httpHandler, err = router.New(
		app.store,
		app.cfg.AttributeName,
		router.WithAPIDocs(app.cfg.APIDocs),
		router.WithIPChecker(checker),
	)
	if err != nil {
		return nil, errors.Join(err, app.db.Close())
	}

	return app, nil
}

// Run serves HTTP (and gRPC when configured) until SIGINT or SIGTERM,
// then shuts the servers down and closes the storage.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	var (
		grpcServer   *grpc.Server
		grpcListener net.Listener
	)
	if a.cfg.GRPCRunAddr != "" {
		var err error
		grpcServer, grpcListener, err = grpcserver.NewGRPCServer(
			a.cfg.GRPCRunAddr,
			grpcserver.NewUsuarisHandler(a.store, a.cfg.AttributeName),
		)
		if err != nil {
			return errors.Join(fmt.Errorf("gRPC server error: %w", err), a.db.Close())
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if grpcServer != nil {
		group.Go(func() error {
			logger.Log.Infoln("gRPC server running", "GRPCRunAddr", a.cfg.GRPCRunAddr)
			if err := grpcServer.Serve(grpcListener); err != nil {
				return fmt.Errorf("gRPC server error: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Log.Infoln("Received shutdown signal. Saving database and exiting...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if grpcServer != nil {
			grpcServer.GracefulStop()
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	err := group.Wait()

	return errors.Join(err, a.db.Close())
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.MySQLDSN != "" {
		return models.StorageTypeMySQL
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
		)

	case models.StorageTypeMySQL:
		return mysqldb.New(
			context.Background(),
			cfg.MySQLDSN,
			cfg.DBConnectionTimeout,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
