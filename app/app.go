package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"waseet-api/internal/config"
	"waseet-api/internal/controller"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/notify"
	"waseet-api/internal/outbox"
	"waseet-api/internal/repo"
	"waseet-api/internal/service"
	"waseet-api/internal/shipping"
	"waseet-api/pkg/http_server"
	"waseet-api/pkg/logger"
	"waseet-api/pkg/postgres"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/labstack/echo"
	"github.com/sirupsen/logrus"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func newLogger(cfg *config.Configuration) (*logrus.Entry, error) {
	l, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	return logrus.NewEntry(l).WithField("service", "waseet-api"), nil
}

func newMigrations(pg *postgres.Postgres, migrationsPath string) (*migrate.Migrate, error) {
	driver, err := pgmigrate.WithInstance(pg.Database.DB, &pgmigrate.Config{})
	if err != nil {
		return nil, err
	}

	return migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
}

func migrateTables(pg *postgres.Postgres, migrationsPath string, direction Direction, log *logrus.Entry) error {
	migrations, err := newMigrations(pg, migrationsPath)
	if err != nil {
		return fmt.Errorf("prepare migrations: %w", err)
	}

	switch direction {
	case Up:
		err = migrations.Up()
	case Down:
		err = migrations.Steps(-1)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no change made by migration scripts")

		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, _ := migrations.Version()
	log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Infof("migrations %s applied", direction)

	return nil
}

// Migrate applies all pending migrations, or rolls back the last one.
func Migrate(cfg *config.Configuration, direction Direction) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	postgresDB, err := postgres.NewDB(cfg.PostgresConn)
	if err != nil {
		return err
	}
	defer postgresDB.Close()

	return migrateTables(postgresDB, cfg.MigrationsPath, direction, log)
}

type dispatcher interface {
	outbox.Dispatcher
	io.Closer
}

type nopCloser struct {
	outbox.Dispatcher
}

func (nopCloser) Close() error { return nil }

func newDispatcher(opts config.NotifyOptions, log *logrus.Entry) dispatcher {
	switch strings.ToLower(opts.Sink) {
	case config.SinkEmail:
		return nopCloser{notify.NewEmailDispatcher(opts.URL, opts.Key, opts.Timeout)}
	case config.SinkKafka:
		return notify.NewKafkaDispatcher(opts.KafkaBrokers, opts.KafkaTopic)
	}

	return nopCloser{notify.NewLogDispatcher(log)}
}

// Run migrates the database, then serves the API and relays the outbox
// until ctx is cancelled or a termination signal arrives.
func Run(ctx context.Context, cfg *config.Configuration) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	log.Info("Connecting database...")
	postgresDB, err := postgres.NewDB(cfg.PostgresConn)
	if err != nil {
		return err
	}
	defer postgresDB.Close()

	if err = postgresDB.Database.PingContext(ctx); err != nil {
		return fmt.Errorf("database is not reachable: %w", err)
	}

	log.Info("Running migrations...")
	if err = migrateTables(postgresDB, cfg.MigrationsPath, Up, log); err != nil {
		return err
	}

	rates, err := shipping.Load(cfg.ShippingRatesPath)
	if err != nil {
		return err
	}

	repositories := repo.NewRepositories(postgresDB)
	services := service.NewServices(service.Dependencies{
		Repos:  repositories,
		Policy: lifecycle.NewPolicy(cfg.LifecycleForwardOnly),
		Rates:  rates,
		Logger: log,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := newDispatcher(cfg.Notify, log.WithField("component", "notify"))
	defer sink.Close()

	relay, err := outbox.NewRelay(repositories.Outbox, sink, outbox.RelayOptions{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
		MaxBackoff:   cfg.Outbox.MaxBackoff,
		Logger:       log.WithField("component", "outbox"),
	})
	if err != nil {
		return err
	}

	relayCtx, stopRelay := context.WithCancel(ctx)
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		if err := relay.Run(relayCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("outbox relay stopped")
		}
	}()

	handler := echo.New()
	log.Info("Setup routes...")
	controller.SetupRoutesHandlers(handler, services, controller.RouterOptions{
		AdminToken: cfg.AdminToken,
		Logger:     log,
	})

	log.WithField("address", cfg.ServerAddress).Info("Starting server...")
	httpServer := http_server.New(handler, cfg.ServerAddress)

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Got termination signal")
	case err, ok := <-httpServer.Notify():
		if ok {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	}

	log.Info("Shutting down...")
	if err := httpServer.Shutdown(context.Background()); err != nil {
		log.WithError(err).Error("Shutdown error")
	}
	stopRelay()
	<-relayDone
	log.Info("Successful shutdown")

	return serveErr
}
