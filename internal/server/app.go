// Package server wires the backend: database, migrations, session store,
// mailer, business services, the gRPC endpoint, metrics and cleanup jobs.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/metrics"
	"github.com/dmitrijs2005/storefront/internal/server/config"
	"github.com/dmitrijs2005/storefront/internal/server/jobs"
	"github.com/dmitrijs2005/storefront/internal/server/mailer"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storefront/internal/server/services"
	"github.com/dmitrijs2005/storefront/internal/server/sessions"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/storefront/internal/server/grpc"
)

const startupTimeout = 30 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	closers  []func() error
	accounts *services.AccountService
	products *services.ProductService
	payments *services.PaymentService
	cleanup  *jobs.CleanupJob
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(os.Stdout, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(startCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}
	app.closers = append(app.closers, db.Close)

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(startCtx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := app.newSessionStore(startCtx)
	if err != nil {
		app.Close()
		return nil, err
	}

	ml, err := newMailer(c, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.accounts = services.NewAccountService(db, rm, store, ml, c)
	app.products = services.NewProductService(db, rm)
	app.payments = services.NewPaymentService(db, rm)
	app.cleanup = jobs.NewCleanupJob(db, rm, logger)

	return app, nil
}

// newSessionStore picks Redis when an address is configured and the
// in-process list otherwise.
func (app *App) newSessionStore(ctx context.Context) (sessions.Store, error) {
	if app.config.RedisAddr == "" {
		app.logger.Warn(ctx, "redis address not set, session revocation list is kept in memory")
		return sessions.NewMemoryStore(), nil
	}

	client, err := sessions.Connect(ctx, sessions.RedisConfig{
		Addr: app.config.RedisAddr,
		DB:   app.config.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	app.closers = append(app.closers, client.Close)

	return sessions.NewRedisStore(client), nil
}

func newMailer(c *config.Config, l logging.Logger) (mailer.Mailer, error) {
	if c.SMTPHost == "" {
		return mailer.NewLogMailer(l), nil
	}

	m, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		User:     c.SMTPUser,
		Password: c.SMTPPassword,
		From:     c.SMTPFrom,
	})
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}
	return m, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accounts, app.products, app.payments, app.config.RequireAuth)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if app.config.MetricsAddr == "" {
		return
	}

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := metrics.Serve(ctx, app.config.MetricsAddr); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	stopCleanup, err := app.cleanup.Schedule(ctx, app.config.CleanupSchedule)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		return
	}
	defer stopCleanup()

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
}

// Close releases the database pool and the Redis client, newest first.
func (app *App) Close() error {
	var firstErr error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	app.closers = nil
	return firstErr
}
