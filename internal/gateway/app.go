package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/storefront/internal/gateway/client"
	"github.com/dmitrijs2005/storefront/internal/gateway/config"
	"github.com/dmitrijs2005/storefront/internal/gateway/handlers"
	"github.com/dmitrijs2005/storefront/internal/gateway/httputil"
	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	backend *client.Backend
	limiter *httputil.RateLimiter
	server  *http.Server
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}

	trusted, err := c.TrustedPrefixes()
	if err != nil {
		return nil, err
	}

	backend, err := client.Dial(c.BackendAddr)
	if err != nil {
		return nil, fmt.Errorf("backend init error: %w", err)
	}

	limiter := httputil.NewRateLimiter(c.RateLimit)
	h := handlers.NewHandler(backend.Accounts, backend.Products, backend.Payments, c.RequestTimeout, logger)

	return &App{
		config:  c,
		logger:  logger,
		backend: backend,
		limiter: limiter,
		server: &http.Server{
			Addr:              c.HTTPAddr,
			Handler:           NewRouter(h, limiter, c.CORSOrigins, trusted, logger),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      c.RequestTimeout + 5*time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) serveHTTP(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = app.server.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr, "backend", app.config.BackendAddr)
	if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) serveMetrics(ctx context.Context, cancelFunc context.CancelFunc) {
	if app.config.MetricsAddr == "" {
		return
	}

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := metrics.Serve(ctx, app.config.MetricsAddr); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// sweepLimiter drops idle rate-limit buckets once a minute.
func (app *App) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			app.limiter.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		app.serveHTTP(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.serveMetrics(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sweepLimiter(ctx)
	}()

	wg.Wait()
	app.logger.Info(context.Background(), "Gateway stopped")
}

func (app *App) Close() error {
	return app.backend.Close()
}
