package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pthm/hxsite"
	hxsiteecho "github.com/pthm/hxsite/adapters/echo"
	"github.com/pthm/hxsite/internal/config"
	"github.com/pthm/hxsite/lib/async"
	"github.com/pthm/hxsite/lib/pexels"
	"github.com/pthm/hxsite/lib/subscribe"
	"github.com/pthm/hxsite/lib/telemetry"
	"github.com/pthm/hxsite/site/components"
	"github.com/pthm/hxsite/site/views"
)

// App is a configured site ready to serve.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	registry *prometheus.Registry
	store    *views.Store
	echo     *echo.Echo
}

// AppOption configures New.
type AppOption func(*appOptions)

type appOptions struct {
	source    async.RemoteDataSource
	sink      async.SubscriptionSink
	scheduler async.Scheduler
	version   string
}

// WithSource replaces the Pexels client.
func WithSource(src async.RemoteDataSource) AppOption {
	return func(o *appOptions) { o.source = src }
}

// WithSink replaces the configured subscription sink.
func WithSink(sink async.SubscriptionSink) AppOption {
	return func(o *appOptions) { o.sink = sink }
}

// WithScheduler sets where controllers run remote calls.
func WithScheduler(s async.Scheduler) AppOption {
	return func(o *appOptions) { o.scheduler = s }
}

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) AppOption {
	return func(o *appOptions) { o.version = v }
}

// New wires the site from cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...AppOption) (*App, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var metrics *telemetry.Metrics
	if cfg.Metrics.On() {
		metrics = telemetry.NewMetrics(
			telemetry.WithRegistry(promReg),
			telemetry.WithBuckets(cfg.Metrics.Buckets),
		)
	}

	src := o.source
	if src == nil {
		src = pexels.New(cfg.Gallery.APIKey, cfg.Gallery.BaseURL, cfg.Gallery.Timeout)
		if cfg.Gallery.APIKey == "" {
			logger.Warn("no Pexels API key configured; the gallery will show an error")
		}
	}
	sink := o.sink
	if sink == nil {
		var err error
		sink, err = subscribe.New(subscribe.Options{
			Kind:            cfg.Newsletter.Sink,
			WebhookURL:      cfg.Newsletter.WebhookURL,
			Timeout:         cfg.Newsletter.Timeout,
			Bucket:          cfg.Newsletter.S3.Bucket,
			Prefix:          cfg.Newsletter.S3.Prefix,
			Region:          cfg.Newsletter.S3.Region,
			Endpoint:        cfg.Newsletter.S3.Endpoint,
			AccessKeyID:     cfg.Newsletter.S3.AccessKeyID,
			SecretAccessKey: cfg.Newsletter.S3.SecretAccessKey,
			Logger:          logger,
		})
		if err != nil {
			return nil, err
		}
	}

	secret := []byte(cfg.Server.Secret)
	if len(secret) == 0 {
		var err error
		if secret, err = hxsiteecho.RandomKey(); err != nil {
			return nil, err
		}
		logger.Warn("no server secret configured; using a random key, section URLs will not survive a restart")
	}
	reg, err := hxsite.NewRegistry(secret, hxsite.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}

	store := views.NewStore(
		views.WithTTL(cfg.Views.TTL),
		views.WithSweepInterval(cfg.Views.SweepInterval),
		views.WithMaxViews(cfg.Views.MaxViews),
		views.WithLogger(logger),
		views.WithMetrics(metrics),
	)
	set, err := components.Init(reg, store, cfg.Views.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("site: register components: %w", err)
	}

	deps := Deps{
		Registry:   reg,
		Store:      store,
		Components: set,
		Controllers: Controllers{
			Source: telemetry.InstrumentSource(src, metrics, nil),
			Sink:   telemetry.InstrumentSink(sink, metrics, nil),
			Query: async.RemoteQuery{
				Keyword:  cfg.Gallery.Keyword,
				PageSize: cfg.Gallery.PageSize,
			},
			Metrics:   metrics,
			Scheduler: o.scheduler,
		},
		Logger:      logger,
		MetricsPath: cfg.Metrics.Path,
		Version:     o.version,
	}
	if cfg.Metrics.On() {
		deps.Gatherer = promReg
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		registry: promReg,
		store:    store,
		echo:     NewServer(deps),
	}, nil
}

// Handler returns the site's HTTP handler.
func (a *App) Handler() http.Handler {
	return a.echo
}

// Store returns the page view store.
func (a *App) Store() *views.Store {
	return a.store
}

// Run serves until ctx is cancelled, then shuts down gracefully and
// destroys every open view.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		a.store.Run(ctx)
	}()

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", srv.Addr)
		errc <- a.echo.StartServer(srv)
	}()

	var err error
	select {
	case err = <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer stop()
		a.logger.Info("shutting down")
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			err = fmt.Errorf("site: shutdown: %w", serr)
		}
		if serveErr := <-errc; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
			err = serveErr
		}
	}

	cancel()
	<-sweepDone
	return err
}
