package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"ProductCatalog/internal/catalog"
	"ProductCatalog/internal/config"
	"ProductCatalog/internal/telemetry"
	"ProductCatalog/pkg/kit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := kit.NewLogger(cfg.Service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	telem, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatal("init telemetry failed", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	src := catalogSource(cfg.Catalog)
	store, err := catalog.Open(ctx, src)
	if err != nil {
		log.Fatal("catalog load failed", zap.Error(err))
	}
	log.Info("catalog loaded",
		zap.String("source", src.Name()),
		zap.Int("products", store.Len()),
		zap.Bool("tracing_export", telem.Exporting),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &catalog.Server{
		Store:  store,
		Engine: catalog.NewEngine(telem.Tracer()),
		Log:    log,
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:                log,
		Service:            cfg.Service,
		Registry:           reg,
		MetricsEnabled:     cfg.Metrics.Enabled,
		MetricsToken:       cfg.Metrics.Token,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	traced := otelhttp.NewHandler(h, cfg.Service,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)

	if err := kit.RunHTTPServer(":"+cfg.Server.Port, traced, log, cfg.Server.ShutdownTimeout); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func catalogSource(cfg config.CatalogConfig) catalog.Source {
	switch {
	case cfg.DatabaseURL != "":
		return catalog.NewPostgresSource(cfg.DatabaseURL, cfg.LoadTimeout)
	case cfg.File != "":
		return catalog.FileSource(cfg.File)
	default:
		return catalog.BundledSource()
	}
}
