package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"sbos/internal/admin"
	"sbos/internal/audit"
	"sbos/internal/capability"
	"sbos/internal/guard"
	guardmetrics "sbos/internal/guard/metrics"
	"sbos/internal/instance"
	"sbos/internal/instance/lifecycle"
	jwttoken "sbos/internal/jwt_token"
	"sbos/internal/monitor"
	monitormetrics "sbos/internal/monitor/metrics"
	"sbos/internal/oracle"
	"sbos/internal/platform/config"
	"sbos/internal/platform/httpserver"
	"sbos/internal/platform/logger"
	"sbos/internal/platform/metrics"
	"sbos/internal/platform/middleware"
	"sbos/internal/platform/watcher"
	"sbos/internal/points"
	"sbos/internal/policy"
	"sbos/internal/proxy"
	"sbos/internal/ratelimit"
	ratelimitmetrics "sbos/internal/ratelimit/metrics"
	httptransport "sbos/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("sbos exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close(log)

	graph, err := oracle.NewGraph(oracle.Model{})
	if err != nil {
		return err
	}
	resolver, err := capability.NewResolver(graph, capability.Profiles{}, capability.Users{}, capability.WithLogger(log))
	if err != nil {
		return err
	}
	engine, err := policy.NewEngine(b.policyStore(), policy.WithLogger(log))
	if err != nil {
		return err
	}
	directory := points.NewDirectory()
	proxyOpts, err := b.proxyOptions(log)
	if err != nil {
		return err
	}
	values := proxy.New(nil, proxyOpts...)

	limiter, err := ratelimit.New(b.bucketStore(),
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(ratelimitmetrics.New(reg)),
	)
	if err != nil {
		return err
	}

	lc, err := newLifecycle(cfg, log)
	if err != nil {
		return err
	}
	registry, err := instance.New(resolver, lc,
		instance.WithLogger(log),
		instance.WithBuckets(limiter),
		instance.WithBaseURL(cfg.Server.BaseURL),
	)
	if err != nil {
		return err
	}

	sink, outbox, err := b.auditSink(cfg)
	if err != nil {
		return err
	}
	auditOpts := []audit.Option{audit.WithLogger(log)}
	if outbox != nil {
		auditOpts = append(auditOpts, audit.WithOutbox(outbox))
	}
	auditLog, err := audit.New(b.auditStore(), auditOpts...)
	if err != nil {
		return err
	}

	guardSvc, err := guard.New(registry, limiter, directory, engine, values, auditLog,
		guard.WithLogger(log),
		guard.WithMetrics(guardmetrics.New(reg)),
	)
	if err != nil {
		return err
	}

	mon, err := monitor.New(values, directory, registry, engine,
		monitor.WithLogger(log),
		monitor.WithMetrics(monitormetrics.New(reg)),
		monitor.WithTick(cfg.Engine.MonitorTick),
	)
	if err != nil {
		return err
	}

	paths := admin.PathsIn(cfg.Engine.ConfigDir)
	adminSvc, err := admin.New(paths, admin.Components{
		Graph:        graph,
		Source:       points.GraphSource{Graph: graph},
		Capabilities: resolver,
		Policy:       engine,
		Directory:    directory,
		Values:       values,
		Registry:     registry,
		Monitor:      mon,
		Reports:      auditLog,
	}, admin.WithLogger(log), admin.WithMetrics(metrics.New(reg)))
	if err != nil {
		return err
	}
	src, err := paths.Load()
	if err != nil {
		return err
	}
	if err := adminSvc.Apply(ctx, src); err != nil {
		return err
	}
	log.InfoContext(ctx, "configuration loaded", "dir", cfg.Engine.ConfigDir)

	var auth middleware.AdminValidator
	if cfg.Server.AdminJWTKey != "" {
		auth = jwttoken.NewJWTService(cfg.Server.AdminJWTKey, jwttoken.Issuer)
	} else {
		log.WarnContext(ctx, "SBOS_ADMIN_JWT_KEY unset, admin endpoints are unauthenticated")
	}
	router := httptransport.NewRouter(httptransport.RouterConfig{
		App:    httptransport.NewAppHandler(guardSvc, log),
		Admin:  httptransport.NewAdminHandler(adminSvc, log),
		Auth:   auth,
		Gather: reg,
		Logger: log,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(gctx, "starting sbos", "addr", cfg.Server.Addr)
		return httpserver.Serve(gctx, srv, shutdownTimeout)
	})
	g.Go(func() error {
		return mon.Run(gctx)
	})
	if sink != nil {
		worker := audit.NewWorker(sink, outbox, log)
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}
	if cfg.Engine.WatchConfig {
		w, err := watcher.New(paths.Files(), adminSvc.Reload, watcher.WithLogger(log))
		if err != nil {
			return err
		}
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	err = g.Wait()
	stopped := registry.StopAll(context.WithoutCancel(ctx))
	log.Info("sbos stopped", "instances_stopped", stopped)
	return err
}

func newLifecycle(cfg config.Config, log *slog.Logger) (instance.Lifecycle, error) {
	if len(cfg.Engine.AppCommand) == 0 {
		return &lifecycle.Noop{}, nil
	}
	p, err := lifecycle.NewProcess(cfg.Engine.AppCommand, log)
	if err != nil {
		return nil, err
	}
	return p, nil
}
