package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/hrygo/acutie/internal/profile"
	"github.com/hrygo/acutie/plugin/ai"
	"github.com/hrygo/acutie/plugin/ai/cache"
	"github.com/hrygo/acutie/plugin/ai/crisis"
	"github.com/hrygo/acutie/plugin/ai/gateway"
	"github.com/hrygo/acutie/plugin/ai/intent"
	"github.com/hrygo/acutie/plugin/ai/metrics"
	"github.com/hrygo/acutie/plugin/ai/orchestrator"
	"github.com/hrygo/acutie/plugin/ai/prompt"
	"github.com/hrygo/acutie/plugin/ai/router"
	"github.com/hrygo/acutie/plugin/ai/session"
	"github.com/hrygo/acutie/store"
	"github.com/hrygo/acutie/store/db"
)

// openStore creates the durable store and applies pending migrations.
func openStore(ctx context.Context, p *profile.Profile) (*store.Store, error) {
	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	s := store.New(driver, p)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// engine is the fully wired triage stack with its lifecycle handles.
type engine struct {
	orchestrator *orchestrator.Orchestrator
	memory       *session.Manager
	cache        cache.CacheService
	store        *store.Store
	recorder     *metrics.Recorder
	registry     *prometheus.Registry

	closers []func() error
}

func (e *engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			slog.Warn("failed to release resource", "error", err)
		}
	}
}

func newEngine(ctx context.Context, p *profile.Profile) (*engine, error) {
	e := &engine{registry: prometheus.NewRegistry()}
	e.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	e.recorder = metrics.NewRecorder(e.registry)

	s, err := openStore(ctx, p)
	if err != nil {
		return nil, err
	}
	e.store = s
	e.closers = append(e.closers, s.Close)

	hot, err := newCache(p)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.cache = hot.CacheService
	e.closers = append(e.closers, hot.close)

	e.memory = session.NewManager(session.Config{
		Cache:    hot.CacheService,
		Durable:  s,
		TTL:      p.SessionTTL,
		Observer: e.recorder,
	})

	aiConfig := ai.NewConfigFromProfile(p)
	if err := aiConfig.Validate(); err != nil {
		e.Close()
		return nil, err
	}
	clients, err := ai.NewChatClients(aiConfig)
	if err != nil {
		e.Close()
		return nil, err
	}
	if len(clients) == 0 {
		slog.Warn("no model provider configured, every model call will use its scripted reply")
	}

	rt, err := newRouter()
	if err != nil {
		e.Close()
		return nil, err
	}
	gw := gateway.New(gateway.Config{
		Clients:       clients,
		Timeout:       p.ModelTimeout,
		MaxAttempts:   p.ModelMaxAttempts,
		RatePerSecond: p.ProviderRPS,
		Observer:      e.recorder,
	})

	var embedder ai.EmbeddingService
	if aiConfig.Embedding.APIKey != "" {
		embedder, err = ai.NewEmbeddingService(&aiConfig.Embedding)
		if err != nil {
			e.Close()
			return nil, err
		}
	} else {
		slog.Warn("no embedding provider configured, every message classifies as unclear")
	}

	prompts := prompt.NewRegistry()
	e.orchestrator, err = orchestrator.New(orchestrator.Config{
		Memory:     e.memory,
		Classifier: intent.NewClassifier(intent.Config{Embedder: embedder, Threshold: p.IntentThreshold}),
		Crisis:     crisis.NewEnsemble(crisis.Config{Invoker: gw, Router: rt, Prompts: prompts}),
		Invoker:    gw,
		Router:     rt,
		Prompts:    prompts,
		Observer:   e.recorder,
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

type hotCache struct {
	cache.CacheService
	close func() error
}

// newCache picks Redis when an address is configured, the in-process LRU otherwise.
func newCache(p *profile.Profile) (*hotCache, error) {
	if p.UseRedis() {
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:       p.RedisAddr,
			Password:   p.RedisPassword,
			DB:         p.RedisDB,
			DefaultTTL: p.SessionTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		slog.Info("session cache backed by redis", "addr", p.RedisAddr)
		return &hotCache{CacheService: rc, close: rc.Close}, nil
	}

	svc := cache.NewService(cache.ServiceConfig{DefaultTTL: p.SessionTTL})
	return &hotCache{CacheService: svc, close: func() error { svc.Close(); return nil }}, nil
}

// newRouter builds the routing table with overrides from the "routes" config key.
func newRouter() (*router.Service, error) {
	var raw map[string]router.ModelConfig
	if err := viper.UnmarshalKey("routes", &raw); err != nil {
		return nil, fmt.Errorf("decode routes: %w", err)
	}
	overrides := make(map[router.TaskType]router.ModelConfig, len(raw))
	for task, mc := range raw {
		overrides[router.TaskType(task)] = mc
	}
	return router.NewService(router.Config{Overrides: overrides}), nil
}

// serveMetrics exposes the registry on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		slog.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
}
