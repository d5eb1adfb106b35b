package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/rs/cors"

	"aromasens/config"
	"aromasens/controllers"
	"aromasens/logger"
	"aromasens/models"
	"aromasens/observability"
	"aromasens/services"
	"aromasens/storage"
	"aromasens/utils"
)

// Server owns the HTTP listener and everything that must be closed with it
type Server struct {
	log        *logger.Logger
	cfg        config.Config
	store      storage.Store
	controller *controllers.Controller
	shutdown   func(context.Context) error
}

// NewServer wires storage, providers and services from cfg
func NewServer(ctx context.Context, log *logger.Logger, cfg config.Config) (*Server, error) {
	shutdown, err := observability.InitTracing(ctx, log, cfg.Tracing, cfg.Server.Mode)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	seeded, err := storage.Seed(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	log.Info("storage ready", "driver", cfg.Storage.Driver, "seeded", seeded)

	index := services.NewCatalogIndex(log, embeddingFunc(cfg, log))
	var ranker *services.CatalogIndex
	if _, err := index.Build(ctx, store); err != nil {
		log.Warn("catalog index unavailable, recommendations use catalog order", "error", err)
	} else {
		ranker = index
	}

	providers := registerProviders(cfg, log)
	ai := services.NewAIService(log, providers, cfg.Defaults.Provider)

	notifier, err := services.NewNotifier(cfg.Notifier, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	log.Info("notifier ready", "kind", notifier.Name())

	var recommender *services.Recommender
	if ranker != nil {
		recommender = services.NewRecommender(log, store, ai, ranker, notifier)
	} else {
		recommender = services.NewRecommender(log, store, ai, nil, notifier)
	}

	controller := controllers.NewController(controllers.Deps{
		Log:             log,
		AI:              ai,
		Engine:          services.NewConversationEngine(log, ai),
		Recommender:     recommender,
		Store:           store,
		DefaultLanguage: cfg.Defaults.Language,
		StorageDriver:   cfg.Storage.Driver,
	})

	return &Server{
		log:        log,
		cfg:        cfg,
		store:      store,
		controller: controller,
		shutdown:   shutdown,
	}, nil
}

// registerProviders builds one backend per configured slot. The default slot
// always ends up answering: when its backend is missing or reports itself
// unavailable, the dummy backend takes its place.
func registerProviders(cfg config.Config, log *logger.Logger) map[models.ProviderID]services.Provider {
	providers := make(map[models.ProviderID]services.Provider)
	available := make(map[models.ProviderID]bool)
	for id, pc := range cfg.Providers.Slots() {
		if pc.Kind == "" {
			continue
		}
		p, err := services.NewProvider(pc)
		if err != nil {
			log.Warn("provider not registered", "provider", id, "kind", pc.Kind, "error", err)
			continue
		}
		available[id] = p.Available()
		if !available[id] {
			log.Warn("provider registered but unavailable", "provider", id, "kind", p.Name())
		}
		providers[id] = p
		log.Info("provider registered", "provider", id, "kind", p.Name(), "model", p.Model())
	}

	def := cfg.Defaults.Provider
	if !available[def] {
		log.Warn("default provider unusable, using dummy backend", "provider", def)
		providers[def] = services.NewDummyProvider()
	}
	return providers
}

func openStore(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		store, err := storage.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return storage.NewMemStore(), nil
	}
}

func embeddingFunc(cfg config.Config, log *logger.Logger) chromem.EmbeddingFunc {
	if cfg.Catalog.Embedding != "openai" {
		return services.LocalEmbeddingFunc()
	}
	for _, pc := range cfg.Providers.Slots() {
		if pc.Kind == models.KindOpenAI && pc.APIKey != "" {
			return services.OpenAIEmbeddingFunc(pc.APIKey)
		}
	}
	log.Warn("openai embeddings requested but no OpenAI key configured, using local embeddings")
	return services.LocalEmbeddingFunc()
}

// Run serves until ctx is cancelled, then drains connections
func (s *Server) Run(ctx context.Context) error {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	srv := &http.Server{
		Addr:              s.cfg.Server.Port,
		Handler:           c.Handler(s.controller.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", s.cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("http shutdown failed", "error", err)
	}
	if err := s.shutdown(shutdownCtx); err != nil {
		s.log.Warn("tracer shutdown failed", "error", err)
	}
	return s.store.Close()
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	port := flag.String("port", "", "listen port (overrides PORT)")
	flag.Parse()

	bootLog := logger.NewNop()
	if err := utils.LoadEnvWithFallback(bootLog); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load env files: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
		if !strings.HasPrefix(cfg.Server.Port, ":") {
			cfg.Server.Port = ":" + cfg.Server.Port
		}
	}

	log, err := logger.New(cfg.Server.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := NewServer(ctx, log, cfg)
	if err != nil {
		log.Fatal("server init failed", "error", err)
	}
	if err := server.Run(ctx); err != nil {
		log.Fatal("server stopped with error", "error", err)
	}
}
