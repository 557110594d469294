package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reelchef/internal/api"
	"reelchef/internal/config"
	"reelchef/internal/extract"
	"reelchef/internal/importer"
	"reelchef/internal/logging"
	"reelchef/internal/platform/gemini"
	"reelchef/internal/platform/localllm"
	"reelchef/internal/platform/reel"
	"reelchef/internal/platform/thumbnail"
	"reelchef/internal/recipe"
)

const imagesRoute = "/images"

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	kv, closeKV, err := openKV(cfg.Storage)
	if err != nil {
		return fmt.Errorf("error opening %s storage: %w", cfg.Storage.Driver, err)
	}
	defer closeKV()
	store := recipe.NewCatalog(kv, cfg.Storage.Key, logger.Named("catalog"))

	gen, closeGen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("error creating AI client: %w", err)
	}
	defer closeGen()
	extractor := extract.New(gen, logger.Named("extract"))

	httpClient := &http.Client{Timeout: cfg.RequestTimeout()}
	fetcher := reel.NewClient(cfg.BackendAPIURL, httpClient, logger.Named("reel"))

	opts := importer.Options{NotesThreshold: cfg.NotesThreshold}
	if cfg.ImagesDir != "" {
		opts.Thumbnails = thumbnail.NewCache(cfg.ImagesDir, imagesRoute, cfg.ThumbnailWidth, httpClient)
	}
	imp := importer.New(fetcher, extractor, opts, logger.Named("importer"))

	handler := api.NewHandler(store, imp, extractor, logger.Named("api"), cfg.RequestTimeout())

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(handler, cfg)

	logger.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("storage", cfg.Storage.Driver))
	return r.Run(cfg.ListenAddr)
}

func newRouter(handler *api.Handler, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", api.SessionHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler.Register(r)
	if cfg.ImagesDir != "" {
		r.Static(imagesRoute, cfg.ImagesDir)
	}
	return r
}

func openKV(sc config.StorageConfig) (recipe.KV, func(), error) {
	noop := func() {}
	switch sc.Driver {
	case config.DriverMemory:
		return recipe.NewMemoryKV(), noop, nil
	case config.DriverFile:
		kv, err := recipe.NewFileKV(sc.Path)
		return kv, noop, err
	case config.DriverPostgres:
		kv, err := recipe.NewPostgresKV(sc.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return kv, func() { kv.Close() }, nil
	case config.DriverRedis:
		kv, err := recipe.NewRedisKV(sc.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return kv, func() { kv.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}

// newGenerator prefers Gemini and falls back to a local model. With neither
// configured it returns a nil generator and the extractor reports the gap on use.
func newGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (extract.Generator, func(), error) {
	switch {
	case cfg.GeminiAPIKey != "":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, func() {}, err
		}
		logger.Info("using Gemini for text extraction")
		return client, func() { client.Close() }, nil
	case cfg.LocalLLMURL != "":
		logger.Info("using local LLM for text extraction", zap.String("url", cfg.LocalLLMURL))
		return localllm.NewClient(cfg.LocalLLMURL, cfg.LocalLLMModel, &http.Client{Timeout: cfg.RequestTimeout()}), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
