package main

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/chaiwat-s/relayd/config"
	"github.com/chaiwat-s/relayd/llm"
	"github.com/chaiwat-s/relayd/logging"
	"github.com/chaiwat-s/relayd/server"
	"github.com/chaiwat-s/relayd/server/store"
	"github.com/chaiwat-s/relayd/tools"
	"github.com/chaiwat-s/relayd/vector"
)

const embeddingDimension = 1536

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer logger.Sync()

	client := llm.NewOpenAIClientWithConfig(llm.ClientConfig{
		APIKey:  cfg.Provider.OpenAIKey,
		BaseURL: cfg.Provider.BaseURL,
		Timeout: 60,
	})

	index := newIndex(cfg, logger)
	defer index.Close()

	dispatcher := tools.NewDefaultDispatcher(cfg.Tools.AllowWebFetch, cfg.Tools.AllowFileRead)

	exchanges, err := store.NewSQLiteExchangeStore(cfg.Store.ExchangeDB)
	if err != nil {
		logger.Fatal("open exchange store", zap.Error(err))
	}
	defer exchanges.Close()

	srv := server.New(server.Config{
		Client:       client,
		Embedder:     client,
		Index:        index,
		Dispatcher:   dispatcher,
		Exchanges:    exchanges,
		Logger:       logger,
		Model:        cfg.Provider.Model,
		EmbedModel:   cfg.Provider.EmbeddingModel,
		Bearer:       cfg.App.Bearer,
		RateLimitRPM: cfg.App.RateLimitRPM,
	})

	count, _ := index.Count(context.Background())
	logger.Info("starting relayd",
		zap.String("addr", ":"+cfg.App.Port),
		zap.String("model", cfg.Provider.Model),
		zap.String("embedding_model", cfg.Provider.EmbeddingModel),
		zap.Int("documents", count),
		zap.Int("web_fetch_prefixes", len(cfg.Tools.AllowWebFetch)),
		zap.Int("file_read_dirs", len(cfg.Tools.AllowFileRead)),
		zap.Bool("bearer_auth", cfg.App.Bearer != ""),
	)

	if err := http.ListenAndServe(":"+cfg.App.Port, srv.Handler()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// newIndex picks the retrieval backend: pgvector when a postgres DSN is
// configured, otherwise the JSON snapshot store.
func newIndex(cfg *config.Config, logger *zap.Logger) vector.Index {
	dsn := cfg.Store.DatabaseDSN
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		idx, err := vector.NewPgIndex(dsn, embeddingDimension)
		if err != nil {
			logger.Fatal("open pgvector index", zap.Error(err))
		}
		logger.Info("using pgvector index")
		return idx
	}

	idx, err := vector.LoadSnapshotStore(cfg.Store.RagPath)
	if err != nil {
		logger.Fatal("load document store", zap.Error(err))
	}
	logger.Info("using snapshot document store", zap.String("path", cfg.Store.RagPath))
	return idx
}
