// Package server exposes the HTTP surface: the retrieval-backed query
// endpoint, the messages-protocol bridge, the SSE channel, tool and admin
// endpoints.
package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/chaiwat-s/relayd/bridge"
	"github.com/chaiwat-s/relayd/llm"
	"github.com/chaiwat-s/relayd/rag"
	"github.com/chaiwat-s/relayd/server/store"
	"github.com/chaiwat-s/relayd/session"
	"github.com/chaiwat-s/relayd/tools"
	"github.com/chaiwat-s/relayd/vector"
)

// Config wires a Server. Client, Embedder, Index, and Dispatcher are
// required; Exchanges and rate limiting are optional.
type Config struct {
	Client     llm.Client
	Embedder   llm.Embedder
	Index      vector.Index
	Dispatcher *tools.Dispatcher
	Exchanges  store.ExchangeStore
	Logger     *zap.Logger

	Model        string
	EmbedModel   string
	Bearer       string
	RateLimitRPM int
}

type Server struct {
	client     llm.Client
	pipeline   *rag.Pipeline
	sessions   *session.Memory
	translator *bridge.Translator
	dispatcher *tools.Dispatcher
	exchanges  store.ExchangeStore
	logger     *zap.Logger
	validate   *validator.Validate

	model   string
	bearer  string
	limiter *ipLimiter
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sessions := session.NewMemory()

	var limiter *ipLimiter
	if cfg.RateLimitRPM > 0 {
		limiter = newIPLimiter(cfg.RateLimitRPM)
	}

	return &Server{
		client:     cfg.Client,
		pipeline:   rag.NewPipeline(cfg.Embedder, cfg.Index, sessions, cfg.EmbedModel),
		sessions:   sessions,
		translator: bridge.NewTranslator(cfg.Dispatcher),
		dispatcher: cfg.Dispatcher,
		exchanges:  cfg.Exchanges,
		logger:     logger,
		validate:   validator.New(),
		model:      cfg.Model,
		bearer:     cfg.Bearer,
		limiter:    limiter,
	}
}

// Handler returns the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /sse", s.handleSSE)
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("POST /v1/messages", s.handleMessages)
	mux.HandleFunc("POST /admin/ingest", s.handleIngest)
	mux.HandleFunc("GET /admin/exchanges", s.handleExchangeList)
	mux.HandleFunc("GET /admin/metrics", s.handleMetrics)
	mux.HandleFunc("POST /tool/web_fetch", s.handleToolWebFetch)
	mux.HandleFunc("POST /tool/file_read", s.handleToolFileRead)

	var h http.Handler = mux
	h = bearerMiddleware(s.bearer, h)
	h = rateLimitMiddleware(s.limiter, h)
	h = corsMiddleware(h)
	h = requestLogger(s.logger, h)
	return h
}
