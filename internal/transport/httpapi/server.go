// Package httpapi exposes the assistant over a JSON and SSE HTTP API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/internal/providers/gateway"
	"github.com/sandevgo/sazed/internal/providers/tools"
	"github.com/sandevgo/sazed/internal/service/agent"
	"github.com/sandevgo/sazed/internal/service/archive"
	"github.com/sandevgo/sazed/internal/service/memory"
	"github.com/sandevgo/sazed/pkg/log"
)

type Chatter interface {
	Run(ctx context.Context, sessionID, text string) (agent.Result, error)
	RunStream(ctx context.Context, sessionID, text string, emit func(agent.Event)) (agent.Result, error)
}

type Processor interface {
	Process(ctx context.Context, sessionID string) (memory.Result, error)
}

type Archiver interface {
	Run(ctx context.Context, olderThan time.Duration) (archive.Report, error)
}

type ToolCatalog interface {
	Catalog() []tools.Info
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Agent     Chatter
	Sessions  core.SessionRepository
	Memory    core.MemoryRepository
	Distiller Processor
	Archiver  Archiver
	Tools     ToolCatalog
	// KB proxies /kb requests; nil answers 503.
	KB *gateway.Client
}

type Server struct {
	router     chi.Router
	httpServer *http.Server
	deps       Deps
}

func New(ctx context.Context, cfg *config.AppConfig, deps Deps) *Server {
	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(requestLogger(log.FromCtx(ctx)))
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router: router,
		deps:   deps,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	router.Get("/health", s.handleHealth)

	router.Group(func(r chi.Router) {
		r.Use(apiKeyAuth(cfg.APIKey))
		r.Use(rateLimitByIP(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))

		r.Post("/chat", s.handleChat)
		r.Post("/chat/stream", s.handleChatStream)

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", s.handleListConversations)
			r.Post("/archive", s.handleArchive)
			r.Get("/{id}", s.handleGetConversation)
			r.Post("/{id}/process", s.handleProcessConversation)
		})

		r.Route("/memory", func(r chi.Router) {
			r.Get("/", s.handleListMemory)
			r.Put("/", s.handleUpsertMemory)
			r.Delete("/{id}", s.handleDeleteMemory)
		})

		r.Get("/tools", s.handleListTools)

		r.Route("/kb", func(r chi.Router) {
			r.Get("/stats", s.proxyKB(http.MethodGet, "/kb/stats"))
			r.Get("/sources", s.proxyKB(http.MethodGet, "/kb/sources"))
			r.Get("/files", s.proxyKB(http.MethodGet, "/kb/files"))
			r.Post("/search", s.handleKBSearch)
			r.Post("/sync", s.handleKBSync)
			r.Delete("/files/{id}", s.handleKBDeleteFile)
			r.Delete("/", s.proxyKB(http.MethodDelete, "/kb"))
		})
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.httpServer.Addr).Msg("http api listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "sazed"})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Tools.Catalog())
}
