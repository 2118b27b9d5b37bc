package api

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docsections/internal/config"
	"github.com/dgallion1/docsections/internal/extract"
	"github.com/dgallion1/docsections/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP surface for docsections: an upload page, result
// pages with a download link, and a small JSON API.
type Server struct {
	router   chi.Router
	pipeline *pipeline.Pipeline
	results  *pipeline.ResultStore
	chat     *extract.ChatClient
	log      *slog.Logger
	cfg      config.Config
	usage    template.HTML
}

// NewServer creates and configures the HTTP server. chat may be nil, in
// which case the stats endpoint reports itself unavailable.
func NewServer(p *pipeline.Pipeline, results *pipeline.ResultStore, chat *extract.ChatClient, log *slog.Logger, cfg config.Config) (*Server, error) {
	usage, err := renderUsage()
	if err != nil {
		return nil, err
	}
	s := &Server{
		pipeline: p,
		results:  results,
		chat:     chat,
		log:      log,
		cfg:      cfg,
		usage:    usage,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	// Browser UI. The download link is open; result ids are random UUIDs.
	r.Get("/", s.handleIndex)
	r.Post("/parse", s.handleParsePage)
	r.Get("/results/{id}/download", s.handleDownload)

	// JSON API.
	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/parse", s.handleParseAPI)
		r.Get("/results/{id}", s.handleDownload)
		r.Get("/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
