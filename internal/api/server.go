package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dgallion1/deckchat/internal/chat"
	"github.com/dgallion1/deckchat/internal/config"
	"github.com/dgallion1/deckchat/internal/parser"
	"github.com/dgallion1/deckchat/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// Responder answers one chat turn. *chat.Orchestrator implements it.
type Responder interface {
	Respond(ctx context.Context, credential, userMessage, document string) string
	Verify(ctx context.Context, credential string) error
	Model() string
	Stats() chat.StatsSnapshot
}

// Server is the HTTP API server for deckchat. It serves a single session;
// upload, clear and chat actions run one at a time.
type Server struct {
	router    chi.Router
	session   *session.Session
	chat      Responder
	extractor *parser.Extractor
	upgrader  websocket.Upgrader
	log       *slog.Logger
	cfg       config.Config
	wsIdle    time.Duration

	actionMu sync.Mutex
}

// NewServer creates and configures the HTTP server.
func NewServer(sess *session.Session, responder Responder, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		session:   sess,
		chat:      responder,
		extractor: parser.NewExtractor(log),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:    log,
		cfg:    cfg,
		wsIdle: defaultWSIdle,
	}
	s.setupRoutes()
	return s
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

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleSession)

		r.Post("/document", s.handleUpload)
		r.Get("/document", s.handleGetDocument)
		r.Delete("/document", s.handleClear)

		r.Post("/chat", s.handleChat)
		r.Get("/chat/ws", s.handleChatWS)
		r.Get("/messages", s.handleMessages)

		r.Put("/credential", s.handleSetCredential)
		r.Post("/credential/verify", s.handleVerifyCredential)

		r.Get("/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
