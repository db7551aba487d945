package http

import (
	stdhttp "net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"storebot/app/internal/assistant"
	"storebot/app/internal/telegram"
	"storebot/app/internal/translit"
)

// Options configures the HTTP server wiring.
type Options struct {
	Pipeline      assistant.Pipeline
	Engine        *translit.Engine
	Chat          telegram.Handler
	WebhookSecret string
	Logger        *logrus.Logger
	SentryHub     *sentry.Hub
}

// Server wires the HTTP transport layer via Huma.
type Server struct {
	api           huma.API
	mux           *stdhttp.ServeMux
	pipeline      assistant.Pipeline
	engine        *translit.Engine
	chat          telegram.Handler
	webhookSecret string
	logger        *logrus.Logger
	sentry        *sentry.Hub
}

// NewServer constructs the HTTP server. The Telegram webhook route is only
// registered when a chat handler is supplied.
func NewServer(opts Options) (*Server, error) {
	if opts.Pipeline == nil {
		return nil, eris.New("pipeline is required")
	}
	if opts.Engine == nil {
		return nil, eris.New("transliteration engine is required")
	}

	secret := strings.TrimSpace(opts.WebhookSecret)
	if opts.Chat != nil && secret == "" {
		return nil, eris.New("webhook secret is required when the webhook is enabled")
	}

	mux := stdhttp.NewServeMux()
	config := huma.DefaultConfig("Storebot", "1.0.0")

	api := humago.New(mux, config)

	srv := &Server{
		api:           api,
		mux:           mux,
		pipeline:      opts.Pipeline,
		engine:        opts.Engine,
		chat:          opts.Chat,
		webhookSecret: secret,
		logger:        opts.Logger,
		sentry:        opts.SentryHub,
	}

	srv.registerMiddlewares()
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.mux
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.requestIDMiddleware(),
		s.recoveryMiddleware(),
		s.loggingMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.registerQueryRoute()
	s.registerTransliterateRoute()
	s.registerHealthRoute()
	if s.chat != nil {
		s.registerWebhookRoute()
	}
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mux.ServeHTTP(w, r)
}
