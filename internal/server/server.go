package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"voicegate/internal/config"
	"voicegate/internal/leads"
	"voicegate/internal/orchestrator"
	"voicegate/internal/ratelimit"
	"voicegate/internal/relay"
)

const (
	maxBodyBytes        = 10 << 20 // base64 audio uploads dominate body size
	shutdownGracePeriod = 10 * time.Second
	readTimeout         = 30 * time.Second
	writeTimeout        = 45 * time.Second
	idleTimeout         = 120 * time.Second
)

type Server struct {
	cfg     config.Config
	orch    *orchestrator.Orchestrator
	relay   *relay.Relay
	leads   *leads.Service
	limiter ratelimit.Store
	app     *echo.Echo
	address string
}

// New constructs an HTTP server wired with routing and middleware.
func New(cfg config.Config, orch *orchestrator.Orchestrator, rl *relay.Relay, leadSvc *leads.Service, limiter ratelimit.Store) (*Server, error) {
	if orch == nil {
		return nil, errors.New("orchestrator must not be nil")
	}
	if rl == nil {
		return nil, errors.New("relay must not be nil")
	}
	if limiter == nil {
		return nil, errors.New("rate limit store must not be nil")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency: true,
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"error", v.Error,
			)
			return nil
		},
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))
	e.Use(corsGate(cfg.CORS.AllowedOrigins))

	srv := &Server{
		cfg:     cfg,
		orch:    orch,
		relay:   rl,
		leads:   leadSvc,
		limiter: limiter,
		app:     e,
		address: fmt.Sprintf(":%d", cfg.Server.Port),
	}

	srv.registerRoutes()

	return srv, nil
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("starting server", "addr", s.address)

	httpServer := &http.Server{
		Addr:         s.address,
		Handler:      s.app,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		slog.Info("server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.app.GET("/healthz", s.handleHealth)
	s.app.GET("/voices", s.handleVoices)

	// Attach the limiter per route: an empty-prefix Group with middleware
	// registers catch-all RouteNotFound routes, turning 405s into 404s.
	limited := s.rateLimit()
	s.app.POST("/tts", s.handleTTS, limited)
	s.app.POST("/stt", s.handleSTT, limited)
	s.app.POST("/chat", s.handleChat, limited)

	s.app.POST("/events", s.handleEvents)
	s.app.POST("/qualify", s.handleQualify)
	s.app.POST("/summarize", s.handleSummarize)
}

func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return requestError{
				Status:  http.StatusBadRequest,
				Code:    "invalid_request",
				Message: "request body is required",
			}
		}
		return requestError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_request",
			Message: fmt.Sprintf("invalid JSON payload: %v", err),
		}
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return requestError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_request",
			Message: "request body must contain a single JSON object",
		}
	}
	return nil
}

type requestError struct {
	Status  int
	Code    string
	Message string
}

func (e requestError) Error() string {
	return e.Message
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, errorBody{Error: code, Message: message})
}

// errorHandler renders the stable machine-readable envelope. Upstream
// details never reach the client from here; handlers log those themselves.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = writeError(c, reqErr.Status, reqErr.Code, reqErr.Message)
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code := "invalid_request"
		switch httpErr.Code {
		case http.StatusMethodNotAllowed:
			code = "method_not_allowed"
		case http.StatusNotFound:
			code = "not_found"
		case http.StatusInternalServerError:
			code = "server_error"
		}
		_ = writeError(c, httpErr.Code, code, fmt.Sprintf("%v", httpErr.Message))
		return
	}

	_ = writeError(c, http.StatusInternalServerError, "server_error", "internal server error")
}
