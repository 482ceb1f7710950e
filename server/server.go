// Package server exposes the TOON codec as an HTTP conversion service.
//
// Routes:
//
//	POST /v1/encode   JSON or YAML body -> TOON (text/toon)
//	POST /v1/decode   TOON body -> JSON, or YAML with ?format=yaml
//	POST /v1/check    JSON or YAML body -> round-trip report
//	GET  /healthz
//
// Errors are returned as {"error":{"code","message","requestId"}}.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/paularlott/toon"
	"github.com/paularlott/toon/internal/buildinfo"
	"github.com/paularlott/toon/internal/roundtrip"
	"github.com/paularlott/toon/value"
)

const (
	// DefaultMaxBodyBytes limits request bodies when Config.MaxBodyBytes is 0.
	DefaultMaxBodyBytes = 8 << 20

	defaultShutdownTimeout = 10 * time.Second
	maxIndentWidth         = 16

	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-Id"

	contentTypeTOON = "text/toon; charset=utf-8"
	contentTypeJSON = "application/json"
	contentTypeYAML = "application/yaml"
)

// Config configures a Server.
type Config struct {
	// Token, when set, is required as "Authorization: Bearer <token>" on /v1
	// routes.
	Token string

	// MaxBodyBytes limits request bodies (default DefaultMaxBodyBytes).
	MaxBodyBytes int64

	// Encode and Decode are the defaults for requests that do not override
	// them with query parameters.
	Encode toon.EncodeOptions
	Decode toon.DecodeOptions

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration

	// Logger receives one line per request. Defaults to stderr.
	Logger *log.Logger
}

// Server is an http.Handler serving the conversion API.
type Server struct {
	cfg    Config
	logger *log.Logger
	router chi.Router
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	if err := cfg.Encode.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Decode.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{cfg: cfg, logger: cfg.Logger}
	if s.logger == nil {
		s.logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
		})
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/encode", s.handle(s.encode))
		r.Post("/decode", s.handle(s.decode))
		r.Post("/check", s.handle(s.check))
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, &APIError{Status: http.StatusNotFound, Code: CodeInvalidInput, Message: "no such route"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, &APIError{Status: http.StatusMethodNotAllowed, Code: CodeInvalidInput, Message: "method not allowed"})
	})

	s.router = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe listens on addr and serves until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts HTTP/1.1 and cleartext HTTP/2 (h2c) connections on ln until
// ctx is cancelled. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           h2c.NewHandler(s, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}

type ctxKey int

const requestIDKey ctxKey = 0

// RequestIDFromContext returns the id assigned to the request, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"proto", r.Proto,
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", RequestIDFromContext(r.Context()),
		)
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	if s.cfg.Token == "" {
		return next
	}
	want := []byte("Bearer " + s.cfg.Token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="toon"`)
			s.writeError(w, r, NewUnauthorized("missing or invalid bearer token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handle adapts an error-returning handler.
func (s *Server) handle(fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.writeError(w, r, err)
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err, "request_id", RequestIDFromContext(r.Context()))
	} else {
		s.logger.Debug("request rejected", "code", apiErr.Code, "err", apiErr.Message)
	}

	writeJSON(w, apiErr.Status, errorBody{Error: errorDetail{
		Code:      apiErr.Code,
		Message:   apiErr.Message,
		RequestID: RequestIDFromContext(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// readDocument parses a JSON or YAML request body into a value tree.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (value.Value, error) {
	mediaType := contentTypeJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return value.Value{}, NewInvalidInput("invalid Content-Type %q", ct)
		}
		mediaType = mt
	}

	data, err := s.readBody(w, r)
	if err != nil {
		return value.Value{}, err
	}

	var doc value.Value
	switch {
	case mediaType == contentTypeJSON || strings.HasSuffix(mediaType, "+json"):
		doc, err = value.ParseJSON(data)
	case isYAML(mediaType):
		doc, err = value.ParseYAML(data)
	default:
		return value.Value{}, &APIError{
			Status:  http.StatusUnsupportedMediaType,
			Code:    CodeInvalidInput,
			Message: "Content-Type must be application/json or application/yaml",
		}
	}
	if err != nil {
		return value.Value{}, NewInvalidInput("%v", err)
	}
	return doc, nil
}

func isYAML(mediaType string) bool {
	switch mediaType {
	case contentTypeYAML, "application/x-yaml", "text/yaml", "text/x-yaml":
		return true
	}
	return false
}

func (s *Server) encodeOptions(r *http.Request) (*toon.EncodeOptions, error) {
	opts := s.cfg.Encode
	q := r.URL.Query()

	if d := q.Get("delimiter"); d != "" {
		delim, err := toon.ParseDelimiter(d)
		if err != nil {
			return nil, NewInvalidInput("%v", err)
		}
		opts.Delimiter = delim
	}
	if in := q.Get("indent"); in != "" {
		n, err := strconv.Atoi(in)
		if err != nil || n < 1 || n > maxIndentWidth {
			return nil, NewInvalidInput("indent must be between 1 and %d", maxIndentWidth)
		}
		opts.Indent = strings.Repeat(" ", n)
	}
	return &opts, nil
}

func (s *Server) decodeOptions(r *http.Request) (*toon.DecodeOptions, error) {
	opts := s.cfg.Decode
	q := r.URL.Query()

	if d := q.Get("delimiter"); d != "" {
		delim, err := toon.ParseDelimiter(d)
		if err != nil {
			return nil, NewInvalidInput("%v", err)
		}
		opts.Delimiter = delim
	}
	if st := q.Get("strict"); st != "" {
		strict, err := strconv.ParseBool(st)
		if err != nil {
			return nil, NewInvalidInput("strict must be a boolean, got %q", st)
		}
		opts.Strict = strict
	}
	return &opts, nil
}

func (s *Server) encode(w http.ResponseWriter, r *http.Request) error {
	opts, err := s.encodeOptions(r)
	if err != nil {
		return err
	}
	doc, err := s.readDocument(w, r)
	if err != nil {
		return err
	}

	out, err := toon.EncodeWithOptions(doc, opts)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", contentTypeTOON)
	w.WriteHeader(http.StatusOK)
	_, err = io.WriteString(w, out)
	return err
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) error {
	opts, err := s.decodeOptions(r)
	if err != nil {
		return err
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "yaml" {
		return NewInvalidInput("format must be json or yaml, got %q", format)
	}

	data, err := s.readBody(w, r)
	if err != nil {
		return err
	}
	doc, err := toon.DecodeWithOptions(string(data), opts)
	if err != nil {
		return err
	}

	if format == "yaml" {
		out, err := value.MarshalYAML(doc)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", contentTypeYAML)
		w.WriteHeader(http.StatusOK)
		_, err = w.Write(out)
		return err
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	return value.WriteJSON(w, doc, "")
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) error {
	enc, err := s.encodeOptions(r)
	if err != nil {
		return err
	}
	dec, err := s.decodeOptions(r)
	if err != nil {
		return err
	}
	doc, err := s.readDocument(w, r)
	if err != nil {
		return err
	}

	report, err := roundtrip.Check(doc, enc, dec)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, report)
	return nil
}
