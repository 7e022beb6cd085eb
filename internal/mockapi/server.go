// Package mockapi serves the product catalog over HTTP. It stands in for the
// storefront's backend during development and in tests.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/five82/shopfront/internal/catalog"
)

// Options configure the server.
type Options struct {
	// Catalog defaults to the embedded seed.
	Catalog *Catalog
	// Delay is added to every API response to make loading states visible.
	Delay  time.Duration
	Logger *zap.Logger
}

// Server is the mock product API.
type Server struct {
	catalog *Catalog
	delay   time.Duration
	log     *zap.Logger
	router  chi.Router
}

// New builds the server and its routes.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Catalog == nil {
		seed, err := LoadSeed()
		if err != nil {
			return nil, err
		}
		opts.Catalog = seed
	}
	s := &Server{catalog: opts.Catalog, delay: opts.Delay, log: opts.Logger}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, "route_not_found", fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, "method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(api chi.Router) {
		api.Use(s.latency)
		api.Get("/products", s.listProducts)
		api.Get("/products/{productID}", s.getProduct)
		api.Get("/categories", s.listCategories)
	})
	return r
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := catalog.ListQuery{
		Page:      atoi(values.Get("page"), 1),
		Limit:     atoi(values.Get("limit"), DefaultLimit),
		Search:    strings.TrimSpace(values.Get("search")),
		Category1: strings.TrimSpace(values.Get("category1")),
		Category2: strings.TrimSpace(values.Get("category2")),
		Sort:      strings.TrimSpace(values.Get("sort")),
	}
	writeJSON(w, http.StatusOK, s.catalog.List(q))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	product, ok := s.catalog.Get(id)
	if !ok {
		writeError(w, r, "product_not_found", fmt.Sprintf("product %s not found", id), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Categories())
}

func (s *Server) latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Serve runs the API on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown mock api: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve mock api: %w", err)
	}
}

// ListenAndServe binds addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.log.Info("mock api listening", zap.String("addr", ln.Addr().String()))
	return s.Serve(ctx, ln)
}

func atoi(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, code, message string, status int) {
	payload := map[string]any{
		"error":   code,
		"message": message,
		"status":  status,
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		payload["request_id"] = id
	}
	writeJSON(w, status, payload)
}
