// Package api serves the backtest analytics over HTTP.
package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"backtest-results-api/internal/observability"
	"backtest-results-api/internal/reporting"
)

// Options configures the HTTP server.
type Options struct {
	// CORSOrigins lists origins allowed to call the API with credentials.
	// "*" allows any origin.
	CORSOrigins []string
	Logger      *log.Logger
}

// Server routes API requests to the reporting service.
type Server struct {
	svc       *reporting.Service
	logger    *log.Logger
	origins   map[string]struct{}
	anyOrigin bool

	metrics map[string]resultFunc
}

// resultFunc computes the JSON body of a series route.
type resultFunc func(ctx context.Context, strategyID, periodID string) (any, error)

type errorResponse struct {
	Message string `json:"message"`
}

type balanceResponse struct {
	Balance float64 `json:"balance"`
}

type profitResponse struct {
	Profit int64 `json:"profit"`
}

type initialBalanceResponse struct {
	InitialBalance float64 `json:"initial_balance"`
}

// NewServer creates an API server over svc.
func NewServer(svc *reporting.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	s := &Server{
		svc:     svc,
		logger:  logger,
		origins: make(map[string]struct{}),
	}
	for _, o := range opts.CORSOrigins {
		if o == "*" {
			s.anyOrigin = true
			continue
		}
		s.origins[o] = struct{}{}
	}

	s.metrics = map[string]resultFunc{
		"trades":        adapt(svc.BalanceSeries),
		"mdd":           adapt(svc.Drawdown),
		"longest-trade": adapt(svc.LongestTrades),
		"unique-trades": adapt(svc.UniqueTrades),
		"earned":        adapt(svc.Earnings),
		"maximum-gain":  adapt(svc.MaximumGain),
		"maximum-loss":  adapt(svc.MaximumLoss),
		"last-balance": func(ctx context.Context, strategyID, periodID string) (any, error) {
			balance, err := svc.LastBalance(ctx, strategyID, periodID)
			if err != nil {
				return nil, err
			}
			return balanceResponse{Balance: balance}, nil
		},
		"profit": func(ctx context.Context, strategyID, periodID string) (any, error) {
			profit, err := svc.Profit(ctx, strategyID, periodID)
			if err != nil {
				return nil, err
			}
			return profitResponse{Profit: profit}, nil
		},
	}

	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.instrument("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "Backtest results API\n")
	}))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("GET /metrics", observability.Handler())

	mux.HandleFunc("GET /api/strategies", s.instrument("/api/strategies", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.svc.Catalog())
	}))

	// Market data of the strategy's market series
	mux.HandleFunc("GET /api/data/{strategy}/{period}",
		s.serve("/api/data/{strategy}/{period}", adapt(s.svc.MarketData)))
	mux.HandleFunc("GET /api/data/{strategy}/{period}/period",
		s.instrument("/api/data/{strategy}/{period}/period", s.handleMarketPeriod))
	mux.HandleFunc("GET /api/data/{strategy}/{period}/initial-balance",
		s.serve("/api/data/{strategy}/{period}/initial-balance", func(ctx context.Context, strategyID, periodID string) (any, error) {
			initial, err := s.svc.InitialBalance(ctx, strategyID, periodID)
			if err != nil {
				return nil, err
			}
			return initialBalanceResponse{InitialBalance: initial}, nil
		}))

	// Analytics, one metric per trailing segment
	mux.HandleFunc("GET /api/{strategy}/{period}/{metric}", s.handleMetric)

	return s.withRequestID(s.withAccessLog(s.withCORS(mux)))
}

func (s *Server) handleMetric(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("metric")
	f, ok := s.metrics[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "unknown metric " + name})
		return
	}
	s.serve("/api/{strategy}/{period}/"+name, f)(w, r)
}

func (s *Server) handleMarketPeriod(w http.ResponseWriter, r *http.Request) {
	strategyID, periodID := r.PathValue("strategy"), r.PathValue("period")
	period, err := s.svc.MarketPeriod(r.Context(), strategyID, periodID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if period == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "no market data for " + strategyID + "/" + periodID})
		return
	}
	writeJSON(w, http.StatusOK, period)
}

// serve wraps f as an instrumented handler reading the series from the path.
func (s *Server) serve(route string, f resultFunc) http.HandlerFunc {
	return s.instrument(route, func(w http.ResponseWriter, r *http.Request) {
		result, err := f(r.Context(), r.PathValue("strategy"), r.PathValue("period"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})
}

// writeError maps missing data to 404 and everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if reporting.IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: err.Error()})
		return
	}
	s.logger.Printf("%s %s failed (request %s): %v", r.Method, r.URL.Path, RequestID(r.Context()), err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// adapt erases the result type of a service method.
func adapt[T any](f func(context.Context, string, string) (T, error)) resultFunc {
	return func(ctx context.Context, strategyID, periodID string) (any, error) {
		v, err := f(ctx, strategyID, periodID)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
