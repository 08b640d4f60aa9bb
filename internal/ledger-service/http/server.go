package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/dto"
	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/ledger"
	"github.com/ttamura24/Sports-Betting-Logs/pkg/contracts/events"
)

// Service são as operações do ledger expostas pela API
type Service interface {
	ListCatalog(ctx context.Context, kind ledger.CatalogKind) ([]ledger.CatalogEntry, error)
	CreateBet(ctx context.Context, id ledger.Identity, p ledger.BetPayload) (*ledger.BetRecord, error)
	GetBet(ctx context.Context, id ledger.Identity, betID string) (*ledger.BetRecord, error)
	UpdateBet(ctx context.Context, id ledger.Identity, betID string, p ledger.BetPayload) (*ledger.BetRecord, error)
	DeleteBet(ctx context.Context, id ledger.Identity, betID string) (*ledger.BetRecord, error)
	ListBets(ctx context.Context, id ledger.Identity, raw ledger.Filters) ([]ledger.EnrichedBet, error)
}

// Directory resolve o usuário do header em uma identidade
type Directory interface {
	Identify(ctx context.Context, userID string) (ledger.Identity, error)
}

type Publisher interface {
	PublishLedgerEvent(ctx context.Context, e events.BetLedgerEvent) error
}

// Feed é o hub do websocket do feed ao vivo
type Feed interface {
	Serve(w http.ResponseWriter, r *http.Request, id ledger.Identity)
}

type Server struct {
	log         *zap.Logger
	svc         Service
	users       Directory
	publ        Publisher
	feed        Feed
	metrics     *Metrics
	corsOrigins []string
}

// NewServer monta a API. feed pode ser nil (sem /ws).
func NewServer(log *zap.Logger, svc Service, users Directory, publ Publisher, feed Feed, m *Metrics, corsOrigins []string) *Server {
	return &Server{log: log, svc: svc, users: users, publ: publ, feed: feed, metrics: m, corsOrigins: corsOrigins}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", HeaderUserID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Group(func(r chi.Router) {
		r.Use(s.identify)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(15 * time.Second))

			r.Get("/api/catalogs/{kind}", s.listCatalog)

			r.Route("/api/bets", func(r chi.Router) {
				r.Post("/", s.createBet)
				r.Get("/", s.listBets)
				r.Get("/summary", s.summary)
				r.Get("/{id}", s.getBet)
				r.Put("/{id}", s.updateBet)
				r.Delete("/{id}", s.deleteBet)
			})
		})

		// sem Timeout: a conexão fica aberta
		if s.feed != nil {
			r.Get("/ws", s.serveFeed)
		}
	})

	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError traduz os erros do ledger em status HTTP
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ledger.ValidationError
	var sf *ledger.StoreFailure

	switch {
	case errors.As(err, &verr):
		s.metrics.rejected.Inc()
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, ledger.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "bet not found"})
	case errors.Is(err, ledger.ErrForbidden):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "not allowed to modify this bet"})
	case errors.Is(err, ledger.ErrUnknownKind):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "unknown catalog"})
	case errors.As(err, &sf):
		s.log.Error("storage failure",
			zap.String("op", sf.Op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(sf.Err),
		)
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "storage unavailable"})
	default:
		s.log.Error("unexpected error",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}
