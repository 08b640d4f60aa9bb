package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/dto"
	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/ledger"
	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/producer"
	"github.com/ttamura24/Sports-Betting-Logs/pkg/contracts/events"
)

// listCatalog retorna um catálogo de referência ordenado por label
func (s *Server) listCatalog(w http.ResponseWriter, r *http.Request) {
	kind, ok := ledger.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		s.writeError(w, r, ledger.ErrUnknownKind)
		return
	}

	entries, err := s.svc.ListCatalog(r.Context(), kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) createBet(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decodeBet(w, r)
	if !ok {
		return
	}

	id := identityFrom(r.Context())
	b, err := s.svc.CreateBet(r.Context(), id, payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.metrics.writes.WithLabelValues(events.BetCreated).Inc()
	s.publish(r, events.BetCreated, b)
	writeJSON(w, http.StatusCreated, dto.NewBetResponse(b))
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.GetBet(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBetResponse(b))
}

func (s *Server) updateBet(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decodeBet(w, r)
	if !ok {
		return
	}

	b, err := s.svc.UpdateBet(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "id"), payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.metrics.writes.WithLabelValues(events.BetUpdated).Inc()
	s.publish(r, events.BetUpdated, b)
	writeJSON(w, http.StatusOK, dto.NewBetResponse(b))
}

func (s *Server) deleteBet(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.DeleteBet(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.metrics.writes.WithLabelValues(events.BetDeleted).Inc()
	s.publish(r, events.BetDeleted, b)
	writeJSON(w, http.StatusOK, dto.DeleteBetResponse{Message: "Bet deleted successfully", Bet: dto.NewBetResponse(b)})
}

// listBets aplica os filtros da query string e devolve as linhas enriquecidas
func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.ListBets(r.Context(), identityFrom(r.Context()), filtersFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewLedgerRows(rows))
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.ListBets(r.Context(), identityFrom(r.Context()), filtersFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewSummaryResponse(ledger.Summarize(rows)))
}

func (s *Server) serveFeed(w http.ResponseWriter, r *http.Request) {
	s.feed.Serve(w, r, identityFrom(r.Context()))
}

func (s *Server) decodeBet(w http.ResponseWriter, r *http.Request) (ledger.BetPayload, bool) {
	var req dto.BetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return ledger.BetPayload{}, false
	}
	payload, verr := req.ToPayload()
	if verr != nil {
		s.writeError(w, r, verr)
		return ledger.BetPayload{}, false
	}
	return payload, true
}

// publish não falha a requisição: o registro já foi persistido
func (s *Server) publish(r *http.Request, typ string, b *ledger.BetRecord) {
	if s.publ == nil {
		return
	}
	if err := s.publ.PublishLedgerEvent(r.Context(), producer.LedgerEvent(typ, b)); err != nil {
		s.metrics.publishErrs.Inc()
		s.log.Warn("publish ledger event failed",
			zap.String("type", typ),
			zap.String("bet_id", b.ID),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
}

func filtersFrom(r *http.Request) ledger.Filters {
	q := r.URL.Query()
	return ledger.Filters{
		StartDate:    q.Get("startDate"),
		EndDate:      q.Get("endDate"),
		SportsbookID: q.Get("sportsbook"),
		TeamID:       q.Get("team"),
		BetTypeID:    q.Get("betType"),
		ResultID:     q.Get("result"),
		OwnerID:      q.Get("owner"),
	}
}
