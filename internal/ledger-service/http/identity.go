package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/dto"
	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/ledger"
)

// HeaderUserID é preenchido pelo gateway depois da autenticação
const HeaderUserID = "X-User-Id"

type ctxKey struct{}

// identify resolve o usuário do header e coloca a Identity no contexto
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "missing " + HeaderUserID + " header"})
			return
		}

		id, err := s.users.Identify(r.Context(), userID)
		if err != nil {
			var sf *ledger.StoreFailure
			if errors.As(err, &sf) {
				s.writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "unknown user"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func identityFrom(ctx context.Context) ledger.Identity {
	id, _ := ctx.Value(ctxKey{}).(ledger.Identity)
	return id
}
