package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"contas/internal/core"
	"contas/internal/metrics"
	"contas/internal/session"
)

type loginRequest struct {
	PIN string `json:"pin"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, err := s.sessions.Login(req.PIN)
	switch {
	case errors.Is(err, session.ErrDisabled):
		writeError(w, http.StatusBadRequest, "authentication is disabled")
	case errors.Is(err, session.ErrBadPIN):
		writeError(w, http.StatusUnauthorized, "wrong pin")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, loginResponse{Token: token})
	}
}

// handleLogout exists for client symmetry. Tokens are stateless, so logging
// out is just the client discarding its token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	created, err := s.container.Materialize(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if created == nil {
		created = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, created)
}

type transferRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleReinforceGoal(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+req.Amount)
		return
	}
	goal, err := s.container.ReinforceGoal(r.Context(), chi.URLParam(r, "id"), amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleWithdrawGoal(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+req.Amount)
		return
	}
	goal, err := s.container.WithdrawGoal(r.Context(), chi.URLParam(r, "id"), amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := metrics.ComputeAlerts(s.container.Snapshot(), s.now())
	if alerts == nil {
		alerts = []metrics.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	if err := s.container.DismissAlert(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearDismissedAlerts(w http.ResponseWriter, r *http.Request) {
	if err := s.container.ClearDismissedAlerts(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type adviceResponse struct {
	Advice string `json:"advice"`
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil {
		writeError(w, http.StatusServiceUnavailable, "advice is not configured")
		return
	}
	text, err := s.advisor.Advise(r.Context(), s.container.Snapshot(), s.now())
	if err != nil {
		s.logger.Error("advice request failed", "error", err)
		writeError(w, http.StatusBadGateway, "advice backend unavailable")
		return
	}
	writeJSON(w, http.StatusOK, adviceResponse{Advice: text})
}
