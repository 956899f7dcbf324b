package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"contas/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.container.Snapshot().Transactions)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if !decodeJSON(w, r, &t) {
		return
	}
	created, err := s.container.AddTransaction(r.Context(), t)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if !decodeJSON(w, r, &t) {
		return
	}
	t.ID = chi.URLParam(r, "id")
	if err := s.container.UpdateTransaction(r.Context(), t); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleRemoveTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.container.RemoveTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRecurringExpenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.container.Snapshot().RecurringExpenses)
}

func (s *Server) handleAddRecurringExpense(w http.ResponseWriter, r *http.Request) {
	var re core.RecurringExpense
	if !decodeJSON(w, r, &re) {
		return
	}
	created, err := s.container.AddRecurringExpense(r.Context(), re)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRecurringExpense(w http.ResponseWriter, r *http.Request) {
	var re core.RecurringExpense
	if !decodeJSON(w, r, &re) {
		return
	}
	re.ID = chi.URLParam(r, "id")
	if err := s.container.UpdateRecurringExpense(r.Context(), re); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, re)
}

func (s *Server) handleRemoveRecurringExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.container.RemoveRecurringExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRecurringIncomes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.container.Snapshot().RecurringIncomes)
}

func (s *Server) handleAddRecurringIncome(w http.ResponseWriter, r *http.Request) {
	var ri core.RecurringIncome
	if !decodeJSON(w, r, &ri) {
		return
	}
	created, err := s.container.AddRecurringIncome(r.Context(), ri)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRecurringIncome(w http.ResponseWriter, r *http.Request) {
	var ri core.RecurringIncome
	if !decodeJSON(w, r, &ri) {
		return
	}
	ri.ID = chi.URLParam(r, "id")
	if err := s.container.UpdateRecurringIncome(r.Context(), ri); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ri)
}

func (s *Server) handleRemoveRecurringIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.container.RemoveRecurringIncome(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.container.Snapshot().Debts)
}

func (s *Server) handleAddDebt(w http.ResponseWriter, r *http.Request) {
	var d core.LongTermDebt
	if !decodeJSON(w, r, &d) {
		return
	}
	created, err := s.container.AddDebt(r.Context(), d)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	var d core.LongTermDebt
	if !decodeJSON(w, r, &d) {
		return
	}
	d.ID = chi.URLParam(r, "id")
	if err := s.container.UpdateDebt(r.Context(), d); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleRemoveDebt(w http.ResponseWriter, r *http.Request) {
	if err := s.container.RemoveDebt(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.container.Snapshot().Goals)
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var g core.FutureGoal
	if !decodeJSON(w, r, &g) {
		return
	}
	created, err := s.container.AddGoal(r.Context(), g)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var g core.FutureGoal
	if !decodeJSON(w, r, &g) {
		return
	}
	g.ID = chi.URLParam(r, "id")
	if err := s.container.UpdateGoal(r.Context(), g); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleRemoveGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.container.RemoveGoal(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.container.Snapshot().Investments)
}

func (s *Server) handleAddInvestment(w http.ResponseWriter, r *http.Request) {
	var inv core.Investment
	if !decodeJSON(w, r, &inv) {
		return
	}
	created, err := s.container.AddInvestment(r.Context(), inv)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	var inv core.Investment
	if !decodeJSON(w, r, &inv) {
		return
	}
	inv.ID = chi.URLParam(r, "id")
	if err := s.container.UpdateInvestment(r.Context(), inv); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleRemoveInvestment(w http.ResponseWriter, r *http.Request) {
	if err := s.container.RemoveInvestment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.container.Snapshot().Members)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var m core.FamilyMember
	if !decodeJSON(w, r, &m) {
		return
	}
	created, err := s.container.AddMember(r.Context(), m)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var m core.FamilyMember
	if !decodeJSON(w, r, &m) {
		return
	}
	m.ID = chi.URLParam(r, "id")
	if err := s.container.UpdateMember(r.Context(), m); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := s.container.RemoveMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type settingsResponse struct {
	App    core.AppSettings   `json:"app"`
	Alerts core.AlertSettings `json:"alerts"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	snap := s.container.Snapshot()
	writeJSON(w, http.StatusOK, settingsResponse{App: snap.AppSettings, Alerts: snap.AlertSettings})
}

func (s *Server) handleUpdateAppSettings(w http.ResponseWriter, r *http.Request) {
	var app core.AppSettings
	if !decodeJSON(w, r, &app) {
		return
	}
	if err := s.container.UpdateAppSettings(r.Context(), app); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleUpdateAlertSettings(w http.ResponseWriter, r *http.Request) {
	var alerts core.AlertSettings
	if !decodeJSON(w, r, &alerts) {
		return
	}
	if err := s.container.UpdateAlertSettings(r.Context(), alerts); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}
