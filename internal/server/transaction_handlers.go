package server

import (
	"net/http"
	"strconv"

	"github.com/praneeth1335/backend/internal/middleware"
	"github.com/praneeth1335/backend/internal/models"
	"github.com/praneeth1335/backend/internal/service"
)

type expenseRequest struct {
	Description   string  `json:"description"`
	BillTotal     float64 `json:"billTotal"`
	UserExpense   float64 `json:"userExpense"`
	FriendExpense float64 `json:"friendExpense"`
	PaidBy        string  `json:"paidBy"`
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	user := middleware.GetUser(r.Context())
	txn, err := s.transactions.AddExpense(r.Context(), user, service.ExpenseInput{
		FriendID:      r.PathValue("id"),
		Description:   req.Description,
		BillTotal:     req.BillTotal,
		UserExpense:   req.UserExpense,
		FriendExpense: req.FriendExpense,
		PaidBy:        models.Party(req.PaidBy),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "expense recorded", map[string]any{
		"transaction": txn.Display(),
		"balance":     txn.BalanceAfter,
	})
}

type settleRequest struct {
	Amount    float64 `json:"amount"`
	SettledBy string  `json:"settledBy"`
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	user := middleware.GetUser(r.Context())
	txn, err := s.transactions.Settle(r.Context(), user, r.PathValue("id"), req.Amount, models.Party(req.SettledBy))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "settlement recorded", map[string]any{
		"transaction": txn.Display(),
		"balance":     txn.BalanceAfter,
	})
}

func paging(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

func (s *Server) handleFriendTransactions(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	page, limit := paging(r)

	friend, result, err := s.transactions.HistoryForFriend(r.Context(), user.ID, r.PathValue("id"), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{
		"friend":       friendView(friend),
		"transactions": result.Transactions,
		"totalCount":   result.Total,
		"page":         result.Page,
		"limit":        result.Limit,
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	page, limit := paging(r)

	result, err := s.transactions.List(r.Context(), user.ID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", result)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	txn, err := s.transactions.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{"transaction": txn.Display()})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	balance, err := s.transactions.Delete(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "transaction deleted", map[string]any{
		"balance":        balance,
		"totalOwedToYou": user.TotalOwedToYou,
		"totalYouOwe":    user.TotalYouOwe,
		"netBalance":     user.NetBalance,
	})
}

func (s *Server) handleTransactionStats(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	stats, err := s.transactions.Stats(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{"stats": stats})
}
