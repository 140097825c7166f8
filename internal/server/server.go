package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/praneeth1335/backend/internal/auth"
	"github.com/praneeth1335/backend/internal/middleware"
	"github.com/praneeth1335/backend/internal/service"
)

// Server holds the services behind the REST API.
type Server struct {
	auth         *service.AuthService
	friends      *service.FriendService
	transactions *service.TransactionService
}

// New creates a Server.
func New(auth *service.AuthService, friends *service.FriendService, transactions *service.TransactionService) *Server {
	return &Server{auth: auth, friends: friends, transactions: transactions}
}

// Router builds the full route table. Protected routes are wrapped with
// RequireAuth; logging, metrics and CORS apply to everything.
func (s *Server) Router(jwtManager *auth.JWTManager, users middleware.UserSource) http.Handler {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(jwtManager, users)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "ok", nil)
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/verify-otp", s.handleVerifyOTP)
	mux.HandleFunc("POST /api/auth/forgot-password", s.handleForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", s.handleResetPassword)
	mux.Handle("GET /api/auth/profile", requireAuth(http.HandlerFunc(s.handleProfile)))
	mux.Handle("PUT /api/auth/profile", requireAuth(http.HandlerFunc(s.handleUpdateProfile)))
	mux.Handle("POST /api/auth/logout", requireAuth(http.HandlerFunc(s.handleLogout)))

	mux.Handle("GET /api/friends", requireAuth(http.HandlerFunc(s.handleListFriends)))
	mux.Handle("POST /api/friends", requireAuth(http.HandlerFunc(s.handleAddFriend)))
	mux.Handle("GET /api/friends/{id}", requireAuth(http.HandlerFunc(s.handleGetFriend)))
	mux.Handle("PUT /api/friends/{id}", requireAuth(http.HandlerFunc(s.handleUpdateFriend)))
	mux.Handle("DELETE /api/friends/{id}", requireAuth(http.HandlerFunc(s.handleDeleteFriend)))
	mux.Handle("POST /api/friends/{id}/transactions", requireAuth(http.HandlerFunc(s.handleAddExpense)))
	mux.Handle("POST /api/friends/{id}/settle", requireAuth(http.HandlerFunc(s.handleSettle)))

	mux.Handle("GET /api/transactions", requireAuth(http.HandlerFunc(s.handleListTransactions)))
	mux.Handle("GET /api/transactions/stats", requireAuth(http.HandlerFunc(s.handleTransactionStats)))
	mux.Handle("GET /api/transactions/friend/{id}", requireAuth(http.HandlerFunc(s.handleFriendTransactions)))
	mux.Handle("GET /api/transactions/{id}", requireAuth(http.HandlerFunc(s.handleGetTransaction)))
	mux.Handle("DELETE /api/transactions/{id}", requireAuth(http.HandlerFunc(s.handleDeleteTransaction)))

	return middleware.CORS(middleware.Logging(mux))
}
