package server

import (
	"net/http"

	"github.com/praneeth1335/backend/internal/ledger"
	"github.com/praneeth1335/backend/internal/middleware"
	"github.com/praneeth1335/backend/internal/models"
)

// friendResponse is a friend enriched with the derived balance status.
type friendResponse struct {
	models.Friend
	BalanceStatus string `json:"balanceStatus"`
}

func friendView(f *models.Friend) friendResponse {
	return friendResponse{Friend: *f, BalanceStatus: ledger.Status(f.Balance)}
}

func friendViews(friends []*models.Friend) []friendResponse {
	views := make([]friendResponse, 0, len(friends))
	for _, f := range friends {
		views = append(views, friendView(f))
	}
	return views
}

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	friends, err := s.friends.List(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{
		"friends":        friendViews(friends),
		"totalOwedToYou": user.TotalOwedToYou,
		"totalYouOwe":    user.TotalYouOwe,
		"netBalance":     user.NetBalance,
	})
}

type addFriendRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Notes  string `json:"notes"`
}

func (s *Server) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	var req addFriendRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	friend, err := s.friends.Add(r.Context(), middleware.GetUser(r.Context()), req.Name, req.Email, req.Avatar, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "friend added", map[string]any{"friend": friendView(friend)})
}

func (s *Server) handleGetFriend(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	friend, err := s.friends.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{"friend": friendView(friend)})
}

type updateFriendRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Notes  string `json:"notes"`
}

func (s *Server) handleUpdateFriend(w http.ResponseWriter, r *http.Request) {
	var req updateFriendRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	user := middleware.GetUser(r.Context())
	friend, err := s.friends.Update(r.Context(), user.ID, r.PathValue("id"), req.Name, req.Avatar, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "friend updated", map[string]any{"friend": friendView(friend)})
}

func (s *Server) handleDeleteFriend(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := s.friends.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "friend deleted", map[string]any{
		"totalOwedToYou": user.TotalOwedToYou,
		"totalYouOwe":    user.TotalYouOwe,
		"netBalance":     user.NetBalance,
	})
}
