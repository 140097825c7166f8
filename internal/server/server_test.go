package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/praneeth1335/backend/internal/auth"
	"github.com/praneeth1335/backend/internal/cache"
	"github.com/praneeth1335/backend/internal/email"
	"github.com/praneeth1335/backend/internal/ledger"
	"github.com/praneeth1335/backend/internal/service"
	"github.com/praneeth1335/backend/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.New()
	calculator := ledger.NewCalculator(store, store)
	updater := ledger.NewUpdater(store, store, calculator)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	srv := New(
		service.NewAuthService(store, auth.NewPasswordAuthenticator(store), jwtManager,
			cache.NewInMemoryCodes(), email.LogSender{}, updater),
		service.NewFriendService(store, calculator, updater),
		service.NewTransactionService(store, calculator, updater),
	)

	ts := httptest.NewServer(srv.Router(jwtManager, store))
	t.Cleanup(ts.Close)
	return ts
}

// call performs one JSON API request and decodes the envelope.
func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var envelope map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response for %s %s: %v", method, path, err)
	}
	return resp.StatusCode, envelope
}

func registerUser(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	status, envelope := call(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if status != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %v", status, envelope)
	}
	data := envelope["data"].(map[string]any)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("register returned no token")
	}
	return token
}

func addFriend(t *testing.T, ts *httptest.Server, token, name, friendEmail string) string {
	t.Helper()
	status, envelope := call(t, ts, http.MethodPost, "/api/friends", token, map[string]string{
		"name":  name,
		"email": friendEmail,
	})
	if status != http.StatusCreated {
		t.Fatalf("add friend status = %d, want 201: %v", status, envelope)
	}
	friend := envelope["data"].(map[string]any)["friend"].(map[string]any)
	id, _ := friend["id"].(string)
	if id == "" {
		t.Fatal("add friend returned no id")
	}
	return id
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	status, envelope := call(t, ts, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("health status = %d, want 200", status)
	}
	if envelope["success"] != true {
		t.Errorf("envelope = %v, want success true", envelope)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	status, _ := call(t, ts, http.MethodGet, "/api/friends", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", status)
	}

	status, _ = call(t, ts, http.MethodGet, "/api/friends", "garbage", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", status)
	}
}

func TestExpenseAndSettleFlow(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts)
	friendID := addFriend(t, ts, token, "Bob", "bob@example.com")

	// User fronts a $50 bill split evenly.
	status, envelope := call(t, ts, http.MethodPost, "/api/friends/"+friendID+"/transactions", token, map[string]any{
		"description":   "Dinner",
		"billTotal":     50,
		"userExpense":   25,
		"friendExpense": 25,
		"paidBy":        "user",
	})
	if status != http.StatusCreated {
		t.Fatalf("expense status = %d, want 201: %v", status, envelope)
	}
	if balance := envelope["data"].(map[string]any)["balance"].(float64); balance != 25 {
		t.Errorf("balance = %v, want 25", balance)
	}

	// The friend list reflects the new balance and aggregates.
	status, envelope = call(t, ts, http.MethodGet, "/api/friends", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list friends status = %d, want 200: %v", status, envelope)
	}
	data := envelope["data"].(map[string]any)
	if owed := data["totalOwedToYou"].(float64); owed != 25 {
		t.Errorf("totalOwedToYou = %v, want 25", owed)
	}
	friends := data["friends"].([]any)
	if len(friends) != 1 {
		t.Fatalf("len(friends) = %d, want 1", len(friends))
	}
	if st := friends[0].(map[string]any)["balanceStatus"].(string); st != "owes_you" {
		t.Errorf("balanceStatus = %q, want owes_you", st)
	}

	// Friend pays it back; defaults take the full outstanding amount.
	status, envelope = call(t, ts, http.MethodPost, "/api/friends/"+friendID+"/settle", token, map[string]any{
		"settledBy": "friend",
	})
	if status != http.StatusCreated {
		t.Fatalf("settle status = %d, want 201: %v", status, envelope)
	}
	if balance := envelope["data"].(map[string]any)["balance"].(float64); balance != 0 {
		t.Errorf("balance after settle = %v, want 0", balance)
	}

	// Settling again is rejected.
	status, _ = call(t, ts, http.MethodPost, "/api/friends/"+friendID+"/settle", token, map[string]any{})
	if status != http.StatusBadRequest {
		t.Errorf("second settle status = %d, want 400", status)
	}
}

func TestDeleteFriendGuard(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts)
	friendID := addFriend(t, ts, token, "Bob", "bob@example.com")

	status, envelope := call(t, ts, http.MethodPost, "/api/friends/"+friendID+"/transactions", token, map[string]any{
		"billTotal":     40,
		"userExpense":   40,
		"friendExpense": 0,
		"paidBy":        "friend",
	})
	if status != http.StatusCreated {
		t.Fatalf("expense status = %d, want 201: %v", status, envelope)
	}

	status, envelope = call(t, ts, http.MethodDelete, "/api/friends/"+friendID, token, nil)
	if status != http.StatusConflict {
		t.Fatalf("delete status = %d, want 409: %v", status, envelope)
	}
	if balance := envelope["data"].(map[string]any)["balance"].(float64); balance != -40 {
		t.Errorf("reported balance = %v, want -40", balance)
	}

	// Settle up, then the deletion goes through.
	if status, envelope = call(t, ts, http.MethodPost, "/api/friends/"+friendID+"/settle", token, map[string]any{}); status != http.StatusCreated {
		t.Fatalf("settle status = %d, want 201: %v", status, envelope)
	}
	if status, envelope = call(t, ts, http.MethodDelete, "/api/friends/"+friendID, token, nil); status != http.StatusOK {
		t.Fatalf("delete after settle status = %d, want 200: %v", status, envelope)
	}
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts)
	friendID := addFriend(t, ts, token, "Bob", "bob@example.com")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"shares do not sum", map[string]any{"billTotal": 50, "userExpense": 10, "friendExpense": 10, "paidBy": "user"}},
		{"bad payer", map[string]any{"billTotal": 50, "userExpense": 25, "friendExpense": 25, "paidBy": "mom"}},
		{"zero total", map[string]any{"billTotal": 0, "userExpense": 0, "friendExpense": 0, "paidBy": "user"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := call(t, ts, http.MethodPost, fmt.Sprintf("/api/friends/%s/transactions", friendID), token, tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
		})
	}

	t.Run("duplicate friend email", func(t *testing.T) {
		status, _ := call(t, ts, http.MethodPost, "/api/friends", token, map[string]string{
			"name": "Bob Again", "email": "bob@example.com",
		})
		if status != http.StatusConflict {
			t.Errorf("status = %d, want 409", status)
		}
	})

	t.Run("unknown friend", func(t *testing.T) {
		status, _ := call(t, ts, http.MethodGet, "/api/friends/nope", token, nil)
		if status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", status)
		}
	})
}

func TestTransactionEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts)
	friendID := addFriend(t, ts, token, "Bob", "bob@example.com")

	status, envelope := call(t, ts, http.MethodPost, "/api/friends/"+friendID+"/transactions", token, map[string]any{
		"billTotal": 50, "userExpense": 25, "friendExpense": 25, "paidBy": "user",
	})
	if status != http.StatusCreated {
		t.Fatalf("expense status = %d, want 201: %v", status, envelope)
	}
	txn := envelope["data"].(map[string]any)["transaction"].(map[string]any)
	txnID := txn["id"].(string)

	t.Run("list", func(t *testing.T) {
		status, envelope := call(t, ts, http.MethodGet, "/api/transactions", token, nil)
		if status != http.StatusOK {
			t.Fatalf("status = %d, want 200: %v", status, envelope)
		}
		data := envelope["data"].(map[string]any)
		if total := data["totalCount"].(float64); total != 1 {
			t.Errorf("totalCount = %v, want 1", total)
		}
	})

	t.Run("friend history", func(t *testing.T) {
		status, envelope := call(t, ts, http.MethodGet, "/api/transactions/friend/"+friendID, token, nil)
		if status != http.StatusOK {
			t.Fatalf("status = %d, want 200: %v", status, envelope)
		}
		data := envelope["data"].(map[string]any)
		if balance := data["friend"].(map[string]any)["balance"].(float64); balance != 25 {
			t.Errorf("friend balance = %v, want 25", balance)
		}
	})

	t.Run("stats", func(t *testing.T) {
		status, envelope := call(t, ts, http.MethodGet, "/api/transactions/stats", token, nil)
		if status != http.StatusOK {
			t.Fatalf("status = %d, want 200: %v", status, envelope)
		}
		stats := envelope["data"].(map[string]any)["stats"].(map[string]any)
		if count := stats["expenses"].(map[string]any)["count"].(float64); count != 1 {
			t.Errorf("expense count = %v, want 1", count)
		}
	})

	t.Run("get and delete", func(t *testing.T) {
		status, _ := call(t, ts, http.MethodGet, "/api/transactions/"+txnID, token, nil)
		if status != http.StatusOK {
			t.Fatalf("get status = %d, want 200", status)
		}

		status, envelope := call(t, ts, http.MethodDelete, "/api/transactions/"+txnID, token, nil)
		if status != http.StatusOK {
			t.Fatalf("delete status = %d, want 200: %v", status, envelope)
		}
		data := envelope["data"].(map[string]any)
		if balance := data["balance"].(float64); balance != 0 {
			t.Errorf("balance after delete = %v, want 0", balance)
		}
		if net := data["netBalance"].(float64); net != 0 {
			t.Errorf("netBalance after delete = %v, want 0", net)
		}

		status, _ = call(t, ts, http.MethodGet, "/api/transactions/"+txnID, token, nil)
		if status != http.StatusNotFound {
			t.Errorf("get after delete status = %d, want 404", status)
		}
	})
}

func TestProfile(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts)

	status, envelope := call(t, ts, http.MethodGet, "/api/auth/profile", token, nil)
	if status != http.StatusOK {
		t.Fatalf("profile status = %d, want 200: %v", status, envelope)
	}
	user := envelope["data"].(map[string]any)["user"].(map[string]any)
	if user["email"] != "alice@example.com" {
		t.Errorf("email = %v, want alice@example.com", user["email"])
	}
	if _, exposed := user["passwordHash"]; exposed {
		t.Error("password hash must never be serialized")
	}

	status, envelope = call(t, ts, http.MethodPut, "/api/auth/profile", token, map[string]string{
		"name": "Alicia",
	})
	if status != http.StatusOK {
		t.Fatalf("update profile status = %d, want 200: %v", status, envelope)
	}
	user = envelope["data"].(map[string]any)["user"].(map[string]any)
	if user["name"] != "Alicia" {
		t.Errorf("name = %v, want Alicia", user["name"])
	}
}
