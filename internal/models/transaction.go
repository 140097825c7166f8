package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// TransactionType discriminates the two kinds of money events.
type TransactionType string

// Party identifies which side of the relationship acted.
type Party string

const (
	TypeExpense    TransactionType = "expense"
	TypeSettlement TransactionType = "settlement"

	PartyUser   Party = "user"
	PartyFriend Party = "friend"
)

// SumTolerance is the band within which two monetary amounts are considered
// equal, matching the currency's minor-unit granularity.
const SumTolerance = 0.01

// Transaction is an immutable record of one money event between a user and
// a friend. Expense fields and settlement fields are mutually exclusive by
// Type; Validate enforces the split.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string `json:"id"`

	// UserID is the owning user.
	UserID string `json:"userId"`

	// FriendID is the counterparty friend.
	FriendID string `json:"friendId"`

	// Type is either TypeExpense or TypeSettlement.
	Type TransactionType `json:"type"`

	// Description is a human-readable label for the event.
	Description string `json:"description"`

	// BillTotal is the full bill amount (expense only, > 0).
	BillTotal float64 `json:"billTotal,omitempty"`

	// UserExpense is the user's share of the bill (expense only, >= 0).
	UserExpense float64 `json:"userExpense,omitempty"`

	// FriendExpense is the friend's share of the bill (expense only, >= 0).
	FriendExpense float64 `json:"friendExpense,omitempty"`

	// PaidBy is who covered the bill (expense only).
	PaidBy Party `json:"paidBy,omitempty"`

	// Amount is the payment amount (settlement only, > 0).
	Amount float64 `json:"amount,omitempty"`

	// SettledBy is who made the payment (settlement only).
	SettledBy Party `json:"settledBy,omitempty"`

	// BalanceAfter is a snapshot of the friend's balance immediately after
	// this transaction was recorded.
	BalanceAfter float64 `json:"balanceAfter"`

	// IsActive is false once the transaction is soft-deleted. Inactive
	// transactions are excluded from every balance computation.
	IsActive bool `json:"isActive"`

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64 `json:"createdAt"`
}

// NewExpense builds an expense transaction. Call Validate before persisting.
func NewExpense(userID, friendID, description string, billTotal, userExpense, friendExpense float64, paidBy Party) *Transaction {
	if description == "" {
		description = fmt.Sprintf("Bill split - %s", time.Now().Format("1/2/2006"))
	}
	return &Transaction{
		ID:            uuid.New().String(),
		UserID:        userID,
		FriendID:      friendID,
		Type:          TypeExpense,
		Description:   description,
		BillTotal:     billTotal,
		UserExpense:   userExpense,
		FriendExpense: friendExpense,
		PaidBy:        paidBy,
		IsActive:      true,
		CreatedAt:     time.Now().Unix(),
	}
}

// NewSettlement builds a settlement transaction. Call Validate before persisting.
func NewSettlement(userID, friendID string, amount float64, settledBy Party) *Transaction {
	return &Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		FriendID:    friendID,
		Type:        TypeSettlement,
		Description: fmt.Sprintf("Settlement payment - $%.2f", amount),
		Amount:      amount,
		SettledBy:   settledBy,
		IsActive:    true,
		CreatedAt:   time.Now().Unix(),
	}
}

// Validate checks the kind-specific invariants. Invalid transactions are
// rejected before persistence; the ledger never computes over them.
func (t *Transaction) Validate() error {
	switch t.Type {
	case TypeExpense:
		if t.BillTotal <= 0 {
			return fmt.Errorf("bill total must be greater than 0 for expense transactions, got %g", t.BillTotal)
		}
		if t.UserExpense < 0 {
			return fmt.Errorf("user expense cannot be negative for expense transactions, got %g", t.UserExpense)
		}
		if t.FriendExpense < 0 {
			return fmt.Errorf("friend expense cannot be negative for expense transactions, got %g", t.FriendExpense)
		}
		if t.PaidBy != PartyUser && t.PaidBy != PartyFriend {
			return fmt.Errorf("paidBy must be %q or %q for expense transactions, got %q", PartyUser, PartyFriend, t.PaidBy)
		}
		if sum := t.UserExpense + t.FriendExpense; math.Abs(sum-t.BillTotal) > SumTolerance {
			return fmt.Errorf("user expense (%g) and friend expense (%g) must sum to bill total (%g), current sum: %g",
				t.UserExpense, t.FriendExpense, t.BillTotal, sum)
		}
	case TypeSettlement:
		if t.Amount <= 0 {
			return fmt.Errorf("amount must be greater than 0 for settlement transactions, got %g", t.Amount)
		}
		if t.SettledBy != PartyUser && t.SettledBy != PartyFriend {
			return fmt.Errorf("settledBy must be %q or %q for settlement transactions, got %q", PartyUser, PartyFriend, t.SettledBy)
		}
	default:
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}
	return nil
}

// TransactionView is a transaction enriched with display fields for API
// responses.
type TransactionView struct {
	Transaction

	// DisplayText is a one-line summary, e.g. "Dinner - $50.00".
	DisplayText string `json:"displayText"`

	// UserAmount is the amount the user put in for this event.
	UserAmount float64 `json:"userAmount"`

	// FriendAmount is the amount the friend put in for this event.
	FriendAmount float64 `json:"friendAmount"`
}

// Display formats the transaction for API responses.
func (t *Transaction) Display() TransactionView {
	v := TransactionView{Transaction: *t}
	switch t.Type {
	case TypeExpense:
		v.DisplayText = fmt.Sprintf("%s - $%.2f", t.Description, t.BillTotal)
		if t.PaidBy == PartyUser {
			v.UserAmount = t.BillTotal
		} else {
			v.FriendAmount = t.BillTotal
		}
	case TypeSettlement:
		v.DisplayText = fmt.Sprintf("Settlement - $%.2f", t.Amount)
		if t.SettledBy == PartyUser {
			v.UserAmount = t.Amount
		} else {
			v.FriendAmount = t.Amount
		}
	}
	return v
}

// TransactionStats summarizes a user's active transactions by kind.
type TransactionStats struct {
	Expenses    StatBucket `json:"expenses"`
	Settlements StatBucket `json:"settlements"`
}

// StatBucket is the count and total amount for one transaction kind.
type StatBucket struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}
