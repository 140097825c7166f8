// Package ledger implements the balance recomputation engine: the pure fold
// that derives a friend's signed balance from its transaction history, and
// the roll-up of all friend balances into a user's aggregate figures.
//
// Sign convention: positive = friend owes the user, negative = user owes the
// friend. Every computed value is rounded to 2 decimal places before it is
// stored; amounts are never accumulated un-rounded across calls.
package ledger

import (
	"log/slog"
	"math"

	"github.com/praneeth1335/backend/internal/models"
)

// Tolerance is the band within which a balance is considered settled.
const Tolerance = 0.01

// Balance status values exposed to API clients.
const (
	StatusSettled = "settled"
	StatusOwesYou = "owes_you"
	StatusYouOwe  = "you_owe"
)

// Round2 rounds to 2 decimal places, half away from zero. Rounding after
// every computation keeps floating-point drift out of the stored caches.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Settled reports whether a balance is within Tolerance of zero.
func Settled(balance float64) bool {
	return math.Abs(balance) < Tolerance
}

// Status derives the balance status view from a signed balance.
func Status(balance float64) string {
	switch {
	case Settled(balance):
		return StatusSettled
	case balance > 0:
		return StatusOwesYou
	default:
		return StatusYouOwe
	}
}

// Fold computes the signed balance from a sequence of transactions.
//
// The fold is commutative, so input ordering does not affect the result;
// callers pass transactions ordered by creation time only so that the
// BalanceAfter snapshots stamped at creation line up with history.
//
// Inactive transactions contribute nothing. A transaction whose kind or
// payer field holds an impossible value (upstream validation should make
// this unreachable) is skipped with a warning rather than corrupting the
// sum.
func Fold(transactions []*models.Transaction) float64 {
	var balance float64
	for _, t := range transactions {
		if !t.IsActive {
			continue
		}
		switch t.Type {
		case models.TypeExpense:
			switch t.PaidBy {
			case models.PartyUser:
				// Friend owes their share to the user.
				balance += t.FriendExpense
			case models.PartyFriend:
				// User owes their share to the friend.
				balance -= t.UserExpense
			default:
				slog.Warn("skipping expense with unknown payer", "transaction_id", t.ID, "paid_by", t.PaidBy)
			}
		case models.TypeSettlement:
			switch t.SettledBy {
			case models.PartyUser:
				// User paid down debt to the friend.
				balance -= t.Amount
			case models.PartyFriend:
				// Friend paid down debt to the user.
				balance += t.Amount
			default:
				slog.Warn("skipping settlement with unknown payer", "transaction_id", t.ID, "settled_by", t.SettledBy)
			}
		default:
			slog.Warn("skipping transaction with unknown type", "transaction_id", t.ID, "type", t.Type)
		}
	}
	return Round2(balance)
}
