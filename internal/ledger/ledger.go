// Package ledger holds the counter arithmetic behind per-user submission stats.
//
// Current counters follow the verdicts a user holds right now and may be
// taken back when an admin revises a verdict. Lifetime counters only grow.
package ledger

import (
	"kyc_arena/internal/domain"

	"github.com/shopspring/decimal"
)

// RecordNewSubmission credits a freshly created (pending) submission.
func RecordNewSubmission(s *domain.UserStats) {
	s.TotalSubmissions++
	s.LifetimeSubmissions++
}

// ApplyTransition moves credit for one submission from one status to another.
// price is the exchange price at the moment of the transition and only
// matters when either side is good. It is a no-op when from == to.
func ApplyTransition(s *domain.UserStats, from, to domain.Status, price decimal.Decimal) {
	if from == to {
		return
	}
	price = price.Round(2)
	if price.IsNegative() {
		price = decimal.Zero
	}

	switch from {
	case domain.StatusGood:
		s.TotalGood = floor(s.TotalGood - 1)
		s.TotalEarnings = s.TotalEarnings.Sub(price)
		if s.TotalEarnings.IsNegative() {
			s.TotalEarnings = decimal.Zero
		}
	case domain.StatusBad:
		s.TotalBad = floor(s.TotalBad - 1)
	case domain.StatusWrongPassword:
		s.TotalWrongPassword = floor(s.TotalWrongPassword - 1)
	}

	switch to {
	case domain.StatusGood:
		s.TotalGood++
		s.LifetimeGood++
		s.TotalEarnings = s.TotalEarnings.Add(price)
		s.LifetimeEarnings = s.LifetimeEarnings.Add(price)
	case domain.StatusBad:
		s.TotalBad++
		s.LifetimeBad++
	case domain.StatusWrongPassword:
		s.TotalWrongPassword++
		s.LifetimeWrongPassword++
	}
}

func floor(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
