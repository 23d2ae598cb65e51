package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/money"
	"github.com/driftwoodsurf/booking_server/internal/repository"
)

// FinanceService is the read-only reporting surface. It never writes;
// the numbers are recomputed from sessions, requests and expenses on
// every call, so there is no cached figure to drift out of sync.
type FinanceService struct {
	sessions repository.SessionStore
	requests repository.RequestStore
	expenses repository.ExpenseStore
	pricing  *Pricing
	logger   *zap.Logger
}

func NewFinanceService(
	sessions repository.SessionStore,
	requests repository.RequestStore,
	expenses repository.ExpenseStore,
	pricing *Pricing,
	logger *zap.Logger,
) *FinanceService {
	return &FinanceService{
		sessions: sessions,
		requests: requests,
		expenses: expenses,
		pricing:  pricing,
		logger:   logger,
	}
}

type FinanceSummary struct {
	From              time.Time   `json:"from"`
	To                time.Time   `json:"to"`
	SessionCount      int         `json:"session_count"`
	GrossRevenueCents money.Cents `json:"gross_revenue_cents"`
	TipsCents         money.Cents `json:"tips_cents"`
	ExpensesCents     money.Cents `json:"expenses_cents"`
	NetCents          money.Cents `json:"net_cents"`
	OutstandingCents  money.Cents `json:"outstanding_cents"`
	CreditCents       money.Cents `json:"credit_cents"`
}

// Summary aggregates revenue for a date range. Refunded sessions do not
// count toward revenue; refund expenses reduce the expense total.
// Positive request balances show up as outstanding, negative ones as
// credit owed back, kept apart so neither hides the other.
func (s *FinanceService) Summary(ctx context.Context, from, to time.Time) (*FinanceSummary, error) {
	summary := &FinanceSummary{From: from, To: to}

	sessions, err := s.sessions.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("finance summary: %w", err)
	}
	for _, session := range sessions {
		if session.LessonStatus == model.LessonStatusCanceledWithRefund {
			continue
		}
		summary.SessionCount++
		summary.GrossRevenueCents = summary.GrossRevenueCents.Add(session.PaidCents)
		summary.TipsCents = summary.TipsCents.Add(session.TipCents)
	}

	expenses, err := s.expenses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("finance summary: %w", err)
	}
	for _, expense := range expenses {
		if expense.CreatedAt.Before(from) || !expense.CreatedAt.Before(to) {
			continue
		}
		if expense.IsRefund {
			summary.ExpensesCents = summary.ExpensesCents.Sub(expense.TotalCents())
		} else {
			summary.ExpensesCents = summary.ExpensesCents.Add(expense.TotalCents())
		}
	}

	requests, err := s.requests.List(ctx, model.ListFilter{
		Statuses: []model.RequestStatus{model.RequestStatusApproved},
		DateFrom: &from,
		DateTo:   &to,
	})
	if err != nil {
		return nil, fmt.Errorf("finance summary: %w", err)
	}
	for _, req := range requests {
		balance, err := s.pricing.Balance(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("finance summary: %w", err)
		}
		if balance.IsNegative() {
			summary.CreditCents = summary.CreditCents.Add(-balance)
		} else {
			summary.OutstandingCents = summary.OutstandingCents.Add(balance)
		}
	}

	summary.NetCents = summary.GrossRevenueCents.Add(summary.TipsCents).Sub(summary.ExpensesCents)

	s.logger.Debug("Finance summary computed",
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int("sessions", summary.SessionCount),
	)

	return summary, nil
}
