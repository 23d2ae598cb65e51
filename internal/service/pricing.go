package service

import (
	"context"
	"fmt"

	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/money"
)

// Catalog supplies the default price for a lesson type and party size.
// The pricing table itself belongs to the lesson-type catalog
// collaborator; this core never computes a default on its own.
type Catalog interface {
	DefaultPriceCents(ctx context.Context, lessonTypeID string, partySize int) (money.Cents, error)
}

// CatalogFunc adapts a plain function to the Catalog interface.
type CatalogFunc func(ctx context.Context, lessonTypeID string, partySize int) (money.Cents, error)

func (f CatalogFunc) DefaultPriceCents(ctx context.Context, lessonTypeID string, partySize int) (money.Cents, error) {
	return f(ctx, lessonTypeID, partySize)
}

// StaticCatalog is the built-in price table used until the catalog
// service is reachable in the deployment. Group lessons scale per head
// beyond the first two.
func StaticCatalog() Catalog {
	base := map[string]money.Cents{
		"private":      12000,
		"semi-private": 9000,
		"group":        7500,
	}
	return CatalogFunc(func(ctx context.Context, lessonTypeID string, partySize int) (money.Cents, error) {
		perHead, ok := base[lessonTypeID]
		if !ok {
			return 0, fmt.Errorf("unknown lesson type %q", lessonTypeID)
		}
		if partySize < 1 {
			partySize = 1
		}
		return perHead.Mul(partySize), nil
	})
}

type Pricing struct {
	catalog Catalog
}

func NewPricing(catalog Catalog) *Pricing {
	return &Pricing{catalog: catalog}
}

// ResolvedTotal returns the administrator's manual override when one is
// set, otherwise the catalog default.
func (p *Pricing) ResolvedTotal(ctx context.Context, req *model.BookingRequest) (money.Cents, error) {
	if req.ManualPricing && req.BillTotalCents != nil {
		return *req.BillTotalCents, nil
	}
	total, err := p.catalog.DefaultPriceCents(ctx, req.LessonTypeID, req.PartySize)
	if err != nil {
		return 0, fmt.Errorf("catalog default for %s: %w", req.LessonTypeID, err)
	}
	if total.IsNegative() {
		return 0, fmt.Errorf("catalog returned negative price %d for %s", total, req.LessonTypeID)
	}
	return total, nil
}

// Balance returns resolved total minus amount paid. A negative result is
// an overpayment and comes back as-is; clipping it to zero would hide a
// bookkeeping error.
func (p *Pricing) Balance(ctx context.Context, req *model.BookingRequest) (money.Cents, error) {
	total, err := p.ResolvedTotal(ctx, req)
	if err != nil {
		return 0, err
	}
	return total.Sub(req.AmountPaidCents), nil
}

// BalanceView is the reporting shape the admin and finance surfaces
// read. Credit is flagged explicitly rather than folded into the number.
type BalanceView struct {
	TotalCents   money.Cents `json:"total_cents"`
	PaidCents    money.Cents `json:"paid_cents"`
	BalanceCents money.Cents `json:"balance_cents"`
	IsCredit     bool        `json:"is_credit"`
	Display      string      `json:"display"`
}

func (p *Pricing) BalanceFor(ctx context.Context, req *model.BookingRequest) (*BalanceView, error) {
	total, err := p.ResolvedTotal(ctx, req)
	if err != nil {
		return nil, err
	}
	balance := total.Sub(req.AmountPaidCents)
	view := &BalanceView{
		TotalCents:   total,
		PaidCents:    req.AmountPaidCents,
		BalanceCents: balance,
		IsCredit:     balance.IsNegative(),
		Display:      balance.FormatSigned(),
	}
	if view.IsCredit {
		view.Display = (-balance).Format() + " credit"
	}
	return view, nil
}
