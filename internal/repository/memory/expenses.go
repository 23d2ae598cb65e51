package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/repository"
)

type expenseStore struct {
	s *Store
}

// Create stores an expense the service layer has already validated. The
// id and timestamps are assigned here.
func (v *expenseStore) Create(ctx context.Context, expense *model.Expense) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if expense.ParentExpenseID != nil {
		if _, ok := v.s.expenses[*expense.ParentExpenseID]; !ok {
			return fmt.Errorf("parent expense %s: %w", *expense.ParentExpenseID, repository.ErrNotFound)
		}
	}

	now := time.Now().UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now
	v.s.expenses[expense.ID] = copyExpense(expense)
	return nil
}

func (v *expenseStore) Get(ctx context.Context, id string) (*model.Expense, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	expense, ok := v.s.expenses[id]
	if !ok {
		return nil, fmt.Errorf("get expense %s: %w", id, repository.ErrNotFound)
	}
	return copyExpense(expense), nil
}

func (v *expenseStore) List(ctx context.Context) ([]*model.Expense, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var out []*model.Expense
	for _, expense := range v.s.expenses {
		if expense.DeletedAt != nil {
			continue
		}
		out = append(out, copyExpense(expense))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (v *expenseStore) AttachReceipt(ctx context.Context, receipt *model.Receipt) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	expense, ok := v.s.expenses[receipt.ExpenseID]
	if !ok {
		return fmt.Errorf("attach receipt to expense %s: %w", receipt.ExpenseID, repository.ErrNotFound)
	}
	now := time.Now().UTC()
	receipt.UploadedAt = now
	expense.Receipts = append(expense.Receipts, *receipt)
	expense.UpdatedAt = now
	return nil
}

func (v *expenseStore) SoftDelete(ctx context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	expense, ok := v.s.expenses[id]
	if !ok {
		return fmt.Errorf("soft delete expense %s: %w", id, repository.ErrNotFound)
	}
	if expense.DeletedAt == nil {
		now := time.Now().UTC()
		expense.DeletedAt = &now
		expense.UpdatedAt = now
	}
	return nil
}
