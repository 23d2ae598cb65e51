package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/repository"
)

type ExpenseService struct {
	expenses repository.ExpenseStore
	validate *validator.Validate
	logger   *zap.Logger
}

func NewExpenseService(expenses repository.ExpenseStore, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		expenses: expenses,
		validate: validator.New(),
		logger:   logger,
	}
}

// CreateExpense validates and stores an expense. The refund linkage rule
// is the same one booking cancellations follow: a reversal must point at
// what it reverses, and a regular record must point at nothing.
func (s *ExpenseService) CreateExpense(ctx context.Context, input model.CreateExpenseInput) (*model.Expense, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}

	if input.IsRefund && input.ParentExpenseID == nil {
		return nil, model.ErrRefundParentRequired
	}
	if !input.IsRefund && input.ParentExpenseID != nil {
		return nil, model.ErrRefundParentForbidden
	}

	if input.ParentExpenseID != nil {
		parent, err := s.expenses.Get(ctx, *input.ParentExpenseID)
		if err != nil {
			return nil, fmt.Errorf("load parent expense: %w", err)
		}
		if parent.IsRefund {
			return nil, model.Validationf("parent expense %s is itself a refund", parent.ID)
		}
	}

	expense := &model.Expense{
		ID:              uuid.New().String(),
		Category:        input.Category,
		Description:     input.Description,
		SubtotalCents:   input.SubtotalCents,
		TaxCents:        input.TaxCents,
		FeeCents:        input.FeeCents,
		IsRefund:        input.IsRefund,
		ParentExpenseID: input.ParentExpenseID,
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.logger.Info("Expense created",
		zap.String("expense_id", expense.ID),
		zap.String("category", string(expense.Category)),
		zap.Int64("total_cents", int64(expense.TotalCents())),
		zap.Bool("is_refund", expense.IsRefund),
	)

	return expense, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id string) (*model.Expense, error) {
	return s.expenses.Get(ctx, id)
}

func (s *ExpenseService) ListExpenses(ctx context.Context) ([]*model.Expense, error) {
	return s.expenses.List(ctx)
}

// AttachReceipt links an uploaded file to an expense. The upload itself
// happens in the storage collaborator; only the key arrives here.
func (s *ExpenseService) AttachReceipt(ctx context.Context, expenseID, storageKey, fileName string) (*model.Receipt, error) {
	if storageKey == "" || fileName == "" {
		return nil, model.Validationf("receipt requires storage_key and file_name")
	}

	receipt := &model.Receipt{
		ID:         uuid.New().String(),
		ExpenseID:  expenseID,
		StorageKey: storageKey,
		FileName:   fileName,
	}
	if err := s.expenses.AttachReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("attach receipt: %w", err)
	}

	s.logger.Info("Receipt attached",
		zap.String("expense_id", expenseID),
		zap.String("receipt_id", receipt.ID),
	)

	return receipt, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.expenses.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.logger.Info("Expense deleted", zap.String("expense_id", id))
	return nil
}
