package service

import (
	"context"
	"fmt"

	"github.com/garyjia/expense-flow/internal/application/port"
	"github.com/garyjia/expense-flow/internal/domain/entity"
)

// UserService covers the slice of user management the workflow core depends
// on: lookups and the deletion guard. Full account administration lives
// outside this service.
type UserService interface {
	Get(ctx context.Context, caller Identity, userID int64) (*entity.User, error)

	// Delete removes a user. Blocked while the user owns a PENDING expense,
	// since deleting the owner would orphan an in-flight approval chain.
	Delete(ctx context.Context, caller Identity, userID int64) error
}

type userServiceImpl struct {
	userRepo    port.UserRepository
	expenseRepo port.ExpenseRepository
	txManager   port.TransactionManager
	logger      Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo port.UserRepository,
	expenseRepo port.ExpenseRepository,
	txManager port.TransactionManager,
	logger Logger,
) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		expenseRepo: expenseRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

func (s *userServiceImpl) Get(ctx context.Context, caller Identity, userID int64) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || user.CompanyID != caller.CompanyID {
		return nil, fmt.Errorf("%w: user %d", entity.ErrNotFound, userID)
	}
	return user, nil
}

func (s *userServiceImpl) Delete(ctx context.Context, caller Identity, userID int64) error {
	if caller.Role != entity.RoleAdmin {
		return fmt.Errorf("%w: only admins can delete users", entity.ErrForbidden)
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.GetByID(txCtx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if user == nil || user.CompanyID != caller.CompanyID {
			return fmt.Errorf("%w: user %d", entity.ErrNotFound, userID)
		}

		pending, err := s.expenseRepo.HasPendingForUser(txCtx, userID)
		if err != nil {
			return fmt.Errorf("check pending expenses: %w", err)
		}
		if pending {
			return fmt.Errorf("%w: user has pending expenses", entity.ErrValidation)
		}

		return s.userRepo.Delete(txCtx, userID)
	})
	if err != nil {
		s.logger.Error("Failed to delete user", "error", err, "user_id", userID)
		return err
	}

	s.logger.Info("User deleted", "user_id", userID, "by", caller.UserID)
	return nil
}
