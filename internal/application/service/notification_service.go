package service

import (
	"context"
	"fmt"

	"github.com/garyjia/expense-flow/internal/application/port"
	"github.com/garyjia/expense-flow/internal/domain/entity"
)

// NotificationService manages in-app notifications. The Notify methods are
// fire-and-forget: callers invoke them after their transaction commits and
// only log failures.
type NotificationService interface {
	NotifyExpenseApproved(ctx context.Context, expense *entity.Expense, approverID int64) error
	NotifyExpenseRejected(ctx context.Context, expense *entity.Expense, approverID int64, reason string) error
	List(ctx context.Context, caller Identity, unreadOnly bool) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, caller Identity, id int64) error
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	userRepo         port.UserRepository
	logger           Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo port.NotificationRepository,
	userRepo port.UserRepository,
	logger Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// NotifyExpenseApproved notifies the expense owner of the final approval.
func (s *notificationServiceImpl) NotifyExpenseApproved(ctx context.Context, expense *entity.Expense, approverID int64) error {
	message := fmt.Sprintf("Your expense %q for %s %.2f has been approved%s.",
		expense.Category, expense.OriginalCurrency, expense.Amount, s.approverSuffix(ctx, approverID))

	return s.create(ctx, &entity.Notification{
		UserID:    expense.UserID,
		Title:     "Expense approved",
		Message:   message,
		Kind:      entity.NotificationKindSuccess,
		ExpenseID: &expense.ID,
	})
}

// NotifyExpenseRejected notifies the expense owner of the rejection.
func (s *notificationServiceImpl) NotifyExpenseRejected(ctx context.Context, expense *entity.Expense, approverID int64, reason string) error {
	message := fmt.Sprintf("Your expense %q for %s %.2f has been rejected%s.",
		expense.Category, expense.OriginalCurrency, expense.Amount, s.approverSuffix(ctx, approverID))
	if reason != "" {
		message = fmt.Sprintf("%s Reason: %s", message, reason)
	}

	return s.create(ctx, &entity.Notification{
		UserID:    expense.UserID,
		Title:     "Expense rejected",
		Message:   message,
		Kind:      entity.NotificationKindError,
		ExpenseID: &expense.ID,
	})
}

// List returns the caller's notifications, newest first.
func (s *notificationServiceImpl) List(ctx context.Context, caller Identity, unreadOnly bool) ([]*entity.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, caller.UserID, unreadOnly)
	if err != nil {
		s.logger.Error("Failed to list notifications", "error", err, "user_id", caller.UserID)
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *notificationServiceImpl) MarkRead(ctx context.Context, caller Identity, id int64) error {
	if err := s.notificationRepo.MarkRead(ctx, id, caller.UserID); err != nil {
		s.logger.Error("Failed to mark notification read", "error", err, "id", id, "user_id", caller.UserID)
		return err
	}
	return nil
}

func (s *notificationServiceImpl) create(ctx context.Context, n *entity.Notification) error {
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification",
			"error", err, "user_id", n.UserID, "title", n.Title)
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// approverSuffix resolves the acting approver's name for the message text.
// Lookup failure degrades to an anonymous message rather than failing the
// notification.
func (s *notificationServiceImpl) approverSuffix(ctx context.Context, approverID int64) string {
	approver, err := s.userRepo.GetByID(ctx, approverID)
	if err != nil || approver == nil {
		return ""
	}
	return fmt.Sprintf(" by %s", approver.Name)
}
