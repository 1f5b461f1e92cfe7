package entity

import "time"

// Notification is an in-app message for the expense owner. Delivery is
// fire-and-forget: a failed insert is logged and never rolls back the
// approval transaction that produced it.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	ExpenseID *int64    `json:"expense_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
