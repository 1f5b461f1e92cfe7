package entity

import "time"

// Expense represents a submitted expense claim. Status is mutated only by the
// decision service or the override service; once APPROVED or REJECTED it is
// terminal and never re-opened.
type Expense struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	CompanyID        int64      `json:"company_id"`
	Amount           float64    `json:"amount"`
	OriginalCurrency string     `json:"original_currency"`
	ConvertedAmount  float64    `json:"converted_amount"`
	Category         string     `json:"category"`
	Description      string     `json:"description,omitempty"`
	ExpenseDate      time.Time  `json:"expense_date"`
	Status           string     `json:"status"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// ApprovalRequests is the expense's approval chain ordered by sequence.
	// Populated only when the caller asks for the full projection.
	ApprovalRequests []*ApprovalRequest `json:"approval_requests,omitempty"`
}

// IsFinalized returns true once the expense has reached a terminal status.
func (e *Expense) IsFinalized() bool {
	return e.Status == ExpenseStatusApproved || e.Status == ExpenseStatusRejected
}
