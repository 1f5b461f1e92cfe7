package entity

import "time"

// User is an account scoped to exactly one company. ManagerID links an
// employee to their direct manager; IsManagerApprover marks whether that
// manager participates as the implicit sequence-1 approver.
type User struct {
	ID                int64     `json:"id"`
	CompanyID         int64     `json:"company_id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	ManagerID         *int64    `json:"manager_id,omitempty"`
	IsManagerApprover bool      `json:"is_manager_approver"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Company is the tenant boundary. Every user, expense and approval rule
// belongs to exactly one company; cross-company references are rejected at
// the service boundary.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
