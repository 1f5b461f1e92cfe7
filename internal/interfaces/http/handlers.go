package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/expense-flow/internal/application/service"
	"github.com/garyjia/expense-flow/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{services: services, logger: logger}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SubmitExpenseRequest is the body of POST /api/expenses
type SubmitExpenseRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	Currency    string  `json:"currency" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description"`
	ExpenseDate string  `json:"expense_date" binding:"required"`
}

// DecisionRequest is the body of POST /api/expenses/:id/decision
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comments string `json:"comments"`
}

// DecisionResponse reports what the decision did to the expense
type DecisionResponse struct {
	ExpenseID int64  `json:"expense_id"`
	Outcome   string `json:"outcome"`
}

// OverrideRequest is the body of POST /api/expenses/:id/override
type OverrideRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// CreateRuleRequest is the body of POST /api/rules
type CreateRuleRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	RuleType    string              `json:"rule_type" binding:"required"`
	Percentage  *float64            `json:"percentage"`
	Sequence    int                 `json:"sequence" binding:"required"`
	Approvers   []RuleApproverEntry `json:"approvers" binding:"required"`
}

// RuleApproverEntry is one roster entry of CreateRuleRequest
type RuleApproverEntry struct {
	UserID            int64 `json:"user_id" binding:"required"`
	IsSpecialApprover bool  `json:"is_special_approver"`
}

// UpdateRuleRequest is the body of PATCH /api/rules/:id
type UpdateRuleRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// SubmitExpense handles POST /api/expenses
func (h *Handlers) SubmitExpense(c *gin.Context) {
	var req SubmitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	expenseDate, err := time.Parse("2006-01-02", req.ExpenseDate)
	if err != nil {
		h.badRequest(c, "expense_date must be YYYY-MM-DD")
		return
	}

	expense, err := h.services.Expense.Submit(c.Request.Context(), callerIdentity(c), service.SubmitExpenseInput{
		Amount:           req.Amount,
		OriginalCurrency: req.Currency,
		Category:         req.Category,
		Description:      req.Description,
		ExpenseDate:      expenseDate,
	})
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: expense})
}

// ListExpenses handles GET /api/expenses
func (h *Handlers) ListExpenses(c *gin.Context) {
	expenses, err := h.services.Expense.List(c.Request.Context(), callerIdentity(c), c.Query("status"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expenses})
}

// GetExpense handles GET /api/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	expense, err := h.services.Expense.GetWithChain(c.Request.Context(), callerIdentity(c), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// RecordDecision handles POST /api/expenses/:id/decision
func (h *Handlers) RecordDecision(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	outcome, err := h.services.Decision.RecordDecision(c.Request.Context(), callerIdentity(c), id, req.Decision, req.Comments)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    DecisionResponse{ExpenseID: id, Outcome: string(outcome)},
	})
}

// OverrideExpense handles POST /api/expenses/:id/override
func (h *Handlers) OverrideExpense(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	expense, err := h.services.Override.Override(c.Request.Context(), callerIdentity(c), id, req.Action, req.Reason)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// ApprovalInbox handles GET /api/approvals
func (h *Handlers) ApprovalInbox(c *gin.Context) {
	requests, err := h.services.Decision.Inbox(c.Request.Context(), callerIdentity(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// CreateRule handles POST /api/rules
func (h *Handlers) CreateRule(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	input := service.CreateRuleInput{
		Name:        req.Name,
		Description: req.Description,
		RuleType:    req.RuleType,
		Percentage:  req.Percentage,
		Sequence:    req.Sequence,
	}
	for _, a := range req.Approvers {
		input.Approvers = append(input.Approvers, service.RuleApproverInput{
			UserID:            a.UserID,
			IsSpecialApprover: a.IsSpecialApprover,
		})
	}

	rule, err := h.services.Rule.Create(c.Request.Context(), callerIdentity(c), input)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: rule})
}

// ListRules handles GET /api/rules
func (h *Handlers) ListRules(c *gin.Context) {
	rules, err := h.services.Rule.List(c.Request.Context(), callerIdentity(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rules})
}

// UpdateRule handles PATCH /api/rules/:id
func (h *Handlers) UpdateRule(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	rule, err := h.services.Rule.SetActive(c.Request.Context(), callerIdentity(c), id, *req.IsActive)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rule})
}

// DeleteRule handles DELETE /api/rules/:id
func (h *Handlers) DeleteRule(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.services.Rule.Delete(c.Request.Context(), callerIdentity(c), id); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// GetUser handles GET /api/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	user, err := h.services.User.Get(c.Request.Context(), callerIdentity(c), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: user})
}

// DeleteUser handles DELETE /api/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.services.User.Delete(c.Request.Context(), callerIdentity(c), id); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ListNotifications handles GET /api/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.services.Notification.List(c.Request.Context(), callerIdentity(c), unreadOnly)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: notifications})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.services.Notification.MarkRead(c.Request.Context(), callerIdentity(c), id); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ExportExpenseReport handles GET /api/reports/expenses
func (h *Handlers) ExportExpenseReport(c *gin.Context) {
	workbook, err := h.services.Report.ExportCompanyExpenses(c.Request.Context(), callerIdentity(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("expenses-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream report", "error", err)
	}
}

func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// serviceError maps the application layer's sentinel errors to HTTP status
// codes. Unknown errors become opaque 500s.
func (h *Handlers) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrValidation):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, entity.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, entity.ErrAlreadyFinalized), errors.Is(err, entity.ErrConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, entity.ErrRuleMisconfigured):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Unhandled service error", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal server error"})
	}
}
