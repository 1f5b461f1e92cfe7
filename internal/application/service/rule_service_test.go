package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/expense-flow/internal/domain/entity"
)

func validRuleInput() CreateRuleInput {
	return CreateRuleInput{
		Name:       "Finance review",
		RuleType:   entity.RuleTypePercentage,
		Percentage: pct(60),
		Sequence:   1,
		Approvers: []RuleApproverInput{
			{UserID: 30},
			{UserID: 31},
		},
	}
}

func companyUserRepo(companyID int64) *mockUserRepo {
	return &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
			return &entity.User{ID: id, CompanyID: companyID}, nil
		},
	}
}

func TestCreateRule_Validation(t *testing.T) {
	service := NewRuleService(&mockRuleRepo{}, companyUserRepo(1), &mockTxManager{}, &mockLogger{})

	tests := []struct {
		name   string
		mutate func(*CreateRuleInput)
	}{
		{"name too short", func(in *CreateRuleInput) { in.Name = "A" }},
		{"unknown rule type", func(in *CreateRuleInput) { in.RuleType = "MAJORITY" }},
		{"zero sequence", func(in *CreateRuleInput) { in.Sequence = 0 }},
		{"empty roster", func(in *CreateRuleInput) { in.Approvers = nil }},
		{"percentage missing", func(in *CreateRuleInput) { in.Percentage = nil }},
		{"percentage over 100", func(in *CreateRuleInput) { in.Percentage = pct(120) }},
		{"percentage below 1", func(in *CreateRuleInput) { in.Percentage = pct(0.5) }},
		{"duplicate approver", func(in *CreateRuleInput) {
			in.Approvers = []RuleApproverInput{{UserID: 30}, {UserID: 30}}
		}},
		{"specific rule without special approver", func(in *CreateRuleInput) {
			in.RuleType = entity.RuleTypeSpecificApprover
			in.Percentage = nil
		}},
		{"hybrid rule without special approver", func(in *CreateRuleInput) {
			in.RuleType = entity.RuleTypeHybrid
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRuleInput()
			tt.mutate(&input)
			_, err := service.Create(context.Background(), admin, input)
			assert.ErrorIs(t, err, entity.ErrValidation)
		})
	}
}

func TestCreateRule_AdminOnly(t *testing.T) {
	service := NewRuleService(&mockRuleRepo{}, companyUserRepo(1), &mockTxManager{}, &mockLogger{})

	_, err := service.Create(context.Background(), manager, validRuleInput())
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestCreateRule_RejectsCrossCompanyRoster(t *testing.T) {
	created := false
	ruleRepo := &mockRuleRepo{
		createFunc: func(ctx context.Context, rule *entity.ApprovalRule) error {
			created = true
			return nil
		},
	}
	service := NewRuleService(ruleRepo, companyUserRepo(2), &mockTxManager{}, &mockLogger{})

	_, err := service.Create(context.Background(), admin, validRuleInput())
	assert.ErrorIs(t, err, entity.ErrValidation)
	assert.False(t, created)
}

func TestCreateRule_BuildsRoster(t *testing.T) {
	var stored *entity.ApprovalRule
	ruleRepo := &mockRuleRepo{
		createFunc: func(ctx context.Context, rule *entity.ApprovalRule) error {
			rule.ID = 7
			stored = rule
			return nil
		},
	}
	service := NewRuleService(ruleRepo, companyUserRepo(1), &mockTxManager{}, &mockLogger{})

	input := validRuleInput()
	input.RuleType = entity.RuleTypeHybrid
	input.Approvers = []RuleApproverInput{
		{UserID: 30, IsSpecialApprover: true},
		{UserID: 31},
	}

	got, err := service.Create(context.Background(), admin, input)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, admin.CompanyID, stored.CompanyID)
	assert.True(t, stored.IsActive)
	require.Len(t, stored.Approvers, 2)
	assert.True(t, stored.Approvers[0].IsSpecialApprover)
	assert.Equal(t, 1, stored.Approvers[0].Position)
	assert.Equal(t, 2, stored.Approvers[1].Position)
}

func TestDeleteRule_RequiresInactive(t *testing.T) {
	rules := map[int64]*entity.ApprovalRule{
		1: {ID: 1, CompanyID: 1, IsActive: true},
		2: {ID: 2, CompanyID: 1, IsActive: false},
		3: {ID: 3, CompanyID: 2, IsActive: false},
	}
	deleted := int64(0)
	ruleRepo := &mockRuleRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.ApprovalRule, error) {
			return rules[id], nil
		},
		deleteFunc: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	service := NewRuleService(ruleRepo, &mockUserRepo{}, &mockTxManager{}, &mockLogger{})

	err := service.Delete(context.Background(), admin, 1)
	assert.ErrorIs(t, err, entity.ErrValidation)
	assert.Zero(t, deleted)

	err = service.Delete(context.Background(), admin, 3)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	err = service.Delete(context.Background(), admin, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestSetActive(t *testing.T) {
	rule := &entity.ApprovalRule{ID: 1, CompanyID: 1, IsActive: true}
	var gotActive bool
	ruleRepo := &mockRuleRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.ApprovalRule, error) {
			return rule, nil
		},
		setActiveFunc: func(ctx context.Context, id int64, active bool) error {
			gotActive = active
			return nil
		},
	}
	service := NewRuleService(ruleRepo, &mockUserRepo{}, &mockTxManager{}, &mockLogger{})

	got, err := service.SetActive(context.Background(), admin, 1, false)
	require.NoError(t, err)
	assert.False(t, gotActive)
	assert.False(t, got.IsActive)

	_, err = service.SetActive(context.Background(), manager, 1, false)
	assert.ErrorIs(t, err, entity.ErrForbidden)
}
