package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/expense-flow/internal/domain/entity"
)

func pctRule(percentage float64, approverIDs ...int64) *entity.ApprovalRule {
	r := &entity.ApprovalRule{
		ID:         1,
		RuleType:   entity.RuleTypePercentage,
		Percentage: &percentage,
	}
	for i, id := range approverIDs {
		r.Approvers = append(r.Approvers, &entity.RuleApprover{UserID: id, Position: i + 1})
	}
	return r
}

func specificRule(specialIDs []int64, regularIDs ...int64) *entity.ApprovalRule {
	r := &entity.ApprovalRule{
		ID:       2,
		RuleType: entity.RuleTypeSpecificApprover,
	}
	pos := 1
	for _, id := range specialIDs {
		r.Approvers = append(r.Approvers, &entity.RuleApprover{UserID: id, IsSpecialApprover: true, Position: pos})
		pos++
	}
	for _, id := range regularIDs {
		r.Approvers = append(r.Approvers, &entity.RuleApprover{UserID: id, Position: pos})
		pos++
	}
	return r
}

func hybridRule(percentage float64, specialIDs []int64, regularIDs ...int64) *entity.ApprovalRule {
	r := specificRule(specialIDs, regularIDs...)
	r.ID = 3
	r.RuleType = entity.RuleTypeHybrid
	r.Percentage = &percentage
	return r
}

// requests builds one ledger row per approver id with the given statuses.
func requests(statuses map[int64]string) []*entity.ApprovalRequest {
	var out []*entity.ApprovalRequest
	for id, status := range statuses {
		out = append(out, &entity.ApprovalRequest{ApproverID: id, Sequence: 1, Status: status})
	}
	return out
}

func TestEvaluate_EmptyRequestSet(t *testing.T) {
	verdict, err := Evaluate(pctRule(50, 1, 2), nil)
	require.NoError(t, err)
	assert.Equal(t, VerdictPending, verdict)
}

func TestEvaluate_RejectionVetoes(t *testing.T) {
	tests := []struct {
		name string
		rule *entity.ApprovalRule
	}{
		{"percentage", pctRule(50, 1, 2, 3)},
		{"specific approver", specificRule([]int64{1}, 2, 3)},
		{"hybrid", hybridRule(50, []int64{1}, 2, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := Evaluate(tt.rule, requests(map[int64]string{
				1: entity.RequestStatusPending,
				2: entity.RequestStatusRejected,
				3: entity.RequestStatusPending,
			}))
			require.NoError(t, err)
			assert.Equal(t, VerdictReject, verdict, "a single rejection must veto regardless of rule type")
		})
	}
}

func TestEvaluate_Percentage(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[int64]string
		want     Verdict
	}{
		{
			name: "threshold reached exactly",
			// 3 of 5 approved = 60%
			statuses: map[int64]string{
				1: entity.RequestStatusApproved,
				2: entity.RequestStatusApproved,
				3: entity.RequestStatusApproved,
				4: entity.RequestStatusPending,
				5: entity.RequestStatusPending,
			},
			want: VerdictApprove,
		},
		{
			name: "threshold still reachable",
			// 2 approved, 3 pending: max possible 100%
			statuses: map[int64]string{
				1: entity.RequestStatusApproved,
				2: entity.RequestStatusApproved,
				3: entity.RequestStatusPending,
				4: entity.RequestStatusPending,
				5: entity.RequestStatusPending,
			},
			want: VerdictPending,
		},
		{
			name: "threshold exactly reachable only if last approves",
			// 2 approved, 2 cancelled, 1 pending: max possible = 60%
			statuses: map[int64]string{
				1: entity.RequestStatusApproved,
				2: entity.RequestStatusApproved,
				3: entity.RequestStatusCancelled,
				4: entity.RequestStatusCancelled,
				5: entity.RequestStatusPending,
			},
			want: VerdictPending,
		},
		{
			name: "last vote pushes over threshold",
			statuses: map[int64]string{
				1: entity.RequestStatusApproved,
				2: entity.RequestStatusApproved,
				3: entity.RequestStatusCancelled,
				4: entity.RequestStatusCancelled,
				5: entity.RequestStatusApproved,
			},
			want: VerdictApprove,
		},
		{
			name: "threshold unreachable",
			// 1 approved, 1 pending of 5: max possible 40% < 60%
			statuses: map[int64]string{
				1: entity.RequestStatusApproved,
				2: entity.RequestStatusCancelled,
				3: entity.RequestStatusCancelled,
				4: entity.RequestStatusCancelled,
				5: entity.RequestStatusPending,
			},
			want: VerdictReject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := Evaluate(pctRule(60, 1, 2, 3, 4, 5), requests(tt.statuses))
			require.NoError(t, err)
			assert.Equal(t, tt.want, verdict)
		})
	}
}

func TestEvaluate_PercentageUnanimous(t *testing.T) {
	// 100% threshold requires every approver; 2 of 3 is not enough.
	verdict, err := Evaluate(pctRule(100, 1, 2, 3), requests(map[int64]string{
		1: entity.RequestStatusApproved,
		2: entity.RequestStatusApproved,
		3: entity.RequestStatusPending,
	}))
	require.NoError(t, err)
	assert.Equal(t, VerdictPending, verdict)

	verdict, err = Evaluate(pctRule(100, 1, 2, 3), requests(map[int64]string{
		1: entity.RequestStatusApproved,
		2: entity.RequestStatusApproved,
		3: entity.RequestStatusApproved,
	}))
	require.NoError(t, err)
	assert.Equal(t, VerdictApprove, verdict)
}

func TestEvaluate_SpecificApprover(t *testing.T) {
	r := specificRule([]int64{1}, 2, 3, 4)

	t.Run("special approval is dispositive", func(t *testing.T) {
		verdict, err := Evaluate(r, requests(map[int64]string{
			1: entity.RequestStatusApproved,
			2: entity.RequestStatusPending,
			3: entity.RequestStatusPending,
			4: entity.RequestStatusPending,
		}))
		require.NoError(t, err)
		assert.Equal(t, VerdictApprove, verdict)
	})

	t.Run("waits while special approver pending", func(t *testing.T) {
		verdict, err := Evaluate(r, requests(map[int64]string{
			1: entity.RequestStatusPending,
			2: entity.RequestStatusApproved,
			3: entity.RequestStatusApproved,
			4: entity.RequestStatusApproved,
		}))
		require.NoError(t, err)
		assert.Equal(t, VerdictPending, verdict)
	})

	t.Run("all special approvers resolved without approving", func(t *testing.T) {
		verdict, err := Evaluate(r, requests(map[int64]string{
			1: entity.RequestStatusCancelled,
			2: entity.RequestStatusApproved,
			3: entity.RequestStatusPending,
			4: entity.RequestStatusPending,
		}))
		require.NoError(t, err)
		assert.Equal(t, VerdictReject, verdict)
	})

	t.Run("special rejection vetoes before type branch", func(t *testing.T) {
		verdict, err := Evaluate(r, requests(map[int64]string{
			1: entity.RequestStatusRejected,
			2: entity.RequestStatusPending,
			3: entity.RequestStatusPending,
			4: entity.RequestStatusPending,
		}))
		require.NoError(t, err)
		assert.Equal(t, VerdictReject, verdict)
	})
}

func TestEvaluate_Hybrid(t *testing.T) {
	r := hybridRule(80, []int64{1}, 2, 3, 4, 5)

	t.Run("special approval wins at zero percent", func(t *testing.T) {
		verdict, err := Evaluate(r, requests(map[int64]string{
			1: entity.RequestStatusApproved,
			2: entity.RequestStatusPending,
			3: entity.RequestStatusPending,
			4: entity.RequestStatusPending,
			5: entity.RequestStatusPending,
		}))
		require.NoError(t, err)
		assert.Equal(t, VerdictApprove, verdict)
	})

	t.Run("percentage path wins without special approval", func(t *testing.T) {
		// 4 of 5 approved = 80%, special approver still pending
		verdict, err := Evaluate(r, requests(map[int64]string{
			1: entity.RequestStatusPending,
			2: entity.RequestStatusApproved,
			3: entity.RequestStatusApproved,
			4: entity.RequestStatusApproved,
			5: entity.RequestStatusApproved,
		}))
		require.NoError(t, err)
		assert.Equal(t, VerdictApprove, verdict)
	})

	t.Run("pending while either path remains open", func(t *testing.T) {
		// Percentage unreachable (max 20%) but special approver still pending.
		verdict, err := Evaluate(r, requests(map[int64]string{
			1: entity.RequestStatusPending,
			2: entity.RequestStatusCancelled,
			3: entity.RequestStatusCancelled,
			4: entity.RequestStatusCancelled,
			5: entity.RequestStatusApproved,
		}))
		require.NoError(t, err)
		assert.Equal(t, VerdictPending, verdict)
	})

	t.Run("rejects when both paths foreclosed", func(t *testing.T) {
		verdict, err := Evaluate(r, requests(map[int64]string{
			1: entity.RequestStatusCancelled,
			2: entity.RequestStatusCancelled,
			3: entity.RequestStatusCancelled,
			4: entity.RequestStatusCancelled,
			5: entity.RequestStatusApproved,
		}))
		require.NoError(t, err)
		assert.Equal(t, VerdictReject, verdict)
	})
}

func TestEvaluate_MisconfiguredRules(t *testing.T) {
	t.Run("zero approvers", func(t *testing.T) {
		r := &entity.ApprovalRule{RuleType: entity.RuleTypePercentage}
		verdict, err := Evaluate(r, requests(map[int64]string{1: entity.RequestStatusPending}))
		assert.ErrorIs(t, err, entity.ErrRuleMisconfigured)
		assert.Equal(t, VerdictReject, verdict)
	})

	t.Run("specific approver rule without special approver", func(t *testing.T) {
		r := specificRule(nil, 1, 2)
		verdict, err := Evaluate(r, requests(map[int64]string{
			1: entity.RequestStatusPending,
			2: entity.RequestStatusPending,
		}))
		assert.ErrorIs(t, err, entity.ErrRuleMisconfigured)
		assert.Equal(t, VerdictReject, verdict)
	})

	t.Run("hybrid rule without special approver", func(t *testing.T) {
		pct := 50.0
		r := &entity.ApprovalRule{
			RuleType:   entity.RuleTypeHybrid,
			Percentage: &pct,
			Approvers:  []*entity.RuleApprover{{UserID: 1, Position: 1}},
		}
		verdict, err := Evaluate(r, requests(map[int64]string{1: entity.RequestStatusPending}))
		assert.ErrorIs(t, err, entity.ErrRuleMisconfigured)
		assert.Equal(t, VerdictReject, verdict)
	})
}
