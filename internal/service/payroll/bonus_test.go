package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

func TestSaveBonusDefaults(t *testing.T) {
	repo := newFakeRepo()
	emp := activeEmployee("emp-1", "0001", "Alice Rahman")
	svc, _, _ := newTestService(repo, emp)
	ctx := authedContext(t)

	taxable := true
	bonus, err := svc.SaveBonus(ctx, payroll.SaveBonusRequest{
		EmployeeID: emp.ID,
		CycleID:    "cycle-1",
		Title:      "Q2 Target",
		Amount:     decimal.NewFromInt(750),
		Kind:       "commission",
		Taxable:    &taxable,
	})
	require.NoError(t, err)

	assert.Equal(t, payroll.BonusDirectionEarning, bonus.Direction)
	assert.True(t, bonus.Taxable)
	assert.Equal(t, payroll.BonusStatusPending, bonus.Status)
}

func TestSaveBonusPenaltyDefaultsToDeduction(t *testing.T) {
	repo := newFakeRepo()
	emp := activeEmployee("emp-1", "0001", "Alice Rahman")
	svc, _, _ := newTestService(repo, emp)

	taxable := true
	penalty, err := svc.SaveBonus(authedContext(t), payroll.SaveBonusRequest{
		EmployeeID: emp.ID,
		CycleID:    "cycle-1",
		Title:      "Damaged equipment",
		Amount:     decimal.NewFromInt(100),
		Kind:       "penalty",
		Taxable:    &taxable,
	})
	require.NoError(t, err)

	assert.Equal(t, payroll.BonusDirectionDeduction, penalty.Direction)
	assert.False(t, penalty.Taxable, "deductions are never taxable")
}

func TestSaveBonusRejectsAppliedRow(t *testing.T) {
	repo := newFakeRepo()
	emp := activeEmployee("emp-1", "0001", "Alice Rahman")
	repo.bonuses["bonus-1"] = payroll.Bonus{
		ID: "bonus-1", EmployeeID: emp.ID, CycleID: "cycle-1",
		Status: payroll.BonusStatusApplied,
	}
	svc, _, _ := newTestService(repo, emp)

	id := "bonus-1"
	_, err := svc.SaveBonus(authedContext(t), payroll.SaveBonusRequest{
		ID:         &id,
		EmployeeID: emp.ID,
		CycleID:    "cycle-1",
		Title:      "Edited after the fact",
		Amount:     decimal.NewFromInt(999),
		Kind:       "bonus",
	})
	assert.ErrorIs(t, err, payroll.ErrBonusAlreadyApplied)
}

func TestDeleteBonus(t *testing.T) {
	repo := newFakeRepo()
	repo.bonuses["pending"] = payroll.Bonus{ID: "pending", Status: payroll.BonusStatusPending}
	repo.bonuses["applied"] = payroll.Bonus{ID: "applied", Status: payroll.BonusStatusApplied}
	svc, _, _ := newTestService(repo)
	ctx := authedContext(t)

	require.NoError(t, svc.DeleteBonus(ctx, "pending"))
	assert.NotContains(t, repo.bonuses, "pending")

	assert.ErrorIs(t, svc.DeleteBonus(ctx, "applied"), payroll.ErrBonusAlreadyApplied)
	assert.ErrorIs(t, svc.DeleteBonus(ctx, "missing"), payroll.ErrBonusNotFound)
}

func TestSaveBonusValidation(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := newTestService(repo)

	_, err := svc.SaveBonus(authedContext(t), payroll.SaveBonusRequest{
		EmployeeID: "emp-1",
		CycleID:    "cycle-1",
		Title:      "Bad kind",
		Amount:     decimal.NewFromInt(100),
		Kind:       "gift",
	})
	require.Error(t, err)
}
