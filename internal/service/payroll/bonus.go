package payroll

import (
	"context"

	"github.com/google/uuid"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
	"github.com/tovfikur/attsys-sub001/internal/pkg/audit"
)

func (s *Service) ListBonusesByCycle(ctx context.Context, cycleID string) ([]payroll.Bonus, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBonusesByCycle(ctx, cycleID, companyID)
}

// SaveBonus creates or updates a variable-pay row. Penalties and fines
// default to the deduction side; only earnings can be taxable.
func (s *Service) SaveBonus(ctx context.Context, req payroll.SaveBonusRequest) (payroll.Bonus, error) {
	companyID, userID, role, name, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.Bonus{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.Bonus{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		return payroll.Bonus{}, err
	}

	kind := payroll.BonusKind(req.Kind)
	direction := payroll.BonusDirectionEarning
	if req.Direction != nil {
		direction = payroll.BonusDirection(*req.Direction)
	} else if kind == payroll.BonusKindPenalty || kind == payroll.BonusKindFine {
		direction = payroll.BonusDirectionDeduction
	}

	taxable := false
	if direction == payroll.BonusDirectionEarning && req.Taxable != nil {
		taxable = *req.Taxable
	}

	bonus := payroll.Bonus{
		CompanyID:  companyID,
		EmployeeID: req.EmployeeID,
		CycleID:    req.CycleID,
		Title:      req.Title,
		Amount:     req.Amount,
		Kind:       kind,
		Direction:  direction,
		Taxable:    taxable,
		Status:     payroll.BonusStatusPending,
	}
	if req.ID != nil {
		bonus.ID = *req.ID
	} else {
		bonus.ID = uuid.NewString()
	}

	saved, err := s.repo.SaveBonus(ctx, bonus)
	if err != nil {
		return payroll.Bonus{}, err
	}

	s.audit.Log(ctx, "payroll.bonus.saved", map[string]any{
		"bonus_id":    saved.ID,
		"employee_id": req.EmployeeID,
		"amount":      req.Amount.String(),
	}, audit.User{ID: userID, Role: role, Name: name})
	return saved, nil
}

// DeleteBonus removes a pending or cancelled bonus. Applied rows are part
// of a generated payslip and stay immutable.
func (s *Service) DeleteBonus(ctx context.Context, id string) error {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteBonus(ctx, id, companyID)
}
