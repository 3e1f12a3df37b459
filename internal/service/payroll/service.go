package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tovfikur/attsys-sub001/internal/domain/attendance"
	"github.com/tovfikur/attsys-sub001/internal/domain/employee"
	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
	"github.com/tovfikur/attsys-sub001/internal/pkg/audit"
	"github.com/tovfikur/attsys-sub001/internal/pkg/email"
)

type Service struct {
	repo         payroll.Repository
	employeeRepo employee.Repository
	processor    attendance.Processor
	mailer       email.Mailer
	audit        *audit.Logger
}

func NewService(
	repo payroll.Repository,
	employeeRepo employee.Repository,
	processor attendance.Processor,
	mailer email.Mailer,
	auditLogger *audit.Logger,
) *Service {
	return &Service{
		repo:         repo,
		employeeRepo: employeeRepo,
		processor:    processor,
		mailer:       mailer,
		audit:        auditLogger,
	}
}

// Helper to get company_id, user_id, role and name from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID, role, name string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)
	role, _ = claims["role"].(string)
	name, _ = claims["name"].(string)

	return companyID, userID, role, name, nil
}

// ========== SETTINGS ==========

func (s *Service) GetSettings(ctx context.Context) (map[string]string, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetSettings(ctx, companyID)
}

func (s *Service) SaveSettings(ctx context.Context, req payroll.SaveSettingsRequest) error {
	companyID, userID, role, name, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	for key, value := range req.Settings {
		if err := s.repo.SaveSetting(ctx, companyID, key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	s.audit.Log(ctx, "payroll.settings.updated", map[string]any{"keys": len(req.Settings)}, audit.User{ID: userID, Role: role, Name: name})
	return nil
}

// ========== SALARY COMPONENTS & STRUCTURES ==========

func (s *Service) CreateComponent(ctx context.Context, req payroll.CreateComponentRequest) (payroll.SalaryComponent, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.SalaryComponent{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.SalaryComponent{}, err
	}

	taxable := true
	if req.IsTaxable != nil {
		taxable = *req.IsTaxable
	}

	return s.repo.CreateComponent(ctx, payroll.SalaryComponent{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Name:      req.Name,
		Type:      payroll.ItemType(req.Type),
		IsTaxable: taxable,
		GLCode:    req.GLCode,
	})
}

func (s *Service) ListComponents(ctx context.Context) ([]payroll.SalaryComponent, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListComponents(ctx, companyID)
}

// SaveSalaryStructure appends a new structure version. Older versions stay
// in place; the active structure for a date is the latest effective one.
func (s *Service) SaveSalaryStructure(ctx context.Context, req payroll.SaveSalaryStructureRequest) (string, error) {
	companyID, userID, role, name, err := getClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		return "", err
	}

	effectiveFrom, _ := time.Parse("2006-01-02", req.EffectiveFrom)
	structure := payroll.SalaryStructure{
		ID:            uuid.NewString(),
		CompanyID:     companyID,
		EmployeeID:    req.EmployeeID,
		EffectiveFrom: effectiveFrom,
		BaseSalary:    req.BaseSalary,
		PaymentMethod: req.PaymentMethod,
		Status:        "active",
	}
	for _, item := range req.Items {
		structure.Items = append(structure.Items, payroll.SalaryStructureItem{
			ID:           uuid.NewString(),
			ComponentID:  item.ComponentID,
			Name:         item.Name,
			Type:         payroll.ItemType(item.Type),
			Amount:       item.Amount,
			IsPercentage: item.IsPercentage,
			Percentage:   item.Percentage,
		})
	}

	id, err := s.repo.SaveSalaryStructure(ctx, structure)
	if err != nil {
		return "", err
	}

	s.audit.Log(ctx, "payroll.structure.saved", map[string]any{
		"employee_id": req.EmployeeID,
		"base_salary": req.BaseSalary.String(),
	}, audit.User{ID: userID, Role: role, Name: name})
	return id, nil
}

func (s *Service) GetSalaryHistory(ctx context.Context, employeeID string) ([]payroll.SalaryStructure, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetSalaryHistory(ctx, employeeID, companyID)
}

// ========== TAX SLABS ==========

func (s *Service) ListTaxSlabs(ctx context.Context) ([]payroll.TaxSlab, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTaxSlabs(ctx, companyID)
}

func (s *Service) SaveTaxSlab(ctx context.Context, req payroll.SaveTaxSlabRequest) (payroll.TaxSlab, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.TaxSlab{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.TaxSlab{}, err
	}

	slab := payroll.TaxSlab{
		CompanyID:  companyID,
		Name:       req.Name,
		MinSalary:  req.MinSalary,
		MaxSalary:  req.MaxSalary,
		TaxPercent: req.TaxPercent,
	}
	if req.ID != nil {
		slab.ID = *req.ID
	} else {
		slab.ID = uuid.NewString()
	}
	return s.repo.SaveTaxSlab(ctx, slab)
}

func (s *Service) DeleteTaxSlab(ctx context.Context, id string) error {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteTaxSlab(ctx, id, companyID)
}

// ========== BANK ACCOUNTS ==========

func (s *Service) ListBankAccounts(ctx context.Context, employeeID string) ([]payroll.BankAccount, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBankAccounts(ctx, employeeID, companyID)
}

func (s *Service) SaveBankAccount(ctx context.Context, req payroll.SaveBankAccountRequest) (payroll.BankAccount, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.BankAccount{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.BankAccount{}, err
	}

	account := payroll.BankAccount{
		CompanyID:     companyID,
		EmployeeID:    req.EmployeeID,
		BankName:      req.BankName,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		BranchName:    req.BranchName,
		RoutingNumber: req.RoutingNumber,
		IsPrimary:     req.IsPrimary,
	}
	if req.ID != nil {
		account.ID = *req.ID
	} else {
		account.ID = uuid.NewString()
	}

	saved, err := s.repo.SaveBankAccount(ctx, account)
	if err != nil {
		return payroll.BankAccount{}, err
	}
	if req.IsPrimary {
		if err := s.repo.SetPrimaryBankAccount(ctx, saved.ID, req.EmployeeID, companyID); err != nil {
			return payroll.BankAccount{}, err
		}
	}
	return saved, nil
}

func (s *Service) DeleteBankAccount(ctx context.Context, id string) error {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteBankAccount(ctx, id, companyID)
}

// ========== REPORTS ==========

func (s *Service) GetYearlyCost(ctx context.Context, year int) ([]payroll.MonthlyCost, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetYearlyCost(ctx, companyID, year)
}

func (s *Service) GetEmployeePayslipHistory(ctx context.Context, employeeID string, limit int) ([]payroll.Payslip, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	return s.repo.GetEmployeePayslipHistory(ctx, employeeID, companyID, limit)
}

func (s *Service) GetCycleTotals(ctx context.Context, cycleID string) (payroll.CycleTotals, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.CycleTotals{}, err
	}
	return s.repo.GetCycleTotals(ctx, cycleID, companyID)
}

// ========== DAY STATUS BREAKDOWN ==========

// DayStatus is the per-date classification used by drill-down views.
type DayStatus struct {
	Date              string   `json:"date"`
	Day               string   `json:"day"`
	ScheduledWorkday  bool     `json:"scheduled_workday"`
	WeeklyOff         bool     `json:"weekly_off"`
	Holiday           bool     `json:"holiday"`
	LeavePaid         float64  `json:"leave_paid"`
	LeaveUnpaid       float64  `json:"leave_unpaid"`
	LeaveTypes        []string `json:"leave_types,omitempty"`
	AttendanceStatus  *string  `json:"attendance_status,omitempty"`
	LateMinutes       int      `json:"late_minutes"`
	EarlyLeaveMinutes int      `json:"early_leave_minutes"`
	OvertimeMinutes   int      `json:"overtime_minutes"`
	WorkedMinutes     int      `json:"worked_minutes"`
	Status            string   `json:"status"`
}

// EmployeeDayStatuses classifies every date of a range for one employee.
// Holiday wins over weekly off, which wins over any leave or attendance.
func (s *Service) EmployeeDayStatuses(ctx context.Context, employeeID string, start, end time.Time) ([]DayStatus, error) {
	companyID, _, _, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	workingDays := s.employeeWorkingDays(ctx, employeeID, companyID)
	workingSet := make(map[string]bool, len(workingDays))
	for _, d := range workingDays {
		workingSet[d] = true
	}

	holidays, err := s.repo.GetHolidayDates(ctx, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}

	leavesByDate := make(map[string][]payroll.LeaveRecord)
	leaves, err := s.repo.GetApprovedLeaves(ctx, employeeID, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaves: %w", err)
	}
	for _, lr := range leaves {
		key := lr.Date.Format(dateKeyLayout)
		leavesByDate[key] = append(leavesByDate[key], lr)
	}

	attendanceByDate := make(map[string]payroll.AttendanceDay)
	days, err := s.repo.GetAttendanceDays(ctx, employeeID, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance days: %w", err)
	}
	for _, day := range days {
		attendanceByDate[day.Date.Format(dateKeyLayout)] = day
	}

	start = truncateDay(start)
	end = truncateDay(end)
	if start.After(end) {
		start, end = end, start
	}

	var out []DayStatus
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateKeyLayout)
		dow := d.Format("Mon")

		isWorkDay := workingSet[dow]
		isHoliday := holidays[date]

		var leavePaid, leaveUnpaid float64
		var leaveTypes []string
		for _, lr := range leavesByDate[date] {
			frac := dayPartFraction(lr.DayPart)
			if lr.IsPaid {
				leavePaid += frac
			} else {
				leaveUnpaid += frac
			}
			if lr.Type != "" {
				leaveTypes = append(leaveTypes, lr.Type)
			}
		}
		leavePaid = min(1.0, leavePaid)
		leaveUnpaid = min(1.0, leaveUnpaid)

		att, hasAtt := attendanceByDate[date]
		present := hasAtt && att.Status != "Absent" && att.Status != "Incomplete"

		status := "absent"
		switch {
		case isHoliday:
			status = "holiday"
		case !isWorkDay:
			status = "weekly_off"
		case leavePaid > 0 && leaveUnpaid > 0:
			status = "leave_mixed"
		case leaveUnpaid > 0 && present:
			status = "present_and_unpaid_leave"
		case leavePaid > 0 && present:
			status = "present_and_paid_leave"
		case leaveUnpaid > 0:
			status = "unpaid_leave"
		case leavePaid > 0:
			status = "paid_leave"
		case present:
			status = "present"
		}

		ds := DayStatus{
			Date:             date,
			Day:              dow,
			ScheduledWorkday: isWorkDay && !isHoliday,
			WeeklyOff:        !isWorkDay,
			Holiday:          isHoliday,
			LeavePaid:        leavePaid,
			LeaveUnpaid:      leaveUnpaid,
			LeaveTypes:       uniqueStrings(leaveTypes),
			Status:           status,
		}
		if hasAtt {
			attStatus := att.Status
			ds.AttendanceStatus = &attStatus
			ds.LateMinutes = att.LateMinutes
			ds.EarlyLeaveMinutes = att.EarlyLeaveMinutes
			ds.OvertimeMinutes = att.OvertimeMinutes
			ds.WorkedMinutes = att.WorkedMinutes
		}
		out = append(out, ds)
	}

	return out, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func sumItems(items []payroll.PayslipItem, itemType payroll.ItemType) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Type == itemType {
			total = total.Add(item.Amount)
		}
	}
	return total
}
