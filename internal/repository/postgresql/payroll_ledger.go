package postgresql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tovfikur/attsys-sub001/internal/domain/payroll"
)

// ========== LEDGER ==========

func (r *payrollRepository) GetAccountByCode(ctx context.Context, companyID, code string) (payroll.Account, error) {
	q := GetQuerier(ctx, r.db)

	var a payroll.Account
	err := q.QueryRow(ctx, `
		SELECT id, company_id, code, name, type FROM accounts
		WHERE company_id = $1 AND code = $2
	`, companyID, code).Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Account{}, payroll.ErrAccountNotFound
		}
		return payroll.Account{}, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (r *payrollRepository) CreateJournalEntry(ctx context.Context, entry payroll.JournalEntry) (string, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	_, err := q.Exec(ctx, `
		INSERT INTO journal_entries (id, company_id, entry_date, description, reference_type, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, entry.CompanyID, entry.EntryDate, entry.Description, entry.ReferenceType, entry.ReferenceID)
	if err != nil {
		return "", fmt.Errorf("failed to create journal entry: %w", err)
	}

	for _, item := range entry.Items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		_, err := q.Exec(ctx, `
			INSERT INTO journal_items (id, entry_id, account_id, debit, credit)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, entry.ID, item.AccountID, item.Debit, item.Credit)
		if err != nil {
			return "", fmt.Errorf("failed to create journal item: %w", err)
		}
	}

	return entry.ID, nil
}

func (r *payrollRepository) ListJournalEntriesByReference(ctx context.Context, companyID, referenceType, referenceID string) ([]payroll.JournalEntry, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, company_id, entry_date, description, reference_type, reference_id, created_at
		FROM journal_entries
		WHERE company_id = $1 AND reference_type = $2 AND reference_id = $3
		ORDER BY created_at
	`, companyID, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []payroll.JournalEntry
	for rows.Next() {
		var e payroll.JournalEntry
		err := rows.Scan(&e.ID, &e.CompanyID, &e.EntryDate, &e.Description, &e.ReferenceType, &e.ReferenceID, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Items, err = r.listJournalItems(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (r *payrollRepository) listJournalItems(ctx context.Context, entryID string) ([]payroll.JournalItem, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT i.id, i.account_id, i.debit, i.credit, a.code, a.name
		FROM journal_items i
		JOIN accounts a ON a.id = i.account_id
		WHERE i.entry_id = $1
		ORDER BY i.debit DESC, a.code
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal items: %w", err)
	}
	defer rows.Close()

	var items []payroll.JournalItem
	for rows.Next() {
		var it payroll.JournalItem
		err := rows.Scan(&it.ID, &it.AccountID, &it.Debit, &it.Credit, &it.AccountCode, &it.AccountName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ========== BANK ACCOUNTS ==========

func (r *payrollRepository) ListBankAccounts(ctx context.Context, employeeID, companyID string) ([]payroll.BankAccount, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, company_id, employee_id, bank_name, account_name, account_number,
			   branch_name, routing_number, is_primary, created_at
		FROM employee_bank_accounts
		WHERE employee_id = $1 AND company_id = $2
		ORDER BY is_primary DESC, created_at
	`, employeeID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	defer rows.Close()

	var accounts []payroll.BankAccount
	for rows.Next() {
		var a payroll.BankAccount
		err := rows.Scan(&a.ID, &a.CompanyID, &a.EmployeeID, &a.BankName, &a.AccountName, &a.AccountNumber,
			&a.BranchName, &a.RoutingNumber, &a.IsPrimary, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank account: %w", err)
		}
		a.AccountNumber, err = r.encryptor.Decrypt(a.AccountNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt account number: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *payrollRepository) SaveBankAccount(ctx context.Context, account payroll.BankAccount) (payroll.BankAccount, error) {
	q := GetQuerier(ctx, r.db)

	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	encrypted, err := r.encryptor.Encrypt(account.AccountNumber)
	if err != nil {
		return payroll.BankAccount{}, fmt.Errorf("failed to encrypt account number: %w", err)
	}

	if account.IsPrimary {
		_, err := q.Exec(ctx, `
			UPDATE employee_bank_accounts SET is_primary = FALSE
			WHERE employee_id = $1 AND company_id = $2
		`, account.EmployeeID, account.CompanyID)
		if err != nil {
			return payroll.BankAccount{}, fmt.Errorf("failed to clear primary bank account: %w", err)
		}
	}

	query := `
		INSERT INTO employee_bank_accounts (id, company_id, employee_id, bank_name, account_name,
			account_number, branch_name, routing_number, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			bank_name = EXCLUDED.bank_name,
			account_name = EXCLUDED.account_name,
			account_number = EXCLUDED.account_number,
			branch_name = EXCLUDED.branch_name,
			routing_number = EXCLUDED.routing_number,
			is_primary = EXCLUDED.is_primary
		RETURNING id, company_id, employee_id, bank_name, account_name, account_number,
			branch_name, routing_number, is_primary, created_at
	`

	var a payroll.BankAccount
	err = q.QueryRow(ctx, query,
		account.ID, account.CompanyID, account.EmployeeID, account.BankName, account.AccountName,
		encrypted, account.BranchName, account.RoutingNumber, account.IsPrimary,
	).Scan(&a.ID, &a.CompanyID, &a.EmployeeID, &a.BankName, &a.AccountName, &a.AccountNumber,
		&a.BranchName, &a.RoutingNumber, &a.IsPrimary, &a.CreatedAt)
	if err != nil {
		return payroll.BankAccount{}, fmt.Errorf("failed to save bank account: %w", err)
	}

	a.AccountNumber = account.AccountNumber
	return a, nil
}

func (r *payrollRepository) DeleteBankAccount(ctx context.Context, id, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employee_bank_accounts WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete bank account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrBankAccountNotFound
	}
	return nil
}

func (r *payrollRepository) SetPrimaryBankAccount(ctx context.Context, id, employeeID, companyID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE employee_bank_accounts SET is_primary = FALSE
		WHERE employee_id = $1 AND company_id = $2
	`, employeeID, companyID)
	if err != nil {
		return fmt.Errorf("failed to clear primary bank account: %w", err)
	}

	tag, err := q.Exec(ctx, `
		UPDATE employee_bank_accounts SET is_primary = TRUE
		WHERE id = $1 AND employee_id = $2 AND company_id = $3
	`, id, employeeID, companyID)
	if err != nil {
		return fmt.Errorf("failed to set primary bank account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrBankAccountNotFound
	}
	return nil
}

// GetBankDetailsForCycle joins each payslip in the cycle with the
// employee's primary bank account. Employees without one still appear so
// the transfer file shows the gap.
func (r *payrollRepository) GetBankDetailsForCycle(ctx context.Context, cycleID, companyID string) ([]payroll.BankTransferRow, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT e.employee_code, e.full_name, b.bank_name, b.account_number, p.net_salary
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		LEFT JOIN employee_bank_accounts b ON b.employee_id = p.employee_id AND b.is_primary = TRUE
		WHERE p.cycle_id = $1 AND p.company_id = $2
		ORDER BY e.full_name
	`, cycleID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bank details: %w", err)
	}
	defer rows.Close()

	var details []payroll.BankTransferRow
	for rows.Next() {
		var d payroll.BankTransferRow
		if err := rows.Scan(&d.EmployeeCode, &d.EmployeeName, &d.BankName, &d.AccountNumber, &d.NetSalary); err != nil {
			return nil, fmt.Errorf("failed to scan bank details: %w", err)
		}
		if d.AccountNumber != nil {
			plain, err := r.encryptor.Decrypt(*d.AccountNumber)
			if err != nil {
				// A bad row should not block the whole transfer file.
				slog.Warn("failed to decrypt account number", "employee_code", d.EmployeeCode, "error", err)
				d.AccountNumber = nil
			} else {
				d.AccountNumber = &plain
			}
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
