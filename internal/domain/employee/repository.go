package employee

import "context"

type Repository interface {
	GetByID(ctx context.Context, id, companyID string) (Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
}
