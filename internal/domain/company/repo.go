package company

import (
	"context"

	"github.com/google/uuid"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Company, error)
	Update(ctx context.Context, c *Company) error
}
