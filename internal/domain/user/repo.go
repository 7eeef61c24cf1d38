package user

import (
	"context"

	"github.com/google/uuid"
)

type AuthUserRepository interface {
	Create(ctx context.Context, au *AuthUser) error
	GetByID(ctx context.Context, id int64) (*AuthUser, error)
	GetByExternalUID(ctx context.Context, externalUID string) (*AuthUser, error)
	GetByEmail(ctx context.Context, email string) (*AuthUser, error)
	Update(ctx context.Context, au *AuthUser) error
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByAuthUserID(ctx context.Context, authUserID int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
}

type AddressRepository interface {
	Create(ctx context.Context, a *Address) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Address, error)
	GetByCompanyID(ctx context.Context, companyID uuid.UUID) (*Address, error)
	Update(ctx context.Context, a *Address) error
}
