package company

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinova/clinova/internal/domain/user"
)

var (
	ErrNotFound  = errors.New("company not found")
	ErrForbidden = errors.New("not the company owner")
)

// Service manages places of service. Every company is owned by the
// professional who created it; reads and writes are scoped to the owner.
type Service struct {
	companies CompanyRepository
	users     user.UserRepository
	addresses user.AddressRepository
}

func NewService(companies CompanyRepository, users user.UserRepository, addresses user.AddressRepository) *Service {
	return &Service{companies: companies, users: users, addresses: addresses}
}

// Create validates the owner and creates the company. A physical company
// with an address gets its address row in the same call; virtual companies
// never get one.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, c *Company, addr *user.Address) (*CompanyWithAddress, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("owner not found")
		}
		return nil, err
	}
	if owner.IsDeleted {
		return nil, fmt.Errorf("owner not found")
	}
	if owner.Role != user.RoleProfessional && owner.Role != user.RoleSuper {
		return nil, fmt.Errorf("only professionals can create companies")
	}
	if c.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	c.UserProfessionalID = ownerID
	if err := s.companies.Create(ctx, c); err != nil {
		return nil, err
	}

	out := &CompanyWithAddress{Company: *c}
	if !c.IsVirtual && addr != nil {
		addr.CompanyID = &c.ID
		addr.UserID = nil
		if err := s.addresses.Create(ctx, addr); err != nil {
			return nil, fmt.Errorf("create company address: %w", err)
		}
		out.Address = addr
	}
	return out, nil
}

// Get returns a company with its address, enforcing ownership.
func (s *Service) Get(ctx context.Context, companyID, callerID uuid.UUID) (*CompanyWithAddress, error) {
	c, err := s.owned(ctx, companyID, callerID)
	if err != nil {
		return nil, err
	}
	return s.withAddress(ctx, c)
}

// ListByOwner returns all of the caller's companies with their addresses.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*CompanyWithAddress, error) {
	companies, err := s.companies.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*CompanyWithAddress, 0, len(companies))
	for _, c := range companies {
		cwa, err := s.withAddress(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, cwa)
	}
	return out, nil
}

// Update applies company field changes. Ownership never changes.
func (s *Service) Update(ctx context.Context, companyID, callerID uuid.UUID, in *Company) (*Company, error) {
	c, err := s.owned(ctx, companyID, callerID)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	c.Name = in.Name
	c.Description = in.Description
	c.Email = in.Email
	c.Phone = in.Phone
	c.SocialMedia = in.SocialMedia
	c.IsVirtual = in.IsVirtual
	c.IsActive = in.IsActive
	if err := s.companies.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpsertAddress creates or replaces the company's address.
func (s *Service) UpsertAddress(ctx context.Context, companyID, callerID uuid.UUID, a *user.Address) (*CompanyWithAddress, error) {
	c, err := s.owned(ctx, companyID, callerID)
	if err != nil {
		return nil, err
	}
	if a.Street == "" || a.Number == "" || a.City == "" || a.State == "" || a.ZipCode == "" {
		return nil, fmt.Errorf("street, number, city, state and zip_code are required")
	}
	a.CompanyID = &c.ID
	a.UserID = nil

	existing, err := s.addresses.GetByCompanyID(ctx, c.ID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err := s.addresses.Create(ctx, a); err != nil {
			return nil, err
		}
		return &CompanyWithAddress{Company: *c, Address: a}, nil
	}
	a.ID = existing.ID
	if err := s.addresses.Update(ctx, a); err != nil {
		return nil, err
	}
	return &CompanyWithAddress{Company: *c, Address: a}, nil
}

func (s *Service) owned(ctx context.Context, companyID, callerID uuid.UUID) (*Company, error) {
	c, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if c.UserProfessionalID != callerID {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *Service) withAddress(ctx context.Context, c *Company) (*CompanyWithAddress, error) {
	out := &CompanyWithAddress{Company: *c}
	addr, err := s.addresses.GetByCompanyID(ctx, c.ID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return out, nil
	}
	out.Address = addr
	return out, nil
}
