package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinova/clinova/internal/domain/company"
	"github.com/clinova/clinova/internal/domain/user"
	"github.com/clinova/clinova/internal/platform/token"
)

var (
	ErrNotFound = errors.New("client not found or not linked to this professional")
	ErrExists   = errors.New("an account already exists for this identity")
)

// Service manages the clients a professional registers. A client is a full
// system user (created from the client's own provider token) plus a notes
// row and a link to the registering professional and company.
type Service struct {
	clients   ClientRepository
	authUsers user.AuthUserRepository
	users     user.UserRepository
	addresses user.AddressRepository
	companies company.CompanyRepository
	tokens    *token.Service
}

func NewService(clients ClientRepository, authUsers user.AuthUserRepository, users user.UserRepository,
	addresses user.AddressRepository, companies company.CompanyRepository, tokens *token.Service) *Service {
	return &Service{
		clients: clients, authUsers: authUsers, users: users,
		addresses: addresses, companies: companies, tokens: tokens,
	}
}

// Create registers a new client under the calling professional. The provider
// token belongs to the client being registered, not the caller.
func (s *Service) Create(ctx context.Context, professionalUserID, companyID uuid.UUID, name, providerToken string) (*ClientDetails, error) {
	ec, err := s.tokens.VerifyExternal(ctx, providerToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company not found")
		}
		return nil, err
	}

	if _, err := s.authUsers.GetByExternalUID(ctx, ec.UID); err == nil {
		return nil, ErrExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	au := &user.AuthUser{
		ExternalUID:   ec.UID,
		Email:         ec.Email,
		DisplayName:   ec.DisplayName(),
		EmailVerified: ec.EmailVerified,
	}
	if err := s.authUsers.Create(ctx, au); err != nil {
		return nil, fmt.Errorf("create auth account: %w", err)
	}

	if name == "" {
		name = au.DisplayName
	}
	su := &user.User{
		AuthUserID: au.ID,
		Name:       name,
		Email:      au.Email,
		Role:       user.RoleClient,
		IsActive:   true,
	}
	if err := s.users.Create(ctx, su); err != nil {
		return nil, fmt.Errorf("create system user: %w", err)
	}

	// Blank address placeholder, filled in by the client later.
	addr := &user.Address{UserID: &su.ID, Country: "Brasil"}
	if err := s.addresses.Create(ctx, addr); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	uc := &UserClient{UserID: su.ID}
	if err := s.clients.Create(ctx, uc); err != nil {
		return nil, fmt.Errorf("create client row: %w", err)
	}
	link := &ClientLink{ClientID: su.ID, ProfessionalID: professionalUserID, CompanyID: companyID}
	if err := s.clients.CreateLink(ctx, link); err != nil {
		return nil, fmt.Errorf("link client: %w", err)
	}

	return &ClientDetails{User: su, Notes: uc.Notes}, nil
}

// Get returns a client, provided it is linked to the calling professional.
func (s *Service) Get(ctx context.Context, clientID, professionalUserID uuid.UUID) (*ClientDetails, error) {
	if err := s.requireLink(ctx, clientID, professionalUserID); err != nil {
		return nil, err
	}
	return s.details(ctx, clientID)
}

// List returns the calling professional's clients.
func (s *Service) List(ctx context.Context, professionalUserID uuid.UUID, limit, offset int) ([]*ClientDetails, error) {
	ids, err := s.clients.ListIDsByProfessional(ctx, professionalUserID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*ClientDetails, 0, len(ids))
	for _, id := range ids {
		d, err := s.details(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// UpdateNotes replaces the professional's notes on a linked client.
func (s *Service) UpdateNotes(ctx context.Context, clientID, professionalUserID uuid.UUID, notes *string) (*ClientDetails, error) {
	if err := s.requireLink(ctx, clientID, professionalUserID); err != nil {
		return nil, err
	}
	if err := s.clients.UpdateNotes(ctx, clientID, notes); err != nil {
		return nil, err
	}
	return s.details(ctx, clientID)
}

// Delete soft-deletes a linked client's system user. Links and notes stay
// for history; the client stops appearing in reads.
func (s *Service) Delete(ctx context.Context, clientID, professionalUserID uuid.UUID) error {
	if err := s.requireLink(ctx, clientID, professionalUserID); err != nil {
		return err
	}
	if _, err := s.details(ctx, clientID); err != nil {
		return err
	}
	return s.clients.SoftDelete(ctx, clientID)
}

func (s *Service) requireLink(ctx context.Context, clientID, professionalUserID uuid.UUID) error {
	ok, err := s.clients.HasLink(ctx, clientID, professionalUserID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) details(ctx context.Context, clientID uuid.UUID) (*ClientDetails, error) {
	su, err := s.users.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if su.IsDeleted {
		return nil, ErrNotFound
	}
	uc, err := s.clients.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ClientDetails{User: su, Notes: uc.Notes}, nil
}
