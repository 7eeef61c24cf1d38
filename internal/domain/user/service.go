package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinova/clinova/internal/platform/token"
)

// ErrNotFound is returned when a requested account or profile does not exist.
var ErrNotFound = errors.New("not found")

// Service implements the sign-in flows and profile management. Sign-in
// exchanges a verified external-provider token for a local session: the auth
// account is created or refreshed from the provider claims, and the token
// pair is signed over the system user's identity.
type Service struct {
	authUsers AuthUserRepository
	users     UserRepository
	addresses AddressRepository
	tokens    *token.Service
}

func NewService(authUsers AuthUserRepository, users UserRepository, addresses AddressRepository, tokens *token.Service) *Service {
	return &Service{authUsers: authUsers, users: users, addresses: addresses, tokens: tokens}
}

// SessionResult is the outcome of a signup or login exchange.
type SessionResult struct {
	AuthUser     *AuthUser
	IsNewUser    bool
	AccessToken  string
	RefreshToken string
}

// ProcessExternalToken verifies a provider token and materializes the
// session: an unknown subject gets a fresh auth account plus system user, a
// known one has its provider-sourced fields refreshed. Either way a new
// token pair is issued.
func (s *Service) ProcessExternalToken(ctx context.Context, rawToken string) (*SessionResult, error) {
	ec, err := s.tokens.VerifyExternal(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	au, err := s.authUsers.GetByExternalUID(ctx, ec.UID)
	isNew := false
	switch {
	case err == nil:
		au.DisplayName = ec.DisplayName()
		au.EmailVerified = ec.EmailVerified
		if ec.Picture != "" {
			picture := ec.Picture
			au.Picture = &picture
		}
		if err := s.authUsers.Update(ctx, au); err != nil {
			return nil, fmt.Errorf("update auth account: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		isNew = true
		au = &AuthUser{
			ExternalUID:   ec.UID,
			Email:         ec.Email,
			DisplayName:   ec.DisplayName(),
			EmailVerified: ec.EmailVerified,
		}
		if ec.Picture != "" {
			picture := ec.Picture
			au.Picture = &picture
		}
		if err := s.authUsers.Create(ctx, au); err != nil {
			return nil, fmt.Errorf("create auth account: %w", err)
		}
		// First-party signups start as platform operators; invited
		// professionals and clients are created through their own flows.
		su := &User{
			AuthUserID: au.ID,
			Name:       au.DisplayName,
			Email:      au.Email,
			Role:       RoleSuper,
			IsActive:   true,
		}
		if err := s.users.Create(ctx, su); err != nil {
			return nil, fmt.Errorf("create system user: %w", err)
		}
	default:
		return nil, fmt.Errorf("look up auth account: %w", err)
	}

	identity, err := s.identityFor(ctx, au)
	if err != nil {
		return nil, err
	}
	access, refresh, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	return &SessionResult{AuthUser: au, IsNewUser: isNew, AccessToken: access, RefreshToken: refresh}, nil
}

// identityFor builds the signable identity for an auth account, folding in
// the system user's id and role when one exists.
func (s *Service) identityFor(ctx context.Context, au *AuthUser) (token.Identity, error) {
	identity := token.Identity{
		ExternalUID:   au.ExternalUID,
		Email:         au.Email,
		Name:          au.DisplayName,
		EmailVerified: au.EmailVerified,
	}
	su, err := s.users.GetByAuthUserID(ctx, au.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity, nil
		}
		return token.Identity{}, fmt.Errorf("look up system user: %w", err)
	}
	identity.UserID = su.ID.String()
	identity.Role = su.Role
	return identity, nil
}

// RefreshSession exchanges a refresh token for a new access token plus the
// identity the token carries. The refresh token is echoed back unchanged; it
// is never rotated.
func (s *Service) RefreshSession(ctx context.Context, refreshToken string) (string, token.Identity, error) {
	claims, err := s.tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return "", token.Identity{}, err
	}
	identity := claims.Identity()
	access, err := s.tokens.IssueAccess(identity)
	if err != nil {
		return "", token.Identity{}, err
	}
	return access, identity, nil
}

// AccessTTL is the lifetime of issued access tokens.
func (s *Service) AccessTTL() time.Duration {
	return s.tokens.AccessTTL()
}

// ValidateToken reports whether a presented token (local or provider) is
// valid and the identity it carries.
func (s *Service) ValidateToken(ctx context.Context, rawToken string) (token.Identity, error) {
	claims, err := s.tokens.VerifyAccess(ctx, rawToken)
	if err != nil {
		return token.Identity{}, err
	}
	return claims.Identity(), nil
}

// AuthAccountByExternalUID returns the auth account for a provider subject.
func (s *Service) AuthAccountByExternalUID(ctx context.Context, externalUID string) (*AuthUser, error) {
	au, err := s.authUsers.GetByExternalUID(ctx, externalUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return au, nil
}

// Profile returns the system user for the given id.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile applies profile changes to the caller's system user.
// Role, email, deletion and suspension state are not touched here.
func (s *Service) UpdateProfile(ctx context.Context, u *User) error {
	if u.Name == "" {
		return fmt.Errorf("name is required")
	}
	if u.Gender != nil && !validGenders[*u.Gender] {
		return fmt.Errorf("invalid gender: %s", *u.Gender)
	}
	return s.users.Update(ctx, u)
}

// CompleteProfile returns the system user together with its address.
func (s *Service) CompleteProfile(ctx context.Context, userID uuid.UUID) (*CompleteProfile, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	addr, err := s.addresses.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		addr = nil
	}
	return &CompleteProfile{User: u, Address: addr}, nil
}

// UpsertAddress creates or replaces the caller's address.
func (s *Service) UpsertAddress(ctx context.Context, userID uuid.UUID, a *Address) (*Address, error) {
	if a.Street == "" || a.Number == "" || a.City == "" || a.State == "" || a.ZipCode == "" {
		return nil, fmt.Errorf("street, number, city, state and zip_code are required")
	}
	a.UserID = &userID
	a.CompanyID = nil

	existing, err := s.addresses.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err := s.addresses.Create(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	}
	a.ID = existing.ID
	if err := s.addresses.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
