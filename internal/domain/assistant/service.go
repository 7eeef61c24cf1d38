package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinova/clinova/internal/domain/company"
	"github.com/clinova/clinova/internal/domain/professional"
	"github.com/clinova/clinova/internal/domain/user"
)

var (
	ErrNotFound      = errors.New("assistant not found")
	ErrAlreadyExists = errors.New("link already exists")
	ErrLinkNotFound  = errors.New("link not found")
)

// Service manages assistant profiles and their clinic and professional
// assignments. Whether a user is an assistant is structural: having a row
// here is what grants assistant access, there is no dedicated role.
type Service struct {
	assistants    AssistantRepository
	users         user.UserRepository
	companies     company.CompanyRepository
	professionals professional.ProfessionalRepository
}

func NewService(assistants AssistantRepository, users user.UserRepository,
	companies company.CompanyRepository, professionals professional.ProfessionalRepository) *Service {
	return &Service{assistants: assistants, users: users, companies: companies, professionals: professionals}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID) (*Assistant, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	if u.IsDeleted {
		return nil, fmt.Errorf("user not found")
	}
	if _, err := s.assistants.GetByUserID(ctx, userID); err == nil {
		return nil, fmt.Errorf("%w: user already has an assistant profile", ErrAlreadyExists)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	a := &Assistant{UserID: userID}
	if err := s.assistants.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Assistant, error) {
	a, err := s.assistants.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (*Assistant, error) {
	a, err := s.assistants.GetByUserID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// IsAssistant reports whether the user has an assistant profile.
func (s *Service) IsAssistant(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, err := s.assistants.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Details returns the assistant with its clinic and professional assignments.
func (s *Service) Details(ctx context.Context, id uuid.UUID) (*AssistantDetails, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	clinics, err := s.assistants.ListClinicLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	professionals, err := s.assistants.ListProfessionalLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	if clinics == nil {
		clinics = []*ClinicLinkDetails{}
	}
	if professionals == nil {
		professionals = []*ProfessionalLinkDetails{}
	}
	return &AssistantDetails{Assistant: *a, Clinics: clinics, Professionals: professionals}, nil
}

// Update bumps the assistant row. The profile carries no mutable fields of
// its own; assignments change through the link operations.
func (s *Service) Update(ctx context.Context, id uuid.UUID) (*Assistant, error) {
	a, err := s.assistants.Touch(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.assistants.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Service) AddClinic(ctx context.Context, assistantID, companyID uuid.UUID, isAdmin bool) (*ClinicLink, error) {
	if _, err := s.Get(ctx, assistantID); err != nil {
		return nil, err
	}
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company not found")
		}
		return nil, err
	}
	if _, err := s.assistants.GetClinicLink(ctx, assistantID, companyID); err == nil {
		return nil, fmt.Errorf("%w: assistant already assigned to this clinic", ErrAlreadyExists)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	l := &ClinicLink{AssistantID: assistantID, CompanyID: companyID, IsAdmin: isAdmin}
	if err := s.assistants.CreateClinicLink(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) ListClinics(ctx context.Context, assistantID uuid.UUID) ([]*ClinicLinkDetails, error) {
	if _, err := s.Get(ctx, assistantID); err != nil {
		return nil, err
	}
	out, err := s.assistants.ListClinicLinks(ctx, assistantID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*ClinicLinkDetails{}
	}
	return out, nil
}

func (s *Service) UpdateClinic(ctx context.Context, assistantID, companyID uuid.UUID, isAdmin bool) (*ClinicLink, error) {
	if _, err := s.Get(ctx, assistantID); err != nil {
		return nil, err
	}
	l := &ClinicLink{AssistantID: assistantID, CompanyID: companyID, IsAdmin: isAdmin}
	if err := s.assistants.UpdateClinicLink(ctx, l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return s.assistants.GetClinicLink(ctx, assistantID, companyID)
}

func (s *Service) RemoveClinic(ctx context.Context, assistantID, companyID uuid.UUID) error {
	if _, err := s.Get(ctx, assistantID); err != nil {
		return err
	}
	err := s.assistants.DeleteClinicLink(ctx, assistantID, companyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLinkNotFound
	}
	return err
}

// CanAdminClinic reports whether the assistant holds the admin flag for the
// clinic.
func (s *Service) CanAdminClinic(ctx context.Context, assistantID, companyID uuid.UUID) (bool, error) {
	l, err := s.assistants.GetClinicLink(ctx, assistantID, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return l.IsAdmin, nil
}

func (s *Service) AddProfessional(ctx context.Context, assistantID, professionalID uuid.UUID) (*ProfessionalLink, error) {
	if _, err := s.Get(ctx, assistantID); err != nil {
		return nil, err
	}
	if _, err := s.professionals.GetByID(ctx, professionalID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("professional not found")
		}
		return nil, err
	}
	if _, err := s.assistants.GetProfessionalLink(ctx, assistantID, professionalID); err == nil {
		return nil, fmt.Errorf("%w: assistant already assigned to this professional", ErrAlreadyExists)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	l := &ProfessionalLink{AssistantID: assistantID, ProfessionalID: professionalID}
	if err := s.assistants.CreateProfessionalLink(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) ListProfessionals(ctx context.Context, assistantID uuid.UUID) ([]*ProfessionalLinkDetails, error) {
	if _, err := s.Get(ctx, assistantID); err != nil {
		return nil, err
	}
	out, err := s.assistants.ListProfessionalLinks(ctx, assistantID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*ProfessionalLinkDetails{}
	}
	return out, nil
}

func (s *Service) RemoveProfessional(ctx context.Context, assistantID, professionalID uuid.UUID) error {
	if _, err := s.Get(ctx, assistantID); err != nil {
		return err
	}
	err := s.assistants.DeleteProfessionalLink(ctx, assistantID, professionalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLinkNotFound
	}
	return err
}

// OwnsProfessional reports whether the professional profile belongs to the
// given system user.
func (s *Service) OwnsProfessional(ctx context.Context, professionalID uuid.UUID, userID string) (bool, error) {
	p, err := s.professionals.GetByID(ctx, professionalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return p.UserID.String() == userID, nil
}

// ListByProfessional returns the assistants assigned to a professional.
func (s *Service) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*ProfessionalLink, error) {
	out, err := s.assistants.ListByProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*ProfessionalLink{}
	}
	return out, nil
}
