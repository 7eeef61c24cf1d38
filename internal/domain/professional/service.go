package professional

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinova/clinova/internal/domain/user"
)

var (
	ErrNotFound      = errors.New("professional not found")
	ErrSpecialtyDup  = errors.New("specialty already exists")
	ErrLinkNotFound  = errors.New("link not found")
	ErrAlreadyExists = errors.New("professional already exists for this user")
)

type Service struct {
	professionals ProfessionalRepository
	specialties   SpecialtyRepository
	professions   ProfessionRepository
	users         user.UserRepository
}

func NewService(professionals ProfessionalRepository, specialties SpecialtyRepository, professions ProfessionRepository, users user.UserRepository) *Service {
	return &Service{professionals: professionals, specialties: specialties, professions: professions, users: users}
}

// ---- professionals ----

func (s *Service) Create(ctx context.Context, p *Professional) error {
	if p.TreatmentTitle == "" {
		return fmt.Errorf("treatment_title is required")
	}
	if _, err := s.users.GetByID(ctx, p.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user not found")
		}
		return err
	}
	if _, err := s.professionals.GetByUserID(ctx, p.UserID); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return s.professionals.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ProfessionalDetails, error) {
	p, err := s.professionals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.details(ctx, p)
}

func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (*ProfessionalDetails, error) {
	p, err := s.professionals.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.details(ctx, p)
}

func (s *Service) List(ctx context.Context, profileCompleted *bool, limit, offset int) ([]*Professional, error) {
	return s.professionals.List(ctx, profileCompleted, limit, offset)
}

// Update applies profile changes. The owning user never changes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in *Professional) (*Professional, error) {
	p, err := s.professionals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if in.TreatmentTitle == "" {
		return nil, fmt.Errorf("treatment_title is required")
	}
	p.TreatmentTitle = in.TreatmentTitle
	p.ProfileCompleted = in.ProfileCompleted
	p.Bio = in.Bio
	if err := s.professionals.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) details(ctx context.Context, p *Professional) (*ProfessionalDetails, error) {
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("load professional user: %w", err)
	}
	specialties, err := s.specialties.ListByProfessional(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	professions, err := s.professions.ListInfoByProfessional(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if specialties == nil {
		specialties = []*Specialty{}
	}
	if professions == nil {
		professions = []*ProfessionInfo{}
	}
	return &ProfessionalDetails{
		Professional: *p,
		User:         UserInfo{ID: u.ID, Name: u.Name, Role: u.Role},
		Specialties:  specialties,
		Professions:  professions,
	}, nil
}

// ---- specialties ----

func (s *Service) CreateSpecialty(ctx context.Context, sp *Specialty) error {
	if sp.Name == "" || sp.Slug == "" {
		return fmt.Errorf("name and slug are required")
	}
	if _, err := s.specialties.GetBySlug(ctx, sp.Slug); err == nil {
		return fmt.Errorf("%w: slug %q", ErrSpecialtyDup, sp.Slug)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if _, err := s.specialties.GetByName(ctx, sp.Name); err == nil {
		return fmt.Errorf("%w: name %q", ErrSpecialtyDup, sp.Name)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return s.specialties.Create(ctx, sp)
}

func (s *Service) GetSpecialty(ctx context.Context, id uuid.UUID) (*Specialty, error) {
	sp, err := s.specialties.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sp, err
}

func (s *Service) GetSpecialtyBySlug(ctx context.Context, slug string) (*Specialty, error) {
	sp, err := s.specialties.GetBySlug(ctx, slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sp, err
}

func (s *Service) ListSpecialties(ctx context.Context, f SpecialtyFilter, limit, offset int) ([]*Specialty, error) {
	return s.specialties.List(ctx, f, limit, offset)
}

// AddSpecialty links a specialty to a professional. Adding an existing link
// is a no-op returning the link.
func (s *Service) AddSpecialty(ctx context.Context, professionalID, specialtyID uuid.UUID) (*ProfessionalSpecialty, error) {
	if _, err := s.professionals.GetByID(ctx, professionalID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.specialties.GetByID(ctx, specialtyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("specialty not found")
		}
		return nil, err
	}
	if link, err := s.specialties.GetLink(ctx, professionalID, specialtyID); err == nil {
		return link, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	link := &ProfessionalSpecialty{ProfessionalID: professionalID, SpecialtyID: specialtyID}
	if err := s.specialties.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *Service) RemoveSpecialty(ctx context.Context, professionalID, specialtyID uuid.UUID) error {
	err := s.specialties.DeleteLink(ctx, professionalID, specialtyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLinkNotFound
	}
	return err
}

// ---- professions ----

func (s *Service) ListProfessions(ctx context.Context, isActive *bool, limit, offset int) ([]*Profession, error) {
	return s.professions.List(ctx, isActive, limit, offset)
}

// AddProfession links a profession (with council registration) to a
// professional. The first linked profession becomes primary; re-adding an
// existing link returns it unchanged.
func (s *Service) AddProfession(ctx context.Context, link *ProfessionalProfession) (*ProfessionalProfession, error) {
	if _, err := s.professionals.GetByID(ctx, link.ProfessionalID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.professions.GetByID(ctx, link.ProfessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profession not found")
		}
		return nil, err
	}
	if existing, err := s.professions.GetLink(ctx, link.ProfessionalID, link.ProfessionID); err == nil {
		return existing, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	links, err := s.professions.ListLinks(ctx, link.ProfessionalID)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		link.IsPrimary = true
	}
	if err := s.professions.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// UpdateProfession updates the council registration fields of an existing
// link.
func (s *Service) UpdateProfession(ctx context.Context, professionalID, professionID uuid.UUID, in *ProfessionalProfession) (*ProfessionalProfession, error) {
	link, err := s.professions.GetLink(ctx, professionalID, professionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	link.CouncilNumber = in.CouncilNumber
	link.CouncilUF = in.CouncilUF
	link.RQEType = in.RQEType
	if err := s.professions.UpdateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// RemoveProfession deletes a link. If the removed link was primary, another
// linked profession (if any) is promoted.
func (s *Service) RemoveProfession(ctx context.Context, professionalID, professionID uuid.UUID) error {
	link, err := s.professions.GetLink(ctx, professionalID, professionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLinkNotFound
		}
		return err
	}
	if err := s.professions.DeleteLink(ctx, professionalID, professionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLinkNotFound
		}
		return err
	}
	if !link.IsPrimary {
		return nil
	}
	remaining, err := s.professions.ListLinks(ctx, professionalID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}
	remaining[0].IsPrimary = true
	return s.professions.UpdateLink(ctx, remaining[0])
}

// SetPrimaryProfession makes the given link the only primary one.
func (s *Service) SetPrimaryProfession(ctx context.Context, professionalID, professionID uuid.UUID) error {
	link, err := s.professions.GetLink(ctx, professionalID, professionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLinkNotFound
		}
		return err
	}
	if err := s.professions.ClearPrimary(ctx, professionalID); err != nil {
		return err
	}
	link.IsPrimary = true
	return s.professions.UpdateLink(ctx, link)
}
