package professional

import (
	"context"

	"github.com/google/uuid"
)

type ProfessionalRepository interface {
	Create(ctx context.Context, p *Professional) error
	GetByID(ctx context.Context, id uuid.UUID) (*Professional, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Professional, error)
	List(ctx context.Context, profileCompleted *bool, limit, offset int) ([]*Professional, error)
	Update(ctx context.Context, p *Professional) error
}

// SpecialtyFilter narrows specialty listings. Nil fields are unfiltered.
type SpecialtyFilter struct {
	IsPublic  *bool
	IsVisible *bool
	Category  *string
}

type SpecialtyRepository interface {
	Create(ctx context.Context, s *Specialty) error
	GetByID(ctx context.Context, id uuid.UUID) (*Specialty, error)
	GetBySlug(ctx context.Context, slug string) (*Specialty, error)
	GetByName(ctx context.Context, name string) (*Specialty, error)
	List(ctx context.Context, f SpecialtyFilter, limit, offset int) ([]*Specialty, error)

	CreateLink(ctx context.Context, link *ProfessionalSpecialty) error
	GetLink(ctx context.Context, professionalID, specialtyID uuid.UUID) (*ProfessionalSpecialty, error)
	DeleteLink(ctx context.Context, professionalID, specialtyID uuid.UUID) error
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*Specialty, error)
}

type ProfessionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Profession, error)
	List(ctx context.Context, isActive *bool, limit, offset int) ([]*Profession, error)

	CreateLink(ctx context.Context, link *ProfessionalProfession) error
	GetLink(ctx context.Context, professionalID, professionID uuid.UUID) (*ProfessionalProfession, error)
	ListLinks(ctx context.Context, professionalID uuid.UUID) ([]*ProfessionalProfession, error)
	UpdateLink(ctx context.Context, link *ProfessionalProfession) error
	DeleteLink(ctx context.Context, professionalID, professionID uuid.UUID) error
	ClearPrimary(ctx context.Context, professionalID uuid.UUID) error
	ListInfoByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*ProfessionInfo, error)
}
