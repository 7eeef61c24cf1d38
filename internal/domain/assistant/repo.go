package assistant

import (
	"context"

	"github.com/google/uuid"
)

type AssistantRepository interface {
	Create(ctx context.Context, a *Assistant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Assistant, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Assistant, error)
	Touch(ctx context.Context, id uuid.UUID) (*Assistant, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CreateClinicLink(ctx context.Context, l *ClinicLink) error
	GetClinicLink(ctx context.Context, assistantID, companyID uuid.UUID) (*ClinicLink, error)
	ListClinicLinks(ctx context.Context, assistantID uuid.UUID) ([]*ClinicLinkDetails, error)
	UpdateClinicLink(ctx context.Context, l *ClinicLink) error
	DeleteClinicLink(ctx context.Context, assistantID, companyID uuid.UUID) error

	CreateProfessionalLink(ctx context.Context, l *ProfessionalLink) error
	GetProfessionalLink(ctx context.Context, assistantID, professionalID uuid.UUID) (*ProfessionalLink, error)
	ListProfessionalLinks(ctx context.Context, assistantID uuid.UUID) ([]*ProfessionalLinkDetails, error)
	DeleteProfessionalLink(ctx context.Context, assistantID, professionalID uuid.UUID) error
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*ProfessionalLink, error)
}
