package professional

import (
	"time"

	"github.com/google/uuid"
)

// Professional is the practice profile behind a system user with the
// professional role.
type Professional struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	UserID           uuid.UUID  `db:"user_id" json:"user_id"`
	TreatmentTitle   string     `db:"treatment_title" json:"treatment_title"`
	ProfileCompleted bool       `db:"profile_completed" json:"profile_completed"`
	Bio              *string    `db:"bio" json:"bio,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Profession is a regulated health occupation (physician, psychologist, …)
// with its council registration scheme.
type Profession struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	CBOCode     *string    `db:"cbo_code" json:"cbo_code,omitempty"`
	CouncilType *string    `db:"council_type" json:"council_type,omitempty"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// ProfessionalProfession links a professional to a profession and carries
// the council registration. Exactly one link per professional is primary.
type ProfessionalProfession struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ProfessionalID uuid.UUID  `db:"professional_id" json:"professional_id"`
	ProfessionID   uuid.UUID  `db:"profession_id" json:"profession_id"`
	CouncilNumber  *string    `db:"council_number" json:"council_number,omitempty"`
	CouncilUF      *string    `db:"council_uf" json:"council_uf,omitempty"`
	RQEType        *string    `db:"rqe_type" json:"rqe_type,omitempty"`
	IsPrimary      bool       `db:"is_primary" json:"is_primary"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Specialty is a curated or user-created practice specialty.
type Specialty struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Slug        string     `db:"slug" json:"slug"`
	Category    *string    `db:"category" json:"category,omitempty"`
	Description *string    `db:"description" json:"description,omitempty"`
	IsPublic    bool       `db:"is_public" json:"is_public"`
	IsVisible   bool       `db:"is_visible" json:"is_visible"`
	CreatedBy   *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// ProfessionalSpecialty links a professional to a specialty.
type ProfessionalSpecialty struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProfessionalID uuid.UUID `db:"professional_id" json:"professional_id"`
	SpecialtyID    uuid.UUID `db:"specialty_id" json:"specialty_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ProfessionInfo is a profession joined with the professional's council
// registration on it, for the details view.
type ProfessionInfo struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CBOCode       *string   `json:"cbo_code,omitempty"`
	CouncilType   *string   `json:"council_type,omitempty"`
	CouncilNumber *string   `json:"council_number,omitempty"`
	CouncilUF     *string   `json:"council_uf,omitempty"`
	RQEType       *string   `json:"rqe_type,omitempty"`
	IsPrimary     bool      `json:"is_primary"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserInfo is the slim user summary embedded in the details view.
type UserInfo struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}

// ProfessionalDetails is the full read model for a professional.
type ProfessionalDetails struct {
	Professional
	User        UserInfo          `json:"user"`
	Specialties []*Specialty      `json:"specialties"`
	Professions []*ProfessionInfo `json:"professions"`
}
