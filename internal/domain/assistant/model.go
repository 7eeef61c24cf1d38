package assistant

import (
	"time"

	"github.com/google/uuid"
)

// Assistant is the assistant-side extension of a system user: one row per
// user, linked out to the clinics and professionals the assistant works for.
type Assistant struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// ClinicLink grants an assistant access to a clinic. IsAdmin marks clinic
// administration rights.
type ClinicLink struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	AssistantID uuid.UUID  `db:"assistant_id" json:"assistant_id"`
	CompanyID   uuid.UUID  `db:"company_id" json:"company_id"`
	IsAdmin     bool       `db:"is_admin" json:"is_admin"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// ProfessionalLink assigns an assistant to a professional.
type ProfessionalLink struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	AssistantID    uuid.UUID  `db:"assistant_id" json:"assistant_id"`
	ProfessionalID uuid.UUID  `db:"professional_id" json:"professional_id"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// ClinicLinkDetails is a clinic link joined with the company name.
type ClinicLinkDetails struct {
	ClinicLink
	CompanyName string `json:"company_name"`
}

// ProfessionalLinkDetails is a professional link joined with the
// professional's treatment title and user name.
type ProfessionalLinkDetails struct {
	ProfessionalLink
	TreatmentTitle string `json:"professional_treatment_title"`
	UserName       string `json:"professional_user_name"`
}

// AssistantDetails is the full read model for an assistant.
type AssistantDetails struct {
	Assistant
	Clinics       []*ClinicLinkDetails       `json:"clinics"`
	Professionals []*ProfessionalLinkDetails `json:"professionals"`
}
