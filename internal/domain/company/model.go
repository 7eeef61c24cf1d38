package company

import (
	"github.com/google/uuid"

	"github.com/clinova/clinova/internal/domain/user"
)

// Company is a place of service, physical or virtual. Physical companies
// carry an address row; virtual ones do not.
type Company struct {
	ID                 uuid.UUID              `db:"id" json:"id"`
	UserProfessionalID uuid.UUID              `db:"user_professional_id" json:"user_id"`
	Name               string                 `db:"name" json:"name"`
	Description        *string                `db:"description" json:"description,omitempty"`
	Email              *string                `db:"email" json:"email,omitempty"`
	Phone              *string                `db:"phone" json:"phone,omitempty"`
	SocialMedia        map[string]interface{} `db:"social_media" json:"social_media,omitempty"`
	IsVirtual          bool                   `db:"is_virtual" json:"is_virtual"`
	IsActive           bool                   `db:"is_active" json:"is_active"`
}

// CompanyWithAddress is the full representation returned by the read
// endpoints.
type CompanyWithAddress struct {
	Company
	Address *user.Address `json:"address,omitempty"`
}
