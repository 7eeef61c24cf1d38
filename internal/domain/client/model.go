package client

import (
	"github.com/google/uuid"

	"github.com/clinova/clinova/internal/domain/user"
)

// UserClient is the client-side extension of a system user. The primary key
// is the user id: one client row per user.
type UserClient struct {
	UserID uuid.UUID `db:"user_id" json:"user_id"`
	Notes  *string   `db:"notes" json:"notes,omitempty"`
}

// ClientLink ties a client to the professional and company that registered
// them. All three ids form the primary key.
type ClientLink struct {
	ClientID       uuid.UUID `db:"client_id" json:"client_id"`
	ProfessionalID uuid.UUID `db:"professional_id" json:"professional_id"`
	CompanyID      uuid.UUID `db:"company_id" json:"company_id"`
}

// ClientDetails is the read model: the system user plus the client notes.
type ClientDetails struct {
	User  *user.User `json:"user"`
	Notes *string    `json:"notes,omitempty"`
}
