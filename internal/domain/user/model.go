package user

import (
	"time"

	"github.com/google/uuid"
)

// Roles a system user can hold. Super is the platform operator role and
// passes every role gate.
const (
	RoleSuper        = "super"
	RoleProfessional = "professional"
	RoleClient       = "client"
)

var validRoles = map[string]bool{
	RoleSuper: true, RoleProfessional: true, RoleClient: true,
}

var validGenders = map[string]bool{
	"male": true, "female": true, "other": true, "undisclosed": true,
}

// AuthUser maps to the auth_users table: one row per external-provider
// account. The system user (users table) hangs off it 1:1.
type AuthUser struct {
	ID            int64      `db:"id" json:"id"`
	ExternalUID   string     `db:"external_uid" json:"external_uid"`
	Email         string     `db:"email" json:"email"`
	DisplayName   string     `db:"display_name" json:"display_name"`
	EmailVerified bool       `db:"email_verified" json:"email_verified"`
	Picture       *string    `db:"picture" json:"picture,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// User maps to the users table: the system-facing profile behind an auth
// account.
type User struct {
	ID          uuid.UUID              `db:"id" json:"id"`
	AuthUserID  int64                  `db:"auth_user_id" json:"auth_user_id"`
	Name        string                 `db:"name" json:"name"`
	Email       string                 `db:"email" json:"email"`
	Phone       *string                `db:"phone" json:"phone,omitempty"`
	BirthDate   *time.Time             `db:"birth_date" json:"birth_date,omitempty"`
	Gender      *string                `db:"gender" json:"gender,omitempty"`
	Picture     *string                `db:"picture" json:"picture,omitempty"`
	IsActive    bool                   `db:"is_active" json:"is_active"`
	IsDeleted   bool                   `db:"is_deleted" json:"is_deleted"`
	IsVerified  bool                   `db:"is_verified" json:"is_verified"`
	HasAccess   bool                   `db:"has_access" json:"has_access"`
	Role        string                 `db:"role" json:"role"`
	SocialMedia map[string]interface{} `db:"social_media" json:"social_media,omitempty"`
	SuspendedAt *time.Time             `db:"suspended_at" json:"suspended_at,omitempty"`
	CreatedAt   time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time             `db:"updated_at" json:"updated_at,omitempty"`
}

// Address maps to the addresses table. Exactly one of UserID / CompanyID is
// set; each may appear at most once (one address per owner).
type Address struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Street        string     `db:"street" json:"street"`
	Number        string     `db:"number" json:"number"`
	Complement    *string    `db:"complement" json:"complement,omitempty"`
	Neighbourhood string     `db:"neighbourhood" json:"neighbourhood"`
	City          string     `db:"city" json:"city"`
	State         string     `db:"state" json:"state"`
	ZipCode       string     `db:"zip_code" json:"zip_code"`
	Country       string     `db:"country" json:"country"`
	Latitude      *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude     *float64   `db:"longitude" json:"longitude,omitempty"`
	UserID        *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	CompanyID     *uuid.UUID `db:"company_id" json:"company_id,omitempty"`
}

// CompleteProfile bundles a system user with its address for the profile
// endpoints.
type CompleteProfile struct {
	User    *User    `json:"user"`
	Address *Address `json:"address,omitempty"`
}
