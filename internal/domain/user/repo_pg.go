package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== AuthUser Repository ===========

type authUserRepoPG struct{ pool *pgxpool.Pool }

func NewAuthUserRepoPG(pool *pgxpool.Pool) AuthUserRepository { return &authUserRepoPG{pool: pool} }

const authUserCols = `id, external_uid, email, display_name, email_verified, picture, created_at, updated_at`

func scanAuthUser(row pgx.Row) (*AuthUser, error) {
	var au AuthUser
	err := row.Scan(&au.ID, &au.ExternalUID, &au.Email, &au.DisplayName,
		&au.EmailVerified, &au.Picture, &au.CreatedAt, &au.UpdatedAt)
	return &au, err
}

func (r *authUserRepoPG) Create(ctx context.Context, au *AuthUser) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO auth_users (external_uid, email, display_name, email_verified, picture)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`,
		au.ExternalUID, au.Email, au.DisplayName, au.EmailVerified, au.Picture,
	).Scan(&au.ID, &au.CreatedAt)
}

func (r *authUserRepoPG) GetByID(ctx context.Context, id int64) (*AuthUser, error) {
	return scanAuthUser(r.pool.QueryRow(ctx, `SELECT `+authUserCols+` FROM auth_users WHERE id = $1`, id))
}

func (r *authUserRepoPG) GetByExternalUID(ctx context.Context, externalUID string) (*AuthUser, error) {
	return scanAuthUser(r.pool.QueryRow(ctx, `SELECT `+authUserCols+` FROM auth_users WHERE external_uid = $1`, externalUID))
}

func (r *authUserRepoPG) GetByEmail(ctx context.Context, email string) (*AuthUser, error) {
	return scanAuthUser(r.pool.QueryRow(ctx, `SELECT `+authUserCols+` FROM auth_users WHERE email = $1`, email))
}

func (r *authUserRepoPG) Update(ctx context.Context, au *AuthUser) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE auth_users SET display_name=$2, email_verified=$3, picture=$4, updated_at=NOW()
		WHERE id = $1`,
		au.ID, au.DisplayName, au.EmailVerified, au.Picture)
	return err
}

// =========== User Repository ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

const userCols = `id, auth_user_id, name, email, phone, birth_date, gender, picture,
	is_active, is_deleted, is_verified, has_access, role, social_media, suspended_at,
	created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.AuthUserID, &u.Name, &u.Email, &u.Phone, &u.BirthDate,
		&u.Gender, &u.Picture, &u.IsActive, &u.IsDeleted, &u.IsVerified, &u.HasAccess,
		&u.Role, &u.SocialMedia, &u.SuspendedAt, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, auth_user_id, name, email, phone, birth_date, gender, picture,
			is_active, is_deleted, is_verified, has_access, role, social_media)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		u.ID, u.AuthUserID, u.Name, u.Email, u.Phone, u.BirthDate, u.Gender, u.Picture,
		u.IsActive, u.IsDeleted, u.IsVerified, u.HasAccess, u.Role, u.SocialMedia)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetByAuthUserID(ctx context.Context, authUserID int64) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE auth_user_id = $1`, authUserID))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET name=$2, phone=$3, birth_date=$4, gender=$5, picture=$6,
			is_active=$7, is_verified=$8, has_access=$9, social_media=$10, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Name, u.Phone, u.BirthDate, u.Gender, u.Picture,
		u.IsActive, u.IsVerified, u.HasAccess, u.SocialMedia)
	return err
}

// =========== Address Repository ===========

type addressRepoPG struct{ pool *pgxpool.Pool }

func NewAddressRepoPG(pool *pgxpool.Pool) AddressRepository { return &addressRepoPG{pool: pool} }

const addressCols = `id, street, number, complement, neighbourhood, city, state, zip_code,
	country, latitude, longitude, user_id, company_id`

func scanAddress(row pgx.Row) (*Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.Street, &a.Number, &a.Complement, &a.Neighbourhood,
		&a.City, &a.State, &a.ZipCode, &a.Country, &a.Latitude, &a.Longitude,
		&a.UserID, &a.CompanyID)
	return &a, err
}

func (r *addressRepoPG) Create(ctx context.Context, a *Address) error {
	a.ID = uuid.New()
	if a.Country == "" {
		a.Country = "Brasil"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO addresses (id, street, number, complement, neighbourhood, city, state,
			zip_code, country, latitude, longitude, user_id, company_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		a.ID, a.Street, a.Number, a.Complement, a.Neighbourhood, a.City, a.State,
		a.ZipCode, a.Country, a.Latitude, a.Longitude, a.UserID, a.CompanyID)
	return err
}

func (r *addressRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Address, error) {
	return scanAddress(r.pool.QueryRow(ctx, `SELECT `+addressCols+` FROM addresses WHERE user_id = $1`, userID))
}

func (r *addressRepoPG) GetByCompanyID(ctx context.Context, companyID uuid.UUID) (*Address, error) {
	return scanAddress(r.pool.QueryRow(ctx, `SELECT `+addressCols+` FROM addresses WHERE company_id = $1`, companyID))
}

func (r *addressRepoPG) Update(ctx context.Context, a *Address) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE addresses SET street=$2, number=$3, complement=$4, neighbourhood=$5,
			city=$6, state=$7, zip_code=$8, country=$9, latitude=$10, longitude=$11
		WHERE id = $1`,
		a.ID, a.Street, a.Number, a.Complement, a.Neighbourhood, a.City, a.State,
		a.ZipCode, a.Country, a.Latitude, a.Longitude)
	return err
}
