package company

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type companyRepoPG struct{ pool *pgxpool.Pool }

func NewCompanyRepoPG(pool *pgxpool.Pool) CompanyRepository { return &companyRepoPG{pool: pool} }

const companyCols = `id, user_professional_id, name, description, email, phone, social_media,
	is_virtual, is_active`

func scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.UserProfessionalID, &c.Name, &c.Description, &c.Email,
		&c.Phone, &c.SocialMedia, &c.IsVirtual, &c.IsActive)
	return &c, err
}

func (r *companyRepoPG) Create(ctx context.Context, c *Company) error {
	c.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO companies (id, user_professional_id, name, description, email, phone,
			social_media, is_virtual, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.UserProfessionalID, c.Name, c.Description, c.Email, c.Phone,
		c.SocialMedia, c.IsVirtual, c.IsActive)
	return err
}

func (r *companyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	return scanCompany(r.pool.QueryRow(ctx, `SELECT `+companyCols+` FROM companies WHERE id = $1`, id))
}

func (r *companyRepoPG) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+companyCols+` FROM companies
		WHERE user_professional_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *companyRepoPG) Update(ctx context.Context, c *Company) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE companies SET name=$2, description=$3, email=$4, phone=$5, social_media=$6,
			is_virtual=$7, is_active=$8
		WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Email, c.Phone, c.SocialMedia,
		c.IsVirtual, c.IsActive)
	return err
}
