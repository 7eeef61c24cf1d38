package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type clientRepoPG struct{ pool *pgxpool.Pool }

func NewClientRepoPG(pool *pgxpool.Pool) ClientRepository { return &clientRepoPG{pool: pool} }

func (r *clientRepoPG) Create(ctx context.Context, c *UserClient) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO user_clients (user_id, notes) VALUES ($1,$2)`,
		c.UserID, c.Notes)
	return err
}

func (r *clientRepoPG) Get(ctx context.Context, userID uuid.UUID) (*UserClient, error) {
	var c UserClient
	err := r.pool.QueryRow(ctx, `SELECT user_id, notes FROM user_clients WHERE user_id = $1`, userID).
		Scan(&c.UserID, &c.Notes)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clientRepoPG) UpdateNotes(ctx context.Context, userID uuid.UUID, notes *string) error {
	_, err := r.pool.Exec(ctx, `UPDATE user_clients SET notes = $2 WHERE user_id = $1`, userID, notes)
	return err
}

// SoftDelete hides the backing system user; client rows and links stay for
// history.
func (r *clientRepoPG) SoftDelete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET is_deleted = true, updated_at = NOW() WHERE id = $1`, userID)
	return err
}

func (r *clientRepoPG) CreateLink(ctx context.Context, l *ClientLink) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO client_professional_company (client_id, professional_id, company_id)
		VALUES ($1,$2,$3)`,
		l.ClientID, l.ProfessionalID, l.CompanyID)
	return err
}

func (r *clientRepoPG) HasLink(ctx context.Context, clientID, professionalUserID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM client_professional_company
			WHERE client_id = $1 AND professional_id = $2
		)`, clientID, professionalUserID).Scan(&exists)
	return exists, err
}

func (r *clientRepoPG) ListIDsByProfessional(ctx context.Context, professionalUserID uuid.UUID, limit, offset int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT cpc.client_id
		FROM client_professional_company cpc
		JOIN users u ON u.id = cpc.client_id
		WHERE cpc.professional_id = $1 AND u.is_deleted = false
		ORDER BY cpc.client_id
		LIMIT $2 OFFSET $3`, professionalUserID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
