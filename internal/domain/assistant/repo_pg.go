package assistant

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const assistantCols = `id, user_id, created_at, updated_at`

type assistantRepoPG struct{ pool *pgxpool.Pool }

func NewAssistantRepoPG(pool *pgxpool.Pool) AssistantRepository {
	return &assistantRepoPG{pool: pool}
}

func scanAssistant(row pgx.Row) (*Assistant, error) {
	var a Assistant
	if err := row.Scan(&a.ID, &a.UserID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assistantRepoPG) Create(ctx context.Context, a *Assistant) error {
	a.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO user_assistants (id, user_id)
		VALUES ($1,$2)
		RETURNING created_at`,
		a.ID, a.UserID).Scan(&a.CreatedAt)
}

func (r *assistantRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assistant, error) {
	return scanAssistant(r.pool.QueryRow(ctx,
		`SELECT `+assistantCols+` FROM user_assistants WHERE id = $1`, id))
}

func (r *assistantRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Assistant, error) {
	return scanAssistant(r.pool.QueryRow(ctx,
		`SELECT `+assistantCols+` FROM user_assistants WHERE user_id = $1`, userID))
}

func (r *assistantRepoPG) Touch(ctx context.Context, id uuid.UUID) (*Assistant, error) {
	return scanAssistant(r.pool.QueryRow(ctx, `
		UPDATE user_assistants SET updated_at = NOW()
		WHERE id = $1
		RETURNING `+assistantCols, id))
}

func (r *assistantRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_assistants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assistantRepoPG) CreateClinicLink(ctx context.Context, l *ClinicLink) error {
	l.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO assistant_clinics (id, assistant_id, company_id, is_admin)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		l.ID, l.AssistantID, l.CompanyID, l.IsAdmin).Scan(&l.CreatedAt)
}

func (r *assistantRepoPG) GetClinicLink(ctx context.Context, assistantID, companyID uuid.UUID) (*ClinicLink, error) {
	var l ClinicLink
	err := r.pool.QueryRow(ctx, `
		SELECT id, assistant_id, company_id, is_admin, created_at, updated_at
		FROM assistant_clinics
		WHERE assistant_id = $1 AND company_id = $2`,
		assistantID, companyID).
		Scan(&l.ID, &l.AssistantID, &l.CompanyID, &l.IsAdmin, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *assistantRepoPG) ListClinicLinks(ctx context.Context, assistantID uuid.UUID) ([]*ClinicLinkDetails, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ac.id, ac.assistant_id, ac.company_id, ac.is_admin, ac.created_at, ac.updated_at,
		       c.name
		FROM assistant_clinics ac
		JOIN companies c ON c.id = ac.company_id
		WHERE ac.assistant_id = $1
		ORDER BY c.name`, assistantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ClinicLinkDetails
	for rows.Next() {
		var d ClinicLinkDetails
		if err := rows.Scan(&d.ID, &d.AssistantID, &d.CompanyID, &d.IsAdmin,
			&d.CreatedAt, &d.UpdatedAt, &d.CompanyName); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *assistantRepoPG) UpdateClinicLink(ctx context.Context, l *ClinicLink) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE assistant_clinics SET is_admin = $3, updated_at = NOW()
		WHERE assistant_id = $1 AND company_id = $2`,
		l.AssistantID, l.CompanyID, l.IsAdmin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assistantRepoPG) DeleteClinicLink(ctx context.Context, assistantID, companyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM assistant_clinics
		WHERE assistant_id = $1 AND company_id = $2`, assistantID, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assistantRepoPG) CreateProfessionalLink(ctx context.Context, l *ProfessionalLink) error {
	l.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO assistant_professionals (id, assistant_id, professional_id)
		VALUES ($1,$2,$3)
		RETURNING created_at`,
		l.ID, l.AssistantID, l.ProfessionalID).Scan(&l.CreatedAt)
}

func (r *assistantRepoPG) GetProfessionalLink(ctx context.Context, assistantID, professionalID uuid.UUID) (*ProfessionalLink, error) {
	var l ProfessionalLink
	err := r.pool.QueryRow(ctx, `
		SELECT id, assistant_id, professional_id, created_at, updated_at
		FROM assistant_professionals
		WHERE assistant_id = $1 AND professional_id = $2`,
		assistantID, professionalID).
		Scan(&l.ID, &l.AssistantID, &l.ProfessionalID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *assistantRepoPG) ListProfessionalLinks(ctx context.Context, assistantID uuid.UUID) ([]*ProfessionalLinkDetails, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ap.id, ap.assistant_id, ap.professional_id, ap.created_at, ap.updated_at,
		       p.treatment_title, u.name
		FROM assistant_professionals ap
		JOIN professionals p ON p.id = ap.professional_id
		JOIN users u ON u.id = p.user_id
		WHERE ap.assistant_id = $1
		ORDER BY u.name`, assistantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ProfessionalLinkDetails
	for rows.Next() {
		var d ProfessionalLinkDetails
		if err := rows.Scan(&d.ID, &d.AssistantID, &d.ProfessionalID,
			&d.CreatedAt, &d.UpdatedAt, &d.TreatmentTitle, &d.UserName); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *assistantRepoPG) DeleteProfessionalLink(ctx context.Context, assistantID, professionalID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM assistant_professionals
		WHERE assistant_id = $1 AND professional_id = $2`, assistantID, professionalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assistantRepoPG) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*ProfessionalLink, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, assistant_id, professional_id, created_at, updated_at
		FROM assistant_professionals
		WHERE professional_id = $1
		ORDER BY created_at`, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ProfessionalLink
	for rows.Next() {
		var l ProfessionalLink
		if err := rows.Scan(&l.ID, &l.AssistantID, &l.ProfessionalID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
