package professional

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Professional Repository ===========

type professionalRepoPG struct{ pool *pgxpool.Pool }

func NewProfessionalRepoPG(pool *pgxpool.Pool) ProfessionalRepository {
	return &professionalRepoPG{pool: pool}
}

const professionalCols = `id, user_id, treatment_title, profile_completed, bio, created_at, updated_at`

func scanProfessional(row pgx.Row) (*Professional, error) {
	var p Professional
	err := row.Scan(&p.ID, &p.UserID, &p.TreatmentTitle, &p.ProfileCompleted,
		&p.Bio, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *professionalRepoPG) Create(ctx context.Context, p *Professional) error {
	p.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO professionals (id, user_id, treatment_title, profile_completed, bio)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		p.ID, p.UserID, p.TreatmentTitle, p.ProfileCompleted, p.Bio,
	).Scan(&p.CreatedAt)
}

func (r *professionalRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Professional, error) {
	return scanProfessional(r.pool.QueryRow(ctx,
		`SELECT `+professionalCols+` FROM professionals WHERE id = $1`, id))
}

func (r *professionalRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Professional, error) {
	return scanProfessional(r.pool.QueryRow(ctx,
		`SELECT `+professionalCols+` FROM professionals WHERE user_id = $1`, userID))
}

func (r *professionalRepoPG) List(ctx context.Context, profileCompleted *bool, limit, offset int) ([]*Professional, error) {
	query := `SELECT ` + professionalCols + ` FROM professionals`
	args := []interface{}{}
	if profileCompleted != nil {
		query += ` WHERE profile_completed = $1`
		args = append(args, *profileCompleted)
	}
	query += ` ORDER BY created_at DESC`
	args = append(args, limit, offset)
	if profileCompleted != nil {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *professionalRepoPG) Update(ctx context.Context, p *Professional) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE professionals SET treatment_title=$2, profile_completed=$3, bio=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.TreatmentTitle, p.ProfileCompleted, p.Bio)
	return err
}

// =========== Specialty Repository ===========

type specialtyRepoPG struct{ pool *pgxpool.Pool }

func NewSpecialtyRepoPG(pool *pgxpool.Pool) SpecialtyRepository {
	return &specialtyRepoPG{pool: pool}
}

const specialtyCols = `id, name, slug, category, description, is_public, is_visible,
	created_by, created_at, updated_at`

func scanSpecialty(row pgx.Row) (*Specialty, error) {
	var s Specialty
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.Category, &s.Description,
		&s.IsPublic, &s.IsVisible, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *specialtyRepoPG) Create(ctx context.Context, s *Specialty) error {
	s.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO specialties (id, name, slug, category, description, is_public, is_visible, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		s.ID, s.Name, s.Slug, s.Category, s.Description, s.IsPublic, s.IsVisible, s.CreatedBy,
	).Scan(&s.CreatedAt)
}

func (r *specialtyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Specialty, error) {
	return scanSpecialty(r.pool.QueryRow(ctx, `SELECT `+specialtyCols+` FROM specialties WHERE id = $1`, id))
}

func (r *specialtyRepoPG) GetBySlug(ctx context.Context, slug string) (*Specialty, error) {
	return scanSpecialty(r.pool.QueryRow(ctx, `SELECT `+specialtyCols+` FROM specialties WHERE slug = $1`, slug))
}

func (r *specialtyRepoPG) GetByName(ctx context.Context, name string) (*Specialty, error) {
	return scanSpecialty(r.pool.QueryRow(ctx, `SELECT `+specialtyCols+` FROM specialties WHERE name = $1`, name))
}

func (r *specialtyRepoPG) List(ctx context.Context, f SpecialtyFilter, limit, offset int) ([]*Specialty, error) {
	query := `SELECT ` + specialtyCols + ` FROM specialties WHERE 1=1`
	args := []interface{}{}
	n := 0
	next := func() string {
		n++
		return "$" + strconv.Itoa(n)
	}
	if f.IsPublic != nil {
		query += ` AND is_public = ` + next()
		args = append(args, *f.IsPublic)
	}
	if f.IsVisible != nil {
		query += ` AND is_visible = ` + next()
		args = append(args, *f.IsVisible)
	}
	if f.Category != nil {
		query += ` AND category = ` + next()
		args = append(args, *f.Category)
	}
	query += ` ORDER BY name LIMIT ` + next()
	args = append(args, limit)
	query += ` OFFSET ` + next()
	args = append(args, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Specialty
	for rows.Next() {
		s, err := scanSpecialty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *specialtyRepoPG) CreateLink(ctx context.Context, link *ProfessionalSpecialty) error {
	link.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO professional_specialties (id, professional_id, specialty_id)
		VALUES ($1,$2,$3)
		RETURNING created_at`,
		link.ID, link.ProfessionalID, link.SpecialtyID,
	).Scan(&link.CreatedAt)
}

func (r *specialtyRepoPG) GetLink(ctx context.Context, professionalID, specialtyID uuid.UUID) (*ProfessionalSpecialty, error) {
	var l ProfessionalSpecialty
	err := r.pool.QueryRow(ctx, `
		SELECT id, professional_id, specialty_id, created_at FROM professional_specialties
		WHERE professional_id = $1 AND specialty_id = $2`,
		professionalID, specialtyID,
	).Scan(&l.ID, &l.ProfessionalID, &l.SpecialtyID, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *specialtyRepoPG) DeleteLink(ctx context.Context, professionalID, specialtyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM professional_specialties WHERE professional_id = $1 AND specialty_id = $2`,
		professionalID, specialtyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *specialtyRepoPG) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*Specialty, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, s.slug, s.category, s.description, s.is_public, s.is_visible,
			s.created_by, s.created_at, s.updated_at
		FROM specialties s
		JOIN professional_specialties ps ON ps.specialty_id = s.id
		WHERE ps.professional_id = $1
		ORDER BY s.name`, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Specialty
	for rows.Next() {
		s, err := scanSpecialty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// =========== Profession Repository ===========

type professionRepoPG struct{ pool *pgxpool.Pool }

func NewProfessionRepoPG(pool *pgxpool.Pool) ProfessionRepository {
	return &professionRepoPG{pool: pool}
}

const professionCols = `id, name, cbo_code, council_type, is_active, created_at, updated_at`

func scanProfession(row pgx.Row) (*Profession, error) {
	var p Profession
	err := row.Scan(&p.ID, &p.Name, &p.CBOCode, &p.CouncilType, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *professionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Profession, error) {
	return scanProfession(r.pool.QueryRow(ctx, `SELECT `+professionCols+` FROM professions WHERE id = $1`, id))
}

func (r *professionRepoPG) List(ctx context.Context, isActive *bool, limit, offset int) ([]*Profession, error) {
	query := `SELECT ` + professionCols + ` FROM professions`
	args := []interface{}{}
	if isActive != nil {
		query += ` WHERE is_active = $1 ORDER BY name LIMIT $2 OFFSET $3`
		args = append(args, *isActive, limit, offset)
	} else {
		query += ` ORDER BY name LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Profession
	for rows.Next() {
		p, err := scanProfession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const professionLinkCols = `id, professional_id, profession_id, council_number, council_uf,
	rqe_type, is_primary, created_at, updated_at`

func scanProfessionLink(row pgx.Row) (*ProfessionalProfession, error) {
	var l ProfessionalProfession
	err := row.Scan(&l.ID, &l.ProfessionalID, &l.ProfessionID, &l.CouncilNumber,
		&l.CouncilUF, &l.RQEType, &l.IsPrimary, &l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

func (r *professionRepoPG) CreateLink(ctx context.Context, link *ProfessionalProfession) error {
	link.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO professional_professions (id, professional_id, profession_id,
			council_number, council_uf, rqe_type, is_primary)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		link.ID, link.ProfessionalID, link.ProfessionID,
		link.CouncilNumber, link.CouncilUF, link.RQEType, link.IsPrimary,
	).Scan(&link.CreatedAt)
}

func (r *professionRepoPG) GetLink(ctx context.Context, professionalID, professionID uuid.UUID) (*ProfessionalProfession, error) {
	return scanProfessionLink(r.pool.QueryRow(ctx, `
		SELECT `+professionLinkCols+` FROM professional_professions
		WHERE professional_id = $1 AND profession_id = $2`,
		professionalID, professionID))
}

func (r *professionRepoPG) ListLinks(ctx context.Context, professionalID uuid.UUID) ([]*ProfessionalProfession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+professionLinkCols+` FROM professional_professions
		WHERE professional_id = $1 ORDER BY created_at`, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ProfessionalProfession
	for rows.Next() {
		l, err := scanProfessionLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *professionRepoPG) UpdateLink(ctx context.Context, link *ProfessionalProfession) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE professional_professions
		SET council_number=$2, council_uf=$3, rqe_type=$4, is_primary=$5, updated_at=NOW()
		WHERE id = $1`,
		link.ID, link.CouncilNumber, link.CouncilUF, link.RQEType, link.IsPrimary)
	return err
}

func (r *professionRepoPG) DeleteLink(ctx context.Context, professionalID, professionID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM professional_professions WHERE professional_id = $1 AND profession_id = $2`,
		professionalID, professionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *professionRepoPG) ClearPrimary(ctx context.Context, professionalID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE professional_professions SET is_primary = false, updated_at = NOW()
		WHERE professional_id = $1`, professionalID)
	return err
}

func (r *professionRepoPG) ListInfoByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*ProfessionInfo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.cbo_code, p.council_type,
			pp.council_number, pp.council_uf, pp.rqe_type, pp.is_primary, pp.created_at
		FROM professions p
		JOIN professional_professions pp ON pp.profession_id = p.id
		WHERE pp.professional_id = $1
		ORDER BY pp.is_primary DESC, p.name`, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ProfessionInfo
	for rows.Next() {
		var info ProfessionInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.CBOCode, &info.CouncilType,
			&info.CouncilNumber, &info.CouncilUF, &info.RQEType, &info.IsPrimary, &info.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &info)
	}
	return out, rows.Err()
}
