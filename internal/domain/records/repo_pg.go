package records

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Record Repository ===========

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository { return &recordRepoPG{pool: pool} }

const recordCols = `id, patient_id, professional_id, company_id, clinical_history,
	surgical_history, family_history, habits, allergies, current_medications,
	last_diagnoses, tags, created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.ProfessionalID, &rec.CompanyID,
		&rec.ClinicalHistory, &rec.SurgicalHistory, &rec.FamilyHistory, &rec.Habits,
		&rec.Allergies, &rec.CurrentMedications, &rec.LastDiagnoses, &rec.Tags,
		&rec.CreatedAt, &rec.UpdatedAt)
	return &rec, err
}

func (r *recordRepoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO records (id, patient_id, professional_id, company_id, clinical_history,
			surgical_history, family_history, habits, allergies, current_medications,
			last_diagnoses, tags)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at`,
		rec.ID, rec.PatientID, rec.ProfessionalID, rec.CompanyID, rec.ClinicalHistory,
		rec.SurgicalHistory, rec.FamilyHistory, rec.Habits, rec.Allergies,
		rec.CurrentMedications, rec.LastDiagnoses, rec.Tags).Scan(&rec.CreatedAt)
}

func (r *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordCols+` FROM records WHERE id = $1`, id))
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordCols+` FROM records
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Update never touches patient_id, professional_id or company_id.
func (r *recordRepoPG) Update(ctx context.Context, rec *Record) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE records SET clinical_history=$2, surgical_history=$3, family_history=$4,
			habits=$5, allergies=$6, current_medications=$7, last_diagnoses=$8, tags=$9,
			updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.ClinicalHistory, rec.SurgicalHistory, rec.FamilyHistory, rec.Habits,
		rec.Allergies, rec.CurrentMedications, rec.LastDiagnoses, rec.Tags)
	return err
}

// =========== Visit Repository ===========

type visitRepoPG struct{ pool *pgxpool.Pool }

func NewVisitRepoPG(pool *pgxpool.Pool) VisitRepository { return &visitRepoPG{pool: pool} }

const visitCols = `id, record_id, professional_id, company_id, main_complaint,
	current_illness_history, past_history, physical_exam, diagnostic_hypothesis,
	procedures, prescription, created_at, updated_at`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(&v.ID, &v.RecordID, &v.ProfessionalID, &v.CompanyID,
		&v.MainComplaint, &v.CurrentIllnessHistory, &v.PastHistory, &v.PhysicalExam,
		&v.DiagnosticHypothesis, &v.Procedures, &v.Prescription,
		&v.CreatedAt, &v.UpdatedAt)
	return &v, err
}

func (r *visitRepoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO visits (id, record_id, professional_id, company_id, main_complaint,
			current_illness_history, past_history, physical_exam, diagnostic_hypothesis,
			procedures, prescription)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at`,
		v.ID, v.RecordID, v.ProfessionalID, v.CompanyID, v.MainComplaint,
		v.CurrentIllnessHistory, v.PastHistory, v.PhysicalExam, v.DiagnosticHypothesis,
		v.Procedures, v.Prescription).Scan(&v.CreatedAt)
}

func (r *visitRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return scanVisit(r.pool.QueryRow(ctx, `SELECT `+visitCols+` FROM visits WHERE id = $1`, id))
}

func (r *visitRepoPG) ListByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*Visit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+visitCols+` FROM visits
		WHERE record_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, recordID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *visitRepoPG) GetLatestByRecord(ctx context.Context, recordID uuid.UUID) (*Visit, error) {
	return scanVisit(r.pool.QueryRow(ctx, `
		SELECT `+visitCols+` FROM visits
		WHERE record_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, recordID))
}

// Update never touches record_id, professional_id or company_id.
func (r *visitRepoPG) Update(ctx context.Context, v *Visit) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE visits SET main_complaint=$2, current_illness_history=$3, past_history=$4,
			physical_exam=$5, diagnostic_hypothesis=$6, procedures=$7, prescription=$8,
			updated_at=NOW()
		WHERE id = $1`,
		v.ID, v.MainComplaint, v.CurrentIllnessHistory, v.PastHistory, v.PhysicalExam,
		v.DiagnosticHypothesis, v.Procedures, v.Prescription)
	return err
}

// =========== FollowUp Repository ===========

type followUpRepoPG struct{ pool *pgxpool.Pool }

func NewFollowUpRepoPG(pool *pgxpool.Pool) FollowUpRepository { return &followUpRepoPG{pool: pool} }

const followUpCols = `id, record_id, visit_id, note, tags, created_at`

func scanFollowUp(row pgx.Row) (*FollowUp, error) {
	var f FollowUp
	err := row.Scan(&f.ID, &f.RecordID, &f.VisitID, &f.Note, &f.Tags, &f.CreatedAt)
	return &f, err
}

func (r *followUpRepoPG) Create(ctx context.Context, f *FollowUp) error {
	f.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO follow_ups (id, record_id, visit_id, note, tags)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		f.ID, f.RecordID, f.VisitID, f.Note, f.Tags).Scan(&f.CreatedAt)
}

func (r *followUpRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*FollowUp, error) {
	return scanFollowUp(r.pool.QueryRow(ctx,
		`SELECT `+followUpCols+` FROM follow_ups WHERE id = $1`, id))
}

func (r *followUpRepoPG) ListByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*FollowUp, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUpCols+` FROM follow_ups
		WHERE record_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, recordID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*FollowUp
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *followUpRepoPG) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*FollowUp, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUpCols+` FROM follow_ups
		WHERE visit_id = $1
		ORDER BY created_at DESC`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*FollowUp
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *followUpRepoPG) Update(ctx context.Context, f *FollowUp) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE follow_ups SET note=$2, tags=$3 WHERE id = $1`,
		f.ID, f.Note, f.Tags)
	return err
}

// =========== Exam Repository ===========

type examRepoPG struct{ pool *pgxpool.Pool }

func NewExamRepoPG(pool *pgxpool.Pool) ExamRepository { return &examRepoPG{pool: pool} }

const examCols = `id, record_id, visit_id, type, name, requested_at, result_text,
	result_file, created_at`

func scanExam(row pgx.Row) (*Exam, error) {
	var e Exam
	err := row.Scan(&e.ID, &e.RecordID, &e.VisitID, &e.Type, &e.Name, &e.RequestedAt,
		&e.ResultText, &e.ResultFile, &e.CreatedAt)
	return &e, err
}

func (r *examRepoPG) Create(ctx context.Context, e *Exam) error {
	e.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO exams (id, record_id, visit_id, type, name, requested_at,
			result_text, result_file)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		e.ID, e.RecordID, e.VisitID, e.Type, e.Name, e.RequestedAt,
		e.ResultText, e.ResultFile).Scan(&e.CreatedAt)
}

func (r *examRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Exam, error) {
	return scanExam(r.pool.QueryRow(ctx, `SELECT `+examCols+` FROM exams WHERE id = $1`, id))
}

func (r *examRepoPG) ListByRecord(ctx context.Context, recordID uuid.UUID, examType *string, limit, offset int) ([]*Exam, error) {
	query := `SELECT ` + examCols + ` FROM exams WHERE record_id = $1`
	args := []interface{}{recordID}
	if examType != nil {
		query += ` AND type = $2`
		args = append(args, *examType)
	}
	query += ` ORDER BY requested_at DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *examRepoPG) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Exam, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+examCols+` FROM exams
		WHERE visit_id = $1
		ORDER BY requested_at DESC`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateResults touches only the result fields; the request data is
// immutable once created.
func (r *examRepoPG) UpdateResults(ctx context.Context, e *Exam) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE exams SET result_text=$2, result_file=$3 WHERE id = $1`,
		e.ID, e.ResultText, e.ResultFile)
	return err
}

// =========== DecisionSupport Repository ===========

type decisionSupportRepoPG struct{ pool *pgxpool.Pool }

func NewDecisionSupportRepoPG(pool *pgxpool.Pool) DecisionSupportRepository {
	return &decisionSupportRepoPG{pool: pool}
}

const supportCols = `id, record_id, visit_id, professional_id, sentiment_summary,
	symptom_summary, goal_summary, practice_summary, insight_summary,
	suggested_conduct, evidence_summary, llm_model, created_at`

func scanSupport(row pgx.Row) (*DecisionSupport, error) {
	var d DecisionSupport
	err := row.Scan(&d.ID, &d.RecordID, &d.VisitID, &d.ProfessionalID,
		&d.SentimentSummary, &d.SymptomSummary, &d.GoalSummary, &d.PracticeSummary,
		&d.InsightSummary, &d.SuggestedConduct, &d.EvidenceSummary,
		&d.LLMModel, &d.CreatedAt)
	return &d, err
}

func (r *decisionSupportRepoPG) Create(ctx context.Context, d *DecisionSupport) error {
	d.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO decision_supports (id, record_id, visit_id, professional_id,
			sentiment_summary, symptom_summary, goal_summary, practice_summary,
			insight_summary, suggested_conduct, evidence_summary, llm_model)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at`,
		d.ID, d.RecordID, d.VisitID, d.ProfessionalID,
		d.SentimentSummary, d.SymptomSummary, d.GoalSummary, d.PracticeSummary,
		d.InsightSummary, d.SuggestedConduct, d.EvidenceSummary, d.LLMModel).
		Scan(&d.CreatedAt)
}

func (r *decisionSupportRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DecisionSupport, error) {
	return scanSupport(r.pool.QueryRow(ctx,
		`SELECT `+supportCols+` FROM decision_supports WHERE id = $1`, id))
}

func (r *decisionSupportRepoPG) GetByVisit(ctx context.Context, visitID uuid.UUID) (*DecisionSupport, error) {
	return scanSupport(r.pool.QueryRow(ctx,
		`SELECT `+supportCols+` FROM decision_supports WHERE visit_id = $1`, visitID))
}

func (r *decisionSupportRepoPG) ListByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*DecisionSupport, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+supportCols+` FROM decision_supports
		WHERE record_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, recordID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*DecisionSupport
	for rows.Next() {
		d, err := scanSupport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *decisionSupportRepoPG) Update(ctx context.Context, d *DecisionSupport) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE decision_supports SET sentiment_summary=$2, symptom_summary=$3,
			goal_summary=$4, practice_summary=$5, insight_summary=$6,
			suggested_conduct=$7, evidence_summary=$8
		WHERE id = $1`,
		d.ID, d.SentimentSummary, d.SymptomSummary, d.GoalSummary, d.PracticeSummary,
		d.InsightSummary, d.SuggestedConduct, d.EvidenceSummary)
	return err
}
