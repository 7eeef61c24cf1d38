package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrVisitMismatch = errors.New("visit does not belong to this record")
	ErrSupportExists = errors.New("decision support already exists for this visit")
)

// Service implements the clinical records domain: records, visits, follow-up
// notes, exams and decision-support entries.
type Service struct {
	records   RecordRepository
	visits    VisitRepository
	followUps FollowUpRepository
	exams     ExamRepository
	supports  DecisionSupportRepository
}

func NewService(records RecordRepository, visits VisitRepository, followUps FollowUpRepository,
	exams ExamRepository, supports DecisionSupportRepository) *Service {
	return &Service{records: records, visits: visits, followUps: followUps, exams: exams, supports: supports}
}

// ---- records ----

// CreateRecord opens a clinical record for a patient. A patient may hold
// several records, one per professional relationship.
func (s *Service) CreateRecord(ctx context.Context, rec *Record) (*Record, error) {
	if rec.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if rec.ProfessionalID == uuid.Nil {
		return nil, fmt.Errorf("professional_id is required")
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := s.records.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("record: %w", ErrNotFound)
	}
	return rec, err
}

func (s *Service) ListRecordsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, error) {
	out, err := s.records.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Record{}
	}
	return out, nil
}

// RecordPatch carries the mutable record fields. Nil fields stay unchanged;
// ownership never moves.
type RecordPatch struct {
	ClinicalHistory    *string  `json:"clinical_history"`
	SurgicalHistory    *string  `json:"surgical_history"`
	FamilyHistory      *string  `json:"family_history"`
	Habits             *string  `json:"habits"`
	Allergies          *string  `json:"allergies"`
	CurrentMedications *string  `json:"current_medications"`
	LastDiagnoses      *string  `json:"last_diagnoses"`
	Tags               []string `json:"tags"`
}

func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, patch RecordPatch) (*Record, error) {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(&rec.ClinicalHistory, patch.ClinicalHistory)
	apply(&rec.SurgicalHistory, patch.SurgicalHistory)
	apply(&rec.FamilyHistory, patch.FamilyHistory)
	apply(&rec.Habits, patch.Habits)
	apply(&rec.Allergies, patch.Allergies)
	apply(&rec.CurrentMedications, patch.CurrentMedications)
	apply(&rec.LastDiagnoses, patch.LastDiagnoses)
	if patch.Tags != nil {
		rec.Tags = patch.Tags
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ---- visits ----

func (s *Service) CreateVisit(ctx context.Context, v *Visit) (*Visit, error) {
	if _, err := s.GetRecord(ctx, v.RecordID); err != nil {
		return nil, err
	}
	if v.ProfessionalID == uuid.Nil {
		return nil, fmt.Errorf("professional_id is required")
	}
	if err := s.visits.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	v, err := s.visits.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("visit: %w", ErrNotFound)
	}
	return v, err
}

func (s *Service) ListVisitsByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*Visit, error) {
	if _, err := s.GetRecord(ctx, recordID); err != nil {
		return nil, err
	}
	out, err := s.visits.ListByRecord(ctx, recordID, limit, offset)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Visit{}
	}
	return out, nil
}

func (s *Service) LatestVisit(ctx context.Context, recordID uuid.UUID) (*Visit, error) {
	if _, err := s.GetRecord(ctx, recordID); err != nil {
		return nil, err
	}
	v, err := s.visits.GetLatestByRecord(ctx, recordID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("visit: %w", ErrNotFound)
	}
	return v, err
}

// VisitPatch carries the mutable visit fields; nil fields stay unchanged.
type VisitPatch struct {
	MainComplaint         *string `json:"main_complaint"`
	CurrentIllnessHistory *string `json:"current_illness_history"`
	PastHistory           *string `json:"past_history"`
	PhysicalExam          *string `json:"physical_exam"`
	DiagnosticHypothesis  *string `json:"diagnostic_hypothesis"`
	Procedures            *string `json:"procedures"`
	Prescription          *string `json:"prescription"`
}

func (s *Service) UpdateVisit(ctx context.Context, id uuid.UUID, patch VisitPatch) (*Visit, error) {
	v, err := s.GetVisit(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(&v.MainComplaint, patch.MainComplaint)
	apply(&v.CurrentIllnessHistory, patch.CurrentIllnessHistory)
	apply(&v.PastHistory, patch.PastHistory)
	apply(&v.PhysicalExam, patch.PhysicalExam)
	apply(&v.DiagnosticHypothesis, patch.DiagnosticHypothesis)
	apply(&v.Procedures, patch.Procedures)
	apply(&v.Prescription, patch.Prescription)
	if err := s.visits.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ---- follow-ups ----

func (s *Service) CreateFollowUp(ctx context.Context, f *FollowUp) (*FollowUp, error) {
	if f.Note == "" {
		return nil, fmt.Errorf("note is required")
	}
	if _, err := s.GetRecord(ctx, f.RecordID); err != nil {
		return nil, err
	}
	if f.VisitID != nil {
		if err := s.visitInRecord(ctx, *f.VisitID, f.RecordID); err != nil {
			return nil, err
		}
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}
	if err := s.followUps.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) ListFollowUpsByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*FollowUp, error) {
	if _, err := s.GetRecord(ctx, recordID); err != nil {
		return nil, err
	}
	out, err := s.followUps.ListByRecord(ctx, recordID, limit, offset)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*FollowUp{}
	}
	return out, nil
}

func (s *Service) ListFollowUpsByVisit(ctx context.Context, visitID uuid.UUID) ([]*FollowUp, error) {
	if _, err := s.GetVisit(ctx, visitID); err != nil {
		return nil, err
	}
	out, err := s.followUps.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*FollowUp{}
	}
	return out, nil
}

func (s *Service) UpdateFollowUp(ctx context.Context, id uuid.UUID, note *string, tags []string) (*FollowUp, error) {
	f, err := s.followUps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("follow-up: %w", ErrNotFound)
		}
		return nil, err
	}
	if note != nil {
		if *note == "" {
			return nil, fmt.Errorf("note is required")
		}
		f.Note = *note
	}
	if tags != nil {
		f.Tags = tags
	}
	if err := s.followUps.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ---- exams ----

func (s *Service) CreateExam(ctx context.Context, e *Exam) (*Exam, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !validExamTypes[e.Type] {
		return nil, fmt.Errorf("invalid exam type %q", e.Type)
	}
	if e.RequestedAt.IsZero() {
		e.RequestedAt = time.Now()
	}
	if _, err := s.GetRecord(ctx, e.RecordID); err != nil {
		return nil, err
	}
	if e.VisitID != nil {
		if err := s.visitInRecord(ctx, *e.VisitID, e.RecordID); err != nil {
			return nil, err
		}
	}
	if err := s.exams.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) ListExamsByRecord(ctx context.Context, recordID uuid.UUID, examType *string, limit, offset int) ([]*Exam, error) {
	if _, err := s.GetRecord(ctx, recordID); err != nil {
		return nil, err
	}
	if examType != nil && !validExamTypes[*examType] {
		return nil, fmt.Errorf("invalid exam type %q", *examType)
	}
	out, err := s.exams.ListByRecord(ctx, recordID, examType, limit, offset)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Exam{}
	}
	return out, nil
}

func (s *Service) ListExamsByVisit(ctx context.Context, visitID uuid.UUID) ([]*Exam, error) {
	if _, err := s.GetVisit(ctx, visitID); err != nil {
		return nil, err
	}
	out, err := s.exams.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Exam{}
	}
	return out, nil
}

// UpdateExamResults records exam results. The request itself (type, name,
// requested_at) is immutable.
func (s *Service) UpdateExamResults(ctx context.Context, id uuid.UUID, resultText, resultFile *string) (*Exam, error) {
	e, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("exam: %w", ErrNotFound)
		}
		return nil, err
	}
	if resultText != nil {
		e.ResultText = resultText
	}
	if resultFile != nil {
		e.ResultFile = resultFile
	}
	if err := s.exams.UpdateResults(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ---- decision supports ----

func (s *Service) CreateDecisionSupport(ctx context.Context, d *DecisionSupport) (*DecisionSupport, error) {
	if d.LLMModel == "" {
		return nil, fmt.Errorf("llm_model is required")
	}
	if _, err := s.GetRecord(ctx, d.RecordID); err != nil {
		return nil, err
	}
	if err := s.visitInRecord(ctx, d.VisitID, d.RecordID); err != nil {
		return nil, err
	}
	if _, err := s.supports.GetByVisit(ctx, d.VisitID); err == nil {
		return nil, ErrSupportExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err := s.supports.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDecisionSupportByVisit(ctx context.Context, visitID uuid.UUID) (*DecisionSupport, error) {
	d, err := s.supports.GetByVisit(ctx, visitID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("decision support: %w", ErrNotFound)
	}
	return d, err
}

func (s *Service) ListDecisionSupportsByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*DecisionSupport, error) {
	if _, err := s.GetRecord(ctx, recordID); err != nil {
		return nil, err
	}
	out, err := s.supports.ListByRecord(ctx, recordID, limit, offset)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*DecisionSupport{}
	}
	return out, nil
}

// SupportPatch carries the mutable decision-support fields; nil fields stay
// unchanged. The visit binding and llm_model never change.
type SupportPatch struct {
	SentimentSummary *string `json:"sentiment_summary"`
	SymptomSummary   *string `json:"symptom_summary"`
	GoalSummary      *string `json:"goal_summary"`
	PracticeSummary  *string `json:"practice_summary"`
	InsightSummary   *string `json:"insight_summary"`
	SuggestedConduct *string `json:"suggested_conduct"`
	EvidenceSummary  *string `json:"evidence_summary"`
}

func (s *Service) UpdateDecisionSupport(ctx context.Context, id uuid.UUID, patch SupportPatch) (*DecisionSupport, error) {
	d, err := s.supports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("decision support: %w", ErrNotFound)
		}
		return nil, err
	}
	applyOpt(&d.SentimentSummary, patch.SentimentSummary)
	applyOpt(&d.SymptomSummary, patch.SymptomSummary)
	applyOpt(&d.GoalSummary, patch.GoalSummary)
	applyOpt(&d.PracticeSummary, patch.PracticeSummary)
	applyOpt(&d.InsightSummary, patch.InsightSummary)
	applyOpt(&d.SuggestedConduct, patch.SuggestedConduct)
	applyOpt(&d.EvidenceSummary, patch.EvidenceSummary)
	if err := s.supports.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ---- helpers ----

func (s *Service) visitInRecord(ctx context.Context, visitID, recordID uuid.UUID) error {
	v, err := s.GetVisit(ctx, visitID)
	if err != nil {
		return err
	}
	if v.RecordID != recordID {
		return ErrVisitMismatch
	}
	return nil
}

func apply(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyOpt(dst **string, src *string) {
	if src != nil {
		*dst = src
	}
}
