package records

import (
	"time"

	"github.com/google/uuid"
)

// Record is a patient's clinical record (prontuário). A patient may hold
// several records, one per professional relationship.
type Record struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	ProfessionalID uuid.UUID  `db:"professional_id" json:"professional_id"`
	CompanyID      *uuid.UUID `db:"company_id" json:"company_id,omitempty"`

	ClinicalHistory    string `db:"clinical_history" json:"clinical_history"`
	SurgicalHistory    string `db:"surgical_history" json:"surgical_history"`
	FamilyHistory      string `db:"family_history" json:"family_history"`
	Habits             string `db:"habits" json:"habits"`
	Allergies          string `db:"allergies" json:"allergies"`
	CurrentMedications string `db:"current_medications" json:"current_medications"`
	LastDiagnoses      string `db:"last_diagnoses" json:"last_diagnoses"`

	Tags      []string   `db:"tags" json:"tags"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Visit is one clinical encounter within a record.
type Visit struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	RecordID       uuid.UUID  `db:"record_id" json:"record_id"`
	ProfessionalID uuid.UUID  `db:"professional_id" json:"professional_id"`
	CompanyID      *uuid.UUID `db:"company_id" json:"company_id,omitempty"`

	MainComplaint         string `db:"main_complaint" json:"main_complaint"`
	CurrentIllnessHistory string `db:"current_illness_history" json:"current_illness_history"`
	PastHistory           string `db:"past_history" json:"past_history"`
	PhysicalExam          string `db:"physical_exam" json:"physical_exam"`
	DiagnosticHypothesis  string `db:"diagnostic_hypothesis" json:"diagnostic_hypothesis"`
	Procedures            string `db:"procedures" json:"procedures"`
	Prescription          string `db:"prescription" json:"prescription"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// FollowUp is a quick evolution note on a record, optionally bound to one of
// the record's visits.
type FollowUp struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	RecordID  uuid.UUID  `db:"record_id" json:"record_id"`
	VisitID   *uuid.UUID `db:"visit_id" json:"visit_id,omitempty"`
	Note      string     `db:"note" json:"note"`
	Tags      []string   `db:"tags" json:"tags"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Exam types.
const (
	ExamClinical   = "clinical"
	ExamLaboratory = "laboratory"
	ExamImage      = "image"
)

var validExamTypes = map[string]bool{
	ExamClinical: true, ExamLaboratory: true, ExamImage: true,
}

// Exam is a requested exam on a record. Results arrive later; updates touch
// only the result fields.
type Exam struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	RecordID    uuid.UUID  `db:"record_id" json:"record_id"`
	VisitID     *uuid.UUID `db:"visit_id" json:"visit_id,omitempty"`
	Type        string     `db:"type" json:"type"`
	Name        string     `db:"name" json:"name"`
	RequestedAt time.Time  `db:"requested_at" json:"requested_at"`
	ResultText  *string    `db:"result_text" json:"result_text,omitempty"`
	ResultFile  *string    `db:"result_file" json:"result_file,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// DecisionSupport holds the model-generated analysis for one visit. At most
// one per visit.
type DecisionSupport struct {
	ID             uuid.UUID `db:"id" json:"id"`
	RecordID       uuid.UUID `db:"record_id" json:"record_id"`
	VisitID        uuid.UUID `db:"visit_id" json:"visit_id"`
	ProfessionalID uuid.UUID `db:"professional_id" json:"professional_id"`

	SentimentSummary *string `db:"sentiment_summary" json:"sentiment_summary,omitempty"`
	SymptomSummary   *string `db:"symptom_summary" json:"symptom_summary,omitempty"`
	GoalSummary      *string `db:"goal_summary" json:"goal_summary,omitempty"`
	PracticeSummary  *string `db:"practice_summary" json:"practice_summary,omitempty"`
	InsightSummary   *string `db:"insight_summary" json:"insight_summary,omitempty"`
	SuggestedConduct *string `db:"suggested_conduct" json:"suggested_conduct,omitempty"`
	EvidenceSummary  *string `db:"evidence_summary" json:"evidence_summary,omitempty"`

	LLMModel  string    `db:"llm_model" json:"llm_model"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
