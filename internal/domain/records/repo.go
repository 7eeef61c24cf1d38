package records

import (
	"context"

	"github.com/google/uuid"
)

type RecordRepository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, error)
	Update(ctx context.Context, r *Record) error
}

type VisitRepository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	ListByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*Visit, error)
	GetLatestByRecord(ctx context.Context, recordID uuid.UUID) (*Visit, error)
	Update(ctx context.Context, v *Visit) error
}

type FollowUpRepository interface {
	Create(ctx context.Context, f *FollowUp) error
	GetByID(ctx context.Context, id uuid.UUID) (*FollowUp, error)
	ListByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*FollowUp, error)
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*FollowUp, error)
	Update(ctx context.Context, f *FollowUp) error
}

type ExamRepository interface {
	Create(ctx context.Context, e *Exam) error
	GetByID(ctx context.Context, id uuid.UUID) (*Exam, error)
	ListByRecord(ctx context.Context, recordID uuid.UUID, examType *string, limit, offset int) ([]*Exam, error)
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*Exam, error)
	UpdateResults(ctx context.Context, e *Exam) error
}

type DecisionSupportRepository interface {
	Create(ctx context.Context, d *DecisionSupport) error
	GetByID(ctx context.Context, id uuid.UUID) (*DecisionSupport, error)
	GetByVisit(ctx context.Context, visitID uuid.UUID) (*DecisionSupport, error)
	ListByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*DecisionSupport, error)
	Update(ctx context.Context, d *DecisionSupport) error
}
