package records

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ---- test doubles ----

type mockRecordRepo struct {
	byID map[uuid.UUID]*Record
}

func (m *mockRecordRepo) Create(_ context.Context, r *Record) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	if r, ok := m.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, error) {
	var out []*Record
	for _, r := range m.byID {
		if r.PatientID == patientID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRecordRepo) Update(_ context.Context, r *Record) error {
	existing, ok := m.byID[r.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	cp := *r
	cp.PatientID = existing.PatientID
	cp.ProfessionalID = existing.ProfessionalID
	cp.CompanyID = existing.CompanyID
	m.byID[r.ID] = &cp
	return nil
}

type mockVisitRepo struct {
	byID    map[uuid.UUID]*Visit
	counter int
}

func (m *mockVisitRepo) Create(_ context.Context, v *Visit) error {
	v.ID = uuid.New()
	m.counter++
	v.CreatedAt = time.Unix(int64(m.counter), 0)
	cp := *v
	m.byID[v.ID] = &cp
	return nil
}

func (m *mockVisitRepo) GetByID(_ context.Context, id uuid.UUID) (*Visit, error) {
	if v, ok := m.byID[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockVisitRepo) ListByRecord(_ context.Context, recordID uuid.UUID, limit, offset int) ([]*Visit, error) {
	var out []*Visit
	for _, v := range m.byID {
		if v.RecordID == recordID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockVisitRepo) GetLatestByRecord(ctx context.Context, recordID uuid.UUID) (*Visit, error) {
	all, _ := m.ListByRecord(ctx, recordID, 1, 0)
	if len(all) == 0 {
		return nil, pgx.ErrNoRows
	}
	return all[0], nil
}

func (m *mockVisitRepo) Update(_ context.Context, v *Visit) error {
	existing, ok := m.byID[v.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	cp := *v
	cp.RecordID = existing.RecordID
	cp.ProfessionalID = existing.ProfessionalID
	cp.CompanyID = existing.CompanyID
	m.byID[v.ID] = &cp
	return nil
}

type mockFollowUpRepo struct {
	byID map[uuid.UUID]*FollowUp
}

func (m *mockFollowUpRepo) Create(_ context.Context, f *FollowUp) error {
	f.ID = uuid.New()
	f.CreatedAt = time.Now()
	cp := *f
	m.byID[f.ID] = &cp
	return nil
}

func (m *mockFollowUpRepo) GetByID(_ context.Context, id uuid.UUID) (*FollowUp, error) {
	if f, ok := m.byID[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockFollowUpRepo) ListByRecord(_ context.Context, recordID uuid.UUID, _, _ int) ([]*FollowUp, error) {
	var out []*FollowUp
	for _, f := range m.byID {
		if f.RecordID == recordID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockFollowUpRepo) ListByVisit(_ context.Context, visitID uuid.UUID) ([]*FollowUp, error) {
	var out []*FollowUp
	for _, f := range m.byID {
		if f.VisitID != nil && *f.VisitID == visitID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockFollowUpRepo) Update(_ context.Context, f *FollowUp) error {
	if _, ok := m.byID[f.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *f
	m.byID[f.ID] = &cp
	return nil
}

type mockExamRepo struct {
	byID map[uuid.UUID]*Exam
}

func (m *mockExamRepo) Create(_ context.Context, e *Exam) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	cp := *e
	m.byID[e.ID] = &cp
	return nil
}

func (m *mockExamRepo) GetByID(_ context.Context, id uuid.UUID) (*Exam, error) {
	if e, ok := m.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockExamRepo) ListByRecord(_ context.Context, recordID uuid.UUID, examType *string, _, _ int) ([]*Exam, error) {
	var out []*Exam
	for _, e := range m.byID {
		if e.RecordID != recordID {
			continue
		}
		if examType != nil && e.Type != *examType {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockExamRepo) ListByVisit(_ context.Context, visitID uuid.UUID) ([]*Exam, error) {
	var out []*Exam
	for _, e := range m.byID {
		if e.VisitID != nil && *e.VisitID == visitID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockExamRepo) UpdateResults(_ context.Context, e *Exam) error {
	existing, ok := m.byID[e.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.ResultText = e.ResultText
	existing.ResultFile = e.ResultFile
	return nil
}

type mockSupportRepo struct {
	byID map[uuid.UUID]*DecisionSupport
}

func (m *mockSupportRepo) Create(_ context.Context, d *DecisionSupport) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	cp := *d
	m.byID[d.ID] = &cp
	return nil
}

func (m *mockSupportRepo) GetByID(_ context.Context, id uuid.UUID) (*DecisionSupport, error) {
	if d, ok := m.byID[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockSupportRepo) GetByVisit(_ context.Context, visitID uuid.UUID) (*DecisionSupport, error) {
	for _, d := range m.byID {
		if d.VisitID == visitID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockSupportRepo) ListByRecord(_ context.Context, recordID uuid.UUID, _, _ int) ([]*DecisionSupport, error) {
	var out []*DecisionSupport
	for _, d := range m.byID {
		if d.RecordID == recordID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSupportRepo) Update(_ context.Context, d *DecisionSupport) error {
	if _, ok := m.byID[d.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *d
	m.byID[d.ID] = &cp
	return nil
}

// ---- fixtures ----

type testFixture struct {
	svc      *Service
	records  *mockRecordRepo
	visits   *mockVisitRepo
	follows  *mockFollowUpRepo
	exams    *mockExamRepo
	supports *mockSupportRepo
}

func newTestFixture() *testFixture {
	f := &testFixture{
		records:  &mockRecordRepo{byID: map[uuid.UUID]*Record{}},
		visits:   &mockVisitRepo{byID: map[uuid.UUID]*Visit{}},
		follows:  &mockFollowUpRepo{byID: map[uuid.UUID]*FollowUp{}},
		exams:    &mockExamRepo{byID: map[uuid.UUID]*Exam{}},
		supports: &mockSupportRepo{byID: map[uuid.UUID]*DecisionSupport{}},
	}
	f.svc = NewService(f.records, f.visits, f.follows, f.exams, f.supports)
	return f
}

func (f *testFixture) seedRecord(t *testing.T) *Record {
	t.Helper()
	rec, err := f.svc.CreateRecord(context.Background(), &Record{
		PatientID:      uuid.New(),
		ProfessionalID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return rec
}

func (f *testFixture) seedVisit(t *testing.T, recordID uuid.UUID) *Visit {
	t.Helper()
	v, err := f.svc.CreateVisit(context.Background(), &Visit{
		RecordID:       recordID,
		ProfessionalID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("seed visit: %v", err)
	}
	return v
}

func str(s string) *string { return &s }

// ---- tests ----

func TestCreateRecordValidation(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()

	if _, err := f.svc.CreateRecord(ctx, &Record{ProfessionalID: uuid.New()}); err == nil {
		t.Error("missing patient accepted")
	}
	if _, err := f.svc.CreateRecord(ctx, &Record{PatientID: uuid.New()}); err == nil {
		t.Error("missing professional accepted")
	}

	rec, err := f.svc.CreateRecord(ctx, &Record{PatientID: uuid.New(), ProfessionalID: uuid.New()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Tags == nil {
		t.Error("tags must default to an empty list")
	}
}

func TestUpdateRecordOverlaysOnlyGivenFields(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	rec := f.seedRecord(t)
	if _, err := f.svc.UpdateRecord(ctx, rec.ID, RecordPatch{
		ClinicalHistory: str("hypertension"),
		Tags:            []string{"chronic"},
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	out, err := f.svc.UpdateRecord(ctx, rec.ID, RecordPatch{Allergies: str("penicillin")})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if out.ClinicalHistory != "hypertension" || out.Allergies != "penicillin" {
		t.Errorf("overlay wrong: %+v", out)
	}
	if len(out.Tags) != 1 || out.Tags[0] != "chronic" {
		t.Errorf("tags must survive an update that omits them: %v", out.Tags)
	}

	stored := f.records.byID[rec.ID]
	if stored.PatientID != rec.PatientID || stored.ProfessionalID != rec.ProfessionalID {
		t.Error("update must never change record ownership")
	}

	if _, err := f.svc.UpdateRecord(ctx, uuid.New(), RecordPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing record err = %v, want ErrNotFound", err)
	}
}

func TestVisitLifecycle(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	rec := f.seedRecord(t)

	if _, err := f.svc.CreateVisit(ctx, &Visit{RecordID: uuid.New(), ProfessionalID: uuid.New()}); !errors.Is(err, ErrNotFound) {
		t.Errorf("visit on missing record err = %v, want ErrNotFound", err)
	}

	first := f.seedVisit(t, rec.ID)
	second := f.seedVisit(t, rec.ID)

	latest, err := f.svc.LatestVisit(ctx, rec.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("latest = %v, want the newest visit", latest.ID)
	}

	list, err := f.svc.ListVisitsByRecord(ctx, rec.ID, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("visits = %d, want 2", len(list))
	}

	updated, err := f.svc.UpdateVisit(ctx, first.ID, VisitPatch{MainComplaint: str("headache")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.MainComplaint != "headache" {
		t.Errorf("main_complaint = %q", updated.MainComplaint)
	}
	if f.visits.byID[first.ID].RecordID != rec.ID {
		t.Error("update must never move a visit between records")
	}
}

func TestFollowUpVisitBinding(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	rec := f.seedRecord(t)
	other := f.seedRecord(t)
	visit := f.seedVisit(t, rec.ID)
	foreignVisit := f.seedVisit(t, other.ID)

	if _, err := f.svc.CreateFollowUp(ctx, &FollowUp{RecordID: rec.ID}); err == nil {
		t.Error("empty note accepted")
	}
	if _, err := f.svc.CreateFollowUp(ctx, &FollowUp{
		RecordID: rec.ID, VisitID: &foreignVisit.ID, Note: "n",
	}); !errors.Is(err, ErrVisitMismatch) {
		t.Errorf("foreign visit err = %v, want ErrVisitMismatch", err)
	}

	fu, err := f.svc.CreateFollowUp(ctx, &FollowUp{
		RecordID: rec.ID, VisitID: &visit.ID, Note: "patient improving",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if fu.Tags == nil {
		t.Error("tags must default to an empty list")
	}

	byVisit, err := f.svc.ListFollowUpsByVisit(ctx, visit.ID)
	if err != nil {
		t.Fatalf("list by visit: %v", err)
	}
	if len(byVisit) != 1 {
		t.Errorf("follow-ups = %d, want 1", len(byVisit))
	}

	if _, err := f.svc.UpdateFollowUp(ctx, fu.ID, str(""), nil); err == nil {
		t.Error("update to empty note accepted")
	}
	out, err := f.svc.UpdateFollowUp(ctx, fu.ID, str("stable"), []string{"check"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out.Note != "stable" || len(out.Tags) != 1 {
		t.Errorf("update not applied: %+v", out)
	}
}

func TestExamTypeAndResults(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	rec := f.seedRecord(t)

	if _, err := f.svc.CreateExam(ctx, &Exam{
		RecordID: rec.ID, Type: "genetic", Name: "Panel",
	}); err == nil {
		t.Error("invalid exam type accepted")
	}

	lab, err := f.svc.CreateExam(ctx, &Exam{
		RecordID: rec.ID, Type: ExamLaboratory, Name: "Hemograma",
	})
	if err != nil {
		t.Fatalf("create lab: %v", err)
	}
	if lab.RequestedAt.IsZero() {
		t.Error("requested_at must default to now")
	}
	if _, err := f.svc.CreateExam(ctx, &Exam{
		RecordID: rec.ID, Type: ExamImage, Name: "Raio-X",
	}); err != nil {
		t.Fatalf("create image: %v", err)
	}

	labType := ExamLaboratory
	filtered, err := f.svc.ListExamsByRecord(ctx, rec.ID, &labType, 10, 0)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Type != ExamLaboratory {
		t.Errorf("filtered = %+v", filtered)
	}

	out, err := f.svc.UpdateExamResults(ctx, lab.ID, str("normal"), nil)
	if err != nil {
		t.Fatalf("update results: %v", err)
	}
	if out.ResultText == nil || *out.ResultText != "normal" {
		t.Errorf("result_text = %v", out.ResultText)
	}
	if out.Name != "Hemograma" || out.Type != ExamLaboratory {
		t.Error("result update must not touch the request data")
	}
}

func TestDecisionSupportOnePerVisit(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	rec := f.seedRecord(t)
	other := f.seedRecord(t)
	visit := f.seedVisit(t, rec.ID)
	foreignVisit := f.seedVisit(t, other.ID)

	if _, err := f.svc.CreateDecisionSupport(ctx, &DecisionSupport{
		RecordID: rec.ID, VisitID: visit.ID,
	}); err == nil {
		t.Error("missing llm_model accepted")
	}
	if _, err := f.svc.CreateDecisionSupport(ctx, &DecisionSupport{
		RecordID: rec.ID, VisitID: foreignVisit.ID, LLMModel: "gpt-4o",
	}); !errors.Is(err, ErrVisitMismatch) {
		t.Errorf("foreign visit err = %v, want ErrVisitMismatch", err)
	}

	d, err := f.svc.CreateDecisionSupport(ctx, &DecisionSupport{
		RecordID: rec.ID, VisitID: visit.ID, LLMModel: "gpt-4o",
		SymptomSummary: str("fatigue"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.CreateDecisionSupport(ctx, &DecisionSupport{
		RecordID: rec.ID, VisitID: visit.ID, LLMModel: "gpt-4o",
	}); !errors.Is(err, ErrSupportExists) {
		t.Errorf("duplicate err = %v, want ErrSupportExists", err)
	}

	out, err := f.svc.UpdateDecisionSupport(ctx, d.ID, SupportPatch{
		SuggestedConduct: str("rest and hydration"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out.SuggestedConduct == nil || *out.SuggestedConduct != "rest and hydration" {
		t.Errorf("suggested_conduct = %v", out.SuggestedConduct)
	}
	if out.SymptomSummary == nil || *out.SymptomSummary != "fatigue" {
		t.Error("untouched summary must survive the update")
	}
	if out.LLMModel != "gpt-4o" || out.VisitID != visit.ID {
		t.Error("update must never change the visit binding or model")
	}

	byVisit, err := f.svc.GetDecisionSupportByVisit(ctx, visit.ID)
	if err != nil || byVisit.ID != d.ID {
		t.Errorf("get by visit = %v, %v", byVisit, err)
	}
}
