package records

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinova/clinova/internal/platform/token"
	"github.com/clinova/clinova/pkg/pagination"
)

// AssistantChecker reports whether a system user has an assistant profile.
// Assistants read clinical data for the professionals they work for but
// never write it.
type AssistantChecker interface {
	IsAssistant(ctx context.Context, userID uuid.UUID) (bool, error)
}

type Handler struct {
	svc        *Service
	assistants AssistantChecker
}

func NewHandler(svc *Service, assistants AssistantChecker) *Handler {
	return &Handler{svc: svc, assistants: assistants}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	write := token.RequireRole(token.RoleProfessional)

	rec := api.Group("/records")
	rec.POST("", h.CreateRecord, write)
	rec.GET("/patient/:patient_id", h.ListRecordsByPatient, h.readAccess)
	rec.GET("/:id", h.GetRecord, h.readAccess)
	rec.PUT("/:id", h.UpdateRecord, write)

	v := api.Group("/visits")
	v.POST("", h.CreateVisit, write)
	v.GET("/record/:record_id/latest", h.LatestVisit, h.readAccess)
	v.GET("/record/:record_id", h.ListVisitsByRecord, h.readAccess)
	v.GET("/:id", h.GetVisit, h.readAccess)
	v.PUT("/:id", h.UpdateVisit, write)

	f := api.Group("/follow-ups")
	f.POST("", h.CreateFollowUp, write)
	f.GET("/record/:record_id", h.ListFollowUpsByRecord, h.readAccess)
	f.GET("/visit/:visit_id", h.ListFollowUpsByVisit, h.readAccess)
	f.PUT("/:id", h.UpdateFollowUp, write)

	e := api.Group("/exams")
	e.POST("", h.CreateExam, write)
	e.GET("/record/:record_id", h.ListExamsByRecord, h.readAccess)
	e.GET("/visit/:visit_id", h.ListExamsByVisit, h.readAccess)
	e.PUT("/:id", h.UpdateExamResults, write)

	d := api.Group("/decision-supports")
	d.POST("", h.CreateDecisionSupport, write)
	d.GET("/visit/:visit_id", h.GetDecisionSupportByVisit, h.readAccess)
	d.GET("/record/:record_id", h.ListDecisionSupportsByRecord, h.readAccess)
	d.PUT("/:id", h.UpdateDecisionSupport, write)
}

// readAccess admits professionals and users with an assistant profile.
func (h *Handler) readAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := token.CallerFromContext(c.Request().Context())
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}
		if id.Role == token.RoleSuper || id.Role == token.RoleProfessional {
			return next(c)
		}
		userID, err := token.CallerUserID(c)
		if err != nil {
			return err
		}
		isAssistant, err := h.assistants.IsAssistant(c.Request().Context(), userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !isAssistant {
			return echo.NewHTTPError(http.StatusForbidden, "professional or assistant access required")
		}
		return next(c)
	}
}

// ---- records ----

type createRecordRequest struct {
	PatientID uuid.UUID  `json:"patient_id"`
	CompanyID *uuid.UUID `json:"company_id"`
	RecordPatch
}

func (h *Handler) CreateRecord(c echo.Context) error {
	callerID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	var req createRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec := &Record{
		PatientID:      req.PatientID,
		ProfessionalID: callerID,
		CompanyID:      req.CompanyID,
		Tags:           req.Tags,
	}
	apply(&rec.ClinicalHistory, req.ClinicalHistory)
	apply(&rec.SurgicalHistory, req.SurgicalHistory)
	apply(&rec.FamilyHistory, req.FamilyHistory)
	apply(&rec.Habits, req.Habits)
	apply(&rec.Allergies, req.Allergies)
	apply(&rec.CurrentMedications, req.CurrentMedications)
	apply(&rec.LastDiagnoses, req.LastDiagnoses)
	out, err := h.svc.CreateRecord(c.Request().Context(), rec)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) ListRecordsByPatient(c echo.Context) error {
	patientID, err := parseID(c, "patient_id")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	out, err := h.svc.ListRecordsByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var patch RecordPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.UpdateRecord(c.Request().Context(), id, patch)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

// ---- visits ----

type createVisitRequest struct {
	RecordID  uuid.UUID  `json:"record_id"`
	CompanyID *uuid.UUID `json:"company_id"`
	VisitPatch
}

func (h *Handler) CreateVisit(c echo.Context) error {
	callerID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	var req createVisitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v := &Visit{
		RecordID:       req.RecordID,
		ProfessionalID: callerID,
		CompanyID:      req.CompanyID,
	}
	apply(&v.MainComplaint, req.MainComplaint)
	apply(&v.CurrentIllnessHistory, req.CurrentIllnessHistory)
	apply(&v.PastHistory, req.PastHistory)
	apply(&v.PhysicalExam, req.PhysicalExam)
	apply(&v.DiagnosticHypothesis, req.DiagnosticHypothesis)
	apply(&v.Procedures, req.Procedures)
	apply(&v.Prescription, req.Prescription)
	out, err := h.svc.CreateVisit(c.Request().Context(), v)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) GetVisit(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.svc.GetVisit(c.Request().Context(), id)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) ListVisitsByRecord(c echo.Context) error {
	recordID, err := parseID(c, "record_id")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	out, err := h.svc.ListVisitsByRecord(c.Request().Context(), recordID, pg.Limit, pg.Offset)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) LatestVisit(c echo.Context) error {
	recordID, err := parseID(c, "record_id")
	if err != nil {
		return err
	}
	out, err := h.svc.LatestVisit(c.Request().Context(), recordID)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) UpdateVisit(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var patch VisitPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.UpdateVisit(c.Request().Context(), id, patch)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

// ---- follow-ups ----

type createFollowUpRequest struct {
	RecordID uuid.UUID  `json:"record_id"`
	VisitID  *uuid.UUID `json:"visit_id"`
	Note     string     `json:"note"`
	Tags     []string   `json:"tags"`
}

func (h *Handler) CreateFollowUp(c echo.Context) error {
	var req createFollowUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f := &FollowUp{RecordID: req.RecordID, VisitID: req.VisitID, Note: req.Note, Tags: req.Tags}
	out, err := h.svc.CreateFollowUp(c.Request().Context(), f)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) ListFollowUpsByRecord(c echo.Context) error {
	recordID, err := parseID(c, "record_id")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	out, err := h.svc.ListFollowUpsByRecord(c.Request().Context(), recordID, pg.Limit, pg.Offset)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) ListFollowUpsByVisit(c echo.Context) error {
	visitID, err := parseID(c, "visit_id")
	if err != nil {
		return err
	}
	out, err := h.svc.ListFollowUpsByVisit(c.Request().Context(), visitID)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

type updateFollowUpRequest struct {
	Note *string  `json:"note"`
	Tags []string `json:"tags"`
}

func (h *Handler) UpdateFollowUp(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req updateFollowUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.UpdateFollowUp(c.Request().Context(), id, req.Note, req.Tags)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

// ---- exams ----

type createExamRequest struct {
	RecordID    uuid.UUID  `json:"record_id"`
	VisitID     *uuid.UUID `json:"visit_id"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	RequestedAt time.Time  `json:"requested_at"`
	ResultText  *string    `json:"result_text"`
	ResultFile  *string    `json:"result_file"`
}

func (h *Handler) CreateExam(c echo.Context) error {
	var req createExamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e := &Exam{
		RecordID:    req.RecordID,
		VisitID:     req.VisitID,
		Type:        req.Type,
		Name:        req.Name,
		RequestedAt: req.RequestedAt,
		ResultText:  req.ResultText,
		ResultFile:  req.ResultFile,
	}
	out, err := h.svc.CreateExam(c.Request().Context(), e)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) ListExamsByRecord(c echo.Context) error {
	recordID, err := parseID(c, "record_id")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	var examType *string
	if v := c.QueryParam("type"); v != "" {
		examType = &v
	}
	out, err := h.svc.ListExamsByRecord(c.Request().Context(), recordID, examType, pg.Limit, pg.Offset)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) ListExamsByVisit(c echo.Context) error {
	visitID, err := parseID(c, "visit_id")
	if err != nil {
		return err
	}
	out, err := h.svc.ListExamsByVisit(c.Request().Context(), visitID)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

type updateExamRequest struct {
	ResultText *string `json:"result_text"`
	ResultFile *string `json:"result_file"`
}

func (h *Handler) UpdateExamResults(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req updateExamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.UpdateExamResults(c.Request().Context(), id, req.ResultText, req.ResultFile)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

// ---- decision supports ----

type createSupportRequest struct {
	RecordID uuid.UUID `json:"record_id"`
	VisitID  uuid.UUID `json:"visit_id"`
	LLMModel string    `json:"llm_model"`
	SupportPatch
}

func (h *Handler) CreateDecisionSupport(c echo.Context) error {
	callerID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	var req createSupportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d := &DecisionSupport{
		RecordID:         req.RecordID,
		VisitID:          req.VisitID,
		ProfessionalID:   callerID,
		LLMModel:         req.LLMModel,
		SentimentSummary: req.SentimentSummary,
		SymptomSummary:   req.SymptomSummary,
		GoalSummary:      req.GoalSummary,
		PracticeSummary:  req.PracticeSummary,
		InsightSummary:   req.InsightSummary,
		SuggestedConduct: req.SuggestedConduct,
		EvidenceSummary:  req.EvidenceSummary,
	}
	out, err := h.svc.CreateDecisionSupport(c.Request().Context(), d)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) GetDecisionSupportByVisit(c echo.Context) error {
	visitID, err := parseID(c, "visit_id")
	if err != nil {
		return err
	}
	out, err := h.svc.GetDecisionSupportByVisit(c.Request().Context(), visitID)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) ListDecisionSupportsByRecord(c echo.Context) error {
	recordID, err := parseID(c, "record_id")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	out, err := h.svc.ListDecisionSupportsByRecord(c.Request().Context(), recordID, pg.Limit, pg.Offset)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) UpdateDecisionSupport(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var patch SupportPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.UpdateDecisionSupport(c.Request().Context(), id, patch)
	if err != nil {
		return recordsError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func recordsError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSupportExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
