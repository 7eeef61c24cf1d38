package assistant

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinova/clinova/internal/platform/token"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/assistants")

	g.POST("", h.Create)
	g.GET("/professional/:professional_id/assistants", h.ListByProfessional)
	g.GET("/user/:user_id", h.GetByUser)
	g.GET("/:id", h.Get)
	g.GET("/:id/details", h.Details)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)

	g.POST("/:id/clinics", h.AddClinic)
	g.GET("/:id/clinics", h.ListClinics)
	g.PUT("/:id/clinics/:company_id", h.UpdateClinic)
	g.DELETE("/:id/clinics/:company_id", h.RemoveClinic)

	g.POST("/:id/professionals", h.AddProfessional)
	g.GET("/:id/professionals", h.ListProfessionals)
	g.DELETE("/:id/professionals/:professional_id", h.RemoveProfessional)
}

// caller returns the authenticated identity or a 401.
func caller(c echo.Context) (token.Identity, error) {
	id, ok := token.CallerFromContext(c.Request().Context())
	if !ok {
		return token.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return id, nil
}

// selfOrSuper loads the assistant and verifies the caller is the platform
// operator or the assistant's own user.
func (h *Handler) selfOrSuper(c echo.Context, assistantID uuid.UUID) (*Assistant, error) {
	id, err := caller(c)
	if err != nil {
		return nil, err
	}
	a, err := h.svc.Get(c.Request().Context(), assistantID)
	if err != nil {
		return nil, assistantError(err)
	}
	if id.Role == token.RoleSuper || id.UserID == a.UserID.String() {
		return a, nil
	}
	return nil, echo.NewHTTPError(http.StatusForbidden, "no permission for this assistant")
}

type createAssistantRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

func (h *Handler) Create(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	if id.Role != token.RoleSuper {
		return echo.NewHTTPError(http.StatusForbidden, "only the platform operator can create assistants")
	}
	var req createAssistantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.UserID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	out, err := h.svc.Create(c.Request().Context(), req.UserID)
	if err != nil {
		return assistantError(err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.selfOrSuper(c, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) GetByUser(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	id, err := caller(c)
	if err != nil {
		return err
	}
	if id.Role != token.RoleSuper && id.UserID != userID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "no permission for this assistant")
	}
	a, err := h.svc.GetByUser(c.Request().Context(), userID)
	if err != nil {
		return assistantError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Details(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.selfOrSuper(c, id); err != nil {
		return err
	}
	out, err := h.svc.Details(c.Request().Context(), id)
	if err != nil {
		return assistantError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.selfOrSuper(c, id); err != nil {
		return err
	}
	out, err := h.svc.Update(c.Request().Context(), id)
	if err != nil {
		return assistantError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	callerID, err := caller(c)
	if err != nil {
		return err
	}
	if callerID.Role != token.RoleSuper {
		return echo.NewHTTPError(http.StatusForbidden, "only the platform operator can remove assistants")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return assistantError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type clinicLinkRequest struct {
	CompanyID uuid.UUID `json:"company_id"`
	IsAdmin   bool      `json:"is_admin"`
}

func (h *Handler) AddClinic(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.selfOrSuper(c, id); err != nil {
		return err
	}
	var req clinicLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.CompanyID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "company_id is required")
	}
	out, err := h.svc.AddClinic(c.Request().Context(), id, req.CompanyID, req.IsAdmin)
	if err != nil {
		return assistantError(err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) ListClinics(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.selfOrSuper(c, id); err != nil {
		return err
	}
	out, err := h.svc.ListClinics(c.Request().Context(), id)
	if err != nil {
		return assistantError(err)
	}
	return c.JSON(http.StatusOK, out)
}

type updateClinicLinkRequest struct {
	IsAdmin bool `json:"is_admin"`
}

func (h *Handler) UpdateClinic(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	companyID, err := parseID(c, "company_id")
	if err != nil {
		return err
	}
	if _, err := h.selfOrSuper(c, id); err != nil {
		return err
	}
	var req updateClinicLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.UpdateClinic(c.Request().Context(), id, companyID, req.IsAdmin)
	if err != nil {
		return assistantError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) RemoveClinic(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	companyID, err := parseID(c, "company_id")
	if err != nil {
		return err
	}
	if _, err := h.selfOrSuper(c, id); err != nil {
		return err
	}
	if err := h.svc.RemoveClinic(c.Request().Context(), id, companyID); err != nil {
		return assistantError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type professionalLinkRequest struct {
	ProfessionalID uuid.UUID `json:"professional_id"`
}

func (h *Handler) AddProfessional(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.selfOrSuper(c, id); err != nil {
		return err
	}
	var req professionalLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ProfessionalID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "professional_id is required")
	}
	out, err := h.svc.AddProfessional(c.Request().Context(), id, req.ProfessionalID)
	if err != nil {
		return assistantError(err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) ListProfessionals(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.selfOrSuper(c, id); err != nil {
		return err
	}
	out, err := h.svc.ListProfessionals(c.Request().Context(), id)
	if err != nil {
		return assistantError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) RemoveProfessional(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	professionalID, err := parseID(c, "professional_id")
	if err != nil {
		return err
	}
	if _, err := h.selfOrSuper(c, id); err != nil {
		return err
	}
	if err := h.svc.RemoveProfessional(c.Request().Context(), id, professionalID); err != nil {
		return assistantError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListByProfessional(c echo.Context) error {
	professionalID, err := parseID(c, "professional_id")
	if err != nil {
		return err
	}
	id, err := caller(c)
	if err != nil {
		return err
	}
	if id.Role != token.RoleSuper {
		owns, err := h.svc.OwnsProfessional(c.Request().Context(), professionalID, id.UserID)
		if err != nil {
			return assistantError(err)
		}
		if !owns {
			return echo.NewHTTPError(http.StatusForbidden, "no permission for this professional's assistants")
		}
	}
	out, err := h.svc.ListByProfessional(c.Request().Context(), professionalID)
	if err != nil {
		return assistantError(err)
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

func assistantError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrLinkNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
