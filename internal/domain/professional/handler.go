package professional

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinova/clinova/internal/platform/token"
	"github.com/clinova/clinova/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the professional surface. Reads are open to any
// authenticated caller; writes require the professional role (super passes
// every role gate).
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/professionals")

	g.GET("", h.List)
	g.GET("/professions", h.ListProfessions)
	g.GET("/specialties", h.ListSpecialties)
	g.GET("/specialties/slug/:slug", h.GetSpecialtyBySlug)
	g.GET("/specialties/:id", h.GetSpecialty)
	g.GET("/user/:user_id", h.GetByUser)
	g.GET("/:id", h.Get)

	w := g.Group("", token.RequireRole(token.RoleProfessional))
	w.POST("", h.Create)
	w.PUT("/:id", h.Update)
	w.POST("/specialties", h.CreateSpecialty)
	w.POST("/:id/specialties", h.AddSpecialty)
	w.DELETE("/:id/specialties/:specialty_id", h.RemoveSpecialty)
	w.POST("/:id/professions", h.AddProfession)
	w.PUT("/:id/professions/:profession_id", h.UpdateProfession)
	w.DELETE("/:id/professions/:profession_id", h.RemoveProfession)
	w.POST("/:id/professions/:profession_id/primary", h.SetPrimaryProfession)
}

func (h *Handler) Create(c echo.Context) error {
	var p Professional
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	details, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return professionalError(err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *Handler) GetByUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	details, err := h.svc.GetByUser(c.Request().Context(), userID)
	if err != nil {
		return professionalError(err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	var profileCompleted *bool
	if v := c.QueryParam("profile_completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid profile_completed")
		}
		profileCompleted = &b
	}
	items, err := h.svc.List(c.Request().Context(), profileCompleted, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Professional{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in Professional
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Update(c.Request().Context(), id, &in)
	if err != nil {
		return professionalError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// ---- specialties ----

func (h *Handler) CreateSpecialty(c echo.Context) error {
	var sp Specialty
	if err := c.Bind(&sp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if id, ok := token.CallerFromContext(c.Request().Context()); ok && id.UserID != "" {
		if creator, err := uuid.Parse(id.UserID); err == nil {
			sp.CreatedBy = &creator
		}
	}
	if err := h.svc.CreateSpecialty(c.Request().Context(), &sp); err != nil {
		if errors.Is(err, ErrSpecialtyDup) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sp)
}

func (h *Handler) ListSpecialties(c echo.Context) error {
	pg := pagination.FromContext(c)
	var f SpecialtyFilter
	if v := c.QueryParam("is_public"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid is_public")
		}
		f.IsPublic = &b
	}
	if v := c.QueryParam("is_visible"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid is_visible")
		}
		f.IsVisible = &b
	}
	if v := c.QueryParam("category"); v != "" {
		f.Category = &v
	}
	items, err := h.svc.ListSpecialties(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Specialty{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetSpecialty(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sp, err := h.svc.GetSpecialty(c.Request().Context(), id)
	if err != nil {
		return professionalError(err)
	}
	return c.JSON(http.StatusOK, sp)
}

func (h *Handler) GetSpecialtyBySlug(c echo.Context) error {
	sp, err := h.svc.GetSpecialtyBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return professionalError(err)
	}
	return c.JSON(http.StatusOK, sp)
}

type addSpecialtyRequest struct {
	SpecialtyID uuid.UUID `json:"specialty_id"`
}

func (h *Handler) AddSpecialty(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req addSpecialtyRequest
	if err := c.Bind(&req); err != nil || req.SpecialtyID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "specialty_id is required")
	}
	link, err := h.svc.AddSpecialty(c.Request().Context(), id, req.SpecialtyID)
	if err != nil {
		return professionalError(err)
	}
	return c.JSON(http.StatusCreated, link)
}

func (h *Handler) RemoveSpecialty(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	specialtyID, err := uuid.Parse(c.Param("specialty_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid specialty_id")
	}
	if err := h.svc.RemoveSpecialty(c.Request().Context(), id, specialtyID); err != nil {
		return professionalError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ---- professions ----

func (h *Handler) ListProfessions(c echo.Context) error {
	pg := pagination.FromContext(c)
	var isActive *bool
	if v := c.QueryParam("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid is_active")
		}
		isActive = &b
	}
	items, err := h.svc.ListProfessions(c.Request().Context(), isActive, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Profession{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AddProfession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var link ProfessionalProfession
	if err := c.Bind(&link); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if link.ProfessionID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "profession_id is required")
	}
	link.ProfessionalID = id
	out, err := h.svc.AddProfession(c.Request().Context(), &link)
	if err != nil {
		return professionalError(err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) UpdateProfession(c echo.Context) error {
	id, professionID, err := linkParams(c)
	if err != nil {
		return err
	}
	var in ProfessionalProfession
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.UpdateProfession(c.Request().Context(), id, professionID, &in)
	if err != nil {
		return professionalError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) RemoveProfession(c echo.Context) error {
	id, professionID, err := linkParams(c)
	if err != nil {
		return err
	}
	if err := h.svc.RemoveProfession(c.Request().Context(), id, professionID); err != nil {
		return professionalError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SetPrimaryProfession(c echo.Context) error {
	id, professionID, err := linkParams(c)
	if err != nil {
		return err
	}
	if err := h.svc.SetPrimaryProfession(c.Request().Context(), id, professionID); err != nil {
		return professionalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func linkParams(c echo.Context) (professionalID, professionID uuid.UUID, err error) {
	professionalID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	professionID, err = uuid.Parse(c.Param("profession_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid profession_id")
	}
	return professionalID, professionID, nil
}

func professionalError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrLinkNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
