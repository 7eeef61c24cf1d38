package company

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinova/clinova/internal/domain/user"
	"github.com/clinova/clinova/internal/platform/token"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/companies", token.RequireRole(token.RoleProfessional))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PUT("/:id/address", h.UpsertAddress)
}

type createCompanyRequest struct {
	Name        string                 `json:"name"`
	Description *string                `json:"description"`
	Email       *string                `json:"email"`
	Phone       *string                `json:"phone"`
	SocialMedia map[string]interface{} `json:"social_media"`
	IsVirtual   bool                   `json:"is_virtual"`
	IsActive    *bool                  `json:"is_active"`
	Address     *user.Address          `json:"address"`
}

func (h *Handler) Create(c echo.Context) error {
	callerID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	var req createCompanyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	comp := &Company{
		Name:        req.Name,
		Description: req.Description,
		Email:       req.Email,
		Phone:       req.Phone,
		SocialMedia: req.SocialMedia,
		IsVirtual:   req.IsVirtual,
		IsActive:    active,
	}
	out, err := h.svc.Create(c.Request().Context(), callerID, comp, req.Address)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) List(c echo.Context) error {
	callerID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.ListByOwner(c.Request().Context(), callerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Get(c echo.Context) error {
	callerID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	out, err := h.svc.Get(c.Request().Context(), id, callerID)
	if err != nil {
		return companyError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Update(c echo.Context) error {
	callerID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in Company
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.Update(c.Request().Context(), id, callerID, &in)
	if err != nil {
		return companyError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) UpsertAddress(c echo.Context) error {
	callerID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var a user.Address
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.UpsertAddress(c.Request().Context(), id, callerID, &a)
	if err != nil {
		return companyError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func companyError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "company not found")
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "no permission for this company")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
