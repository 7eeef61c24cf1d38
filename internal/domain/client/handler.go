package client

import (
	"errors"
	"net/http"

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/clients", token.RequireRole(token.RoleProfessional))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id/notes", h.UpdateNotes)
	g.DELETE("/:id", h.Delete)
}

type createClientRequest struct {
	FirebaseToken string    `json:"firebase_token"`
	Name          string    `json:"name"`
	CompanyID     uuid.UUID `json:"company_id"`
}

func (h *Handler) Create(c echo.Context) error {
	callerID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	var req createClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.FirebaseToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "firebase_token is required")
	}
	if req.CompanyID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "company_id is required")
	}
	out, err := h.svc.Create(c.Request().Context(), callerID, req.CompanyID, req.Name, req.FirebaseToken)
	if err != nil {
		return clientError(err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) List(c echo.Context) error {
	callerID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	out, err := h.svc.List(c.Request().Context(), callerID, pg.Limit, pg.Offset)
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
		return clientError(err)
	}
	return c.JSON(http.StatusOK, out)
}

type updateNotesRequest struct {
	Notes *string `json:"notes"`
}

func (h *Handler) UpdateNotes(c echo.Context) error {
	callerID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateNotesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.UpdateNotes(c.Request().Context(), id, callerID, req.Notes)
	if err != nil {
		return clientError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Delete(c echo.Context) error {
	callerID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id, callerID); err != nil {
		return clientError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func clientError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "client not found")
	case errors.Is(err, ErrExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, token.ErrExternalTokenInvalid):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid identity provider token")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
