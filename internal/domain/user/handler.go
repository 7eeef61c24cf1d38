package user

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinova/clinova/internal/platform/token"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the auth exchange endpoints and the profile
// endpoints. Signup, login, refresh and validate are public (they carry
// their credential in the body); everything else expects an authenticated
// caller.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/refresh", h.Refresh)
	authGroup.POST("/validate", h.Validate)
	authGroup.POST("/logout", h.Logout)
	authGroup.GET("/me", h.Me)

	usersGroup := api.Group("/users")
	usersGroup.GET("/profile", h.GetProfile)
	usersGroup.PUT("/profile", h.UpdateProfile)
	usersGroup.GET("/profile/complete", h.GetCompleteProfile)
	usersGroup.PUT("/address", h.UpsertAddress)
}

type externalTokenRequest struct {
	FirebaseToken string `json:"firebase_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	User         *AuthUser `json:"user,omitempty"`
	IsNewUser    bool      `json:"is_new_user"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// Signup exchanges a provider token for a new account plus a session. An
// account that already exists is not an error at the HTTP level: the response
// carries success=false and points the client at login.
func (h *Handler) Signup(c echo.Context) error {
	var req externalTokenRequest
	if err := c.Bind(&req); err != nil || req.FirebaseToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "firebase_token is required")
	}
	res, err := h.svc.ProcessExternalToken(c.Request().Context(), req.FirebaseToken)
	if err != nil {
		return authError(err)
	}
	if !res.IsNewUser {
		return c.JSON(http.StatusOK, sessionResponse{
			Success: false,
			Message: "user already exists, use the login endpoint",
		})
	}
	return c.JSON(http.StatusCreated, sessionResponse{
		Success:      true,
		Message:      "user created successfully",
		User:         res.AuthUser,
		IsNewUser:    true,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

// Login mirrors Signup with the polarity flipped: a first-time subject is
// told to sign up (the provisional account created by the exchange stays).
func (h *Handler) Login(c echo.Context) error {
	var req externalTokenRequest
	if err := c.Bind(&req); err != nil || req.FirebaseToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "firebase_token is required")
	}
	res, err := h.svc.ProcessExternalToken(c.Request().Context(), req.FirebaseToken)
	if err != nil {
		return authError(err)
	}
	if res.IsNewUser {
		return c.JSON(http.StatusOK, sessionResponse{
			Success: false,
			Message: "user not found, use the signup endpoint first",
		})
	}
	return c.JSON(http.StatusOK, sessionResponse{
		Success:      true,
		Message:      "login successful",
		User:         res.AuthUser,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

func (h *Handler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token is required")
	}
	access, identity, err := h.svc.RefreshSession(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return authError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  access,
		"refresh_token": req.RefreshToken,
		"token_type":    "bearer",
		"expires_in":    int(h.svc.AccessTTL().Seconds()),
		"user":          identityPayload(identity),
	})
}

// Validate reports token validity in the body rather than the status code:
// an invalid token is a well-formed, successful answer to the question.
func (h *Handler) Validate(c echo.Context) error {
	var req externalTokenRequest
	if err := c.Bind(&req); err != nil || req.FirebaseToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "firebase_token is required")
	}
	identity, err := h.svc.ValidateToken(c.Request().Context(), req.FirebaseToken)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{
			"valid":   false,
			"message": authMessage(err),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid":   true,
		"user":    identityPayload(identity),
		"message": "token is valid",
	})
}

// Logout is a client-side operation: tokens are stateless and expire on
// their own, so the server only acknowledges the call.
func (h *Handler) Logout(c echo.Context) error {
	if _, ok := token.CallerFromContext(c.Request().Context()); !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "logged out successfully",
	})
}

func (h *Handler) Me(c echo.Context) error {
	identity, ok := token.CallerFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	au, err := h.svc.AuthAccountByExternalUID(c.Request().Context(), identity.ExternalUID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "account not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, au)
}

func (h *Handler) GetProfile(c echo.Context) error {
	userID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	u, err := h.svc.Profile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	userID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	current, err := h.svc.Profile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	var in User
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	current.Name = in.Name
	current.Phone = in.Phone
	current.BirthDate = in.BirthDate
	current.Gender = in.Gender
	current.Picture = in.Picture
	current.SocialMedia = in.SocialMedia
	if err := h.svc.UpdateProfile(c.Request().Context(), current); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, current)
}

func (h *Handler) GetCompleteProfile(c echo.Context) error {
	userID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	cp, err := h.svc.CompleteProfile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *Handler) UpsertAddress(c echo.Context) error {
	userID, err := token.CallerUserID(c)
	if err != nil {
		return err
	}
	var a Address
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	saved, err := h.svc.UpsertAddress(c.Request().Context(), userID, &a)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, saved)
}

func identityPayload(id token.Identity) echo.Map {
	return echo.Map{
		"user_uid":       id.UserID,
		"uid":            id.ExternalUID,
		"email":          id.Email,
		"name":           id.Name,
		"role":           id.Role,
		"email_verified": id.EmailVerified,
	}
}

// authError maps token-verification failures to 401 and everything else to
// 500.
func authError(err error) error {
	switch {
	case errors.Is(err, token.ErrExternalTokenInvalid),
		errors.Is(err, token.ErrTokenInvalid),
		errors.Is(err, token.ErrTokenExpired),
		errors.Is(err, token.ErrTokenKindMismatch):
		return echo.NewHTTPError(http.StatusUnauthorized, authMessage(err))
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, token.ErrTokenKindMismatch):
		return "wrong token type for this operation"
	case errors.Is(err, token.ErrExternalTokenInvalid):
		return "invalid identity provider token"
	default:
		return "invalid token"
	}
}
