package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

// CalendarHandler manages the caller's linked Google calendar
// credentials.  The tokens themselves come from the client-side OAuth
// flow; the server only stores them so the mirror consumer can act on
// the user's behalf.
type CalendarHandler struct {
	Users *repository.UserRepo
	Log   *logrus.Logger
}

func NewCalendarHandler(users *repository.UserRepo, log *logrus.Logger) *CalendarHandler {
	return &CalendarHandler{Users: users, Log: log}
}

type linkCalendarReq struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// Link stores the caller's Google OAuth tokens.
func (h *CalendarHandler) Link(c echo.Context) error {
	var req linkCalendarReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.AccessToken = strings.TrimSpace(req.AccessToken)
	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.AccessToken == "" || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "access_token and refresh_token required"})
	}
	expiry, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expires_at must be RFC3339"})
	}

	if err := h.Users.StoreGoogleTokens(c.Request().Context(), currentUserID(c),
		req.AccessToken, req.RefreshToken, expiry); err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"linked": true})
}

// Unlink clears the caller's stored calendar credentials.
func (h *CalendarHandler) Unlink(c echo.Context) error {
	if err := h.Users.ClearGoogleTokens(c.Request().Context(), currentUserID(c)); err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Status reports whether a calendar is linked and when the token
// expires.
func (h *CalendarHandler) Status(c echo.Context) error {
	u, err := h.Users.GetByID(c.Request().Context(), currentUserID(c))
	if err != nil {
		return writeRepoError(c, h.Log, err)
	}
	resp := echo.Map{"linked": u.GoogleAccessToken != nil}
	if u.GoogleTokenExpiry != nil {
		resp["expires_at"] = u.GoogleTokenExpiry.Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}
