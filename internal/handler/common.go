// Package handler contains the HTTP layer: request binding, error
// translation and response shaping on top of the repositories and the
// booking engine.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-equipment-booking/internal/booking"
	"github.com/iliyamo/room-equipment-booking/internal/middleware"
	"github.com/iliyamo/room-equipment-booking/internal/model"
	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

// currentUserID reads the authenticated user id stored by JWTAuth.
func currentUserID(c echo.Context) uint64 {
	if uid, ok := c.Get(middleware.CtxUserID).(uint64); ok {
		return uid
	}
	return 0
}

// isAdmin reports whether the caller holds the ADMIN role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get(middleware.CtxRole).(string)
	return role == model.RoleAdmin
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// writeBookingError maps engine errors onto HTTP responses:
//
//	ValidationError  -> 400 with the offending field
//	ConflictError    -> 409 with the conflict kind
//	TransitionError  -> 409 with both states
//	NotFoundError    -> 404
//	UnauthorizedError-> 403
//	TransientError   -> 409 with a retry hint (nothing committed)
//
// Anything else is a 500; the cause is logged, never leaked.
func writeBookingError(c echo.Context, log *logrus.Logger, err error) error {
	var (
		ve *booking.ValidationError
		ce *booking.ConflictError
		te *booking.TransitionError
		ne *booking.NotFoundError
		ue *booking.UnauthorizedError
		re *booking.TransientError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "validation_failed", "field": ve.Field, "detail": ve.Detail,
		})
	case errors.As(err, &ce):
		body := echo.Map{"error": "conflict", "kind": string(ce.Kind)}
		if ce.OffendingID != 0 {
			body["offending_id"] = ce.OffendingID
		}
		return c.JSON(http.StatusConflict, body)
	case errors.As(err, &te):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "invalid_transition", "from": string(te.From), "to": string(te.To),
		})
	case errors.As(err, &ne):
		return c.JSON(http.StatusNotFound, echo.Map{"error": ne.Entity + " not found"})
	case errors.As(err, &ue):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.As(err, &re):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "transient_conflict", "retry": true,
		})
	default:
		log.WithError(err).Error("unhandled booking error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// writeRepoError maps repository sentinels for handlers that talk to
// the repositories directly.
func writeRepoError(c echo.Context, log *logrus.Logger, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrReferenceMissing):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "referenced resource missing"})
	case errors.Is(err, repository.ErrInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": "resource still referenced"})
	default:
		log.WithError(err).Error("repository error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
