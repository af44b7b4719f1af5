package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-equipment-booking/internal/booking"
	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

// ReservationHandler exposes the booking engine over HTTP.
type ReservationHandler struct {
	Engine *booking.Service
	Audit  *repository.AuditRepo
	Log    *logrus.Logger
}

func NewReservationHandler(engine *booking.Service, audit *repository.AuditRepo, log *logrus.Logger) *ReservationHandler {
	return &ReservationHandler{Engine: engine, Audit: audit, Log: log}
}

type createReservationReq struct {
	RoomID       uint64   `json:"room_id"`
	EquipmentIDs []uint64 `json:"equipment_ids"`
	StartTime    string   `json:"start_time_utc"`
	EndTime      string   `json:"end_time_utc"`
	Purpose      string   `json:"purpose"`
}

type rejectReq struct {
	Reason string `json:"reason"`
}

// Create books a new reservation for the caller.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time_utc must be RFC3339"})
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time_utc must be RFC3339"})
	}

	detail, err := h.Engine.Create(c.Request().Context(), booking.CreateRequest{
		RoomID:       req.RoomID,
		EquipmentIDs: req.EquipmentIDs,
		Start:        start,
		End:          end,
		Purpose:      req.Purpose,
	}, currentUserID(c))
	if err != nil {
		return writeBookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

// Get returns one reservation.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	detail, err := h.Engine.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeBookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ListMine returns the caller's reservations, newest start first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	details, err := h.Engine.ListForUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return writeBookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, details)
}

// ListForRoom returns a room's reservations, newest start first.
func (h *ReservationHandler) ListForRoom(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	details, err := h.Engine.ListForRoom(c.Request().Context(), id)
	if err != nil {
		return writeBookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, details)
}

// ListForEquipment returns reservations including one equipment item.
func (h *ReservationHandler) ListForEquipment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	details, err := h.Engine.ListForEquipment(c.Request().Context(), id)
	if err != nil {
		return writeBookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, details)
}

// Cancel cancels a reservation.  Owners may cancel their own,
// administrators anyone's.  Cancelling twice is a no-op.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Engine.Cancel(c.Request().Context(), id, currentUserID(c), isAdmin(c)); err != nil {
		return writeBookingError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Approve moves a pending reservation to Approved.  Admin only.
func (h *ReservationHandler) Approve(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Engine.Approve(c.Request().Context(), id, currentUserID(c)); err != nil {
		return writeBookingError(c, h.Log, err)
	}
	detail, err := h.Engine.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeBookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Reject moves a pending reservation to Rejected.  Admin only.
func (h *ReservationHandler) Reject(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req rejectReq
	_ = c.Bind(&req)
	if err := h.Engine.Reject(c.Request().Context(), id, currentUserID(c), strings.TrimSpace(req.Reason)); err != nil {
		return writeBookingError(c, h.Log, err)
	}
	detail, err := h.Engine.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeBookingError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// AuditTrail returns a reservation's audit rows, oldest first.  Admin
// only.
func (h *ReservationHandler) AuditTrail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	entries, err := h.Audit.ListForEntity(c.Request().Context(), "Reservation", id)
	if err != nil {
		return writeRepoError(c, h.Log, err)
	}
	out := make([]echo.Map, 0, len(entries))
	for _, e := range entries {
		row := echo.Map{
			"id":        e.ID,
			"action":    e.Action,
			"timestamp": e.Timestamp.Format(time.RFC3339),
		}
		if e.UserID != nil {
			row["user_id"] = *e.UserID
		}
		if e.Details != nil {
			row["details"] = *e.Details
		}
		out = append(out, row)
	}
	return c.JSON(http.StatusOK, out)
}
