package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-equipment-booking/internal/model"
	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

// MaintenanceHandler manages the maintenance windows that block rooms
// from being booked.  All mutations are admin only.
type MaintenanceHandler struct {
	Windows *repository.MaintenanceRepo
	Rooms   *repository.RoomRepo
	Log     *logrus.Logger
}

func NewMaintenanceHandler(w *repository.MaintenanceRepo, rooms *repository.RoomRepo, log *logrus.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{Windows: w, Rooms: rooms, Log: log}
}

type maintenanceReq struct {
	StartTime string `json:"start_time_utc"`
	EndTime   string `json:"end_time_utc"`
	Reason    string `json:"reason"`
}

type maintenanceResp struct {
	ID        uint64  `json:"id"`
	RoomID    uint64  `json:"room_id"`
	StartTime string  `json:"start_time_utc"`
	EndTime   string  `json:"end_time_utc"`
	Reason    *string `json:"reason,omitempty"`
	IsActive  bool    `json:"is_active"`
}

func toMaintenanceResp(w model.MaintenanceWindow) maintenanceResp {
	return maintenanceResp{
		ID:        w.ID,
		RoomID:    w.RoomID,
		StartTime: w.StartTime.Format(time.RFC3339),
		EndTime:   w.EndTime.Format(time.RFC3339),
		Reason:    w.Reason,
		IsActive:  w.IsActive,
	}
}

// ListForRoom returns a room's maintenance windows, newest start first.
func (h *MaintenanceHandler) ListForRoom(c echo.Context) error {
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	windows, err := h.Windows.ListForRoom(c.Request().Context(), roomID)
	if err != nil {
		return writeRepoError(c, h.Log, err)
	}
	out := make([]maintenanceResp, 0, len(windows))
	for _, w := range windows {
		out = append(out, toMaintenanceResp(w))
	}
	return c.JSON(http.StatusOK, out)
}

// Create blocks a room for the given window.  Admin only.
func (h *MaintenanceHandler) Create(c echo.Context) error {
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req maintenanceReq
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
	if !end.After(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be after start"})
	}

	// Verify the room exists before inserting.
	if _, err := h.Rooms.GetByID(c.Request().Context(), roomID); err != nil {
		return writeRepoError(c, h.Log, err)
	}

	w := model.MaintenanceWindow{RoomID: roomID, StartTime: start.UTC(), EndTime: end.UTC()}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		w.Reason = &reason
	}
	if err := h.Windows.Create(c.Request().Context(), &w); err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toMaintenanceResp(w))
}

// Deactivate lifts a maintenance window.  Admin only.
func (h *MaintenanceHandler) Deactivate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Windows.Deactivate(c.Request().Context(), id); err != nil {
		return writeRepoError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
