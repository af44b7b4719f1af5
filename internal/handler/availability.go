package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-equipment-booking/internal/booking"
)

// AvailabilityHandler answers "is this window free" without creating
// anything.  It runs the same predicate the booking engine runs inside
// its transaction, so a positive answer is advisory only: the window
// can still be lost to a concurrent create.
type AvailabilityHandler struct {
	DB  *sql.DB
	Log *logrus.Logger
}

func NewAvailabilityHandler(db *sql.DB, log *logrus.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{DB: db, Log: log}
}

// Check evaluates ?room_id=, ?equipment_ids= (comma separated),
// ?start= and ?end= (RFC3339).
func (h *AvailabilityHandler) Check(c echo.Context) error {
	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start must be RFC3339"})
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be RFC3339"})
	}

	var roomID uint64
	if s := c.QueryParam("room_id"); s != "" {
		roomID, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room_id"})
		}
	}
	var equipmentIDs []uint64
	if s := c.QueryParam("equipment_ids"); s != "" {
		for _, part := range strings.Split(s, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment_ids"})
			}
			equipmentIDs = append(equipmentIDs, id)
		}
	}

	conflict, err := booking.CheckAvailability(c.Request().Context(), h.DB, booking.AvailabilityRequest{
		Start:        start,
		End:          end,
		RoomID:       roomID,
		EquipmentIDs: equipmentIDs,
		Now:          time.Now().UTC(),
	})
	if err != nil {
		h.Log.WithError(err).Error("availability check")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	if conflict == nil {
		return c.JSON(http.StatusOK, echo.Map{"available": true})
	}
	resp := echo.Map{"available": false, "reason": string(conflict.Kind)}
	if conflict.OffendingID != 0 {
		resp["offending_id"] = conflict.OffendingID
	}
	return c.JSON(http.StatusOK, resp)
}
