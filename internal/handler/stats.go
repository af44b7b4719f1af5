package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

// StatsHandler serves the monthly room usage report.  Admin only.
type StatsHandler struct {
	Stats *repository.StatsRepo
	Log   *logrus.Logger
}

func NewStatsHandler(stats *repository.StatsRepo, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{Stats: stats, Log: log}
}

// MonthlyRoomStats returns per-room usage for ?month= and ?year=
// (defaulting to the current month).  With ?format=csv the report is
// returned as a downloadable CSV file.
func (h *StatsHandler) MonthlyRoomStats(c echo.Context) error {
	now := time.Now().UTC()
	month := int(now.Month())
	year := now.Year()

	if s := c.QueryParam("month"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 12 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "month must be 1 to 12"})
		}
		month = n
	}
	if s := c.QueryParam("year"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 2000 || n > 9999 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
		}
		year = n
	}

	stats, err := h.Stats.MonthlyRoomStats(c.Request().Context(), month, year)
	if err != nil {
		return writeRepoError(c, h.Log, err)
	}

	if strings.EqualFold(c.QueryParam("format"), "csv") {
		return h.writeCSV(c, stats, month, year)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"month": month,
		"year":  year,
		"rooms": stats,
	})
}

func (h *StatsHandler) writeCSV(c echo.Context, stats []repository.RoomStat, month, year int) error {
	filename := fmt.Sprintf("room-stats-%04d-%02d.csv", year, month)
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{"room_name", "reservation_count", "total_hours"}); err != nil {
		return err
	}
	for _, s := range stats {
		row := []string{s.RoomName, strconv.Itoa(s.ReservationCount), strconv.Itoa(s.TotalHours)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
