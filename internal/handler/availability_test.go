package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkAvailability(t *testing.T, db *sql.DB, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/availability?"+params.Encode(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewAvailabilityHandler(db, logrus.New())
	require.NoError(t, h.Check(c))
	return rec
}

func TestAvailabilityCheckFree(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT id FROM reservations").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT id FROM maintenance_windows").WillReturnError(sql.ErrNoRows)

	start := time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)
	end := time.Now().UTC().Add(3 * time.Hour).Format(time.RFC3339)
	rec := checkAvailability(t, db, url.Values{
		"room_id": {"5"}, "start": {start}, "end": {end},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityCheckRoomBusy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT id FROM reservations").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint64(42)))

	start := time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)
	end := time.Now().UTC().Add(3 * time.Hour).Format(time.RFC3339)
	rec := checkAvailability(t, db, url.Values{
		"room_id": {"5"}, "start": {start}, "end": {end},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":false`)
	assert.Contains(t, rec.Body.String(), `"reason":"RoomBusy"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityCheckBadTimestamps(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rec := checkAvailability(t, db, url.Values{
		"room_id": {"5"}, "start": {"yesterday"}, "end": {"tomorrow"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
