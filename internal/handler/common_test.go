package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-equipment-booking/internal/booking"
)

func TestWriteBookingErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", &booking.ValidationError{Field: "purpose", Detail: "too short"},
			http.StatusBadRequest, `"field":"purpose"`},
		{"conflict", &booking.ConflictError{Kind: booking.ConflictRoomBusy, OffendingID: 42},
			http.StatusConflict, `"kind":"RoomBusy"`},
		{"transition", &booking.TransitionError{From: booking.StatusRejected, To: booking.StatusApproved},
			http.StatusConflict, `"from":"Rejected"`},
		{"not found", &booking.NotFoundError{Entity: "reservation", ID: 9},
			http.StatusNotFound, `"reservation not found"`},
		{"unauthorized", &booking.UnauthorizedError{Action: "cancel"},
			http.StatusForbidden, `"forbidden"`},
		{"transient", &booking.TransientError{Cause: errors.New("deadlock")},
			http.StatusConflict, `"retry":true`},
		{"unknown", errors.New("boom"),
			http.StatusInternalServerError, `"internal error"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			require.NoError(t, writeBookingError(c, logrus.New(), tc.err))
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestWriteBookingErrorTransientRetryHint(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := writeBookingError(c, logrus.New(), &booking.TransientError{Cause: errors.New("lock wait timeout")})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"error":"transient_conflict"`)
}
