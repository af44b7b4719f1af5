package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyRoomStatsIncludesIdleRooms(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("FROM rooms ro").
		WithArgs(3, 2026).
		WillReturnRows(sqlmock.NewRows([]string{"name", "count", "hours"}).
			AddRow("Conference Room A", 4, 9).
			AddRow("Meeting Room B", 0, 0))

	stats, err := NewStatsRepo(db).MonthlyRoomStats(context.Background(), 3, 2026)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Conference Room A", stats[0].RoomName)
	assert.Equal(t, 4, stats[0].ReservationCount)
	assert.Equal(t, 9, stats[0].TotalHours)
	assert.Equal(t, 0, stats[1].ReservationCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
