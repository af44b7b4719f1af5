package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func window(startOffset, endOffset time.Duration) (time.Time, time.Time) {
	return testNow.Add(startOffset), testNow.Add(endOffset)
}

func TestCheckAvailabilityInvalidRange(t *testing.T) {
	db, _ := newMockDB(t)
	start, _ := window(time.Hour, 2*time.Hour)

	conflict, err := CheckAvailability(context.Background(), db, AvailabilityRequest{
		Start: start, End: start, RoomID: 1, Now: testNow,
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, ConflictInvalidRange, conflict.Kind)

	conflict, err = CheckAvailability(context.Background(), db, AvailabilityRequest{
		Start: start, End: start.Add(-time.Hour), RoomID: 1, Now: testNow,
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, ConflictInvalidRange, conflict.Kind)
}

func TestCheckAvailabilityPastTime(t *testing.T) {
	db, _ := newMockDB(t)

	// A start inside the one-minute margin counts as past.
	start := testNow.Add(30 * time.Second)
	conflict, err := CheckAvailability(context.Background(), db, AvailabilityRequest{
		Start: start, End: start.Add(time.Hour), RoomID: 1, Now: testNow,
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, ConflictPastTime, conflict.Kind)

	// Exactly on the margin is still refused.
	start = testNow.Add(time.Minute)
	conflict, err = CheckAvailability(context.Background(), db, AvailabilityRequest{
		Start: start, End: start.Add(time.Hour), RoomID: 1, Now: testNow,
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, ConflictPastTime, conflict.Kind)
}

func TestCheckAvailabilityStartJustPastMargin(t *testing.T) {
	db, mock := newMockDB(t)

	// One second beyond the margin is far enough in the future.
	start := testNow.Add(time.Minute + time.Second)
	mock.ExpectQuery("SELECT id FROM reservations").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT id FROM maintenance_windows").
		WillReturnError(sql.ErrNoRows)

	conflict, err := CheckAvailability(context.Background(), db, AvailabilityRequest{
		Start: start, End: start.Add(time.Hour), RoomID: 1, Now: testNow,
	})
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityNothingSelected(t *testing.T) {
	db, _ := newMockDB(t)
	start, end := window(time.Hour, 2*time.Hour)

	conflict, err := CheckAvailability(context.Background(), db, AvailabilityRequest{
		Start: start, End: end, Now: testNow,
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, ConflictNothingSelected, conflict.Kind)
}

func TestCheckAvailabilityRoomBusy(t *testing.T) {
	db, mock := newMockDB(t)
	start, end := window(time.Hour, 2*time.Hour)

	mock.ExpectQuery("SELECT id FROM reservations").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint64(42)))

	conflict, err := CheckAvailability(context.Background(), db, AvailabilityRequest{
		Start: start, End: end, RoomID: 5, Now: testNow,
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, ConflictRoomBusy, conflict.Kind)
	assert.Equal(t, uint64(42), conflict.OffendingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityMaintenance(t *testing.T) {
	db, mock := newMockDB(t)
	start, end := window(time.Hour, 2*time.Hour)

	mock.ExpectQuery("SELECT id FROM reservations").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT id FROM maintenance_windows").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint64(3)))

	conflict, err := CheckAvailability(context.Background(), db, AvailabilityRequest{
		Start: start, End: end, RoomID: 5, Now: testNow,
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, ConflictMaintenance, conflict.Kind)
	assert.Equal(t, uint64(3), conflict.OffendingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityEquipmentBusy(t *testing.T) {
	db, mock := newMockDB(t)
	start, end := window(time.Hour, 2*time.Hour)

	// No room requested, so only the equipment query runs.
	mock.ExpectQuery("SELECT r.id FROM reservations r").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint64(9)))

	conflict, err := CheckAvailability(context.Background(), db, AvailabilityRequest{
		Start: start, End: end, EquipmentIDs: []uint64{3, 4}, Now: testNow,
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, ConflictEquipmentBusy, conflict.Kind)
	assert.Equal(t, uint64(9), conflict.OffendingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityOverlapArgumentOrder(t *testing.T) {
	db, mock := newMockDB(t)
	start, end := window(time.Hour, 2*time.Hour)

	// The half-open predicate is start_time < end AND start < end_time,
	// so both queries bind the candidate end before the candidate start.
	mock.ExpectQuery("SELECT id FROM reservations").
		WithArgs(uint64(5), uint64(0), end, start).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT id FROM maintenance_windows").
		WithArgs(uint64(5), end, start).
		WillReturnError(sql.ErrNoRows)

	conflict, err := CheckAvailability(context.Background(), db, AvailabilityRequest{
		Start: start, End: end, RoomID: 5, Now: testNow,
	})
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityFreeWindow(t *testing.T) {
	db, mock := newMockDB(t)
	start, end := window(time.Hour, 2*time.Hour)

	mock.ExpectQuery("SELECT id FROM reservations").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT id FROM maintenance_windows").
		WillReturnError(sql.ErrNoRows)

	conflict, err := CheckAvailability(context.Background(), db, AvailabilityRequest{
		Start: start, End: end, RoomID: 5, Now: testNow,
	})
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
