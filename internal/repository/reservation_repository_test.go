package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-equipment-booking/internal/model"
)

func newMockRepo(t *testing.T) (*ReservationRepo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewReservationRepo(db), mock
}

var detailCols = []string{"id", "room_id", "name", "user_id", "approved_by",
	"start_time", "end_time", "purpose", "status", "rejection_reason"}

func testReservation(id uint64) *model.Reservation {
	start := time.Date(2026, time.March, 10, 13, 0, 0, 0, time.UTC)
	return &model.Reservation{
		ID:        id,
		UserID:    2,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Purpose:   "Weekly sync meeting",
		Status:    "Cancelled",
	}
}

func TestGetDetailProjectsRoomName(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2026, time.March, 10, 13, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT r.id, r.room_id, ro.name, r.user_id, r.approved_by,").
		WillReturnRows(sqlmock.NewRows(detailCols).
			AddRow(7, 5, "Conference Room A", 2, nil,
				start, start.Add(time.Hour), "Weekly sync meeting", "Pending", nil))
	mock.ExpectQuery("SELECT reservation_id, equipment_id FROM reservation_equipment").
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "equipment_id"}).
			AddRow(7, 3).AddRow(7, 4))

	d, err := repo.GetDetail(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Conference Room A", d.RoomName)
	require.NotNil(t, d.RoomID)
	assert.Equal(t, uint64(5), *d.RoomID)
	assert.Equal(t, []uint64{3, 4}, d.EquipmentIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDetailLabelsEquipmentOnlyRentals(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2026, time.March, 10, 13, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT r.id, r.room_id, ro.name, r.user_id, r.approved_by,").
		WillReturnRows(sqlmock.NewRows(detailCols).
			AddRow(8, nil, nil, 2, nil,
				start, start.Add(time.Hour), "Projector for offsite", "Approved", nil))
	mock.ExpectQuery("SELECT reservation_id, equipment_id FROM reservation_equipment").
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "equipment_id"}).
			AddRow(8, 3))

	d, err := repo.GetDetail(context.Background(), 8)
	require.NoError(t, err)
	assert.Nil(t, d.RoomID)
	assert.Equal(t, "Equipment rental", d.RoomName)
	assert.Equal(t, []uint64{3}, d.EquipmentIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDetailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT r.id, r.room_id, ro.name, r.user_id, r.approved_by,").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetDetail(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusTxNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE reservations SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)

	res := testReservation(999)
	err = repo.UpdateStatusTx(context.Background(), tx, res)
	assert.ErrorIs(t, err, ErrNotFound)
}
