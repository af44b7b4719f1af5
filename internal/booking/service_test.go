package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-equipment-booking/internal/model"
	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

// recordingNotifier captures calendar events handed to the engine's
// notifier.
type recordingNotifier struct {
	events []model.Reservation
}

func (n *recordingNotifier) ReservationScheduled(_ context.Context, res model.Reservation) {
	n.events = append(n.events, res)
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *recordingNotifier) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	notifier := &recordingNotifier{}
	svc := NewService(db,
		repository.NewReservationRepo(db),
		repository.NewRoomRepo(db),
		repository.NewEquipmentRepo(db),
		repository.NewAuditRepo(db),
		notifier,
		func() time.Time { return testNow },
	)
	return svc, mock, notifier
}

func validCreateRequest() CreateRequest {
	return CreateRequest{
		RoomID:  5,
		Start:   testNow.Add(time.Hour),
		End:     testNow.Add(3 * time.Hour),
		Purpose: "Quarterly planning session",
	}
}

func TestCreateRejectsShortPurpose(t *testing.T) {
	svc, mock, _ := newTestService(t)

	req := validCreateRequest()
	req.Purpose = "  hi  "
	_, err := svc.Create(context.Background(), req, 2)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "purpose", ve.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsOverlongDuration(t *testing.T) {
	svc, mock, _ := newTestService(t)

	req := validCreateRequest()
	req.End = req.Start.Add(8*time.Hour + time.Minute)
	_, err := svc.Create(context.Background(), req, 2)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "end_time_utc", ve.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCountsPurposeInCharacters(t *testing.T) {
	svc, mock, _ := newTestService(t)

	// Four characters but twelve bytes; a byte count would let it pass.
	req := validCreateRequest()
	req.Purpose = "会議予約"
	_, err := svc.Create(context.Background(), req, 2)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "purpose", ve.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectActiveRoom(mock sqlmock.Sqlmock, id uint64) {
	mock.ExpectQuery("FROM rooms WHERE id").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "capacity", "equipment_description", "is_active"}).
			AddRow(id, "Conference Room A", 12, nil, true))
}

func TestCreatePersistsReservationAndAudit(t *testing.T) {
	svc, mock, notifier := newTestService(t)
	req := validCreateRequest()

	mock.ExpectBegin()
	expectActiveRoom(mock, req.RoomID)
	mock.ExpectQuery("SELECT id FROM reservations").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT id FROM maintenance_windows").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO reservations").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT r.id, r.room_id, ro.name, r.user_id, r.approved_by,").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "room_id", "name", "user_id", "approved_by",
				"start_time", "end_time", "purpose", "status", "rejection_reason"}).
			AddRow(7, req.RoomID, "Conference Room A", 2, nil,
				req.Start, req.End, req.Purpose, "Pending", nil))
	mock.ExpectQuery("SELECT reservation_id, equipment_id FROM reservation_equipment").
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "equipment_id"}))

	detail, err := svc.Create(context.Background(), req, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), detail.ID)
	assert.Equal(t, "Pending", detail.Status)
	assert.Equal(t, "Conference Room A", detail.RoomName)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, uint64(7), notifier.events[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAllowsExactEightHourDuration(t *testing.T) {
	svc, mock, notifier := newTestService(t)

	req := validCreateRequest()
	req.End = req.Start.Add(8 * time.Hour)

	mock.ExpectBegin()
	expectActiveRoom(mock, req.RoomID)
	mock.ExpectQuery("SELECT id FROM reservations").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT id FROM maintenance_windows").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO reservations").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT r.id, r.room_id, ro.name, r.user_id, r.approved_by,").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "room_id", "name", "user_id", "approved_by",
				"start_time", "end_time", "purpose", "status", "rejection_reason"}).
			AddRow(8, req.RoomID, "Conference Room A", 2, nil,
				req.Start, req.End, req.Purpose, "Pending", nil))
	mock.ExpectQuery("SELECT reservation_id, equipment_id FROM reservation_equipment").
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "equipment_id"}))

	detail, err := svc.Create(context.Background(), req, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), detail.ID)
	require.Len(t, notifier.events, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAbortsOnRoomConflict(t *testing.T) {
	svc, mock, notifier := newTestService(t)
	req := validCreateRequest()

	mock.ExpectBegin()
	expectActiveRoom(mock, req.RoomID)
	mock.ExpectQuery("SELECT id FROM reservations").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint64(42)))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), req, 2)

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ConflictRoomBusy, ce.Kind)
	assert.Equal(t, uint64(42), ce.OffendingID)
	assert.Empty(t, notifier.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsInactiveRoom(t *testing.T) {
	svc, mock, _ := newTestService(t)
	req := validCreateRequest()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM rooms WHERE id").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "capacity", "equipment_description", "is_active"}).
			AddRow(req.RoomID, "Old Room", 4, nil, false))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), req, 2)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "room_id", ve.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectReservationRow(mock sqlmock.Sqlmock, id, userID uint64, status string) {
	mock.ExpectQuery("SELECT id, room_id, user_id, approved_by, start_time, end_time,").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "room_id", "user_id", "approved_by", "start_time",
				"end_time", "purpose", "status", "rejection_reason", "created_at"}).
			AddRow(id, 5, userID, nil, testNow.Add(time.Hour), testNow.Add(2*time.Hour),
				"Quarterly planning session", status, nil, testNow))
	mock.ExpectQuery("SELECT equipment_id FROM reservation_equipment").
		WillReturnRows(sqlmock.NewRows([]string{"equipment_id"}))
}

func TestApproveRecordsAdminAndNotifies(t *testing.T) {
	svc, mock, notifier := newTestService(t)

	mock.ExpectBegin()
	expectReservationRow(mock, 7, 2, "Pending")
	mock.ExpectExec("UPDATE reservations SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Approve(context.Background(), 7, 1))

	require.Len(t, notifier.events, 1)
	assert.Equal(t, string(StatusApproved), notifier.events[0].Status)
	require.NotNil(t, notifier.events[0].ApprovedBy)
	assert.Equal(t, uint64(1), *notifier.events[0].ApprovedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveRefusedFromTerminalState(t *testing.T) {
	svc, mock, notifier := newTestService(t)

	mock.ExpectBegin()
	expectReservationRow(mock, 7, 2, "Rejected")
	mock.ExpectRollback()

	err := svc.Approve(context.Background(), 7, 1)

	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, StatusRejected, te.From)
	assert.Equal(t, StatusApproved, te.To)
	assert.Empty(t, notifier.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectStoresReason(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	expectReservationRow(mock, 7, 2, "Pending")
	mock.ExpectExec("UPDATE reservations SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Reject(context.Background(), 7, 1, "double booked"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelByOwner(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	expectReservationRow(mock, 7, 2, "Approved")
	mock.ExpectExec("UPDATE reservations SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Cancel(context.Background(), 7, 2, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelIdempotent(t *testing.T) {
	svc, mock, _ := newTestService(t)

	// Already cancelled: no update, no second audit row, still commits.
	mock.ExpectBegin()
	expectReservationRow(mock, 7, 2, "Cancelled")
	mock.ExpectCommit()

	require.NoError(t, svc.Cancel(context.Background(), 7, 2, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelForbiddenForStranger(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	expectReservationRow(mock, 7, 2, "Pending")
	mock.ExpectRollback()

	err := svc.Cancel(context.Background(), 7, 99, false)

	var ue *UnauthorizedError
	require.ErrorAs(t, err, &ue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRejectedReservation(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	expectReservationRow(mock, 7, 2, "Rejected")
	mock.ExpectRollback()

	err := svc.Cancel(context.Background(), 7, 2, false)

	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.NoError(t, mock.ExpectationsWereMet())
}
