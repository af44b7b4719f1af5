package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/room-equipment-booking/internal/model"
)

// equipmentOnlyRoomName is the synthetic label projected for
// reservations that rent equipment without a room.
const equipmentOnlyRoomName = "Equipment rental"

// ReservationRepo provides persistence for reservations and their
// equipment links.  Mutating methods run inside a caller-supplied
// transaction (the booking engine owns transaction boundaries); read
// projections run against the pooled connection.  All timestamps are
// stored and returned in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so the engine can open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new reservation and its equipment links within the
// scope of an existing transaction.  It populates the generated ID on
// the provided record.  The caller must commit or roll back the
// transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (room_id, user_id, start_time, end_time, purpose, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	var roomID any
	if res.RoomID != nil {
		roomID = *res.RoomID
	}
	result, err := tx.ExecContext(ctx, q, roomID, res.UserID,
		res.StartTime.UTC(), res.EndTime.UTC(), res.Purpose, res.Status, res.CreatedAt.UTC())
	if err != nil {
		return Classify(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	if len(res.EquipmentIDs) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_equipment (reservation_id, equipment_id) VALUES `
	args := make([]any, 0, len(res.EquipmentIDs)*2)
	for i, eid := range res.EquipmentIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, res.ID, eid)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return Classify(err)
	}
	return nil
}

// GetTx loads a reservation and its equipment ids inside a transaction.
// Returns ErrNotFound when no row exists.
func (r *ReservationRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, room_id, user_id, approved_by, start_time, end_time,
	                  purpose, status, rejection_reason, created_at
	           FROM reservations WHERE id = ?`
	var (
		res    model.Reservation
		roomID sql.NullInt64
		appBy  sql.NullInt64
		reason sql.NullString
	)
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &roomID, &res.UserID, &appBy,
		&res.StartTime, &res.EndTime, &res.Purpose, &res.Status, &reason, &res.CreatedAt,
	)
	if err != nil {
		return nil, Classify(err)
	}
	if roomID.Valid {
		rid := uint64(roomID.Int64)
		res.RoomID = &rid
	}
	if appBy.Valid {
		ab := uint64(appBy.Int64)
		res.ApprovedBy = &ab
	}
	if reason.Valid {
		rr := reason.String
		res.RejectionReason = &rr
	}
	const eq = `SELECT equipment_id FROM reservation_equipment WHERE reservation_id = ? ORDER BY equipment_id`
	rows, err := tx.QueryContext(ctx, eq, res.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var eid uint64
		if err := rows.Scan(&eid); err != nil {
			return nil, err
		}
		res.EquipmentIDs = append(res.EquipmentIDs, eid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateStatusTx writes the lifecycle fields of a reservation.  Only
// status, approved_by and rejection_reason are mutable; everything else
// is immutable after creation.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `UPDATE reservations SET status = ?, approved_by = ?, rejection_reason = ? WHERE id = ?`
	var appBy any
	if res.ApprovedBy != nil {
		appBy = *res.ApprovedBy
	}
	var reason any
	if res.RejectionReason != nil {
		reason = *res.RejectionReason
	}
	result, err := tx.ExecContext(ctx, q, res.Status, appBy, reason, res.ID)
	if err != nil {
		return Classify(err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReservationDetail is the read-only projection returned to clients.
// RoomID is null and RoomName carries a synthetic label for
// equipment-only rentals.  Maintenance windows and audit rows never
// appear here.
type ReservationDetail struct {
	ID              uint64    `json:"id"`
	RoomID          *uint64   `json:"room_id"`
	RoomName        string    `json:"room_name"`
	UserID          uint64    `json:"user_id"`
	ApprovedBy      *uint64   `json:"approved_by,omitempty"`
	StartTime       time.Time `json:"start_time_utc"`
	EndTime         time.Time `json:"end_time_utc"`
	Purpose         string    `json:"purpose"`
	Status          string    `json:"status"`
	RejectionReason *string   `json:"rejection_reason,omitempty"`
	EquipmentIDs    []uint64  `json:"equipment_ids"`
}

const detailColumns = `r.id, r.room_id, ro.name, r.user_id, r.approved_by,
	r.start_time, r.end_time, r.purpose, r.status, r.rejection_reason`

func scanDetail(scan func(...any) error) (ReservationDetail, error) {
	var (
		d        ReservationDetail
		roomID   sql.NullInt64
		roomName sql.NullString
		appBy    sql.NullInt64
		reason   sql.NullString
	)
	err := scan(&d.ID, &roomID, &roomName, &d.UserID, &appBy,
		&d.StartTime, &d.EndTime, &d.Purpose, &d.Status, &reason)
	if err != nil {
		return d, err
	}
	if roomID.Valid {
		rid := uint64(roomID.Int64)
		d.RoomID = &rid
		d.RoomName = roomName.String
	} else {
		d.RoomName = equipmentOnlyRoomName
	}
	if appBy.Valid {
		ab := uint64(appBy.Int64)
		d.ApprovedBy = &ab
	}
	if reason.Valid {
		rr := reason.String
		d.RejectionReason = &rr
	}
	d.StartTime = d.StartTime.UTC()
	d.EndTime = d.EndTime.UTC()
	d.EquipmentIDs = []uint64{}
	return d, nil
}

// GetDetail returns the projection of a single reservation.  Returns
// ErrNotFound when the reservation does not exist.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*ReservationDetail, error) {
	q := `SELECT ` + detailColumns + `
	      FROM reservations r
	      LEFT JOIN rooms ro ON ro.id = r.room_id
	      WHERE r.id = ?`
	row := r.db.QueryRowContext(ctx, q, id)
	d, err := scanDetail(row.Scan)
	if err != nil {
		return nil, Classify(err)
	}
	if err := r.attachEquipment(ctx, []*ReservationDetail{&d}); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListForRoom returns every reservation of a room, newest start first.
func (r *ReservationRepo) ListForRoom(ctx context.Context, roomID uint64) ([]ReservationDetail, error) {
	q := `SELECT ` + detailColumns + `
	      FROM reservations r
	      LEFT JOIN rooms ro ON ro.id = r.room_id
	      WHERE r.room_id = ?
	      ORDER BY r.start_time DESC`
	return r.listDetails(ctx, q, roomID)
}

// ListForUser returns every reservation owned by a user, newest start
// first.
func (r *ReservationRepo) ListForUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	q := `SELECT ` + detailColumns + `
	      FROM reservations r
	      LEFT JOIN rooms ro ON ro.id = r.room_id
	      WHERE r.user_id = ?
	      ORDER BY r.start_time DESC`
	return r.listDetails(ctx, q, userID)
}

// ListForEquipment returns every reservation that includes the given
// equipment item, newest start first.
func (r *ReservationRepo) ListForEquipment(ctx context.Context, equipmentID uint64) ([]ReservationDetail, error) {
	q := `SELECT ` + detailColumns + `
	      FROM reservations r
	      JOIN reservation_equipment re ON re.reservation_id = r.id
	      LEFT JOIN rooms ro ON ro.id = r.room_id
	      WHERE re.equipment_id = ?
	      ORDER BY r.start_time DESC`
	return r.listDetails(ctx, q, equipmentID)
}

func (r *ReservationRepo) listDetails(ctx context.Context, query string, arg any) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	refs := make([]*ReservationDetail, len(details))
	for i := range details {
		refs[i] = &details[i]
	}
	if err := r.attachEquipment(ctx, refs); err != nil {
		return nil, err
	}
	return details, nil
}

// attachEquipment populates the equipment id lists for a batch of
// projections with a single IN query.
func (r *ReservationRepo) attachEquipment(ctx context.Context, details []*ReservationDetail) error {
	ids := make([]any, 0, len(details))
	placeholders := make([]string, 0, len(details))
	index := make(map[uint64]*ReservationDetail, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
		index[d.ID] = d
	}
	q := `SELECT reservation_id, equipment_id FROM reservation_equipment
	      WHERE reservation_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY reservation_id, equipment_id`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rid, eid uint64
		if err := rows.Scan(&rid, &eid); err != nil {
			return err
		}
		if d, ok := index[rid]; ok {
			d.EquipmentIDs = append(d.EquipmentIDs, eid)
		}
	}
	return rows.Err()
}
