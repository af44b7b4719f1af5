package booking

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Queryer is the minimal query surface the availability checker needs.
// Both *sql.DB and *sql.Tx satisfy it; the engine always passes its
// open transaction so the predicate and the subsequent insert observe
// the same snapshot.
type Queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AvailabilityRequest is a candidate booking window to test.  RoomID
// zero means no room is requested; ExcludeReservationID, when non-zero,
// removes that reservation from the conflict candidates (edit paths).
type AvailabilityRequest struct {
	Start                time.Time
	End                  time.Time
	RoomID               uint64
	EquipmentIDs         []uint64
	ExcludeReservationID uint64
	Now                  time.Time
}

// startMargin is how far in the future a reservation must begin.
const startMargin = time.Minute

// Conflict describes why a candidate window was refused.
type Conflict struct {
	Kind        ConflictKind
	OffendingID uint64
}

// CheckAvailability evaluates the candidate window against existing
// reservations and maintenance windows.  It returns nil when the window
// is free, or the first conflict found, checking in fixed order:
// range sanity, past time, empty selection, room overlap, maintenance
// overlap, equipment overlap.  Two half-open intervals [a,b) and [c,d)
// overlap iff a < d && c < b, so a window abutting an existing one is
// accepted.  Cancelled and Rejected reservations never conflict.
func CheckAvailability(ctx context.Context, q Queryer, req AvailabilityRequest) (*Conflict, error) {
	if !req.End.After(req.Start) {
		return &Conflict{Kind: ConflictInvalidRange}, nil
	}
	if !req.Start.After(req.Now.Add(startMargin)) {
		return &Conflict{Kind: ConflictPastTime}, nil
	}
	if req.RoomID == 0 && len(req.EquipmentIDs) == 0 {
		return &Conflict{Kind: ConflictNothingSelected}, nil
	}

	start := req.Start.UTC()
	end := req.End.UTC()

	if req.RoomID != 0 {
		const roomQ = `SELECT id FROM reservations
		               WHERE room_id = ? AND id <> ?
		                 AND status NOT IN ('Cancelled', 'Rejected')
		                 AND start_time < ? AND ? < end_time
		               LIMIT 1`
		var id uint64
		err := q.QueryRowContext(ctx, roomQ, req.RoomID, req.ExcludeReservationID, end, start).Scan(&id)
		switch {
		case err == nil:
			return &Conflict{Kind: ConflictRoomBusy, OffendingID: id}, nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}

		const maintQ = `SELECT id FROM maintenance_windows
		                WHERE room_id = ? AND is_active = 1
		                  AND start_time < ? AND ? < end_time
		                LIMIT 1`
		err = q.QueryRowContext(ctx, maintQ, req.RoomID, end, start).Scan(&id)
		switch {
		case err == nil:
			return &Conflict{Kind: ConflictMaintenance, OffendingID: id}, nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}
	}

	if len(req.EquipmentIDs) > 0 {
		placeholders := make([]string, len(req.EquipmentIDs))
		args := make([]any, 0, len(req.EquipmentIDs)+3)
		for i, eid := range req.EquipmentIDs {
			placeholders[i] = "?"
			args = append(args, eid)
		}
		args = append(args, req.ExcludeReservationID, end, start)
		equipQ := `SELECT r.id FROM reservations r
		           JOIN reservation_equipment re ON re.reservation_id = r.id
		           WHERE re.equipment_id IN (` + strings.Join(placeholders, ",") + `)
		             AND r.id <> ?
		             AND r.status NOT IN ('Cancelled', 'Rejected')
		             AND r.start_time < ? AND ? < r.end_time
		           LIMIT 1`
		var id uint64
		err := q.QueryRowContext(ctx, equipQ, args...).Scan(&id)
		switch {
		case err == nil:
			return &Conflict{Kind: ConflictEquipmentBusy, OffendingID: id}, nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}
	}

	return nil, nil
}
