package repository

import (
	"context"
	"database/sql"
)

// RoomStat aggregates one room's usage over a month: how many approved
// reservations it hosted and how many hours they covered in total.
type RoomStat struct {
	RoomName         string `json:"room_name"`
	ReservationCount int    `json:"reservation_count"`
	TotalHours       int    `json:"total_hours"`
}

// StatsRepo computes read-only usage aggregates for reporting.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo returns a new StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// MonthlyRoomStats returns per-room reservation counts and total booked
// hours for the given month.  Only approved reservations count toward
// usage.
func (r *StatsRepo) MonthlyRoomStats(ctx context.Context, month, year int) ([]RoomStat, error) {
	const q = `SELECT ro.name,
	                  COUNT(re.id),
	                  COALESCE(SUM(TIMESTAMPDIFF(HOUR, re.start_time, re.end_time)), 0)
	           FROM rooms ro
	           LEFT JOIN reservations re
	             ON re.room_id = ro.id
	            AND re.status = 'Approved'
	            AND MONTH(re.start_time) = ?
	            AND YEAR(re.start_time) = ?
	           GROUP BY ro.id, ro.name
	           ORDER BY ro.name`
	rows, err := r.db.QueryContext(ctx, q, month, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RoomStat, 0)
	for rows.Next() {
		var s RoomStat
		if err := rows.Scan(&s.RoomName, &s.ReservationCount, &s.TotalHours); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
