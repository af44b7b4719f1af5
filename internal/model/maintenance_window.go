package model

import "time"

// MaintenanceWindow blocks a room for a time interval.  While active it
// prevents any reservation of that room whose interval overlaps.
type MaintenanceWindow struct {
	ID        uint64    // maintenance_windows.id
	RoomID    uint64    // maintenance_windows.room_id
	StartTime time.Time // maintenance_windows.start_time
	EndTime   time.Time // maintenance_windows.end_time
	Reason    *string   // maintenance_windows.reason (nullable)
	IsActive  bool      // maintenance_windows.is_active
}
