package model

import "time"

// Reservation is a time-bounded claim on a room and/or one or more
// equipment items by a user.  A reservation starts out Pending and is
// moved through its lifecycle exclusively by the booking engine; rows
// are never physically deleted.
//
// Fields:
//  ID              - primary key identifier.
//  RoomID          - reserved room, nil for equipment-only rentals.
//  UserID          - user who requested the reservation.
//  ApprovedBy      - administrator who moved it out of Pending, if any.
//  StartTime       - start of the reserved interval (UTC).
//  EndTime         - end of the reserved interval (UTC, exclusive).
//  Purpose         - free-text purpose, 5-200 characters after trimming.
//  Status          - lifecycle state (Pending/Approved/Rejected/Cancelled).
//  RejectionReason - optional reason, only meaningful when Rejected.
//  CreatedAt       - creation timestamp assigned on persist.
type Reservation struct {
	ID              uint64    // reservations.id
	RoomID          *uint64   // reservations.room_id (nullable)
	UserID          uint64    // reservations.user_id
	ApprovedBy      *uint64   // reservations.approved_by (nullable)
	StartTime       time.Time // reservations.start_time
	EndTime         time.Time // reservations.end_time
	Purpose         string    // reservations.purpose
	Status          string    // reservations.status
	RejectionReason *string   // reservations.rejection_reason (nullable)
	CreatedAt       time.Time // reservations.created_at
	EquipmentIDs    []uint64  // reservation_equipment.equipment_id rows
}
