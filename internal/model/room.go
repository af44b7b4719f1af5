package model

// Room is a bookable meeting room.  Inactive rooms keep their history
// but cannot receive new reservations.
//
// Fields:
//  ID                   - primary key identifier.
//  Name                 - display name shown in projections.
//  Capacity             - seat capacity, always at least 1.
//  EquipmentDescription - free-text summary of fixed equipment.
//  IsActive             - whether the room accepts new reservations.
type Room struct {
	ID                   uint64  // rooms.id
	Name                 string  // rooms.name
	Capacity             uint32  // rooms.capacity
	EquipmentDescription *string // rooms.equipment_description (nullable)
	IsActive             bool    // rooms.is_active
}

// Equipment is a loanable item owned by exactly one room.  It can be
// attached to reservations independently of its owning room.
type Equipment struct {
	ID     uint64 // equipment.id
	Name   string // equipment.name
	RoomID uint64 // equipment.room_id
}
