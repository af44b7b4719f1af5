// Package queue defines message payloads exchanged over the message broker.
package queue

// CalendarSyncQueueName is the durable queue calendar mirror events
// travel on.
const CalendarSyncQueueName = "calendar.sync"

// CalendarSyncEvent is published after a reservation is created or
// approved so the owner's external calendar can be brought in line.
// It carries everything the consumer needs to build the calendar entry
// without querying the reservation back; only the owner's stored OAuth
// credentials are resolved at consume time.
type CalendarSyncEvent struct {
	EventID       string   `json:"event_id"`
	ReservationID uint64   `json:"reservation_id"`
	UserID        uint64   `json:"user_id"`
	RoomName      string   `json:"room_name"`
	EquipmentIDs  []uint64 `json:"equipment_ids,omitempty"`
	Purpose       string   `json:"purpose"`
	Status        string   `json:"status"`
	StartsAt      string   `json:"starts_at"`
	EndsAt        string   `json:"ends_at"`
	PublishedAt   string   `json:"published_at"`
}
