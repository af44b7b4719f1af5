// Package service hosts the calendar mirror dispatcher that bridges the
// reservation engine to the message broker.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-equipment-booking/internal/model"
	"github.com/iliyamo/room-equipment-booking/internal/queue"
	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

// equipmentOnlyRoomName labels calendar entries for rentals with no room.
const equipmentOnlyRoomName = "Equipment rental"

// CalendarDispatcher implements the engine's calendar notifier.  The
// engine hands it a committed reservation; the dispatcher resolves the
// room name, stamps the event and drops it on a bounded channel.  A
// background worker publishes the events to the calendar.sync queue.
// The channel never blocks the caller: when it is full the event is
// dropped and logged, never propagated back into the booking flow.
type CalendarDispatcher struct {
	url    string
	rooms  *repository.RoomRepo
	log    *logrus.Logger
	events chan queue.CalendarSyncEvent
}

// NewCalendarDispatcher builds a dispatcher with a buffer of pending
// events.  Call Run in a goroutine to start draining.
func NewCalendarDispatcher(url string, rooms *repository.RoomRepo, log *logrus.Logger) *CalendarDispatcher {
	return &CalendarDispatcher{
		url:    url,
		rooms:  rooms,
		log:    log,
		events: make(chan queue.CalendarSyncEvent, 256),
	}
}

// ReservationScheduled enqueues a committed reservation for mirroring.
// It never blocks and never returns an error to the caller.
func (d *CalendarDispatcher) ReservationScheduled(ctx context.Context, res model.Reservation) {
	roomName := equipmentOnlyRoomName
	if res.RoomID != nil {
		room, err := d.rooms.GetByID(ctx, *res.RoomID)
		if err != nil {
			d.log.WithError(err).WithField("room_id", *res.RoomID).
				Warn("calendar-dispatcher: room lookup failed, using placeholder name")
		} else {
			roomName = room.Name
		}
	}

	ev := queue.CalendarSyncEvent{
		EventID:       uuid.NewString(),
		ReservationID: res.ID,
		UserID:        res.UserID,
		RoomName:      roomName,
		EquipmentIDs:  res.EquipmentIDs,
		Purpose:       res.Purpose,
		Status:        res.Status,
		StartsAt:      res.StartTime.UTC().Format(time.RFC3339),
		EndsAt:        res.EndTime.UTC().Format(time.RFC3339),
		PublishedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	select {
	case d.events <- ev:
	default:
		d.log.WithField("reservation_id", res.ID).
			Warn("calendar-dispatcher: event buffer full, dropping event")
	}
}

// Run drains the event channel until ctx is cancelled, publishing each
// event to the broker.  Publish failures are logged and the event is
// dropped; the mirror gives no delivery guarantee.
func (d *CalendarDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.events:
			if err := d.publish(ctx, ev); err != nil {
				d.log.WithError(err).WithField("reservation_id", ev.ReservationID).
					Warn("calendar-dispatcher: publish failed, event dropped")
			}
		}
	}
}

func (d *CalendarDispatcher) publish(ctx context.Context, ev queue.CalendarSyncEvent) error {
	conn, err := amqp.Dial(d.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare, durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(queue.CalendarSyncQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",                          // default exchange
		queue.CalendarSyncQueueName, // routing key = queue name
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			MessageId:    ev.EventID,
			Body:         body,
		})
}
