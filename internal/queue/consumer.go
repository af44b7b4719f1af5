// Package queue contains the background consumer that drains the
// calendar.sync queue and mirrors reservations into the owner's Google
// calendar.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

const calendarEventsURL = "https://www.googleapis.com/calendar/v3/calendars/primary/events"

// CalendarConsumer consumes CalendarSyncEvent messages and performs a
// best-effort insert into the Google calendar of the reservation owner.
// Every failure is logged and the message is discarded; the mirror is
// an observer of reservation state, never an authority over it.
type CalendarConsumer struct {
	url    string
	users  *repository.UserRepo
	log    *logrus.Logger
	client *http.Client
}

// NewCalendarConsumer builds a consumer for the given broker URL.
func NewCalendarConsumer(url string, users *repository.UserRepo, log *logrus.Logger) *CalendarConsumer {
	return &CalendarConsumer{
		url:    url,
		users:  users,
		log:    log,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Run connects to the broker, declares the durable calendar.sync queue
// and consumes until ctx is cancelled.  It keeps a reconnect loop with
// exponential backoff so a broker restart never takes the server down.
func (c *CalendarConsumer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.WithError(err).Warnf("calendar-consumer: broker dial failed, retrying in %s", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(ctx, conn); err != nil {
			c.log.WithError(err).Warn("calendar-consumer: consume loop ended, reconnecting")
		}
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *CalendarConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("calendar-consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(CalendarSyncQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(CalendarSyncQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(ctx, d.Body); err != nil {
				c.log.WithError(err).Warn("calendar-consumer: handle message failed")
				// Do not requeue, a poison message would loop forever.
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *CalendarConsumer) handleMessage(ctx context.Context, body []byte) error {
	var ev CalendarSyncEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	user, err := c.users.GetByID(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", ev.UserID, err)
	}
	if user.GoogleAccessToken == nil {
		// No linked calendar, nothing to mirror.
		return nil
	}
	if user.GoogleTokenExpiry != nil && time.Now().UTC().After(*user.GoogleTokenExpiry) {
		c.log.WithField("user_id", ev.UserID).Info("calendar-consumer: stored token expired, skipping event")
		return nil
	}

	return c.insertCalendarEvent(ctx, *user.GoogleAccessToken, ev)
}

// googleCalendarEvent is the subset of the Calendar v3 event resource
// the mirror writes.
type googleCalendarEvent struct {
	Summary     string             `json:"summary"`
	Description string             `json:"description,omitempty"`
	Start       googleCalendarTime `json:"start"`
	End         googleCalendarTime `json:"end"`
}

type googleCalendarTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

func (c *CalendarConsumer) insertCalendarEvent(ctx context.Context, accessToken string, ev CalendarSyncEvent) error {
	payload := googleCalendarEvent{
		Summary:     fmt.Sprintf("[%s] %s", ev.Status, ev.RoomName),
		Description: ev.Purpose,
		Start:       googleCalendarTime{DateTime: ev.StartsAt, TimeZone: "UTC"},
		End:         googleCalendarTime{DateTime: ev.EndsAt, TimeZone: "UTC"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal calendar event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, calendarEventsURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calendar insert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("calendar insert: unexpected status %d", resp.StatusCode)
	}
	c.log.WithFields(logrus.Fields{
		"event_id":       ev.EventID,
		"reservation_id": ev.ReservationID,
	}).Info("calendar-consumer: reservation mirrored")
	return nil
}
