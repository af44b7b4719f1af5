package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/room-equipment-booking/internal/model"
	"github.com/iliyamo/room-equipment-booking/internal/repository"
)

// CalendarNotifier receives reservations that should be mirrored to the
// owner's external calendar.  Implementations must be fire-and-forget:
// the engine never observes their outcome.
type CalendarNotifier interface {
	ReservationScheduled(ctx context.Context, res model.Reservation)
}

// Clock supplies the current time so tests can pin it.
type Clock func() time.Time

// Input limits enforced by Create.
const (
	purposeMinLen = 5
	purposeMaxLen = 200
	maxDuration   = 8 * time.Hour
)

// Service is the reservation state machine.  Every mutating operation
// runs inside a serializable transaction, writes exactly one audit row
// alongside the mutation, and surfaces lost serialization races as
// retryable errors.  The service owns no shared mutable state beyond
// the database handle.
type Service struct {
	db           *sql.DB
	reservations *repository.ReservationRepo
	rooms        *repository.RoomRepo
	equipment    *repository.EquipmentRepo
	audit        *repository.AuditRepo
	calendar     CalendarNotifier
	now          Clock
}

// NewService wires the engine's dependencies.  The calendar notifier
// may be nil, in which case mirroring is disabled.
func NewService(db *sql.DB, reservations *repository.ReservationRepo, rooms *repository.RoomRepo,
	equipment *repository.EquipmentRepo, audit *repository.AuditRepo,
	calendar CalendarNotifier, now Clock) *Service {
	if db == nil || reservations == nil || rooms == nil || equipment == nil || audit == nil {
		panic("nil dependency passed to booking.NewService")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:           db,
		reservations: reservations,
		rooms:        rooms,
		equipment:    equipment,
		audit:        audit,
		calendar:     calendar,
		now:          now,
	}
}

// CreateRequest is a proposed booking.  RoomID zero means no room;
// equipment-only rentals are allowed as long as EquipmentIDs is not
// empty.
type CreateRequest struct {
	RoomID       uint64
	EquipmentIDs []uint64
	Start        time.Time
	End          time.Time
	Purpose      string
}

// Create validates the request, checks availability inside a
// serializable transaction and persists a Pending reservation together
// with its audit row.  On a committed create the calendar notifier is
// handed the reservation; its failures never surface here.
func (s *Service) Create(ctx context.Context, req CreateRequest, actorUserID uint64) (*repository.ReservationDetail, error) {
	purpose := strings.TrimSpace(req.Purpose)
	if n := utf8.RuneCountInString(purpose); n < purposeMinLen || n > purposeMaxLen {
		return nil, &ValidationError{Field: "purpose", Detail: fmt.Sprintf("must be %d to %d characters", purposeMinLen, purposeMaxLen)}
	}
	if req.End.Sub(req.Start) > maxDuration {
		return nil, &ValidationError{Field: "end_time_utc", Detail: "reservation may not exceed 8 hours"}
	}
	equipmentIDs := dedupeIDs(req.EquipmentIDs)

	var res *model.Reservation
	err := s.withSerializableTx(ctx, func(tx *sql.Tx) error {
		if req.RoomID != 0 {
			room, err := s.rooms.GetTx(ctx, tx, req.RoomID)
			if err != nil {
				return fromStore(err, "room", req.RoomID)
			}
			if !room.IsActive {
				return &ValidationError{Field: "room_id", Detail: "room is not active"}
			}
		}
		if len(equipmentIDs) > 0 {
			n, err := s.equipment.CountExistingTx(ctx, tx, equipmentIDs)
			if err != nil {
				return err
			}
			if n != len(equipmentIDs) {
				return &NotFoundError{Entity: "equipment"}
			}
		}

		conflict, err := CheckAvailability(ctx, tx, AvailabilityRequest{
			Start:        req.Start,
			End:          req.End,
			RoomID:       req.RoomID,
			EquipmentIDs: equipmentIDs,
			Now:          s.now().UTC(),
		})
		if err != nil {
			return err
		}
		if conflict != nil {
			return &ConflictError{Kind: conflict.Kind, OffendingID: conflict.OffendingID}
		}

		res = &model.Reservation{
			UserID:       actorUserID,
			StartTime:    req.Start.UTC(),
			EndTime:      req.End.UTC(),
			Purpose:      purpose,
			Status:       string(StatusPending),
			CreatedAt:    s.now().UTC(),
			EquipmentIDs: equipmentIDs,
		}
		if req.RoomID != 0 {
			rid := req.RoomID
			res.RoomID = &rid
		}
		if err := s.reservations.CreateTx(ctx, tx, res); err != nil {
			return fromStore(err, "reservation", 0)
		}
		return s.appendAuditTx(ctx, tx, actorUserID, model.AuditActionCreate, res.ID, createSummary(res))
	})
	if err != nil {
		return nil, err
	}

	if s.calendar != nil {
		s.calendar.ReservationScheduled(ctx, *res)
	}
	detail, err := s.reservations.GetDetail(ctx, res.ID)
	if err != nil {
		return nil, fromStore(err, "reservation", res.ID)
	}
	return detail, nil
}

// Approve moves a Pending reservation to Approved and records the
// acting administrator.  On commit the reservation is mirrored to the
// owner's calendar.
func (s *Service) Approve(ctx context.Context, reservationID, adminUserID uint64) error {
	var approved *model.Reservation
	err := s.withSerializableTx(ctx, func(tx *sql.Tx) error {
		res, err := s.reservations.GetTx(ctx, tx, reservationID)
		if err != nil {
			return fromStore(err, "reservation", reservationID)
		}
		if from := Status(res.Status); !from.CanTransitionTo(StatusApproved) {
			return &TransitionError{From: from, To: StatusApproved}
		}
		res.Status = string(StatusApproved)
		res.ApprovedBy = &adminUserID
		if err := s.reservations.UpdateStatusTx(ctx, tx, res); err != nil {
			return fromStore(err, "reservation", reservationID)
		}
		approved = res
		return s.appendAuditTx(ctx, tx, adminUserID, model.AuditActionApprove, res.ID, "Reservation approved.")
	})
	if err != nil {
		return err
	}
	if s.calendar != nil {
		s.calendar.ReservationScheduled(ctx, *approved)
	}
	return nil
}

// Reject moves a Pending reservation to Rejected, recording the acting
// administrator and the optional reason.
func (s *Service) Reject(ctx context.Context, reservationID, adminUserID uint64, reason string) error {
	return s.withSerializableTx(ctx, func(tx *sql.Tx) error {
		res, err := s.reservations.GetTx(ctx, tx, reservationID)
		if err != nil {
			return fromStore(err, "reservation", reservationID)
		}
		if from := Status(res.Status); !from.CanTransitionTo(StatusRejected) {
			return &TransitionError{From: from, To: StatusRejected}
		}
		res.Status = string(StatusRejected)
		res.ApprovedBy = &adminUserID
		reason = strings.TrimSpace(reason)
		if reason != "" {
			res.RejectionReason = &reason
		}
		if err := s.reservations.UpdateStatusTx(ctx, tx, res); err != nil {
			return fromStore(err, "reservation", reservationID)
		}
		details := "Reservation rejected."
		if reason != "" {
			details = "Reservation rejected. Reason: " + reason
		}
		return s.appendAuditTx(ctx, tx, adminUserID, model.AuditActionReject, res.ID, details)
	})
}

// Cancel moves a Pending or Approved reservation to Cancelled.  Only
// the owner or an administrator may cancel; the isAdmin bit is supplied
// by the caller, the engine never resolves roles itself.  Cancelling an
// already-cancelled reservation succeeds without mutating anything and
// without writing a second audit row.
func (s *Service) Cancel(ctx context.Context, reservationID, actorUserID uint64, isAdmin bool) error {
	return s.withSerializableTx(ctx, func(tx *sql.Tx) error {
		res, err := s.reservations.GetTx(ctx, tx, reservationID)
		if err != nil {
			return fromStore(err, "reservation", reservationID)
		}
		if Status(res.Status) == StatusCancelled {
			return nil
		}
		if res.UserID != actorUserID && !isAdmin {
			return &UnauthorizedError{Action: "cancel"}
		}
		if from := Status(res.Status); !from.CanTransitionTo(StatusCancelled) {
			return &TransitionError{From: from, To: StatusCancelled}
		}
		res.Status = string(StatusCancelled)
		if err := s.reservations.UpdateStatusTx(ctx, tx, res); err != nil {
			return fromStore(err, "reservation", reservationID)
		}
		details := "Reservation cancelled by owner."
		if actorUserID != res.UserID {
			details = "Reservation cancelled by administrator."
		}
		return s.appendAuditTx(ctx, tx, actorUserID, model.AuditActionCancel, res.ID, details)
	})
}

// GetByID returns the projection of one reservation.
func (s *Service) GetByID(ctx context.Context, id uint64) (*repository.ReservationDetail, error) {
	detail, err := s.reservations.GetDetail(ctx, id)
	if err != nil {
		return nil, fromStore(err, "reservation", id)
	}
	return detail, nil
}

// ListForRoom returns every reservation of a room, newest start first.
func (s *Service) ListForRoom(ctx context.Context, roomID uint64) ([]repository.ReservationDetail, error) {
	return s.reservations.ListForRoom(ctx, roomID)
}

// ListForUser returns every reservation owned by a user, newest start
// first.
func (s *Service) ListForUser(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error) {
	return s.reservations.ListForUser(ctx, userID)
}

// ListForEquipment returns every reservation including the given
// equipment item, newest start first.
func (s *Service) ListForEquipment(ctx context.Context, equipmentID uint64) ([]repository.ReservationDetail, error) {
	return s.reservations.ListForEquipment(ctx, equipmentID)
}

// withSerializableTx runs fn inside a serializable transaction.  Either
// every write in fn commits together or none do; a commit that loses a
// serialization race is surfaced as a retryable TransientError.
func (s *Service) withSerializableTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return &TransientError{Cause: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if classified := repository.Classify(err); errors.Is(classified, repository.ErrTxConflict) {
			return &TransientError{Cause: err}
		}
		return &TransientError{Cause: err}
	}
	committed = true
	return nil
}

// appendAuditTx writes the single audit row every mutation carries.
func (s *Service) appendAuditTx(ctx context.Context, tx *sql.Tx, actor uint64, action string, entityID uint64, details string) error {
	entry := &model.AuditLog{
		UserID:     &actor,
		EntityType: "Reservation",
		EntityID:   &entityID,
		Action:     action,
		Details:    &details,
		Timestamp:  s.now().UTC(),
	}
	return s.audit.AppendTx(ctx, tx, entry)
}

func createSummary(res *model.Reservation) string {
	window := fmt.Sprintf("%s to %s",
		res.StartTime.Format(time.RFC3339), res.EndTime.Format(time.RFC3339))
	if res.RoomID != nil {
		return fmt.Sprintf("New reservation for room %d, %s", *res.RoomID, window)
	}
	return fmt.Sprintf("New equipment rental (%d items), %s", len(res.EquipmentIDs), window)
}

func dedupeIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
