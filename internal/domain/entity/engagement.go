package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/datatwine/CreateScale/internal/domain/valueobject"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

const MaxDetailsLength = 255

const (
	ActionAccept          = "accept"
	ActionDecline         = "decline"
	ActionCancelClient    = "cancel_client"
	ActionCancelPerformer = "cancel_performer"
)

// Engagement - заявка клиента на выступление исполнителя.
type Engagement struct {
	ID                    uuid.UUID
	ClientID              uuid.UUID
	PerformerID           uuid.UUID
	Date                  time.Time
	Time                  time.Time
	Venue                 string
	Occasion              string
	Status                valueobject.EngagementStatus
	ClientCancelReason    string
	PerformerCancelReason string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func NewEngagement(clientID, performerID uuid.UUID, date, clock time.Time, venue, occasion string, now time.Time) (*Engagement, error) {
	if clientID == performerID {
		return nil, ErrSelfHire()
	}

	var missing []string
	if date.IsZero() {
		missing = append(missing, "date")
	}
	if clock.IsZero() {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return nil, ErrMissingFields(missing...)
	}

	if utf8.RuneCountInString(venue) > MaxDetailsLength {
		return nil, apperror.New(apperror.ErrCodeValidation, "место проведения должно быть не более 255 символов")
	}
	if utf8.RuneCountInString(occasion) > MaxDetailsLength {
		return nil, apperror.New(apperror.ErrCodeValidation, "повод должен быть не более 255 символов")
	}

	return &Engagement{
		ID:          uuid.New(),
		ClientID:    clientID,
		PerformerID: performerID,
		Date:        valueobject.NormalizeDate(date),
		Time:        valueobject.NormalizeClock(clock),
		Venue:       venue,
		Occasion:    occasion,
		Status:      valueobject.EngagementStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// EventInstant - момент начала события в зоне политики.
func (e *Engagement) EventInstant(p Policy) time.Time {
	return valueobject.Combine(e.Date, e.Time, p.location())
}

// ResponseWindowClosed сообщает, что исполнитель не успел ответить.
func (e *Engagement) ResponseWindowClosed(now time.Time, p Policy) bool {
	return now.After(e.CreatedAt.Add(p.ResponseWindow))
}

func (e *Engagement) IsParticipant(userID uuid.UUID) bool {
	return e.ClientID == userID || e.PerformerID == userID
}

func (e *Engagement) EnsurePending(action string) error {
	if e.Status != valueobject.EngagementStatusPending {
		return ErrInvalidState(action, e.Status, "изменить можно только заявку в ожидании")
	}
	return nil
}

func (e *Engagement) EnsureAcceptable() error {
	if !e.Status.CanTransitionTo(valueobject.EngagementStatusAccepted) {
		return ErrInvalidState(ActionAccept, e.Status, "принять можно только заявку в ожидании")
	}
	return nil
}

// Accept переводит заявку в accepted. Окно ответа и конфликты дня
// проверяются в рамках транзакции вызывающим кодом.
func (e *Engagement) Accept(now time.Time) error {
	if err := e.EnsureAcceptable(); err != nil {
		return err
	}
	e.transition(valueobject.EngagementStatusAccepted, now)
	return nil
}

// Expire помечает просроченную заявку. Вызывается только из принятия.
func (e *Engagement) Expire(now time.Time) error {
	if !e.Status.CanTransitionTo(valueobject.EngagementStatusAutoExpired) {
		return ErrInvalidState(ActionAccept, e.Status, "истечь может только заявка в ожидании")
	}
	e.transition(valueobject.EngagementStatusAutoExpired, now)
	return nil
}

func (e *Engagement) Decline(now time.Time) error {
	if err := e.EnsurePending(ActionDecline); err != nil {
		return err
	}
	e.transition(valueobject.EngagementStatusDeclined, now)
	return nil
}

func (e *Engagement) CancelByClient(reason string, now time.Time, p Policy) error {
	if err := e.ensureCancellable(ActionCancelClient, reason, now, p); err != nil {
		return err
	}
	e.ClientCancelReason = reason
	e.transition(valueobject.EngagementStatusCancelledByClient, now)
	return nil
}

func (e *Engagement) CancelByPerformer(reason string, now time.Time, p Policy) error {
	if err := e.ensureCancellable(ActionCancelPerformer, reason, now, p); err != nil {
		return err
	}
	e.PerformerCancelReason = reason
	e.transition(valueobject.EngagementStatusCancelledByPerformer, now)
	return nil
}

func (e *Engagement) ensureCancellable(action, reason string, now time.Time, p Policy) error {
	if !e.Status.IsActive() {
		return ErrInvalidState(action, e.Status, "отменить можно только заявку в ожидании или подтверждённую")
	}
	if e.EventInstant(p).Sub(now) <= p.LastMinuteWindow && strings.TrimSpace(reason) == "" {
		return ErrMissingReason()
	}
	return nil
}

func (e *Engagement) transition(to valueobject.EngagementStatus, now time.Time) {
	e.Status = to
	e.UpdatedAt = now
}
