package valueobject

import "github.com/datatwine/CreateScale/internal/pkg/apperror"

type EngagementStatus string

const (
	EngagementStatusPending              EngagementStatus = "pending"
	EngagementStatusAccepted             EngagementStatus = "accepted"
	EngagementStatusDeclined             EngagementStatus = "declined"
	EngagementStatusCancelledByClient    EngagementStatus = "cancelled_by_client"
	EngagementStatusCancelledByPerformer EngagementStatus = "cancelled_by_performer"
	EngagementStatusAutoExpired          EngagementStatus = "auto_expired"
)

// ActiveEngagementStatuses - статусы, которые занимают слот клиента и исполнителя.
var ActiveEngagementStatuses = []EngagementStatus{EngagementStatusPending, EngagementStatusAccepted}

var engagementTransitions = map[EngagementStatus][]EngagementStatus{
	EngagementStatusPending: {
		EngagementStatusAccepted,
		EngagementStatusDeclined,
		EngagementStatusAutoExpired,
		EngagementStatusCancelledByClient,
		EngagementStatusCancelledByPerformer,
	},
	EngagementStatusAccepted: {
		EngagementStatusCancelledByClient,
		EngagementStatusCancelledByPerformer,
	},
	EngagementStatusDeclined:             {},
	EngagementStatusCancelledByClient:    {},
	EngagementStatusCancelledByPerformer: {},
	EngagementStatusAutoExpired:          {},
}

func (s EngagementStatus) IsValid() bool {
	_, ok := engagementTransitions[s]
	return ok
}

func (s EngagementStatus) IsActive() bool {
	return s == EngagementStatusPending || s == EngagementStatusAccepted
}

func (s EngagementStatus) IsTerminal() bool {
	return s.IsValid() && len(engagementTransitions[s]) == 0
}

func (s EngagementStatus) CanTransitionTo(newStatus EngagementStatus) bool {
	for _, status := range engagementTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewEngagementStatus(status string) (EngagementStatus, error) {
	s := EngagementStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	return s, nil
}
