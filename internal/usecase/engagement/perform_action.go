package engagement

import (
	"context"

	"github.com/google/uuid"

	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/domain/repository"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

// Actor - пользователь, от имени которого выполняется запрос.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type PerformActionInput struct {
	EngagementID uuid.UUID
	Actor        Actor
	Action       string
	Reason       string
}

// PerformActionUseCase выбирает переход по действию и роли участника.
// Исполнитель может accept, decline и cancel_performer, клиент только cancel_client.
type PerformActionUseCase struct {
	engagementRepo    repository.EngagementRepository
	accept            *AcceptEngagementUseCase
	decline           *DeclineEngagementUseCase
	cancelByClient    *CancelByClientUseCase
	cancelByPerformer *CancelByPerformerUseCase
}

func NewPerformActionUseCase(engagementRepo repository.EngagementRepository, policy entity.Policy, now Clock) *PerformActionUseCase {
	return &PerformActionUseCase{
		engagementRepo:    engagementRepo,
		accept:            NewAcceptEngagementUseCase(engagementRepo, policy, now),
		decline:           NewDeclineEngagementUseCase(engagementRepo, now),
		cancelByClient:    NewCancelByClientUseCase(engagementRepo, policy, now),
		cancelByPerformer: NewCancelByPerformerUseCase(engagementRepo, policy, now),
	}
}

func (uc *PerformActionUseCase) Execute(ctx context.Context, input PerformActionInput) (*entity.Engagement, error) {
	e, err := uc.engagementRepo.FindByID(ctx, input.EngagementID)
	if err != nil {
		return nil, err
	}

	userID := input.Actor.UserID
	isPerformer := e.PerformerID == userID
	isClient := e.ClientID == userID

	switch {
	case isPerformer && input.Action == entity.ActionAccept:
		return uc.accept.Execute(ctx, e.ID, userID)
	case isPerformer && input.Action == entity.ActionDecline:
		return uc.decline.Execute(ctx, e.ID, userID)
	case isPerformer && input.Action == entity.ActionCancelPerformer:
		return uc.cancelByPerformer.Execute(ctx, e.ID, userID, input.Reason)
	case isClient && input.Action == entity.ActionCancelClient:
		return uc.cancelByClient.Execute(ctx, e.ID, userID, input.Reason)
	}

	if !isPerformer && !isClient {
		return nil, apperror.ErrForbidden
	}
	return nil, apperror.New(apperror.ErrCodeForbidden, "недопустимое действие для вашей роли").
		WithDetail("action", input.Action)
}
