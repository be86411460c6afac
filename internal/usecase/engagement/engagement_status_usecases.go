package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/domain/repository"
	"github.com/datatwine/CreateScale/internal/logger"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

type DeclineEngagementUseCase struct {
	engagementRepo repository.EngagementRepository
	now            Clock
}

func NewDeclineEngagementUseCase(engagementRepo repository.EngagementRepository, now Clock) *DeclineEngagementUseCase {
	return &DeclineEngagementUseCase{engagementRepo: engagementRepo, now: now}
}

func (uc *DeclineEngagementUseCase) Execute(ctx context.Context, engagementID, performerID uuid.UUID) (*entity.Engagement, error) {
	return transition(ctx, uc.engagementRepo, engagementID, entity.ActionDecline, func(e *entity.Engagement) error {
		if e.PerformerID != performerID {
			return apperror.ErrForbidden
		}
		return e.Decline(uc.now())
	})
}

type CancelByClientUseCase struct {
	engagementRepo repository.EngagementRepository
	policy         entity.Policy
	now            Clock
}

func NewCancelByClientUseCase(engagementRepo repository.EngagementRepository, policy entity.Policy, now Clock) *CancelByClientUseCase {
	return &CancelByClientUseCase{engagementRepo: engagementRepo, policy: policy, now: now}
}

func (uc *CancelByClientUseCase) Execute(ctx context.Context, engagementID, clientID uuid.UUID, reason string) (*entity.Engagement, error) {
	return transition(ctx, uc.engagementRepo, engagementID, entity.ActionCancelClient, func(e *entity.Engagement) error {
		if e.ClientID != clientID {
			return apperror.ErrForbidden
		}
		return e.CancelByClient(reason, uc.now(), uc.policy)
	})
}

type CancelByPerformerUseCase struct {
	engagementRepo repository.EngagementRepository
	policy         entity.Policy
	now            Clock
}

func NewCancelByPerformerUseCase(engagementRepo repository.EngagementRepository, policy entity.Policy, now Clock) *CancelByPerformerUseCase {
	return &CancelByPerformerUseCase{engagementRepo: engagementRepo, policy: policy, now: now}
}

func (uc *CancelByPerformerUseCase) Execute(ctx context.Context, engagementID, performerID uuid.UUID, reason string) (*entity.Engagement, error) {
	return transition(ctx, uc.engagementRepo, engagementID, entity.ActionCancelPerformer, func(e *entity.Engagement) error {
		if e.PerformerID != performerID {
			return apperror.ErrForbidden
		}
		return e.CancelByPerformer(reason, uc.now(), uc.policy)
	})
}

// transition блокирует строку заявки, применяет apply и сохраняет результат.
func transition(
	ctx context.Context,
	repo repository.EngagementRepository,
	engagementID uuid.UUID,
	action string,
	apply func(e *entity.Engagement) error,
) (*entity.Engagement, error) {
	var result *entity.Engagement

	err := repo.RunInTx(ctx, func(ctx context.Context, tx repository.EngagementTx) error {
		e, err := tx.FindByIDForUpdate(ctx, engagementID)
		if err != nil {
			return err
		}
		if err := apply(e); err != nil {
			return err
		}
		if err := tx.Update(ctx, e); err != nil {
			return err
		}
		result = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"engagement_id": result.ID,
		"action":        action,
		"status":        result.Status,
		"at":            result.UpdatedAt.Format(time.RFC3339),
	}).Info("engagement status changed")

	return result, nil
}
