package engagement

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/domain/repository"
	"github.com/datatwine/CreateScale/internal/logger"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

type AcceptEngagementUseCase struct {
	engagementRepo repository.EngagementRepository
	policy         entity.Policy
	now            Clock
}

func NewAcceptEngagementUseCase(engagementRepo repository.EngagementRepository, policy entity.Policy, now Clock) *AcceptEngagementUseCase {
	return &AcceptEngagementUseCase{engagementRepo: engagementRepo, policy: policy, now: now}
}

// Execute подтверждает заявку от имени исполнителя. Просроченная заявка
// сохраняется как auto_expired, и только после этого возвращается ErrExpired.
// Остальные ожидающие заявки исполнителя на ту же дату отменяются.
func (uc *AcceptEngagementUseCase) Execute(ctx context.Context, engagementID, performerID uuid.UUID) (*entity.Engagement, error) {
	now := uc.now()

	var (
		accepted  *entity.Engagement
		expired   *entity.Engagement
		cancelled int64
	)

	err := uc.engagementRepo.RunInTx(ctx, func(ctx context.Context, tx repository.EngagementTx) error {
		// Исполнитель и дата не меняются, поэтому их можно прочитать до блокировок.
		current, err := tx.FindByID(ctx, engagementID)
		if err != nil {
			return err
		}
		if current.PerformerID != performerID {
			return apperror.ErrForbidden
		}

		if err := tx.LockPerformerDay(ctx, current.PerformerID, current.Date); err != nil {
			return err
		}

		e, err := tx.FindByIDForUpdate(ctx, engagementID)
		if err != nil {
			return err
		}
		if err := e.EnsureAcceptable(); err != nil {
			return err
		}

		if e.ResponseWindowClosed(now, uc.policy) {
			if err := e.Expire(now); err != nil {
				return err
			}
			if err := tx.Update(ctx, e); err != nil {
				return err
			}
			expired = e
			return nil
		}

		conflict, err := tx.HasAcceptedOnDay(ctx, e.PerformerID, e.Date, e.ID)
		if err != nil {
			return err
		}
		if conflict {
			return entity.ErrDailyConflict(e.Date)
		}

		cancelled, err = tx.CancelPendingOnDay(ctx, e.PerformerID, e.Date, e.ID, now)
		if err != nil {
			return err
		}

		if err := e.Accept(now); err != nil {
			return err
		}
		if err := tx.Update(ctx, e); err != nil {
			return err
		}
		accepted = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired != nil {
		logger.Log.WithFields(logrus.Fields{
			"engagement_id": expired.ID,
			"created_at":    expired.CreatedAt,
		}).Info("engagement expired on accept")
		return nil, entity.ErrExpired(expired.CreatedAt)
	}

	logger.Log.WithFields(logrus.Fields{
		"engagement_id":   accepted.ID,
		"performer_id":    accepted.PerformerID,
		"cascade_cancels": cancelled,
	}).Info("engagement accepted")

	return accepted, nil
}
