package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/domain/repository"
	"github.com/datatwine/CreateScale/internal/domain/valueobject"
	"github.com/datatwine/CreateScale/internal/logger"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

// Clock возвращает текущий момент. В тестах подменяется фиксированным.
type Clock func() time.Time

type CreateEngagementInput struct {
	ClientID    uuid.UUID
	PerformerID uuid.UUID
	Date        time.Time
	Time        time.Time
	Venue       string
	Occasion    string
}

type CreateEngagementUseCase struct {
	engagementRepo repository.EngagementRepository
	profileRepo    repository.ProfileRepository
	policy         entity.Policy
	now            Clock
}

// NewCreateEngagementUseCase создаёт сценарий найма. profileRepo может быть nil,
// тогда проверка ролей клиента и исполнителя пропускается.
func NewCreateEngagementUseCase(
	engagementRepo repository.EngagementRepository,
	profileRepo repository.ProfileRepository,
	policy entity.Policy,
	now Clock,
) *CreateEngagementUseCase {
	return &CreateEngagementUseCase{
		engagementRepo: engagementRepo,
		profileRepo:    profileRepo,
		policy:         policy,
		now:            now,
	}
}

func (uc *CreateEngagementUseCase) Execute(ctx context.Context, input CreateEngagementInput) (*entity.Engagement, error) {
	now := uc.now()

	e, err := entity.NewEngagement(
		input.ClientID,
		input.PerformerID,
		input.Date,
		input.Time,
		input.Venue,
		input.Occasion,
		now,
	)
	if err != nil {
		return nil, err
	}

	if err := uc.checkEligibility(ctx, input.ClientID, input.PerformerID); err != nil {
		return nil, err
	}

	today := uc.policy.Today(now)

	err = uc.engagementRepo.RunInTx(ctx, func(ctx context.Context, tx repository.EngagementTx) error {
		if err := tx.LockClient(ctx, e.ClientID); err != nil {
			return err
		}

		exists, err := tx.HasActiveForPair(ctx, e.ClientID, e.PerformerID, e.Date)
		if err != nil {
			return err
		}
		if exists {
			return entity.ErrDuplicateRequest(e.Date)
		}

		active, err := tx.CountActiveFrom(ctx, e.ClientID, today)
		if err != nil {
			return err
		}
		if active >= uc.policy.MaxActivePerClient {
			return entity.ErrClientLimitExceeded(uc.policy.MaxActivePerClient)
		}

		return tx.Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"engagement_id": e.ID,
		"client_id":     e.ClientID,
		"performer_id":  e.PerformerID,
		"date":          valueobject.FormatDate(e.Date),
	}).Info("engagement requested")

	return e, nil
}

func (uc *CreateEngagementUseCase) checkEligibility(ctx context.Context, clientID, performerID uuid.UUID) error {
	if uc.profileRepo == nil {
		return nil
	}

	performer, err := uc.profileRepo.FindByUserID(ctx, performerID)
	if err != nil {
		return err
	}

	client, err := uc.profileRepo.FindByUserID(ctx, clientID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.New(apperror.ErrCodeForbidden, "заполните профиль, чтобы нанимать исполнителей")
		}
		return err
	}

	if err := client.EnsureCanHire(); err != nil {
		return err
	}
	return performer.EnsureHireable()
}
