package engagement

import (
	"context"

	"github.com/google/uuid"

	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/domain/repository"
	"github.com/datatwine/CreateScale/internal/domain/valueobject"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

const (
	ViewAsClient    = "client"
	ViewAsPerformer = "performer"

	DefaultListLimit = 20
	MaxListLimit     = 100

	LiveScopeUpcoming = "upcoming"
	LiveScopePast     = "past"

	DefaultLiveEventsLimit = 10
)

type GetEngagementUseCase struct {
	engagementRepo repository.EngagementRepository
}

func NewGetEngagementUseCase(engagementRepo repository.EngagementRepository) *GetEngagementUseCase {
	return &GetEngagementUseCase{engagementRepo: engagementRepo}
}

func (uc *GetEngagementUseCase) Execute(ctx context.Context, engagementID uuid.UUID, viewer Actor) (*entity.Engagement, error) {
	e, err := uc.engagementRepo.FindByID(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin && !e.IsParticipant(viewer.UserID) {
		return nil, apperror.ErrForbidden
	}
	return e, nil
}

type ListEngagementsInput struct {
	Viewer Actor
	// As сужает выборку до заявок, где пользователь клиент или исполнитель.
	As     string
	Status string
	Limit  int
	Offset int
}

type ListEngagementsUseCase struct {
	engagementRepo repository.EngagementRepository
}

func NewListEngagementsUseCase(engagementRepo repository.EngagementRepository) *ListEngagementsUseCase {
	return &ListEngagementsUseCase{engagementRepo: engagementRepo}
}

func (uc *ListEngagementsUseCase) Execute(ctx context.Context, input ListEngagementsInput) ([]*entity.Engagement, int, error) {
	filter := repository.EngagementFilter{}
	filter.Limit, filter.Offset = NormalizePage(input.Limit, input.Offset)

	if input.Status != "" {
		status, err := valueobject.NewEngagementStatus(input.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = string(status)
	}

	userID := input.Viewer.UserID
	switch input.As {
	case ViewAsClient:
		filter.ClientID = &userID
	case ViewAsPerformer:
		filter.PerformerID = &userID
	case "":
		if !input.Viewer.IsAdmin {
			filter.ParticipantID = &userID
		}
	default:
		return nil, 0, apperror.New(apperror.ErrCodeValidation, "параметр as должен быть client или performer")
	}

	return uc.engagementRepo.List(ctx, filter)
}

type ListLiveEventsInput struct {
	// Scope: upcoming (по умолчанию) или past.
	Scope  string
	Limit  int
	Offset int
}

// ListLiveEventsUseCase - лента подтверждённых выступлений. Доступна любому
// авторизованному пользователю.
type ListLiveEventsUseCase struct {
	engagementRepo repository.EngagementRepository
	policy         entity.Policy
	now            Clock
}

func NewListLiveEventsUseCase(engagementRepo repository.EngagementRepository, policy entity.Policy, now Clock) *ListLiveEventsUseCase {
	return &ListLiveEventsUseCase{engagementRepo: engagementRepo, policy: policy, now: now}
}

func (uc *ListLiveEventsUseCase) Execute(ctx context.Context, input ListLiveEventsInput) ([]*entity.Engagement, int, error) {
	filter := repository.EngagementFilter{Status: string(valueobject.EngagementStatusAccepted)}
	filter.Limit, filter.Offset = NormalizePage(input.Limit, input.Offset)

	today := uc.policy.Today(uc.now())
	switch input.Scope {
	case "", LiveScopeUpcoming:
		filter.DateFrom = &today
	case LiveScopePast:
		filter.DateBefore = &today
		filter.Descending = true
	default:
		return nil, 0, apperror.New(apperror.ErrCodeValidation, "параметр scope должен быть upcoming или past")
	}

	return uc.engagementRepo.List(ctx, filter)
}

// NormalizePage приводит limit и offset к допустимым значениям.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
