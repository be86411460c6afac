package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/datatwine/CreateScale/internal/domain/entity"
)

// EngagementRepository - хранилище заявок. Все изменения идут через RunInTx.
type EngagementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Engagement, error)
	List(ctx context.Context, filter EngagementFilter) ([]*entity.Engagement, int, error)

	// RunInTx выполняет fn как одну атомарную единицу. Если fn вернула ошибку,
	// ни одна запись не сохраняется. Конфликтующие единицы сериализуются через
	// блокировки EngagementTx.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx EngagementTx) error) error
}

// EngagementTx - операции, доступные внутри атомарной единицы.
type EngagementTx interface {
	// LockClient сериализует создание заявок одного клиента.
	LockClient(ctx context.Context, clientID uuid.UUID) error
	// LockPerformerDay сериализует принятие заявок исполнителя на дату.
	LockPerformerDay(ctx context.Context, performerID uuid.UUID, date time.Time) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Engagement, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Engagement, error)

	HasActiveForPair(ctx context.Context, clientID, performerID uuid.UUID, date time.Time) (bool, error)
	CountActiveFrom(ctx context.Context, clientID uuid.UUID, from time.Time) (int, error)
	HasAcceptedOnDay(ctx context.Context, performerID uuid.UUID, date time.Time, excludeID uuid.UUID) (bool, error)
	// CancelPendingOnDay массово отменяет ожидающие заявки исполнителя на дату
	// без причины и без проверок отмены.
	CancelPendingOnDay(ctx context.Context, performerID uuid.UUID, date time.Time, excludeID uuid.UUID, at time.Time) (int64, error)

	Create(ctx context.Context, e *entity.Engagement) error
	Update(ctx context.Context, e *entity.Engagement) error
}

type EngagementFilter struct {
	ClientID      *uuid.UUID
	PerformerID   *uuid.UUID
	ParticipantID *uuid.UUID
	Status        string
	// DateFrom и DateBefore задают полуинтервал [DateFrom, DateBefore) по дате события.
	DateFrom   *time.Time
	DateBefore *time.Time
	// Descending сортирует по убыванию даты и времени.
	Descending bool
	Limit      int
	Offset     int
}
