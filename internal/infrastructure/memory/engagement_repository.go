// Package memory хранит данные в памяти процесса. Используется для локального
// запуска без PostgreSQL и как хранилище в тестах сценариев.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/domain/repository"
	"github.com/datatwine/CreateScale/internal/domain/valueobject"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

// EngagementRepository сериализует все атомарные единицы одним мьютексом.
// Единица работает со снимком и публикует его только при успехе.
type EngagementRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.Engagement
}

func NewEngagementRepository() *EngagementRepository {
	return &EngagementRepository{rows: make(map[uuid.UUID]*entity.Engagement)}
}

func (r *EngagementRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Engagement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return findByID(r.rows, id)
}

func (r *EngagementRepository) List(ctx context.Context, filter repository.EngagementFilter) ([]*entity.Engagement, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entity.Engagement
	for _, e := range r.rows {
		if filter.ClientID != nil && e.ClientID != *filter.ClientID {
			continue
		}
		if filter.PerformerID != nil && e.PerformerID != *filter.PerformerID {
			continue
		}
		if filter.ParticipantID != nil && !e.IsParticipant(*filter.ParticipantID) {
			continue
		}
		if filter.Status != "" && string(e.Status) != filter.Status {
			continue
		}
		if filter.DateFrom != nil && e.Date.Before(valueobject.NormalizeDate(*filter.DateFrom)) {
			continue
		}
		if filter.DateBefore != nil && !e.Date.Before(valueobject.NormalizeDate(*filter.DateBefore)) {
			continue
		}
		matched = append(matched, clone(e))
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if filter.Descending {
			a, b = b, a
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= total {
			return []*entity.Engagement{}, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, total, nil
}

func (r *EngagementRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.EngagementTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := make(map[uuid.UUID]*entity.Engagement, len(r.rows))
	for id, e := range r.rows {
		snapshot[id] = clone(e)
	}

	if err := fn(ctx, &engagementTx{rows: snapshot}); err != nil {
		return err
	}

	r.rows = snapshot
	return nil
}

type engagementTx struct {
	rows map[uuid.UUID]*entity.Engagement
}

// Блокировки не нужны: единица уже держит мьютекс хранилища.
func (tx *engagementTx) LockClient(ctx context.Context, clientID uuid.UUID) error {
	return nil
}

func (tx *engagementTx) LockPerformerDay(ctx context.Context, performerID uuid.UUID, date time.Time) error {
	return nil
}

func (tx *engagementTx) FindByID(ctx context.Context, id uuid.UUID) (*entity.Engagement, error) {
	return findByID(tx.rows, id)
}

func (tx *engagementTx) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Engagement, error) {
	return findByID(tx.rows, id)
}

func (tx *engagementTx) HasActiveForPair(ctx context.Context, clientID, performerID uuid.UUID, date time.Time) (bool, error) {
	for _, e := range tx.rows {
		if e.ClientID == clientID && e.PerformerID == performerID && sameDay(e.Date, date) && e.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (tx *engagementTx) CountActiveFrom(ctx context.Context, clientID uuid.UUID, from time.Time) (int, error) {
	from = valueobject.NormalizeDate(from)
	count := 0
	for _, e := range tx.rows {
		if e.ClientID == clientID && e.Status.IsActive() && !e.Date.Before(from) {
			count++
		}
	}
	return count, nil
}

func (tx *engagementTx) HasAcceptedOnDay(ctx context.Context, performerID uuid.UUID, date time.Time, excludeID uuid.UUID) (bool, error) {
	for _, e := range tx.rows {
		if e.ID != excludeID && e.PerformerID == performerID && sameDay(e.Date, date) &&
			e.Status == valueobject.EngagementStatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (tx *engagementTx) CancelPendingOnDay(ctx context.Context, performerID uuid.UUID, date time.Time, excludeID uuid.UUID, at time.Time) (int64, error) {
	var affected int64
	for _, e := range tx.rows {
		if e.ID != excludeID && e.PerformerID == performerID && sameDay(e.Date, date) &&
			e.Status == valueobject.EngagementStatusPending {
			e.Status = valueobject.EngagementStatusCancelledByPerformer
			e.UpdatedAt = at
			affected++
		}
	}
	return affected, nil
}

func (tx *engagementTx) Create(ctx context.Context, e *entity.Engagement) error {
	if _, exists := tx.rows[e.ID]; exists {
		return apperror.New(apperror.ErrCodeConflict, "заявка с таким ID уже существует")
	}
	if err := tx.checkUnique(e); err != nil {
		return err
	}
	tx.rows[e.ID] = clone(e)
	return nil
}

func (tx *engagementTx) Update(ctx context.Context, e *entity.Engagement) error {
	if _, exists := tx.rows[e.ID]; !exists {
		return apperror.ErrEngagementNotFound
	}
	if err := tx.checkUnique(e); err != nil {
		return err
	}
	tx.rows[e.ID] = clone(e)
	return nil
}

// checkUnique повторяет частичные уникальные индексы таблицы engagements.
func (tx *engagementTx) checkUnique(e *entity.Engagement) error {
	for _, other := range tx.rows {
		if other.ID == e.ID || !sameDay(other.Date, e.Date) {
			continue
		}
		if e.Status.IsActive() && other.Status.IsActive() &&
			other.ClientID == e.ClientID && other.PerformerID == e.PerformerID {
			return entity.ErrDuplicateRequest(e.Date)
		}
		if e.Status == valueobject.EngagementStatusAccepted && other.Status == valueobject.EngagementStatusAccepted &&
			other.PerformerID == e.PerformerID {
			return entity.ErrDailyConflict(e.Date)
		}
	}
	return nil
}

func findByID(rows map[uuid.UUID]*entity.Engagement, id uuid.UUID) (*entity.Engagement, error) {
	e, ok := rows[id]
	if !ok {
		return nil, apperror.ErrEngagementNotFound
	}
	return clone(e), nil
}

func sameDay(a, b time.Time) bool {
	return valueobject.NormalizeDate(a).Equal(valueobject.NormalizeDate(b))
}

func clone(e *entity.Engagement) *entity.Engagement {
	c := *e
	return &c
}
