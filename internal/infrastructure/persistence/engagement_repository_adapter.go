package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/domain/repository"
	"github.com/datatwine/CreateScale/internal/domain/valueobject"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

const engagementColumns = `id, client_id, performer_id, date, time, venue, occasion, status,
	client_cancel_reason, performer_cancel_reason, created_at, updated_at`

type engagementRow struct {
	ID                    uuid.UUID `db:"id"`
	ClientID              uuid.UUID `db:"client_id"`
	PerformerID           uuid.UUID `db:"performer_id"`
	Date                  time.Time `db:"date"`
	Time                  time.Time `db:"time"`
	Venue                 string    `db:"venue"`
	Occasion              string    `db:"occasion"`
	Status                string    `db:"status"`
	ClientCancelReason    string    `db:"client_cancel_reason"`
	PerformerCancelReason string    `db:"performer_cancel_reason"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

func (r engagementRow) toEntity() *entity.Engagement {
	return &entity.Engagement{
		ID:                    r.ID,
		ClientID:              r.ClientID,
		PerformerID:           r.PerformerID,
		Date:                  valueobject.NormalizeDate(r.Date),
		Time:                  valueobject.NormalizeClock(r.Time),
		Venue:                 r.Venue,
		Occasion:              r.Occasion,
		Status:                valueobject.EngagementStatus(r.Status),
		ClientCancelReason:    r.ClientCancelReason,
		PerformerCancelReason: r.PerformerCancelReason,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

type EngagementRepositoryAdapter struct {
	db *sqlx.DB
}

func NewEngagementRepositoryAdapter(db *sqlx.DB) *EngagementRepositoryAdapter {
	return &EngagementRepositoryAdapter{db: db}
}

func (r *EngagementRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Engagement, error) {
	return findEngagement(ctx, r.db, `SELECT `+engagementColumns+` FROM engagements WHERE id = $1`, id)
}

func (r *EngagementRepositoryAdapter) List(ctx context.Context, filter repository.EngagementFilter) ([]*entity.Engagement, int, error) {
	baseQuery := `FROM engagements WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.ClientID != nil {
		baseQuery += fmt.Sprintf(" AND client_id = $%d", argNum)
		args = append(args, *filter.ClientID)
		argNum++
	}

	if filter.PerformerID != nil {
		baseQuery += fmt.Sprintf(" AND performer_id = $%d", argNum)
		args = append(args, *filter.PerformerID)
		argNum++
	}

	if filter.ParticipantID != nil {
		baseQuery += fmt.Sprintf(" AND (client_id = $%d OR performer_id = $%d)", argNum, argNum)
		args = append(args, *filter.ParticipantID)
		argNum++
	}

	if filter.Status != "" {
		baseQuery += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filter.Status)
		argNum++
	}

	if filter.DateFrom != nil {
		baseQuery += fmt.Sprintf(" AND date >= $%d::date", argNum)
		args = append(args, dateArg(*filter.DateFrom))
		argNum++
	}

	if filter.DateBefore != nil {
		baseQuery += fmt.Sprintf(" AND date < $%d::date", argNum)
		args = append(args, dateArg(*filter.DateBefore))
		argNum++
	}

	order := "date, time, created_at"
	if filter.Descending {
		order = "date DESC, time DESC, created_at DESC"
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать заявки")
	}

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		engagementColumns, baseQuery, order, argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var rows []engagementRow
	if err := r.db.SelectContext(ctx, &rows, selectQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявки")
	}

	engagements := make([]*entity.Engagement, 0, len(rows))
	for _, row := range rows {
		engagements = append(engagements, row.toEntity())
	}

	return engagements, total, nil
}

func (r *EngagementRepositoryAdapter) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.EngagementTx) error) error {
	return withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(ctx, &engagementTx{tx: tx})
	})
}

type engagementTx struct {
	tx *sqlx.Tx
}

func (t *engagementTx) LockClient(ctx context.Context, clientID uuid.UUID) error {
	return t.advisoryLock(ctx, "client:"+clientID.String())
}

func (t *engagementTx) LockPerformerDay(ctx context.Context, performerID uuid.UUID, date time.Time) error {
	return t.advisoryLock(ctx, "performer-day:"+performerID.String()+":"+dateArg(date))
}

// advisoryLock держит блокировку до конца транзакции.
func (t *engagementTx) advisoryLock(ctx context.Context, key string) error {
	if _, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить блокировку")
	}
	return nil
}

func (t *engagementTx) FindByID(ctx context.Context, id uuid.UUID) (*entity.Engagement, error) {
	return findEngagement(ctx, t.tx, `SELECT `+engagementColumns+` FROM engagements WHERE id = $1`, id)
}

func (t *engagementTx) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Engagement, error) {
	return findEngagement(ctx, t.tx, `SELECT `+engagementColumns+` FROM engagements WHERE id = $1 FOR UPDATE`, id)
}

func (t *engagementTx) HasActiveForPair(ctx context.Context, clientID, performerID uuid.UUID, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM engagements
			WHERE client_id = $1 AND performer_id = $2 AND date = $3::date
			  AND status IN ('pending', 'accepted')
		)
	`
	var exists bool
	if err := t.tx.GetContext(ctx, &exists, query, clientID, performerID, dateArg(date)); err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить повторную заявку")
	}
	return exists, nil
}

func (t *engagementTx) CountActiveFrom(ctx context.Context, clientID uuid.UUID, from time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM engagements
		WHERE client_id = $1 AND date >= $2::date AND status IN ('pending', 'accepted')
	`
	var count int
	if err := t.tx.GetContext(ctx, &count, query, clientID, dateArg(from)); err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать активные заявки")
	}
	return count, nil
}

func (t *engagementTx) HasAcceptedOnDay(ctx context.Context, performerID uuid.UUID, date time.Time, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM engagements
			WHERE performer_id = $1 AND date = $2::date AND status = 'accepted' AND id <> $3
		)
	`
	var exists bool
	if err := t.tx.GetContext(ctx, &exists, query, performerID, dateArg(date), excludeID); err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить занятость исполнителя")
	}
	return exists, nil
}

func (t *engagementTx) CancelPendingOnDay(ctx context.Context, performerID uuid.UUID, date time.Time, excludeID uuid.UUID, at time.Time) (int64, error) {
	query := `
		UPDATE engagements
		SET status = 'cancelled_by_performer', updated_at = $4
		WHERE performer_id = $1 AND date = $2::date AND status = 'pending' AND id <> $3
	`
	result, err := t.tx.ExecContext(ctx, query, performerID, dateArg(date), excludeID, at)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отменить конкурирующие заявки")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат отмены")
	}
	return affected, nil
}

func (t *engagementTx) Create(ctx context.Context, e *entity.Engagement) error {
	query := `
		INSERT INTO engagements (` + engagementColumns + `)
		VALUES ($1, $2, $3, $4::date, $5::time, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := t.tx.ExecContext(ctx, query,
		e.ID,
		e.ClientID,
		e.PerformerID,
		dateArg(e.Date),
		clockArg(e.Time),
		e.Venue,
		e.Occasion,
		string(e.Status),
		e.ClientCancelReason,
		e.PerformerCancelReason,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, e, "не удалось создать заявку")
	}
	return nil
}

// Update меняет только изменяемые поля: статус, причины отмены и updated_at.
func (t *engagementTx) Update(ctx context.Context, e *entity.Engagement) error {
	query := `
		UPDATE engagements
		SET status = $2, client_cancel_reason = $3, performer_cancel_reason = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := t.tx.ExecContext(ctx, query,
		e.ID,
		string(e.Status),
		e.ClientCancelReason,
		e.PerformerCancelReason,
		e.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, e, "не удалось обновить заявку")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	if rows == 0 {
		return apperror.ErrEngagementNotFound
	}
	return nil
}

func findEngagement(ctx context.Context, q sqlx.QueryerContext, query string, id uuid.UUID) (*entity.Engagement, error) {
	var row engagementRow
	if err := sqlx.GetContext(ctx, q, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrEngagementNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку")
	}
	return row.toEntity(), nil
}
