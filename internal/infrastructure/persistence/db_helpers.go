package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/domain/valueobject"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

const uniqueViolation = "23505"

// Имена частичных уникальных индексов из migrations/0001_init.sql.
const (
	activePairIndex  = "engagements_active_pair_uniq"
	acceptedDayIndex = "engagements_accepted_day_uniq"
)

// withTransaction выполняет fn в транзакции READ COMMITTED. Ошибка fn
// откатывает транзакцию и возвращается как есть.
func withTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось начать транзакцию")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("tx error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError(err, nil, "не удалось зафиксировать транзакцию")
	}
	return nil
}

// mapWriteError переводит нарушение уникальных индексов в доменные отказы.
func mapWriteError(err error, e *entity.Engagement, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		var date time.Time
		if e != nil {
			date = e.Date
		}
		switch pqErr.Constraint {
		case activePairIndex:
			return entity.ErrDuplicateRequest(date)
		case acceptedDayIndex:
			return entity.ErrDailyConflict(date)
		}
		return apperror.Wrap(err, apperror.ErrCodeConflict, message)
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

func dateArg(d time.Time) string {
	return valueobject.FormatDate(d)
}

func clockArg(c time.Time) string {
	return valueobject.FormatClock(c)
}
