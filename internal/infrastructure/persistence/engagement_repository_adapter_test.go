package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datatwine/CreateScale/internal/db"
	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/domain/repository"
	"github.com/datatwine/CreateScale/internal/domain/valueobject"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

func TestMapWriteError(t *testing.T) {
	e := &entity.Engagement{Date: time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)}

	err := mapWriteError(&pq.Error{Code: uniqueViolation, Constraint: activePairIndex}, e, "insert")
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeDuplicateRequest))

	err = mapWriteError(&pq.Error{Code: uniqueViolation, Constraint: acceptedDayIndex}, e, "insert")
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeDailyConflict))

	err = mapWriteError(&pq.Error{Code: uniqueViolation, Constraint: "engagements_pkey"}, e, "insert")
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeConflict))

	cause := errors.New("connection reset")
	err = mapWriteError(cause, e, "insert")
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeDatabaseError))
	assert.ErrorIs(t, err, cause)
}

// testDB подключается к TEST_DATABASE_URL и накатывает миграции.
// Без переменной тест пропускается.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	conn, err := db.NewPostgres(ctx, dsn, db.DefaultPoolConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.RunMigrations(ctx, conn, filepath.Join("..", "..", "..", "migrations")))
	return conn
}

func newRow(t *testing.T, clientID, performerID uuid.UUID, date string) *entity.Engagement {
	t.Helper()
	d, err := valueobject.ParseDate(date)
	require.NoError(t, err)
	c, err := valueobject.ParseClock("18:30")
	require.NoError(t, err)
	e, err := entity.NewEngagement(clientID, performerID, d, c, "Hall", "Wedding", time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, err)
	return e
}

func insert(t *testing.T, repo *EngagementRepositoryAdapter, e *entity.Engagement) error {
	t.Helper()
	return repo.RunInTx(context.Background(), func(ctx context.Context, tx repository.EngagementTx) error {
		return tx.Create(ctx, e)
	})
}

func TestEngagementRepositoryAdapter_RoundTrip(t *testing.T) {
	repo := NewEngagementRepositoryAdapter(testDB(t))
	e := newRow(t, uuid.New(), uuid.New(), "2031-05-17")
	require.NoError(t, insert(t, repo, e))

	got, err := repo.FindByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, "2031-05-17", valueobject.FormatDate(got.Date))
	assert.Equal(t, "18:30:00", valueobject.FormatClock(got.Time))
	assert.Equal(t, valueobject.EngagementStatusPending, got.Status)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestEngagementRepositoryAdapter_UniqueIndexes(t *testing.T) {
	repo := NewEngagementRepositoryAdapter(testDB(t))
	clientID, performerID := uuid.New(), uuid.New()
	require.NoError(t, insert(t, repo, newRow(t, clientID, performerID, "2031-06-01")))

	err := insert(t, repo, newRow(t, clientID, performerID, "2031-06-01"))
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeDuplicateRequest), "got %v", err)

	first := newRow(t, uuid.New(), performerID, "2031-06-02")
	first.Status = valueobject.EngagementStatusAccepted
	require.NoError(t, insert(t, repo, first))

	second := newRow(t, uuid.New(), performerID, "2031-06-02")
	second.Status = valueobject.EngagementStatusAccepted
	err = insert(t, repo, second)
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeDailyConflict), "got %v", err)
}

func TestEngagementRepositoryAdapter_RollbackAndCascade(t *testing.T) {
	repo := NewEngagementRepositoryAdapter(testDB(t))
	ctx := context.Background()
	performerID := uuid.New()
	keep := newRow(t, uuid.New(), performerID, "2031-07-01")
	rival := newRow(t, uuid.New(), performerID, "2031-07-01")
	require.NoError(t, insert(t, repo, keep))
	require.NoError(t, insert(t, repo, rival))

	boom := errors.New("boom")
	err := repo.RunInTx(ctx, func(ctx context.Context, tx repository.EngagementTx) error {
		if _, err := tx.CancelPendingOnDay(ctx, performerID, keep.Date, keep.ID, time.Now()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.FindByID(ctx, rival.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.EngagementStatusPending, got.Status)

	var affected int64
	err = repo.RunInTx(ctx, func(ctx context.Context, tx repository.EngagementTx) error {
		var err error
		affected, err = tx.CancelPendingOnDay(ctx, performerID, keep.Date, keep.ID, time.Now())
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, err = repo.FindByID(ctx, rival.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.EngagementStatusCancelledByPerformer, got.Status)
}

func TestEngagementRepositoryAdapter_PerformerDayLockSerializes(t *testing.T) {
	repo := NewEngagementRepositoryAdapter(testDB(t))
	performerID := uuid.New()
	date := time.Date(2031, 8, 1, 0, 0, 0, 0, time.UTC)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders int
		maxSeen int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.RunInTx(context.Background(), func(ctx context.Context, tx repository.EngagementTx) error {
				if err := tx.LockPerformerDay(ctx, performerID, date); err != nil {
					return err
				}
				mu.Lock()
				holders++
				if holders > maxSeen {
					maxSeen = holders
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				holders--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestEngagementRepositoryAdapter_ListByDateRange(t *testing.T) {
	repo := NewEngagementRepositoryAdapter(testDB(t))
	ctx := context.Background()
	performerID := uuid.New()

	var ids []uuid.UUID
	for _, date := range []string{"2032-01-10", "2032-01-11", "2032-01-12"} {
		e := newRow(t, uuid.New(), performerID, date)
		require.NoError(t, insert(t, repo, e))
		ids = append(ids, e.ID)
	}

	pivot := time.Date(2032, 1, 11, 0, 0, 0, 0, time.UTC)
	list, total, err := repo.List(ctx, repository.EngagementFilter{
		PerformerID: &performerID,
		DateBefore:  &pivot,
		Descending:  true,
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, ids[0], list[0].ID)

	list, total, err = repo.List(ctx, repository.EngagementFilter{
		PerformerID: &performerID,
		DateFrom:    &pivot,
		Descending:  true,
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1]}, []uuid.UUID{list[0].ID, list[1].ID})
}
