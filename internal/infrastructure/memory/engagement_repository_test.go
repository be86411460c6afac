package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/domain/repository"
	"github.com/datatwine/CreateScale/internal/domain/valueobject"
	"github.com/datatwine/CreateScale/internal/infrastructure/memory"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newEngagement(t *testing.T, clientID, performerID uuid.UUID, date string) *entity.Engagement {
	t.Helper()
	d, err := valueobject.ParseDate(date)
	require.NoError(t, err)
	c, err := valueobject.ParseClock("18:00")
	require.NoError(t, err)
	e, err := entity.NewEngagement(clientID, performerID, d, c, "Venue", "Party", now)
	require.NoError(t, err)
	return e
}

func create(t *testing.T, repo *memory.EngagementRepository, e *entity.Engagement) {
	t.Helper()
	err := repo.RunInTx(context.Background(), func(ctx context.Context, tx repository.EngagementTx) error {
		return tx.Create(ctx, e)
	})
	require.NoError(t, err)
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	repo := memory.NewEngagementRepository()
	ctx := context.Background()
	e := newEngagement(t, uuid.New(), uuid.New(), "2026-10-25")
	boom := errors.New("boom")

	err := repo.RunInTx(ctx, func(ctx context.Context, tx repository.EngagementTx) error {
		if err := tx.Create(ctx, e); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.FindByID(ctx, e.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRunInTx_CommitsOnSuccess(t *testing.T) {
	repo := memory.NewEngagementRepository()
	e := newEngagement(t, uuid.New(), uuid.New(), "2026-10-25")
	create(t, repo, e)

	stored, err := repo.FindByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Venue, stored.Venue)
}

func TestFindByID_ReturnsCopy(t *testing.T) {
	repo := memory.NewEngagementRepository()
	ctx := context.Background()
	e := newEngagement(t, uuid.New(), uuid.New(), "2026-10-25")
	create(t, repo, e)

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	got.Status = valueobject.EngagementStatusAccepted

	again, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.EngagementStatusPending, again.Status)
}

func TestCreate_UniqueBackstops(t *testing.T) {
	repo := memory.NewEngagementRepository()
	ctx := context.Background()
	clientID, performerID := uuid.New(), uuid.New()
	create(t, repo, newEngagement(t, clientID, performerID, "2026-10-25"))

	err := repo.RunInTx(ctx, func(ctx context.Context, tx repository.EngagementTx) error {
		return tx.Create(ctx, newEngagement(t, clientID, performerID, "2026-10-25"))
	})
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeDuplicateRequest))

	first := newEngagement(t, uuid.New(), performerID, "2026-10-26")
	first.Status = valueobject.EngagementStatusAccepted
	create(t, repo, first)

	second := newEngagement(t, uuid.New(), performerID, "2026-10-26")
	second.Status = valueobject.EngagementStatusAccepted
	err = repo.RunInTx(ctx, func(ctx context.Context, tx repository.EngagementTx) error {
		return tx.Create(ctx, second)
	})
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeDailyConflict))
}

func TestCancelPendingOnDay(t *testing.T) {
	repo := memory.NewEngagementRepository()
	ctx := context.Background()
	performerID := uuid.New()

	keep := newEngagement(t, uuid.New(), performerID, "2026-10-25")
	rival := newEngagement(t, uuid.New(), performerID, "2026-10-25")
	otherDay := newEngagement(t, uuid.New(), performerID, "2026-10-26")
	for _, e := range []*entity.Engagement{keep, rival, otherDay} {
		create(t, repo, e)
	}

	later := now.Add(time.Hour)
	var affected int64
	err := repo.RunInTx(ctx, func(ctx context.Context, tx repository.EngagementTx) error {
		var err error
		affected, err = tx.CancelPendingOnDay(ctx, performerID, keep.Date, keep.ID, later)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, _ := repo.FindByID(ctx, rival.ID)
	assert.Equal(t, valueobject.EngagementStatusCancelledByPerformer, got.Status)
	assert.Empty(t, got.PerformerCancelReason)
	assert.Equal(t, later, got.UpdatedAt)

	got, _ = repo.FindByID(ctx, keep.ID)
	assert.Equal(t, valueobject.EngagementStatusPending, got.Status)
	got, _ = repo.FindByID(ctx, otherDay.ID)
	assert.Equal(t, valueobject.EngagementStatusPending, got.Status)
}

func TestList_FiltersAndPaginates(t *testing.T) {
	repo := memory.NewEngagementRepository()
	ctx := context.Background()
	userID := uuid.New()

	late := newEngagement(t, userID, uuid.New(), "2026-10-28")
	early := newEngagement(t, uuid.New(), userID, "2026-10-21")
	foreign := newEngagement(t, uuid.New(), uuid.New(), "2026-10-22")
	for _, e := range []*entity.Engagement{late, early, foreign} {
		create(t, repo, e)
	}

	list, total, err := repo.List(ctx, repository.EngagementFilter{ParticipantID: &userID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, early.ID, list[0].ID)
	assert.Equal(t, late.ID, list[1].ID)

	list, total, err = repo.List(ctx, repository.EngagementFilter{ClientID: &userID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, late.ID, list[0].ID)

	list, total, err = repo.List(ctx, repository.EngagementFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 1)
	assert.Equal(t, foreign.ID, list[0].ID)
}

func TestList_DateRangeAndDescending(t *testing.T) {
	repo := memory.NewEngagementRepository()
	ctx := context.Background()

	first := newEngagement(t, uuid.New(), uuid.New(), "2026-10-20")
	second := newEngagement(t, uuid.New(), uuid.New(), "2026-10-21")
	third := newEngagement(t, uuid.New(), uuid.New(), "2026-10-22")
	for _, e := range []*entity.Engagement{first, second, third} {
		create(t, repo, e)
	}

	pivot := second.Date
	list, total, err := repo.List(ctx, repository.EngagementFilter{DateFrom: &pivot})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []uuid.UUID{second.ID, third.ID}, []uuid.UUID{list[0].ID, list[1].ID})

	list, total, err = repo.List(ctx, repository.EngagementFilter{DateBefore: &pivot, Descending: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, first.ID, list[0].ID)

	list, _, err = repo.List(ctx, repository.EngagementFilter{Descending: true})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uuid.UUID{third.ID, second.ID, first.ID}, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})
}
