package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

type profileRow struct {
	UserID               uuid.UUID `db:"user_id"`
	IsPerformer          bool      `db:"is_performer"`
	IsPotentialClient    bool      `db:"is_potential_client"`
	ClientApproved       bool      `db:"client_approved"`
	ClientBlacklisted    bool      `db:"client_blacklisted"`
	PerformerBlacklisted bool      `db:"performer_blacklisted"`
}

// ProfileRepositoryAdapter читает ролевые флаги из таблицы profiles,
// которую ведёт сервис пользователей.
type ProfileRepositoryAdapter struct {
	db *sqlx.DB
}

func NewProfileRepositoryAdapter(db *sqlx.DB) *ProfileRepositoryAdapter {
	return &ProfileRepositoryAdapter{db: db}
}

func (r *ProfileRepositoryAdapter) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Participant, error) {
	query := `
		SELECT user_id, is_performer, is_potential_client, client_approved,
		       client_blacklisted, performer_blacklisted
		FROM profiles
		WHERE user_id = $1
	`

	var row profileRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrProfileNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить профиль")
	}

	p := entity.Participant(row)
	return &p, nil
}
