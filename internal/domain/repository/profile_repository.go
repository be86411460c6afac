package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/datatwine/CreateScale/internal/domain/entity"
)

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Participant, error)
}
