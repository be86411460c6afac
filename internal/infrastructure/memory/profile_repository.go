package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]entity.Participant
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[uuid.UUID]entity.Participant)}
}

// Save добавляет или заменяет ролевые флаги пользователя.
func (r *ProfileRepository) Save(p entity.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = p
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, apperror.ErrProfileNotFound
	}
	return &p, nil
}
