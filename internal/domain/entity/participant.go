package entity

import (
	"github.com/google/uuid"

	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

// Participant - ролевые флаги профиля, которые выдаёт сервис пользователей.
type Participant struct {
	UserID               uuid.UUID
	IsPerformer          bool
	IsPotentialClient    bool
	ClientApproved       bool
	ClientBlacklisted    bool
	PerformerBlacklisted bool
}

// EnsureCanHire проверяет, что пользователь может отправлять заявки.
func (p *Participant) EnsureCanHire() error {
	if !p.IsPotentialClient {
		return apperror.New(apperror.ErrCodeForbidden, "включите в профиле опцию «Я нанимаю исполнителей»")
	}
	if !p.ClientApproved {
		return apperror.New(apperror.ErrCodeForbidden, "администратор ещё не одобрил вас как заказчика")
	}
	if p.ClientBlacklisted {
		return apperror.New(apperror.ErrCodeForbidden, "вам временно запрещено нанимать исполнителей")
	}
	return nil
}

// EnsureHireable проверяет, что пользователя можно нанять.
func (p *Participant) EnsureHireable() error {
	if !p.IsPerformer || p.PerformerBlacklisted {
		return apperror.New(apperror.ErrCodeForbidden, "этот пользователь сейчас недоступен для найма")
	}
	return nil
}
