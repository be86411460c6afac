package entity

import (
	"time"

	"github.com/datatwine/CreateScale/internal/domain/valueobject"
	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

func ErrSelfHire() *apperror.AppError {
	return apperror.New(apperror.ErrCodeSelfHire, "нельзя нанять самого себя")
}

func ErrMissingFields(fields ...string) *apperror.AppError {
	return apperror.New(apperror.ErrCodeMissingFields, "дата и время обязательны").
		WithDetail("fields", fields)
}

func ErrDuplicateRequest(date time.Time) *apperror.AppError {
	return apperror.New(apperror.ErrCodeDuplicateRequest, "у вас уже есть заявка этому исполнителю на эту дату").
		WithDetail("date", valueobject.FormatDate(date))
}

func ErrClientLimitExceeded(limit int) *apperror.AppError {
	return apperror.New(apperror.ErrCodeClientLimitExceeded, "у вас уже есть максимум активных заявок, обратитесь к администратору, если нужен больший лимит").
		WithDetail("limit", limit)
}

func ErrInvalidState(action string, current valueobject.EngagementStatus, message string) *apperror.AppError {
	return apperror.New(apperror.ErrCodeInvalidState, message).
		WithDetail("action", action).
		WithDetail("status", string(current))
}

func ErrExpired(createdAt time.Time) *apperror.AppError {
	return apperror.New(apperror.ErrCodeExpired, "заявка истекла: исполнитель не ответил вовремя").
		WithDetail("created_at", createdAt)
}

func ErrDailyConflict(date time.Time) *apperror.AppError {
	return apperror.New(apperror.ErrCodeDailyConflict, "у исполнителя уже есть подтверждённое выступление в этот день").
		WithDetail("date", valueobject.FormatDate(date))
}

func ErrMissingReason() *apperror.AppError {
	return apperror.New(apperror.ErrCodeMissingReason, "отмена незадолго до события требует указать причину")
}
