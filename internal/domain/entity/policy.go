package entity

import (
	"time"

	"github.com/datatwine/CreateScale/internal/domain/valueobject"
)

// Policy - бизнес-ограничения жизненного цикла заявки.
type Policy struct {
	// MaxActivePerClient - сколько будущих активных заявок может держать клиент.
	MaxActivePerClient int
	// ResponseWindow - сколько у исполнителя есть времени на ответ.
	ResponseWindow time.Duration
	// LastMinuteWindow - отмена ближе этого срока требует причины.
	LastMinuteWindow time.Duration
	// Location - зона, в которой заданы дата и время события.
	Location *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		MaxActivePerClient: 3,
		ResponseWindow:     24 * time.Hour,
		LastMinuteWindow:   24 * time.Hour,
		Location:           time.UTC,
	}
}

// Today - календарная дата момента now в зоне политики.
func (p Policy) Today(now time.Time) time.Time {
	return valueobject.DateOf(now, p.location())
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}
