package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/datatwine/CreateScale/internal/domain/entity"
	"github.com/datatwine/CreateScale/internal/domain/valueobject"
)

// HireRequest - тело POST /api/performers/:id/hire.
// Пустые date и time доходят до домена и дают MISSING_FIELDS.
type HireRequest struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Venue    string `json:"venue"`
	Occasion string `json:"occasion"`
}

type ActionRequest struct {
	Action          string `json:"action" binding:"required"`
	EmergencyReason string `json:"emergency_reason"`
}

type EngagementResponse struct {
	ID                    uuid.UUID `json:"id"`
	ClientID              uuid.UUID `json:"client_id"`
	PerformerID           uuid.UUID `json:"performer_id"`
	Date                  string    `json:"date"`
	Time                  string    `json:"time"`
	Venue                 string    `json:"venue"`
	Occasion              string    `json:"occasion"`
	Status                string    `json:"status"`
	ClientCancelReason    string    `json:"client_cancel_reason"`
	PerformerCancelReason string    `json:"performer_cancel_reason"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// ParseHireSchedule разбирает дату и время. Пустое поле остаётся нулевым.
func ParseHireSchedule(req HireRequest) (date, clock time.Time, err error) {
	if req.Date != "" {
		if date, err = valueobject.ParseDate(req.Date); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if req.Time != "" {
		if clock, err = valueobject.ParseClock(req.Time); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return date, clock, nil
}

func ToEngagementResponse(e *entity.Engagement) EngagementResponse {
	return EngagementResponse{
		ID:                    e.ID,
		ClientID:              e.ClientID,
		PerformerID:           e.PerformerID,
		Date:                  valueobject.FormatDate(e.Date),
		Time:                  valueobject.FormatClock(e.Time),
		Venue:                 e.Venue,
		Occasion:              e.Occasion,
		Status:                string(e.Status),
		ClientCancelReason:    e.ClientCancelReason,
		PerformerCancelReason: e.PerformerCancelReason,
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
	}
}

func ToEngagementResponses(engagements []*entity.Engagement) []EngagementResponse {
	resp := make([]EngagementResponse, 0, len(engagements))
	for _, e := range engagements {
		resp = append(resp, ToEngagementResponse(e))
	}
	return resp
}
