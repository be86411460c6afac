package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/datatwine/CreateScale/internal/interface/http/dto"
	"github.com/datatwine/CreateScale/internal/interface/http/response"
	"github.com/datatwine/CreateScale/internal/usecase/engagement"
)

type EngagementHandler struct {
	createUC *engagement.CreateEngagementUseCase
	actionUC *engagement.PerformActionUseCase
	getUC    *engagement.GetEngagementUseCase
	listUC   *engagement.ListEngagementsUseCase
	liveUC   *engagement.ListLiveEventsUseCase
}

func NewEngagementHandler(
	createUC *engagement.CreateEngagementUseCase,
	actionUC *engagement.PerformActionUseCase,
	getUC *engagement.GetEngagementUseCase,
	listUC *engagement.ListEngagementsUseCase,
	liveUC *engagement.ListLiveEventsUseCase,
) *EngagementHandler {
	return &EngagementHandler{
		createUC: createUC,
		actionUC: actionUC,
		getUC:    getUC,
		listUC:   listUC,
		liveUC:   liveUC,
	}
}

// Hire обрабатывает POST /api/performers/:id/hire.
func (h *EngagementHandler) Hire(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	performerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID исполнителя")
		return
	}

	var req dto.HireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	date, clock, err := dto.ParseHireSchedule(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	created, err := h.createUC.Execute(c.Request.Context(), engagement.CreateEngagementInput{
		ClientID:    actor.UserID,
		PerformerID: performerID,
		Date:        date,
		Time:        clock,
		Venue:       req.Venue,
		Occasion:    req.Occasion,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToEngagementResponse(created))
}

// List обрабатывает GET /api/engagements?as=&status=&limit=&offset=.
func (h *EngagementHandler) List(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, offset := engagement.NormalizePage(
		parseIntQuery(c, "limit", engagement.DefaultListLimit),
		parseIntQuery(c, "offset", 0),
	)

	engagements, total, err := h.listUC.Execute(c.Request.Context(), engagement.ListEngagementsInput{
		Viewer: actor,
		As:     c.Query("as"),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToEngagementResponses(engagements), total, limit, offset)
}

// LiveEvents обрабатывает GET /api/engagements/live?scope=&limit=&offset=.
func (h *EngagementHandler) LiveEvents(c *gin.Context) {
	if _, err := getActor(c); err != nil {
		response.Error(c, err)
		return
	}

	limit, offset := engagement.NormalizePage(
		parseIntQuery(c, "limit", engagement.DefaultLiveEventsLimit),
		parseIntQuery(c, "offset", 0),
	)

	engagements, total, err := h.liveUC.Execute(c.Request.Context(), engagement.ListLiveEventsInput{
		Scope:  c.Query("scope"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToEngagementResponses(engagements), total, limit, offset)
}

// Get обрабатывает GET /api/engagements/:id.
func (h *EngagementHandler) Get(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	engagementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID заявки")
		return
	}

	e, err := h.getUC.Execute(c.Request.Context(), engagementID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToEngagementResponse(e))
}

// PerformAction обрабатывает POST /api/engagements/:id/action.
func (h *EngagementHandler) PerformAction(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	engagementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID заявки")
		return
	}

	var req dto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	e, err := h.actionUC.Execute(c.Request.Context(), engagement.PerformActionInput{
		EngagementID: engagementID,
		Actor:        actor,
		Action:       req.Action,
		Reason:       req.EmergencyReason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToEngagementResponse(e))
}
