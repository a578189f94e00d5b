package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/app/models/dto"
	"github.com/yigit/hobbysphere/internal/app/services"
	"github.com/yigit/hobbysphere/internal/middleware"
)

// EventController handles event-related operations
type EventController struct {
	eventService services.EventService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService) *EventController {
	return &EventController{
		eventService: eventService,
	}
}

// CreateEvent handles event creation
// @Summary Create a new event
// @Tags events
// @Accept json
// @Produce json
// @Param request body dto.CreateEventRequest true "Event information"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	var req dto.CreateEventRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.eventService.CreateEvent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromEvent(event)))
}

// GetEvent retrieves an event by ID
// @Summary Get event details
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	event, err := c.eventService.GetEvent(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromEvent(event)))
}

// ListEvents retrieves all events, optionally filtered by community
// @Summary List events
// @Tags events
// @Produce json
// @Param community query string false "Community tag"
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse}
// @Router /events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	events, err := c.eventService.ListEvents(ctx.Request.Context(), ctx.Query("community"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromEvents(events)))
}

// JoinEvent seats a user on an event. Refusals are reported in the body with
// status 200 and the matching error code as reason; only unknown events map
// to 404.
// @Summary Join an event
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.ParticipationRequest true "Joining user"
// @Success 200 {object} dto.APIResponse{data=dto.JoinEventResponse}
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/join [post]
func (c *EventController) JoinEvent(ctx *gin.Context) {
	var req dto.ParticipationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	eventID := ctx.Param("id")
	outcome, event, err := c.eventService.Join(ctx.Request.Context(), eventID, req.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	response := dto.JoinEventResponse{
		Joined:  outcome == models.JoinOutcomeJoined,
		Outcome: outcome.String(),
	}
	if refusal := outcome.Err(); refusal != nil {
		response.Reason = middleware.ErrorCodeOf(refusal)
	}
	if event != nil {
		eventResponse := dto.FromEvent(event)
		response.Event = &eventResponse
	}

	if outcome == models.JoinOutcomeEventNotFound {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Event not found").WithDetails(response)
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(errorDetail))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// LeaveEvent releases a user's seat
// @Summary Leave an event
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.ParticipationRequest true "Leaving user"
// @Success 200 {object} dto.APIResponse{data=dto.LeaveEventResponse}
// @Router /events/{id}/leave [post]
func (c *EventController) LeaveEvent(ctx *gin.Context) {
	var req dto.ParticipationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	left, err := c.eventService.LeaveEvent(ctx.Request.Context(), ctx.Param("id"), req.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.LeaveEventResponse{Left: left}))
}

// GetParticipantStatus reports whether a user holds a seat
// @Summary Check participation
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Param userId path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.ParticipantStatusResponse}
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/participants/{userId} [get]
func (c *EventController) GetParticipantStatus(ctx *gin.Context) {
	eventID, userID := ctx.Param("id"), ctx.Param("userId")

	isParticipant, err := c.eventService.IsParticipant(ctx.Request.Context(), eventID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ParticipantStatusResponse{
		EventID:       eventID,
		UserID:        userID,
		IsParticipant: isParticipant,
	}))
}

// AddComment appends a comment to an event
// @Summary Comment on an event
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.AddCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=models.Comment}
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/comments [post]
func (c *EventController) AddComment(ctx *gin.Context) {
	var req dto.AddCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	comment, err := c.eventService.AddEventComment(ctx.Request.Context(), ctx.Param("id"), req.Author.ToModel(), req.Text)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(comment))
}

// SetStatus stores an organizer decision about an event
// @Summary Change event status
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.SetEventStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse}
// @Router /events/{id}/status [put]
func (c *EventController) SetStatus(ctx *gin.Context) {
	var req dto.SetEventStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.eventService.SetEventStatus(ctx.Request.Context(), ctx.Param("id"), models.EventStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromEvent(event)))
}
