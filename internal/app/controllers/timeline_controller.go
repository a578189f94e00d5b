package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/app/models/dto"
	"github.com/yigit/hobbysphere/internal/app/services"
	"github.com/yigit/hobbysphere/internal/middleware"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/helpers"
	"github.com/yigit/hobbysphere/internal/pkg/websocket"
)

// TimelineController serves the merged feed and the recent activity log
type TimelineController struct {
	timelineService services.TimelineService
	activity        *websocket.ActivityRecorder
}

// NewTimelineController creates a new TimelineController. activity may be nil,
// in which case the activity endpoint returns an empty list.
func NewTimelineController(timelineService services.TimelineService, activity *websocket.ActivityRecorder) *TimelineController {
	return &TimelineController{
		timelineService: timelineService,
		activity:        activity,
	}
}

// GetTimeline returns one page of the merged timeline, newest first
// @Summary Get the timeline
// @Tags timeline
// @Produce json
// @Param filter query string false "all, event, survey or post"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.TimelineResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown filter"
// @Router /timeline [get]
func (c *TimelineController) GetTimeline(ctx *gin.Context) {
	filter, err := models.ParseTimelineFilter(ctx.Query("filter"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items, err := c.timelineService.Build(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	start, end := helpers.CalculateSliceIndices(page, size, len(items))

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.TimelineResponse{
		Filter:     string(filter),
		Items:      dto.FromTimelineItems(items[start:end]),
		Pagination: helpers.NewPaginationInfo(len(items), page, size),
	}))
}

// GetActivity returns recent change notifications, newest first
// @Summary Get recent activity
// @Tags timeline
// @Produce json
// @Param kind query string false "event, survey or post"
// @Param limit query int false "Maximum number of entries"
// @Success 200 {object} dto.APIResponse{data=dto.ActivityResponse}
// @Router /activity [get]
func (c *TimelineController) GetActivity(ctx *gin.Context) {
	kind, ok := websocket.ParseKind(ctx.Query("kind"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("kind must be one of event, survey, post"))
		return
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	items := []websocket.Notification{}
	if c.activity != nil {
		recent, err := c.activity.Recent(ctx.Request.Context(), kind, limit)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		items = append(items, recent...)
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ActivityResponse{Items: items}))
}
