package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hobbysphere/internal/app/models/dto"
	"github.com/yigit/hobbysphere/internal/app/services"
	"github.com/yigit/hobbysphere/internal/middleware"
)

// SurveyController handles survey-related operations
type SurveyController struct {
	surveyService services.SurveyService
}

// NewSurveyController creates a new SurveyController
func NewSurveyController(surveyService services.SurveyService) *SurveyController {
	return &SurveyController{
		surveyService: surveyService,
	}
}

// CreateSurvey handles survey creation
// @Summary Create a new survey
// @Tags surveys
// @Accept json
// @Produce json
// @Param request body dto.CreateSurveyRequest true "Survey definition"
// @Success 201 {object} dto.APIResponse{data=dto.SurveyResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /surveys [post]
func (c *SurveyController) CreateSurvey(ctx *gin.Context) {
	var req dto.CreateSurveyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	survey, err := c.surveyService.CreateSurvey(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromSurvey(survey)))
}

// GetSurvey retrieves a survey with current tallies
// @Summary Get survey details
// @Tags surveys
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {object} dto.APIResponse{data=dto.SurveyResponse}
// @Failure 404 {object} dto.ErrorResponse "Survey not found"
// @Router /surveys/{id} [get]
func (c *SurveyController) GetSurvey(ctx *gin.Context) {
	survey, err := c.surveyService.GetSurvey(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromSurvey(survey)))
}

// ListSurveys retrieves all surveys
// @Summary List surveys
// @Tags surveys
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.SurveyResponse}
// @Router /surveys [get]
func (c *SurveyController) ListSurveys(ctx *gin.Context) {
	surveys, err := c.surveyService.ListSurveys(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromSurveys(surveys)))
}

// CastVote records a vote or free-text answer and returns the fresh tally
// @Summary Vote on a question
// @Tags surveys
// @Accept json
// @Produce json
// @Param id path string true "Survey ID"
// @Param questionId path string true "Question ID"
// @Param request body dto.CastVoteRequest true "Vote"
// @Success 200 {object} dto.APIResponse{data=dto.TallyResponse}
// @Failure 400 {object} dto.ErrorResponse "Option is not configured"
// @Failure 404 {object} dto.ErrorResponse "Survey or question not found"
// @Failure 409 {object} dto.ErrorResponse "Survey is closed"
// @Router /surveys/{id}/questions/{questionId}/votes [post]
func (c *SurveyController) CastVote(ctx *gin.Context) {
	var req dto.CastVoteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	surveyID, questionID := ctx.Param("id"), ctx.Param("questionId")
	if err := c.surveyService.CastVote(ctx.Request.Context(), surveyID, questionID, req.UserID, req.Answer); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.writeTally(ctx, surveyID, questionID)
}

// GetTally returns fresh vote counts for one question
// @Summary Get question tally
// @Tags surveys
// @Produce json
// @Param id path string true "Survey ID"
// @Param questionId path string true "Question ID"
// @Success 200 {object} dto.APIResponse{data=dto.TallyResponse}
// @Router /surveys/{id}/questions/{questionId}/tally [get]
func (c *SurveyController) GetTally(ctx *gin.Context) {
	c.writeTally(ctx, ctx.Param("id"), ctx.Param("questionId"))
}

func (c *SurveyController) writeTally(ctx *gin.Context, surveyID, questionID string) {
	counts, err := c.surveyService.Tally(ctx.Request.Context(), surveyID, questionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.TallyResponse{
		SurveyID:   surveyID,
		QuestionID: questionID,
		Counts:     counts,
	}))
}

// GetResponses returns the free-text answers of a text question
// @Summary Get text responses
// @Tags surveys
// @Produce json
// @Param id path string true "Survey ID"
// @Param questionId path string true "Question ID"
// @Success 200 {object} dto.APIResponse{data=dto.ResponsesResponse}
// @Router /surveys/{id}/questions/{questionId}/responses [get]
func (c *SurveyController) GetResponses(ctx *gin.Context) {
	surveyID, questionID := ctx.Param("id"), ctx.Param("questionId")

	responses, err := c.surveyService.Responses(ctx.Request.Context(), surveyID, questionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ResponsesResponse{
		SurveyID:   surveyID,
		QuestionID: questionID,
		Responses:  responses,
	}))
}

// CloseSurvey stops a survey from accepting votes
// @Summary Close a survey
// @Tags surveys
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {object} dto.APIResponse{data=dto.SurveyResponse}
// @Router /surveys/{id}/close [post]
func (c *SurveyController) CloseSurvey(ctx *gin.Context) {
	survey, err := c.surveyService.CloseSurvey(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromSurvey(survey)))
}
