package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hobbysphere/internal/app/controllers"
	"github.com/yigit/hobbysphere/internal/pkg/metrics"
	"github.com/yigit/hobbysphere/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	eventController *controllers.EventController,
	surveyController *controllers.SurveyController,
	postController *controllers.PostController,
	timelineController *controllers.TimelineController,
	wsHandler *websocket.Handler,
) {
	// API version group
	v1 := router.Group("/api/v1")

	events := v1.Group("/events")
	{
		events.GET("", eventController.ListEvents)
		events.POST("", eventController.CreateEvent)
		events.GET("/:id", eventController.GetEvent)
		events.POST("/:id/join", eventController.JoinEvent)
		events.POST("/:id/leave", eventController.LeaveEvent)
		events.GET("/:id/participants/:userId", eventController.GetParticipantStatus)
		events.POST("/:id/comments", eventController.AddComment)
		events.PUT("/:id/status", eventController.SetStatus)
	}

	surveys := v1.Group("/surveys")
	{
		surveys.GET("", surveyController.ListSurveys)
		surveys.POST("", surveyController.CreateSurvey)
		surveys.GET("/:id", surveyController.GetSurvey)
		surveys.POST("/:id/close", surveyController.CloseSurvey)
		surveys.POST("/:id/questions/:questionId/votes", surveyController.CastVote)
		surveys.GET("/:id/questions/:questionId/tally", surveyController.GetTally)
		surveys.GET("/:id/questions/:questionId/responses", surveyController.GetResponses)
	}

	posts := v1.Group("/posts")
	{
		posts.GET("", postController.ListPosts)
		posts.POST("", postController.CreatePost)
		posts.GET("/:id", postController.GetPost)
		posts.GET("/:id/like/:userId", postController.GetLike)
		posts.PUT("/:id/like", postController.SetLike)
		posts.POST("/:id/like/toggle", postController.ToggleLike)
		posts.POST("/:id/comments", postController.AddComment)
		posts.POST("/:id/comments/:commentId/like", postController.ToggleCommentLike)
		posts.POST("/:id/share", postController.Share)
	}

	v1.GET("/timeline", timelineController.GetTimeline)
	v1.GET("/activity", timelineController.GetActivity)

	// Change notifications
	if wsHandler != nil {
		v1.GET("/ws", wsHandler.HandleConnection)
	}

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
}
