package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hobbysphere/internal/app/models/dto"
	"github.com/yigit/hobbysphere/internal/app/services"
	"github.com/yigit/hobbysphere/internal/middleware"
)

// PostController handles feed post operations
type PostController struct {
	postService services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService services.PostService) *PostController {
	return &PostController{
		postService: postService,
	}
}

// CreatePost publishes a new post
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body dto.CreatePostRequest true "Post content"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /posts [post]
func (c *PostController) CreatePost(ctx *gin.Context) {
	var req dto.CreatePostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	post, err := c.postService.CreatePost(ctx.Request.Context(), req.Author.ToModel(), req.Text, req.Images)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromPost(post)))
}

// GetPost retrieves a post by ID
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [get]
func (c *PostController) GetPost(ctx *gin.Context) {
	post, err := c.postService.GetPost(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromPost(post)))
}

// ListPosts retrieves all posts
// @Summary List posts
// @Tags posts
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.PostResponse}
// @Router /posts [get]
func (c *PostController) ListPosts(ctx *gin.Context) {
	posts, err := c.postService.ListPosts(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromPosts(posts)))
}

// ToggleLike flips a user's like on a post
// @Summary Toggle a like
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body dto.LikeRequest true "Liking user"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Router /posts/{id}/like/toggle [post]
func (c *PostController) ToggleLike(ctx *gin.Context) {
	var req dto.LikeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	postID := ctx.Param("id")
	liked, err := c.postService.ToggleLike(ctx.Request.Context(), postID, req.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.writeLike(ctx, postID, liked)
}

// SetLike sets a user's like to an explicit state. Repeating a call is harmless.
// @Summary Set like state
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body dto.SetLikeRequest true "Desired state"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Router /posts/{id}/like [put]
func (c *PostController) SetLike(ctx *gin.Context) {
	var req dto.SetLikeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	postID := ctx.Param("id")
	liked, err := c.postService.SetLike(ctx.Request.Context(), postID, req.UserID, *req.Liked)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.writeLike(ctx, postID, liked)
}

func (c *PostController) writeLike(ctx *gin.Context, postID string, liked bool) {
	post, err := c.postService.GetPost(ctx.Request.Context(), postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.LikeResponse{
		Liked: liked,
		Likes: len(post.Likes),
	}))
}

// GetLike reports whether a user likes a post
// @Summary Check like state
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Param userId path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/like/{userId} [get]
func (c *PostController) GetLike(ctx *gin.Context) {
	postID := ctx.Param("id")
	liked, err := c.postService.IsLiked(ctx.Request.Context(), postID, ctx.Param("userId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.writeLike(ctx, postID, liked)
}

// AddComment appends a comment to a post
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body dto.AddCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=models.Comment}
// @Router /posts/{id}/comments [post]
func (c *PostController) AddComment(ctx *gin.Context) {
	var req dto.AddCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	comment, err := c.postService.AddComment(ctx.Request.Context(), ctx.Param("id"), req.Author.ToModel(), req.Text)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(comment))
}

// ToggleCommentLike flips a user's like on a post comment
// @Summary Toggle a comment like
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Param request body dto.LikeRequest true "Liking user"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Router /posts/{id}/comments/{commentId}/like [post]
func (c *PostController) ToggleCommentLike(ctx *gin.Context) {
	var req dto.LikeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	postID, commentID := ctx.Param("id"), ctx.Param("commentId")
	liked, err := c.postService.ToggleCommentLike(ctx.Request.Context(), postID, commentID, req.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	post, err := c.postService.GetPost(ctx.Request.Context(), postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	likes := 0
	for _, comment := range post.Comments {
		if comment.ID == commentID {
			likes = len(comment.Likes)
			break
		}
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.LikeResponse{Liked: liked, Likes: likes}))
}

// Share increments the share counter
// @Summary Share a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.ShareResponse}
// @Router /posts/{id}/share [post]
func (c *PostController) Share(ctx *gin.Context) {
	shares, err := c.postService.Share(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ShareResponse{Shares: shares}))
}
