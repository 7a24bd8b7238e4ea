package controller

import (
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type InsightController struct {
	Insights *service.InsightService
}

func NewInsightController(insights *service.InsightService) *InsightController {
	return &InsightController{Insights: insights}
}

// @Summary Topics where the caller loses the most marks
// @Tags insight
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "max topics (default 5)"
// @Success 200 {object} util.Response
// @Router /api/me/weak-topics [get]
func (c *InsightController) WeakTopics(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := 5
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			util.BadRequest(ctx, "limit must be between 1 and 50")
			return
		}
		limit = n
	}

	topics, err := c.Insights.WeakTopics(claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, topics)
}

// @Summary Current exam streak for the caller
// @Tags insight
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/me/streak [get]
func (c *InsightController) Streak(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	info, err := c.Insights.Streak(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, info)
}
