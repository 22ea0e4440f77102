package controller

import (
	"dungeon_backend/internal/service"
	"dungeon_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RankingController struct {
	RankingService *service.RankingService
}

func NewRankingController(rankingService *service.RankingService) *RankingController {
	return &RankingController{RankingService: rankingService}
}

// @Summary 学生排行榜
// @Tags 排行
// @Produce json
// @Param limit query int false "条数，默认 10，最大 100"
// @Success 200 {object} util.Response
// @Router /rankings [get]
func (c *RankingController) Top(ctx *gin.Context) {
	limit := util.ParseLimit(ctx.Query("limit"), util.DefaultRankingLimit, util.MaxRankingLimit)
	students, err := c.RankingService.Top(ctx.Request.Context(), limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, students)
}
