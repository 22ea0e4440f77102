package controller

import (
	"dungeon_backend/internal/service"
	"dungeon_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InstructorController struct {
	InstructorService *service.InstructorService
}

func NewInstructorController(instructorService *service.InstructorService) *InstructorController {
	return &InstructorController{InstructorService: instructorService}
}

// @Summary 讲师状态
// @Tags 讲师
// @Produce json
// @Success 200 {object} util.Response{data=model.Instructor}
// @Router /instructor [get]
func (c *InstructorController) GetInstructor(ctx *gin.Context) {
	in, err := c.InstructorService.Get(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, in)
}

// @Summary 讲师统计
// @Description 称号、状态提示与全体学生正确率
// @Tags 讲师
// @Produce json
// @Success 200 {object} util.Response{data=service.InstructorStats}
// @Router /instructor/stats [get]
func (c *InstructorController) GetStats(ctx *gin.Context) {
	stats, err := c.InstructorService.Stats(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

type AdjustRageRequest struct {
	Delta int `json:"delta" binding:"required,min=-100,max=100"`
}

// @Summary 调整愤怒值
// @Tags 讲师
// @Accept json
// @Produce json
// @Param rage body AdjustRageRequest true "变化量，可为负"
// @Success 200 {object} util.Response{data=model.Instructor}
// @Router /instructor/rage [post]
func (c *InstructorController) AdjustRage(ctx *gin.Context) {
	var req AdjustRageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	in, err := c.InstructorService.AdjustRage(ctx.Request.Context(), req.Delta)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, in)
}

// @Summary 进化为父亲形态
// @Tags 讲师
// @Produce json
// @Success 200 {object} util.Response{data=model.Instructor}
// @Router /instructor/evolve [post]
func (c *InstructorController) Evolve(ctx *gin.Context) {
	in, err := c.InstructorService.EvolveToFather(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, in)
}

// @Summary 检查进化条件
// @Tags 讲师
// @Produce json
// @Success 200 {object} util.Response{data=service.EvolutionCheck}
// @Router /instructor/evolution [get]
func (c *InstructorController) CheckEvolution(ctx *gin.Context) {
	check, err := c.InstructorService.CheckEvolution(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, check)
}

// @Summary 满足条件时自动进化
// @Tags 讲师
// @Produce json
// @Success 200 {object} util.Response{data=service.EvolutionCheck}
// @Router /instructor/evolution/auto [post]
func (c *InstructorController) TryAutoEvolve(ctx *gin.Context) {
	check, err := c.InstructorService.TryAutoEvolve(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, check)
}

// @Summary 最近的讲师台词
// @Tags 讲师
// @Produce json
// @Param limit query int false "条数，默认 20"
// @Success 200 {object} util.Response
// @Router /instructor/dialogues [get]
func (c *InstructorController) RageHistory(ctx *gin.Context) {
	limit := util.ParseLimit(ctx.Query("limit"), util.DefaultHistoryLimit, util.MaxRankingLimit)
	history, err := c.InstructorService.RageHistory(ctx.Request.Context(), limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, history)
}
