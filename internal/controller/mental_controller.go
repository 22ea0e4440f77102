package controller

import (
	"dungeon_backend/internal/service"
	"dungeon_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MentalController struct {
	MentalService  *service.MentalService
	MissionService *service.MissionService
}

func NewMentalController(mentalService *service.MentalService, missionService *service.MissionService) *MentalController {
	return &MentalController{MentalService: mentalService, MissionService: missionService}
}

// @Summary 心态状态
// @Tags 心态
// @Produce json
// @Param id path string true "学生ID"
// @Success 200 {object} util.Response{data=model.MentalState}
// @Router /students/{id}/mental [get]
func (c *MentalController) GetState(ctx *gin.Context) {
	state, err := c.MentalService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

type RecoveryRequest struct {
	Amount int `json:"amount" binding:"required,min=1,max=100"`
}

// @Summary 直接恢复心态值
// @Tags 心态
// @Accept json
// @Produce json
// @Param id path string true "学生ID"
// @Param recovery body RecoveryRequest true "恢复量"
// @Success 200 {object} util.Response{data=service.RecoveryResult}
// @Router /students/{id}/mental/recovery [post]
func (c *MentalController) Recover(ctx *gin.Context) {
	var req RecoveryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.MentalService.CompleteRecovery(ctx.Request.Context(), ctx.Param("id"), req.Amount)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 恢复任务列表
// @Tags 心态
// @Produce json
// @Param type query string false "任务类型 word_quiz/self_praise/meditation"
// @Success 200 {object} util.Response
// @Router /missions [get]
func (c *MentalController) ListMissions(ctx *gin.Context) {
	missions, err := c.MissionService.ListActive(ctx.Request.Context(), ctx.Query("type"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, missions)
}

// @Summary 随机恢复任务
// @Tags 心态
// @Produce json
// @Param type query string false "任务类型"
// @Success 200 {object} util.Response{data=model.MentalRecoveryMission}
// @Router /missions/random [get]
func (c *MentalController) RandomMission(ctx *gin.Context) {
	mission, err := c.MissionService.RandomMission(ctx.Request.Context(), ctx.Query("type"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, mission)
}

type CompleteMissionRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	Answer    string `json:"answer"`
}

// @Summary 完成恢复任务
// @Description 校验答案后恢复心态值，失败时 success=false
// @Tags 心态
// @Accept json
// @Produce json
// @Param id path string true "任务ID"
// @Param mission body CompleteMissionRequest true "提交内容"
// @Success 200 {object} util.Response{data=service.MissionResult}
// @Router /missions/{id}/complete [post]
func (c *MentalController) CompleteMission(ctx *gin.Context) {
	var req CompleteMissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.MissionService.CompleteMission(ctx.Request.Context(), req.StudentID, ctx.Param("id"), req.Answer)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
