package controller

import (
	"dungeon_backend/internal/service"
	"dungeon_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RaidController struct {
	RaidService *service.RaidService
}

func NewRaidController(raidService *service.RaidService) *RaidController {
	return &RaidController{RaidService: raidService}
}

// @Summary 可挑战的 boss
// @Tags 副本
// @Produce json
// @Success 200 {object} util.Response
// @Router /raids/bosses [get]
func (c *RaidController) ListBosses(ctx *gin.Context) {
	bosses, err := c.RaidService.ActiveBosses(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, bosses)
}

// @Summary 进行中的会话
// @Tags 副本
// @Produce json
// @Success 200 {object} util.Response
// @Router /raids/sessions [get]
func (c *RaidController) ListSessions(ctx *gin.Context) {
	sessions, err := c.RaidService.ActiveSessions(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

type CreateRaidRequest struct {
	BossID  string  `json:"bossId" binding:"required"`
	GroupID *string `json:"groupId"`
}

// @Summary 创建副本会话
// @Tags 副本
// @Accept json
// @Produce json
// @Param raid body CreateRaidRequest true "boss 与分组"
// @Success 201 {object} util.Response{data=model.RaidSession}
// @Router /raids/sessions [post]
func (c *RaidController) CreateSession(ctx *gin.Context) {
	var req CreateRaidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.RaidService.Create(ctx.Request.Context(), req.BossID, req.GroupID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// @Summary 会话详情
// @Description 包含 boss 信息和按伤害排序的参与者
// @Tags 副本
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.RaidDetails}
// @Router /raids/sessions/{id} [get]
func (c *RaidController) GetSession(ctx *gin.Context) {
	details, err := c.RaidService.Details(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, details)
}

// @Summary 会话题目
// @Tags 副本
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /raids/sessions/{id}/quizzes [get]
func (c *RaidController) ListQuizzes(ctx *gin.Context) {
	quizzes, err := c.RaidService.BossQuizzes(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

type RaidStudentRequest struct {
	StudentID string `json:"studentId" binding:"required"`
}

// @Summary 加入副本
// @Tags 副本
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param student body RaidStudentRequest true "学生"
// @Success 200 {object} util.Response{data=model.RaidParticipant}
// @Router /raids/sessions/{id}/join [post]
func (c *RaidController) Join(ctx *gin.Context) {
	var req RaidStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	participant, err := c.RaidService.Join(ctx.Request.Context(), ctx.Param("id"), req.StudentID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, participant)
}

// @Summary 开始副本
// @Description 人数不足时返回 409
// @Tags 副本
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=model.RaidSession}
// @Router /raids/sessions/{id}/start [post]
func (c *RaidController) Start(ctx *gin.Context) {
	session, err := c.RaidService.Start(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

type RaidAnswerRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	QuizID    string `json:"quizId" binding:"required"`
	Answer    string `json:"answer"`
}

// @Summary 副本答题
// @Description 答对按 boss 的 damagePerCorrect 造成伤害
// @Tags 副本
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param answer body RaidAnswerRequest true "作答"
// @Success 200 {object} util.Response{data=service.RaidAnswerResult}
// @Router /raids/sessions/{id}/answers [post]
func (c *RaidController) SubmitAnswer(ctx *gin.Context) {
	var req RaidAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.RaidService.SubmitAnswer(ctx.Request.Context(), ctx.Param("id"), req.StudentID, req.QuizID, req.Answer)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 领取副本奖励
// @Description 仅成功的会话可领取，每名参与者一次
// @Tags 副本
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param student body RaidStudentRequest true "学生"
// @Success 200 {object} util.Response{data=service.RewardResult}
// @Router /raids/sessions/{id}/reward [post]
func (c *RaidController) ClaimReward(ctx *gin.Context) {
	var req RaidStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.RaidService.ClaimReward(ctx.Request.Context(), ctx.Param("id"), req.StudentID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
