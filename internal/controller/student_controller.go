package controller

import (
	"dungeon_backend/internal/service"
	"dungeon_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	StudentService *service.StudentService
	GameService    *service.GameService
}

func NewStudentController(studentService *service.StudentService, gameService *service.GameService) *StudentController {
	return &StudentController{StudentService: studentService, GameService: gameService}
}

type CreateStudentRequest struct {
	Username    string  `json:"username" binding:"required,max=50"`
	DisplayName string  `json:"displayName" binding:"max=100"`
	GroupID     *string `json:"groupId"`
}

// @Summary 注册学生
// @Description 新学生从 1 级、0 经验开始
// @Tags 学生
// @Accept json
// @Produce json
// @Param student body CreateStudentRequest true "学生信息"
// @Success 201 {object} util.Response
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, err := c.StudentService.CreateStudent(ctx.Request.Context(), req.Username, req.DisplayName, req.GroupID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, student)
}

// @Summary 学生概况
// @Description 等级、经验、正确率与心态状态
// @Tags 学生
// @Produce json
// @Param id path string true "学生ID"
// @Success 200 {object} util.Response{data=service.StudentOverview}
// @Router /students/{id} [get]
func (c *StudentController) GetOverview(ctx *gin.Context) {
	overview, err := c.GameService.StudentOverview(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

type AnswerResultRequest struct {
	Correct *bool `json:"correct" binding:"required"`
}

// @Summary 记录答题结果
// @Description 由外部判题后提交，答对 +10 经验 +5 积分
// @Tags 学生
// @Accept json
// @Produce json
// @Param id path string true "学生ID"
// @Param result body AnswerResultRequest true "答题结果"
// @Success 200 {object} util.Response{data=service.ProgressResult}
// @Router /students/{id}/results [post]
func (c *StudentController) ApplyResult(ctx *gin.Context) {
	var req AnswerResultRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.StudentService.ApplyResult(ctx.Request.Context(), ctx.Param("id"), *req.Correct)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type QuizAnswerRequest struct {
	QuizID string `json:"quizId" binding:"required"`
	Answer string `json:"answer"`
}

// @Summary 提交题目答案
// @Description 判题后依次结算学生成长、心态值、讲师状态，并返回讲师台词
// @Tags 学生
// @Accept json
// @Produce json
// @Param id path string true "学生ID"
// @Param answer body QuizAnswerRequest true "作答"
// @Success 200 {object} util.Response{data=service.QuizAnswerResult}
// @Router /students/{id}/quiz-answers [post]
func (c *StudentController) SubmitQuizAnswer(ctx *gin.Context) {
	var req QuizAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.GameService.SubmitQuizAnswer(ctx.Request.Context(), req.QuizID, ctx.Param("id"), req.Answer)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type WorksheetRequest struct {
	ScorePercent float64 `json:"scorePercent"`
	CorrectCount int     `json:"correctCount"`
	WrongCount   int     `json:"wrongCount"`
}

// @Summary 提交学习单成绩
// @Description 按分数区间发放经验和积分
// @Tags 学生
// @Accept json
// @Produce json
// @Param id path string true "学生ID"
// @Param worksheet body WorksheetRequest true "学习单成绩"
// @Success 200 {object} util.Response{data=service.ProgressResult}
// @Router /students/{id}/worksheets [post]
func (c *StudentController) SubmitWorksheet(ctx *gin.Context) {
	var req WorksheetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.StudentService.ApplyWorksheetResult(ctx.Request.Context(), ctx.Param("id"), req.ScorePercent, req.CorrectCount, req.WrongCount)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
