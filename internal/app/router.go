package app

import (
	"dungeon_backend/docs"
	"dungeon_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.GET("/health", c.health.HealthCheck)

	a.registerStudentRoutes(api, c)
	a.registerInstructorRoutes(api, c)
	a.registerRaidRoutes(api, c)
}

func (a *App) registerStudentRoutes(api *gin.RouterGroup, c *controllers) {
	students := api.Group("/students")
	{
		students.POST("", c.student.CreateStudent)
		students.GET("/:id", c.student.GetOverview)
		students.POST("/:id/results", c.student.ApplyResult)
		students.POST("/:id/quiz-answers", c.student.SubmitQuizAnswer)
		students.POST("/:id/worksheets", c.student.SubmitWorksheet)

		// 心态
		students.GET("/:id/mental", c.mental.GetState)
		students.POST("/:id/mental/recovery", c.mental.Recover)
	}

	missions := api.Group("/missions")
	{
		missions.GET("", c.mental.ListMissions)
		missions.GET("/random", c.mental.RandomMission)
		missions.POST("/:id/complete", c.mental.CompleteMission)
	}

	api.GET("/rankings", c.ranking.Top)
}

func (a *App) registerInstructorRoutes(api *gin.RouterGroup, c *controllers) {
	instructor := api.Group("/instructor")
	{
		instructor.GET("", c.instructor.GetInstructor)
		instructor.GET("/stats", c.instructor.GetStats)
		instructor.POST("/rage", c.instructor.AdjustRage)
		instructor.POST("/evolve", c.instructor.Evolve)
		instructor.GET("/evolution", c.instructor.CheckEvolution)
		instructor.POST("/evolution/auto", c.instructor.TryAutoEvolve)
		instructor.GET("/dialogues", c.instructor.RageHistory)
	}
}

func (a *App) registerRaidRoutes(api *gin.RouterGroup, c *controllers) {
	raids := api.Group("/raids")
	{
		raids.GET("/bosses", c.raid.ListBosses)
		raids.GET("/sessions", c.raid.ListSessions)
		raids.POST("/sessions", c.raid.CreateSession)
		raids.GET("/sessions/:id", c.raid.GetSession)
		raids.GET("/sessions/:id/quizzes", c.raid.ListQuizzes)
		raids.POST("/sessions/:id/join", c.raid.Join)
		raids.POST("/sessions/:id/start", c.raid.Start)
		raids.POST("/sessions/:id/answers", c.raid.SubmitAnswer)
		raids.POST("/sessions/:id/reward", c.raid.ClaimReward)
	}
}
