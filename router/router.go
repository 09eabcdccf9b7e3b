package router

//路由组-分组
import (
	"net/http"

	"github.com/Luozhiyan/demo-fire-gpt/config"
	"github.com/Luozhiyan/demo-fire-gpt/controllers"
	"github.com/Luozhiyan/demo-fire-gpt/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis"
	"gorm.io/gorm"
)

func SetupRouter(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.GinLogger(), middlewares.GinRecovery())
	mountSwagger(r)

	// 超过上限的请求体在进handler之前就被掐断（multipart自身有点开销，留些余量）
	maxBody := cfg.Upload.MaxSizeMB*1024*1024 + 512*1024
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
		c.Next()
	})

	fileCtl := controllers.NewFileController(cfg)
	caseCtl := controllers.NewCaseController(cfg)
	reportCtl := controllers.NewReportController(cfg, rdb)
	authCtl := controllers.NewAuthController(cfg, db)
	scoringCtl := controllers.NewScoringController(db)
	guard := middlewares.NewAuthGuard(cfg, db)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Fire Incident Investigation API"})
	})

	api := r.Group("/api") //给出路由组的路径
	{
		// 证据文件模块
		api.POST("/upload", fileCtl.Upload)
		api.GET("/files", fileCtl.ListFiles)
		api.DELETE("/files/:uid", fileCtl.Delete)
		api.GET("/files/download/:filename", fileCtl.Download)
		api.GET("/preview/:filename", fileCtl.Preview)

		// 案例浏览模块
		cases := api.Group("/cases")
		{
			cases.GET("/list", caseCtl.ListCases)
			cases.GET("/:id/files", caseCtl.ListCaseFiles)
			cases.GET("/:id/file", caseCtl.GetCaseFile)
			cases.POST("/:id/score", caseCtl.SubmitCaseScore)
			cases.GET("/:id/graph", caseCtl.GetCaseGraph)
		}

		// 报告模块
		reports := api.Group("/reports")
		{
			reports.GET("", reportCtl.GetReports)
			reports.GET("/:id/files", reportCtl.GetReportFiles)
			reports.GET("/:id/report", reportCtl.GetReport)
			reports.GET("/:id/file/:folder/:filename", reportCtl.GetReportFile)
			reports.GET("/:id/graph", reportCtl.GetReportGraph)
		}

		// 认证模块
		auth := api.Group("/auth")
		{
			auth.POST("/register", authCtl.Register)
			auth.POST("/login", authCtl.Login)
			auth.POST("/logout", authCtl.Logout)
		}

		// 评分模块（需要登录）
		scoring := api.Group("", guard.Handler())
		{
			scoring.POST("/scoring", scoringCtl.SubmitScore)
			scoring.GET("/scoring/:report_id", scoringCtl.GetScore)
			scoring.GET("/user_scores", scoringCtl.GetUserScores)
		}
	}
	return r //返回路由组
}
