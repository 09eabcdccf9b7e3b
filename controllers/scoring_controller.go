package controllers

import (
	"errors"
	"net/http"

	"github.com/Luozhiyan/demo-fire-gpt/log"
	"github.com/Luozhiyan/demo-fire-gpt/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 评分模块：同一个(用户,报告)只有一行，重复提交原地更新。
// 身份一律取中间件解析出的user_id，请求体里不收user_id

type ScoringController struct {
	db *gorm.DB
}

func NewScoringController(db *gorm.DB) *ScoringController {
	return &ScoringController{db: db}
}

type submitScoreRequest struct {
	ReportID string `json:"report_id"`
	Score    *int   `json:"score"` //指针区分"没传"和"传了0"
	Comments string `json:"comments"`
}

// SubmitScore godoc
// @Summary      提交报告评分
// @Description  0-100的整数分；同一用户对同一报告重复提交是原子upsert
// @Tags         Scoring
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/scoring [post]
func (s *ScoringController) SubmitScore(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未登录"})
		return
	}
	var req submitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "分数必须是0-100之间的整数"})
		return
	}
	if req.ReportID == "" || req.Score == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少必要参数"})
		return
	}
	if *req.Score < 0 || *req.Score > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "分数必须是0-100之间的整数"})
		return
	}

	record := models.Score{
		UserID:   userID,
		ReportID: req.ReportID,
		Score:    *req.Score,
		Comments: req.Comments,
	}
	// 靠(user_id, report_id)唯一索引做原子的插入或更新，没有先查后写的窗口
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "report_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "comments", "updated_at"}),
	}).Create(&record).Error; err != nil {
		log.L().Error("submit score failed",
			zap.Uint("user_id", userID),
			zap.String("report_id", req.ReportID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "评分提交失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "评分提交成功"})
}

// GetScore godoc
// @Summary      获取当前用户对某报告的评分
// @Tags         Scoring
// @Produce      json
// @Security     BearerAuth
// @Param        report_id  path  string  true  "报告ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/scoring/{report_id} [get]
func (s *ScoringController) GetScore(c *gin.Context) {
	userID := c.GetUint("user_id")
	reportID := c.Param("report_id")

	var record models.Score
	err := s.db.Where("user_id = ? AND report_id = ?", userID, reportID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "未找到评分记录"})
		return
	}
	if err != nil {
		log.L().Error("get score failed",
			zap.Uint("user_id", userID),
			zap.String("report_id", reportID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取评分失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"score":      record.Score,
		"comments":   record.Comments,
		"created_at": record.CreatedAt,
		"updated_at": record.UpdatedAt,
	})
}

// GetUserScores godoc
// @Summary      获取当前用户的所有评分记录
// @Tags         Scoring
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /api/user_scores [get]
func (s *ScoringController) GetUserScores(c *gin.Context) {
	userID := c.GetUint("user_id")

	var records []models.Score
	if err := s.db.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		log.L().Error("list user scores failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取评分列表失败"})
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, r := range records {
		items = append(items, gin.H{
			"report_id": r.ReportID,
			"score":     r.Score,
			"comments":  r.Comments,
		})
	}
	c.JSON(http.StatusOK, items)
}
