package controllers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Luozhiyan/demo-fire-gpt/config"
	"github.com/Luozhiyan/demo-fire-gpt/log"
	"github.com/Luozhiyan/demo-fire-gpt/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 案例目录是外部生成的固定两层结构：
// case_show/<id>/{pic/, record/, report.json, graph.*, scores/expert_score.json}
// 这里只读（专家评分文件除外），不负责生成任何内容

const caseNameSuffix = "火灾事故" // 展示名后缀

var caseImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
}

type CaseInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CaseController struct {
	cfg *config.Config
}

func NewCaseController(cfg *config.Config) *CaseController {
	return &CaseController{cfg: cfg}
}

func (cc *CaseController) casePath(caseID string) string {
	return filepath.Join(cc.cfg.Case.Dir, utils.SanitizeFilename(caseID))
}

// 枚举案例根目录下的子目录，两组路由共用
func listCaseDirs(caseRoot string) ([]CaseInfo, error) {
	entries, err := os.ReadDir(caseRoot)
	if err != nil {
		return nil, err
	}
	cases := make([]CaseInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		cases = append(cases, CaseInfo{
			ID:   entry.Name(),
			Name: entry.Name() + caseNameSuffix,
		})
	}
	return cases, nil
}

// ListCases godoc
// @Summary      获取所有案例列表
// @Tags         Cases
// @Produce      json
// @Success      200  {array}  CaseInfo
// @Failure      404  {object}  ErrorResponse
// @Router       /api/cases/list [get]
func (cc *CaseController) ListCases(c *gin.Context) {
	cases, err := listCaseDirs(cc.cfg.Case.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "案例目录不存在"})
			return
		}
		log.L().Error("list cases failed", zap.String("dir", cc.cfg.Case.Dir), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取案例列表失败"})
		return
	}
	c.JSON(http.StatusOK, cases)
}

// ListCaseFiles godoc
// @Summary      获取案例的文件结构
// @Description  只展示 pic 和 record 两个子目录的直接子文件
// @Tags         Cases
// @Produce      json
// @Param        id  path  string  true  "案例ID"
// @Success      200  {array}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/cases/{id}/files [get]
func (cc *CaseController) ListCaseFiles(c *gin.Context) {
	casePath := cc.casePath(c.Param("id"))
	if _, err := os.Stat(casePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "案例不存在"})
		return
	}

	items := make([]gin.H, 0, 2)
	for _, sub := range []string{"pic", "record"} { // 只处理这两个目录
		subPath := filepath.Join(casePath, sub)
		entries, err := os.ReadDir(subPath)
		if err != nil {
			continue //子目录缺失不算错
		}
		children := make([]gin.H, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			children = append(children, gin.H{
				"name":      entry.Name(),
				"type":      "file",
				"extension": filepath.Ext(entry.Name()),
				"parent":    gin.H{"name": sub},
			})
		}
		items = append(items, gin.H{
			"name":     sub,
			"type":     "directory",
			"children": children,
		})
	}
	c.JSON(http.StatusOK, items)
}

// GetCaseFile godoc
// @Summary      获取案例中的具体文件内容
// @Description  json解析后返回；图片回字节流；html按文本返回；其余类型不支持
// @Tags         Cases
// @Produce      json
// @Param        id    path   string  true  "案例ID"
// @Param        path  query  string  true  "案例内的相对路径，如 record/x.json"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/cases/{id}/file [get]
func (cc *CaseController) GetCaseFile(c *gin.Context) {
	relPath := c.Query("path")
	if relPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未指定文件路径"})
		return
	}
	fullPath, err := utils.SafeJoinRel(cc.casePath(c.Param("id")), relPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法的文件路径"})
		return
	}
	if _, err := os.Stat(fullPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fullPath))
	switch {
	case ext == ".json":
		data, err := os.ReadFile(fullPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败"})
			return
		}
		var parsed interface{}
		if err := json.Unmarshal(data, &parsed); err != nil {
			// 坏的记录文件返回解析错误，不能把服务打挂
			c.JSON(http.StatusInternalServerError, gin.H{"error": "JSON解析错误: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, parsed)
	case caseImageExts[ext]:
		c.File(fullPath)
	case ext == ".html":
		data, err := os.ReadFile(fullPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "HTML读取错误: " + err.Error()})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的文件类型"})
	}
}

type caseScoreRequest struct {
	Score   *int   `json:"score"`
	Comment string `json:"comment"`
}

// SubmitCaseScore godoc
// @Summary      提交案例的专家评分
// @Description  写入案例目录下的 scores/expert_score.json
// @Tags         Cases
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "案例ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/cases/{id}/score [post]
func (cc *CaseController) SubmitCaseScore(c *gin.Context) {
	casePath := cc.casePath(c.Param("id"))
	if _, err := os.Stat(casePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "案例不存在"})
		return
	}
	var req caseScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体格式错误"})
		return
	}
	if req.Score == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "评分不能为空"})
		return
	}

	scoreDir := filepath.Join(casePath, "scores")
	if err := os.MkdirAll(scoreDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建评分目录失败"})
		return
	}
	data, _ := json.MarshalIndent(gin.H{
		"score":     *req.Score,
		"comment":   req.Comment,
		"timestamp": time.Now().Format("2006-01-02 15:04:05"),
	}, "", "  ")
	if err := os.WriteFile(filepath.Join(scoreDir, "expert_score.json"), data, 0644); err != nil {
		log.L().Error("write expert score failed", zap.String("case", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "评分保存失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "评分提交成功"})
}

// GetCaseGraph godoc
// @Summary      获取案例的知识图谱
// @Description  图谱文件名由配置决定（graph.html 或 graph.jpg）
// @Tags         Cases
// @Produce      octet-stream
// @Param        id  path  string  true  "案例ID"
// @Success      200  {file}  file
// @Failure      404  {object}  ErrorResponse
// @Router       /api/cases/{id}/graph [get]
func (cc *CaseController) GetCaseGraph(c *gin.Context) {
	graphPath := filepath.Join(cc.casePath(c.Param("id")), cc.cfg.Case.GraphFile)
	if _, err := os.Stat(graphPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "知识图谱不存在"})
		return
	}
	c.File(graphPath)
}
