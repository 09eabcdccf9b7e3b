package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Luozhiyan/demo-fire-gpt/config"
	"github.com/Luozhiyan/demo-fire-gpt/log"
	"github.com/Luozhiyan/demo-fire-gpt/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// /api/reports 路由组：跟 /api/cases 看同一棵案例目录树，
// 但报告内容走 redis缓存 + singleflight，热点案例不反复读盘

var recordExts = map[string]bool{".json": true}

type ReportController struct {
	cfg   *config.Config
	rdb   *redis.Client
	group singleflight.Group // 并发请求同一份报告时只读一次盘
}

func NewReportController(cfg *config.Config, rdb *redis.Client) *ReportController {
	return &ReportController{cfg: cfg, rdb: rdb}
}

func (rc *ReportController) casePath(caseID string) string {
	return filepath.Join(rc.cfg.Case.Dir, utils.SanitizeFilename(caseID))
}

// GetReports godoc
// @Summary      获取所有案例报告列表
// @Tags         Reports
// @Produce      json
// @Success      200  {array}  CaseInfo
// @Failure      404  {object}  ErrorResponse
// @Router       /api/reports [get]
func (rc *ReportController) GetReports(c *gin.Context) {
	cases, err := listCaseDirs(rc.cfg.Case.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "案例目录不存在"})
			return
		}
		log.L().Error("list reports failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取案例列表失败"})
		return
	}
	c.JSON(http.StatusOK, cases)
}

// GetReportFiles godoc
// @Summary      获取案例的图片和记录列表
// @Tags         Reports
// @Produce      json
// @Param        id  path  string  true  "案例ID"
// @Success      200  {object}  map[string][]string
// @Failure      404  {object}  ErrorResponse
// @Router       /api/reports/{id}/files [get]
func (rc *ReportController) GetReportFiles(c *gin.Context) {
	casePath := rc.casePath(c.Param("id"))
	if _, err := os.Stat(casePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "案例不存在"})
		return
	}

	pics := listByExt(filepath.Join(casePath, "pic"), caseImageExts)
	records := listByExt(filepath.Join(casePath, "record"), recordExts)
	c.JSON(http.StatusOK, gin.H{
		"pics":    pics,
		"records": records,
	})
}

// 列出目录里扩展名匹配的文件，目录缺失等价于空
func listByExt(dir string, exts map[string]bool) []string {
	names := []string{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return names
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if exts[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	return names
}

// GetReport godoc
// @Summary      获取案例报告
// @Description  report.json 解析后返回，带redis缓存；并发请求只回源一次
// @Tags         Reports
// @Produce      json
// @Param        id  path  string  true  "案例ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/reports/{id}/report [get]
func (rc *ReportController) GetReport(c *gin.Context) {
	caseID := utils.SanitizeFilename(c.Param("id"))
	cacheKey := config.RedisKeyReportPrefix + caseID

	if raw, err := getCache[json.RawMessage](rc.rdb, cacheKey); err == nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
		return
	}

	v, err, _ := rc.group.Do(cacheKey, func() (interface{}, error) { // 并发时这里只先执行一次
		return rc.loadReport(caseID, cacheKey)
	})
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "报告不存在"})
			return
		}
		log.L().Error("load report failed", zap.String("case", caseID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", v.(json.RawMessage))
}

func (rc *ReportController) loadReport(caseID, cacheKey string) (json.RawMessage, error) {
	reportPath := filepath.Join(rc.cfg.Case.Dir, caseID, "report.json")
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, err
	}
	var parsed interface{} //先整体解析一遍，坏文件在这里报出来
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("JSON解析错误: %w", err)
	}
	if err := setCache(rc.rdb, cacheKey, json.RawMessage(data), config.ReportCacheTTL); err != nil {
		log.L().Warn("cache report failed", zap.String("case", caseID), zap.Error(err))
	}
	return json.RawMessage(data), nil
}

// GetReportFile godoc
// @Summary      获取案例指定目录下的文件
// @Tags         Reports
// @Produce      json
// @Param        id        path  string  true  "案例ID"
// @Param        folder    path  string  true  "pic 或 record"
// @Param        filename  path  string  true  "文件名"
// @Success      200  {file}  file
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/reports/{id}/file/{folder}/{filename} [get]
func (rc *ReportController) GetReportFile(c *gin.Context) {
	folder := utils.SanitizeFilename(c.Param("folder"))
	filename := utils.SanitizeFilename(c.Param("filename"))
	fullPath := filepath.Join(rc.casePath(c.Param("id")), folder, filename)
	if _, err := os.Stat(fullPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
		return
	}
	if strings.HasSuffix(fullPath, ".json") {
		data, err := os.ReadFile(fullPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败"})
			return
		}
		var parsed interface{}
		if err := json.Unmarshal(data, &parsed); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "JSON解析错误: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, parsed)
		return
	}
	c.File(fullPath)
}

// GetReportGraph godoc
// @Summary      获取案例知识图谱
// @Tags         Reports
// @Produce      octet-stream
// @Param        id  path  string  true  "案例ID"
// @Success      200  {file}  file
// @Failure      404  {object}  ErrorResponse
// @Router       /api/reports/{id}/graph [get]
func (rc *ReportController) GetReportGraph(c *gin.Context) {
	graphPath := filepath.Join(rc.casePath(c.Param("id")), rc.cfg.Case.GraphFile)
	if _, err := os.Stat(graphPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "知识图谱不存在"})
		return
	}
	c.File(graphPath)
}
