package controllers

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Luozhiyan/demo-fire-gpt/config"
	"github.com/Luozhiyan/demo-fire-gpt/log"
	"github.com/Luozhiyan/demo-fire-gpt/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 上传文件的格式要求：只看扩展名，不做内容嗅探
var allowedExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".pdf": true, ".doc": true, ".docx": true,
	".fig": true, ".sketch": true, ".xd": true,
}

// mime包查不到的补充映射
var extraMimes = map[string]string{
	".doc":    "application/msword",
	".docx":   "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".fig":    "application/octet-stream",
	".sketch": "application/octet-stream",
	".xd":     "application/octet-stream",
}

const previewSuffix = "_preview.png" // 预览产物，列表时要跳过

type ErrorResponse struct {
	Error string `json:"error"`
}

// StoredFileInfo 上传/列表接口对外的文件元信息，
// original_name 和 upload_time 都是从存储名反解出来的
type StoredFileInfo struct {
	UID          string `json:"uid,omitempty"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Path         string `json:"path,omitempty"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
	UploadTime   string `json:"upload_time"`
}

type FileController struct {
	cfg *config.Config
}

func NewFileController(cfg *config.Config) *FileController {
	return &FileController{cfg: cfg}
}

func guessFileType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	if mt, ok := extraMimes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}

// Upload godoc
// @Summary      上传证据文件
// @Description  校验扩展名白名单，文件名清洗后加时间戳存入平铺目录；同名同秒直接覆盖
// @Tags         Files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "文件（必填）"
// @Success      200  {object}  StoredFileInfo
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/upload [post]
func (f *FileController) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "没有文件被上传"})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "没有选择文件"})
		return
	}
	maxLoad := f.cfg.Upload.MaxSizeMB * 1024 * 1024
	if header.Size > maxLoad {
		c.JSON(http.StatusBadRequest, gin.H{"error": "文件超过大小限制"})
		return
	}

	original := utils.SanitizeFilename(header.Filename)
	ext := strings.ToLower(filepath.Ext(original))
	if !allowedExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的文件类型"})
		return
	}

	now := time.Now()
	storedName := utils.EncodeStoredName(original, now)

	if err := os.MkdirAll(f.cfg.Upload.Dir, 0755); err != nil { //创建，幂等
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建上传目录失败"})
		return
	}

	// 先写临时文件再rename，避免半截文件被列表看到
	finalPath := filepath.Join(f.cfg.Upload.Dir, storedName)
	tmpPath := filepath.Join(f.cfg.Upload.Dir, "."+storedName+".part")

	out, err := os.Create(tmpPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建文件失败"})
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		_ = os.Remove(tmpPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "写入文件失败"})
		return
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmpPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "写入文件失败"})
		return
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}

	stat, err := os.Stat(finalPath) // 大小以落盘结果为准，不信Content-Length
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件信息失败"})
		return
	}

	log.L().Info("file uploaded",
		zap.String("stored", storedName),
		zap.String("original", original),
		zap.String("size", utils.Get_size(stat.Size())),
	)
	c.JSON(http.StatusOK, StoredFileInfo{
		Filename:     storedName,
		OriginalName: original,
		Path:         finalPath,
		Size:         stat.Size(),
		Type:         guessFileType(finalPath),
		UploadTime:   now.Format(utils.StampLayout),
	})
}

// ListFiles godoc
// @Summary      列出所有上传的文件
// @Description  从文件名恢复原始名和上传时间，按上传时间倒序
// @Tags         Files
// @Produce      json
// @Success      200  {array}  StoredFileInfo
// @Failure      500  {object}  ErrorResponse
// @Router       /api/files [get]
func (f *FileController) ListFiles(c *gin.Context) {
	entries, err := os.ReadDir(f.cfg.Upload.Dir)
	if err != nil {
		if os.IsNotExist(err) { //目录还没建，等价于空列表
			c.JSON(http.StatusOK, []StoredFileInfo{})
			return
		}
		log.L().Error("list upload dir failed", zap.String("dir", f.cfg.Upload.Dir), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取文件列表失败"})
		return
	}

	files := make([]StoredFileInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, previewSuffix) { // 跳过预览产物
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		// 单个名字解不出时间戳不影响整个列表
		original, display, ok := utils.DecodeStoredName(name)
		if !ok {
			original = name
			display = time.Now().Format(utils.DisplayLayout)
		}
		files = append(files, StoredFileInfo{
			UID:          name,
			Filename:     name,
			OriginalName: original,
			Size:         info.Size(),
			Type:         guessFileType(name),
			UploadTime:   display,
		})
	}

	// 展示时间是定宽零填充的，字符串倒序即时间倒序；同一时刻按文件名定序
	sort.Slice(files, func(i, j int) bool {
		if files[i].UploadTime != files[j].UploadTime {
			return files[i].UploadTime > files[j].UploadTime
		}
		return files[i].Filename < files[j].Filename
	})
	c.JSON(http.StatusOK, files)
}

// Preview godoc
// @Summary      预览文件
// @Description  图片和PDF直接回字节流；word文档只返回类型指针不做转换；其余类型不支持预览
// @Tags         Files
// @Produce      octet-stream
// @Param        filename  path  string  true  "存储文件名"
// @Success      200  {file}  file
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/preview/{filename} [get]
func (f *FileController) Preview(c *gin.Context) {
	name := utils.SanitizeFilename(c.Param("filename"))
	fullPath := filepath.Join(f.cfg.Upload.Dir, name)
	if _, err := os.Stat(fullPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
		return
	}

	mt := guessFileType(name)
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case strings.HasPrefix(mt, "image/"):
		c.File(fullPath)
	case mt == "application/pdf" || ext == ".pdf":
		c.Header("Content-Type", "application/pdf")
		c.File(fullPath)
	case ext == ".doc" || ext == ".docx":
		// 不做渲染，给前端一个类型标记
		c.JSON(http.StatusOK, gin.H{"type": "doc", "path": fullPath})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的文件类型预览"})
	}
}

// Download godoc
// @Summary      下载文件
// @Tags         Files
// @Produce      octet-stream
// @Param        filename  path  string  true  "存储文件名"
// @Success      200  {file}  file
// @Failure      404  {object}  ErrorResponse
// @Router       /api/files/download/{filename} [get]
func (f *FileController) Download(c *gin.Context) {
	name := utils.SanitizeFilename(c.Param("filename"))
	fullPath := filepath.Join(f.cfg.Upload.Dir, name)
	if _, err := os.Stat(fullPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
		return
	}
	c.FileAttachment(fullPath, name)
}

// Delete godoc
// @Summary      删除上传的文件
// @Description  按uid（即存储文件名）硬删除，无软删除
// @Tags         Files
// @Produce      json
// @Param        uid  path  string  true  "存储文件名"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/files/{uid} [delete]
func (f *FileController) Delete(c *gin.Context) {
	name := utils.SanitizeFilename(c.Param("uid"))
	fullPath := filepath.Join(f.cfg.Upload.Dir, name)
	if _, err := os.Stat(fullPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
		return
	}
	if err := os.Remove(fullPath); err != nil {
		log.L().Error("delete file failed", zap.String("uid", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "文件删除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "文件删除成功"})
}
