package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Luozhiyan/demo-fire-gpt/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 造一个标准的案例目录：pic/record子目录 + report.json + graph.html
func makeCaseTree(t *testing.T, root, caseID string) {
	t.Helper()
	base := filepath.Join(root, caseID)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "pic"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "record"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "pic", "scene1.jpg"), []byte("jpgdata"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "record", "x.json"), []byte(`{"witness":"张三"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "report.json"), []byte(`{"cause":"electrical"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "graph.html"), []byte("<html>graph</html>"), 0644))
}

func newCaseRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Case.Dir = root
	cfg.Case.GraphFile = "graph.html"

	cc := NewCaseController(cfg)
	r := gin.New()
	r.GET("/api/cases/list", cc.ListCases)
	r.GET("/api/cases/:id/files", cc.ListCaseFiles)
	r.GET("/api/cases/:id/file", cc.GetCaseFile)
	r.POST("/api/cases/:id/score", cc.SubmitCaseScore)
	r.GET("/api/cases/:id/graph", cc.GetCaseGraph)
	return r, root
}

func TestListCases(t *testing.T) {
	r, root := newCaseRouter(t)
	makeCaseTree(t, root, "case1")
	makeCaseTree(t, root, "case2")
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0644)) //散文件不算案例

	req := httptest.NewRequest(http.MethodGet, "/api/cases/list", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var cases []CaseInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cases))
	require.Len(t, cases, 2)
	assert.Equal(t, "case1", cases[0].ID)
	assert.Equal(t, "case1火灾事故", cases[0].Name)
	assert.Equal(t, "case2火灾事故", cases[1].Name)
}

func TestListCasesMissingRoot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Case.Dir = filepath.Join(t.TempDir(), "nowhere")
	cc := NewCaseController(cfg)
	r := gin.New()
	r.GET("/api/cases/list", cc.ListCases)

	req := httptest.NewRequest(http.MethodGet, "/api/cases/list", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCaseFiles(t *testing.T) {
	r, root := newCaseRouter(t)
	makeCaseTree(t, root, "case1")
	// pic/record之外的目录不展示
	require.NoError(t, os.MkdirAll(filepath.Join(root, "case1", "scores"), 0755))

	req := httptest.NewRequest(http.MethodGet, "/api/cases/case1/files", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)

	assert.Equal(t, "pic", items[0]["name"])
	assert.Equal(t, "directory", items[0]["type"])
	children := items[0]["children"].([]interface{})
	require.Len(t, children, 1)
	child := children[0].(map[string]interface{})
	assert.Equal(t, "scene1.jpg", child["name"])
	assert.Equal(t, "file", child["type"])
	assert.Equal(t, ".jpg", child["extension"])

	assert.Equal(t, "record", items[1]["name"])
}

func TestListCaseFilesMissingCase(t *testing.T) {
	r, _ := newCaseRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/cases/nope/files", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCaseFileJSON(t *testing.T) {
	r, root := newCaseRouter(t)
	makeCaseTree(t, root, "case1")

	req := httptest.NewRequest(http.MethodGet, "/api/cases/case1/file?path=record/x.json", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	assert.Equal(t, "张三", parsed["witness"])
}

func TestGetCaseFileMalformedJSON(t *testing.T) {
	r, root := newCaseRouter(t)
	makeCaseTree(t, root, "case1")
	require.NoError(t, os.WriteFile(filepath.Join(root, "case1", "record", "bad.json"), []byte(`{broken`), 0644))

	req := httptest.NewRequest(http.MethodGet, "/api/cases/case1/file?path=record/bad.json", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// 坏文件报解析错误，不是panic
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "JSON解析错误")
}

func TestGetCaseFileImageAndHTML(t *testing.T) {
	r, root := newCaseRouter(t)
	makeCaseTree(t, root, "case1")
	require.NoError(t, os.WriteFile(filepath.Join(root, "case1", "info.html"), []byte("<p>hi</p>"), 0644))

	req := httptest.NewRequest(http.MethodGet, "/api/cases/case1/file?path=pic/scene1.jpg", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpgdata", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/cases/case1/file?path=info.html", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Equal(t, "<p>hi</p>", w.Body.String())
}

func TestGetCaseFileEdges(t *testing.T) {
	r, root := newCaseRouter(t)
	makeCaseTree(t, root, "case1")
	require.NoError(t, os.WriteFile(filepath.Join(root, "case1", "record", "notes.txt"), []byte("t"), 0644))

	// 未指定path
	req := httptest.NewRequest(http.MethodGet, "/api/cases/case1/file", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 不支持的类型
	req = httptest.NewRequest(http.MethodGet, "/api/cases/case1/file?path=record/notes.txt", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 越权路径
	req = httptest.NewRequest(http.MethodGet, "/api/cases/case1/file?path=../case2/report.json", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 不存在
	req = httptest.NewRequest(http.MethodGet, "/api/cases/case1/file?path=record/none.json", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitCaseScore(t *testing.T) {
	r, root := newCaseRouter(t)
	makeCaseTree(t, root, "case1")

	body := strings.NewReader(`{"score": 88, "comment": "调查充分"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/cases/case1/score", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data, err := os.ReadFile(filepath.Join(root, "case1", "scores", "expert_score.json"))
	require.NoError(t, err)
	var saved map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, float64(88), saved["score"])
	assert.Equal(t, "调查充分", saved["comment"])
	assert.NotEmpty(t, saved["timestamp"])
}

func TestSubmitCaseScoreValidation(t *testing.T) {
	r, root := newCaseRouter(t)
	makeCaseTree(t, root, "case1")

	// 没有score字段
	req := httptest.NewRequest(http.MethodPost, "/api/cases/case1/score", strings.NewReader(`{"comment":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 案例不存在
	req = httptest.NewRequest(http.MethodPost, "/api/cases/none/score", strings.NewReader(`{"score":1}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCaseGraph(t *testing.T) {
	r, root := newCaseRouter(t)
	makeCaseTree(t, root, "case1")

	req := httptest.NewRequest(http.MethodGet, "/api/cases/case1/graph", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>graph</html>", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/cases/none/graph", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCaseGraphConfigurableExtension(t *testing.T) {
	// 图谱文件名来自配置，换成jpg照样能取
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Case.Dir = root
	cfg.Case.GraphFile = "graph.jpg"
	require.NoError(t, os.MkdirAll(filepath.Join(root, "case1"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "case1", "graph.jpg"), []byte("jpggraph"), 0644))

	cc := NewCaseController(cfg)
	r := gin.New()
	r.GET("/api/cases/:id/graph", cc.GetCaseGraph)

	req := httptest.NewRequest(http.MethodGet, "/api/cases/case1/graph", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpggraph", w.Body.String())
}
