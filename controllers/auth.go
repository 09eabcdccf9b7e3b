package controllers

// auth 身份认证-注册/登录/登出
import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Luozhiyan/demo-fire-gpt/config"
	"github.com/Luozhiyan/demo-fire-gpt/log"
	"github.com/Luozhiyan/demo-fire-gpt/models"
	"github.com/Luozhiyan/demo-fire-gpt/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type AuthController struct {
	cfg *config.Config
	db  *gorm.DB
	//  登录令牌限流器，按用户名隔离
	loginAttempts sync.Map
	cleanupOnce   sync.Once //确保清理协程只起一次
}

func NewAuthController(cfg *config.Config, db *gorm.DB) *AuthController {
	return &AuthController{cfg: cfg, db: db}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
// @Summary      用户注册
// @Description  用户名和邮箱都要唯一，密码bcrypt加盐哈希后入库
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/auth/register [post]
func (a *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil { // 请求体是Body，对应的数据传入req中
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体格式错误"})
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "所有字段都是必填的"})
		return
	}

	// 检查用户名或邮箱是否已存在
	var existing models.Users
	err := a.db.Select("id").
		Where("username = ? OR email = ?", req.Username, req.Email).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "用户名或邮箱已存在"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.L().Error("register lookup failed", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "数据库错误"})
		return
	}

	hashedPwd, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "密码处理失败"})
		return
	}
	user := models.Users{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPwd,
	}
	if err := a.db.Create(&user).Error; err != nil {
		log.L().Error("register insert failed", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败"})
		return
	}

	log.L().Info("user registered", zap.String("username", user.Username), zap.Uint("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{"message": "注册成功", "user_id": user.ID})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login godoc
// @Summary      用户登录
// @Description  校验通过后签发24小时有效的Bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Router       /api/auth/login [post]
func (a *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体格式错误"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户名和密码都是必填的"})
		return
	}
	if !a.loginLimiter(req.Username).Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "尝试过于频繁，请稍后再试"})
		return
	}

	var user models.Users
	err := a.db.Where("username = ?", req.Username).First(&user).Error
	// 用户不存在和密码错误给同一个提示，不泄露哪个错了
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !utils.CheckPassword(user.Password, req.Password)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用户名或密码错误"})
		return
	}
	if err != nil {
		log.L().Error("login lookup failed", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "数据库错误"})
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Username, a.cfg.Jwt.Secret, a.cfg.Jwt.ExpireHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "签发token失败"})
		return
	}
	ttl := time.Duration(a.cfg.Jwt.ExpireHours) * time.Hour
	utils.SetAuthCookie(c, token, ttl)
	c.JSON(http.StatusOK, gin.H{
		"message":  "登录成功",
		"token":    token,
		"username": user.Username,
	})
}

// Logout godoc
// @Summary      退出登录
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/auth/logout [post]
func (a *AuthController) Logout(c *gin.Context) {
	utils.ClearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// 每个用户名一个限流器：每秒补一个令牌，突发上限5
func (a *AuthController) loginLimiter(username string) *rate.Limiter {
	a.cleanupOnce.Do(func() {
		go a.cleanupOldLimiters()
	})
	v, _ := a.loginAttempts.LoadOrStore(username, rate.NewLimiter(rate.Every(time.Second), 5))
	return v.(*rate.Limiter)
}

// 定期清掉长时间没动静的限流器，防止map无限增长
func (a *AuthController) cleanupOldLimiters() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		a.loginAttempts.Range(func(key, value interface{}) bool {
			limiter := value.(*rate.Limiter)
			// 令牌桶满了说明这段时间没有登录尝试
			if limiter.Tokens() == float64(limiter.Burst()) {
				a.loginAttempts.Delete(key)
			}
			return true
		})
	}
}
