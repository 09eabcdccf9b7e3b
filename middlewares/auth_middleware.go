package middlewares

import (
	"net/http"
	"strings"

	"github.com/Luozhiyan/demo-fire-gpt/config"
	"github.com/Luozhiyan/demo-fire-gpt/models"
	"github.com/Luozhiyan/demo-fire-gpt/utils"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2" //本质上是双向链表+Hash表
	"gorm.io/gorm"
)

const userCacheSize = 1024

// AuthGuard 校验Bearer token并把解析出的用户身份注入后续handler，
// token里的user_id必须还能查到用户，查过的用户进本地LRU少打一次库
// （用户注册后不会被改或删，缓存不用失效）
type AuthGuard struct {
	cfg       *config.Config
	db        *gorm.DB
	userCache *lru.Cache[uint, models.Users]
}

func NewAuthGuard(cfg *config.Config, db *gorm.DB) *AuthGuard {
	cache, err := lru.New[uint, models.Users](userCacheSize)
	if err != nil {
		panic(err)
	}
	return &AuthGuard{cfg: cfg, db: db, userCache: cache}
}

func (g *AuthGuard) Handler() gin.HandlerFunc { //返回的是gin下的函数类型
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader("Authorization")) // 这里的键是Authorization
		if token == "" {
			if ck, err := c.Cookie(utils.CookieName); err == nil {
				token = ck
			}
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "未提供token"})
			c.Abort()
			return
		}
		userID, _, err := utils.ParseJWT(token, g.cfg.Jwt.Secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的token"})
			c.Abort()
			return
		}
		u, err := g.lookupUser(userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "用户不存在"})
			c.Abort()
			return
		}
		c.Set("user_id", u.ID)
		c.Set("username", u.Username)
		c.Next() //调用后续的函数
	}
}

func (g *AuthGuard) lookupUser(userID uint) (models.Users, error) {
	if u, ok := g.userCache.Get(userID); ok {
		return u, nil
	}
	var u models.Users //查询用Select
	if err := g.db.Select("id", "username").
		Where("id = ?", userID). //where限定条件
		First(&u).Error; err != nil {
		return models.Users{}, err
	}
	g.userCache.Add(userID, u)
	return u, nil
}
