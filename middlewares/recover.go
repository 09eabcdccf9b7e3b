package middlewares

import (
	"runtime/debug"

	"github.com/Luozhiyan/demo-fire-gpt/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func GinRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.L().Error("panic recovered",
					zap.Any("error", err),                  // 存入错误信息
					zap.ByteString("stack", debug.Stack()), // 记录堆栈信息
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(500, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
