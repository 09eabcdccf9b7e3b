package main

import (
	"github.com/Luozhiyan/demo-fire-gpt/config"
	"github.com/Luozhiyan/demo-fire-gpt/log"
	"github.com/Luozhiyan/demo-fire-gpt/router"

	"go.uber.org/zap"
)

// @title       Fire Incident Investigation API
// @version     0.0.1
// @description 火灾事故调查案例管理后端接口文档
// @BasePath    /
func main() {
	// 初始化日志
	if err := log.Init(false); err != nil { // false 表示开发模式
		panic(err)
	}
	defer log.Sync()

	//配置初始化-启动时构造一次，显式传给各组件
	cfg, err := config.Load()
	if err != nil {
		log.L().Fatal("load config failed", zap.Error(err))
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		log.L().Fatal("DataBase connection failed", zap.Error(err))
	}
	rdb := config.InitRedis(cfg)

	r := router.SetupRouter(cfg, db, rdb) // 单独的路由设置
	log.L().Info("server starting",
		zap.String("app", cfg.App.Name),
		zap.String("addr", cfg.ListenAddr()),
	)
	if err := r.Run(cfg.ListenAddr()); err != nil { // 监听端口并启动服务
		log.L().Fatal("server exited", zap.Error(err))
	}
}
