package config

import (
	"time"

	"github.com/Luozhiyan/demo-fire-gpt/log"
	"github.com/Luozhiyan/demo-fire-gpt/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.Database.Dsn), &gorm.Config{}) // 连接数据库
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeHours) * time.Hour) // 连接到时长后断开重建

	if err := db.AutoMigrate(
		&models.Users{},
		&models.Score{},
	); err != nil {
		return nil, err
	}
	log.L().Info("DataBase connection success", zap.String("dsn", cfg.Database.Dsn))
	return db, nil
}
