package config // 建立包

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const Version string = "0.0.1"

type Config struct { //整个服务的配置，启动时构造一次，显式传给各个组件
	App struct {
		Name string
		Port string
	}
	Database struct {
		Dsn                  string
		MaxIdleConns         int
		MaxOpenConns         int
		ConnMaxLifetimeHours int
	}
	Redis struct {
		Addr     string
		DB       int
		Password string
	}
	Jwt struct {
		Secret      string
		ExpireHours int
	}
	Upload struct {
		Dir       string // 上传文件的平铺目录
		MaxSizeMB int64  // 单个文件的上限
	}
	Case struct {
		Dir       string // 案例展示目录 case_show
		GraphFile string // 图谱文件名：graph.html 或 graph.jpg，两处来源不一致所以做成配置
	}
}

// 使用viper读取配置文件
func Load() (*Config, error) {
	viper.SetConfigName("config") //无extension
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// 没写配置时的兜底值
	viper.SetDefault("app.name", "fire-incident-api")
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("upload.maxsizemb", 5)
	viper.SetDefault("case.dir", "case_show")
	viper.SetDefault("case.graphfile", "graph.html")
	viper.SetDefault("jwt.expirehours", 24)

	// 秘钥放环境变量里，不进配置文件
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET_KEY")

	if err := viper.ReadInConfig(); err != nil {
		// 配置文件缺失时靠默认值+环境变量也能跑起来
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil { //将配置文件中的内容解析到结构体中
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Jwt.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is not set")
	}
	return cfg, nil
}

// 监听地址，确保端口格式正确
func (c *Config) ListenAddr() string {
	port := c.App.Port
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}
