// @title NexusLearn 问答社区 API
// @version 1.0
// @description NexusLearn 学生问答社区的后端服务器。

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"
	"nexuslearn_backend/internal/app"
	"nexuslearn_backend/internal/config"
	"nexuslearn_backend/pkg/configwatcher"
	"nexuslearn_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 热加载运行期可调的配置项，其余项需要重启生效
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		cfg.JWT = newCfg.JWT
		cfg.RateLimit = newCfg.RateLimit
		cfg.Admin = newCfg.Admin
		logger.Log.Info("Config reloaded", zap.Int("rate_limit_max", newCfg.RateLimit.MaxRequests))
	})

	application.Run()
}
