// @title Dungeon 后端 API
// @version 1.0
// @description 地下城学习游戏后端：学生成长、心态值、讲师进化与团队副本。

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

package main

import (
	"dungeon_backend/internal/app"
	"dungeon_backend/internal/config"
	"dungeon_backend/pkg/logger"
	"flag"
	"log"
)

type flags struct {
	configDir   string
	migrate     bool
	migrateOnly bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configDir, "config", "configs", "配置文件目录")
	flag.BoolVar(&f.migrateOnly, "migrate-only", false, "只执行数据库迁移与初始数据写入，完成后退出")
	flag.BoolVar(&f.migrate, "migrate", false, "release 模式下也在启动时执行迁移")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	cfg, err := config.LoadConfig(f.configDir)
	if err != nil {
		log.Fatalf("load config from %s: %v", f.configDir, err)
	}
	cfg.ForceMigrate = f.migrate || f.migrateOnly
	cfg.MigrateOnly = f.migrateOnly
	cfg.ConfigDir = f.configDir

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if f.migrateOnly {
		logger.Log.Info("Migration finished, exiting")
		return
	}

	application.Run()
}
