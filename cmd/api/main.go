package main

import (
	"github.com/xingbinice/wuxianyijin/internal/app"
	"github.com/xingbinice/wuxianyijin/internal/bootstrap"
	"github.com/xingbinice/wuxianyijin/internal/config"
	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	apperror.Init()
	r := gin.Default()
	auditLogger := bootstrap.NewStdoutAuditLogger()

	// build dependency + routes
	infra, err := app.BuildApp(r, cfg, auditLogger)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer infra.Close()

	bootstrap.StartHTTPServer(r, cfg.Server, auditLogger)
}
