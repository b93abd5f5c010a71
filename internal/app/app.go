package app

import (
	"github.com/xingbinice/wuxianyijin/internal/bootstrap"
	"github.com/xingbinice/wuxianyijin/internal/config"
	"github.com/xingbinice/wuxianyijin/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure and registers every route on router.
// The returned Infra must be closed by the caller.
func BuildApp(router *gin.Engine, cfg config.Config, audit bootstrap.AuditLogger) (*Infra, error) {
	logger := zap.L().Named("app")

	infra, err := ConnectInfra(cfg, logger)
	if err != nil {
		return nil, err
	}

	services, err := NewServices(infra.DB, infra.Redis, cfg, audit, zap.L())
	if err != nil {
		infra.Close()
		return nil, err
	}

	router.Use(middleware.ContextLogger(zap.L()))
	registerModules(router, services, infra.Redis, cfg, infra.DB != nil)

	return infra, nil
}
