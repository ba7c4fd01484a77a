package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stonefoxes/shproto-server/internal/protocol/shproto"
	"github.com/stonefoxes/shproto-server/internal/session"
	"github.com/stonefoxes/shproto-server/internal/storage/gormrepo"
)

// RegisterRoutes 注册HTTP查询与调试路由。
// repo 为 nil 时跳过依赖数据库的只读接口，编解码接口始终可用。
func RegisterRoutes(
	r *gin.Engine,
	repo *gormrepo.Repository,
	sess session.Manager,
	names *shproto.CommandNames,
	frameCapacity int,
	logger *zap.Logger,
) {
	if r == nil {
		return
	}

	api := r.Group("/api/v1")

	codec := NewCodecHandler(frameCapacity, names, logger)
	api.POST("/codec/encode", codec.Encode)
	api.POST("/codec/decode", codec.Decode)

	if sess != nil {
		handler := NewReadOnlyHandler(repo, sess, names, logger)
		api.GET("/online", handler.OnlineCount)
		api.GET("/sessions/:linkId", handler.SessionStatus)

		if repo != nil {
			api.GET("/links", handler.ListLinks)
			api.GET("/frames", handler.ListFrames)
			api.GET("/stats/commands", handler.CommandStats)
		}
	}

	logger.Info("api routes registered", zap.Bool("database", repo != nil))
}
