package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"elearn/backend/config"
	"elearn/backend/internal/api/handler"
	"elearn/backend/internal/api/middleware"
	"elearn/backend/internal/model"
	"elearn/backend/pkg/jwt"
	"elearn/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// localDir 非空时在 /storage 下公开证书文件（仅本地存储后端）
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, localDir string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── 公开证书文件 ──
	if localDir != "" {
		r.Static("/storage", localDir)
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.POST("/:id/enroll", h.Course.Enroll)
				courses.GET("/:id/progress", h.Course.GetProgress)
				courses.POST("/:id/certificate",
					middleware.RateLimit(rdb, cfg.RateLimit.IssuePerMinute, time.Minute, middleware.ByUser),
					h.Certificate.Issue,
				)
			}

			// 视频模块
			authorized.POST("/videos/:id/watched", h.Course.MarkWatched)

			// 证书模块
			certificates := authorized.Group("/certificates")
			{
				certificates.POST("/upload", middleware.RoleAuth(model.RoleAdmin), h.Certificate.Upload)
				certificates.GET("/:id", h.Certificate.GetCertificate)
				certificates.GET("/:id/download", h.Certificate.Download)
			}

			// 当前用户
			me := authorized.Group("/users/me")
			{
				me.GET("/certificates", h.Certificate.ListMyCertificates)
				me.GET("/courses/enrolled", h.Course.ListEnrolledCourses)
			}
		}
	}

	return r
}
