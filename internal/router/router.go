package router

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/marketdev/internal/handler"
	"github.com/marketdev/internal/logging"
	"github.com/marketdev/internal/metrics"
	"github.com/marketdev/internal/middleware"
	"github.com/marketdev/web"
	"go.uber.org/zap"
)

// Config 描述构建路由所需的外部设置
type Config struct {
	SessionSecret string
	UploadDir     string
	UploadURLPath string
	Logger        *zap.Logger
	// PreviewLimiter 限制预览接口的请求频率，为 nil 时不限流
	PreviewLimiter *middleware.RateLimiter
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, cfg Config) (*gin.Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger), metrics.Middleware())

	// 配置会话中间件
	secret := cfg.SessionSecret
	if secret == "" {
		secret = "marketdev-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode, MaxAge: 7 * 24 * 3600})
	r.Use(sessions.Sessions("marketdev_session", store))

	// 加载模板并添加自定义函数
	tmpl, err := web.Templates(template.FuncMap{
		"lower": strings.ToLower,
	})
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	// 静态文件服务
	r.StaticFS("/assets", http.FS(web.Static()))
	if cfg.UploadDir != "" && cfg.UploadURLPath != "" {
		r.Static(cfg.UploadURLPath, cfg.UploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// 公开店铺页面
	r.GET("/s/:subdomain", api.ShowSiteHome)
	r.GET("/s/:subdomain/:slug", api.ShowSitePage)

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/sites", api.ShowSites)
			auth.GET("/pages/:id/edit", api.ShowEditor)

			apiGroup := auth.Group("/api")
			{
				apiGroup.GET("/sites", api.ListSites)
				apiGroup.POST("/sites", api.CreateSite)
				apiGroup.GET("/sites/:id", api.GetSite)
				apiGroup.PUT("/sites/:id", api.UpdateSite)
				apiGroup.PUT("/sites/:id/homepage", api.SetHomepage)
				apiGroup.GET("/sites/:id/embed", api.EmbedSnippet)
				apiGroup.POST("/sites/:id/logo", api.UploadLogo)

				apiGroup.GET("/sites/:id/pages", api.ListPages)
				apiGroup.POST("/sites/:id/pages", api.CreatePage)
				apiGroup.GET("/pages/:id", api.GetPage)
				apiGroup.PUT("/pages/:id", api.UpdatePage)
				apiGroup.DELETE("/pages/:id", api.DeletePage)
				apiGroup.GET("/pages/:id/live", api.LiveEditor)

				apiGroup.GET("/sites/:id/tiers", api.ListTiers)
				apiGroup.POST("/sites/:id/tiers", api.CreateTier)
				apiGroup.PUT("/tiers/:id", api.UpdateTier)
				apiGroup.PUT("/tiers/:id/published", api.PublishTier)
				apiGroup.DELETE("/tiers/:id", api.DeleteTier)

				apiGroup.GET("/insertables", api.Insertables)
				if cfg.PreviewLimiter != nil {
					apiGroup.POST("/preview", cfg.PreviewLimiter.Handler(), api.Preview)
				} else {
					apiGroup.POST("/preview", api.Preview)
				}
			}
		}
	}

	return r, nil
}
