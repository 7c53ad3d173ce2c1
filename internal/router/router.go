package router

import (
	"github.com/dorkyWolfie/qr-generator/config"
	"github.com/dorkyWolfie/qr-generator/internal/handler"
	"github.com/dorkyWolfie/qr-generator/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func Router(cfg *config.Config, userHandler *handler.UserHandler, linkHandler *handler.LinkHandler, portalHandler *handler.PortalHandler) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.BaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", userHandler.Register)
		auth.POST("/login", userHandler.Login)
		auth.POST("/refresh", userHandler.Refresh)
	}

	r.GET("/api/profile/me", middleware.JWTAuth(&cfg.JWT), userHandler.Profile)

	links := r.Group("/api/links", middleware.JWTAuth(&cfg.JWT))
	{
		links.POST("", linkHandler.Create)
		links.GET("", linkHandler.MyLinks)
		links.PUT("/:id", linkHandler.Update)
		links.DELETE("/:id", linkHandler.Delete)
		links.GET("/check/:code", linkHandler.CheckCode)
	}

	portals := r.Group("/api/portals")
	{
		portals.GET("/check/:slug", portalHandler.CheckSlug)

		authorized := portals.Group("", middleware.JWTAuth(&cfg.JWT))
		{
			authorized.POST("", portalHandler.Create)
			authorized.GET("", portalHandler.MyPortals)
			authorized.GET("/:portalId", portalHandler.Get)
			authorized.PUT("/:portalId", portalHandler.Update)
			authorized.DELETE("/:portalId", portalHandler.Delete)
		}
	}

	// Public resolution endpoints.
	r.GET("/r/:code", linkHandler.Redirect)
	r.GET("/wifi/:slug", portalHandler.PublicView)

	return r
}
