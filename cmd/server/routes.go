package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/httpapi"
)

const (
	publicRouteFeedback      = "/api/feedback"
	publicRouteSocialLinks   = "/api/social-links"
	publicRouteRevealGesture = "/api/admin/reveal"

	adminRouteLogin          = "/api/admin/login"
	adminRouteLogout         = "/api/admin/logout"
	adminRouteSession        = "/api/admin/session"
	adminRoutePrefix         = "/api/admin"
	adminRouteFeedback       = "/feedback"
	adminRouteFeedbackByID   = "/feedback/:id"
	adminRouteFeedbackStats  = "/feedback/stats"
	adminRouteFeedbackExport = "/feedback/export"
	adminRouteSocialLinks    = "/social-links"

	corsOriginWildcard      = "*"
	corsHeaderAuthorization = "Authorization"
	corsHeaderContentType   = "Content-Type"
	httpMethodGet           = "GET"
	httpMethodOptions       = "OPTIONS"
	httpMethodPost          = "POST"
	httpMethodPatch         = "PATCH"
	httpMethodDelete        = "DELETE"
	httpMethodPut           = "PUT"
)

var (
	corsAllowedMethods = []string{httpMethodPost, httpMethodGet, httpMethodOptions, httpMethodPatch, httpMethodDelete, httpMethodPut}
	corsAllowedHeaders = []string{corsHeaderAuthorization, corsHeaderContentType}
	corsExposedHeaders = []string{corsHeaderContentType}
	corsAllowOrigins   = []string{corsOriginWildcard}
)

func buildRouter(database *gorm.DB, logger *zap.Logger, serverConfig ServerConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsAllowOrigins,
		AllowMethods:     corsAllowedMethods,
		AllowHeaders:     corsAllowedHeaders,
		ExposeHeaders:    corsExposedHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	sessionManager := httpapi.NewSessionManager(logger, serverConfig.SessionSecret, serverConfig.SessionTTL)
	publicHandlers := httpapi.NewPublicHandlers(database, logger, serverConfig.GestureKey, serverConfig.GestureLength)
	authHandlers := httpapi.NewAuthHandlers(logger, sessionManager, serverConfig.AdminPassword)
	adminHandlers := httpapi.NewAdminHandlers(database, logger)
	pageHandlers := httpapi.NewPageHandlers(database, logger, sessionManager)

	registerFrontendRoutes(router, pageHandlers)
	registerBackendRoutes(router, sessionManager, publicHandlers, authHandlers, adminHandlers)

	return router
}

func registerFrontendRoutes(router *gin.Engine, pageHandlers *httpapi.PageHandlers) {
	router.GET(httpapi.RouteRoot, pageHandlers.RenderRoot)
	router.GET(httpapi.RouteThankYou, pageHandlers.RenderThankYou)
	router.GET(httpapi.RouteAdmin, pageHandlers.RenderAdmin)
}

func registerBackendRoutes(
	router *gin.Engine,
	sessionManager *httpapi.SessionManager,
	publicHandlers *httpapi.PublicHandlers,
	authHandlers *httpapi.AuthHandlers,
	adminHandlers *httpapi.AdminHandlers,
) {
	router.POST(publicRouteFeedback, publicHandlers.CreateFeedback)
	router.GET(publicRouteSocialLinks, publicHandlers.SocialLinks)
	router.POST(publicRouteRevealGesture, publicHandlers.RevealAdminLogin)

	router.POST(adminRouteLogin, authHandlers.Login)
	router.POST(adminRouteLogout, authHandlers.Logout)
	router.GET(adminRouteSession, authHandlers.SessionStatus)

	adminGroup := router.Group(adminRoutePrefix)
	adminGroup.Use(sessionManager.RequireAdminJSON())
	adminGroup.GET(adminRouteFeedback, adminHandlers.ListFeedback)
	adminGroup.POST(adminRouteFeedback, adminHandlers.CreateFeedback)
	adminGroup.GET(adminRouteFeedbackStats, adminHandlers.FeedbackStatistics)
	adminGroup.GET(adminRouteFeedbackExport, adminHandlers.ExportFeedbackCSV)
	adminGroup.PATCH(adminRouteFeedbackByID, adminHandlers.UpdateFeedback)
	adminGroup.DELETE(adminRouteFeedbackByID, adminHandlers.DeleteFeedback)
	adminGroup.GET(adminRouteSocialLinks, adminHandlers.SocialLinks)
	adminGroup.PUT(adminRouteSocialLinks, adminHandlers.SaveSocialLinks)
}
