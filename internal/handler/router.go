package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/hiraya-scholars/hiraya-api/internal/middleware"
	"github.com/hiraya-scholars/hiraya-api/internal/models"
	"github.com/hiraya-scholars/hiraya-api/internal/service"
)

// Routes holds the handlers and cross-cutting services the router needs.
type Routes struct {
	Auth         *AuthHandler
	Applications *ApplicationHandler
	Documents    *DocumentHandler
	Admin        *AdminHandler
	AuthService  *service.AuthService
	Metrics      *service.MetricsService
	APIPrefix    string
	EnableDocs   bool
	ExportsOn    bool
}

// Register mounts every route on the engine.
func (r Routes) Register(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/metrics", gin.WrapH(r.Metrics.Handler()))

	if r.EnableDocs {
		engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := r.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := engine.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", r.Auth.Register)
		auth.POST("/login", r.Auth.Login)
		auth.POST("/admin/login", r.Auth.AdminLogin)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(r.AuthService))
	{
		authed.GET("/auth/me", r.Auth.Me)
		authed.POST("/auth/change-password", r.Auth.ChangePassword)

		authed.GET("/applications/draft", r.Applications.GetDraft)
		authed.POST("/applications/draft", r.Applications.SaveDraft)
		authed.GET("/applications/:id", r.Applications.Get)
		authed.DELETE("/applications/:id", r.Applications.DeleteDraft)
		authed.POST("/applications/:id/submit", r.Applications.Submit)
		authed.GET("/applications/:id/progress", r.Applications.Progress)
		authed.GET("/applications/:id/timeline", r.Applications.Timeline)

		authed.POST("/applications/:id/documents", r.Documents.Upload)
		authed.GET("/applications/:id/documents", r.Documents.List)
		authed.GET("/documents/:id/download", r.Documents.Download)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(r.AuthService), middleware.RequireStaff())
	{
		admin.GET("/dashboard", r.Admin.Dashboard)
		admin.GET("/applications", r.Admin.ListApplications)
		admin.GET("/applications/:id", r.Admin.GetApplication)
		admin.PUT("/applications/:id/status", middleware.RequirePermission(func(p models.PermissionSet) bool {
			return p.CanChangeApplicationStatus
		}), r.Admin.UpdateStatus)
		admin.DELETE("/applications/:id", middleware.RequirePermission(func(p models.PermissionSet) bool {
			return p.CanManageUsers
		}), r.Admin.DeleteApplication)
		admin.POST("/applications/:id/timeline", r.Admin.AddComment)
		admin.POST("/documents/:id/verify", middleware.RequirePermission(func(p models.PermissionSet) bool {
			return p.CanVerifyDocuments
		}), r.Admin.VerifyDocument)
		admin.GET("/users", middleware.RequirePermission(func(p models.PermissionSet) bool {
			return p.CanManageUsers
		}), r.Admin.ListUsers)
		admin.PUT("/users/:id", middleware.RequirePermission(func(p models.PermissionSet) bool {
			return p.CanManageUsers
		}), r.Admin.UpdateUser)
		if r.ExportsOn {
			admin.GET("/export/applications", middleware.RequirePermission(func(p models.PermissionSet) bool {
				return p.CanExportData
			}), r.Admin.ExportApplications)
		}
	}
}
