package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Routes groups the handlers mounted by Register.
type Routes struct {
	Auth      *AuthHandler
	Records   *RecordsHandler
	Dashboard *DashboardHandler
	Pages     *PageHandler
	Metrics   *MetricsHandler

	// Gate runs before every route that needs a records session.
	Gate gin.HandlerFunc

	Templates      *template.Template
	Static         http.FileSystem
	MetricsEnabled bool
}

// Register mounts every route on r.
func Register(r *gin.Engine, routes Routes) {
	if routes.Templates != nil {
		r.SetHTMLTemplate(routes.Templates)
	}
	if routes.Static != nil {
		r.StaticFS("/static", routes.Static)
	}

	r.GET("/health", routes.Metrics.Health)
	r.GET("/ready", routes.Metrics.Ready)
	if routes.MetricsEnabled {
		r.GET("/metrics", routes.Metrics.Prometheus)
	}

	r.GET("/", routes.Pages.Root)
	r.GET("/home", routes.Pages.Home)
	r.GET("/login", routes.Pages.Login)
	r.POST("/api/verify-credentials", routes.Auth.VerifyCredentials)
	r.GET("/api/auth-status", routes.Auth.Status)

	protected := r.Group("/")
	if routes.Gate != nil {
		protected.Use(routes.Gate)
	}
	protected.GET("/dashboard", routes.Pages.Dashboard)
	protected.GET("/dashboard/attendance", routes.Pages.Attendance)
	protected.POST("/api/logout", routes.Auth.Logout)
	protected.GET("/api/user", routes.Records.User)
	protected.GET("/api/getAttendance", routes.Records.Attendance)
	protected.GET("/api/getBehaviour", routes.Records.Behaviour)
	protected.GET("/api/getAnnouncements", routes.Records.Announcements)
	protected.GET("/api/dashboard/view", routes.Dashboard.View)
	protected.GET("/api/dashboard/announcements", routes.Dashboard.Announcements)
	protected.GET("/api/attendance/export", routes.Dashboard.Export)
	protected.GET("/api/attendance/chart.png", routes.Dashboard.Chart)
}
