package routes

import (
	"doctor_crm_gateway/auth"
	"doctor_crm_gateway/services"
	"doctor_crm_gateway/session"

	"github.com/gin-gonic/gin"
)

func SetupAnalyticsRoutes(r *gin.Engine, app *services.App) {
	doctors := r.Group("/api/v1/doctors",
		auth.RequireSession(app.Cfg.JWTSecret, app.Sessions, session.RoleDoctor))
	{
		doctors.GET("/stats", app.GetStats)
		doctors.GET("/count/week", app.GetWeekCount)
		doctors.GET("/patient-stats/months", app.GetMonthlyPatientStats)
		doctors.GET("/patient-stats/weeks", app.GetWeeklyPatientStats)
		doctors.GET("/analytics", app.GetAnalytics)
	}
}
