package routes

import (
	"doctor_crm_gateway/auth"
	"doctor_crm_gateway/services"
	"doctor_crm_gateway/session"

	"github.com/gin-gonic/gin"
)

func SetupAppointmentRoutes(r *gin.Engine, app *services.App) {
	doctors := r.Group("/api/v1/doctors",
		auth.RequireSession(app.Cfg.JWTSecret, app.Sessions, session.RoleDoctor))
	{
		doctors.GET("/appointments", app.GetAppointmentView)
		doctors.GET("/appointments/today", app.GetTodaysAppointments)
		doctors.GET("/upcoming-appointments", app.GetUpcomingAppointments)
		doctors.GET("/appointments/count", app.GetAppointmentCount)
		doctors.POST("/appointments/create", app.CreateAppointment)
		doctors.PATCH("/appointments/edit/:id", app.RescheduleAppointment)
		doctors.POST("/appointments/notify", app.NotifyAppointment)
	}
}
