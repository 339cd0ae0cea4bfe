package routes

import (
	"doctor_crm_gateway/auth"
	"doctor_crm_gateway/services"
	"doctor_crm_gateway/session"

	"github.com/gin-gonic/gin"
)

func SetupLeadRoutes(r *gin.Engine, app *services.App) {
	doctorOnly := auth.RequireSession(app.Cfg.JWTSecret, app.Sessions, session.RoleDoctor)

	doctors := r.Group("/api/v1/doctors", doctorOnly)
	{
		doctors.GET("/patients", app.GetLeads)
		doctors.GET("/patients/:id", app.GetLead)
		doctors.PUT("/patients/update/:id", app.UpdateLead)
		doctors.GET("/recent-patients", app.GetRecentLeads)
	}

	// The add-lead and live-search endpoints live outside the
	// versioned prefix upstream; the gateway mirrors that.
	patient := r.Group("/api/patient", doctorOnly)
	{
		patient.GET("/filter", app.FilterLeads)
		patient.POST("/create", app.CreateLead)
	}
}
