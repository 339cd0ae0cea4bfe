package routes

import (
	"doctor_crm_gateway/auth"
	"doctor_crm_gateway/services"
	"doctor_crm_gateway/session"

	"github.com/gin-gonic/gin"
)

func SetupOwnerRoutes(r *gin.Engine, app *services.App) {
	r.POST("/api/medical-owner/login", app.LoginOwner)
	r.POST("/api/medical-owner/register", app.RegisterOwner)

	owner := r.Group("/api/medical-owner",
		auth.RequireSession(app.Cfg.JWTSecret, app.Sessions, session.RoleMedicalOwner))
	{
		owner.GET("/profile", app.GetOwnerProfile)
		owner.PUT("/update-profile", app.UpdateOwnerProfile)
		owner.GET("/medicines", app.ListMedicines)
		owner.POST("/medicines", app.CreateMedicine)
		owner.PUT("/medicines/:id", app.UpdateMedicine)
		owner.DELETE("/medicines/:id", app.DeleteMedicine)
		owner.POST("/bills/generate", app.GenerateBill)
	}
}
