package routes

import (
	"doctor_crm_gateway/auth"
	"doctor_crm_gateway/services"
	"doctor_crm_gateway/session"

	"github.com/gin-gonic/gin"
)

func SetupDoctorRoutes(r *gin.Engine, app *services.App) {
	r.POST("/api/v1/doctors/login", app.LoginDoctor)
	r.POST("/api/v1/doctors/register", app.RegisterDoctor)
	r.POST("/api/v1/doctors/reset-password-request", app.RequestPasswordReset)
	r.POST("/api/v1/doctors/reset-password/:token", app.ResetPassword)
	r.GET("/api/v1/doctors/auth/google/callback", app.GoogleCallback)

	protected := r.Group("/api/v1/doctors")
	protected.Use(auth.RequireSession(app.Cfg.JWTSecret, app.Sessions, session.RoleDoctor))
	{
		protected.POST("/logout", app.LogoutDoctor)
		protected.GET("/profile/:id", app.GetDoctorProfile)
		protected.PUT("/update/:id", app.UpdateDoctorProfile)
		protected.PUT("/change-password", app.ChangePassword)
	}
}
