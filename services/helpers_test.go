package services

import (
	"context"
	"testing"
	"time"

	"doctor_crm_gateway/auth"
	"doctor_crm_gateway/cache"
	"doctor_crm_gateway/config"
	"doctor_crm_gateway/session"
	"doctor_crm_gateway/upstream"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestApp builds an App against a fake upstream with an in-memory
// cache and session store, plus a logged-in doctor session. It returns
// the gateway token for that session.
func newTestApp(t *testing.T, upstreamURL string) (*App, string) {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		UpstreamBaseURL: upstreamURL,
		DashboardURL:    "http://localhost:5173/dashboard",
		CacheTTL:        5 * time.Minute,
		RequestTimeout:  5 * time.Second,
	}
	store := session.NewMemoryStore()
	app := &App{
		Cfg:      cfg,
		CRM:      upstream.NewClient(upstreamURL, cfg.RequestTimeout),
		Cache:    cache.NewMemory(cfg.CacheTTL, nil),
		Sessions: store,
	}

	token, sessionID, err := auth.GenerateToken(cfg.JWTSecret, session.RoleDoctor)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	err = store.Save(context.Background(), session.Session{
		ID:            sessionID,
		UpstreamToken: "upstream-token",
		Email:         "doc@example.com",
		UserID:        "doc-1",
		Role:          session.RoleDoctor,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("Save session: %v", err)
	}
	return app, token
}

// newTestRouter wires the routes the handler tests exercise, behind the
// same middleware main uses.
func newTestRouter(app *App) *gin.Engine {
	r := gin.New()
	r.POST("/api/v1/doctors/login", app.LoginDoctor)

	protected := r.Group("/api/v1/doctors",
		auth.RequireSession(app.Cfg.JWTSecret, app.Sessions, session.RoleDoctor))
	protected.POST("/logout", app.LogoutDoctor)
	protected.GET("/patients", app.GetLeads)
	protected.GET("/recent-patients", app.GetRecentLeads)
	protected.GET("/stats", app.GetStats)
	protected.GET("/appointments", app.GetAppointmentView)
	protected.GET("/appointments/today", app.GetTodaysAppointments)
	protected.PATCH("/appointments/edit/:id", app.RescheduleAppointment)
	return r
}
