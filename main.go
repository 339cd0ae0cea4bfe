package main

import (
	"context"
	"log"
	"time"

	"doctor_crm_gateway/cache"
	"doctor_crm_gateway/config"
	"doctor_crm_gateway/db"
	"doctor_crm_gateway/routes"
	"doctor_crm_gateway/services"
	"doctor_crm_gateway/session"
	"doctor_crm_gateway/upstream"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using environment as-is")
	}
	cfg := config.Load()

	r := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsConfig))

	// Session store: Postgres when configured, memory otherwise.
	var sessions session.Store
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := db.InitDatabase(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to the database: %v", err)
		}
		defer pool.Close()
		sessions = session.NewPGStore(pool)
	} else {
		log.Printf("[SESSION] DATABASE_URL not set, sessions are in-memory")
		sessions = session.NewMemoryStore()
	}

	app := &services.App{
		Cfg:      cfg,
		CRM:      upstream.NewClient(cfg.UpstreamBaseURL, cfg.RequestTimeout),
		Cache:    cache.New(cfg.RedisURL, cfg.CacheTTL),
		Sessions: sessions,
		Mailer:   services.NewMailer(cfg.SendgridAPIKey, cfg.MailFrom, cfg.MailFromName),
	}

	routes.SetupDoctorRoutes(r, app)
	routes.SetupLeadRoutes(r, app)
	routes.SetupAppointmentRoutes(r, app)
	routes.SetupAnalyticsRoutes(r, app)
	routes.SetupOwnerRoutes(r, app)

	log.Printf("gateway listening on :%s, upstream %s", cfg.Port, cfg.UpstreamBaseURL)
	r.Run(":" + cfg.Port)
}
