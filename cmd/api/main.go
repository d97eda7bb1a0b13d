package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	config "github.com/savvahub/referral-api/configs"
	"github.com/savvahub/referral-api/database"
	"github.com/savvahub/referral-api/handlers"
	"github.com/savvahub/referral-api/jobs"
	"github.com/savvahub/referral-api/notifications"
	"github.com/savvahub/referral-api/routes"
	"github.com/savvahub/referral-api/services"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.SeedAdmin(db, cfg); err != nil {
		log.Fatalf("🔥 %v", err)
	}

	mailer := notifications.NewEmailService(cfg)

	referralService := services.NewReferralService(db)
	adminService := services.NewRewardAdminService(db, mailer)

	c := cron.New()
	c.AddFunc("*/10 * * * *", func() { jobs.ReconcileRewards(referralService) })
	go c.Start()
	log.Println("✅ Reward reconciliation job scheduled")

	app := fiber.New(fiber.Config{
		AppName:       "SavvaHub Referrals",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.AuthRoutes(app, handlers.NewAuthHandler(db, cfg, mailer))
	routes.ReferralRoutes(app, cfg.JWTSecret, handlers.NewReferralHandler(referralService))
	routes.AdminRoutes(app, cfg.JWTSecret, handlers.NewAdminHandler(adminService))

	log.Printf("✅ Server is running on %s", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
