package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/savvahub/referral-api/handlers"
	"github.com/savvahub/referral-api/middleware"
)

func ReferralRoutes(app *fiber.App, jwtSecret string, referral *handlers.ReferralHandler) {
	api := app.Group("/api/v1", middleware.Protected(jwtSecret))

	referrals := api.Group("/referrals")
	referrals.Post("/generate", referral.Generate)
	referrals.Post("/apply", referral.Apply)
	referrals.Get("/analytics/summary", referral.Summary)
	referrals.Get("/analytics/list", referral.List)
	referrals.Get("/analytics/timeline", referral.Timeline)

	rewards := api.Group("/rewards")
	rewards.Get("/history", referral.RewardHistory)
}
