package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/savvahub/referral-api/handlers"
	"github.com/savvahub/referral-api/middleware"
)

func AdminRoutes(app *fiber.App, jwtSecret string, admin *handlers.AdminHandler) {
	api := app.Group("/api/v1/admin", middleware.Protected(jwtSecret), middleware.AdminRequired())

	api.Get("/referrals/top", admin.TopReferrers)
	api.Post("/rewards/:rewardId/credit", admin.CreditReward)
	api.Post("/rewards/:rewardId/revoke", admin.RevokeReward)
	api.Post("/reward-config", admin.CreateRewardConfig)
}
