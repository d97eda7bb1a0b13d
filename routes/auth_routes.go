package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/savvahub/referral-api/handlers"
)

func AuthRoutes(app *fiber.App, auth *handlers.AuthHandler) {
	api := app.Group("/api/v1/auth")

	api.Post("/signup", auth.Signup)
	api.Post("/verify-otp", auth.VerifyOtp)
	api.Post("/login", auth.Login)
}
