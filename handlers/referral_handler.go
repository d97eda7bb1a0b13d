package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/savvahub/referral-api/middleware"
	"github.com/savvahub/referral-api/services"
)

type ReferralHandler struct {
	referrals *services.ReferralService
}

func NewReferralHandler(referrals *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

// statusForServiceError maps the service sentinels onto HTTP statuses; each
// condition keeps its own message so callers can tell the failures apart.
func statusForServiceError(err error) int {
	switch {
	case errors.Is(err, services.ErrCodeNotFound),
		errors.Is(err, services.ErrRewardNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrSelfRedemption),
		errors.Is(err, services.ErrCodeAlreadyUsed),
		errors.Is(err, services.ErrUserAlreadyRedeemed),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrRewardConfigMissing):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrMissingConfigFields):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrCodeGenerationExhausted):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func serviceError(c *fiber.Ctx, err error) error {
	status := statusForServiceError(err)
	if status == fiber.StatusInternalServerError {
		return fiber.ErrInternalServerError
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func (h *ReferralHandler) Generate(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	referral, err := h.referrals.Issue(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":            referral.ID,
		"referral_code": referral.Code,
		"referred_by":   referral.OwnerID,
	})
}

type ApplyReferralRequest struct {
	ReferralCode string `json:"referral_code" validate:"required"`
}

func (h *ReferralHandler) Apply(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req ApplyReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "referral_code required"})
	}

	referral, err := h.referrals.Redeem(userID, req.ReferralCode)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":       "Referral applied successfully",
		"referral_code": referral.Code,
	})
}

func (h *ReferralHandler) Summary(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	summary, err := h.referrals.Summary(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(summary)
}

func (h *ReferralHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	entries, err := h.referrals.Redemptions(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(entries)
}

func (h *ReferralHandler) Timeline(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	points, err := h.referrals.Timeline(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(points)
}

func (h *ReferralHandler) RewardHistory(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	history, err := h.referrals.RewardHistory(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(history)
}
