package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/savvahub/referral-api/services"
)

const topReferrersLimit = 10

type AdminHandler struct {
	admin *services.RewardAdminService
}

func NewAdminHandler(admin *services.RewardAdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) TopReferrers(c *fiber.Ctx) error {
	top, err := h.admin.TopReferrers(topReferrersLimit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(top)
}

func (h *AdminHandler) CreditReward(c *fiber.Ctx) error {
	rewardID, err := uuid.Parse(c.Params("rewardId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reward id"})
	}

	reward, err := h.admin.Credit(rewardID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":   "Reward credited successfully",
		"reward_id": reward.ID,
		"status":    reward.Status,
	})
}

func (h *AdminHandler) RevokeReward(c *fiber.Ctx) error {
	rewardID, err := uuid.Parse(c.Params("rewardId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reward id"})
	}

	reward, err := h.admin.Revoke(rewardID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":   "Reward revoked successfully",
		"reward_id": reward.ID,
		"status":    reward.Status,
	})
}

type RewardConfigRequest struct {
	RewardType  string `json:"reward_type"`
	RewardValue int    `json:"reward_value"`
	RewardUnit  string `json:"reward_unit"`
}

func (h *AdminHandler) CreateRewardConfig(c *fiber.Ctx) error {
	var req RewardConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	cfg, err := h.admin.CreateConfig(req.RewardType, req.RewardValue, req.RewardUnit)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Reward config created",
		"id":           cfg.ID,
		"reward_type":  cfg.RewardType,
		"reward_value": cfg.RewardValue,
		"reward_unit":  cfg.RewardUnit,
		"is_active":    cfg.IsActive,
	})
}
