package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/savvahub/referral-api/models"
	"github.com/savvahub/referral-api/notifications"
)

// RewardAdminService is the operator surface: it moves ledger entries out of
// PENDING and manages reward configs.
type RewardAdminService struct {
	db     *gorm.DB
	mailer *notifications.EmailService
}

func NewRewardAdminService(db *gorm.DB, mailer *notifications.EmailService) *RewardAdminService {
	return &RewardAdminService{db: db, mailer: mailer}
}

// Credit moves a pending reward to CREDITED. Crediting anything but a
// pending entry fails with ErrInvalidTransition; callers must not retry.
func (s *RewardAdminService) Credit(rewardID uuid.UUID) (*models.RewardLedger, error) {
	reward, err := s.transition(rewardID, models.RewardStatusCredited)
	if err != nil {
		return nil, err
	}

	go s.mailer.Send(
		reward.User.Name,
		reward.User.Email,
		"Your referral reward has been credited",
		fmt.Sprintf("<h1>Good news!</h1><p>Your referral reward of %d %s has been credited.</p>",
			reward.RewardValue, reward.RewardUnit),
	)

	return reward, nil
}

// Revoke moves a pending reward to REVOKED.
func (s *RewardAdminService) Revoke(rewardID uuid.UUID) (*models.RewardLedger, error) {
	return s.transition(rewardID, models.RewardStatusRevoked)
}

func (s *RewardAdminService) transition(rewardID uuid.UUID, to string) (*models.RewardLedger, error) {
	var reward models.RewardLedger
	err := s.db.Preload("User").First(&reward, "id = ?", rewardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRewardNotFound
	}
	if err != nil {
		return nil, err
	}

	if reward.Status != models.RewardStatusPending {
		return nil, ErrInvalidTransition
	}

	// conditional update so a concurrent transition cannot double-apply
	res := s.db.Model(&models.RewardLedger{}).
		Where("id = ? AND status = ?", rewardID, models.RewardStatusPending).
		Update("status", to)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	reward.Status = to
	return &reward, nil
}

// CreateConfig stores a new active payout rule. At most one config per type
// is active at a time: any currently active config of the same type is
// deactivated in the same transaction.
func (s *RewardAdminService) CreateConfig(rewardType string, rewardValue int, rewardUnit string) (*models.RewardConfig, error) {
	if rewardType == "" || rewardValue == 0 || rewardUnit == "" {
		return nil, ErrMissingConfigFields
	}

	cfg := models.RewardConfig{
		RewardType:  rewardType,
		RewardValue: rewardValue,
		RewardUnit:  rewardUnit,
		IsActive:    true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RewardConfig{}).
			Where("reward_type = ? AND is_active = ?", rewardType, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&cfg).Error
	})
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

type TopReferrer struct {
	UserID              uuid.UUID `json:"user_id"`
	SuccessfulReferrals int64     `json:"successful_referrals"`
}

// TopReferrers ranks owners by successful redemptions, descending. Ties are
// broken by owner id ascending so the ordering is deterministic.
func (s *RewardAdminService) TopReferrers(limit int) ([]TopReferrer, error) {
	var top []TopReferrer
	err := s.db.Model(&models.Referral{}).
		Select("owner_id AS user_id, count(*) AS successful_referrals").
		Where("redeemed_by_id IS NOT NULL").
		Group("owner_id").
		Order("successful_referrals desc, owner_id asc").
		Limit(limit).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}
	return top, nil
}
