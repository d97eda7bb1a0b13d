package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/savvahub/referral-api/models"
	"github.com/savvahub/referral-api/utils"
)

const maxCodeAttempts = 5

// ReferralService owns the issuance and redemption workflow plus the
// read-only analytics projections over it.
type ReferralService struct {
	db      *gorm.DB
	entropy io.Reader
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{db: db, entropy: rand.Reader}
}

// Issue returns the owner's referral, creating one on first call. Calling
// twice never creates a second code. Code collisions are retried with a
// fresh candidate up to maxCodeAttempts before giving up.
func (s *ReferralService) Issue(ownerID uuid.UUID) (*models.Referral, error) {
	var existing models.Referral
	err := s.db.Where("owner_id = ?", ownerID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := utils.BuildReferralCode(s.entropy)
		if err != nil {
			return nil, err
		}

		referral := models.Referral{Code: code, OwnerID: ownerID}
		err = s.db.Create(&referral).Error
		if err == nil {
			return &referral, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// collision, try a fresh candidate
	}

	return nil, ErrCodeGenerationExhausted
}

// Redeem consumes a referral code for userID and grants the owner a pending
// signup reward. The invariant checks run in a fixed order so the first
// violated one is the one reported. The conditional update is the commit
// point: once it lands the code is consumed even if the grant below fails.
func (s *ReferralService) Redeem(userID uuid.UUID, code string) (*models.Referral, error) {
	var referral models.Referral
	err := s.db.Where("code = ?", code).First(&referral).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}

	if referral.OwnerID == userID {
		return nil, ErrSelfRedemption
	}

	if referral.RedeemedByID != nil {
		return nil, ErrCodeAlreadyUsed
	}

	var redeemed int64
	if err := s.db.Model(&models.Referral{}).
		Where("redeemed_by_id = ?", userID).
		Count(&redeemed).Error; err != nil {
		return nil, err
	}
	if redeemed > 0 {
		return nil, ErrUserAlreadyRedeemed
	}

	now := time.Now().UTC()
	res := s.db.Model(&models.Referral{}).
		Where("id = ? AND redeemed_by_id IS NULL", referral.ID).
		Updates(map[string]interface{}{
			"redeemed_by_id": userID,
			"redeemed_at":    now,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			// the unique index on redeemed_by_id caught a concurrent
			// redemption by the same user
			return nil, ErrUserAlreadyRedeemed
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// another request consumed the code between the read and the update
		return nil, ErrCodeAlreadyUsed
	}
	referral.RedeemedByID = &userID
	referral.RedeemedAt = &now

	if err := s.GrantReward(&referral); err != nil {
		return nil, err
	}

	return &referral, nil
}

// GrantReward creates the owner's pending signup reward for a consumed
// referral. Idempotent: an existing ledger entry for the same
// (owner, referral, type) means the reward was already granted and is left
// untouched. Also run by the reconciliation job for referrals consumed
// before a previous grant could land.
func (s *ReferralService) GrantReward(referral *models.Referral) error {
	var cfg models.RewardConfig
	err := s.db.Where("reward_type = ? AND is_active = ?", models.RewardTypeSignup, true).
		Order("created_at desc").
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRewardConfigMissing
	}
	if err != nil {
		return err
	}

	var granted int64
	if err := s.db.Model(&models.RewardLedger{}).
		Where("user_id = ? AND referral_id = ? AND reward_type = ?",
			referral.OwnerID, referral.ID, models.RewardTypeSignup).
		Count(&granted).Error; err != nil {
		return err
	}
	if granted > 0 {
		return nil
	}

	entry := models.RewardLedger{
		UserID:     referral.OwnerID,
		ReferralID: referral.ID,
		// snapshot the config so later edits never rewrite history
		RewardType:  cfg.RewardType,
		RewardValue: cfg.RewardValue,
		RewardUnit:  cfg.RewardUnit,
		Status:      models.RewardStatusPending,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// a concurrent retry granted it first
			return nil
		}
		return err
	}
	return nil
}

// ReconcileRewards re-runs the grant step for referrals that were consumed
// but never rewarded. Returns how many grants were created or confirmed.
func (s *ReferralService) ReconcileRewards() (int, error) {
	sub := s.db.Model(&models.RewardLedger{}).
		Select("referral_id").
		Where("reward_type = ?", models.RewardTypeSignup)

	var pending []models.Referral
	if err := s.db.Where("redeemed_by_id IS NOT NULL").
		Where("id NOT IN (?)", sub).
		Find(&pending).Error; err != nil {
		return 0, err
	}

	granted := 0
	for i := range pending {
		if err := s.GrantReward(&pending[i]); err != nil {
			return granted, err
		}
		granted++
	}
	return granted, nil
}

type ReferralSummary struct {
	MyReferralCode      *string `json:"my_referral_code"`
	TotalReferrals      int64   `json:"total_referrals"`
	SuccessfulReferrals int64   `json:"successful_referrals"`
	ConversionRate      string  `json:"conversion_rate"`
}

// Summary reports the owner's referral performance. The conversion rate is
// truncated to a whole percent, not rounded.
func (s *ReferralService) Summary(ownerID uuid.UUID) (*ReferralSummary, error) {
	var mine models.Referral
	err := s.db.Where("owner_id = ?", ownerID).First(&mine).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ReferralSummary{ConversionRate: "0%"}, nil
	}
	if err != nil {
		return nil, err
	}

	var total, success int64
	if err := s.db.Model(&models.Referral{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Referral{}).
		Where("owner_id = ? AND redeemed_by_id IS NOT NULL", ownerID).
		Count(&success).Error; err != nil {
		return nil, err
	}

	rate := int64(0)
	if total > 0 {
		rate = success * 100 / total
	}

	return &ReferralSummary{
		MyReferralCode:      &mine.Code,
		TotalReferrals:      total,
		SuccessfulReferrals: success,
		ConversionRate:      fmt.Sprintf("%d%%", rate),
	}, nil
}

type RedemptionEntry struct {
	UsedByUserID *uuid.UUID `json:"used_by_user_id"`
	UsedAt       *time.Time `json:"used_at"`
	Status       string     `json:"status"`
}

// Redemptions lists the owner's referrals in creation order, marking each
// SUCCESS once redeemed and PENDING otherwise.
func (s *ReferralService) Redemptions(ownerID uuid.UUID) ([]RedemptionEntry, error) {
	var referrals []models.Referral
	if err := s.db.Where("owner_id = ?", ownerID).
		Order("created_at asc").
		Find(&referrals).Error; err != nil {
		return nil, err
	}

	entries := make([]RedemptionEntry, 0, len(referrals))
	for _, r := range referrals {
		entry := RedemptionEntry{Status: "PENDING"}
		if r.RedeemedByID != nil {
			entry.Status = "SUCCESS"
			entry.UsedByUserID = r.RedeemedByID
			entry.UsedAt = r.RedeemedAt
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

type TimelinePoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Timeline groups the owner's successful redemptions by UTC day, ascending.
func (s *ReferralService) Timeline(ownerID uuid.UUID) ([]TimelinePoint, error) {
	var referrals []models.Referral
	if err := s.db.Where("owner_id = ? AND redeemed_by_id IS NOT NULL", ownerID).
		Find(&referrals).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, r := range referrals {
		if r.RedeemedAt == nil {
			continue
		}
		counts[r.RedeemedAt.UTC().Format("2006-01-02")]++
	}

	points := make([]TimelinePoint, 0, len(counts))
	for date, count := range counts {
		points = append(points, TimelinePoint{Date: date, Count: count})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

type RewardHistoryEntry struct {
	RewardID    uuid.UUID `json:"reward_id"`
	RewardType  string    `json:"reward_type"`
	RewardValue int       `json:"reward_value"`
	RewardUnit  string    `json:"reward_unit"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// RewardHistory lists the user's ledger entries newest-first.
func (s *ReferralService) RewardHistory(userID uuid.UUID) ([]RewardHistoryEntry, error) {
	var rewards []models.RewardLedger
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&rewards).Error; err != nil {
		return nil, err
	}

	entries := make([]RewardHistoryEntry, 0, len(rewards))
	for _, r := range rewards {
		entries = append(entries, RewardHistoryEntry{
			RewardID:    r.ID,
			RewardType:  r.RewardType,
			RewardValue: r.RewardValue,
			RewardUnit:  r.RewardUnit,
			Status:      r.Status,
			CreatedAt:   r.CreatedAt,
		})
	}
	return entries, nil
}
