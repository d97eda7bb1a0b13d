package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RewardStatusPending  = "PENDING"
	RewardStatusCredited = "CREDITED"
	RewardStatusRevoked  = "REVOKED"
)

// RewardLedger is append-mostly: rows are created in PENDING and only ever
// move to one of the two terminal states. The compound unique index is the
// store-level duplicate-reward guard.
type RewardLedger struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_reward_once" json:"user_id"`
	ReferralID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reward_once" json:"referral_id"`

	// snapshot of the RewardConfig at grant time
	RewardType  string `gorm:"size:20;not null;uniqueIndex:idx_reward_once" json:"reward_type"`
	RewardValue int    `gorm:"not null" json:"reward_value"`
	RewardUnit  string `gorm:"size:20;not null" json:"reward_unit"`

	Status string `gorm:"size:20;not null;default:'PENDING'" json:"status"`

	User     User     `gorm:"foreignkey:UserID" json:"-"`
	Referral Referral `gorm:"foreignkey:ReferralID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *RewardLedger) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
