package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RewardTypeSignup     = "SIGNUP"
	RewardTypeFirstOrder = "FIRST_ORDER"

	RewardUnitPoints = "POINTS"
	RewardUnitCash   = "CASH"
)

type RewardConfig struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	RewardType  string    `gorm:"size:20;not null;index" json:"reward_type"`
	RewardValue int       `gorm:"not null" json:"reward_value"`
	RewardUnit  string    `gorm:"size:20;not null" json:"reward_unit"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *RewardConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
