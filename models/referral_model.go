package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Referral struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Code    string    `gorm:"size:20;not null;uniqueIndex" json:"referral_code"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"referred_by"`

	RedeemedByID *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"referral_code_used"`
	RedeemedAt   *time.Time `json:"referral_used_at"`

	Owner      User  `gorm:"foreignkey:OwnerID" json:"-"`
	RedeemedBy *User `gorm:"foreignkey:RedeemedByID" json:"-"`

	CreatedAt time.Time `json:"referred_at"`
}

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
