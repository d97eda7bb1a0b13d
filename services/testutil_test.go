package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/savvahub/referral-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Otp{},
		&models.Referral{},
		&models.RewardConfig{},
		&models.RewardLedger{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()

	user := models.User{
		Name:       name,
		Email:      name + "@example.com",
		Password:   "hashed",
		IsVerified: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func createSignupConfig(t *testing.T, db *gorm.DB, value int) {
	t.Helper()

	cfg := models.RewardConfig{
		RewardType:  models.RewardTypeSignup,
		RewardValue: value,
		RewardUnit:  models.RewardUnitPoints,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&cfg).Error)
}
