package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	config "github.com/savvahub/referral-api/configs"
	"github.com/savvahub/referral-api/handlers"
	"github.com/savvahub/referral-api/models"
	"github.com/savvahub/referral-api/routes"
	"github.com/savvahub/referral-api/services"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
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

	cfg := config.Config{JWTSecret: testSecret}
	referralService := services.NewReferralService(db)
	adminService := services.NewRewardAdminService(db, nil)

	app := fiber.New()
	routes.AuthRoutes(app, handlers.NewAuthHandler(db, cfg, nil))
	routes.ReferralRoutes(app, cfg.JWTSecret, handlers.NewReferralHandler(referralService))
	routes.AdminRoutes(app, cfg.JWTSecret, handlers.NewAdminHandler(adminService))
	return app, db
}

func seedUser(t *testing.T, db *gorm.DB, name string, admin bool) models.User {
	t.Helper()

	user := models.User{
		Name:       name,
		Email:      name + "@example.com",
		Password:   "hashed",
		IsVerified: true,
		IsAdmin:    admin,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func TestGenerateRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/referrals/generate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGenerateAndApplyFlow(t *testing.T) {
	app, db := newTestApp(t)

	owner := seedUser(t, db, "owner", false)
	redeemer := seedUser(t, db, "redeemer", false)
	admin := seedUser(t, db, "admin", true)

	// admin installs the signup payout rule
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/admin/reward-config", tokenFor(t, admin),
		fiber.Map{"reward_type": "SIGNUP", "reward_value": 100, "reward_unit": "POINTS"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["is_active"])

	// owner gets a code; a second call returns the same one
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/referrals/generate", tokenFor(t, owner), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	code, _ := body["referral_code"].(string)
	require.NotEmpty(t, code)

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/referrals/generate", tokenFor(t, owner), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, code, body["referral_code"])

	// owner cannot apply their own code
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/referrals/apply", tokenFor(t, owner),
		fiber.Map{"referral_code": code})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// missing code is a validation failure
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/referrals/apply", tokenFor(t, redeemer),
		fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// redeemer applies it
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/referrals/apply", tokenFor(t, redeemer),
		fiber.Map{"referral_code": code})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Referral applied successfully", body["message"])

	// applying again reports the code as used
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/referrals/apply", tokenFor(t, admin),
		fiber.Map{"referral_code": code})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// summary reflects the redemption
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/referrals/analytics/summary", tokenFor(t, owner), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, code, body["my_referral_code"])
	assert.EqualValues(t, 1, body["total_referrals"])
	assert.Equal(t, "100%", body["conversion_rate"])

	// the owner's pending reward shows in history and can be credited once
	var ledger models.RewardLedger
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&ledger).Error)
	assert.Equal(t, models.RewardStatusPending, ledger.Status)

	creditPath := fmt.Sprintf("/api/v1/admin/rewards/%s/credit", ledger.ID)
	resp, body = doJSON(t, app, http.MethodPost, creditPath, tokenFor(t, admin), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.RewardStatusCredited, body["status"])

	resp, _ = doJSON(t, app, http.MethodPost, creditPath, tokenFor(t, admin), nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	app, db := newTestApp(t)
	user := seedUser(t, db, "user", false)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/admin/referrals/top", tokenFor(t, user), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	path := fmt.Sprintf("/api/v1/admin/rewards/%s/credit", uuid.New())
	resp, _ = doJSON(t, app, http.MethodPost, path, tokenFor(t, user), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCreditUnknownRewardReturns404(t *testing.T) {
	app, db := newTestApp(t)
	admin := seedUser(t, db, "admin", true)

	path := fmt.Sprintf("/api/v1/admin/rewards/%s/credit", uuid.New())
	resp, body := doJSON(t, app, http.MethodPost, path, tokenFor(t, admin), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "reward not found", body["error"])
}

func TestRewardConfigValidation(t *testing.T) {
	app, db := newTestApp(t)
	admin := seedUser(t, db, "admin", true)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/admin/reward-config", tokenFor(t, admin),
		fiber.Map{"reward_type": "SIGNUP"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing required fields", body["error"])
}
