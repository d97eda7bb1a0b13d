package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	config "github.com/savvahub/referral-api/configs"
	"github.com/savvahub/referral-api/models"
	"github.com/savvahub/referral-api/notifications"
)

var validate = validator.New()

const otpTTL = 5 * time.Minute

type AuthHandler struct {
	db     *gorm.DB
	cfg    config.Config
	mailer *notifications.EmailService
}

func NewAuthHandler(db *gorm.DB, cfg config.Config, mailer *notifications.EmailService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, mailer: mailer}
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Signup registers an unverified account and emails a one-time code. A
// repeat signup for an unverified email starts over; a verified email is
// rejected.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var verified int64
	if err := h.db.Model(&models.User{}).
		Where("email = ? AND is_verified = ?", req.Email, true).
		Count(&verified).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if verified > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User already exists."})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	code, err := generateOtp()
	if err != nil {
		return fiber.ErrInternalServerError
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", req.Email).Delete(&models.Otp{}).Error; err != nil {
			return err
		}
		if err := tx.Where("email = ? AND is_verified = ?", req.Email, false).
			Delete(&models.User{}).Error; err != nil {
			return err
		}
		user := models.User{Name: req.Name, Email: req.Email, Password: string(hashed)}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		otp := models.Otp{Email: req.Email, Code: code, ExpiresAt: time.Now().Add(otpTTL)}
		return tx.Create(&otp).Error
	})
	if err != nil {
		return fiber.ErrInternalServerError
	}

	go h.mailer.Send(req.Name, req.Email, "Your OTP Code",
		fmt.Sprintf("<p>Your OTP code is <b>%s</b></p>", code))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"valid":   true,
		"message": "OTP sent to your email.",
	})
}

type VerifyOtpRequest struct {
	Email string `json:"email" validate:"required,email"`
	Otp   string `json:"otp" validate:"required,len=6"`
}

func (h *AuthHandler) VerifyOtp(c *fiber.Ctx) error {
	var req VerifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var otp models.Otp
	err := h.db.Where("email = ? AND code = ?", req.Email, req.Otp).First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid OTP."})
	}
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if otp.ExpiresAt.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "OTP has expired."})
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found."})
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Where("email = ?", req.Email).Delete(&models.Otp{}).Error
	})
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"valid":   true,
		"message": "OTP verified successfully. You can now log in.",
	})
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	err := h.db.Where("email = ? AND is_verified = ?", req.Email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found or not verified."})
	}
	if err != nil {
		return fiber.ErrInternalServerError
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Incorrect password."})
	}

	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

func generateOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
