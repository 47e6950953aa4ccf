package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rajabrawijaya_backend/internals/configs"
	"rajabrawijaya_backend/internals/features/users/model"
	helper "rajabrawijaya_backend/internals/helpers"
)

const accessTokenTTL = 12 * time.Hour

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

var validate = validator.New()

type loginRequest struct {
	UserName string `json:"user_name" validate:"required,min=3,max=80"`
	Password string `json:"password" validate:"required,min=6"`
}

type registerRequest struct {
	UserName string  `json:"user_name" validate:"required,min=3,max=80"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     string  `json:"role" validate:"required,oneof=admin operator"`
	Divisi   *string `json:"divisi" validate:"omitempty,min=2,max=80"`
}

/* ===================== LOGIN ===================== */
// POST /login
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var user model.UserModel
	if err := ctrl.DB.
		Where("user_name = ?", strings.TrimSpace(req.UserName)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Username atau password salah")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
	}
	if !user.UserIsActive {
		return fiber.NewError(fiber.StatusForbidden, "Akun Anda telah dinonaktifkan")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.UserPassword), []byte(req.Password)); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Username atau password salah")
	}

	token, expiresAt, err := issueAccessToken(&user)
	if err != nil {
		log.Println("[ERROR] Gagal membuat token:", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return helper.JsonOK(c, "Login berhasil", fiber.Map{
		"access_token": token,
		"expires_at":   expiresAt,
		"user": fiber.Map{
			"user_id":   user.UserId,
			"user_name": user.UserName,
			"role":      user.UserRole,
			"divisi":    user.UserDivisi,
		},
	})
}

func issueAccessToken(user *model.UserModel) (string, time.Time, error) {
	expiresAt := time.Now().Add(accessTokenTTL)
	claims := jwt.MapClaims{
		"user_id":   user.UserId.String(),
		"user_name": user.UserName,
		"role":      user.UserRole,
		"exp":       expiresAt.Unix(),
		"iat":       time.Now().Unix(),
	}
	if user.UserDivisi != nil {
		claims["divisi"] = *user.UserDivisi
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(configs.JWTSecret))
	return signed, expiresAt, err
}

/* ===================== LOGOUT ===================== */
// POST /logout
// Token masuk blacklist sampai jatuh tempo exp-nya.
func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	tokenString := ""
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		tokenString = c.Cookies("access_token")
	}
	if tokenString == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Token tidak ditemukan")
	}

	expiredAt := time.Now().Add(accessTokenTTL)
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(configs.JWTSecret), nil
	}); err == nil {
		if expFloat, ok := claims["exp"].(float64); ok {
			expiredAt = time.Unix(int64(expFloat), 0)
		}
	}

	entry := model.TokenBlacklistModel{
		Token:     tokenString,
		ExpiredAt: expiredAt,
	}
	if err := ctrl.DB.Create(&entry).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal logout")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return helper.JsonOK(c, "Logout berhasil", nil)
}

/* ===================== REGISTER (admin) ===================== */
// POST /users
func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memproses password")
	}

	var divisi *string
	if req.Divisi != nil {
		d := helper.NormalizeDivisi(*req.Divisi)
		divisi = &d
	}
	user := model.UserModel{
		UserName:     strings.TrimSpace(req.UserName),
		UserPassword: string(hashed),
		UserRole:     req.Role,
		UserDivisi:   divisi,
		UserIsActive: true,
	}
	if err := ctrl.DB.Create(&user).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") ||
			strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return fiber.NewError(fiber.StatusConflict, "Username sudah terdaftar")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal membuat user")
	}

	return helper.JsonCreated(c, "User berhasil dibuat", fiber.Map{
		"user_id":   user.UserId,
		"user_name": user.UserName,
		"role":      user.UserRole,
		"divisi":    user.UserDivisi,
	})
}

/* ===================== ME ===================== */
// GET /me
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	return helper.JsonOK(c, "Profil", fiber.Map{
		"user_id":   c.Locals("user_id"),
		"user_name": c.Locals("user_name"),
		"role":      c.Locals("role"),
		"divisi":    c.Locals("divisi"),
	})
}
