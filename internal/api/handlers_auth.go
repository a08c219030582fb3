package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovella/internal/db"
	"github.com/terraincognita07/ovella/internal/models"
	"github.com/terraincognita07/ovella/internal/services"
	"golang.org/x/crypto/bcrypt"
)

type registerInput struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type loginInput struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type forgotPasswordInput struct {
	RecoveryCode string `json:"recovery_code" form:"recovery_code"`
}

type resetPasswordInput struct {
	Token           string `json:"token" form:"token"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// SetupStatus reports whether any account exists yet, for first-launch flows.
func (handler *Handler) SetupStatus(c *fiber.Ctx) error {
	count, err := handler.authService.CountUsers()
	if err != nil {
		return jsonInternalError(c, err)
	}
	return c.JSON(fiber.Map{"users_exist": count > 0})
}

// Register creates an account. The first account becomes the owner; later
// accounts join as read-only partners.
func (handler *Handler) Register(c *fiber.Ctx) error {
	input := registerInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonBadRequest(c, "invalid input")
	}

	email := db.NormalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return jsonBadRequest(c, "invalid email")
	}
	if err := services.ValidatePasswordChange(input.Password, input.ConfirmPassword); err != nil {
		return jsonBadRequest(c, err.Error())
	}

	exists, err := handler.authService.RegistrationEmailExists(email)
	if err != nil {
		return jsonInternalError(c, err)
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return jsonInternalError(c, err)
	}

	recoveryCode, err := services.GenerateRecoveryCode()
	if err != nil {
		return jsonInternalError(c, err)
	}
	recoveryHash, err := bcrypt.GenerateFromPassword([]byte(recoveryCode), bcrypt.DefaultCost)
	if err != nil {
		return jsonInternalError(c, err)
	}

	count, err := handler.authService.CountUsers()
	if err != nil {
		return jsonInternalError(c, err)
	}
	role := models.RolePartner
	if count == 0 {
		role = models.RoleOwner
	}

	user := models.User{
		Email:              email,
		PasswordHash:       string(passwordHash),
		Role:               role,
		RecoveryCodeHash:   string(recoveryHash),
		TemperatureUnit:    models.UnitCelsius,
		LutealPhaseDays:    handler.lutealDefault,
		DefaultCycleLength: models.DefaultCycleLength,
		CreatedAt:          time.Now(),
	}
	if err := handler.authService.CreateUser(&user); err != nil {
		return jsonInternalError(c, err)
	}

	if err := handler.setAuthCookie(c, &user, false); err != nil {
		return jsonInternalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":          userResponse(&user),
		"recovery_code": recoveryCode,
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	input := loginInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonBadRequest(c, "invalid input")
	}

	user, err := handler.authService.FindByNormalizedEmail(input.Email)
	if err != nil {
		return jsonUnauthorized(c, "invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return jsonUnauthorized(c, "invalid credentials")
	}

	if err := handler.setAuthCookie(c, &user, input.RememberMe); err != nil {
		return jsonInternalError(c, err)
	}
	return c.JSON(fiber.Map{"user": userResponse(&user)})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

// ForgotPassword exchanges a recovery code for a short-lived reset token.
// Failures are rate limited per client IP.
func (handler *Handler) ForgotPassword(c *fiber.Ctx) error {
	limiterKey := requestLimiterKey(c)
	now := time.Now()
	if handler.recoveryLimiter.tooManyRecent(limiterKey, now, recoveryAttemptLimit, recoveryAttemptWindow) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts"})
	}

	input := forgotPasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonBadRequest(c, "invalid input")
	}

	code := services.NormalizeRecoveryCode(input.RecoveryCode)
	if err := services.ValidateRecoveryCodeFormat(code); err != nil {
		handler.recoveryLimiter.addFailure(limiterKey, now, recoveryAttemptWindow)
		return jsonBadRequest(c, "invalid recovery code")
	}

	user, err := handler.authService.FindUserByRecoveryCode(code)
	if err != nil {
		handler.recoveryLimiter.addFailure(limiterKey, now, recoveryAttemptWindow)
		return jsonBadRequest(c, "invalid recovery code")
	}

	token, err := handler.buildResetToken(user)
	if err != nil {
		return jsonInternalError(c, err)
	}

	handler.recoveryLimiter.reset(limiterKey)
	return c.JSON(fiber.Map{"reset_token": token})
}

// ResetPassword consumes a reset token, sets the new password, and rotates
// the recovery code (the old one authenticated this reset).
func (handler *Handler) ResetPassword(c *fiber.Ctx) error {
	input := resetPasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonBadRequest(c, "invalid input")
	}

	userID, err := handler.parseResetToken(strings.TrimSpace(input.Token))
	if err != nil {
		return jsonUnauthorized(c, "invalid reset token")
	}
	if err := services.ValidatePasswordChange(input.Password, input.ConfirmPassword); err != nil {
		return jsonBadRequest(c, err.Error())
	}

	user, err := handler.authService.FindByID(userID)
	if err != nil {
		return jsonUnauthorized(c, "invalid reset token")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return jsonInternalError(c, err)
	}
	recoveryCode, recoveryHash, err := newRecoveryCodePair()
	if err != nil {
		return jsonInternalError(c, err)
	}

	user.PasswordHash = string(passwordHash)
	user.RecoveryCodeHash = recoveryHash
	if err := handler.authService.SaveUser(&user); err != nil {
		return jsonInternalError(c, err)
	}

	if err := handler.setAuthCookie(c, &user, false); err != nil {
		return jsonInternalError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "recovery_code": recoveryCode})
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user := currentUser(c)

	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return jsonBadRequest(c, "invalid input")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)) != nil {
		return jsonUnauthorized(c, "wrong current password")
	}
	if err := services.ValidatePasswordChange(input.NewPassword, input.ConfirmPassword); err != nil {
		return jsonBadRequest(c, err.Error())
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return jsonInternalError(c, err)
	}

	user.PasswordHash = string(passwordHash)
	if err := handler.authService.SaveUser(user); err != nil {
		return jsonInternalError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) RegenerateRecoveryCode(c *fiber.Ctx) error {
	user := currentUser(c)

	recoveryCode, recoveryHash, err := newRecoveryCodePair()
	if err != nil {
		return jsonInternalError(c, err)
	}

	user.RecoveryCodeHash = recoveryHash
	if err := handler.authService.SaveUser(user); err != nil {
		return jsonInternalError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "recovery_code": recoveryCode})
}

func newRecoveryCodePair() (string, string, error) {
	code, err := services.GenerateRecoveryCode()
	if err != nil {
		return "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return code, string(hash), nil
}
