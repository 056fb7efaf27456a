package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/dukan/internal/config"
	"github.com/example/dukan/internal/middleware"
	"github.com/example/dukan/internal/models"
	"github.com/example/dukan/internal/services"
	"github.com/example/dukan/internal/utils"
)

// AuthHandler bundles dependencies for the login, verification and signup
// endpoints. Customers log in with an emailed one-time code, skipped when
// the device-trust cookie already binds this browser to their phone.
type AuthHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer services.Mailer
	trust  utils.DeviceTrust
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, mailer services.Mailer) *AuthHandler {
	return &AuthHandler{
		db:     db,
		cfg:    cfg,
		mailer: mailer,
		trust:  utils.DeviceTrust{TTL: cfg.DeviceTrustTTL, Secure: cfg.IsProduction()},
	}
}

type loginRequest struct {
	Phone string `json:"phone"`
}

// Login starts a login attempt. A browser already trusted for this phone
// gets a session immediately; everyone else receives a one-time code by
// email and must call Verify.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone is required")
	}

	phone := utils.NormalizePhone(req.Phone, h.cfg.DefaultCountryCode)

	var user models.User
	if err := h.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "phone is not registered")
		}
		return err
	}

	if !user.IsActive {
		return fiber.NewError(fiber.StatusForbidden, "account is inactive")
	}

	if user.Email == "" {
		// Codes are email-delivered; an account without an email cannot
		// complete the flow.
		log.Printf("[Auth] user %s has no email on file", user.ID)
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}

	if h.trust.IsTrusted(c, phone) {
		if err := h.issueSession(c, &user); err != nil {
			return err
		}
		// Re-set the marker so trust ages from the latest login, not the
		// original verification.
		h.trust.Mark(c, phone)
		return c.JSON(fiber.Map{
			"success":            true,
			"needs_verification": false,
			"user":               user.Sanitized(),
		})
	}

	if err := h.sendCode(&user, models.CodeTypeLogin, nil); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":            true,
		"needs_verification": true,
		"email":              user.Email,
	})
}

type verifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// Verify checks a submitted login code, consumes it, and on success issues
// the session and marks this browser trusted for the phone.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone and code are required")
	}

	phone := utils.NormalizePhone(req.Phone, h.cfg.DefaultCountryCode)

	var user models.User
	if err := h.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "phone is not registered")
		}
		return err
	}

	if !user.IsActive {
		return fiber.NewError(fiber.StatusForbidden, "account is inactive")
	}

	if _, err := h.consumeCode(phone, req.Code, models.CodeTypeLogin); err != nil {
		return err
	}

	if err := h.issueSession(c, &user); err != nil {
		return err
	}
	h.trust.Mark(c, phone)

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.Sanitized(),
	})
}

type signupRequest struct {
	Phone       string `json:"phone"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
}

// Signup starts account creation: the profile fields ride along with the
// verification code until SignupVerify proves control of the email.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.Name == "" || req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone, name and email are required")
	}

	phone := utils.NormalizePhone(req.Phone, h.cfg.DefaultCountryCode)

	var existing models.User
	if err := h.db.Where("phone = ?", phone).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	pending := &models.User{Phone: phone, Name: req.Name, Email: req.Email}
	context := &signupContext{
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Address:     req.Address,
	}
	if err := h.sendCode(pending, models.CodeTypeSignup, context); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":            true,
		"needs_verification": true,
		"email":              req.Email,
	})
}

// SignupVerify consumes a signup code and creates the account.
func (h *AuthHandler) SignupVerify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone and code are required")
	}

	phone := utils.NormalizePhone(req.Phone, h.cfg.DefaultCountryCode)

	var existing models.User
	if err := h.db.Where("phone = ?", phone).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	record, err := h.consumeCode(phone, req.Code, models.CodeTypeSignup)
	if err != nil {
		return err
	}

	user := models.User{
		Phone:       phone,
		Name:        record.Name,
		Email:       record.Email,
		CompanyName: record.CompanyName,
		Address:     record.Address,
		IsActive:    true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	if err := h.issueSession(c, &user); err != nil {
		return err
	}
	h.trust.Mark(c, phone)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    user.Sanitized(),
	})
}

type adminLoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// AdminLogin authenticates a back-office operator with phone and password.
// It never marks the device trusted: trust belongs to the code flow.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req adminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Phone == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone and password are required")
	}

	phone := utils.NormalizePhone(req.Phone, h.cfg.DefaultCountryCode)

	var user models.User
	if err := h.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !user.IsAdmin || user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if !user.IsActive {
		return fiber.NewError(fiber.StatusForbidden, "account is inactive")
	}

	if err := h.issueSession(c, &user); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.Sanitized(),
	})
}

// Logout clears the session cookie and the device-trust cookie. Clearing
// trust forces re-verification on the next login, which is the safer call
// on shared devices; a token copied before logout remains valid until its
// expiry because sessions have no server-side state.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	h.trust.Clear(c)

	return c.JSON(fiber.Map{"success": true})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "user": user.Sanitized()})
}

type signupContext struct {
	Name        string
	CompanyName string
	Address     string
}

// sendCode generates, stores and emails a one-time code. On mail failure the
// stored row is removed again so the user is never left waiting for a code
// that cannot arrive.
func (h *AuthHandler) sendCode(user *models.User, codeType string, context *signupContext) error {
	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return err
	}

	verification := models.VerificationCode{
		Phone:     user.Phone,
		Email:     user.Email,
		Code:      code,
		Type:      codeType,
		ExpiresAt: time.Now().Add(h.cfg.CodeTTL),
	}
	if context != nil {
		verification.Name = context.Name
		verification.CompanyName = context.CompanyName
		verification.Address = context.Address
	}

	if err := h.db.Create(&verification).Error; err != nil {
		return err
	}

	if err := h.mailer.SendVerificationCode(user.Email, user.Name, code); err != nil {
		h.db.Delete(&verification)
		log.Printf("[Auth] code email to %s failed: %v", user.Email, err)
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}

	return nil
}

// consumeCode looks up the exact {phone, code, type} match, enforces expiry,
// and deletes every matching row so a code can only be used once. Stale rows
// for the same triple are consumed along with it.
func (h *AuthHandler) consumeCode(phone, code, codeType string) (*models.VerificationCode, error) {
	var record models.VerificationCode
	err := h.db.Where("phone = ? AND code = ? AND type = ?", phone, code, codeType).
		Order("created_at desc").
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid verification code")
		}
		return nil, err
	}

	deleteMatches := h.db.Where("phone = ? AND code = ? AND type = ?", phone, code, codeType).
		Delete(&models.VerificationCode{})
	if deleteMatches.Error != nil {
		return nil, deleteMatches.Error
	}

	if record.ExpiresAt.Before(time.Now()) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "verification code expired")
	}

	return &record, nil
}

// issueSession mints the session token, sets the auth cookie and stamps
// last_login.
func (h *AuthHandler) issueSession(c *fiber.Ctx, user *models.User) error {
	token, err := utils.GenerateToken(h.cfg.JWTSecret, utils.SessionPayload{
		UserID:  user.ID,
		Phone:   user.Phone,
		IsAdmin: user.IsAdmin,
	}, h.cfg.SessionTTL)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL / time.Second),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	now := time.Now()
	if err := h.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("last_login", &now).Error; err != nil {
		log.Printf("[Auth] failed to stamp last_login for %s: %v", user.ID, err)
	}

	return nil
}
