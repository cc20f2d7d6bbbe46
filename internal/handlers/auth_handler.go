package handlers

import (
	"net/http"
	"os"
	"time"

	"covent/internal/models"
	"covent/internal/utils"
	"covent/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db, log: logger.New("AuthHandler")}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	BrandName string `json:"brand_name" validate:"omitempty,min=2"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a new user with their own brand. When a pending invite
// exists for the email, the user joins the inviting brand instead of
// founding one.
// @Summary Register a new user
// @Description Register a new user with email, password and name details
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} map[string]string "User registered successfully"
// @Failure 400 {object} map[string]string "Validation error or email exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "User already exists"})
	}

	createBrand := true
	var invite models.BrandInvite
	if err := h.db.Where("email = ? AND status = ? AND expires_at > ?",
		req.Email, models.InviteStatusPending, time.Now()).First(&invite).Error; err == nil {
		createBrand = false
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to hash password"})
	}

	tx := h.db.Begin()
	if tx.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to start transaction"})
	}

	user := models.User{
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.UserRoleMember,
	}

	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email already exists"})
	}

	if createBrand {
		brandName := req.BrandName
		if brandName == "" {
			brandName = req.FirstName + "'s Brand"
		}
		brand := models.Brand{
			Name:    brandName,
			OwnerID: user.ID,
		}
		if err := tx.Create(&brand).Error; err != nil {
			tx.Rollback()
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create brand"})
		}
		if err := models.SeedBrandRoles(tx, &brand); err != nil {
			tx.Rollback()
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to seed brand roles"})
		}
	} else {
		invite.Status = models.InviteStatusAccepted
		if err := tx.Save(&invite).Error; err != nil {
			tx.Rollback()
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to accept invitation"})
		}
		member := models.BrandMember{
			BrandID: invite.BrandID,
			UserID:  user.ID,
			RoleID:  invite.RoleID,
		}
		if err := tx.Create(&member).Error; err != nil {
			tx.Rollback()
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to add brand member"})
		}
	}

	if err := tx.Commit().Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to commit transaction"})
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// Login authenticates a user against one of their brands and issues tokens.
// @Summary Login user
// @Description Authenticate user and return JWT token scoped to a brand
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Param brandId query string false "Brand to scope the session to"
// @Success 200 {object} map[string]string "JWT token"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	brandID, err := h.resolveBrandForUser(&user, c.QueryParam("brandId"))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "No brand access for this user"})
	}

	token, err := utils.GenerateJWT(user, brandID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}
	refreshToken, err := utils.GenerateRefreshToken(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}

	authtransaction := &models.AuthTransaction{
		UserID:    user.ID,
		BrandID:   brandID,
		Token:     token,
		Refresh:   refreshToken,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
	}

	if err := h.db.Create(authtransaction).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create auth transaction"})
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token, "refresh_token": refreshToken, "brand_id": brandID})
}

// resolveBrandForUser picks the brand a session is scoped to. When a brand is
// requested explicitly the user must own it or be on its team; otherwise the
// first owned brand wins, falling back to the first membership.
func (h *AuthHandler) resolveBrandForUser(user *models.User, requested string) (string, error) {
	if requested != "" {
		var brand models.Brand
		if err := h.db.Where("id = ? AND is_deleted = false", requested).First(&brand).Error; err != nil {
			return "", err
		}
		if brand.OwnerID == user.ID {
			return brand.ID, nil
		}
		var member models.BrandMember
		if err := h.db.Where("brand_id = ? AND user_id = ? AND is_deleted = false", brand.ID, user.ID).First(&member).Error; err != nil {
			return "", err
		}
		return brand.ID, nil
	}

	var brand models.Brand
	if err := h.db.Where("owner_id = ? AND is_deleted = false", user.ID).Order("created_at ASC").First(&brand).Error; err == nil {
		return brand.ID, nil
	}

	var member models.BrandMember
	if err := h.db.Where("user_id = ? AND is_deleted = false", user.ID).Order("created_at ASC").First(&member).Error; err != nil {
		return "", err
	}
	return member.BrandID, nil
}

// RefreshToken refreshes a user's access token using their refresh token
// @Summary Refresh access token
// @Description Get a new access token using a valid refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh_token body string true "Refresh token"
// @Success 200 {object} map[string]string "New access token"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Invalid refresh token"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid input"})
	}

	refreshToken := input.RefreshToken

	_, err := utils.ValidateRefreshToken(refreshToken, os.Getenv("JWT_SECRET"))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid refresh token"})
	}

	var authTransaction models.AuthTransaction
	if err := h.db.Where("refresh = ? AND expires_at > ?", refreshToken, time.Now()).First(&authTransaction).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid refresh token"})
	}

	var user models.User
	if err := h.db.Where("id = ?", authTransaction.UserID).First(&user).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not found"})
	}

	accessToken, err := utils.GenerateJWT(user, authTransaction.BrandID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate access token"})
	}

	authTransaction.Token = accessToken
	if err := h.db.Save(&authTransaction).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save access token"})
	}

	return c.JSON(http.StatusOK, map[string]string{"token": accessToken, "exp": "24h"})
}

// GetMe returns the current user
// @Summary Get current user
// @Description Get details of the current authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} models.User
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c echo.Context) error {
	userId := c.Get("userID").(string)

	var user models.User
	if err := h.db.Where("id = ?", userId).Preload("Memberships").First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	}
	return c.JSON(http.StatusOK, user)
}

// InviteUserRequest is the request body for inviting a user to a brand team
// @Description Send an invitation to a user to join a brand team
type InviteUserRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required,min=2"`
	RoleID string `json:"role_id" validate:"omitempty,uuid"`
}

// InviteUser handles sending invitations to new brand team members
// @Summary Invite a user to join a brand
// @Description Send an invitation to a user to join a brand team
// @Tags auth
// @Accept json
// @Produce json
// @Param request body InviteUserRequest true "Invitation details"
// @Success 201 {object} map[string]string "Invitation sent successfully"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/invite [post]
func (h *AuthHandler) InviteUser(c echo.Context) error {
	userID := c.Get("userID").(string)
	brandID := c.Get("brandID").(string)

	h.log.Info("Inviting user to brand %s on behalf of %s", brandID, userID)

	var request InviteUserRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := c.Validate(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// An invite role must belong to the inviting brand
	if request.RoleID != "" {
		role, err := models.GetRoleByID(request.RoleID, h.db)
		if err != nil || role.BrandID != brandID {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Role does not belong to this brand"})
		}
	}

	code, err := utils.GenerateRandomString(32)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate invite code"})
	}

	invite := models.BrandInvite{
		Code:      code,
		ExpiresAt: time.Now().Add(24 * 7 * time.Hour),
		InviterID: userID,
		BrandID:   brandID,
		Status:    models.InviteStatusPending,
		RoleID:    request.RoleID,
		Email:     request.Email,
		Name:      request.Name,
	}

	if err := h.db.Create(&invite).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create invitation"})
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Invitation sent successfully"})
}

type AcceptInviteRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// AcceptInvite handles accepting brand invitations
// @Summary Accept a brand invitation
// @Description Accept an invitation to join a brand team
// @Tags auth
// @Accept json
// @Produce json
// @Param code path string true "Invitation code"
// @Success 200 {object} map[string]string "Invitation accepted successfully"
// @Failure 400 {object} map[string]string "Invalid invitation"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/invite/accept/{code} [post]
func (h *AuthHandler) AcceptInvite(c echo.Context) error {
	code := c.Param("code")

	var req AcceptInviteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to hash password"})
	}

	var invite models.BrandInvite
	if err := h.db.Where("code = ? AND status = ? AND expires_at > ?",
		code, models.InviteStatusPending, time.Now()).First(&invite).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid or expired invitation"})
	}

	tx := h.db.Begin()
	if tx.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to start transaction"})
	}

	newUser := models.User{
		Email:     invite.Email,
		FirstName: invite.Name,
		LastName:  "",
		Password:  string(hashedPassword),
		Role:      models.UserRoleMember,
	}

	if err := tx.Create(&newUser).Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create user"})
	}

	member := models.BrandMember{
		BrandID: invite.BrandID,
		UserID:  newUser.ID,
		RoleID:  invite.RoleID,
	}
	if err := tx.Create(&member).Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to add brand member"})
	}

	invite.Status = models.InviteStatusAccepted
	if err := tx.Save(&invite).Error; err != nil {
		tx.Rollback()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update invitation"})
	}

	if err := tx.Commit().Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to commit transaction"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Invitation accepted successfully"})
}

// DeleteInvite handles deleting brand invitations
// @Summary Delete a brand invitation
// @Description Delete a pending brand invitation
// @Tags auth
// @Accept json
// @Produce json
// @Param id path string true "Invitation ID"
// @Success 200 {object} map[string]string "Invitation deleted successfully"
// @Failure 400 {object} map[string]string "Invalid invitation"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/invite/{id} [delete]
func (h *AuthHandler) DeleteInvite(c echo.Context) error {
	userID := c.Get("userID").(string)
	brandID := c.Get("brandID").(string)
	inviteID := c.Param("id")

	var invite models.BrandInvite
	if err := h.db.Where("id = ? AND brand_id = ? AND inviter_id = ?",
		inviteID, brandID, userID).First(&invite).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invitation not found"})
	}

	if err := h.db.Delete(&invite).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete invitation"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Invitation deleted successfully"})
}
