package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"covent/internal/db"
	"covent/internal/models"
	"covent/internal/utils/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

var log = logger.New("auth_middleware")

type AuthMiddleware struct {
	jwtSecret string
}

type Claims struct {
	UserID  string `json:"user_id"`
	BrandID string `json:"brand_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			return m.validateJWT(c, tokenParts[1], next)
		}
	}
}

func (m *AuthMiddleware) validateJWT(c echo.Context, tokenString string, next echo.HandlerFunc) error {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		log.Error("Error parsing JWT token: %v", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
	}

	// Verify auth transaction
	transaction := &models.AuthTransaction{}
	if err := db.DB.Where("user_id = ? AND brand_id = ? AND token = ?",
		claims.UserID, claims.BrandID, tokenString).First(transaction).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Auth transaction not found")
	}

	// Verify user exists
	user := &models.User{}
	if err := db.DB.Where("id = ?", claims.UserID).First(user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	// Verify the user belongs to the brand, as owner or team member
	brand, err := models.GetBrandByID(claims.BrandID, db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Brand not found")
	}
	if brand.OwnerID != user.ID && !brand.HasMember(user.ID) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not a member of this brand")
	}

	requestContentType := strings.Split(c.Request().Header.Get("Content-Type"), ";")[0]

	if (c.Request().Method == "POST" || c.Request().Method == "PUT") && requestContentType == "application/json" {
		body := c.Request().Body
		defer func(body io.ReadCloser) {
			err := body.Close()
			if err != nil {
				log.Error("Failed to close request body", err)
			}
		}(body)

		var bodyMap map[string]interface{}
		if err := json.NewDecoder(body).Decode(&bodyMap); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body")
		}

		// Scope writes to the authenticated brand
		bodyMap["brandId"] = brand.ID
		newBody, err := json.Marshal(bodyMap)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to encode body")
		}

		c.Request().Body = io.NopCloser(bytes.NewBuffer(newBody))
	}

	if user.Role == models.UserRoleSuperAdmin {
		c.Set("hasAdminAccess", true)
	}

	// Set context values
	c.Set("userID", claims.UserID)
	c.Set("brandID", claims.BrandID)
	c.Set("email", claims.Email)
	c.Set("role", claims.Role)
	c.Set("isBrandOwner", brand.OwnerID == user.ID)

	return next(c)
}

// GetUserID Helper functions to get values from context
func GetUserID(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}

func GetBrandID(c echo.Context) string {
	if id, ok := c.Get("brandID").(string); ok {
		return id
	}
	return ""
}

func GetUserRole(c echo.Context) string {
	if role, ok := c.Get("role").(string); ok {
		return role
	}
	return ""
}

func IsBrandOwner(c echo.Context) bool {
	if owner, ok := c.Get("isBrandOwner").(bool); ok {
		return owner
	}
	return false
}

func HasAdminAccess(c echo.Context) bool {
	if has, ok := c.Get("hasAdminAccess").(bool); ok {
		return has
	}
	return false
}
