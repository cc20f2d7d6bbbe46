package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	// Register custom validation tags
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	err := v.RegisterValidation("invite_status", validateInviteStatus)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("user_role", validateUserRole)
	if err != nil {
		return nil
	}

	return &CustomValidator{validator: v}
}

// Custom validation functions
func validateUserRole(fl playgroundvalidator.FieldLevel) bool {
	role := fl.Field().String()
	return role == "SUPER_ADMIN" || role == "MEMBER"
}

func validateInviteStatus(fl playgroundvalidator.FieldLevel) bool {
	status := fl.Field().String()
	return status == "PENDING" || status == "ACCEPTED" || status == "REJECTED"
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// Request validation structs based on models

type BrandRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

type RoleRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	BrandID string `json:"brandId" validate:"required,uuid"`
}

type EventRequest struct {
	Name          string    `json:"name" validate:"required"`
	BrandID       string    `json:"brandId" validate:"required,uuid"`
	StartsAt      time.Time `json:"startsAt"`
	ParentEventID string    `json:"parentEventId" validate:"omitempty,uuid"`
}

type CodeTemplateRequest struct {
	Name    string `json:"name" validate:"required"`
	BrandID string `json:"brandId" validate:"required,uuid"`
	EventID string `json:"eventId" validate:"omitempty,uuid"`
}

type BrandInviteRequest struct {
	Email     string    `json:"email" validate:"required,email"`
	Name      string    `json:"name" validate:"required"`
	BrandID   string    `json:"brandId" validate:"required,uuid"`
	RoleID    string    `json:"roleId" validate:"omitempty,uuid"`
	ExpiresAt time.Time `json:"expiresAt" validate:"required,gt=now"`
}
