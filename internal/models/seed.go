package models

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	console "covent/internal/utils/logger"

	"gorm.io/gorm"
)

var log = console.New("SEEDER")

const (
	FounderRoleName       = "Founder"
	DefaultMemberRoleName = "Member"
)

// SeedBrandRoles creates the founder and default member roles for a freshly
// created brand. The founder role gets the everything-true record; the member
// role gets the all-false own-brand record (with Events and Team groups).
func SeedBrandRoles(db *gorm.DB, brand *Brand) error {
	var count int64
	if err := db.Model(&Role{}).Where("brand_id = ? AND is_founder = true", brand.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check founder role for brand %s: %v", brand.ID, err)
	}
	if count > 0 {
		return nil
	}

	founderPerms, err := json.Marshal(FounderPermissionRecord())
	if err != nil {
		return fmt.Errorf("failed to encode founder permissions: %v", err)
	}
	memberPerms, err := json.Marshal(DefaultOwnPermissionRecord())
	if err != nil {
		return fmt.Errorf("failed to encode member permissions: %v", err)
	}

	roles := []Role{
		{
			BrandID:     brand.ID,
			Name:        FounderRoleName,
			IsFounder:   true,
			Permissions: founderPerms,
		},
		{
			BrandID:     brand.ID,
			Name:        DefaultMemberRoleName,
			IsDefault:   true,
			Permissions: memberPerms,
		},
	}

	for _, role := range roles {
		if err := db.FirstOrCreate(&role, Role{
			BrandID:   brand.ID,
			Name:      role.Name,
			IsFounder: role.IsFounder,
			IsDefault: role.IsDefault,
		}).Error; err != nil {
			return fmt.Errorf("failed to create role %s for brand %s: %v", role.Name, brand.ID, err)
		}
		log.Info("Created role %s for brand %s", role.Name, brand.Name)
	}

	return nil
}

func CreateSuperAdminFromEnv(db *gorm.DB) error {
	role := UserRoleSuperAdmin

	// check if super admin already exists
	var count int64
	db.Model(&User{}).Where("role = ?", role).Count(&count)
	if count > 0 {
		return nil
	}

	email, ok := os.LookupEnv("SUPERADMIN_EMAIL")
	if !ok {
		return fmt.Errorf("SUPERADMIN_EMAIL not set")
	}

	password, ok := os.LookupEnv("SUPERADMIN_PASSWORD")
	if !ok {
		return fmt.Errorf("SUPERADMIN_PASSWORD not set")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	name, ok := os.LookupEnv("SUPERADMIN_NAME")
	if !ok {
		return fmt.Errorf("SUPERADMIN_NAME not set")
	}

	brandName, ok := os.LookupEnv("SUPERADMIN_BRAND_NAME")
	if !ok {
		return fmt.Errorf("SUPERADMIN_BRAND_NAME not set")
	}

	user := User{
		FirstName: name,
		LastName:  "",
		Email:     email,
		Role:      role,
		Password:  string(hashedPassword),
	}

	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create superadmin user: %v", err)
	}

	brand := Brand{
		Name:    brandName,
		OwnerID: user.ID,
	}

	if err := db.Create(&brand).Error; err != nil {
		return fmt.Errorf("failed to create superadmin brand: %v", err)
	}

	return SeedBrandRoles(db, &brand)
}
