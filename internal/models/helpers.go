package models

import (
	"gorm.io/gorm"
)

// GetBrandByID retrieves a brand with its team membership preloaded.
func GetBrandByID(id string, db *gorm.DB) (*Brand, error) {
	brand := &Brand{}
	if err := db.Preload("Members").Where("id = ? AND is_deleted = false", id).First(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

func GetRoleByID(id string, db *gorm.DB) (*Role, error) {
	role := &Role{}
	if err := db.Where("id = ? AND is_deleted = false", id).First(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}

// HasMember reports whether the user is an active team member of the brand.
// Members must be preloaded; the brand owner is not a member.
func (b *Brand) HasMember(userID string) bool {
	for _, m := range b.Members {
		if m.UserID == userID && !m.IsDeleted {
			return true
		}
	}
	return false
}
