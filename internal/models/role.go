package models

import "gorm.io/datatypes"

// Role is a named permission bundle scoped to one brand. Exactly one role per
// brand carries IsFounder; it is created with the brand and never deletable,
// and neither is any role currently assigned to a team member. Permissions is
// stored as raw JSONB: historical rows predate several schema additions, so
// the stored shape is only trusted after passing through permissions.Normalize.
type Role struct {
	Base
	BrandID     string         `gorm:"type:uuid;not null;index" json:"brandId" validate:"required,uuid"`
	Brand       *Brand         `json:"brand,omitempty"`
	Name        string         `gorm:"not null" json:"name" validate:"required,min=2"`
	IsFounder   bool           `gorm:"not null;default:false" json:"isFounder"`
	IsDefault   bool           `gorm:"not null;default:false" json:"isDefault"`
	Permissions datatypes.JSON `gorm:"type:jsonb" json:"permissions"`
}
