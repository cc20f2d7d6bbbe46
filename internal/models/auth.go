package models

import (
	"time"
)

type User struct {
	Base
	Email       string        `gorm:"uniqueIndex;not null" json:"email"`
	Password    string        `gorm:"not null" json:"-"`
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName"`
	Role        UserRole      `gorm:"not null;default:'MEMBER'" json:"role"`
	Memberships []BrandMember `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
	Invites     []BrandInvite `gorm:"foreignKey:InviterID" json:"invites,omitempty"`
}

type AuthTransaction struct {
	Base
	UserID    string    `gorm:"type:uuid;not null" json:"userId"`
	User      *User     `json:"user,omitempty"`
	BrandID   string    `gorm:"type:uuid;not null" json:"brandId"`
	Brand     *Brand    `json:"brand,omitempty"`
	Token     string    `gorm:"not null" json:"token"`
	Refresh   string    `gorm:"not null" json:"refresh"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
}
