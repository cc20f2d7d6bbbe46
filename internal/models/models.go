package models

import (
	"time"

	"covent/internal/events"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Brand is a tenant: it owns events, roles, code templates and a team.
type Brand struct {
	Base
	Name          string         `gorm:"not null" json:"name" validate:"required,min=2"`
	OwnerID       string         `gorm:"type:uuid;not null" json:"ownerId"`
	Owner         *User          `json:"owner,omitempty"`
	Members       []BrandMember  `gorm:"foreignKey:BrandID;references:ID" json:"members,omitempty"`
	Roles         []Role         `gorm:"foreignKey:BrandID;references:ID" json:"roles,omitempty"`
	CodeTemplates []CodeTemplate `gorm:"foreignKey:BrandID;references:ID" json:"codeTemplates,omitempty"`
	Invites       []BrandInvite  `gorm:"foreignKey:BrandID;references:ID;constraint:OnDelete:CASCADE" json:"invites,omitempty"`
}

func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

func (b *Brand) AfterCreate(tx *gorm.DB) error {
	events.Emit(events.TopicBrandCreated, b)
	return nil
}

// BrandMember links a user to a brand team. The role reference is by
// identifier only; a dangling RoleID simply fails to match during resolution.
type BrandMember struct {
	Base
	BrandID string `gorm:"type:uuid;not null;index" json:"brandId" validate:"required,uuid"`
	Brand   *Brand `json:"brand,omitempty"`
	UserID  string `gorm:"type:uuid;not null;index" json:"userId" validate:"required,uuid"`
	User    *User  `json:"user,omitempty"`
	RoleID  string `gorm:"type:uuid" json:"roleId" validate:"omitempty,uuid"`
	Role    *Role  `json:"role,omitempty"`
}

type BrandInvite struct {
	Base
	Email     string       `gorm:"not null" json:"email" validate:"required,email"`
	Name      string       `gorm:"not null" json:"name" validate:"required,min=2"`
	BrandID   string       `gorm:"type:uuid;not null" json:"brandId" validate:"required,uuid"`
	Brand     *Brand       `json:"brand,omitempty"`
	InviterID string       `gorm:"type:uuid;not null" json:"inviterId" validate:"required,uuid"`
	Inviter   *User        `json:"inviter,omitempty"`
	RoleID    string       `gorm:"type:uuid" json:"roleId" validate:"omitempty,uuid"`
	Code      string       `gorm:"not null" json:"code" validate:"required,min=4"`
	Status    InviteStatus `gorm:"not null;default:'PENDING'" json:"status" validate:"required,invite_status"`
	ExpiresAt time.Time    `gorm:"not null" json:"expiresAt" validate:"required,gt=now"`
}

// CodeTemplate is a named rule set for a class of guest-list entry codes. It
// belongs to one brand; an empty EventID makes it global for the brand.
type CodeTemplate struct {
	Base
	BrandID string `gorm:"type:uuid;not null;index" json:"brandId" validate:"required,uuid"`
	Brand   *Brand `json:"brand,omitempty"`
	EventID string `gorm:"type:uuid;default:NULL" json:"eventId,omitempty" validate:"omitempty,uuid"`
	Name    string `gorm:"not null" json:"name" validate:"required"`
}

func (t *CodeTemplate) AfterCreate(tx *gorm.DB) error {
	events.Emit(events.TopicCodeTemplateCreated, t)
	return nil
}

// Event belongs to a brand. A non-empty ParentEventID marks a dated occurrence
// of a recurring parent event. CoHostRolePermissions stores the per-co-host
// grants as a JSONB array; it is replaced wholesale per brand on every save.
type Event struct {
	Base
	BrandID               string         `gorm:"type:uuid;not null;index" json:"brandId" validate:"required,uuid"`
	Brand                 *Brand         `json:"brand,omitempty"`
	Name                  string         `gorm:"not null" json:"name" validate:"required"`
	StartsAt              time.Time      `json:"startsAt"`
	ParentEventID         string         `gorm:"type:uuid;default:NULL;index" json:"parentEventId,omitempty" validate:"omitempty,uuid"`
	CoHosts               []Brand        `gorm:"many2many:event_co_hosts" json:"coHosts,omitempty"`
	CoHostRolePermissions datatypes.JSON `gorm:"type:jsonb" json:"coHostRolePermissions,omitempty"`
}
