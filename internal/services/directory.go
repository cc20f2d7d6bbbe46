package services

import (
	"context"
	"errors"

	"covent/internal/models"

	"gorm.io/gorm"
)

// GormDirectory is the production read side of the permission engine. Every
// lookup maps "no such row" to (nil, nil) so the engine can fail closed
// without inspecting driver errors.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) BrandByID(ctx context.Context, id string) (*models.Brand, error) {
	var brand models.Brand
	err := d.db.WithContext(ctx).
		Preload("Members").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&brand).Error
	if err != nil {
		return nil, ignoreNotFound(err)
	}
	return &brand, nil
}

func (d *GormDirectory) RoleByID(ctx context.Context, id string) (*models.Role, error) {
	var role models.Role
	err := d.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&role).Error
	if err != nil {
		return nil, ignoreNotFound(err)
	}
	return &role, nil
}

func (d *GormDirectory) FounderRole(ctx context.Context, brandID string) (*models.Role, error) {
	var role models.Role
	err := d.db.WithContext(ctx).
		Where("brand_id = ? AND is_founder = ? AND is_deleted = ?", brandID, true, false).
		First(&role).Error
	if err != nil {
		return nil, ignoreNotFound(err)
	}
	return &role, nil
}

func (d *GormDirectory) RolesByBrand(ctx context.Context, brandID string) ([]models.Role, error) {
	var roles []models.Role
	err := d.db.WithContext(ctx).
		Where("brand_id = ? AND is_deleted = ?", brandID, false).
		Order("created_at ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (d *GormDirectory) EventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&event).Error
	if err != nil {
		return nil, ignoreNotFound(err)
	}
	return &event, nil
}

// CodeTemplatesForEvent lists a brand's global templates plus the ones scoped
// to the given event, in creation order. Creation order is load-bearing: it is
// the deterministic tie break when two templates share a name.
func (d *GormDirectory) CodeTemplatesForEvent(ctx context.Context, brandID, eventID string) ([]models.CodeTemplate, error) {
	var templates []models.CodeTemplate
	err := d.db.WithContext(ctx).
		Where("brand_id = ? AND is_deleted = ? AND (event_id IS NULL OR event_id = '' OR event_id = ?)", brandID, false, eventID).
		Order("created_at ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (d *GormDirectory) CodeTemplatesForBrand(ctx context.Context, brandID string) ([]models.CodeTemplate, error) {
	var templates []models.CodeTemplate
	err := d.db.WithContext(ctx).
		Where("brand_id = ? AND is_deleted = ?", brandID, false).
		Order("created_at ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
