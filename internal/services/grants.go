package services

import (
	"context"
	"encoding/json"
	"fmt"

	"covent/internal/events"
	"covent/internal/models"
	"covent/internal/permissions"
	console "covent/internal/utils/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var log = console.New("GRANTS")

// GrantService owns the write side of event co-host grants. Saving a grant
// always replaces the whole entry for one brand; partial patches would leave
// stale per-role entries behind.
type GrantService struct {
	db  *gorm.DB
	dir *GormDirectory
}

func NewGrantService(db *gorm.DB) *GrantService {
	return &GrantService{db: db, dir: NewGormDirectory(db)}
}

// SaveCoHostGrant replaces the grant entry for one co-host brand on one event.
func (s *GrantService) SaveCoHostGrant(ctx context.Context, eventID, brandID string, rolePermissions []models.RoleGrant) (*models.Event, error) {
	event, err := s.dir.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("event %s not found", eventID)
	}

	if err := event.SetCoHostGrant(brandID, rolePermissions); err != nil {
		return nil, fmt.Errorf("failed to encode grant for brand %s: %w", brandID, err)
	}

	err = s.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", event.ID).
		Update("co_host_role_permissions", event.CoHostRolePermissions).Error
	if err != nil {
		return nil, err
	}

	events.Emit(events.TopicGrantSaved, event)
	return event, nil
}

// SyncEventGrants re-normalizes every stored grant on an event against the
// event's current template list, persisting the deny-fill for templates added
// after the grants were saved. Invoked from the grants:sync task when a code
// template is created.
func (s *GrantService) SyncEventGrants(ctx context.Context, eventID string) error {
	event, err := s.dir.EventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return nil
	}

	grants := event.CoHostGrants()
	if len(grants) == 0 {
		return nil
	}

	templates, err := s.dir.CodeTemplatesForEvent(ctx, event.BrandID, effectiveEventID(event))
	if err != nil {
		return err
	}
	if templates == nil {
		templates = []models.CodeTemplate{}
	}

	for gi := range grants {
		for ri := range grants[gi].RolePermissions {
			rec := permissions.Normalize(grants[gi].RolePermissions[ri].Permissions, templates)
			raw, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to encode synced grant: %w", err)
			}
			grants[gi].RolePermissions[ri].Permissions = raw
		}
	}

	raw, err := json.Marshal(grants)
	if err != nil {
		return fmt.Errorf("failed to encode synced grants: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", event.ID).
		Update("co_host_role_permissions", datatypes.JSON(raw)).Error
	if err != nil {
		return err
	}

	log.Info("Synced %d grant entries on event %s against %d templates", len(grants), event.ID, len(templates))
	return nil
}

// EventIDsForTemplate returns the events whose grants a new template affects:
// the scoped event and its children for event-scoped templates, every brand
// event otherwise.
func (s *GrantService) EventIDsForTemplate(ctx context.Context, template *models.CodeTemplate) ([]string, error) {
	var ids []string
	query := s.db.WithContext(ctx).Model(&models.Event{}).Where("is_deleted = ?", false)
	if template.EventID != "" {
		query = query.Where("id = ? OR parent_event_id = ?", template.EventID, template.EventID)
	} else {
		query = query.Where("brand_id = ?", template.BrandID)
	}
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func effectiveEventID(event *models.Event) string {
	if event.ParentEventID != "" {
		return event.ParentEventID
	}
	return event.ID
}
