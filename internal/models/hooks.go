package models

import (
	"covent/internal/events"

	"gorm.io/gorm"
)

func (i *BrandInvite) AfterCreate(tx *gorm.DB) error {
	log.Info("Brand invite created for %s", i.Email)
	events.Emit(events.TopicInviteCreated, i)
	return nil
}
