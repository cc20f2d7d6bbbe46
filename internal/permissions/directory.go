// Package permissions computes effective permission records for users acting
// on events, reconciling brand-scoped roles, per-brand code-template identity,
// legacy stored shapes and the parent/child event hierarchy. Every ambiguous
// or missing-data path fails closed to the all-false default record.
package permissions

import (
	"context"

	"covent/internal/models"
)

// Directory is the read side the engine depends on. Implementations return
// (nil, nil) for entities that do not exist; errors are reserved for
// infrastructure failures. The production implementation is GORM-backed in
// internal/services; tests use an in-memory fake.
type Directory interface {
	// BrandByID returns the brand with its team membership preloaded.
	BrandByID(ctx context.Context, id string) (*models.Brand, error)
	RoleByID(ctx context.Context, id string) (*models.Role, error)
	FounderRole(ctx context.Context, brandID string) (*models.Role, error)
	// RolesByBrand lists a brand's roles in creation order; co-host role
	// matching and the default-role fallback both scan this list.
	RolesByBrand(ctx context.Context, brandID string) ([]models.Role, error)
	EventByID(ctx context.Context, id string) (*models.Event, error)
	// CodeTemplatesForEvent lists the templates valid for an event: the
	// brand's global templates plus any scoped to that event, in stored order.
	CodeTemplatesForEvent(ctx context.Context, brandID, eventID string) ([]models.CodeTemplate, error)
	CodeTemplatesForBrand(ctx context.Context, brandID string) ([]models.CodeTemplate, error)
}
