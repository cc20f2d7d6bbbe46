package permissions

import (
	"context"

	"covent/internal/models"
)

// RoleLookup resolves the role a user holds inside a brand: the brand owner
// maps to the founder role, team members to their assigned role, everyone
// else to none. Co-host team members hold no role in the host brand; their
// access comes entirely through the event grant path in the resolver.
type RoleLookup struct {
	dir Directory
}

func NewRoleLookup(dir Directory) *RoleLookup {
	return &RoleLookup{dir: dir}
}

// FindUserRole returns (nil, nil) when the user holds no role in the brand.
func (l *RoleLookup) FindUserRole(ctx context.Context, userID, brandID string) (*models.Role, error) {
	brand, err := l.dir.BrandByID(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, nil
	}

	if brand.OwnerID == userID {
		founder, err := l.dir.FounderRole(ctx, brandID)
		if err != nil {
			return nil, err
		}
		if founder == nil {
			// Integrity fault: an owner without a founder role resolves to no
			// role, not to a silent default.
			log.Warn("brand %s owner %s has no founder role", brandID, userID)
		}
		return founder, nil
	}

	for _, member := range brand.Members {
		if member.UserID != userID {
			continue
		}
		if member.Role != nil {
			return member.Role, nil
		}
		if member.RoleID == "" {
			return nil, nil
		}
		role, err := l.dir.RoleByID(ctx, member.RoleID)
		if err != nil {
			return nil, err
		}
		// Dangling or foreign role references are tolerated and fail to match.
		if role == nil || role.BrandID != brandID {
			return nil, nil
		}
		return role, nil
	}

	return nil, nil
}
