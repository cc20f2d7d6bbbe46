package permissions

import (
	"context"

	"covent/internal/models"
)

// fakeDirectory is the in-memory Directory used across the engine tests.
// Lookups miss with (nil, nil) exactly like the production implementation;
// err forces every method to fail for infrastructure-failure paths.
type fakeDirectory struct {
	brands    map[string]*models.Brand
	roles     map[string]*models.Role
	events    map[string]*models.Event
	templates map[string][]models.CodeTemplate // keyed by brandID
	err       error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		brands:    map[string]*models.Brand{},
		roles:     map[string]*models.Role{},
		events:    map[string]*models.Event{},
		templates: map[string][]models.CodeTemplate{},
	}
}

func (f *fakeDirectory) addBrand(b *models.Brand) *fakeDirectory {
	f.brands[b.ID] = b
	return f
}

func (f *fakeDirectory) addRole(r *models.Role) *fakeDirectory {
	f.roles[r.ID] = r
	return f
}

func (f *fakeDirectory) addEvent(e *models.Event) *fakeDirectory {
	f.events[e.ID] = e
	return f
}

func (f *fakeDirectory) addTemplate(t models.CodeTemplate) *fakeDirectory {
	f.templates[t.BrandID] = append(f.templates[t.BrandID], t)
	return f
}

func (f *fakeDirectory) BrandByID(ctx context.Context, id string) (*models.Brand, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.brands[id], nil
}

func (f *fakeDirectory) RoleByID(ctx context.Context, id string) (*models.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.roles[id], nil
}

func (f *fakeDirectory) FounderRole(ctx context.Context, brandID string) (*models.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.roles {
		if r.BrandID == brandID && r.IsFounder {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) RolesByBrand(ctx context.Context, brandID string) ([]models.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Role
	// Founder first, then default, then the rest, to keep ordering stable
	// the way the store returns them.
	for _, r := range f.roles {
		if r.BrandID == brandID && r.IsFounder {
			out = append(out, *r)
		}
	}
	for _, r := range f.roles {
		if r.BrandID == brandID && r.IsDefault && !r.IsFounder {
			out = append(out, *r)
		}
	}
	for _, r := range f.roles {
		if r.BrandID == brandID && !r.IsFounder && !r.IsDefault {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeDirectory) EventByID(ctx context.Context, id string) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events[id], nil
}

func (f *fakeDirectory) CodeTemplatesForEvent(ctx context.Context, brandID, eventID string) ([]models.CodeTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.CodeTemplate
	for _, t := range f.templates[brandID] {
		if t.EventID == "" || t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeDirectory) CodeTemplatesForBrand(ctx context.Context, brandID string) ([]models.CodeTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.templates[brandID], nil
}
