package config

import "context"

type ProfileCatalogWriter interface {
	Create(ctx context.Context, profile Profile) error
	Update(ctx context.Context, profile Profile) error
	Delete(ctx context.Context, name string) error
	Rename(ctx context.Context, fromName string, toName string) error
	SetCurrent(ctx context.Context, name string) error
}

type ProfileCatalogReader interface {
	List(ctx context.Context) ([]Profile, error)
	GetCurrent(ctx context.Context) (Profile, error)
}

// ProfileCatalogEditor is an optional capability for commands that need to
// edit the full persisted catalog while preserving strict validation.
type ProfileCatalogEditor interface {
	GetCatalog(ctx context.Context) (ProfileCatalog, error)
	ReplaceCatalog(ctx context.Context, catalog ProfileCatalog) error
}

type ProfileResolver interface {
	ResolveProfile(ctx context.Context, selection ProfileSelection) (Profile, error)
}

type ProfileValidator interface {
	Validate(ctx context.Context, profile Profile) error
}

type ProfileService interface {
	ProfileCatalogWriter
	ProfileCatalogReader
	ProfileResolver
	ProfileValidator
}
