package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/faults"
	configfile "github.com/crmarques/krbctl/internal/providers/config/file"
	"github.com/crmarques/krbctl/reconcile"
)

func TestNewKrbctlContext(t *testing.T) {
	t.Parallel()

	profileCatalogPath := writeProfileCatalog(t)

	krbctlContext, err := NewKrbctlContext(
		BootstrapConfig{ProfileCatalogPath: profileCatalogPath},
		config.ProfileSelection{Name: "dev"},
	)
	if err != nil {
		t.Fatalf("NewKrbctlContext returned error: %v", err)
	}

	if krbctlContext.Profiles == nil {
		t.Fatal("expected non-nil profile service")
	}
	if krbctlContext.Keys == nil {
		t.Fatal("expected non-nil keys client")
	}
	if krbctlContext.Search == nil {
		t.Fatal("expected non-nil search client")
	}
	if krbctlContext.Reconciler == nil {
		t.Fatal("expected non-nil reconciler")
	}

	if _, ok := krbctlContext.Profiles.(*configfile.FileProfileService); !ok {
		t.Fatalf("expected FileProfileService, got %T", krbctlContext.Profiles)
	}
	if _, ok := krbctlContext.Reconciler.(*reconcile.DefaultReconciler); !ok {
		t.Fatalf("expected DefaultReconciler, got %T", krbctlContext.Reconciler)
	}
	if krbctlContext.Profile.Name != "dev" {
		t.Fatalf("expected resolved dev profile, got %q", krbctlContext.Profile.Name)
	}
}

func TestNewKrbctlContextUsesCatalogPathAndSelection(t *testing.T) {
	t.Parallel()

	profileCatalogPath := writeProfileCatalog(t)

	krbctlContext, err := NewKrbctlContext(
		BootstrapConfig{ProfileCatalogPath: profileCatalogPath},
		config.ProfileSelection{Name: "prod"},
	)
	if err != nil {
		t.Fatalf("NewKrbctlContext returned error: %v", err)
	}

	if krbctlContext.Profile.Name != "prod" {
		t.Fatalf("expected selected prod profile, got %q", krbctlContext.Profile.Name)
	}
	if krbctlContext.Profile.CSP == nil || krbctlContext.Profile.CSP.URL != "https://csp.prod.example.com" {
		t.Fatalf("expected prod csp url, got %+v", krbctlContext.Profile.CSP)
	}
}

func TestNewKrbctlContextDefaultsToCurrentProfile(t *testing.T) {
	t.Parallel()

	profileCatalogPath := writeProfileCatalog(t)

	krbctlContext, err := NewKrbctlContext(
		BootstrapConfig{ProfileCatalogPath: profileCatalogPath},
		config.ProfileSelection{},
	)
	if err != nil {
		t.Fatalf("NewKrbctlContext returned error: %v", err)
	}

	if krbctlContext.Profile.Name != "dev" {
		t.Fatalf("expected catalog current profile, got %q", krbctlContext.Profile.Name)
	}
}

func TestNewKrbctlContextFailsFastWhenCurrentProfileMissing(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	profileCatalogPath := filepath.Join(tempDir, "profiles.yaml")
	if err := os.WriteFile(profileCatalogPath, []byte("profiles: []\n"), 0o600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	_, err := NewKrbctlContext(
		BootstrapConfig{ProfileCatalogPath: profileCatalogPath},
		config.ProfileSelection{},
	)
	assertTypedCategory(t, err, faults.NotFoundError)
}

func TestNewKrbctlContextSelectsProfileFromEnvironment(t *testing.T) {
	profileCatalogPath := writeProfileCatalog(t)
	t.Setenv("KRBCTL_PROFILE", "prod")

	krbctlContext, err := NewKrbctlContext(
		BootstrapConfig{ProfileCatalogPath: profileCatalogPath},
		config.ProfileSelection{},
	)
	if err != nil {
		t.Fatalf("NewKrbctlContext returned error: %v", err)
	}

	if krbctlContext.Profile.Name != "prod" {
		t.Fatalf("expected environment-selected profile, got %q", krbctlContext.Profile.Name)
	}
}

func TestNewKrbctlContextAppliesEnvironmentOverrides(t *testing.T) {
	tempDir := t.TempDir()
	profileCatalogPath := filepath.Join(tempDir, "profiles.yaml")
	profileCatalog := []byte(`
profiles:
  - name: dev
    csp:
      url: https://csp.dev.example.com
current-profile: dev
`)
	if err := os.WriteFile(profileCatalogPath, profileCatalog, 0o600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	t.Setenv("KRBCTL_CSP_API_KEY", "env-key")

	krbctlContext, err := NewKrbctlContext(
		BootstrapConfig{ProfileCatalogPath: profileCatalogPath},
		config.ProfileSelection{},
	)
	if err != nil {
		t.Fatalf("NewKrbctlContext returned error: %v", err)
	}
	if krbctlContext.Profile.CSP == nil || krbctlContext.Profile.CSP.APIKey != "env-key" {
		t.Fatalf("expected environment api key, got %+v", krbctlContext.Profile.CSP)
	}

	explicitContext, err := NewKrbctlContext(
		BootstrapConfig{ProfileCatalogPath: profileCatalogPath},
		config.ProfileSelection{Overrides: map[string]string{"csp.api-key": "explicit-key"}},
	)
	if err != nil {
		t.Fatalf("NewKrbctlContext with explicit override returned error: %v", err)
	}
	if explicitContext.Profile.CSP == nil || explicitContext.Profile.CSP.APIKey != "explicit-key" {
		t.Fatalf("expected explicit override to win, got %+v", explicitContext.Profile.CSP)
	}
}

func writeProfileCatalog(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	profileCatalogPath := filepath.Join(tempDir, "profiles.yaml")
	profileCatalog := []byte(`
profiles:
  - name: dev
    csp:
      url: https://csp.dev.example.com
      api-key: dev-key
  - name: prod
    csp:
      url: https://csp.prod.example.com
      api-key: prod-key
current-profile: dev
`)
	if err := os.WriteFile(profileCatalogPath, profileCatalog, 0o600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return profileCatalogPath
}

func assertTypedCategory(t *testing.T, err error, category faults.ErrorCategory) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var typedErr *faults.TypedError
	if !errors.As(err, &typedErr) {
		t.Fatalf("expected typed error, got %T", err)
	}
	if typedErr.Category != category {
		t.Fatalf("expected %q category, got %q", category, typedErr.Category)
	}
}
