package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/faults"
)

var _ config.ProfileService = (*FileProfileService)(nil)
var _ config.ProfileCatalogEditor = (*FileProfileService)(nil)

type FileProfileService struct {
	profileCatalogPath string
}

func NewFileProfileService(path string) *FileProfileService {
	return &FileProfileService{profileCatalogPath: path}
}

func (m *FileProfileService) Create(_ context.Context, profile config.Profile) error {
	profile = normalizeProfile(profile)
	if err := validateProfile(profile); err != nil {
		return err
	}

	profileCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	if idx := findProfileIndex(profileCatalog.Profiles, profile.Name); idx >= 0 {
		return validationError(fmt.Sprintf("profile %q already exists", profile.Name), nil)
	}

	profileCatalog.Profiles = append(profileCatalog.Profiles, profile)
	if profileCatalog.CurrentProfile == "" {
		profileCatalog.CurrentProfile = profile.Name
	}

	return m.saveCatalog(profileCatalog)
}

func (m *FileProfileService) Update(_ context.Context, profile config.Profile) error {
	profile = normalizeProfile(profile)
	if err := validateProfile(profile); err != nil {
		return err
	}

	profileCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	idx := findProfileIndex(profileCatalog.Profiles, profile.Name)
	if idx < 0 {
		return notFoundError(fmt.Sprintf("profile %q not found", profile.Name))
	}

	profileCatalog.Profiles[idx] = profile
	return m.saveCatalog(profileCatalog)
}

func (m *FileProfileService) Delete(_ context.Context, name string) error {
	profileCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	idx := findProfileIndex(profileCatalog.Profiles, name)
	if idx < 0 {
		return notFoundError(fmt.Sprintf("profile %q not found", name))
	}

	profileCatalog.Profiles = append(profileCatalog.Profiles[:idx], profileCatalog.Profiles[idx+1:]...)

	if profileCatalog.CurrentProfile == name {
		if len(profileCatalog.Profiles) == 0 {
			profileCatalog.CurrentProfile = ""
		} else {
			profileCatalog.CurrentProfile = profileCatalog.Profiles[0].Name
		}
	}

	return m.saveCatalog(profileCatalog)
}

func (m *FileProfileService) Rename(_ context.Context, fromName string, toName string) error {
	if toName == "" {
		return validationError("profile name must not be empty", nil)
	}

	profileCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	fromIdx := findProfileIndex(profileCatalog.Profiles, fromName)
	if fromIdx < 0 {
		return notFoundError(fmt.Sprintf("profile %q not found", fromName))
	}
	if findProfileIndex(profileCatalog.Profiles, toName) >= 0 {
		return validationError(fmt.Sprintf("profile %q already exists", toName), nil)
	}

	profileCatalog.Profiles[fromIdx].Name = toName
	if profileCatalog.CurrentProfile == fromName {
		profileCatalog.CurrentProfile = toName
	}

	return m.saveCatalog(profileCatalog)
}

func (m *FileProfileService) List(_ context.Context) ([]config.Profile, error) {
	profileCatalog, err := m.loadCatalog()
	if err != nil {
		return nil, err
	}

	profiles := make([]config.Profile, len(profileCatalog.Profiles))
	copy(profiles, profileCatalog.Profiles)
	return profiles, nil
}

func (m *FileProfileService) SetCurrent(_ context.Context, name string) error {
	profileCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	if findProfileIndex(profileCatalog.Profiles, name) < 0 {
		return notFoundError(fmt.Sprintf("profile %q not found", name))
	}

	profileCatalog.CurrentProfile = name
	return m.saveCatalog(profileCatalog)
}

func (m *FileProfileService) GetCurrent(_ context.Context) (config.Profile, error) {
	profileCatalog, err := m.loadCatalog()
	if err != nil {
		return config.Profile{}, err
	}
	if profileCatalog.CurrentProfile == "" {
		return config.Profile{}, notFoundError("current profile not set")
	}

	idx := findProfileIndex(profileCatalog.Profiles, profileCatalog.CurrentProfile)
	if idx < 0 {
		return config.Profile{}, notFoundError(fmt.Sprintf("current profile %q not found", profileCatalog.CurrentProfile))
	}

	return profileCatalog.Profiles[idx], nil
}

func (m *FileProfileService) ResolveProfile(_ context.Context, selection config.ProfileSelection) (config.Profile, error) {
	profileCatalog, err := m.loadCatalog()
	if err != nil {
		return config.Profile{}, err
	}

	effectiveName := selection.Name
	if effectiveName == "" {
		effectiveName = profileCatalog.CurrentProfile
	}
	if effectiveName == "" {
		return config.Profile{}, notFoundError("current profile not set")
	}

	idx := findProfileIndex(profileCatalog.Profiles, effectiveName)
	if idx < 0 {
		return config.Profile{}, notFoundError(fmt.Sprintf("profile %q not found", effectiveName))
	}

	resolved, err := applyOverrides(normalizeProfile(profileCatalog.Profiles[idx]), selection.Overrides)
	if err != nil {
		return config.Profile{}, err
	}
	resolved = applyProfileDefaults(resolved)
	if err := resolveProfileEnvPlaceholders(&resolved); err != nil {
		return config.Profile{}, validationError(fmt.Sprintf("failed to resolve environment references for profile %q", effectiveName), err)
	}
	if err := validateResolvedProfile(resolved); err != nil {
		return config.Profile{}, err
	}

	return resolved, nil
}

func (m *FileProfileService) Validate(_ context.Context, profile config.Profile) error {
	return validateProfile(normalizeProfile(profile))
}

func (m *FileProfileService) GetCatalog(_ context.Context) (config.ProfileCatalog, error) {
	return m.loadCatalog()
}

func (m *FileProfileService) ReplaceCatalog(_ context.Context, catalog config.ProfileCatalog) error {
	return m.saveCatalog(catalog)
}

func (m *FileProfileService) saveCatalog(profileCatalog config.ProfileCatalog) error {
	profileCatalog = compactProfileCatalogForPersistence(profileCatalog)

	if err := validateCatalog(profileCatalog); err != nil {
		return err
	}

	resolvedPath, err := m.resolveCatalogPath()
	if err != nil {
		return err
	}

	encoded, err := encodeCatalog(profileCatalog)
	if err != nil {
		return internalError("failed to encode profile catalog", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolvedPath), 0o755); err != nil {
		return internalError("failed to create profile config directory", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(resolvedPath), ".krbctl-profiles-*")
	if err != nil {
		return internalError("failed to create temporary profile catalog file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(encoded); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to write profile catalog", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to set profile catalog permissions", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to finalize profile catalog", err)
	}

	if err := os.Rename(tempPath, resolvedPath); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to replace profile catalog", err)
	}

	if err := ensureUserOnlyReadWriteFile(resolvedPath); err != nil {
		return err
	}

	return nil
}

func (m *FileProfileService) loadCatalog() (config.ProfileCatalog, error) {
	resolvedPath, err := m.resolveCatalogPath()
	if err != nil {
		return config.ProfileCatalog{}, err
	}

	profileCatalog, err := decodeCatalogFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.ProfileCatalog{}, nil
		}
		return config.ProfileCatalog{}, err
	}
	if err := ensureUserOnlyReadWriteFile(resolvedPath); err != nil {
		return config.ProfileCatalog{}, err
	}

	if err := validateCatalog(profileCatalog); err != nil {
		return config.ProfileCatalog{}, err
	}

	return profileCatalog, nil
}

func (m *FileProfileService) resolveCatalogPath() (string, error) {
	return resolveCatalogPath(m.profileCatalogPath)
}

func findProfileIndex(profiles []config.Profile, name string) int {
	for idx, item := range profiles {
		if item.Name == name {
			return idx
		}
	}
	return -1
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}

func ensureUserOnlyReadWriteFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return internalError("failed to inspect profile catalog permissions", err)
	}

	if info.Mode().Perm() == 0o600 {
		return nil
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return internalError("failed to update profile catalog permissions", err)
	}
	return nil
}
