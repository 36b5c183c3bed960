package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/faults"
	clitestkit "github.com/crmarques/krbctl/internal/cli/testkit"
	"github.com/crmarques/krbctl/kerberos"
	"github.com/crmarques/krbctl/keysapi"
	"github.com/crmarques/krbctl/reconcile"
	"github.com/spf13/cobra"
)

func executeForTest(deps Dependencies, stdin string, args ...string) (string, error) {
	return clitestkit.ExecuteCommandForTest(NewRootCommand(deps), stdin, args...)
}

func executeForTestWithStreams(deps Dependencies, stdin string, args ...string) (string, string, error) {
	return clitestkit.ExecuteCommandForTestWithStreams(NewRootCommand(deps), stdin, args...)
}

func registeredPaths(command *cobra.Command, prefix []string) [][]string {
	return clitestkit.RegisteredPaths(command, prefix)
}

func joinPath(path []string) string {
	return clitestkit.JoinPath(path)
}

func testDeps() Dependencies {
	client := &testKeysClient{}
	return Dependencies{
		Profiles: &testProfileService{
			profiles: []config.Profile{
				{Name: "dev", CSP: &config.CSPConfig{URL: "https://csp.example.com", APIKey: "token"}},
			},
			current: "dev",
		},
		Keys:       client,
		Search:     &testSearcher{},
		Reconciler: reconcile.NewDefaultReconciler(client),
	}
}

type testProfileService struct {
	profiles []config.Profile
	current  string

	setCurrentName string
	deletedName    string
}

func (s *testProfileService) Create(_ context.Context, profile config.Profile) error {
	s.profiles = append(s.profiles, profile)
	if s.current == "" {
		s.current = profile.Name
	}
	return nil
}

func (s *testProfileService) Update(_ context.Context, profile config.Profile) error {
	for idx, item := range s.profiles {
		if item.Name == profile.Name {
			s.profiles[idx] = profile
			return nil
		}
	}
	return faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("profile %q not found", profile.Name), nil)
}

func (s *testProfileService) Delete(_ context.Context, name string) error {
	s.deletedName = name
	return nil
}

func (s *testProfileService) Rename(_ context.Context, fromName string, toName string) error {
	for idx, item := range s.profiles {
		if item.Name == fromName {
			s.profiles[idx].Name = toName
			return nil
		}
	}
	return faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("profile %q not found", fromName), nil)
}

func (s *testProfileService) SetCurrent(_ context.Context, name string) error {
	s.setCurrentName = name
	s.current = name
	return nil
}

func (s *testProfileService) List(context.Context) ([]config.Profile, error) {
	return s.profiles, nil
}

func (s *testProfileService) GetCurrent(ctx context.Context) (config.Profile, error) {
	return s.ResolveProfile(ctx, config.ProfileSelection{})
}

func (s *testProfileService) ResolveProfile(_ context.Context, selection config.ProfileSelection) (config.Profile, error) {
	name := selection.Name
	if name == "" {
		name = s.current
	}
	for _, item := range s.profiles {
		if item.Name == name {
			return item, nil
		}
	}
	return config.Profile{}, faults.NewTypedError(faults.NotFoundError, fmt.Sprintf("profile %q not found", name), nil)
}

func (s *testProfileService) Validate(context.Context, config.Profile) error {
	return nil
}

type testKeysClient struct {
	readKey  kerberos.Key
	readErr  error
	listKeys []kerberos.Key
	listErr  error

	createdPayload map[string]any
	updatedID      string
	deletedID      string
}

func (c *testKeysClient) Read(_ context.Context, id string) (kerberos.Key, error) {
	if c.readErr != nil {
		return kerberos.Key{}, c.readErr
	}
	if c.readKey.ID != "" {
		return c.readKey, nil
	}
	return kerberos.Key{}, faults.NewAPIError(faults.NotFoundError, 404, "key record not found", "")
}

func (c *testKeysClient) List(context.Context, string) ([]kerberos.Key, error) {
	return c.listKeys, c.listErr
}

func (c *testKeysClient) Create(_ context.Context, payload map[string]any) (kerberos.Key, error) {
	c.createdPayload = payload
	return kerberos.Key{ID: "keys/kerberos/generated"}, nil
}

func (c *testKeysClient) Update(_ context.Context, id string, _ map[string]any) (kerberos.Key, error) {
	c.updatedID = id
	return kerberos.Key{ID: id}, nil
}

func (c *testKeysClient) Delete(_ context.Context, id string) error {
	c.deletedID = id
	return nil
}

type testSearcher struct {
	keys      []kerberos.Key
	searchErr error
	lastQuery keysapi.SearchQuery
}

func (s *testSearcher) Search(_ context.Context, query keysapi.SearchQuery) ([]kerberos.Key, error) {
	s.lastQuery = query
	return s.keys, s.searchErr
}

func assertTypedCategory(t *testing.T, err error, category faults.ErrorCategory) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %q error, got nil", category)
	}

	var typedErr *faults.TypedError
	if !errors.As(err, &typedErr) {
		t.Fatalf("expected typed error, got %T", err)
	}
	if typedErr.Category != category {
		t.Fatalf("expected %q category, got %q", category, typedErr.Category)
	}
}
