package reconcile

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/crmarques/krbctl/faults"
	"github.com/crmarques/krbctl/kerberos"
	"github.com/crmarques/krbctl/keysapi"
)

func TestReconcileCreatesWhenAbsent(t *testing.T) {
	t.Parallel()

	comment := "host key"
	client := &fakeClient{
		createdKey: serverKey("keys/kerberos/new-1", "host/server.example.com@EXAMPLE.COM", &comment, nil, 1),
	}
	reconciler := NewDefaultReconciler(client)

	result, err := reconciler.Reconcile(context.Background(), kerberos.Spec{
		Principal: "host/server.example.com@EXAMPLE.COM",
		Comment:   &comment,
	}, Options{})
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	if !result.Changed {
		t.Fatal("expected changed result for creation")
	}
	if result.Msg != "Kerberos key created" {
		t.Fatalf("unexpected msg %q", result.Msg)
	}
	if result.ID != "keys/kerberos/new-1" {
		t.Fatalf("expected id from created record, got %q", result.ID)
	}
	if len(client.createPayloads) != 1 {
		t.Fatalf("expected one create call, got %d", len(client.createPayloads))
	}
	wantPayload := map[string]any{
		"principal": "host/server.example.com@EXAMPLE.COM",
		"comment":   "host key",
	}
	if !reflect.DeepEqual(client.createPayloads[0], wantPayload) {
		t.Fatalf("unexpected create payload %#v", client.createPayloads[0])
	}
	if result.Diff == nil || len(result.Diff.Before) != 0 {
		t.Fatalf("expected empty diff before, got %#v", result.Diff)
	}
	if result.Diff.After["id"] != "keys/kerberos/new-1" {
		t.Fatalf("expected created record in diff after, got %#v", result.Diff.After)
	}
	if result.Object["principal"] != "host/server.example.com@EXAMPLE.COM" {
		t.Fatalf("expected created record in object, got %#v", result.Object)
	}
}

func TestReconcileSecondPassIsNoop(t *testing.T) {
	t.Parallel()

	comment := "host key"
	created := serverKey("keys/kerberos/new-1", "host/server.example.com@EXAMPLE.COM", &comment, map[string]any{"env": "prod"}, 1)

	first := &fakeClient{createdKey: created}
	spec := kerberos.Spec{
		Principal: "host/server.example.com@EXAMPLE.COM",
		Comment:   &comment,
		Tags:      map[string]any{"env": "prod"},
	}

	firstResult, err := NewDefaultReconciler(first).Reconcile(context.Background(), spec, Options{})
	if err != nil {
		t.Fatalf("first Reconcile returned error: %v", err)
	}
	if !firstResult.Changed {
		t.Fatal("expected first pass to create")
	}

	second := &fakeClient{listKeys: []kerberos.Key{created}}
	secondResult, err := NewDefaultReconciler(second).Reconcile(context.Background(), spec, Options{})
	if err != nil {
		t.Fatalf("second Reconcile returned error: %v", err)
	}

	if secondResult.Changed {
		t.Fatal("expected second pass unchanged")
	}
	if second.writeCalls() != 0 {
		t.Fatalf("expected no writes on second pass, got %d", second.writeCalls())
	}
	if secondResult.Msg != "" {
		t.Fatalf("expected empty msg on no-op, got %q", secondResult.Msg)
	}
	if secondResult.ID != "keys/kerberos/new-1" {
		t.Fatalf("expected existing id in no-op result, got %q", secondResult.ID)
	}
	if len(secondResult.Object) != 0 {
		t.Fatalf("expected empty object on no-op, got %#v", secondResult.Object)
	}
	if secondResult.Diff == nil || len(secondResult.Diff.After) != 0 {
		t.Fatalf("expected empty diff after on no-op, got %#v", secondResult.Diff)
	}
}

func TestReconcileIgnoresServerAssignedFields(t *testing.T) {
	t.Parallel()

	comment := "host key"
	existing := serverKey("keys/kerberos/a", "user@EXAMPLE.COM", &comment, nil, 7)
	client := &fakeClient{listKeys: []kerberos.Key{existing}}

	result, err := NewDefaultReconciler(client).Reconcile(context.Background(), kerberos.Spec{
		Principal: "user@EXAMPLE.COM",
		Comment:   &comment,
	}, Options{})
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	if result.Changed {
		t.Fatal("expected algorithm/version/uploaded_at to never drift")
	}
	if client.writeCalls() != 0 {
		t.Fatalf("expected no writes, got %d", client.writeCalls())
	}
}

func TestReconcileUpdatesOnDrift(t *testing.T) {
	t.Parallel()

	oldComment := "old"
	newComment := "new"
	existing := serverKey("keys/kerberos/a", "user@EXAMPLE.COM", &oldComment, nil, 2)
	updated := serverKey("keys/kerberos/a", "user@EXAMPLE.COM", &newComment, nil, 2)

	client := &fakeClient{
		listKeys:   []kerberos.Key{existing},
		updatedKey: updated,
	}

	result, err := NewDefaultReconciler(client).Reconcile(context.Background(), kerberos.Spec{
		Principal: "user@EXAMPLE.COM",
		Comment:   &newComment,
	}, Options{})
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	if !result.Changed || result.Msg != "Kerberos key updated" {
		t.Fatalf("expected update result, got %+v", result)
	}
	if len(client.updateIDs) != 1 || client.updateIDs[0] != "keys/kerberos/a" {
		t.Fatalf("expected update addressed to existing id, got %#v", client.updateIDs)
	}
	wantPayload := map[string]any{
		"principal": "user@EXAMPLE.COM",
		"comment":   "new",
	}
	if !reflect.DeepEqual(client.updatePayloads[0], wantPayload) {
		t.Fatalf("expected full desired payload in update, got %#v", client.updatePayloads[0])
	}
	if result.Diff.Before["comment"] != "old" || result.Diff.After["comment"] != "new" {
		t.Fatalf("expected comment transition in diff, got %#v", result.Diff)
	}
	if result.ID != "keys/kerberos/a" {
		t.Fatalf("expected existing id, got %q", result.ID)
	}
}

func TestReconcileDeletesWhenAbsentDeclared(t *testing.T) {
	t.Parallel()

	existing := serverKey("keys/kerberos/a", "user@EXAMPLE.COM", nil, nil, 2)
	client := &fakeClient{readKey: existing}

	result, err := NewDefaultReconciler(client).Reconcile(context.Background(), kerberos.Spec{
		ID:    "keys/kerberos/a",
		State: kerberos.StateAbsent,
	}, Options{})
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	if !result.Changed || result.Msg != "Kerberos key deleted" {
		t.Fatalf("expected delete result, got %+v", result)
	}
	if len(client.deleteIDs) != 1 || client.deleteIDs[0] != "keys/kerberos/a" {
		t.Fatalf("expected delete addressed to existing id, got %#v", client.deleteIDs)
	}
	if len(result.Object) != 0 {
		t.Fatalf("expected empty object after delete, got %#v", result.Object)
	}
	if result.Diff == nil || len(result.Diff.Before) == 0 || len(result.Diff.After) != 0 {
		t.Fatalf("expected before-only diff on delete, got %#v", result.Diff)
	}
}

func TestReconcileToleratesMissingRecordWhenAbsent(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		readErr: faults.NewAPIError(faults.NotFoundError, http.StatusNotFound, "Not Found", ""),
	}

	result, err := NewDefaultReconciler(client).Reconcile(context.Background(), kerberos.Spec{
		ID:    "keys/kerberos/gone",
		State: kerberos.StateAbsent,
	}, Options{})
	if err != nil {
		t.Fatalf("expected tolerated not-found, got error: %v", err)
	}

	if result.Changed {
		t.Fatal("expected unchanged result when record already absent")
	}
	if client.writeCalls() != 0 {
		t.Fatalf("expected no writes, got %d", client.writeCalls())
	}
}

func TestReconcileFailsOnMissingRecordWhenPresent(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		readErr: faults.NewAPIError(faults.NotFoundError, http.StatusNotFound, "Not Found", "no such key"),
	}

	_, err := NewDefaultReconciler(client).Reconcile(context.Background(), kerberos.Spec{
		ID:    "keys/kerberos/gone",
		State: kerberos.StatePresent,
	}, Options{})

	if !faults.IsCategory(err, faults.NotFoundError) {
		t.Fatalf("expected fatal not-found, got %v", err)
	}
	apiErr, ok := faults.AsAPIError(err)
	if !ok || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected original api error surfaced, got %v", err)
	}
	if client.writeCalls() != 0 {
		t.Fatalf("expected no create fallback, got %d writes", client.writeCalls())
	}
}

func TestReconcileFailsOnAmbiguousPrincipal(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		listKeys: []kerberos.Key{
			serverKey("keys/kerberos/a", "user@EXAMPLE.COM", nil, nil, 1),
			serverKey("keys/kerberos/b", "user@EXAMPLE.COM", nil, nil, 2),
		},
	}

	_, err := NewDefaultReconciler(client).Reconcile(context.Background(), kerberos.Spec{
		Principal: "user@EXAMPLE.COM",
	}, Options{})

	if !faults.IsCategory(err, faults.ConflictError) {
		t.Fatalf("expected conflict for ambiguous match, got %v", err)
	}
	for _, candidate := range []string{"keys/kerberos/a", "keys/kerberos/b"} {
		if !errorContains(err, candidate) {
			t.Fatalf("expected candidate %q in error, got %q", candidate, err.Error())
		}
	}
	if client.writeCalls() != 0 {
		t.Fatalf("expected no writes on ambiguous match, got %d", client.writeCalls())
	}
}

func TestReconcileDryRunSkipsWrites(t *testing.T) {
	t.Parallel()

	newComment := "new"
	oldComment := "old"

	testCases := []struct {
		name        string
		spec        kerberos.Spec
		client      *fakeClient
		wantChanged bool
		wantMsg     string
	}{
		{
			name:        "would_create",
			spec:        kerberos.Spec{Principal: "user@EXAMPLE.COM", Comment: &newComment},
			client:      &fakeClient{},
			wantChanged: true,
			wantMsg:     "Kerberos key created",
		},
		{
			name: "would_update",
			spec: kerberos.Spec{Principal: "user@EXAMPLE.COM", Comment: &newComment},
			client: &fakeClient{
				listKeys: []kerberos.Key{serverKey("keys/kerberos/a", "user@EXAMPLE.COM", &oldComment, nil, 1)},
			},
			wantChanged: true,
			wantMsg:     "Kerberos key updated",
		},
		{
			name: "would_delete",
			spec: kerberos.Spec{ID: "keys/kerberos/a", State: kerberos.StateAbsent},
			client: &fakeClient{
				readKey: serverKey("keys/kerberos/a", "user@EXAMPLE.COM", nil, nil, 1),
			},
			wantChanged: true,
			wantMsg:     "Kerberos key deleted",
		},
		{
			name: "would_not_change",
			spec: kerberos.Spec{Principal: "user@EXAMPLE.COM", Comment: &oldComment},
			client: &fakeClient{
				listKeys: []kerberos.Key{serverKey("keys/kerberos/a", "user@EXAMPLE.COM", &oldComment, nil, 1)},
			},
			wantChanged: false,
			wantMsg:     "",
		},
	}

	for _, test := range testCases {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			result, err := NewDefaultReconciler(test.client).Reconcile(context.Background(), test.spec, Options{DryRun: true})
			if err != nil {
				t.Fatalf("Reconcile returned error: %v", err)
			}

			if result.Changed != test.wantChanged {
				t.Fatalf("Changed = %v, want %v", result.Changed, test.wantChanged)
			}
			if result.Msg != test.wantMsg {
				t.Fatalf("Msg = %q, want %q", result.Msg, test.wantMsg)
			}
			if test.client.writeCalls() != 0 {
				t.Fatalf("expected no remote writes on dry run, got %d", test.client.writeCalls())
			}
			if result.Diff != nil {
				t.Fatalf("expected diff suppressed on dry run, got %#v", result.Diff)
			}
			if len(result.Object) != 0 {
				t.Fatalf("expected empty object on dry run, got %#v", result.Object)
			}
			if result.ID != "" {
				t.Fatalf("expected no id on dry run, got %q", result.ID)
			}
		})
	}
}

func TestReconcileSurfacesRemoteFailuresVerbatim(t *testing.T) {
	t.Parallel()

	apiErr := faults.NewAPIError(faults.ConflictError, http.StatusConflict, "Conflict", `{"error":"duplicate"}`)
	client := &fakeClient{createErr: apiErr}

	_, err := NewDefaultReconciler(client).Reconcile(context.Background(), kerberos.Spec{
		Principal: "user@EXAMPLE.COM",
	}, Options{})

	if !errors.Is(err, apiErr) {
		t.Fatalf("expected api error surfaced unwrapped, got %v", err)
	}
	if len(client.createPayloads) != 1 {
		t.Fatalf("expected exactly one create attempt, got %d", len(client.createPayloads))
	}
}

func TestReconcileRequiresClient(t *testing.T) {
	t.Parallel()

	_, err := (&DefaultReconciler{}).Reconcile(context.Background(), kerberos.Spec{Principal: "x"}, Options{})
	if !faults.IsCategory(err, faults.InternalError) {
		t.Fatalf("expected internal error for missing client, got %v", err)
	}
}

func TestReconcileValidatesSpecBeforeRemoteCalls(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	_, err := NewDefaultReconciler(client).Reconcile(context.Background(), kerberos.Spec{
		Principal: "user@EXAMPLE.COM",
		State:     kerberos.State("paused"),
	}, Options{})

	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if client.readCalls+len(client.listFilters) != 0 {
		t.Fatalf("expected no remote calls on invalid spec")
	}
}

func TestResolveUsesEscapedPrincipalFilter(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	_, err := NewDefaultReconciler(client).Reconcile(context.Background(), kerberos.Spec{
		Principal: "o'brien@EXAMPLE.COM",
	}, Options{DryRun: true})
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	if len(client.listFilters) != 1 || client.listFilters[0] != `principal=='o\'brien@EXAMPLE.COM'` {
		t.Fatalf("unexpected filter %#v", client.listFilters)
	}
}

func errorContains(err error, substr string) bool {
	return err != nil && strings.Contains(err.Error(), substr)
}

func serverKey(id string, principal string, comment *string, tags map[string]any, version int64) kerberos.Key {
	algorithm := "aes256-cts-hmac-sha1-96"
	domain := "EXAMPLE.COM"
	uploaded := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	return kerberos.Key{
		ID:         id,
		Algorithm:  &algorithm,
		Comment:    comment,
		Domain:     &domain,
		Principal:  &principal,
		Tags:       tags,
		UploadedAt: &uploaded,
		Version:    &version,
	}
}

type fakeClient struct {
	readKey    kerberos.Key
	readErr    error
	listKeys   []kerberos.Key
	listErr    error
	createdKey kerberos.Key
	createErr  error
	updatedKey kerberos.Key
	updateErr  error
	deleteErr  error

	readCalls      int
	readIDs        []string
	listFilters    []string
	createPayloads []map[string]any
	updateIDs      []string
	updatePayloads []map[string]any
	deleteIDs      []string
}

var _ keysapi.Client = (*fakeClient)(nil)

func (f *fakeClient) Read(_ context.Context, id string) (kerberos.Key, error) {
	f.readCalls++
	f.readIDs = append(f.readIDs, id)
	if f.readErr != nil {
		return kerberos.Key{}, f.readErr
	}
	return f.readKey, nil
}

func (f *fakeClient) List(_ context.Context, filter string) ([]kerberos.Key, error) {
	f.listFilters = append(f.listFilters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listKeys, nil
}

func (f *fakeClient) Create(_ context.Context, payload map[string]any) (kerberos.Key, error) {
	f.createPayloads = append(f.createPayloads, payload)
	if f.createErr != nil {
		return kerberos.Key{}, f.createErr
	}
	return f.createdKey, nil
}

func (f *fakeClient) Update(_ context.Context, id string, payload map[string]any) (kerberos.Key, error) {
	f.updateIDs = append(f.updateIDs, id)
	f.updatePayloads = append(f.updatePayloads, payload)
	if f.updateErr != nil {
		return kerberos.Key{}, f.updateErr
	}
	return f.updatedKey, nil
}

func (f *fakeClient) Delete(_ context.Context, id string) error {
	f.deleteIDs = append(f.deleteIDs, id)
	return f.deleteErr
}

func (f *fakeClient) writeCalls() int {
	return len(f.createPayloads) + len(f.updatePayloads) + len(f.deleteIDs)
}
