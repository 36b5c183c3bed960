package common

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crmarques/krbctl/faults"
	"github.com/spf13/cobra"
)

func TestReadManifestWithDashReadsStdin(t *testing.T) {
	t.Parallel()

	command := &cobra.Command{}
	command.SetIn(strings.NewReader("principal: host/box.example.com\n"))

	data, err := ReadManifest(command, "-")
	if err != nil {
		t.Fatalf("ReadManifest returned error: %v", err)
	}
	if got, want := string(data), "principal: host/box.example.com\n"; got != want {
		t.Fatalf("ReadManifest = %q, want %q", got, want)
	}
}

func TestReadManifestWithEmptyStdinReportsRequiredError(t *testing.T) {
	t.Parallel()

	command := &cobra.Command{}
	command.SetIn(strings.NewReader("   \n"))

	_, err := ReadManifest(command, "-")
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	if !strings.Contains(err.Error(), MissingInputMessage) {
		t.Fatalf("expected %q in error, got %q", MissingInputMessage, err.Error())
	}
}

func TestReadOptionalManifestWithEmptyStdinReturnsNil(t *testing.T) {
	t.Parallel()

	command := &cobra.Command{}
	command.SetIn(strings.NewReader(""))

	data, err := ReadOptionalManifest(command, "")
	if err != nil {
		t.Fatalf("ReadOptionalManifest returned error: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil data, got %q", string(data))
	}
}

func TestReadManifestFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "key.yaml")
	if err := os.WriteFile(path, []byte("state: absent\nid: keys/kerberos/abc\n"), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	command := &cobra.Command{}
	data, err := ReadManifest(command, path)
	if err != nil {
		t.Fatalf("ReadManifest returned error: %v", err)
	}
	if !strings.Contains(string(data), "keys/kerberos/abc") {
		t.Fatalf("unexpected manifest data %q", string(data))
	}
}

func TestReadManifestRejectsOversizedStdin(t *testing.T) {
	t.Parallel()

	command := &cobra.Command{}
	command.SetIn(bytes.NewReader(bytes.Repeat([]byte("a"), maxInputBytes+1)))

	_, err := ReadManifest(command, "-")
	if err == nil {
		t.Fatal("expected error for oversized input")
	}
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReadManifestRejectsOversizedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "big.yaml")
	if err := os.WriteFile(path, bytes.Repeat([]byte("a"), maxInputBytes+1), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	command := &cobra.Command{}
	_, err := ReadManifest(command, path)
	if err == nil {
		t.Fatal("expected error for oversized input")
	}
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeManifestDecodesStrictYAML(t *testing.T) {
	t.Parallel()

	command := &cobra.Command{}
	command.SetIn(strings.NewReader("principal: host/box.example.com\ncomment: primary\n"))

	spec, err := DecodeManifest(command, "-")
	if err != nil {
		t.Fatalf("DecodeManifest returned error: %v", err)
	}
	if spec.Principal != "host/box.example.com" {
		t.Fatalf("unexpected principal %q", spec.Principal)
	}
	if spec.Comment == nil || *spec.Comment != "primary" {
		t.Fatalf("unexpected comment %v", spec.Comment)
	}
}

func TestDecodeManifestRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	command := &cobra.Command{}
	command.SetIn(strings.NewReader("principal: host/box.example.com\nunknown-option: 1\n"))

	_, err := DecodeManifest(command, "-")
	if err == nil {
		t.Fatal("expected error for unknown manifest field")
	}
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
