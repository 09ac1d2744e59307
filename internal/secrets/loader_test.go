package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/avoran/jobscout/internal/faults"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_key")
	if err := os.WriteFile(path, []byte("  key-value\n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}

	got, err := Load(Source{Name: "adzuna app key", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "key-value" {
		t.Fatalf("expected trimmed secret, got %q", got)
	}
}

func TestLoadFilePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_key")
	if err := os.WriteFile(path, []byte("from-file"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}

	got, err := Load(Source{Name: "adzuna app key", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "from-file" {
		t.Fatalf("expected file to win over inline value, got %q", got)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(Source{Name: "gemini api key"})
	if err == nil {
		t.Fatalf("expected error for unconfigured secret")
	}

	if !faults.IsKind(err, faults.Configuration) {
		t.Fatalf("expected configuration fault, got %s", faults.KindOf(err))
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}

	if _, err := Load(Source{Name: "token", File: path}); err == nil {
		t.Fatalf("expected error for empty secret file")
	}
}
