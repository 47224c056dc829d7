package notify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notifiers.yaml")
	raw := `
notifiers:
  - id: hook1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: hook2
    type: http
    enabled: true
    http:
      url: https://example.com/2
  - id: stdout
    type: log
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "hook2" || enabled[1].ID != "stdout" {
		t.Fatalf("expected hook2 and stdout enabled, got %#v", enabled)
	}
}

func TestLoadRegistryRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notifiers.yaml")
	raw := `
notifiers:
  - id: dup
    type: log
  - id: dup
    type: log
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidateNotifierConfigRejectsMissingBlocks(t *testing.T) {
	cases := []NotifierConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "q1", Type: TypeSQS},
		{ID: "t1", Type: TypeSNS},
		{ID: "p1", Type: TypePubSub},
		{ID: "x1"},
	}
	for _, cfg := range cases {
		if err := validateNotifierConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}

func TestValidateNotifierConfigAcceptsLog(t *testing.T) {
	if err := validateNotifierConfig(NotifierConfig{ID: "stdout", Type: TypeLog}); err != nil {
		t.Fatalf("log notifier should need no extra config: %v", err)
	}
}
