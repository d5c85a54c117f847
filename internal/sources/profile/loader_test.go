package profile

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleProfile = `---
device:
  name: pixel-7
  supports_shortcuts: true
  apps:
    - package: com.android.vending
      schemes: [market]
      hosts: [play.google.com]
    - package: com.android.chrome
      browser: true
    - package: com.yelp.android
      schemes: ["Yelp://"]
      hosts: ["*.yelp.com"]
      shortcuts: [nearby]
    - package: com.example.service
      launchable: false
`

func TestLoaderLoad(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "device.yaml")

	if err := os.WriteFile(yamlPath, []byte(sampleProfile), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	loader := NewLoader(yamlPath)
	f, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if f.Device.Name != "pixel-7" {
		t.Errorf("Device.Name = %q, want pixel-7", f.Device.Name)
	}
	if len(f.Device.Apps) != 4 {
		t.Fatalf("Load() returned %d apps, want 4", len(f.Device.Apps))
	}
	if f.Device.Apps[3].Launchable == nil || *f.Device.Apps[3].Launchable {
		t.Errorf("Apps[3].Launchable = %v, want explicit false", f.Device.Apps[3].Launchable)
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	loader := NewLoader("/nonexistent/path/device.yaml")
	if _, err := loader.Load(); err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty document", input: ""},
		{name: "unknown key", input: "device:\n  name: x\n  wifi: true\n"},
		{name: "wrong type", input: "device:\n  apps: nope\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.input)); err == nil {
				t.Errorf("Parse(%q) error = nil, want error", tt.input)
			}
		})
	}
}
