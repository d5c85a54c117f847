package profile

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/linkjump/internal/platform"
)

// Mapper converts a profile file to a platform.Device
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapDevice validates the profile and builds the device snapshot.
func (m *Mapper) MapDevice(f *File) (*platform.Device, error) {
	if f == nil {
		return nil, fmt.Errorf("nil profile")
	}

	name := strings.TrimSpace(f.Device.Name)
	if name == "" {
		name = "device"
	}

	apps := make([]platform.App, 0, len(f.Device.Apps))
	seen := make(map[string]bool, len(f.Device.Apps))
	for i, props := range f.Device.Apps {
		pkg := strings.TrimSpace(props.Package)
		if pkg == "" {
			return nil, fmt.Errorf("app #%d: missing package", i)
		}
		if seen[pkg] {
			return nil, fmt.Errorf("app #%d: duplicate package %q", i, pkg)
		}
		seen[pkg] = true

		launchable := true
		if props.Launchable != nil {
			launchable = *props.Launchable
		}

		apps = append(apps, platform.App{
			Package:    pkg,
			Launchable: launchable,
			Browser:    props.Browser,
			Schemes:    normalize(props.Schemes, true),
			Hosts:      normalize(props.Hosts, true),
			Actions:    normalize(props.Actions, false),
			Shortcuts:  normalize(props.Shortcuts, false),
			Broken:     props.Broken,
		})
	}

	d := platform.NewDevice(name, apps)
	d.SupportsShortcuts = f.Device.SupportsShortcuts
	d.AutoAcceptPreviews = f.Device.AutoAcceptPreviews
	return d, nil
}

// normalize trims entries and drops empty ones. Schemes and hosts are
// case-insensitive and get lowercased.
func normalize(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if lower {
			v = strings.ToLower(v)
		}
		out = append(out, strings.TrimSuffix(v, "://"))
	}
	return out
}
