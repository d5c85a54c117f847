package profile

// File is the top-level structure of a device profile YAML file.
type File struct {
	Device DeviceProps `yaml:"device"`
}

// DeviceProps describes the simulated device.
type DeviceProps struct {
	Name               string     `yaml:"name"`
	SupportsShortcuts  bool       `yaml:"supports_shortcuts"`
	AutoAcceptPreviews bool       `yaml:"auto_accept_previews"`
	Apps               []AppProps `yaml:"apps"`
}

// AppProps describes one installed package.
type AppProps struct {
	Package    string   `yaml:"package"`
	Launchable *bool    `yaml:"launchable,omitempty"` // defaults to true
	Browser    bool     `yaml:"browser,omitempty"`
	Schemes    []string `yaml:"schemes,omitempty"`
	Hosts      []string `yaml:"hosts,omitempty"`
	Actions    []string `yaml:"actions,omitempty"`
	Shortcuts  []string `yaml:"shortcuts,omitempty"`
	Broken     bool     `yaml:"broken,omitempty"`
}
