package domain

// Config mirrors ~/.psprofile/config.yaml.
type Config struct {
	ConfigFormatVersion string               `yaml:"config_format_version"`
	Preferences         Preferences          `yaml:"preferences"`
	Availability        AvailabilitySettings `yaml:"availability"`
	Fragments           FragmentSettings     `yaml:"fragments"`
	Execution           ExecutionSettings    `yaml:"execution"`
}

// Preferences captures user level toggles.
type Preferences struct {
	Verbose bool   `yaml:"verbose"`
	Shell   string `yaml:"shell"`
}

// AvailabilitySettings configures the command availability cache.
type AvailabilitySettings struct {
	// TTL bounds how long an outcome stays fresh. Empty or "0" never expires.
	TTL       string `yaml:"ttl"`
	WatchPath bool   `yaml:"watch_path"`
}

// FragmentSettings configures where fragments come from.
type FragmentSettings struct {
	Dir      string   `yaml:"dir"`
	Disabled []string `yaml:"disabled,omitempty"`
}

// ExecutionSettings controls how wrappers run.
type ExecutionSettings struct {
	Strict  bool   `yaml:"strict"`
	Timeout string `yaml:"timeout,omitempty"`
}
