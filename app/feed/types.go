package feed

// Mirror configuration types

type Config struct {
	Name          string         // Derived from filename (without .yml extension)
	URL           string         `yaml:"url"`
	DeleteBaseURL string         `yaml:"delete_base_url"` // Defaults to URL
	Settings      ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxEntries      int  `yaml:"max_entries"`
	Timeout         int  `yaml:"timeout"` // seconds
}
