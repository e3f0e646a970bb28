package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://example.com/feeds/widgets"
delete_base_url: "https://example.com/feeds/widgets"

settings:
  enabled: true
  refresh_interval: 1800
  max_entries: 25
  timeout: 15
`

	err := os.WriteFile(filepath.Join(tempDir, "widgets.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 feedConfig, got %d", configCache.GetConfigCount())
	}

	feedConfig, err := configCache.GetConfig("widgets")
	if err != nil {
		t.Fatal(err)
	}

	if feedConfig.Name != "widgets" {
		t.Errorf("Expected name 'widgets', got '%s'", feedConfig.Name)
	}
	if feedConfig.URL != "https://example.com/feeds/widgets" {
		t.Errorf("Expected URL 'https://example.com/feeds/widgets', got '%s'", feedConfig.URL)
	}
	if feedConfig.Settings.RefreshInterval != 1800 {
		t.Errorf("Expected refresh interval 1800, got %d", feedConfig.Settings.RefreshInterval)
	}
	if feedConfig.Settings.MaxEntries != 25 {
		t.Errorf("Expected max entries 25, got %d", feedConfig.Settings.MaxEntries)
	}
	if feedConfig.Settings.Timeout != 15 {
		t.Errorf("Expected timeout 15, got %d", feedConfig.Settings.Timeout)
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://example.com/feeds/widgets"

settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "widgets.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	feedConfig, err := configCache.GetConfig("widgets")
	if err != nil {
		t.Fatal(err)
	}

	if feedConfig.Settings.RefreshInterval != 3600 {
		t.Errorf("Expected default refresh interval 3600, got %d", feedConfig.Settings.RefreshInterval)
	}
	if feedConfig.Settings.MaxEntries != 500 {
		t.Errorf("Expected default max entries 500, got %d", feedConfig.Settings.MaxEntries)
	}
	if feedConfig.DeleteBaseURL != feedConfig.URL {
		t.Errorf("Expected delete base URL to default to feed URL, got '%s'", feedConfig.DeleteBaseURL)
	}
}

func TestConfigCacheSeparateDeleteBase(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://example.com/feeds/widgets?category=tools"
delete_base_url: "https://example.com/feeds/widgets"

settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "widgets.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	feedConfig, err := configCache.GetConfig("widgets")
	if err != nil {
		t.Fatal(err)
	}
	if feedConfig.DeleteBaseURL != "https://example.com/feeds/widgets" {
		t.Errorf("Expected explicit delete base URL, got '%s'", feedConfig.DeleteBaseURL)
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	tempDir := t.TempDir()

	// Missing feed URL
	content := `
settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "invalid.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err == nil {
		t.Error("Expected error for invalid feedConfig")
	}
}

func TestConfigCacheEmptyDirectory(t *testing.T) {
	tempDir := t.TempDir()

	configCache := NewConfigCache(tempDir)
	err := configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 feedConfigs from empty directory, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheReloadConfig(t *testing.T) {
	tempDir := t.TempDir()

	initialContent := `
url: "https://example.com/feeds/widgets"

settings:
  enabled: true
`

	configFile := filepath.Join(tempDir, "widgets.yml")
	err := os.WriteFile(configFile, []byte(initialContent), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	_, err = configCache.GetConfig("widgets")
	if err != nil {
		t.Fatal(err)
	}

	updatedContent := `
url: "https://example.com/feeds/gadgets"

settings:
  enabled: true
  max_entries: 50
`

	err = os.WriteFile(configFile, []byte(updatedContent), 0644)
	if err != nil {
		t.Fatal(err)
	}

	reloadedConfig, err := configCache.LoadConfig("widgets")
	if err != nil {
		t.Fatal(err)
	}

	if reloadedConfig.URL != "https://example.com/feeds/gadgets" {
		t.Errorf("Expected updated URL 'https://example.com/feeds/gadgets', got '%s'", reloadedConfig.URL)
	}
	if reloadedConfig.Settings.MaxEntries != 50 {
		t.Errorf("Expected updated max_entries 50, got %d", reloadedConfig.Settings.MaxEntries)
	}

	_, err = configCache.LoadConfig("nonexistent")
	if err == nil {
		t.Error("Expected error for non-existent config")
	}

	invalidContent := `invalid yaml content`
	err = os.WriteFile(configFile, []byte(invalidContent), 0644)
	if err != nil {
		t.Fatal(err)
	}

	_, err = configCache.LoadConfig("widgets")
	if err == nil {
		t.Error("Expected error for invalid config file")
	}
}

func TestConfigCacheGetEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()

	configs := []struct {
		filename string
		content  string
	}{
		{
			"widgets.yml",
			`
url: "https://example.com/feeds/widgets"
settings:
  enabled: true
`,
		},
		{
			"gadgets.yml",
			`
url: "https://example.com/feeds/gadgets"
settings:
  enabled: false
`,
		},
	}

	for _, config := range configs {
		err := os.WriteFile(filepath.Join(tempDir, config.filename), []byte(config.content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}

	configCache := NewConfigCache(tempDir)
	err := configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	allConfigs := configCache.GetConfigs()
	if len(allConfigs) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(allConfigs))
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabled))
	}
	if _, ok := enabled["widgets"]; !ok {
		t.Error("Expected 'widgets' to be the enabled config")
	}

	// Verify it's a copy (modifying returned map shouldn't affect cache)
	delete(allConfigs, "widgets")
	if configCache.GetConfigCount() != 2 {
		t.Error("Modifying returned configs map affected the cache")
	}
}

func TestConfigCacheValidateConfig(t *testing.T) {
	configCache := NewConfigCache("")

	err := configCache.validateConfig(nil)
	if err == nil {
		t.Error("Expected error for nil feedConfig, got none")
	}

	feedConfig := &Config{
		Name: "",
		URL:  "https://example.com/feeds/widgets",
	}
	err = configCache.validateConfig(feedConfig)
	if err == nil {
		t.Error("Expected error for empty feed name, got none")
	}

	feedConfig.Name = "widgets"
	feedConfig.URL = ""
	err = configCache.validateConfig(feedConfig)
	if err == nil {
		t.Error("Expected error for empty URL, got none")
	}

	feedConfig.URL = "https://example.com/feeds/widgets"
	feedConfig.Settings.RefreshInterval = -1
	err = configCache.validateConfig(feedConfig)
	if err == nil {
		t.Error("Expected error for negative refresh interval, got none")
	}

	feedConfig.Settings.RefreshInterval = 3600
	feedConfig.Settings.MaxEntries = -1
	err = configCache.validateConfig(feedConfig)
	if err == nil {
		t.Error("Expected error for negative max entries, got none")
	}

	feedConfig.Settings.MaxEntries = 100
	feedConfig.Settings.Timeout = -1
	err = configCache.validateConfig(feedConfig)
	if err == nil {
		t.Error("Expected error for negative timeout, got none")
	}

	feedConfig.Settings.Timeout = 30
	err = configCache.validateConfig(feedConfig)
	if err != nil {
		t.Errorf("Expected no error for valid feedConfig, got: %v", err)
	}
}

func TestConfigCacheGetConfigNotFound(t *testing.T) {
	tempDir := t.TempDir()

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	_, err := configCache.GetConfig("any-feed")
	if err == nil {
		t.Error("Expected error for feed name in empty cache, got none")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected error message to contain 'not found', got: %v", err)
	}
}
