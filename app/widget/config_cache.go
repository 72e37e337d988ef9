package widget

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	defaultRefreshInterval = 3600
	defaultReposTimeout    = 15
	defaultStatsTimeout    = 10
	defaultMaxItems        = 6
	defaultTopLanguages    = 5
)

type ConfigCache struct {
	panelsDir string
	cache     map[string]*Config
	mu        sync.RWMutex
}

func NewConfigCache(panelsDir string) *ConfigCache {
	return &ConfigCache{
		panelsDir: panelsDir,
		cache:     make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.panelsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.panelsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		panelName := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(panelName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "panel", panelName, "kind", config.Kind, "enabled", config.Settings.Enabled, "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(panelName string) (*Config, error) {
	if panelName == "" || panelName != filepath.Base(panelName) || strings.HasPrefix(panelName, ".") {
		return nil, fmt.Errorf("invalid panel name: %q", panelName)
	}

	configFile := cc.getConfigFilePath(panelName)
	panelConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	panelConfig.Name = panelName

	if err := cc.validateConfig(panelConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[panelConfig.Name] = panelConfig

	return panelConfig, nil
}

func (cc *ConfigCache) GetConfig(panelName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	panelConfig, ok := cc.cache[panelName]
	if !ok {
		return nil, fmt.Errorf("panel config with name '%s' not found", panelName)
	}
	return panelConfig, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var panelConfig Config
	if err := yaml.Unmarshal(data, &panelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if panelConfig.Settings.RefreshInterval == 0 {
		panelConfig.Settings.RefreshInterval = defaultRefreshInterval
	}
	if panelConfig.Settings.Timeout == 0 {
		panelConfig.Settings.Timeout = defaultReposTimeout
		if panelConfig.Kind == KindStats {
			panelConfig.Settings.Timeout = defaultStatsTimeout
		}
	}
	if panelConfig.Settings.MaxItems == 0 {
		panelConfig.Settings.MaxItems = defaultMaxItems
	}
	if panelConfig.Settings.TopLanguages == 0 {
		panelConfig.Settings.TopLanguages = defaultTopLanguages
	}

	return &panelConfig, nil
}

// validateConfig leaves the username alone: the fetcher rejects it at fetch time so a
// bad identifier shows up as an error state on the panel.
func (cc *ConfigCache) validateConfig(panelConfig *Config) error {
	if panelConfig == nil {
		return fmt.Errorf("panelConfig is nil")
	}

	if panelConfig.Name == "" {
		return fmt.Errorf("panel name is required")
	}

	switch panelConfig.Kind {
	case KindRepos, KindStats:
	case "":
		return fmt.Errorf("panel kind is required")
	default:
		return fmt.Errorf("unknown panel kind: %s", panelConfig.Kind)
	}

	nonNegativeFields := map[string]int{
		"refresh interval": panelConfig.Settings.RefreshInterval,
		"timeout":          panelConfig.Settings.Timeout,
		"max items":        panelConfig.Settings.MaxItems,
		"top languages":    panelConfig.Settings.TopLanguages,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(panelName string) string {
	return filepath.Join(cc.panelsDir, panelName+".yml")
}
