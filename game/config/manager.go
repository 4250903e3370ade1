package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/tile-path-game/game/engine"
	"github.com/wricardo/tile-path-game/game/service"
	"github.com/wricardo/tile-path-game/logger"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is the level preferred as default when present
const DefaultConfigName = "classic"

var levelExtensions = []string{".yaml", ".yml"}

// Manager handles level loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// Dir returns the directory levels are read from
func (m *Manager) Dir() string {
	return m.configDir
}

// LoadConfig loads a level by name, with or without extension
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	key := configKey(name)

	m.mu.RLock()
	if config, exists := m.configs[key]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[key]; exists {
		return config, nil
	}

	path, err := m.findFile(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}

	m.configs[key] = config
	logger.Debug("Loaded level", "name", key, "path", path)
	return config, nil
}

func (m *Manager) findFile(key string) (string, error) {
	for _, ext := range levelExtensions {
		path := filepath.Join(m.configDir, key+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
}

// ListConfigs returns every readable level in the config directory, sorted by file name
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() || !isLevelFile(entry.Name()) {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			logger.Warning("Skipping level", "file", entry.Name(), "error", err)
			continue
		}

		info := &service.ConfigInfo{
			Filename:         entry.Name(),
			ConfigID:         configKey(entry.Name()),
			Name:             config.Name,
			Description:      config.Description,
			Level:            config.Level,
			PoolSize:         len(config.Pool),
			GlobalValidation: config.GlobalValidation,
		}
		if board, err := engine.NewBoard(config); err == nil {
			info.BoardCells = len(board.Cells())
		}
		configs = append(configs, info)
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Filename < configs[j].Filename
	})
	return configs, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default level by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// RefreshCache drops every cached level and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig prefers classic, then the first readable level, then the built-in one
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		config = m.firstReadableConfig()
	}
	if config == nil {
		logger.Warning("No levels found, using built-in level", "dir", m.configDir)
		config = engine.DefaultGameConfig()
		if err := engine.ValidateGameConfig(config); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

func (m *Manager) firstReadableConfig() *engine.GameConfig {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() || !isLevelFile(entry.Name()) {
			continue
		}
		if config, err := m.LoadConfig(entry.Name()); err == nil {
			return config
		}
	}
	return nil
}

// SaveConfig validates a level and writes it as <name>.yaml
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := engine.MarshalGameConfig(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	key := configKey(name)
	if key == "" || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: bad level name %q", ErrInvalidConfig, name)
	}

	path := filepath.Join(m.configDir, key+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[key] = config
	m.mu.Unlock()

	logger.Info("Saved level", "name", key, "path", path)
	return nil
}

func configKey(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	for _, ext := range levelExtensions {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "." {
		return ""
	}
	return name
}

func isLevelFile(name string) bool {
	for _, ext := range levelExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
