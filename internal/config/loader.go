package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// App names the config directory and the rc files inside it.
const App = "thumbmask"

// Loader finds, reads and writes the rc file.
type Loader struct {
	Version      string // "dev" also looks in the working directory
	OverridePath string
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Dir is the per-user config directory, honouring XDG_CONFIG_HOME.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, App)
}

// Candidates lists the rc file locations in lookup order.
func (l *Loader) Candidates() []string {
	var paths []string
	if l.OverridePath != "" {
		paths = append(paths, l.OverridePath)
	}
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			paths = append(paths, filepath.Join(wd, "."+App+"rc"))
		}
	}
	dir := Dir()
	return append(paths, filepath.Join(dir, "config.rc"), filepath.Join(dir, App+".rc"))
}

// GetConfigPath returns the first existing candidate, or "" when none do.
func (l *Loader) GetConfigPath() string {
	for _, p := range l.Candidates() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultSavePath is where Save writes when no config file exists yet.
func (l *Loader) DefaultSavePath() string {
	if l.OverridePath != "" {
		return l.OverridePath
	}
	return filepath.Join(Dir(), "config.rc")
}

// Load reads the active rc file, or returns defaults when there is none.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to the active config file, creating it if needed, and
// returns the path written.
func (l *Loader) Save(cfg *Config) (string, error) {
	path := l.GetConfigPath()
	if path == "" {
		path = l.DefaultSavePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(cfg.String()), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
