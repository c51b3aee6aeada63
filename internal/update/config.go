package update

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	StorePath            string `yaml:"store_path"`
	ExportDir            string `yaml:"export_dir"`
	TickIntervalSeconds  int    `yaml:"tick_interval_seconds"`
	DesktopNotifications bool   `yaml:"desktop_notifications"`
	NotificationConsent  string `yaml:"notification_consent"`
}

func DefaultConfig() Config {
	dir := defaultDataDir()
	return Config{
		StorePath:            filepath.Join(dir, "tasks.db"),
		ExportDir:            dir,
		TickIntervalSeconds:  30,
		DesktopNotifications: true,
	}
}

func DefaultConfigPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".remindd"
	}
	return filepath.Join(base, "remindd")
}

// LoadConfig reads the YAML config at path, falling back to defaults
// when the file does not exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

func (c Config) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	payload, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func ConfigFromEnv(base Config) Config {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("REMINDD_STORE_PATH")); v != "" {
		cfg.StorePath = v
	}
	if v := strings.TrimSpace(os.Getenv("REMINDD_EXPORT_DIR")); v != "" {
		cfg.ExportDir = v
	}
	if v, ok := getEnvInt("REMINDD_TICK_INTERVAL_SECONDS"); ok && v > 0 {
		cfg.TickIntervalSeconds = v
	}
	if v, ok := getEnvBool("REMINDD_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("REMINDD_NOTIFICATION_CONSENT"))); v != "" {
		cfg.NotificationConsent = v
	}
	return cfg
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
