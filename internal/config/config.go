package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the gitguard configuration.
type Config struct {
	Provider       string        `json:"provider" mapstructure:"provider"`
	Model          string        `json:"model,omitempty" mapstructure:"model"`
	Format         string        `json:"format" mapstructure:"format"`
	MaxDiffBytes   int           `json:"maxDiffBytes" mapstructure:"maxDiffBytes"`
	Exclude        []string      `json:"exclude" mapstructure:"exclude"`
	RedactPaths    []string      `json:"redactPaths" mapstructure:"redactPaths"`
	SkipSecretScan bool          `json:"skipSecretScan" mapstructure:"skipSecretScan"`
	LogLevel       string        `json:"logLevel" mapstructure:"logLevel"`
	AuditLog       string        `json:"auditLog,omitempty" mapstructure:"auditLog"`
	Secrets        SecretsConfig `json:"secrets" mapstructure:"secrets"`
	Cache          CacheConfig   `json:"cache" mapstructure:"cache"`
}

// SecretsConfig controls the secret scanner.
type SecretsConfig struct {
	RulesFile       string `json:"rulesFile,omitempty" mapstructure:"rulesFile"`
	ExtendedRules   bool   `json:"extendedRules" mapstructure:"extendedRules"`
	MaxMatchDisplay int    `json:"maxMatchDisplay" mapstructure:"maxMatchDisplay"`
	Workers         int    `json:"workers" mapstructure:"workers"`
}

// CacheConfig controls the generated-message cache.
type CacheConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Dir        string `json:"dir,omitempty" mapstructure:"dir"`
	TTLSeconds int    `json:"ttlSeconds" mapstructure:"ttlSeconds"`
}

var (
	providers = []string{"anthropic", "openai", "gemini", "google", "ollama", "lmstudio"}
	formats   = []string{"text", "json", "markdown", "sarif"}
	levels    = []string{"debug", "info", "warn", "error"}
)

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:     "anthropic",
		Format:       "text",
		MaxDiffBytes: 100000,
		Exclude:      []string{"vendor/**", "**/*.lock", "**/go.sum", "**/dist/**"},
		RedactPaths:  []string{"**/.env", "**/.env.*", "**/*secrets*"},
		LogLevel:     "warn",
		Secrets: SecretsConfig{
			MaxMatchDisplay: 40,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
	}
}

// keys maps every settable key to its environment variable.
var keys = map[string]string{
	"provider":                "GITGUARD_PROVIDER",
	"model":                   "GITGUARD_MODEL",
	"format":                  "GITGUARD_FORMAT",
	"maxDiffBytes":            "GITGUARD_MAX_DIFF_BYTES",
	"exclude":                 "GITGUARD_EXCLUDE",
	"redactPaths":             "GITGUARD_REDACT_PATHS",
	"skipSecretScan":          "GITGUARD_SKIP_SECRET_SCAN",
	"logLevel":                "GITGUARD_LOG_LEVEL",
	"auditLog":                "GITGUARD_AUDIT_LOG",
	"secrets.rulesFile":       "GITGUARD_SECRETS_RULES_FILE",
	"secrets.extendedRules":   "GITGUARD_SECRETS_EXTENDED_RULES",
	"secrets.maxMatchDisplay": "GITGUARD_SECRETS_MAX_MATCH_DISPLAY",
	"secrets.workers":         "GITGUARD_SECRETS_WORKERS",
	"cache.enabled":           "GITGUARD_CACHE_ENABLED",
	"cache.dir":               "GITGUARD_CACHE_DIR",
	"cache.ttlSeconds":        "GITGUARD_CACHE_TTL_SECONDS",
}

// Keys returns the settable configuration keys in sorted order.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ConfigDir returns the platform-appropriate config directory for gitguard.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gitguard"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "gitguard"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "gitguard"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "gitguard"), nil
	default:
		return filepath.Join(home, ".config", "gitguard"), nil
	}
}

// ConfigPath returns the full path to the config file. GITGUARD_CONFIG
// overrides the platform location.
func ConfigPath() (string, error) {
	if p := os.Getenv("GITGUARD_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags; empty values are ignored.
func Load(overrides map[string]string) (Config, error) {
	v, err := newViper()
	if err != nil {
		return Config{}, err
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if _, ok := keys[key]; !ok {
			return Config{}, fmt.Errorf("unknown config key: %s", key)
		}
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v, Default())

	for key, env := range keys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return v, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("provider", d.Provider)
	v.SetDefault("model", d.Model)
	v.SetDefault("format", d.Format)
	v.SetDefault("maxDiffBytes", d.MaxDiffBytes)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("redactPaths", d.RedactPaths)
	v.SetDefault("skipSecretScan", d.SkipSecretScan)
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("auditLog", d.AuditLog)
	v.SetDefault("secrets.rulesFile", d.Secrets.RulesFile)
	v.SetDefault("secrets.extendedRules", d.Secrets.ExtendedRules)
	v.SetDefault("secrets.maxMatchDisplay", d.Secrets.MaxMatchDisplay)
	v.SetDefault("secrets.workers", d.Secrets.Workers)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttlSeconds", d.Cache.TTLSeconds)
}

// LoadFile loads the config file over the built-in defaults, without
// environment or flag overrides. A missing file yields Default().
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// Init writes the default config file and returns its path. An existing file
// is only replaced when force is set.
func Init(force bool) (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}
	return path, Save(Default())
}

// Set updates a single key in the config file.
func Set(key, value string) error {
	cfg, err := LoadFile()
	if err != nil {
		return err
	}
	if err := SetField(&cfg, key, value); err != nil {
		return err
	}
	return Save(cfg)
}

// SetField sets a single config field by key name. Returns error if key is
// unknown or the value has the wrong type.
func SetField(cfg *Config, key, value string) error {
	var err error
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "maxDiffBytes":
		err = setInt(&cfg.MaxDiffBytes, key, value)
	case "exclude":
		cfg.Exclude = splitList(value)
	case "redactPaths":
		cfg.RedactPaths = splitList(value)
	case "skipSecretScan":
		err = setBool(&cfg.SkipSecretScan, key, value)
	case "logLevel":
		cfg.LogLevel = value
	case "auditLog":
		cfg.AuditLog = value
	case "secrets.rulesFile":
		cfg.Secrets.RulesFile = value
	case "secrets.extendedRules":
		err = setBool(&cfg.Secrets.ExtendedRules, key, value)
	case "secrets.maxMatchDisplay":
		err = setInt(&cfg.Secrets.MaxMatchDisplay, key, value)
	case "secrets.workers":
		err = setInt(&cfg.Secrets.Workers, key, value)
	case "cache.enabled":
		err = setBool(&cfg.Cache.Enabled, key, value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		err = setInt(&cfg.Cache.TTLSeconds, key, value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks enumerated and numeric fields.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(providers, c.Provider) {
		errs = append(errs, fmt.Errorf("provider %q is not one of %s", c.Provider, strings.Join(providers, ", ")))
	}
	if !slices.Contains(formats, c.Format) {
		errs = append(errs, fmt.Errorf("format %q is not one of %s", c.Format, strings.Join(formats, ", ")))
	}
	if !slices.Contains(levels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("logLevel %q is not one of %s", c.LogLevel, strings.Join(levels, ", ")))
	}
	if c.Secrets.MaxMatchDisplay < 0 {
		errs = append(errs, errors.New("secrets.maxMatchDisplay must not be negative"))
	}
	if c.Secrets.Workers < 0 {
		errs = append(errs, errors.New("secrets.workers must not be negative"))
	}
	if c.Cache.TTLSeconds < 0 {
		errs = append(errs, errors.New("cache.ttlSeconds must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
