package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// API kinds understood by the panel client.
const (
	APIKindUAPI = "uapi"
	APIKindWHM  = "whm"
)

// Filter modes select the predicate used by every view.
const (
	FilterSubstring = "substring"
	FilterRegex     = "regex"
	FilterJQ        = "jq"
)

var (
	// ErrInvalidAPIKind is returned when api_kind is neither uapi nor whm.
	ErrInvalidAPIKind = errors.New("api_kind must be \"uapi\" or \"whm\"")
	// ErrInvalidFilterMode is returned for an unknown filter_mode or a jq
	// mode without a jq_filter expression.
	ErrInvalidFilterMode = errors.New("invalid filter mode")
)

// TokenEnv overrides the token from the config file when set.
const TokenEnv = "PANELVIEW_TOKEN"

// Config is the panelview configuration.
type Config struct {
	APIURL             string
	APIKind            string
	Username           string
	Token              string
	InsecureSkipVerify bool

	LogLevel string
	LogFile  string

	DefaultListing string
	PageSize       int
	PollSeconds    int
	FilterMode     string
	JQFilter       string

	SourceFile     string
	HitLog         string
	HitLogMaxLines int
	Listen         string

	Listings []Listing
}

// Listing describes a custom panel listing declared with [[listing]].
type Listing struct {
	Name     string            `toml:"name"`
	Title    string            `toml:"title"`
	API      string            `toml:"api"`
	Module   string            `toml:"module"`
	Function string            `toml:"function"`
	DataPath string            `toml:"data_path"`
	Identity string            `toml:"identity"`
	Columns  []string          `toml:"columns"`
	Params   map[string]string `toml:"params"`
}

const (
	defaultConfigPath     = "~/.config/panelview/config.toml"
	defaultLogFile        = "~/.local/share/panelview/panelview.log"
	defaultAPIURL         = "https://127.0.0.1:2083"
	defaultListing        = "email"
	defaultPageSize       = 25
	defaultPollSeconds    = 30
	defaultHitLogMaxLines = 2000
	defaultListen         = "127.0.0.1:8765"
)

type rawConfig struct {
	APIURL             string    `toml:"api_url"`
	APIKind            string    `toml:"api_kind"`
	Username           string    `toml:"username"`
	Token              string    `toml:"token"`
	InsecureSkipVerify bool      `toml:"insecure_skip_verify"`
	LogLevel           string    `toml:"log_level"`
	LogFile            string    `toml:"log_file"`
	DefaultListing     string    `toml:"default_listing"`
	PageSize           int       `toml:"page_size"`
	PollSeconds        int       `toml:"poll_seconds"`
	FilterMode         string    `toml:"filter_mode"`
	JQFilter           string    `toml:"jq_filter"`
	SourceFile         string    `toml:"source_file"`
	HitLog             string    `toml:"hit_log"`
	HitLogMaxLines     int       `toml:"hit_log_max_lines"`
	Listen             string    `toml:"listen"`
	Listings           []Listing `toml:"listing"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		APIKind:        APIKindUAPI,
		LogLevel:       "info",
		DefaultListing: defaultListing,
		PageSize:       defaultPageSize,
		PollSeconds:    defaultPollSeconds,
		FilterMode:     FilterSubstring,
		HitLogMaxLines: defaultHitLogMaxLines,
		Listen:         defaultListen,
	}
}

// Load locates and parses the panelview config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIURL = orDefault(raw.APIURL, defaultAPIURL)
	cfg.APIKind = strings.ToLower(orDefault(raw.APIKind, APIKindUAPI))
	cfg.Username = strings.TrimSpace(raw.Username)
	cfg.Token = strings.TrimSpace(raw.Token)
	cfg.InsecureSkipVerify = raw.InsecureSkipVerify
	cfg.LogLevel = orDefault(raw.LogLevel, "info")
	cfg.DefaultListing = orDefault(raw.DefaultListing, defaultListing)
	cfg.FilterMode = strings.ToLower(orDefault(raw.FilterMode, FilterSubstring))
	cfg.JQFilter = strings.TrimSpace(raw.JQFilter)
	cfg.Listen = orDefault(raw.Listen, defaultListen)

	if raw.PageSize > 0 || raw.PageSize == -1 {
		cfg.PageSize = raw.PageSize
	}
	if raw.PollSeconds > 0 {
		cfg.PollSeconds = raw.PollSeconds
	}
	if raw.HitLogMaxLines != 0 {
		cfg.HitLogMaxLines = raw.HitLogMaxLines
	}

	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}
	if src := strings.TrimSpace(raw.SourceFile); src != "" {
		cfg.SourceFile = mustExpand(src)
	}
	if hits := strings.TrimSpace(raw.HitLog); hits != "" {
		cfg.HitLog = mustExpand(hits)
	}

	for _, l := range raw.Listings {
		l.Name = strings.TrimSpace(l.Name)
		l.API = strings.ToLower(strings.TrimSpace(l.API))
		l.Module = strings.TrimSpace(l.Module)
		l.Function = strings.TrimSpace(l.Function)
		l.Identity = strings.TrimSpace(l.Identity)
		cfg.Listings = append(cfg.Listings, l)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration values that cannot work.
func (c Config) Validate() error {
	switch c.APIKind {
	case APIKindUAPI, APIKindWHM:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidAPIKind, c.APIKind)
	}
	switch c.FilterMode {
	case FilterSubstring, FilterRegex:
	case FilterJQ:
		if c.JQFilter == "" {
			return fmt.Errorf("%w: filter_mode \"jq\" requires jq_filter", ErrInvalidFilterMode)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFilterMode, c.FilterMode)
	}
	for i, l := range c.Listings {
		if l.Name == "" {
			return fmt.Errorf("listing %d: name is required", i+1)
		}
		if l.Function == "" {
			return fmt.Errorf("listing %q: function is required", l.Name)
		}
		if l.API != "" && l.API != APIKindUAPI && l.API != APIKindWHM {
			return fmt.Errorf("listing %q: %w", l.Name, ErrInvalidAPIKind)
		}
		if (l.API == APIKindUAPI || (l.API == "" && c.APIKind == APIKindUAPI)) && l.Module == "" {
			return fmt.Errorf("listing %q: module is required for uapi", l.Name)
		}
	}
	return nil
}

// DefaultLogPath returns the log file used by the TUI when log_file is unset.
func DefaultLogPath() string {
	return mustExpand(defaultLogFile)
}

func applyEnv(cfg *Config) {
	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		cfg.Token = token
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
