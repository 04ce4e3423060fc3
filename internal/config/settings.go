package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/handiism/album-downloader/internal/model"
)

// DefaultFileName is read when no configuration file is named explicitly.
const DefaultFileName = "album-dl.yaml"

// EnvPrefix prefixes every environment variable that overrides the file.
const EnvPrefix = "ALBUM_DL_"

// DefaultConcurrency is the number of tracks downloaded per wave.
const DefaultConcurrency = 5

// ErrInvalidConcurrency is returned when download.concurrency is not positive.
var ErrInvalidConcurrency = errors.New("concurrency must be a positive integer")

// Settings holds all configuration options.
type Settings struct {
	Log      Log      `yaml:"log"`
	Download Download `yaml:"download"`
	Cover    Cover    `yaml:"cover"`
	Tags     Tags     `yaml:"tags"`
	Playlist Playlist `yaml:"playlist"`
	Report   Report   `yaml:"report"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	s := &Settings{
		Cover: Cover{
			Save:         true,
			ConvertToJPG: true,
		},
		Playlist: Playlist{
			Extended: true,
		},
		Download: Download{
			Concurrency: DefaultConcurrency,
		},
	}
	s.setDefaults()

	return s
}

func (s *Settings) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Dict("log", s.Log.ToDict()).
		Dict("download", s.Download.ToDict()).
		Dict("cover", s.Cover.ToDict()).
		Dict("tags", s.Tags.ToDict()).
		Dict("playlist", s.Playlist.ToDict()).
		Dict("report", s.Report.ToDict())
}

func (s *Settings) setDefaults() {
	s.Log.setDefaults()
	s.Download.setDefaults()
	s.Cover.setDefaults()
	s.Playlist.setDefaults()
}

// Validate checks every section. It is called by Load and must be called
// again after command line flags are applied.
func (s *Settings) Validate() error {
	if err := s.Log.validate(); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}

	if err := s.Download.validate(); err != nil {
		return fmt.Errorf("download config validation failed: %w", err)
	}

	if err := s.Cover.validate(); err != nil {
		return fmt.Errorf("cover config validation failed: %w", err)
	}

	if err := s.Playlist.validate(); err != nil {
		return fmt.Errorf("playlist config validation failed: %w", err)
	}

	return nil
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		DownloadsPath:    s.Download.Path,
		CoverArtFileName: s.Cover.FileName,
		PlaylistFormat:   model.ParsePlaylistFormat(s.Playlist.Format),
	}
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Log) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("level", c.Level).
		Str("format", c.Format)
}

func (c *Log) setDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}

	if c.Format == "" {
		c.Format = "auto"
	}
}

func (c *Log) validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Level) {
		return fmt.Errorf("level must be one of: debug, info, warn, error, got: %s", c.Level)
	}

	if !slices.Contains([]string{"json", "pretty", "auto"}, c.Format) {
		return fmt.Errorf("format must be one of: json, pretty, auto, got: %s", c.Format)
	}

	return nil
}

type Download struct {
	// Path is the base directory. Albums land in <path>/<artist>/<album>.
	Path        string   `yaml:"path"`
	Concurrency int      `yaml:"concurrency"`
	Timeout     Duration `yaml:"timeout"`
	UserAgent   string   `yaml:"user_agent"`
	Proxy       Proxy    `yaml:"proxy"`
}

// Proxy is an optional SOCKS5 proxy for every request. Host and Port must
// both be set to enable it.
type Proxy struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Enabled reports whether a proxy is configured.
func (c *Proxy) Enabled() bool {
	return len(c.Host) > 0 && c.Port > 0
}

func (c *Proxy) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("host", c.Host).
		Int("port", c.Port).
		Str("username", c.Username).
		Bool("password_set", len(c.Password) > 0)
}

func (c *Proxy) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("proxy port must be between 0 and 65535, got: %d", c.Port)
	}

	if len(c.Host) > 0 && c.Port == 0 {
		return errors.New("proxy port is required when proxy host is set")
	}

	return nil
}

func (c *Download) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("path", c.Path).
		Int("concurrency", c.Concurrency).
		Str("timeout", c.Timeout.String()).
		Str("user_agent", c.UserAgent).
		Dict("proxy", c.Proxy.ToDict())
}

func (c *Download) setDefaults() {
	if c.Path == "" {
		homeDir, err := os.UserHomeDir()
		c.Path = filepath.Join(lo.Ternary(err == nil, homeDir, "."), "Music")
	}
}

func (c *Download) validate() error {
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w, got: %d", ErrInvalidConcurrency, c.Concurrency)
	}

	if c.Timeout.Duration < 0 {
		return errors.New("timeout must not be negative")
	}

	if err := c.Proxy.validate(); err != nil {
		return err
	}

	return nil
}

type Cover struct {
	Save     bool   `yaml:"save"`
	FileName string `yaml:"file_name"`

	// MaxSize bounds both cover dimensions in pixels. Zero keeps the original.
	MaxSize      int  `yaml:"max_size"`
	ConvertToJPG bool `yaml:"convert_to_jpg"`
}

func (c *Cover) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Bool("save", c.Save).
		Str("file_name", c.FileName).
		Int("max_size", c.MaxSize).
		Bool("convert_to_jpg", c.ConvertToJPG)
}

func (c *Cover) setDefaults() {
	if c.FileName == "" {
		c.FileName = "cover"
	}
}

func (c *Cover) validate() error {
	if c.MaxSize < 0 {
		return errors.New("max_size must not be negative")
	}

	return nil
}

type Tags struct {
	Enabled    bool `yaml:"enabled"`
	EmbedCover bool `yaml:"embed_cover"`
}

func (c *Tags) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Bool("enabled", c.Enabled).
		Bool("embed_cover", c.EmbedCover)
}

type Playlist struct {
	Enabled  bool   `yaml:"enabled"`
	Format   string `yaml:"format"`
	Extended bool   `yaml:"extended"`
}

func (c *Playlist) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Bool("enabled", c.Enabled).
		Str("format", c.Format).
		Bool("extended", c.Extended)
}

func (c *Playlist) setDefaults() {
	if c.Format == "" {
		c.Format = "m3u"
	}
}

func (c *Playlist) validate() error {
	if !slices.Contains([]string{"m3u", "pls", "wpl", "zpl"}, c.Format) {
		return fmt.Errorf("format must be one of: m3u, pls, wpl, zpl, got: %s", c.Format)
	}

	return nil
}

type Report struct {
	// Path of the JSON report. Empty disables it.
	Path string `yaml:"path"`
}

func (c *Report) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("path", c.Path)
}

type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("failed to parse duration: %v", err)
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("failed to parse duration: %v", err)
	}

	d.Duration = parsed

	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Load reads settings from a YAML file and applies ALBUM_DL_* environment
// overrides.
//
// An empty filename means DefaultFileName, which may be absent; in that
// case defaults are used. A named file must exist.
func Load(filename string) (*Settings, error) {
	name := lo.Ternary(len(filename) > 0, filename, DefaultFileName)

	settings := DefaultSettings()

	data, err := os.ReadFile(name)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", name, err)
		}
	case errors.Is(err, os.ErrNotExist) && filename == "":
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", name, err)
	}

	if err := settings.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	settings.setDefaults()

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	str("LOG_LEVEL", &s.Log.Level)
	str("LOG_FORMAT", &s.Log.Format)
	str("PATH", &s.Download.Path)
	str("USER_AGENT", &s.Download.UserAgent)
	str("REPORT", &s.Report.Path)
	str("PROXY_HOST", &s.Download.Proxy.Host)
	str("PROXY_USERNAME", &s.Download.Proxy.Username)
	str("PROXY_PASSWORD", &s.Download.Proxy.Password)

	if v, ok := lookup(EnvPrefix + "PROXY_PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPROXY_PORT: %w", EnvPrefix, err)
		}
		s.Download.Proxy.Port = n
	}

	if v, ok := lookup(EnvPrefix + "CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sCONCURRENCY: %w", EnvPrefix, err)
		}
		s.Download.Concurrency = n
	}

	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		s.Download.Timeout.Duration = d
	}

	return nil
}

// Save writes settings to a YAML file.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
