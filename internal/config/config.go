// Package config loads portal and CLI settings from defaults, an optional
// YAML (or JSON/TOML) file and REPORTFORM_ prefixed environment variables,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-reportform/pkg/grammar"
	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/renderers/html"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/visibility"
)

// EnvPrefix namespaces environment overrides, e.g. REPORTFORM_GATEWAY_BASE_URL.
const EnvPrefix = "REPORTFORM"

// Session store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	Report     grammar.Config   `mapstructure:"report"`
	Appearance model.Appearance `mapstructure:"appearance"`
	Theme      ThemeConfig      `mapstructure:"theme"`
	Visibility VisibilityConfig `mapstructure:"visibility"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
}

// ThemeConfig selects the palette and an optional named variant.
type ThemeConfig struct {
	Palette  html.Palette                 `mapstructure:"palette"`
	Variant  string                       `mapstructure:"variant"`
	Variants map[string]map[string]string `mapstructure:"variants"`
}

// RuleConfig binds a visibility expression to a field name. Rules are a list
// rather than a map because configuration keys are case-insensitive.
type RuleConfig struct {
	Field string `mapstructure:"field"`
	When  string `mapstructure:"when"`
}

// VisibilityConfig overrides the built-in rules. An empty list keeps them.
type VisibilityConfig struct {
	Rules   []RuleConfig `mapstructure:"rules"`
	OnError string       `mapstructure:"on_error"`
}

// GatewayConfig points at the remote record service.
type GatewayConfig struct {
	BaseURL string            `mapstructure:"base_url"`
	Timeout time.Duration     `mapstructure:"timeout"`
	Headers map[string]string `mapstructure:"headers"`
}

// ServerConfig configures the HTTP portal.
type ServerConfig struct {
	Addr         string          `mapstructure:"addr"`
	SessionTTL   time.Duration   `mapstructure:"session_ttl"`
	SessionStore string          `mapstructure:"session_store"`
	OptionsTTL   time.Duration   `mapstructure:"options_ttl"`
	CookieSecure bool            `mapstructure:"cookie_secure"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds submissions per client address. It needs redis and
// is skipped when redis is unavailable.
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// RedisConfig is the redis connection used for sessions and rate limiting.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig selects the log level and encoding ("json" or "console").
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration. path may be empty, in which case ./config.yaml
// and ./config/config.yaml are tried and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading a file or the
// environment.
func Default() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode defaults: %w", err)
	}
	return &cfg, nil
}

// SetDefaults registers every known key so environment overrides apply even
// without a config file.
func SetDefaults(v *viper.Viper) {
	form := grammar.DefaultConfig()
	v.SetDefault("report.sections_and_fields", form.SectionsAndFields)
	v.SetDefault("report.section_titles", form.SectionTitles)
	v.SetDefault("report.section_icons", form.SectionIcons)
	v.SetDefault("report.privacy_fields", form.PrivacyFields)
	v.SetDefault("report.contact_fields", form.ContactFields)
	v.SetDefault("report.report_details_fields", form.ReportDetailsFields)
	v.SetDefault("report.incident_fields", form.IncidentFields)
	v.SetDefault("report.notice_content", form.NoticeContent)

	appearance := report.DefaultAppearance()
	v.SetDefault("appearance.width", appearance.Width)
	v.SetDefault("appearance.max_width", appearance.MaxWidth)
	v.SetDefault("appearance.header_title", appearance.HeaderTitle)
	v.SetDefault("appearance.header_subtitle", appearance.HeaderSubtitle)
	v.SetDefault("appearance.header_icon", appearance.HeaderIcon)
	v.SetDefault("appearance.security_notice", appearance.SecurityNotice)

	palette := html.DefaultPalette()
	v.SetDefault("theme.palette.header_bg", palette.HeaderBg)
	v.SetDefault("theme.palette.header_gradient_end", palette.HeaderGradientEnd)
	v.SetDefault("theme.palette.section_title", palette.SectionTitle)
	v.SetDefault("theme.palette.section_title_border", palette.SectionTitleBorder)
	v.SetDefault("theme.palette.button", palette.Button)
	v.SetDefault("theme.palette.button_hover", palette.ButtonHover)
	v.SetDefault("theme.variant", "")

	v.SetDefault("visibility.on_error", string(visibility.FailOpen))

	v.SetDefault("gateway.base_url", "")
	v.SetDefault("gateway.timeout", "15s")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session_ttl", "30m")
	v.SetDefault("server.session_store", StoreMemory)
	v.SetDefault("server.options_ttl", "5m")
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("server.rate_limit.enabled", false)
	v.SetDefault("server.rate_limit.limit", 10)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Server.SessionStore {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("config: server.session_store must be %q or %q, got %q", StoreMemory, StoreRedis, c.Server.SessionStore)
	}
	if c.Server.SessionTTL <= 0 {
		return errors.New("config: server.session_ttl must be positive")
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.Limit <= 0 || c.Server.RateLimit.Window <= 0) {
		return errors.New("config: server.rate_limit needs a positive limit and window")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format must be json or console, got %q", c.Log.Format)
	}
	for i, rule := range c.Visibility.Rules {
		if strings.TrimSpace(rule.Field) == "" {
			return fmt.Errorf("config: visibility.rules[%d] has no field", i)
		}
	}
	return nil
}

// Rules returns the configured visibility rules, or the built-in set when
// none are configured.
func (c *Config) Rules() visibility.Rules {
	if len(c.Visibility.Rules) == 0 {
		return visibility.DefaultRules()
	}
	rules := make(visibility.Rules, len(c.Visibility.Rules))
	for _, rule := range c.Visibility.Rules {
		rules[rule.Field] = rule.When
	}
	return rules
}

// ReportOptions translates the settings into controller options.
func (c *Config) ReportOptions() []report.Option {
	return []report.Option{
		report.WithAppearance(c.Appearance),
		report.WithRules(c.Rules()),
		report.WithPolicy(visibility.ParsePolicy(c.Visibility.OnError)),
	}
}

// ThemeConfig resolves the configured palette and variant.
func (c *Config) ThemeConfig() *theme.RendererConfig {
	return html.ThemeConfig(c.Theme.Palette, c.Theme.Variants, c.Theme.Variant)
}
