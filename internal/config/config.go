package config

import (
	"fmt"
	"os"
	"time"

	"github.com/niuk/ao3-uploader/internal/uploader"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL   string `yaml:"base_url"`
	Headless  bool   `yaml:"headless"`
	KeepOpen  bool   `yaml:"keep_open"`
	Debug     bool   `yaml:"debug"`
	UserAgent string `yaml:"user_agent"`
	EnvFile   string `yaml:"env_file"`

	// Seconds.
	LoginTimeout   int `yaml:"login_timeout"`
	FormTimeout    int `yaml:"form_timeout"`
	ConfirmTimeout int `yaml:"confirm_timeout"`
	Pause          int `yaml:"pause"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
}

type Options struct {
	IgnoreConfig bool
	Debug        bool
	Headless     bool
	BaseURL      string
	EnvFile      string
	UserAgent    string
	Cookie       string
	CookieFile   string
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:        uploader.DefaultBaseURL,
		Headless:       false,
		KeepOpen:       true,
		Debug:          false,
		UserAgent:      "",
		EnvFile:        ".env",
		LoginTimeout:   15,
		FormTimeout:    15,
		ConfirmTimeout: 20,
		Pause:          3,
		Cookie:         "",
		CookieFile:     "",
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `ao3-uploader config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.Headless {
		c.Headless = true
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.EnvFile != "" {
		c.EnvFile = o.EnvFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
}

func normalizeDefaults(c *Config) {
	def := DefaultConfig()

	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.EnvFile == "" {
		c.EnvFile = def.EnvFile
	}
	if c.LoginTimeout <= 0 {
		c.LoginTimeout = def.LoginTimeout
	}
	if c.FormTimeout <= 0 {
		c.FormTimeout = def.FormTimeout
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = def.ConfirmTimeout
	}
	if c.Pause < 0 {
		c.Pause = def.Pause
	}
}

// Timeouts converts the configured seconds into uploader waits.
func (c *Config) Timeouts() uploader.Timeouts {
	t := uploader.DefaultTimeouts()
	t.Login = time.Duration(c.LoginTimeout) * time.Second
	t.Form = time.Duration(c.FormTimeout) * time.Second
	t.Confirm = time.Duration(c.ConfirmTimeout) * time.Second
	t.Pause = time.Duration(c.Pause) * time.Second
	return t
}

func (c *Config) Print() {
	fmt.Printf(" -base_url: %s\n", c.BaseURL)
	fmt.Printf(" -headless: %t\n", c.Headless)
	if !c.Headless {
		fmt.Printf(" -keep_open: %t\n", c.KeepOpen)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	fmt.Printf(" -env_file: %s\n", c.EnvFile)
	fmt.Printf(" -timeouts: login %ds, form %ds, confirm %ds\n", c.LoginTimeout, c.FormTimeout, c.ConfirmTimeout)
	fmt.Printf(" -pause: %ds\n", c.Pause)
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
}
