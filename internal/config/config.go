package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type (
	Config struct {
		WordPress  WordPress
		PrestaShop PrestaShop
		Migration  Migration
		Mapping    Mapping
	}

	WordPress struct {
		URL         string
		Username    string
		AppPassword string
	}

	PrestaShop struct {
		URL           string
		APIKey        string
		DefaultLangID int
		CMSCategoryID int
	}

	Migration struct {
		DryRun        bool
		LogFile       string
		HistoryDBPath string
		MigrateImages bool // discover, download and upload in-content images
		RequireImages bool // treat a single unresolved image as a page failure
		Workers       int  // concurrent pages; 1 keeps report in source order
	}

	// Mapping routes pages by slug to a CMS category or skips them.
	Mapping struct {
		Default string // "migrate" or "skip" when no rule matches
		Rules   []MappingRule
	}

	MappingRule struct {
		Name          string   `mapstructure:"name"`
		Target        string   `mapstructure:"target"` // "cms" or "skip"
		Slugs         []string `mapstructure:"slugs"`
		Patterns      []string `mapstructure:"patterns"`
		CMSCategoryID int      `mapstructure:"cms_category_id"`
	}
)

// APIBase returns the WordPress REST API root for the configured site.
func (w WordPress) APIBase() string {
	return strings.TrimRight(w.URL, "/") + "/wp-json/wp/v2"
}

// HasAuth reports whether application-password credentials were provided.
func (w WordPress) HasAuth() bool {
	return w.Username != "" && w.AppPassword != ""
}

// APIBase returns the PrestaShop Webservice root for the configured shop.
func (p PrestaShop) APIBase() string {
	return strings.TrimRight(p.URL, "/") + "/api"
}

// Load reads the YAML configuration file at path, applying env overrides
// (WP2PRESTA_WORDPRESS_URL and friends) and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("wp2presta")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("prestashop.default_lang_id", 1)
	v.SetDefault("prestashop.cms_category_id", 1)
	v.SetDefault("migration.dry_run", false)
	v.SetDefault("migration.log_file", DefaultLogFile)
	v.SetDefault("migration.history_db", DefaultHistoryDBPath)
	v.SetDefault("migration.migrate_images", true)
	v.SetDefault("migration.require_images", false)
	v.SetDefault("migration.workers", DefaultWorkers)
	v.SetDefault("mapping.default", "migrate")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{
		WordPress: WordPress{
			URL:         v.GetString("wordpress.url"),
			Username:    v.GetString("wordpress.username"),
			AppPassword: v.GetString("wordpress.app_password"),
		},
		PrestaShop: PrestaShop{
			URL:           v.GetString("prestashop.url"),
			APIKey:        v.GetString("prestashop.api_key"),
			DefaultLangID: v.GetInt("prestashop.default_lang_id"),
			CMSCategoryID: v.GetInt("prestashop.cms_category_id"),
		},
		Migration: Migration{
			DryRun:        v.GetBool("migration.dry_run"),
			LogFile:       v.GetString("migration.log_file"),
			HistoryDBPath: v.GetString("migration.history_db"),
			MigrateImages: v.GetBool("migration.migrate_images"),
			RequireImages: v.GetBool("migration.require_images"),
			Workers:       v.GetInt("migration.workers"),
		},
		Mapping: Mapping{
			Default: v.GetString("mapping.default"),
		},
	}

	if err := v.UnmarshalKey("mapping.rules", &cfg.Mapping.Rules); err != nil {
		return nil, fmt.Errorf("parse mapping rules: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.WordPress.URL == "" {
		return fmt.Errorf("wordpress.url is required")
	}
	if c.PrestaShop.URL == "" {
		return fmt.Errorf("prestashop.url is required")
	}
	if c.PrestaShop.APIKey == "" {
		return fmt.Errorf("prestashop.api_key is required")
	}
	if c.Migration.Workers < 1 {
		return fmt.Errorf("migration.workers must be at least 1, got %d", c.Migration.Workers)
	}
	switch c.Mapping.Default {
	case "migrate", "skip":
	default:
		return fmt.Errorf("mapping.default must be \"migrate\" or \"skip\", got %q", c.Mapping.Default)
	}
	for _, rule := range c.Mapping.Rules {
		switch rule.Target {
		case "cms", "skip":
		default:
			return fmt.Errorf("mapping rule %q: target must be \"cms\" or \"skip\", got %q", rule.Name, rule.Target)
		}
	}
	return nil
}
