package cli

import (
	"github.com/mrlokans/wp2presta/internal/config"
	"github.com/mrlokans/wp2presta/internal/images"
	"github.com/mrlokans/wp2presta/internal/migrate"
	"github.com/mrlokans/wp2presta/internal/prestashop"
	"github.com/mrlokans/wp2presta/internal/routing"
	"github.com/mrlokans/wp2presta/internal/transform"
	"github.com/mrlokans/wp2presta/internal/wordpress"
)

// pipeline bundles everything a migration run needs.
type pipeline struct {
	wp       *wordpress.Client
	ps       *prestashop.Client
	migrator *migrate.Migrator
}

// buildPipeline wires clients and the migrator from configuration. dryRun and
// workers override the config when set (workers=0 keeps the configured value).
func buildPipeline(cfg *config.Config, dryRun bool, workers int) *pipeline {
	wp := wordpress.NewClient(cfg.WordPress.APIBase(), cfg.WordPress.Username, cfg.WordPress.AppPassword)
	ps := prestashop.NewClient(cfg.PrestaShop.URL, cfg.PrestaShop.APIKey, cfg.PrestaShop.DefaultLangID)

	if workers == 0 {
		workers = cfg.Migration.Workers
	}
	opts := migrate.Options{
		DryRun:        dryRun || cfg.Migration.DryRun,
		Workers:       workers,
		MigrateImages: cfg.Migration.MigrateImages,
		RequireImages: cfg.Migration.RequireImages,
		CMSCategoryID: cfg.PrestaShop.CMSCategoryID,
		LanguageID:    cfg.PrestaShop.DefaultLangID,
	}

	migrator := migrate.New(
		wp,
		transform.New(cfg.WordPress.URL),
		images.NewResolver(wp, ps),
		migrate.NewMatcher(ps),
		ps,
		routing.New(cfg.Mapping),
		opts,
	)
	return &pipeline{wp: wp, ps: ps, migrator: migrator}
}
