package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
wordpress:
  url: https://blog.example.com/
  username: admin
  app_password: "abcd efgh"

prestashop:
  url: https://shop.example.com
  api_key: SECRETKEY
  default_lang_id: 2
  cms_category_id: 3

migration:
  dry_run: true
  workers: 4
  migrate_images: false

mapping:
  default: skip
  rules:
    - name: legal
      target: cms
      slugs: [terms, privacy]
      cms_category_id: 5
    - name: drafts
      target: skip
      patterns: ["draft-*"]
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://blog.example.com/", cfg.WordPress.URL)
	assert.Equal(t, "https://blog.example.com/wp-json/wp/v2", cfg.WordPress.APIBase())
	assert.True(t, cfg.WordPress.HasAuth())

	assert.Equal(t, "https://shop.example.com/api", cfg.PrestaShop.APIBase())
	assert.Equal(t, "SECRETKEY", cfg.PrestaShop.APIKey)
	assert.Equal(t, 2, cfg.PrestaShop.DefaultLangID)
	assert.Equal(t, 3, cfg.PrestaShop.CMSCategoryID)

	assert.True(t, cfg.Migration.DryRun)
	assert.Equal(t, 4, cfg.Migration.Workers)
	assert.False(t, cfg.Migration.MigrateImages)
	assert.Equal(t, DefaultLogFile, cfg.Migration.LogFile)
	assert.Equal(t, DefaultHistoryDBPath, cfg.Migration.HistoryDBPath)

	assert.Equal(t, "skip", cfg.Mapping.Default)
	require.Len(t, cfg.Mapping.Rules, 2)
	assert.Equal(t, "legal", cfg.Mapping.Rules[0].Name)
	assert.Equal(t, []string{"terms", "privacy"}, cfg.Mapping.Rules[0].Slugs)
	assert.Equal(t, 5, cfg.Mapping.Rules[0].CMSCategoryID)
	assert.Equal(t, []string{"draft-*"}, cfg.Mapping.Rules[1].Patterns)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
wordpress:
  url: https://blog.example.com
prestashop:
  url: https://shop.example.com
  api_key: KEY
`))
	require.NoError(t, err)

	assert.False(t, cfg.WordPress.HasAuth())
	assert.Equal(t, 1, cfg.PrestaShop.DefaultLangID)
	assert.Equal(t, 1, cfg.PrestaShop.CMSCategoryID)
	assert.False(t, cfg.Migration.DryRun)
	assert.True(t, cfg.Migration.MigrateImages)
	assert.False(t, cfg.Migration.RequireImages)
	assert.Equal(t, DefaultWorkers, cfg.Migration.Workers)
	assert.Equal(t, "migrate", cfg.Mapping.Default)
	assert.Empty(t, cfg.Mapping.Rules)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing wordpress url",
			content: `
prestashop:
  url: https://shop.example.com
  api_key: KEY
`,
			wantErr: "wordpress.url is required",
		},
		{
			name: "missing api key",
			content: `
wordpress:
  url: https://blog.example.com
prestashop:
  url: https://shop.example.com
`,
			wantErr: "prestashop.api_key is required",
		},
		{
			name: "bad worker count",
			content: `
wordpress:
  url: https://blog.example.com
prestashop:
  url: https://shop.example.com
  api_key: KEY
migration:
  workers: 0
`,
			wantErr: "migration.workers",
		},
		{
			name: "bad mapping default",
			content: `
wordpress:
  url: https://blog.example.com
prestashop:
  url: https://shop.example.com
  api_key: KEY
mapping:
  default: archive
`,
			wantErr: "mapping.default",
		},
		{
			name: "bad rule target",
			content: `
wordpress:
  url: https://blog.example.com
prestashop:
  url: https://shop.example.com
  api_key: KEY
mapping:
  rules:
    - name: broken
      target: product
`,
			wantErr: `rule "broken"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
