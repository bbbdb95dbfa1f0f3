package preview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wp2presta/internal/config"
	"github.com/mrlokans/wp2presta/internal/entities"
	"github.com/mrlokans/wp2presta/internal/routing"
	"github.com/mrlokans/wp2presta/internal/transform"
)

const siteURL = "https://blog.example.com"

func buildReport(t *testing.T, pages []entities.Page, mapping config.Mapping) *Report {
	t.Helper()
	transformer := transform.New(siteURL)
	router := routing.New(mapping)
	return Build(siteURL, pages, transformer, router, 1, 1)
}

func TestBuildClassifiesPages(t *testing.T) {
	pages := []entities.Page{
		{
			ID:      1,
			Title:   "About &amp; Contact",
			Content: `<p><img src="https://blog.example.com/a.jpg"><img src="https://blog.example.com/b.jpg"></p>`,
			Slug:    "about",
		},
		{
			ID:    2,
			Title: "Draft",
			Slug:  "draft-notes",
		},
		{
			ID:    3,
			Title: "",
			Slug:  "Not Safe!",
		},
	}

	mapping := config.Mapping{
		Default: "migrate",
		Rules: []config.MappingRule{
			{Name: "drafts", Target: "skip", Patterns: []string{"draft-*"}},
		},
	}

	report := buildReport(t, pages, mapping)
	require.Len(t, report.Entries, 3)

	assert.Equal(t, 1, report.Migrating)
	assert.Equal(t, 1, report.Skipping)
	assert.Equal(t, 1, report.Failing)
	assert.Equal(t, 2, report.ImageCount)

	migrated := report.Entries[0]
	assert.Equal(t, "migrate", migrated.Action)
	assert.Equal(t, "About & Contact", migrated.Title)
	assert.Equal(t, "about", migrated.Slug)
	assert.Len(t, migrated.Images, 2)

	skipped := report.Entries[1]
	assert.Equal(t, "skip", skipped.Action)
	assert.Equal(t, "drafts", skipped.Rule)
	assert.Empty(t, skipped.Slug)

	failing := report.Entries[2]
	assert.Equal(t, "error", failing.Action)
	assert.NotEmpty(t, failing.Err)
}

func TestBuildCountsDistinctImagesAcrossPages(t *testing.T) {
	pages := []entities.Page{
		{ID: 1, Title: "One", Content: `<img src="https://blog.example.com/shared.jpg">`, Slug: "one"},
		{ID: 2, Title: "Two", Content: `<img src="https://blog.example.com/shared.jpg">`, Slug: "two"},
	}

	report := buildReport(t, pages, config.Mapping{Default: "migrate"})
	assert.Equal(t, 1, report.ImageCount)
}

func TestWriteHTML(t *testing.T) {
	pages := []entities.Page{
		{ID: 1, Title: "About", Content: "<p>hi</p>", Slug: "about"},
	}

	report := buildReport(t, pages, config.Mapping{Default: "migrate"})

	var buf bytes.Buffer
	require.NoError(t, report.WriteHTML(&buf))

	html := buf.String()
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, siteURL)
	assert.Contains(t, html, "about")
	assert.Contains(t, html, "1 to migrate")
}
