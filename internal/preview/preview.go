// Package preview builds an offline pre-flight report: what a migration run
// would do, computed from source content alone. It never contacts PrestaShop.
package preview

import (
	"html/template"
	"io"
	"time"

	"github.com/mrlokans/wp2presta/internal/entities"
	"github.com/mrlokans/wp2presta/internal/routing"
	"github.com/mrlokans/wp2presta/internal/transform"
)

// Entry is one page's preview row.
type Entry struct {
	PageID          int
	Title           string
	SourceSlug      string
	Slug            string
	Action          string
	Rule            string
	MetaTitle       string
	MetaDescription string
	ContentLength   int
	Images          []string
	Err             string
}

type Report struct {
	GeneratedAt time.Time
	SiteURL     string
	Entries     []Entry
	Migrating   int
	Skipping    int
	Failing     int
	ImageCount  int
}

// Build transforms and routes every page without touching the destination.
func Build(siteURL string, pages []entities.Page, transformer *transform.Transformer, router *routing.Router, categoryID, langID int) *Report {
	report := &Report{GeneratedAt: time.Now(), SiteURL: siteURL}
	seenImages := make(map[string]bool)

	for _, page := range pages {
		entry := Entry{
			PageID:     page.ID,
			Title:      transform.DecodeEntities(page.Title),
			SourceSlug: page.Slug,
		}

		route := router.Route(page.Slug)
		if route.Action == routing.ActionSkip {
			entry.Action = "skip"
			entry.Rule = route.RuleName
			report.Skipping++
			report.Entries = append(report.Entries, entry)
			continue
		}

		normalized, refs, err := transformer.Normalize(page, categoryID, langID)
		if err != nil {
			entry.Action = "error"
			entry.Err = err.Error()
			report.Failing++
			report.Entries = append(report.Entries, entry)
			continue
		}

		entry.Action = "migrate"
		entry.Rule = route.RuleName
		entry.Slug = normalized.Slug
		entry.MetaTitle = normalized.MetaTitle
		entry.MetaDescription = normalized.MetaDescription
		entry.ContentLength = len(normalized.Content)
		for _, ref := range refs {
			entry.Images = append(entry.Images, ref.OriginURL)
			seenImages[ref.OriginURL] = true
		}
		report.Migrating++
		report.Entries = append(report.Entries, entry)
	}

	report.ImageCount = len(seenImages)
	return report
}

// WriteHTML renders the report as a standalone HTML document.
func (r *Report) WriteHTML(w io.Writer) error {
	return reportTemplate.Execute(w, r)
}

var reportTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>wp2presta preview: {{.SiteURL}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; vertical-align: top; }
th { background: #f0f0f0; }
.skip { color: #888; }
.error { color: #b00020; }
.summary { margin-bottom: 1.5em; }
.images { font-size: 0.85em; color: #555; }
</style>
</head>
<body>
<h1>Migration preview</h1>
<p class="summary">
Source: <strong>{{.SiteURL}}</strong> · generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}<br>
{{.Migrating}} to migrate · {{.Skipping}} skipped · {{.Failing}} with errors · {{.ImageCount}} distinct images
</p>
<table>
<tr><th>ID</th><th>Title</th><th>Slug</th><th>Action</th><th>Meta title</th><th>Images</th></tr>
{{range .Entries}}
<tr class="{{if eq .Action "skip"}}skip{{else if eq .Action "error"}}error{{end}}">
<td>{{.PageID}}</td>
<td>{{.Title}}</td>
<td>{{if .Slug}}{{.Slug}}{{else}}{{.SourceSlug}}{{end}}</td>
<td>{{.Action}}{{if .Rule}} ({{.Rule}}){{end}}{{if .Err}}<br>{{.Err}}{{end}}</td>
<td>{{.MetaTitle}}</td>
<td class="images">{{range .Images}}{{.}}<br>{{end}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))
