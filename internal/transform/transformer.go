// Package transform normalizes WordPress page content into PrestaShop's CMS
// field model. All functions are pure: no network, no filesystem.
package transform

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mrlokans/wp2presta/internal/entities"
)

const (
	// MaxMetaTitleLen is PrestaShop's meta_title column limit.
	MaxMetaTitleLen = 255
	// MaxMetaDescriptionLen bounds meta_description to a safe length.
	MaxMetaDescriptionLen = 512
)

// ErrEmptySlug means neither the source slug nor the title yielded a usable
// link_rewrite value.
var ErrEmptySlug = errors.New("no usable slug could be derived")

// TransformError wraps a source HTML problem beyond recoverable cleanup.
type TransformError struct {
	PageID int
	Err    error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform page %d: %v", e.PageID, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// wpClassPrefixes are editor-injected class prefixes stripped from every
// element. alignwide/alignfull are exact matches.
var wpClassPrefixes = []string{"wp-block-", "wp-image-", "has-", "is-layout-"}

var wpClassExact = map[string]bool{"alignwide": true, "alignfull": true}

// Transformer turns one WordPress page into a destination-ready record plus
// the ordered image references discovered along the way.
type Transformer struct {
	wpBaseURL string
	wpHost    string
}

func New(wpBaseURL string) *Transformer {
	base := strings.TrimRight(wpBaseURL, "/")
	host := ""
	if u, err := url.Parse(base); err == nil {
		host = u.Hostname()
	}
	return &Transformer{wpBaseURL: base, wpHost: host}
}

// ImagePlaceholder is the token substituted for an image URL in normalized
// content. The migrator replaces it with the resolved destination URL (or the
// origin URL when resolution failed) without re-parsing the HTML.
func ImagePlaceholder(originURL string) string {
	return "{{wp2presta-img:" + originURL + "}}"
}

// Normalize derives a NormalizedPage from a WordPress page. The returned refs
// contain one entry per distinct origin URL in first-occurrence order, body
// images first, the featured image last unless it already appeared in the
// body.
func (t *Transformer) Normalize(page entities.Page, categoryID, langID int) (entities.NormalizedPage, []entities.ImageRef, error) {
	title := DecodeEntities(page.Title)

	metaTitle := DecodeEntities(page.MetaTitle)
	if metaTitle == "" {
		metaTitle = title
	}
	metaTitle = Truncate(metaTitle, MaxMetaTitleLen)

	metaDesc := page.MetaDescription
	if metaDesc == "" {
		metaDesc = page.Excerpt
	}
	metaDesc = Truncate(DecodeEntities(StripTags(metaDesc)), MaxMetaDescriptionLen)

	slug := page.Slug
	if !IsPathSafe(slug) {
		slug = SanitizeSlug(title)
	}
	if slug == "" {
		return entities.NormalizedPage{}, nil, &TransformError{PageID: page.ID, Err: ErrEmptySlug}
	}

	content, refs, err := t.transformContent(page.Content)
	if err != nil {
		return entities.NormalizedPage{}, nil, &TransformError{PageID: page.ID, Err: err}
	}

	if page.FeaturedImageURL != "" {
		if origin := t.resolveOrigin(page.FeaturedImageURL); origin != "" && !containsRef(refs, origin) {
			refs = append(refs, entities.ImageRef{
				OriginURL: origin,
				Alt:       page.FeaturedImageAlt,
				Role:      entities.ImageRoleFeatured,
			})
		}
	}

	normalized := entities.NormalizedPage{
		SourceID:        page.ID,
		Title:           title,
		MetaTitle:       metaTitle,
		MetaDescription: metaDesc,
		Content:         content,
		Slug:            slug,
		CMSCategoryID:   categoryID,
		LanguageID:      langID,
	}
	return normalized, refs, nil
}

// transformContent rewrites the page body: image srcs become placeholder
// tokens, WordPress-specific classes and srcsets are stripped, empty
// paragraphs are dropped.
func (t *Transformer) transformContent(htmlContent string) (string, []entities.ImageRef, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return "", nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", nil, fmt.Errorf("parse content: %w", err)
	}

	var refs []entities.ImageRef
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		origin := t.resolveOrigin(src)
		if origin == "" {
			return
		}

		if !containsRef(refs, origin) {
			alt, _ := img.Attr("alt")
			refs = append(refs, entities.ImageRef{OriginURL: origin, Alt: alt, Role: entities.ImageRoleContent})
		}
		img.SetAttr("src", ImagePlaceholder(origin))

		// WordPress responsive variants point at source-side sizes.
		img.RemoveAttr("srcset")
		img.RemoveAttr("sizes")
	})

	cleanWordPressClasses(doc)

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if strings.TrimSpace(p.Text()) == "" && p.Find("img").Length() == 0 {
			p.Remove()
		}
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", nil, fmt.Errorf("serialize content: %w", err)
	}
	return body, refs, nil
}

// resolveOrigin normalizes an image src to an absolute URL on the WordPress
// host. Returns "" for empty srcs and for images hosted elsewhere, which are
// left untouched in the content.
func (t *Transformer) resolveOrigin(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	if strings.HasPrefix(src, "/") {
		return t.wpBaseURL + src
	}
	u, err := url.Parse(src)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	if t.wpHost != "" && u.Hostname() != t.wpHost {
		return ""
	}
	return src
}

func cleanWordPressClasses(doc *goquery.Document) {
	doc.Find("[class]").Each(func(_ int, sel *goquery.Selection) {
		raw, _ := sel.Attr("class")
		kept := make([]string, 0, 4)
		for _, class := range strings.Fields(raw) {
			if isWordPressClass(class) {
				continue
			}
			kept = append(kept, class)
		}
		if len(kept) == 0 {
			sel.RemoveAttr("class")
			return
		}
		sel.SetAttr("class", strings.Join(kept, " "))
	})
}

func isWordPressClass(class string) bool {
	if wpClassExact[class] {
		return true
	}
	for _, prefix := range wpClassPrefixes {
		if strings.HasPrefix(class, prefix) {
			return true
		}
	}
	return false
}

func containsRef(refs []entities.ImageRef, origin string) bool {
	for _, ref := range refs {
		if ref.OriginURL == origin {
			return true
		}
	}
	return false
}
