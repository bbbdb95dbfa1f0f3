package entities

// ImageRole tells where an image reference was discovered.
type ImageRole string

const (
	ImageRoleContent  ImageRole = "content"  // <img> tag inside the page body
	ImageRoleFeatured ImageRole = "featured" // the page's featured media
)

// Page is one published page from the WordPress REST API, flattened to the
// fields the migration cares about. Rendered fields still carry raw HTML and
// undecoded entities exactly as WordPress returned them.
type Page struct {
	ID      int
	Title   string
	Content string
	Excerpt string
	Slug    string

	// SEO plugin overrides (Yoast), empty when the plugin is absent.
	MetaTitle       string
	MetaDescription string

	FeaturedMediaID  int
	FeaturedImageURL string
	FeaturedImageAlt string

	Date     string
	Modified string
}

// ImageRef is a single image discovered during transformation. Many refs may
// share an OriginURL; resolution dedupes on it.
type ImageRef struct {
	OriginURL string
	Alt       string
	Role      ImageRole
}

// NormalizedPage is a Page reshaped into PrestaShop's CMS field model.
// Content initially holds placeholder tokens where image URLs get substituted
// once resolved.
type NormalizedPage struct {
	SourceID        int
	Title           string
	MetaTitle       string
	MetaDescription string
	Content         string
	Slug            string
	CMSCategoryID   int
	LanguageID      int
}
