// Package wordpress is a read-only client for the WordPress REST API (WP 4.7+).
package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mrlokans/wp2presta/internal/entities"
)

const (
	defaultTimeout  = 30 * time.Second
	downloadTimeout = 60 * time.Second
	pageBatchSize   = 100

	userAgent = "wp2presta/2.0"

	// pageFields trims the pages listing to what the migration consumes.
	pageFields = "id,title,content,excerpt,slug,date,modified,featured_media,yoast_head_json"
)

// Client talks to one WordPress site. Credentials are optional; without them
// only public content is visible.
type Client struct {
	apiBase     string
	username    string
	appPassword string
	httpClient  *http.Client
}

func NewClient(apiBase, username, appPassword string) *Client {
	return &Client{
		apiBase:     apiBase,
		username:    username,
		appPassword: appPassword,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
}

// renderedField is WordPress's {"rendered": "..."} wrapper.
type renderedField struct {
	Rendered string `json:"rendered"`
}

type pageResponse struct {
	ID            int           `json:"id"`
	Title         renderedField `json:"title"`
	Content       renderedField `json:"content"`
	Excerpt       renderedField `json:"excerpt"`
	Slug          string        `json:"slug"`
	Date          string        `json:"date"`
	Modified      string        `json:"modified"`
	FeaturedMedia int           `json:"featured_media"`
	YoastHead     *yoastHead    `json:"yoast_head_json"`
}

type yoastHead struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Media is one WordPress media item.
type Media struct {
	ID        int           `json:"id"`
	SourceURL string        `json:"source_url"`
	AltText   string        `json:"alt_text"`
	Title     renderedField `json:"title"`
}

// ListPages fetches every published page, following the REST API's
// X-WP-TotalPages pagination, and resolves featured media to source URLs.
// The returned slice is fully materialized.
func (c *Client) ListPages(ctx context.Context) ([]entities.Page, error) {
	var pages []entities.Page

	for batch := 1; ; batch++ {
		raw, totalBatches, err := c.listBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		slog.Debug("fetched page batch", "batch", batch, "count", len(raw))

		for _, p := range raw {
			pages = append(pages, c.toPage(ctx, p))
		}

		if batch >= totalBatches || len(raw) == 0 {
			break
		}
	}

	slog.Info("wordpress pages fetched", "count", len(pages))
	return pages, nil
}

func (c *Client) listBatch(ctx context.Context, batch int) ([]pageResponse, int, error) {
	query := url.Values{
		"per_page": {strconv.Itoa(pageBatchSize)},
		"page":     {strconv.Itoa(batch)},
		"status":   {"publish"},
		"_fields":  {pageFields},
	}
	reqURL := c.apiBase + "/pages?" + query.Encode()

	body, header, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, 0, err
	}

	var raw []pageResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode pages response: %w", err)
	}

	totalBatches := 1
	if v := header.Get("X-WP-TotalPages"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			totalBatches = n
		}
	}
	return raw, totalBatches, nil
}

// GetMedia fetches metadata for one media item.
func (c *Client) GetMedia(ctx context.Context, mediaID int) (*Media, error) {
	body, _, err := c.get(ctx, fmt.Sprintf("%s/media/%d", c.apiBase, mediaID))
	if err != nil {
		return nil, err
	}
	var media Media
	if err := json.Unmarshal(body, &media); err != nil {
		return nil, fmt.Errorf("decode media response: %w", err)
	}
	return &media, nil
}

// DownloadImage fetches an image by URL and returns its bytes.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: err}
	}
	c.prepare(req)

	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: imageURL, StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: err}
	}
	return data, nil
}

// CheckConnection verifies the pages endpoint answers.
func (c *Client) CheckConnection(ctx context.Context) error {
	_, _, err := c.get(ctx, c.apiBase+"/pages?per_page=1&_fields=id")
	return err
}

func (c *Client) toPage(ctx context.Context, p pageResponse) entities.Page {
	page := entities.Page{
		ID:              p.ID,
		Title:           p.Title.Rendered,
		Content:         p.Content.Rendered,
		Excerpt:         p.Excerpt.Rendered,
		Slug:            p.Slug,
		FeaturedMediaID: p.FeaturedMedia,
		Date:            p.Date,
		Modified:        p.Modified,
	}
	if p.YoastHead != nil {
		page.MetaTitle = p.YoastHead.Title
		page.MetaDescription = p.YoastHead.Description
	}

	if p.FeaturedMedia != 0 {
		media, err := c.GetMedia(ctx, p.FeaturedMedia)
		if err != nil {
			slog.Warn("failed to resolve featured media", "page_id", p.ID, "media_id", p.FeaturedMedia, "error", err)
		} else {
			page.FeaturedImageURL = media.SourceURL
			page.FeaturedImageAlt = media.AltText
		}
	}
	return page
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, &FetchError{URL: reqURL, Err: err}
	}
	c.prepare(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &FetchError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &FetchError{URL: reqURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &FetchError{URL: reqURL, Err: err}
	}
	return body, resp.Header, nil
}

func (c *Client) prepare(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.username != "" && c.appPassword != "" {
		req.SetBasicAuth(c.username, c.appPassword)
	}
}
