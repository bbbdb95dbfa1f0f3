// Package prestashop is a client for the PrestaShop Webservice API, covering
// the CMS page resource (XML payloads) and CMS image upload.
package prestashop

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/wp2presta/internal/entities"
)

const (
	defaultTimeout = 30 * time.Second

	userAgent   = "wp2presta/2.0"
	cmsResource = "content_management_system"
)

// Client talks to one shop's Webservice. The API key doubles as the basic-auth
// username; the password stays empty.
type Client struct {
	apiBase    string
	shopBase   string
	apiKey     string
	langID     int
	httpClient *http.Client
}

func NewClient(shopURL, apiKey string, defaultLangID int) *Client {
	base := strings.TrimRight(shopURL, "/")
	return &Client{
		apiBase:    base + "/api",
		shopBase:   base,
		apiKey:     apiKey,
		langID:     defaultLangID,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// CheckConnection verifies the Webservice answers and the key is accepted.
func (c *Client) CheckConnection(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.apiBase+"/", nil, "")
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("prestashop connection: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrInvalidAPIKey
	default:
		return fmt.Errorf("prestashop connection: HTTP %d", resp.StatusCode)
	}
}

// FindIDsBySlug returns the ids of every CMS page whose link_rewrite matches
// slug exactly, sorted ascending. An empty slice means no match.
func (c *Client) FindIDsBySlug(ctx context.Context, slug string) ([]int, error) {
	query := url.Values{
		"output_format":        {"JSON"},
		"filter[link_rewrite]": {slug},
		"display":              {"[id]"},
	}
	reqURL := c.apiBase + "/" + cmsResource + "?" + query.Encode()

	req, err := c.newRequest(ctx, http.MethodGet, reqURL, nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slug lookup %q: %w", slug, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("slug lookup %q: %w", slug, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("slug lookup %q: HTTP %d", slug, resp.StatusCode)
	}

	ids, err := parseIDList(body)
	if err != nil {
		return nil, fmt.Errorf("slug lookup %q: %w", slug, err)
	}
	sort.Ints(ids)
	return ids, nil
}

// CreateCMSPage creates a new CMS page and returns its id.
func (c *Client) CreateCMSPage(ctx context.Context, page entities.NormalizedPage) (int, error) {
	payload, err := c.buildCMSXML(page, 0)
	if err != nil {
		return 0, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.apiBase+"/"+cmsResource, bytes.NewReader(payload), "text/xml; charset=utf-8")
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &WriteError{Op: "create", Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return 0, &WriteError{Op: "create", StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}

	id, err := parseCreatedID(body)
	if err != nil {
		return 0, &WriteError{Op: "create", StatusCode: resp.StatusCode, Detail: err.Error()}
	}
	slog.Debug("created cms page", "id", id, "slug", page.Slug)
	return id, nil
}

// UpdateCMSPage overwrites an existing CMS page.
func (c *Client) UpdateCMSPage(ctx context.Context, id int, page entities.NormalizedPage) error {
	payload, err := c.buildCMSXML(page, id)
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s/%s/%d", c.apiBase, cmsResource, id)
	req, err := c.newRequest(ctx, http.MethodPut, reqURL, bytes.NewReader(payload), "text/xml; charset=utf-8")
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &WriteError{Op: "update", Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &WriteError{Op: "update", StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}
	slog.Debug("updated cms page", "id", id, "slug", page.Slug)
	return nil
}

// UploadImage stores an image in the shop's CMS image directory and returns
// the URL it will be served from.
func (c *Client) UploadImage(ctx context.Context, data []byte, filenameHint string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filenameHint)
	if err != nil {
		return "", &UploadError{Filename: filenameHint, Detail: err.Error()}
	}
	if _, err := part.Write(data); err != nil {
		return "", &UploadError{Filename: filenameHint, Detail: err.Error()}
	}
	if err := writer.Close(); err != nil {
		return "", &UploadError{Filename: filenameHint, Detail: err.Error()}
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.apiBase+"/images/cms", &buf, writer.FormDataContentType())
	if err != nil {
		return "", &UploadError{Filename: filenameHint, Detail: err.Error()}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UploadError{Filename: filenameHint, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", &UploadError{Filename: filenameHint, StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}

	return c.shopBase + "/img/cms/" + filenameHint, nil
}

// XML payload shapes for the content_management_system resource.

type cmsLanguage struct {
	ID    string `xml:"id,attr"`
	Value string `xml:",cdata"`
}

type cmsLangField struct {
	Language cmsLanguage `xml:"language"`
}

type cmsPayload struct {
	XMLName     xml.Name     `xml:"content_management_system"`
	ID          string       `xml:"id,omitempty"`
	CategoryID  int          `xml:"id_cms_category"`
	Active      int          `xml:"active"`
	Indexation  int          `xml:"indexation"`
	MetaTitle   cmsLangField `xml:"meta_title"`
	MetaDesc    cmsLangField `xml:"meta_description"`
	MetaKeyword cmsLangField `xml:"meta_keywords"`
	Content     cmsLangField `xml:"content"`
	LinkRewrite cmsLangField `xml:"link_rewrite"`
}

type prestashopEnvelope struct {
	XMLName xml.Name   `xml:"prestashop"`
	Xlink   string     `xml:"xmlns:xlink,attr"`
	CMS     cmsPayload `xml:"content_management_system"`
}

func (c *Client) buildCMSXML(page entities.NormalizedPage, existingID int) ([]byte, error) {
	langID := page.LanguageID
	if langID == 0 {
		langID = c.langID
	}
	lang := func(value string) cmsLangField {
		return cmsLangField{Language: cmsLanguage{ID: strconv.Itoa(langID), Value: value}}
	}

	payload := prestashopEnvelope{
		Xlink: "http://www.w3.org/1999/xlink",
		CMS: cmsPayload{
			CategoryID:  page.CMSCategoryID,
			Active:      1,
			Indexation:  1,
			MetaTitle:   lang(page.MetaTitle),
			MetaDesc:    lang(page.MetaDescription),
			MetaKeyword: lang(""),
			Content:     lang(page.Content),
			LinkRewrite: lang(page.Slug),
		},
	}
	if existingID != 0 {
		payload.CMS.ID = strconv.Itoa(existingID)
	}

	out, err := xml.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("build cms xml: %w", err)
	}
	return out, nil
}

// flexibleID tolerates PrestaShop returning ids as numbers or strings
// depending on version and output format.
type flexibleID int

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = flexibleID(n)
	return nil
}

// parseIDList handles the shapes PrestaShop uses for filtered listings: an
// array of objects, a single object, or an empty array/string when nothing
// matched.
func parseIDList(body []byte) ([]int, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte(`[]`)) || bytes.Equal(trimmed, []byte(`""`)) {
		return nil, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	raw, ok := wrapper[cmsResource]
	if !ok {
		return nil, nil
	}

	type idHolder struct {
		ID flexibleID `json:"id"`
	}

	var list []idHolder
	if err := json.Unmarshal(raw, &list); err == nil {
		ids := make([]int, 0, len(list))
		for _, h := range list {
			if h.ID != 0 {
				ids = append(ids, int(h.ID))
			}
		}
		return ids, nil
	}

	var single idHolder
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	if single.ID == 0 {
		return nil, nil
	}
	return []int{int(single.ID)}, nil
}

func parseCreatedID(body []byte) (int, error) {
	var envelope struct {
		CMS struct {
			ID int `xml:"id"`
		} `xml:"content_management_system"`
	}
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return 0, fmt.Errorf("parse create response: %w", err)
	}
	if envelope.CMS.ID == 0 {
		return 0, fmt.Errorf("create response carried no id")
	}
	return envelope.CMS.ID, nil
}

// errorDetail extracts the first webservice error message, falling back to a
// truncated raw body.
func errorDetail(body []byte) string {
	var parsed struct {
		Errors []struct {
			Message string `xml:"message"`
		} `xml:"errors>error"`
	}
	if err := xml.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		return parsed.Errors[0].Message
	}
	detail := strings.TrimSpace(string(body))
	if len(detail) > 500 {
		detail = detail[:500]
	}
	return detail
}

func (c *Client) newRequest(ctx context.Context, method, reqURL string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.SetBasicAuth(c.apiKey, "")
	return req, nil
}
