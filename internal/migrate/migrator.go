// Package migrate orchestrates the WordPress to PrestaShop pipeline: list,
// normalize, resolve images, match by slug, write, report.
package migrate

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/wp2presta/internal/entities"
	"github.com/mrlokans/wp2presta/internal/images"
	"github.com/mrlokans/wp2presta/internal/routing"
	"github.com/mrlokans/wp2presta/internal/transform"
)

// SourceLister materializes every source page.
type SourceLister interface {
	ListPages(ctx context.Context) ([]entities.Page, error)
}

// DestinationWriter mutates the destination shop.
type DestinationWriter interface {
	CreateCMSPage(ctx context.Context, page entities.NormalizedPage) (int, error)
	UpdateCMSPage(ctx context.Context, id int, page entities.NormalizedPage) error
}

// ImageResolver maps origin image URLs to destination URLs, fetching and
// uploading each distinct URL at most once per run.
type ImageResolver interface {
	Resolve(ctx context.Context, refs []entities.ImageRef) map[string]images.Resolution
	Uploaded() int
}

// Options tune one run.
type Options struct {
	DryRun        bool
	Workers       int  // 1 keeps the report in source order
	MigrateImages bool // discover and transfer in-content images
	RequireImages bool // a single unresolved image fails the page
	CMSCategoryID int  // default destination category
	LanguageID    int
}

// Migrator drives the pipeline. Pages are independent of each other; one
// page's failure never aborts the run.
type Migrator struct {
	source      SourceLister
	transformer *transform.Transformer
	resolver    ImageResolver
	matcher     *Matcher
	writer      DestinationWriter
	router      *routing.Router
	opts        Options

	// claimed guards against two source pages deriving the same slug and
	// silently overwriting one destination page within a run.
	mu      sync.Mutex
	claimed map[string]int // slug -> source page id

	// seenImages counts distinct image URLs for dry-run reporting, where the
	// resolver is never invoked.
	seenImages map[string]bool
}

func New(source SourceLister, transformer *transform.Transformer, resolver ImageResolver, matcher *Matcher, writer DestinationWriter, router *routing.Router, opts Options) *Migrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Migrator{
		source:      source,
		transformer: transformer,
		resolver:    resolver,
		matcher:     matcher,
		writer:      writer,
		router:      router,
		opts:        opts,
		claimed:     make(map[string]int),
		seenImages:  make(map[string]bool),
	}
}

// Run executes the migration and returns the run report, the sole
// authoritative success signal. Cancelling ctx stops dispatching new pages;
// pages already in flight run to completion so no half-written page is left
// behind, and the report covers everything finished up to that point.
func (m *Migrator) Run(ctx context.Context) (*Report, error) {
	report := NewReport(m.opts.DryRun)

	pages, err := m.source.ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source pages: %w", err)
	}
	slog.Info("starting migration", "pages", len(pages), "dry_run", m.opts.DryRun, "workers", m.opts.Workers)

	g := new(errgroup.Group)
	g.SetLimit(m.opts.Workers)

	for i, page := range pages {
		if ctx.Err() != nil {
			slog.Warn("cancellation requested, not dispatching remaining pages", "remaining", len(pages)-i)
			report.Cancelled = true
			break
		}
		page := page

		g.Go(func() error {
			// In-flight pages finish on a detached context to avoid
			// partial destination writes on cancellation.
			outcome := m.processPage(context.WithoutCancel(ctx), page)
			report.Add(outcome)
			logOutcome(outcome)
			return nil
		})
	}
	_ = g.Wait()

	if m.opts.DryRun {
		report.SetImages(len(m.seenImages))
	} else {
		report.SetImages(m.resolver.Uploaded())
	}
	report.FinishedAt = time.Now()

	slog.Info("migration finished",
		"created", report.Created(),
		"updated", report.Updated(),
		"skipped", report.Skipped(),
		"failed", report.Failed(),
		"images", report.Images(),
	)
	return report, nil
}

// processPage runs one page through every stage. Errors are converted into a
// failed outcome here, at exactly one boundary, and never escape.
func (m *Migrator) processPage(ctx context.Context, page entities.Page) Outcome {
	outcome := Outcome{PageID: page.ID, Title: transform.DecodeEntities(page.Title), Slug: page.Slug}

	route := m.router.Route(page.Slug)
	if route.Action == routing.ActionSkip {
		outcome.Status = StatusSkipped
		outcome.Decision = Decision{Kind: DecisionSkip}
		if route.RuleName != "" {
			outcome.Err = "skipped by rule " + route.RuleName
		}
		return outcome
	}
	categoryID := m.opts.CMSCategoryID
	if route.CMSCategoryID != 0 {
		categoryID = route.CMSCategoryID
	}

	normalized, refs, err := m.transformer.Normalize(page, categoryID, m.opts.LanguageID)
	if err != nil {
		return failed(outcome, StageNormalize, err)
	}
	outcome.Slug = normalized.Slug

	content, unresolved, err := m.resolveImages(ctx, normalized.Content, refs)
	if err != nil {
		return failed(outcome, StageImages, err)
	}
	outcome.UnresolvedImages = unresolved
	for _, u := range unresolved {
		outcome.Warnings = append(outcome.Warnings, "unresolved image kept at origin URL: "+u)
	}
	normalized.Content = content

	decision, err := m.matcher.Match(ctx, normalized.Slug)
	if err != nil {
		return failed(outcome, StageMatch, err)
	}
	outcome.Decision = decision
	if len(decision.DuplicateIDs) > 1 {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf(
			"slug %q matches %d destination pages %v, updating lowest id %d",
			normalized.Slug, len(decision.DuplicateIDs), decision.DuplicateIDs, decision.ExistingID))
	}

	if err := m.claimSlug(normalized.Slug, page.ID); err != nil {
		return failed(outcome, StageWrite, err)
	}

	if m.opts.DryRun {
		outcome.Status = StatusSimulated
		return outcome
	}

	switch decision.Kind {
	case DecisionCreate:
		id, err := m.writer.CreateCMSPage(ctx, normalized)
		if err != nil {
			return failed(outcome, StageWrite, err)
		}
		outcome.Decision.ExistingID = id
	case DecisionUpdate:
		if err := m.writer.UpdateCMSPage(ctx, decision.ExistingID, normalized); err != nil {
			return failed(outcome, StageWrite, err)
		}
	}

	outcome.Status = StatusOK
	return outcome
}

// resolveImages substitutes placeholder tokens in content with destination
// URLs. Unresolved images keep their origin URL and are returned for the
// report. In dry-run mode (and with image migration disabled) nothing is
// fetched or uploaded and every token reverts to its origin URL.
func (m *Migrator) resolveImages(ctx context.Context, content string, refs []entities.ImageRef) (string, []string, error) {
	if len(refs) == 0 {
		return content, nil, nil
	}

	if m.opts.DryRun || !m.opts.MigrateImages {
		if m.opts.DryRun && m.opts.MigrateImages {
			m.mu.Lock()
			for _, ref := range refs {
				m.seenImages[ref.OriginURL] = true
			}
			m.mu.Unlock()
		}
		for _, ref := range refs {
			content = substituteImage(content, ref.OriginURL, ref.OriginURL)
		}
		return content, nil, nil
	}

	resolutions := m.resolver.Resolve(ctx, refs)

	var unresolved []string
	for _, ref := range refs {
		res := resolutions[ref.OriginURL]
		target := ref.OriginURL
		if res.Resolved() {
			target = res.DestinationURL
		} else {
			unresolved = append(unresolved, ref.OriginURL)
			if res.Err != nil {
				slog.Warn("image left unresolved", "url", ref.OriginURL, "error", res.Err)
			}
		}
		content = substituteImage(content, ref.OriginURL, target)
	}

	if len(unresolved) > 0 && m.opts.RequireImages {
		return "", unresolved, fmt.Errorf("%d of %d images failed to resolve and migration.require_images is set", len(unresolved), len(refs))
	}
	return content, unresolved, nil
}

// substituteImage swaps one placeholder token for its target URL. Attribute
// serialization escapes ampersands, so the escaped token form is handled too.
func substituteImage(content, origin, target string) string {
	token := transform.ImagePlaceholder(origin)
	content = strings.ReplaceAll(content, token, target)
	if escaped := html.EscapeString(token); escaped != token {
		content = strings.ReplaceAll(content, escaped, html.EscapeString(target))
	}
	return content
}

func (m *Migrator) claimSlug(slug string, pageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if owner, taken := m.claimed[slug]; taken && owner != pageID {
		return fmt.Errorf("slug %q already produced by source page %d in this run", slug, owner)
	}
	m.claimed[slug] = pageID
	return nil
}

func failed(outcome Outcome, stage Stage, err error) Outcome {
	outcome.Status = StatusFailed
	outcome.Stage = stage
	outcome.Err = err.Error()
	return outcome
}

func logOutcome(o Outcome) {
	switch o.Status {
	case StatusFailed:
		slog.Error("page failed", "page_id", o.PageID, "slug", o.Slug, "stage", o.Stage, "error", o.Err)
	case StatusSkipped:
		slog.Info("page skipped", "page_id", o.PageID, "slug", o.Slug)
	case StatusSimulated:
		slog.Info("page simulated", "page_id", o.PageID, "slug", o.Slug, "decision", o.Decision.Kind)
	default:
		slog.Info("page migrated", "page_id", o.PageID, "slug", o.Slug, "decision", o.Decision.Kind)
	}
}
