// Package images resolves source image URLs to destination URLs by fetching
// each image once per run and uploading it through an injected capability.
package images

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/mrlokans/wp2presta/internal/entities"
)

// Fetcher downloads an image from the source system.
type Fetcher interface {
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

// Uploader stores an image on the destination system and returns its new URL.
type Uploader interface {
	UploadImage(ctx context.Context, data []byte, filenameHint string) (string, error)
}

// Resolution is the outcome for one origin URL. A failed resolution carries
// Err and an empty DestinationURL; the origin URL is never mapped to itself.
type Resolution struct {
	DestinationURL string
	Err            error
}

// Resolved reports whether the image ended up addressable on the destination.
func (r Resolution) Resolved() bool {
	return r.Err == nil && r.DestinationURL != ""
}

// Resolver caches resolutions for the lifetime of one run. Concurrent callers
// asking for the same origin URL share a single fetch+upload: the first caller
// does the work, the rest wait and reuse the result.
type Resolver struct {
	fetcher  Fetcher
	uploader Uploader

	group    singleflight.Group
	mu       sync.RWMutex
	cache    map[string]Resolution
	uploaded atomic.Int64
}

func NewResolver(fetcher Fetcher, uploader Uploader) *Resolver {
	return &Resolver{
		fetcher:  fetcher,
		uploader: uploader,
		cache:    make(map[string]Resolution),
	}
}

// Resolve maps every distinct origin URL in refs to a Resolution. Failures are
// recorded per URL and do not abort the remaining refs.
func (r *Resolver) Resolve(ctx context.Context, refs []entities.ImageRef) map[string]Resolution {
	out := make(map[string]Resolution, len(refs))
	for _, ref := range refs {
		if _, done := out[ref.OriginURL]; done {
			continue
		}
		out[ref.OriginURL] = r.resolveOne(ctx, ref.OriginURL)
	}
	return out
}

// Uploaded returns how many images were actually transferred so far.
func (r *Resolver) Uploaded() int {
	return int(r.uploaded.Load())
}

func (r *Resolver) resolveOne(ctx context.Context, originURL string) Resolution {
	r.mu.RLock()
	cached, ok := r.cache[originURL]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	result, err, _ := r.group.Do(originURL, func() (any, error) {
		// Re-check under the flight: a previous caller may have populated the
		// cache between our read and the flight starting.
		r.mu.RLock()
		cached, ok := r.cache[originURL]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		res := r.fetchAndUpload(ctx, originURL)

		r.mu.Lock()
		r.cache[originURL] = res
		r.mu.Unlock()
		return res, nil
	})
	if err != nil {
		// The flight closure never returns an error; this is unreachable.
		return Resolution{Err: err}
	}
	return result.(Resolution)
}

func (r *Resolver) fetchAndUpload(ctx context.Context, originURL string) Resolution {
	data, err := r.fetcher.DownloadImage(ctx, originURL)
	if err != nil {
		return Resolution{Err: fmt.Errorf("fetch %s: %w", originURL, err)}
	}

	destURL, err := r.uploader.UploadImage(ctx, data, filenameHint(originURL))
	if err != nil {
		return Resolution{Err: fmt.Errorf("upload %s: %w", originURL, err)}
	}

	r.uploaded.Add(1)
	return Resolution{DestinationURL: destURL}
}

func filenameHint(originURL string) string {
	u, err := url.Parse(originURL)
	if err != nil {
		return "image"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "image"
	}
	return name
}
