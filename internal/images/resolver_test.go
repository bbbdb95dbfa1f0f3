package images

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wp2presta/internal/entities"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	delay time.Duration
	fail  map[string]bool
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(map[string]int), fail: make(map[string]bool)}
}

func (f *fakeFetcher) DownloadImage(_ context.Context, imageURL string) ([]byte, error) {
	f.mu.Lock()
	f.calls[imageURL]++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[imageURL] {
		return nil, errors.New("boom")
	}
	return []byte("image-bytes"), nil
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type fakeUploader struct {
	calls atomic.Int64
	fail  bool
}

func (u *fakeUploader) UploadImage(_ context.Context, _ []byte, filenameHint string) (string, error) {
	u.calls.Add(1)
	if u.fail {
		return "", errors.New("upload refused")
	}
	return "http://shop/img/cms/" + filenameHint, nil
}

func contentRef(url string) entities.ImageRef {
	return entities.ImageRef{OriginURL: url, Role: entities.ImageRoleContent}
}

func TestResolveFetchesEachURLOnce(t *testing.T) {
	fetcher := newFakeFetcher()
	uploader := &fakeUploader{}
	resolver := NewResolver(fetcher, uploader)

	// The same URL referenced twice still causes exactly one fetch and upload.
	refs := []entities.ImageRef{
		contentRef("http://src/a.png"),
		contentRef("http://src/a.png"),
	}

	resolutions := resolver.Resolve(context.Background(), refs)

	require.Len(t, resolutions, 1)
	res := resolutions["http://src/a.png"]
	require.True(t, res.Resolved())
	assert.Equal(t, "http://shop/img/cms/a.png", res.DestinationURL)

	assert.Equal(t, 1, fetcher.callCount("http://src/a.png"))
	assert.Equal(t, int64(1), uploader.calls.Load())
	assert.Equal(t, 1, resolver.Uploaded())
}

func TestResolveCachesAcrossCalls(t *testing.T) {
	fetcher := newFakeFetcher()
	uploader := &fakeUploader{}
	resolver := NewResolver(fetcher, uploader)

	refs := []entities.ImageRef{contentRef("http://src/a.png")}
	first := resolver.Resolve(context.Background(), refs)
	second := resolver.Resolve(context.Background(), refs)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.callCount("http://src/a.png"))
	assert.Equal(t, 1, resolver.Uploaded())
}

func TestResolveFailureIsNonFatal(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.fail["http://src/bad.png"] = true
	uploader := &fakeUploader{}
	resolver := NewResolver(fetcher, uploader)

	refs := []entities.ImageRef{
		contentRef("http://src/bad.png"),
		contentRef("http://src/good.png"),
	}

	resolutions := resolver.Resolve(context.Background(), refs)
	require.Len(t, resolutions, 2)

	bad := resolutions["http://src/bad.png"]
	assert.False(t, bad.Resolved())
	assert.Error(t, bad.Err)
	assert.Empty(t, bad.DestinationURL, "a failed resolution must never map the URL to anything, least of all itself")

	good := resolutions["http://src/good.png"]
	assert.True(t, good.Resolved())
	assert.Equal(t, 1, resolver.Uploaded())
}

func TestResolveUploadFailure(t *testing.T) {
	fetcher := newFakeFetcher()
	uploader := &fakeUploader{fail: true}
	resolver := NewResolver(fetcher, uploader)

	resolutions := resolver.Resolve(context.Background(), []entities.ImageRef{contentRef("http://src/a.png")})

	res := resolutions["http://src/a.png"]
	assert.False(t, res.Resolved())
	assert.Error(t, res.Err)
	assert.Equal(t, 0, resolver.Uploaded())
}

func TestResolveConcurrentCallersShareOneFlight(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.delay = 30 * time.Millisecond
	uploader := &fakeUploader{}
	resolver := NewResolver(fetcher, uploader)

	const goroutines = 16
	var wg sync.WaitGroup
	results := make([]Resolution, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resolutions := resolver.Resolve(context.Background(), []entities.ImageRef{contentRef("http://src/shared.png")})
			results[i] = resolutions["http://src/shared.png"]
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, fetcher.callCount("http://src/shared.png"), "concurrent callers must share a single fetch")
	assert.Equal(t, int64(1), uploader.calls.Load())
	for i, res := range results {
		require.True(t, res.Resolved(), "goroutine %d got an unresolved result", i)
		assert.Equal(t, "http://shop/img/cms/shared.png", res.DestinationURL)
	}
}

func TestFilenameHint(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"http://src/wp-content/uploads/photo.jpg", "photo.jpg"},
		{"http://src/", "image"},
		{"http://src", "image"},
		{"://bad url", "image"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := filenameHint(tt.url); got != tt.expected {
				t.Errorf("filenameHint(%q) = %q, expected %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestResolveManyDistinctURLs(t *testing.T) {
	fetcher := newFakeFetcher()
	uploader := &fakeUploader{}
	resolver := NewResolver(fetcher, uploader)

	var refs []entities.ImageRef
	for i := 0; i < 10; i++ {
		refs = append(refs, contentRef(fmt.Sprintf("http://src/img-%d.png", i)))
	}

	resolutions := resolver.Resolve(context.Background(), refs)
	assert.Len(t, resolutions, 10)
	assert.Equal(t, 10, resolver.Uploaded())
}
