package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediagrab/internal/domain"
)

// stubFetcher serves canned bodies per URL and records every call.
type stubFetcher struct {
	bodies map[string]string
	calls  []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if body, ok := f.bodies[url]; ok {
		return body, nil
	}
	return "", errors.New("status 404")
}

const postURL = "https://www.instagram.com/p/abc/"

func newTestExtractor(f Fetcher) *Extractor {
	return NewExtractor(f, nil, nil, nil, 30*time.Second)
}

func TestExtractJSONFirstVariant(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{
		postURL + "?__a=1&__d=dis": `{"items":[{"video_versions":[{"url":"https://x/a.mp4","width":720,"height":1280}]}]}`,
	}}
	res := newTestExtractor(fetcher).Extract(context.Background(), postURL)

	require.True(t, res.OK)
	assert.Equal(t, domain.KindVideo, res.Kind)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].IsVideo)
	require.Len(t, res.Items[0].Sources, 1)
	assert.Equal(t, domain.MediaSource{URL: "https://x/a.mp4", Label: "720x1280"}, res.Items[0].Sources[0])

	// First variant succeeded, nothing else was fetched.
	assert.Equal(t, []string{postURL + "?__a=1&__d=dis"}, fetcher.calls)
}

func TestExtractExhaustion(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{}}
	res := newTestExtractor(fetcher).Extract(context.Background(), postURL)

	assert.False(t, res.OK)
	assert.Equal(t, "failed all extract methods", res.Error)
	assert.Empty(t, res.Items)
	// Every variant was attempted before giving up.
	assert.Equal(t, Variants(postURL), fetcher.calls)
}

func TestExtractRegexFallback(t *testing.T) {
	html := `<html><body><div>"video_url":"https:\/\/x\/v.mp4"</div></body></html>`
	fetcher := &stubFetcher{bodies: map[string]string{postURL: html}}
	res := newTestExtractor(fetcher).Extract(context.Background(), postURL)

	require.True(t, res.OK)
	assert.Equal(t, domain.KindVideo, res.Kind)
	require.Len(t, res.Items, 1)
	require.Len(t, res.Items[0].Sources, 1)
	assert.Equal(t, domain.MediaSource{URL: "https://x/v.mp4", Label: "auto"}, res.Items[0].Sources[0])
}

func TestExtractCarousel(t *testing.T) {
	body := `{"graphql":{"shortcode_media":{
		"edge_sidecar_to_children":{"edges":[
			{"node":{"is_video":true,"video_url":"https://x/v.mp4"}},
			{"node":{"display_url":"https://x/p.jpg"}}
		]}
	}}}`
	fetcher := &stubFetcher{bodies: map[string]string{postURL + "?__a=1&__d=dis": body}}
	res := newTestExtractor(fetcher).Extract(context.Background(), postURL)

	require.True(t, res.OK)
	assert.Equal(t, domain.KindCarousel, res.Kind)
	require.Len(t, res.Items, 2)
	assert.True(t, res.Items[0].IsVideo)
	assert.False(t, res.Items[1].IsVideo)
	assert.Equal(t, "https://x/v.mp4", res.Items[0].Sources[0].URL)
	assert.Equal(t, "https://x/p.jpg", res.Items[1].Sources[0].URL)
}

func TestExtractEmbeddedScript(t *testing.T) {
	html := `<html><head>
		<script type="application/json" data-sjs>
			{"require":{"payload":{"video_versions":[{"url":"https://x/e.mp4","width":640,"height":800}]}}}
		</script>
	</head><body></body></html>`
	fetcher := &stubFetcher{bodies: map[string]string{postURL: html}}
	res := newTestExtractor(fetcher).Extract(context.Background(), postURL)

	require.True(t, res.OK)
	assert.Equal(t, domain.KindVideo, res.Kind)
	assert.Equal(t, "640x800", res.Items[0].Sources[0].Label)
}

func TestExtractAdditionalData(t *testing.T) {
	html := `<html><body><script>
		window.__additionalDataLoaded('extra', {"items":[{"video_versions":[{"url":"https://x/ad.mp4","width":720,"height":900}]}]});
	</script></body></html>`
	fetcher := &stubFetcher{bodies: map[string]string{postURL: html}}
	res := newTestExtractor(fetcher).Extract(context.Background(), postURL)

	require.True(t, res.OK)
	assert.Equal(t, "https://x/ad.mp4", res.Items[0].Sources[0].URL)
}

func TestExtractSharedData(t *testing.T) {
	html := `<html><body><script>
		window._sharedData = {"entry_data":{"PostPage":[{"graphql":{"shortcode_media":{"display_url":"https://x/shared.jpg"}}}]}};
	</script></body></html>`
	fetcher := &stubFetcher{bodies: map[string]string{postURL: html}}
	res := newTestExtractor(fetcher).Extract(context.Background(), postURL)

	require.True(t, res.OK)
	assert.Equal(t, domain.KindImage, res.Kind)
	assert.Equal(t, "https://x/shared.jpg", res.Items[0].Sources[0].URL)
}

func TestExtractLDJSON(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"VideoObject","contentUrl":"https://x/ld.mp4","thumbnailUrl":"https://x/ld.jpg"}</script>
	</head><body></body></html>`
	fetcher := &stubFetcher{bodies: map[string]string{postURL: html}}
	res := newTestExtractor(fetcher).Extract(context.Background(), postURL)

	require.True(t, res.OK)
	assert.Equal(t, domain.KindVideo, res.Kind)
	require.Len(t, res.Items, 1)
	assert.Equal(t, domain.MediaSource{URL: "https://x/ld.mp4", Label: "auto"}, res.Items[0].Sources[0])
	require.NotNil(t, res.Items[0].Thumbnail)
	assert.Equal(t, "https://x/ld.jpg", *res.Items[0].Thumbnail)
}

func TestExtractLDJSONNestedVideo(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"SocialMediaPosting","video":{"contentUrl":"https://x/nested.mp4"}}</script>
	</head><body></body></html>`
	fetcher := &stubFetcher{bodies: map[string]string{postURL: html}}
	res := newTestExtractor(fetcher).Extract(context.Background(), postURL)

	require.True(t, res.OK)
	assert.Equal(t, "https://x/nested.mp4", res.Items[0].Sources[0].URL)
}

func TestExtractLaterVariantWins(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{
		"https://i.instagram.com/p/abc/": `{"items":[{"display_url":"https://x/late.jpg"}]}`,
	}}
	res := newTestExtractor(fetcher).Extract(context.Background(), postURL)

	require.True(t, res.OK)
	assert.Equal(t, domain.KindImage, res.Kind)
	assert.Len(t, fetcher.calls, 4)
}

func TestExtractContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher := &stubFetcher{bodies: map[string]string{}}
	res := newTestExtractor(fetcher).Extract(ctx, postURL)

	assert.False(t, res.OK)
	assert.Empty(t, fetcher.calls)
}

// renderStub satisfies Renderer for the fallback test.
type renderStub struct {
	html   string
	called bool
}

func (r *renderStub) Render(_ context.Context, _ string) (string, error) {
	r.called = true
	return r.html, nil
}

func TestExtractRenderedFallback(t *testing.T) {
	rendered := `<html><body><script>var x = {"video_url":"https:\/\/x\/r.mp4"};</script></body></html>`
	fetcher := &stubFetcher{bodies: map[string]string{}}
	renderer := &renderStub{html: rendered}
	ex := NewExtractor(fetcher, renderer, nil, nil, 30*time.Second)

	res := ex.Extract(context.Background(), postURL)
	require.True(t, res.OK)
	assert.True(t, renderer.called)
	assert.Equal(t, "https://x/r.mp4", res.Items[0].Sources[0].URL)
}

func TestExtractRendererSkippedOnPlainHit(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{
		postURL + "?__a=1&__d=dis": `{"items":[{"display_url":"https://x/p.jpg"}]}`,
	}}
	renderer := &renderStub{html: "<html></html>"}
	ex := NewExtractor(fetcher, renderer, nil, nil, 30*time.Second)

	res := ex.Extract(context.Background(), postURL)
	require.True(t, res.OK)
	assert.False(t, renderer.called)
}
