package extract

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"mediagrab/internal/domain"
)

// ErrExhausted is the terminal failure message when every variant and
// strategy came up empty.
const ErrExhausted = "failed all extract methods"

// Fetcher retrieves the body of a URL. Implemented by fetch.Client;
// cascade tests substitute a stub.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Renderer loads a URL in a real browser and returns the rendered DOM.
// Optional; nil disables the rendered-fetch fallback.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Observer receives cascade telemetry. Implemented by monitoring.Metrics.
type Observer interface {
	ExtractionStarted()
	StrategyHit(strategy string)
	ExtractionFailed(reason string)
}

// Extractor drives the variant/strategy cascade for one service instance.
// It holds no per-request state; a single Extractor serves concurrent
// requests.
type Extractor struct {
	fetcher  Fetcher
	renderer Renderer
	obs      Observer
	logger   *zap.Logger
	deadline time.Duration
}

func NewExtractor(f Fetcher, r Renderer, obs Observer, logger *zap.Logger, deadline time.Duration) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{fetcher: f, renderer: r, obs: obs, logger: logger, deadline: deadline}
}

// Extract runs the full cascade for one post URL. Every per-variant and
// per-strategy error is swallowed; the only failure surfaced is total
// exhaustion. The result is always a well-formed envelope.
func (e *Extractor) Extract(ctx context.Context, rawURL string) domain.ExtractResult {
	if e.obs != nil {
		e.obs.ExtractionStarted()
	}
	if e.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.deadline)
		defer cancel()
	}

	for _, variant := range Variants(rawURL) {
		if ctx.Err() != nil {
			break
		}
		body, err := e.fetcher.Fetch(ctx, variant)
		if err != nil {
			e.logger.Debug("variant fetch failed",
				zap.String("variant", variant), zap.Error(err))
			continue
		}
		if res, strategy, ok := e.extractBody(body); ok {
			e.hit(strategy, variant)
			return res
		}
	}

	if e.renderer != nil && ctx.Err() == nil {
		html, err := e.renderer.Render(ctx, BaseURL(rawURL))
		if err != nil {
			e.logger.Debug("rendered fetch failed", zap.Error(err))
		} else if res, strategy, ok := e.fromHTML(html); ok {
			e.hit("rendered_"+strategy, rawURL)
			return res
		}
	}

	if e.obs != nil {
		e.obs.ExtractionFailed("exhausted")
	}
	return domain.ExtractResult{OK: false, Error: ErrExhausted}
}

func (e *Extractor) hit(strategy, variant string) {
	if e.obs != nil {
		e.obs.StrategyHit(strategy)
	}
	e.logger.Info("extraction succeeded",
		zap.String("strategy", strategy), zap.String("variant", variant))
}

func (e *Extractor) extractBody(body string) (domain.ExtractResult, string, bool) {
	if res, ok := e.fromJSON(body); ok {
		return res, "json", true
	}
	return e.fromHTML(body)
}

// fromJSON handles bodies that are themselves JSON: drill the known
// container paths first, then fall back to a full descriptor search.
func (e *Extractor) fromJSON(body string) (domain.ExtractResult, bool) {
	var root any
	if err := json.Unmarshal([]byte(body), &root); err != nil {
		return domain.ExtractResult{}, false
	}
	desc, ok := findDescriptor(root)
	if !ok {
		return domain.ExtractResult{}, false
	}
	return shapeItems(desc)
}

// findDescriptor drills the known container paths first, then falls back
// to the generic descriptor search.
func findDescriptor(root any) (map[string]any, bool) {
	if desc, ok := containerDescriptor(root); ok {
		return desc, true
	}
	return Locate(root)
}

// containerDescriptor drills the container paths the upstream JSON API has
// been seen to use.
func containerDescriptor(root any) (map[string]any, bool) {
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, false
	}
	if items := asSlice(obj["items"]); len(items) > 0 {
		if first, ok := items[0].(map[string]any); ok {
			return first, true
		}
	}
	if gql, ok := obj["graphql"].(map[string]any); ok {
		if media, ok := gql["shortcode_media"].(map[string]any); ok {
			return media, true
		}
	}
	if data, ok := obj["data"]; ok {
		switch d := data.(type) {
		case map[string]any:
			if desc, ok := Locate(d); ok {
				return desc, true
			}
		case []any:
			if len(d) > 0 {
				if desc, ok := Locate(d[0]); ok {
					return desc, true
				}
			}
		}
	}
	if media, ok := obj["media"].(map[string]any); ok {
		if desc, ok := Locate(media); ok {
			return desc, true
		}
	}
	return nil, false
}

func shapeItems(desc map[string]any) (domain.ExtractResult, bool) {
	items := Items(desc)
	if len(items) == 0 {
		return domain.ExtractResult{}, false
	}
	return Shape(items), true
}

// htmlStrategies is the ordered strategy table applied to HTML bodies.
// Earlier entries are structural and precise; the final raw regex scan is
// the loosest and runs last.
var htmlStrategies = []struct {
	name string
	run  func(e *Extractor, body string, doc *goquery.Document) (domain.ExtractResult, bool)
}{
	{"embedded_script", (*Extractor).fromEmbeddedScripts},
	{"additional_data", (*Extractor).fromAdditionalData},
	{"shared_data", (*Extractor).fromSharedData},
	{"ld_json", (*Extractor).fromLDJSON},
	{"regex", (*Extractor).fromRegexScan},
}

func (e *Extractor) fromHTML(body string) (domain.ExtractResult, string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		doc = nil
	}
	for _, s := range htmlStrategies {
		if res, ok := s.run(e, body, doc); ok {
			return res, s.name, true
		}
	}
	return domain.ExtractResult{}, "", false
}

// fromEmbeddedScripts scans framework-embedded JSON payload scripts for a
// block that mentions a marker field, then loose-parses and searches it.
func (e *Extractor) fromEmbeddedScripts(_ string, doc *goquery.Document) (res domain.ExtractResult, found bool) {
	if doc == nil {
		return
	}
	doc.Find(`script[type="application/json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !mentionsMarker(text) {
			return true
		}
		root, ok := ParseLoose(text)
		if !ok {
			return true
		}
		desc, ok := findDescriptor(root)
		if !ok {
			return true
		}
		if res, found = shapeItems(desc); found {
			return false
		}
		return true
	})
	return
}

func mentionsMarker(text string) bool {
	for _, f := range markerFields {
		if strings.Contains(text, `"`+f+`"`) {
			return true
		}
	}
	return false
}

var additionalDataRe = regexp.MustCompile(`__additionalDataLoaded\s*\([^,]+,`)

// fromAdditionalData handles the call-style embed: the JSON object passed
// as the second argument of __additionalDataLoaded(...). The loose parser
// does the brace slicing.
func (e *Extractor) fromAdditionalData(body string, _ *goquery.Document) (domain.ExtractResult, bool) {
	loc := additionalDataRe.FindStringIndex(body)
	if loc == nil {
		return domain.ExtractResult{}, false
	}
	tail := body[loc[1]:]
	if end := strings.Index(tail, "</script>"); end != -1 {
		tail = tail[:end]
	}
	root, ok := ParseLoose(tail)
	if !ok {
		return domain.ExtractResult{}, false
	}
	desc, ok := findDescriptor(root)
	if !ok {
		return domain.ExtractResult{}, false
	}
	return shapeItems(desc)
}

// fromSharedData handles the window._sharedData global assignment and
// drills the post page, then profile page, entry data paths.
func (e *Extractor) fromSharedData(body string, _ *goquery.Document) (domain.ExtractResult, bool) {
	idx := strings.Index(body, "window._sharedData")
	if idx == -1 {
		return domain.ExtractResult{}, false
	}
	tail := body[idx:]
	if end := strings.Index(tail, "</script>"); end != -1 {
		tail = tail[:end]
	}
	root, ok := ParseLoose(tail)
	if !ok {
		return domain.ExtractResult{}, false
	}
	for _, path := range sharedDataPaths {
		if node, ok := drill(root, path); ok {
			if desc, ok := node.(map[string]any); ok {
				if res, ok := shapeItems(desc); ok {
					return res, true
				}
			}
		}
	}
	return domain.ExtractResult{}, false
}

// sharedDataPaths are the nested locations of the first media node inside
// a _sharedData blob; "0" segments index into arrays.
var sharedDataPaths = [][]string{
	{"entry_data", "PostPage", "0", "graphql", "shortcode_media"},
	{"entry_data", "ProfilePage", "0", "graphql", "user", "edge_owner_to_timeline_media", "edges", "0", "node"},
}

func drill(v any, path []string) (any, bool) {
	for _, seg := range path {
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			if seg != "0" || len(node) == 0 {
				return nil, false
			}
			v = node[0]
		default:
			return nil, false
		}
	}
	return v, true
}

// fromLDJSON inspects every ld+json block for a content URL, emitting a
// single video item when one is found.
func (e *Extractor) fromLDJSON(_ string, doc *goquery.Document) (res domain.ExtractResult, found bool) {
	if doc == nil {
		return
	}
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var root any
		if err := json.Unmarshal([]byte(s.Text()), &root); err != nil {
			return true
		}
		obj, ok := root.(map[string]any)
		if !ok {
			return true
		}
		contentURL := asString(obj["contentUrl"])
		if contentURL == "" {
			if video, ok := obj["video"].(map[string]any); ok {
				contentURL = asString(video["contentUrl"])
			}
		}
		if contentURL == "" {
			return true
		}
		item := domain.MediaItem{
			IsVideo: true,
			Sources: []domain.MediaSource{{URL: Unescape(contentURL), Label: "auto"}},
		}
		if thumb := asString(obj["thumbnailUrl"]); thumb != "" {
			t := Unescape(thumb)
			item.Thumbnail = &t
		}
		res = Shape([]domain.MediaItem{item})
		found = true
		return false
	})
	return
}

// urlKeyPatterns is the last-resort regex table over known URL-bearing JSON
// keys. The first pattern that matches anywhere in the body wins; no attempt
// is made to find a better match further down, which trades precision for
// predictability.
var urlKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"video_url"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`"playable_url"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`"playback_url"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`"video_versions"\s*:\s*\[\s*\{\s*"url"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`"browser_native_hd_url"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`"browser_native_sd_url"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`"src"\s*:\s*"([^"]+\.mp4[^"]*)"`),
}

func (e *Extractor) fromRegexScan(body string, _ *goquery.Document) (domain.ExtractResult, bool) {
	for _, re := range urlKeyPatterns {
		m := re.FindStringSubmatch(body)
		if len(m) < 2 {
			continue
		}
		item := domain.MediaItem{
			IsVideo: true,
			Sources: []domain.MediaSource{{URL: Unescape(m[1]), Label: "auto"}},
		}
		return Shape([]domain.MediaItem{item}), true
	}
	return domain.ExtractResult{}, false
}
