package extract

import (
	"fmt"

	"mediagrab/internal/domain"
)

// singleURLFields are descriptor fields holding one direct media URL,
// checked in this order. All of them get the "auto" label; the upstream
// never guarantees a quality tier for these, so the label does not claim one.
var singleURLFields = []string{
	"playback_url",
	"playable_url",
	"video_url",
	"fallback_url",
	"content_url",
	"secure_url",
	"src",
	"file_url",
	"display_url",
}

// Collect harvests every plausible media URL from a descriptor: the
// video_versions list, the single-URL fields, the image candidates, and
// recursively any carousel children. Sources are deduplicated by exact URL,
// first occurrence wins, discovery order preserved. Returns nil when
// nothing was found.
func Collect(desc map[string]any) []domain.MediaSource {
	c := &collector{seen: map[string]bool{}}
	c.descriptor(desc, 0)
	return c.out
}

type collector struct {
	out  []domain.MediaSource
	seen map[string]bool
}

// maxChildDepth keeps a hostile carousel_media chain from recursing forever.
const maxChildDepth = 4

func (c *collector) descriptor(desc map[string]any, depth int) {
	for _, v := range asSlice(desc["video_versions"]) {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		c.add(asString(entry["url"]), versionLabel(entry))
	}

	for _, field := range singleURLFields {
		c.add(asString(desc[field]), "auto")
	}

	for _, v := range candidates(desc) {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		c.add(asString(entry["url"]), "thumb")
	}

	if depth >= maxChildDepth {
		return
	}
	for _, child := range Children(desc) {
		c.descriptor(child, depth+1)
	}
}

func (c *collector) add(rawURL, label string) {
	if rawURL == "" {
		return
	}
	u := Unescape(rawURL)
	if c.seen[u] {
		return
	}
	c.seen[u] = true
	c.out = append(c.out, domain.MediaSource{URL: u, Label: label})
}

// versionLabel renders "{width}x{height}" for a video_versions entry,
// falling back to "sd" when the dimensions are absent.
func versionLabel(entry map[string]any) string {
	w, h := asInt(entry["width"]), asInt(entry["height"])
	if w <= 0 || h <= 0 {
		return "sd"
	}
	return fmt.Sprintf("%dx%d", w, h)
}

// Children returns the descriptor's carousel/sidecar child descriptors in
// their published order, from either the flat carousel_media list or the
// edge_sidecar_to_children.edges[].node GraphQL shape.
func Children(desc map[string]any) []map[string]any {
	var out []map[string]any
	for _, v := range asSlice(desc["carousel_media"]) {
		if child, ok := v.(map[string]any); ok {
			out = append(out, child)
		}
	}
	if sidecar, ok := desc["edge_sidecar_to_children"].(map[string]any); ok {
		for _, v := range asSlice(sidecar["edges"]) {
			edge, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if node, ok := edge["node"].(map[string]any); ok {
				out = append(out, node)
			}
		}
	}
	return out
}

// Items assembles the final item list: one MediaItem per carousel child
// when the descriptor has children, a single item otherwise. Items that
// collected no sources are dropped.
func Items(desc map[string]any) []domain.MediaItem {
	children := Children(desc)
	if len(children) == 0 {
		if it, ok := buildItem(desc); ok {
			return []domain.MediaItem{it}
		}
		return nil
	}
	var out []domain.MediaItem
	for _, child := range children {
		if it, ok := buildItem(child); ok {
			out = append(out, it)
		}
	}
	return out
}

func buildItem(desc map[string]any) (domain.MediaItem, bool) {
	srcs := Collect(desc)
	if len(srcs) == 0 {
		return domain.MediaItem{}, false
	}
	return domain.MediaItem{
		IsVideo:   IsVideo(desc),
		Thumbnail: Thumbnail(desc),
		Sources:   srcs,
	}, true
}

// IsVideo reports whether a descriptor describes video content, by any of
// the signals the upstream has been seen to use.
func IsVideo(desc map[string]any) bool {
	if len(asSlice(desc["video_versions"])) > 0 {
		return true
	}
	if asString(desc["video_url"]) != "" {
		return true
	}
	if b, ok := desc["is_video"].(bool); ok && b {
		return true
	}
	return asInt(desc["media_type"]) == 2
}

// Thumbnail picks the descriptor's thumbnail URL: the first image candidate,
// falling back to display_url. Nil when neither exists.
func Thumbnail(desc map[string]any) *string {
	if cands := candidates(desc); len(cands) > 0 {
		if entry, ok := cands[0].(map[string]any); ok {
			if u := asString(entry["url"]); u != "" {
				u = Unescape(u)
				return &u
			}
		}
	}
	if u := asString(desc["display_url"]); u != "" {
		u = Unescape(u)
		return &u
	}
	return nil
}

func candidates(desc map[string]any) []any {
	iv, ok := desc["image_versions2"].(map[string]any)
	if !ok {
		return nil
	}
	return asSlice(iv["candidates"])
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}
