package extract

import "mediagrab/internal/domain"

// Shape maps assembled items into the response envelope. Callers must not
// pass an empty slice; the kind invariant (carousel iff more than one item)
// is established here and nowhere else.
func Shape(items []domain.MediaItem) domain.ExtractResult {
	kind := domain.KindImage
	if len(items) > 1 {
		kind = domain.KindCarousel
	} else if items[0].IsVideo {
		kind = domain.KindVideo
	}
	return domain.ExtractResult{OK: true, Kind: kind, Items: items}
}
