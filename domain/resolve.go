package domain

import "github.com/yhkl-dev/SaavnCLI/apperr"

// Stream and artwork tiers, best first.
var (
	StreamQualities  = []string{"320kbps", "160kbps"}
	ArtworkQualities = []string{"500x500", "150x150"}
)

// ResolveStream picks the stream URL to hand to the transport: the 320kbps
// tier, then 160kbps, then the first candidate with a URL. It fails with a
// playback error when nothing usable exists, so callers never pass a blank
// URI on.
func ResolveStream(candidates []StreamSource) (string, error) {
	for _, q := range StreamQualities {
		for _, c := range candidates {
			if c.Quality == q && c.URL != "" {
				return c.URL, nil
			}
		}
	}
	for _, c := range candidates {
		if c.URL != "" {
			return c.URL, nil
		}
	}
	return "", apperr.Playback("resolve stream", apperr.ErrNoStream)
}

// ResolveArtwork picks the 500x500 image, then 150x150, then the first
// non-empty URL. It returns "" when there is none.
func ResolveArtwork(candidates []Image) string {
	for _, q := range ArtworkQualities {
		for _, c := range candidates {
			if c.Quality == q && c.URL != "" {
				return c.URL
			}
		}
	}
	for _, c := range candidates {
		if c.URL != "" {
			return c.URL
		}
	}
	return ""
}
