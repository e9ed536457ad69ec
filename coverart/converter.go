// Package coverart renders track artwork as ASCII for the now playing panel.
package coverart

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/qeesung/image2ascii/convert"

	"github.com/yhkl-dev/SaavnCLI/domain"
)

const (
	DefaultWidth  = 25
	DefaultHeight = 12
)

// Converter downloads artwork and converts it to ASCII, caching the most
// recent rendering.
type Converter struct {
	httpClient *http.Client
	converter  *convert.ImageConverter
	width      int
	height     int

	mu      sync.Mutex
	lastURL string
	lastArt string
}

// NewConverter creates a converter using client, or a 10s-timeout client
// when client is nil.
func NewConverter(client *http.Client) *Converter {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Converter{
		httpClient: client,
		converter:  convert.NewImageConverter(),
		width:      DefaultWidth,
		height:     DefaultHeight,
	}
}

// ForTrack renders the preferred artwork of track.
func (c *Converter) ForTrack(ctx context.Context, track domain.Track) (string, error) {
	return c.ConvertFromURL(ctx, track.ArtworkURL())
}

// ConvertFromURL downloads and converts an image URL to ASCII art. On any
// failure it returns the placeholder along with the error.
func (c *Converter) ConvertFromURL(ctx context.Context, url string) (string, error) {
	if url == "" {
		return Placeholder(), nil
	}

	c.mu.Lock()
	if url == c.lastURL {
		art := c.lastArt
		c.mu.Unlock()
		return art, nil
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Placeholder(), errors.Wrap(err, "failed to build request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Placeholder(), errors.Wrap(err, "failed to download")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Placeholder(), errors.Errorf("status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return Placeholder(), errors.Wrap(err, "failed to decode")
	}

	opts := convert.DefaultOptions
	opts.FixedWidth = c.width
	opts.FixedHeight = c.height
	opts.Colored = false // tview renders its own color tags

	art := c.converter.Image2ASCIIString(img, &opts)

	c.mu.Lock()
	c.lastURL, c.lastArt = url, art
	c.mu.Unlock()
	return art, nil
}

// Placeholder is shown when a track has no usable artwork.
func Placeholder() string {
	return `[darkgray]┌───────────────────────┐
[darkgray]│                       │
[darkgray]│                       │
[darkgray]│        ♫  ♪  ♫        │
[darkgray]│     No Cover Art      │
[darkgray]│        ♫  ♪  ♫        │
[darkgray]│                       │
[darkgray]│                       │
[darkgray]└───────────────────────┘`
}
