package coverart

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yhkl-dev/SaavnCLI/domain"
)

func pngServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/500x500.png" {
			http.NotFound(w, r)
			return
		}
		img := image.NewGray(image.Rect(0, 0, 8, 8))
		for x := 0; x < 8; x++ {
			img.SetGray(x, x, color.Gray{Y: 255})
		}
		w.Header().Set("Content-Type", "image/png")
		require.NoError(t, png.Encode(w, img))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestForTrackUsesPreferredArtworkAndCaches(t *testing.T) {
	var hits int32
	srv := pngServer(t, &hits)
	c := NewConverter(srv.Client())

	track := domain.Track{Artwork: []domain.Image{
		{Quality: "150x150", URL: srv.URL + "/150x150.png"},
		{Quality: "500x500", URL: srv.URL + "/500x500.png"},
	}}
	art, err := c.ForTrack(context.Background(), track)
	require.NoError(t, err)
	assert.NotEmpty(t, art)
	assert.NotEqual(t, Placeholder(), art)

	again, err := c.ForTrack(context.Background(), track)
	require.NoError(t, err)
	assert.Equal(t, art, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestConvertFallsBackToPlaceholder(t *testing.T) {
	var hits int32
	srv := pngServer(t, &hits)
	c := NewConverter(srv.Client())

	art, err := c.ConvertFromURL(context.Background(), "")
	assert.NoError(t, err)
	assert.Equal(t, Placeholder(), art)

	art, err = c.ConvertFromURL(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)
	assert.Equal(t, Placeholder(), art)
}
