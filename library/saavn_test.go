package library

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/saavn"
)

func newTestLibrary(t *testing.T, routes map[string]string) *SaavnLibrary {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewSaavnLibrary(saavn.Init(srv.URL, time.Second, 20, saavn.WithRetry(1, 0)))
}

func TestSearchSongsConvertsTracks(t *testing.T) {
	lib := newTestLibrary(t, map[string]string{
		"/api/search/songs": `{"success": true, "data": {"results": [
			{"id": "s1", "name": "Tere Bina &amp; More", "duration": 300, "label": "T-Series",
			 "album": {"id": "a1", "name": "Guru &quot;OST&quot;"},
			 "artists": {"primary": [{"id": "ar1", "name": "A.R. Rahman"}]},
			 "image": [{"quality": "500x500", "url": "https://img/500"}],
			 "downloadUrl": [{"quality": "320kbps", "url": "https://aac/320"}]},
			{"id": "s2", "name": "No Artist", "label": "Saregama"}
		]}}`,
	})

	tracks, err := lib.SearchSongs(context.Background(), "guru", 10)
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	tr := tracks[0]
	assert.Equal(t, "Tere Bina & More", tr.Title)
	assert.Equal(t, `Guru "OST"`, tr.Album)
	assert.Equal(t, "A.R. Rahman", tr.Artist)
	assert.Equal(t, "ar1", tr.ArtistID)
	assert.Equal(t, 300, tr.Duration)
	assert.Equal(t, "https://img/500", tr.ArtworkURL())
	url, err := tr.StreamURL()
	require.NoError(t, err)
	assert.Equal(t, "https://aac/320", url)

	assert.Equal(t, "Saregama", tracks[1].Artist, "label is the fallback artist")
	_, err = tracks[1].StreamURL()
	assert.Equal(t, apperr.KindPlayback, apperr.KindOf(err))
}

func TestGetAlbumMissingIsEmpty(t *testing.T) {
	lib := newTestLibrary(t, map[string]string{
		"/api/albums": `{"success": true, "data": null}`,
	})

	_, err := lib.GetAlbum(context.Background(), "a1")
	assert.True(t, apperr.IsEmpty(err))
}

func TestGetPlaylistCountsSongs(t *testing.T) {
	lib := newTestLibrary(t, map[string]string{
		"/api/playlists": `{"success": true, "data": {"id": "p1", "name": "Top 50",
			"songs": [{"id": "s1", "name": "One"}, {"id": "s2", "name": "Two"}]}}`,
	})

	pl, err := lib.GetPlaylist(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Top 50", pl.Name)
	assert.Equal(t, 2, pl.SongCount)
	assert.Len(t, pl.Tracks, 2)
}

func TestErrorsPassThrough(t *testing.T) {
	lib := newTestLibrary(t, nil)

	_, err := lib.SearchArtists(context.Background(), "x", 5)
	assert.Equal(t, 404, apperr.StatusCode(err))
}
