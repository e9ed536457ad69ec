package saavn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yhkl-dev/SaavnCLI/apperr"
)

const songsBody = `{
  "success": true,
  "data": {
    "total": 2,
    "start": 1,
    "results": [
      {
        "id": "s1",
        "name": "Tum Hi Ho",
        "duration": 262,
        "year": "2013",
        "language": "hindi",
        "album": {"id": "a1", "name": "Aashiqui 2"},
        "artists": {"primary": [{"id": "ar1", "name": "Arijit Singh", "role": "singer"}]},
        "image": [{"quality": "150x150", "url": "https://img/150"}, {"quality": "500x500", "url": "https://img/500"}],
        "downloadUrl": [{"quality": "160kbps", "url": "https://aac/160"}, {"quality": "320kbps", "url": "https://aac/320"}]
      },
      {"id": "s2", "name": "Chahun Main Ya Naa", "duration": null}
    ]
  }
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return Init(srv.URL+"/", 5*time.Second, 20, WithRetry(3, time.Millisecond))
}

func TestSearchSongs(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search/songs", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(songsBody))
	})

	res, err := c.SearchSongs(context.Background(), "arijit", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "limit=20&page=2&query=arijit", gotQuery)
	require.Len(t, res.Results, 2)

	song := res.Results[0]
	assert.Equal(t, "Tum Hi Ho", song.Name)
	assert.Equal(t, 262, song.Duration)
	assert.Equal(t, "Aashiqui 2", song.Album.Name)
	require.Len(t, song.Artists.Primary, 1)
	assert.Equal(t, "Arijit Singh", song.Artists.Primary[0].Name)
	assert.Len(t, song.DownloadURL, 2)
	assert.Equal(t, 0, res.Results[1].Duration)
}

func TestSuccessFalseIsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "message": "nope"}`))
	})

	_, err := c.SearchAlbums(context.Background(), "x", 10)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAPI, apperr.KindOf(err))
	assert.Equal(t, 0, apperr.StatusCode(err))
}

func TestStatusMapping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetAlbum(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, apperr.StatusCode(err))
	assert.Equal(t, "Resource not found.", apperr.Message(err))
}

func TestMalformedBodyIsDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "data": {"results": "oops"}}`))
	})

	_, err := c.SearchPlaylists(context.Background(), "x", 10)
	require.Error(t, err)
	assert.Equal(t, apperr.KindDecode, apperr.KindOf(err))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := Init(srv.URL, time.Second, 20, WithRetry(1, 0))

	_, err := c.SearchArtists(context.Background(), "x", 10)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
	assert.Equal(t, "No internet connection", apperr.Message(err))
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(songsBody))
	})

	res, err := c.SearchSongs(context.Background(), "x", 1, 5)
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryGivesUpWithLastStatus(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.SearchSongs(context.Background(), "x", 1, 5)
	require.Error(t, err)
	assert.Equal(t, 502, apperr.StatusCode(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.SearchSongs(context.Background(), "x", 1, 5)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(songsBody))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.SearchSongs(ctx, "x", 1, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetAlbumNullData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a1", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`{"success": true, "data": null}`))
	})

	album, err := c.GetAlbum(context.Background(), "a1")
	require.NoError(t, err)
	assert.Nil(t, album)
}

func TestGetArtistSongsAcceptsBothShapes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "alphabetical", r.URL.Query().Get("category"))
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(`{"success": true, "data": {"total": 1, "songs": [{"id": "s1", "name": "One"}]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"success": true, "data": {"total": 1, "results": [{"id": "s2", "name": "Two"}]}}`))
	})

	res, err := c.GetArtistSongs(context.Background(), "ar1", 0)
	require.NoError(t, err)
	require.Len(t, res.Tracks(), 1)
	assert.Equal(t, "s1", res.Tracks()[0].ID)

	res, err = c.GetArtistSongs(context.Background(), "ar1", 2)
	require.NoError(t, err)
	require.Len(t, res.Tracks(), 1)
	assert.Equal(t, "s2", res.Tracks()[0].ID)
}

func TestParseRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, time.Duration(0), parseRetryAfter(resp))
	resp.Header.Set("Retry-After", "2")
	assert.Equal(t, 2*time.Second, parseRetryAfter(resp))
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ID3 fake audio"))
	}))
	defer srv.Close()
	c := Init(srv.URL, time.Second, 20)

	path, err := c.Download(context.Background(), srv.URL+"/song.mp3?token=1")
	require.NoError(t, err)
	defer os.Remove(path)

	assert.Contains(t, path, ".mp3")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID3 fake audio", string(data))
}
