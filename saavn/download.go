package saavn

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/yhkl-dev/SaavnCLI/apperr"
)

// Download fetches a stream URL into a temp file and returns its path. The
// caller removes the file when done with it.
func (c *Client) Download(ctx context.Context, streamURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "saavn download: build request")
	}
	// streams can be far larger than an API response, so skip the client timeout
	hc := &http.Client{Transport: c.HttpClient.Transport}
	resp, err := hc.Do(req)
	if err != nil {
		return "", apperr.Network("download", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.API("download", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp("", "saavncli-*"+streamExt(streamURL))
	if err != nil {
		return "", errors.Wrap(err, "saavn download: create temp file")
	}
	if _, err = io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return "", apperr.Network("download", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return "", errors.Wrap(err, "saavn download: close temp file")
	}
	return tmpFile.Name(), nil
}

func streamExt(streamURL string) string {
	p := streamURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(path.Ext(p))
}
