package entrypoint

import (
	"context"
	"io"
	"net/http"

	"github.com/yusing/envinject/internal/gperr"
	"github.com/yusing/envinject/internal/inject"
)

// Render fetches rawURL with client, runs the response through inj and
// copies the resulting body to w.
func Render(ctx context.Context, client *http.Client, inj *inject.Injector, rawURL string, w io.Writer) gperr.Error {
	fetch := func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept-Encoding", "identity")
		return client.Do(req)
	}

	resp, err := inj.Handle(ctx, fetch)
	if err != nil {
		return gperr.Wrap(err, "failed to fetch").Subject(rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return gperr.Errorf("unexpected status %s", resp.Status).Subject(rawURL)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return gperr.Wrap(err, "failed to read body").Subject(rawURL)
	}
	return nil
}
