package rows

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultSourceURL is the latest ranked map table release
const DefaultSourceURL = "https://github.com/rakkyo150/RankedMapData/releases/latest/download/outcome.csv"

// Open returns a reader over the row table at location, which is either an
// http(s) URL or a local file path. A non-empty token is sent as a bearer
// token on remote requests.
func Open(ctx context.Context, location, token string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("error opening row table: %w", err)
		}
		return f, nil
	}
	return Fetch(ctx, location, token)
}

// Fetch downloads the row table over HTTP
func Fetch(ctx context.Context, url, token string) (io.ReadCloser, error) {
	client := http.DefaultClient
	if token != "" {
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading row table: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("error downloading row table: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
