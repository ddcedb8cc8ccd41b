package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Origin is an HTTP data source rooted at a base URL. Open fetches
// base + name with the client's retry policy.
type Origin struct {
	base   string
	client *Client
}

// NewOrigin returns an Origin using client, or a default client when nil.
func NewOrigin(base string, client *Client) *Origin {
	if client == nil {
		client = NewClient(Config{})
	}
	return &Origin{base: strings.TrimSuffix(base, "/") + "/", client: client}
}

// Open fetches one named file from the origin. Any status other than 200
// after retries is an error; the caller must close the returned body.
func (o *Origin) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	url := o.base + name
	resp, err := o.client.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpds: fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("httpds: fetch %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}
