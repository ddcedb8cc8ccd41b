package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"gem/internal/config"
	"gem/internal/datasource/httpds"
)

// ErrUnknownLocation reports that the catalog does not know the dataset's
// country. Callers skip the country and continue the batch.
var ErrUnknownLocation = errors.New("catalog: unknown location")

// Client publishes datasets to the catalog API.
type Client struct {
	base   string
	apiKey string
	http   *httpds.Client
	dryRun bool
}

// NewClient builds a Client from the run's catalog block. An api_key of the
// form "env:VARNAME" is resolved from the environment. hc may be nil for a
// default retrying client.
func NewClient(cfg config.Catalog, hc *httpds.Client) (*Client, error) {
	key := cfg.APIKey
	if v, ok := strings.CutPrefix(key, "env:"); ok {
		key = os.Getenv(v)
		if key == "" && !cfg.DryRun {
			return nil, fmt.Errorf("catalog: api key env %s is empty", v)
		}
	}
	if hc == nil {
		hc = httpds.NewClient(httpds.Config{})
	}
	return &Client{
		base:   strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey: key,
		http:   hc,
		dryRun: cfg.DryRun,
	}, nil
}

// Upsert creates or updates one dataset and uploads its resource files.
// A location the catalog does not recognize returns ErrUnknownLocation.
// In dry-run mode the payload is built and logged but nothing is sent.
func (c *Client) Upsert(ctx context.Context, ds Dataset) error {
	body, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("catalog: marshal dataset %s: %w", ds.Name, err)
	}

	if c.dryRun {
		log.Printf("catalog: dry-run dataset=%s resources=%d bytes=%d", ds.Name, len(ds.Resources), len(body))
		return nil
	}

	hdr := http.Header{
		"Content-Type":  []string{"application/json"},
		"Authorization": []string{"Bearer " + c.apiKey},
	}
	resp, err := c.http.Post(ctx, c.base+"/api/datasets", body, hdr)
	if err != nil {
		return fmt.Errorf("catalog: upsert %s: %w", ds.Name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrUnknownLocation, ds.Location)
	case resp.StatusCode >= 300:
		return fmt.Errorf("catalog: upsert %s: status %d", ds.Name, resp.StatusCode)
	}

	for _, r := range ds.Resources {
		if err := c.uploadResource(ctx, ds.Name, r); err != nil {
			return err
		}
	}
	return nil
}

// uploadResource sends one file's bytes to the dataset's resource slot.
func (c *Client) uploadResource(ctx context.Context, dataset string, r Resource) error {
	b, err := os.ReadFile(r.Path)
	if err != nil {
		return fmt.Errorf("catalog: read resource %s: %w", r.Name, err)
	}

	contentType := "text/csv"
	if r.Format == "geojson" {
		contentType = "application/geo+json"
	}
	hdr := http.Header{
		"Content-Type":  []string{contentType},
		"Authorization": []string{"Bearer " + c.apiKey},
	}
	u := fmt.Sprintf("%s/api/datasets/%s/resources/%s", c.base, url.PathEscape(dataset), url.PathEscape(r.Name))
	resp, err := c.http.Post(ctx, u, b, hdr)
	if err != nil {
		return fmt.Errorf("catalog: upload %s: %w", r.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("catalog: upload %s: status %d", r.Name, resp.StatusCode)
	}
	return nil
}
