package httpds

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

/* TestOrigin_Open fetches a named file relative to the base URL. */
func TestOrigin_Open(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gem/GEM-GII.csv" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "payload")
	}))
	defer srv.Close()

	o := NewOrigin(srv.URL+"/gem", nil)
	rc, err := o.Open(context.Background(), "GEM-GII.csv")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	b, _ := io.ReadAll(rc)
	if string(b) != "payload" {
		t.Fatalf("body = %q", b)
	}

	if _, err := o.Open(context.Background(), "absent.csv"); err == nil {
		t.Fatalf("expected error for 404")
	}
}
