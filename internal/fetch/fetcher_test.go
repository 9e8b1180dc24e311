package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// allowAll bypasses URL validation so tests can hit loopback servers.
func allowAll(string) error { return nil }

func TestFetch_Basic(t *testing.T) {
	// WHAT: A 200 response body is returned as-is.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
			t.Errorf("user agent: got %q, want browser-like", ua)
		}
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	f := New(Config{URLValidator: allowAll})
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(string(body), "hello") {
		t.Errorf("body: got %q", body)
	}
}

func TestFetch_HTTPErrorIsSoft(t *testing.T) {
	// WHAT: 403 yields an error, not a body.
	// WHY: Callers degrade to the rendered tier on any fetch error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := New(Config{URLValidator: allowAll})
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestFetch_MaxBytes(t *testing.T) {
	// WHAT: Bodies are truncated at MaxBytes.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	f := New(Config{MaxBytes: 100, URLValidator: allowAll})
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(body) != 100 {
		t.Errorf("body length: got %d, want 100", len(body))
	}
}

func TestValidateURL(t *testing.T) {
	// WHAT: Scheme and host literal checks.
	cases := []struct {
		url string
		ok  bool
	}{
		{"https://example.com/article", true},
		{"http://example.com", true},
		{"ftp://example.com", false},
		{"file:///etc/passwd", false},
		{"http://localhost/x", false},
		{"http://127.0.0.1/x", false},
		{"http://192.168.1.4/x", false},
		{"http://169.254.1.1/x", false},
		{"https://", false},
	}
	for _, c := range cases {
		err := ValidateURL(c.url)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected reject: %v", c.url, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected reject", c.url)
		}
	}
}
