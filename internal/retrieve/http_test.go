package retrieve_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shpitdev/gym-hunter/internal/retrieve"
)

const samplePage = `<!doctype html>
<html>
<head><title>Local Fit Studio</title><style>body { color: red; }</style></head>
<body>
  <script>window.tracking = "should not appear";</script>
  <h1>Local   Fit Studio</h1>
  <p>24-hour unmanned gym.</p>
  <p>Staff wanted!</p>
  <noscript>enable javascript</noscript>
</body>
</html>`

func TestHTTPRenderer_ExtractsBodyText(t *testing.T) {
	t.Parallel()

	gotUA := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA <- r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	h := retrieve.HTTPRenderer{UserAgent: "gym-hunter-test"}
	text, err := h.Render(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Local Fit Studio\n24-hour unmanned gym.\nStaff wanted!"
	if text != want {
		t.Fatalf("unexpected text:\n--- got ---\n%s\n--- want ---\n%s", text, want)
	}
	if ua := <-gotUA; ua != "gym-hunter-test" {
		t.Fatalf("unexpected user agent %q", ua)
	}
}

func TestHTTPRenderer_Non2xxFails(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := retrieve.HTTPRenderer{}.Render(context.Background(), ts.URL)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestHTTPRenderer_InvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := (retrieve.HTTPRenderer{}).Render(context.Background(), "not a url"); err == nil {
		t.Fatalf("expected error for invalid url")
	}
}

func TestRetrieverWithHTTPRenderer(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	r := retrieve.New(retrieve.HTTPRenderer{}, retrieve.Options{}, discardLogger())
	if got := r.Fetch(context.Background(), ts.URL); !strings.Contains(got, "24-hour unmanned") {
		t.Fatalf("unexpected text: %q", got)
	}
}
