package uistatic

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerServesIndexForUnknownPaths(t *testing.T) {
	h := Handler()
	for _, path := range []string{"/", "/history/anything"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Book Inventory Query Assistant") {
			t.Fatalf("GET %s did not serve index.html", path)
		}
	}
}

func TestHandlerServesAssets(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "/v1/ask") {
		t.Fatal("app.js missing ask call")
	}
}

func TestHandlerSetsCacheHeaders(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/", want: indexCacheControl},
		{path: "/index.html", want: indexCacheControl},
		{path: "/sessions/abc", want: indexCacheControl},
		{path: "/app.js", want: assetCacheControl},
		{path: "/app.css", want: assetCacheControl},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", tt.path, rr.Code)
		}
		if got := rr.Header().Get("Cache-Control"); got != tt.want {
			t.Fatalf("GET %s Cache-Control = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIndexLoadsAppAssets(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rr.Body.String()
	for _, asset := range []string{"app.js", "app.css"} {
		if !strings.Contains(body, asset) {
			t.Fatalf("index.html does not reference %s", asset)
		}
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("Content-Type = %q", rr.Header().Get("Content-Type"))
	}
}
