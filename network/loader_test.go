package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<div id="a">served</div><script src="app.js"></script><script>var inline = 1;</script>`))
	})
	mux.HandleFunc("/app.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript")
		w.Write([]byte("var app = 1;"))
	})
	mux.HandleFunc("/latin1.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<p id=\"p\">caf\xe9</p>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return NewLoader(WithClient(client))
}

func TestLoadDocumentHTTP(t *testing.T) {
	srv := newTestServer(t)
	l := newTestLoader(t)

	doc, base, err := l.LoadDocument(context.Background(), srv.URL+"/page.html")
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if base != srv.URL+"/page.html" {
		t.Errorf("Expected base %q, got %q", srv.URL+"/page.html", base)
	}
	if got := doc.GetElementByID("a").AsNode().TextContent(); got != "served" {
		t.Errorf("Expected %q, got %q", "served", got)
	}

	want := []Script{
		{Name: srv.URL + "/app.js", Source: "var app = 1;"},
		{Name: "inline script 1", Source: "var inline = 1;"},
	}
	if diff := cmp.Diff(want, l.Scripts(context.Background(), doc, base)); diff != "" {
		t.Errorf("scripts mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDocumentDecodesCharset(t *testing.T) {
	srv := newTestServer(t)
	doc, _, err := newTestLoader(t).LoadDocument(context.Background(), srv.URL+"/latin1.html")
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if got := doc.GetElementByID("p").AsNode().TextContent(); got != "café" {
		t.Errorf("Expected %q, got %q", "café", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte(`<p id="p">local</p><script src="lib/x.js"></script><script type="module">skip()</script>`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lib", "x.js"), []byte("var x = 2;"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	doc, base, err := l.LoadDocument(context.Background(), page)
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if !strings.HasPrefix(base, "file://") {
		t.Errorf("Expected a file URL, got %q", base)
	}
	scripts := l.Scripts(context.Background(), doc, base)
	if len(scripts) != 1 || scripts[0].Source != "var x = 2;" {
		t.Errorf("Expected only the external classic script, got %+v", scripts)
	}
}

func TestLoadErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		loader *Loader
		ref    string
		want   string
	}{
		{"missing file", NewLoader(), filepath.Join(t.TempDir(), "absent.html"), "read "},
		{"network disabled", NewLoader(), srv.URL + "/page.html", "network access is disabled"},
		{"not found", newTestLoader(t), srv.URL + "/absent", "404"},
		{"unsupported scheme", NewLoader(), "ftp://example.com/x", "unsupported scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.loader.Load(context.Background(), tt.ref, "")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadDataURL(t *testing.T) {
	doc, _, err := NewLoader().LoadDocument(context.Background(), "data:text/html,<b id=b>inline</b>")
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if got := doc.GetElementByID("b").AsNode().TextContent(); got != "inline" {
		t.Errorf("Expected %q, got %q", "inline", got)
	}
}
