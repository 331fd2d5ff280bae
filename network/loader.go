package network

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/chrisuehlinger/selectionkit/dom"
)

// Resource is loaded content with its resolved URL.
type Resource struct {
	URL         string
	ContentType string
	Content     []byte
}

// Text decodes the content to UTF-8 using the declared charset, a BOM or a
// <meta> declaration.
func (r *Resource) Text() (string, error) {
	rd, err := charset.NewReader(bytes.NewReader(r.Content), r.ContentType)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", r.URL, err)
	}
	b, err := io.ReadAll(rd)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", r.URL, err)
	}
	return string(b), nil
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger for load diagnostics.
func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.log = log
	}
}

// WithClient enables http and https URLs.
func WithClient(c *Client) LoaderOption {
	return func(l *Loader) {
		l.client = c
	}
}

// Loader resolves and reads resources.
type Loader struct {
	client *Client
	log    *zap.Logger
}

// NewLoader creates a loader. Without WithClient only files and data URLs
// can be loaded.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads ref resolved against base. A ref without a scheme and an empty
// base is a filesystem path.
func (l *Loader) Load(ctx context.Context, ref, base string) (*Resource, error) {
	if base == "" && !IsDataURL(ref) {
		if u, err := url.Parse(ref); err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
			fileURL, err := FileURL(ref)
			if err != nil {
				return nil, err
			}
			ref = fileURL
		}
	}
	resolved, err := ResolveURL(base, ref)
	if err != nil {
		return nil, err
	}
	if IsDataURL(resolved) {
		d, err := ParseDataURL(resolved)
		if err != nil {
			return nil, err
		}
		return &Resource{URL: resolved, ContentType: d.ContentType(), Content: d.Data}, nil
	}

	u, err := url.Parse(resolved)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", resolved, err)
	}
	switch u.Scheme {
	case "file":
		return l.loadFile(resolved, filepath.FromSlash(u.Path))
	case "http", "https":
		if l.client == nil {
			return nil, fmt.Errorf("load %s: network access is disabled", resolved)
		}
		l.log.Debug("fetching", zap.String("url", resolved))
		resp, err := l.client.Get(ctx, resolved)
		if err != nil {
			return nil, err
		}
		return &Resource{URL: resp.URL, ContentType: resp.ContentType, Content: resp.Body}, nil
	}
	return nil, fmt.Errorf("load %s: unsupported scheme %q", resolved, u.Scheme)
}

func (l *Loader) loadFile(urlStr, path string) (*Resource, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &Resource{URL: urlStr, ContentType: mime.TypeByExtension(filepath.Ext(path)), Content: content}, nil
}

// LoadDocument loads and parses the HTML document at ref. It returns the
// document's URL, which scripts in it resolve against.
func (l *Loader) LoadDocument(ctx context.Context, ref string) (*dom.Document, string, error) {
	res, err := l.Load(ctx, ref, "")
	if err != nil {
		return nil, "", err
	}
	if res.ContentType == "" {
		res.ContentType = "text/html"
	}
	src, err := res.Text()
	if err != nil {
		return nil, "", err
	}
	doc, err := dom.ParseHTML(src)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", res.URL, err)
	}
	l.log.Debug("document loaded", zap.String("url", res.URL), zap.Int("bytes", len(res.Content)))
	return doc, res.URL, nil
}

// Script is a classic script found in a document.
type Script struct {
	// Name identifies the script in error messages.
	Name   string
	Source string
}

// Scripts collects the document's classic scripts in tree order, loading
// external ones against base. Scripts that fail to load are logged and
// skipped.
func (l *Loader) Scripts(ctx context.Context, doc *dom.Document, base string) []Script {
	var scripts []Script
	inline := 0
	for n := doc.AsNode(); n != nil; n = dom.NextNode(dom.Authored, n, nil) {
		el := n.AsElement()
		if el == nil || el.LocalName() != "script" || !isClassicScript(el) {
			continue
		}
		src, ok := el.LookupAttribute("src")
		if !ok {
			inline++
			scripts = append(scripts, Script{Name: fmt.Sprintf("inline script %d", inline), Source: n.TextContent()})
			continue
		}
		res, err := l.Load(ctx, src, base)
		if err != nil {
			l.log.Warn("script not loaded", zap.String("src", src), zap.Error(err))
			continue
		}
		text, err := res.Text()
		if err != nil {
			l.log.Warn("script not decoded", zap.String("src", src), zap.Error(err))
			continue
		}
		scripts = append(scripts, Script{Name: res.URL, Source: text})
	}
	return scripts
}

func isClassicScript(el *dom.Element) bool {
	typ := strings.ToLower(strings.TrimSpace(el.GetAttribute("type")))
	switch typ {
	case "", "text/javascript", "application/javascript", "application/ecmascript", "text/ecmascript":
		return true
	}
	return false
}
