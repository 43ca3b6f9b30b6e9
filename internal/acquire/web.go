// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/chromedp/chromedp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/ontoextract/internal/httputil"
)

// PageRenderer returns the HTML of a page after scripts have run.
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// WebClient fetches pages and reduces them to readable text.
type WebClient struct {
	Client    *http.Client
	UserAgent string

	// Renderer, when set, replaces the plain GET with a browser render.
	Renderer PageRenderer
}

// HTML returns the page markup decoded to UTF-8.
func (c *WebClient) HTML(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	if c.Renderer != nil {
		page, err := c.Renderer.Render(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", u, err)
		}
		return []byte(page), nil
	}

	body, contentType, err := httputil.GetBody(ctx, c.Client, u, c.UserAgent)
	if err != nil {
		return nil, err
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body, nil
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", u, err)
	}
	return decoded, nil
}

// Text fetches a page and returns its title and readable text in NFC form.
func (c *WebClient) Text(ctx context.Context, rawURL string) (string, error) {
	page, err := c.HTML(ctx, rawURL)
	if err != nil {
		return "", err
	}
	title, text := PageText(page)
	if title != "" {
		text = title + "\n\n" + text
	}
	return norm.NFC.String(text), nil
}

// WebPage is the Source for an arbitrary URL.
type WebPage struct {
	Client *WebClient
	URL    string
}

// Name implements Source.
func (*WebPage) Name() string { return "web" }

// Text implements Source.
func (w *WebPage) Text(ctx context.Context) (string, error) {
	return w.Client.Text(ctx, w.URL)
}

// PageText extracts the title and readable text of an HTML page, preferring
// <main> or <article> over <body> and skipping navigation and scripts.
func PageText(page []byte) (title, text string) {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil || root == nil {
		return "", ""
	}
	if head := findFirst(root, "head"); head != nil {
		if t := findFirst(head, "title"); t != nil && t.FirstChild != nil {
			title = strings.TrimSpace(t.FirstChild.Data)
		}
	}

	content := findFirst(root, "main")
	if content == nil {
		content = findFirst(root, "article")
	}
	if content == nil {
		content = findFirst(root, "body")
	}
	if content == nil {
		return title, ""
	}
	var b strings.Builder
	collectText(&b, content)
	return title, collapseBlankLines(b.String())
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool, out []*html.Node) []*html.Node {
	if n.Type == html.ElementNode && match(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = findAll(c, match, out)
	}
	return out
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "nav", "footer", "aside", "iframe", "svg":
			return
		case "br", "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "table":
			b.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		words := strings.Fields(n.Data)
		if len(words) > 0 && startsWithSpace(n.Data) && b.Len() > 0 && !endsWithSpace(b.String()) {
			b.WriteString(" ")
		}
		b.WriteString(strings.Join(words, " "))
		if len(words) > 0 && endsWithSpace(n.Data) {
			b.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr":
			b.WriteString("\n")
		}
	}
}

func startsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r", rune(s[0]))
}

func endsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r", rune(s[len(s)-1]))
}

var blankLines = regexp.MustCompile(`\n\s*\n+`)

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

// ChromeRenderer renders pages in a headless Chrome.
type ChromeRenderer struct{}

// Render implements PageRenderer.
func (ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var out string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &out, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp: %w", err)
	}
	return out, nil
}
