// Package markdown converts parsed HTML documents into Markdown.
package markdown

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JakeFAU/mdcrawler/internal/crawler"
)

// Converter implements crawler.Converter. It holds no per-call state and is
// safe for concurrent use.
type Converter struct {
	logger *zap.Logger
}

// New builds a Converter. A nil logger is replaced with a no-op logger.
func New(logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{logger: logger}
}

// Convert renders doc as Markdown under cfg. The tree is cleaned in place.
func (c *Converter) Convert(doc *html.Node, pageURL *url.URL, cfg crawler.ConvertConfig) crawler.ConversionResult {
	if doc == nil {
		return crawler.ConversionResult{}
	}
	base := crawler.BaseURL(doc, pageURL)

	var meta *crawler.Metadata
	if cfg.IncludeMetadata {
		m := extractMetadata(doc, base)
		meta = &m
	}

	clean(doc, cfg.CleaningRules)

	root := doc
	if cfg.ExtractMainContent {
		article, err := mainContent(doc, pageURL)
		if err != nil {
			c.logger.Debug("main content extraction fell back to full document", zap.Error(err))
		} else {
			root = article
		}
	}

	body := render(root, cfg, base)
	if meta == nil || meta.IsEmpty() {
		return crawler.ConversionResult{Markdown: body, Metadata: meta}
	}
	out, err := withFrontMatter(*meta, body)
	if err != nil {
		c.logger.Warn("front matter dropped", zap.Error(err))
		return crawler.ConversionResult{Markdown: body, Metadata: meta}
	}
	return crawler.ConversionResult{Markdown: out, Metadata: meta}
}

func render(root *html.Node, cfg crawler.ConvertConfig, base *url.URL) string {
	r := newRenderer(cfg, base)
	if body := findElement(root, atom.Body); body != nil {
		r.children(body)
	} else {
		r.node(root)
	}
	return strings.TrimSpace(collapseBlankLines(r.out.String()))
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
