package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultMaxURLLength bounds the links a crawl will follow.
const DefaultMaxURLLength = 512

type linkRules struct {
	start          *url.URL
	followRelative bool
	maxURLLength   int
}

// BaseURL returns the document's <base href> resolved against pageURL, or
// pageURL when there is none.
func BaseURL(doc *html.Node, pageURL *url.URL) *url.URL {
	if doc == nil || pageURL == nil {
		return pageURL
	}
	href, ok := goquery.NewDocumentFromNode(doc).Find("base[href]").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return pageURL
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return pageURL
	}
	return pageURL.ResolveReference(ref)
}

// extractLinks returns the normalized, eligible links of doc in document
// order without duplicates.
func extractLinks(doc *html.Node, pageURL *url.URL, rules linkRules) []string {
	if doc == nil || pageURL == nil {
		return nil
	}
	base := BaseURL(doc, pageURL)
	seen := make(map[string]struct{})
	var links []string
	goquery.NewDocumentFromNode(doc).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link, ok := rules.resolve(base, href)
		if !ok {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links
}

func (r linkRules) resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	absolute := ref.IsAbs() || ref.Host != ""
	if !absolute && !r.followRelative {
		return "", false
	}
	target := base.ResolveReference(ref)
	if target.Scheme != "http" && target.Scheme != "https" {
		return "", false
	}
	if r.start != nil && !sameHost(target, r.start) {
		return "", false
	}
	link := normalize(target)
	if r.maxURLLength > 0 && len(link) > r.maxURLLength {
		return "", false
	}
	return link, true
}
