package markdown

import (
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/JakeFAU/mdcrawler/internal/crawler"
)

// extractMetadata reads the title, meta tags and canonical link of doc.
// Absent values stay empty.
func extractMetadata(doc *html.Node, base *url.URL) crawler.Metadata {
	var meta crawler.Metadata
	sel := goquery.NewDocumentFromNode(doc)

	meta.Title = collapse(sel.Find("title").First().Text())

	sel.Find("meta[content]").Each(func(_ int, s *goquery.Selection) {
		content := collapse(s.AttrOr("content", ""))
		if content == "" {
			return
		}
		key := strings.ToLower(strings.TrimSpace(s.AttrOr("property", "")))
		if key == "" {
			key = strings.ToLower(strings.TrimSpace(s.AttrOr("name", "")))
		}
		switch key {
		case "title":
			setOnce(&meta.Title, content)
		case "description":
			setOnce(&meta.Description, content)
		case "author", "article:author":
			setOnce(&meta.Author, content)
		case "article:published_time", "date":
			setOnce(&meta.Date, content)
		case "keywords":
			if len(meta.Keywords) == 0 {
				meta.Keywords = splitList(content)
			}
		case "article:tag":
			meta.Tags = appendUnique(meta.Tags, content)
		case "og:title":
			setOnce(&meta.OGTitle, content)
		case "og:description":
			setOnce(&meta.OGDescription, content)
		case "og:image":
			setOnce(&meta.OGImage, content)
		case "og:url":
			setOnce(&meta.OGURL, content)
		case "og:site_name":
			setOnce(&meta.OGSiteName, content)
		case "og:type":
			setOnce(&meta.OGType, content)
		}
	})

	sel.Find("link[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, rel := range strings.Fields(strings.ToLower(s.AttrOr("rel", ""))) {
			if rel != "canonical" {
				continue
			}
			meta.Canonical = resolveAgainst(base, strings.TrimSpace(s.AttrOr("href", "")))
			return false
		}
		return true
	})
	return meta
}

func setOnce(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// splitList splits a comma list, dropping blanks and repeats.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		out = appendUnique(out, strings.TrimSpace(part))
	}
	return out
}

func appendUnique(list []string, v string) []string {
	if v == "" || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

func resolveAgainst(base *url.URL, href string) string {
	if base == nil || href == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
