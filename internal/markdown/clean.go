package markdown

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/JakeFAU/mdcrawler/internal/crawler"
)

// clean strips the nodes the cleaning rules ask for. It mutates doc.
func clean(doc *html.Node, rules crawler.CleaningRules) {
	sel := goquery.NewDocumentFromNode(doc)
	if rules.RemoveScripts {
		sel.Find("script, noscript").Remove()
	}
	if rules.RemoveStyles {
		sel.Find(`style, link[rel="stylesheet"]`).Remove()
	}
	if rules.RemoveComments {
		removeComments(doc)
	}
}

func removeComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			removeComments(c)
		}
		c = next
	}
}
