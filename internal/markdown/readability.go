package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// mainContent returns the article body readability finds in doc.
func mainContent(doc *html.Node, pageURL *url.URL) (*html.Node, error) {
	if pageURL == nil {
		pageURL = &url.URL{}
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	article, err := readability.FromReader(&buf, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract main content: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, errors.New("extract main content: no article found")
	}
	node, err := html.Parse(strings.NewReader(article.Content))
	if err != nil {
		return nil, fmt.Errorf("parse article: %w", err)
	}
	return node, nil
}
