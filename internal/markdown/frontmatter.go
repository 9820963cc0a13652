package markdown

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/JakeFAU/mdcrawler/internal/crawler"
)

// withFrontMatter prefixes body with meta as a YAML block delimited by ---.
func withFrontMatter(meta crawler.Metadata, body string) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	out := "---\n" + buf.String() + "---"
	if body != "" {
		out += "\n\n" + body
	}
	return out, nil
}
