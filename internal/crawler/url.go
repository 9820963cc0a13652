package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL standardizes a URL to avoid duplicates.
// It lowercases the scheme and host, removes default ports, and sorts query parameters.
// It also removes fragments.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", rawURL)
	}
	return normalize(u), nil
}

func normalize(u *url.URL) string {
	n := *u
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)

	if n.Scheme == "http" && strings.HasSuffix(n.Host, ":80") {
		n.Host = strings.TrimSuffix(n.Host, ":80")
	}
	if n.Scheme == "https" && strings.HasSuffix(n.Host, ":443") {
		n.Host = strings.TrimSuffix(n.Host, ":443")
	}

	n.Fragment = ""
	n.RawFragment = ""

	if n.RawQuery != "" {
		n.RawQuery = n.Query().Encode()
	}
	if n.Path == "" {
		n.Path = "/"
	}
	return n.String()
}

// ValidateTargetURL checks that raw is an absolute http(s) URL.
func ValidateTargetURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %w", ErrInvalidRequest, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: url must use http or https", ErrInvalidRequest)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: url must include a host", ErrInvalidRequest)
	}
	return u, nil
}

func sameHost(a, b *url.URL) bool {
	return strings.EqualFold(a.Hostname(), b.Hostname())
}
