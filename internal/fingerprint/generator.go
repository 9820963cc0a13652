// Package fingerprint generates randomized but internally consistent browser
// request headers.
package fingerprint

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Header is one request header in presentation order.
type Header struct {
	Name  string
	Value string
}

// Fingerprint is a self-consistent browser signature.
type Fingerprint struct {
	Browser   string
	Platform  string
	Mobile    bool
	Version   int
	UserAgent string
	Headers   []Header
}

// Get returns the first value of the named header.
func (f Fingerprint) Get(name string) string {
	key := http.CanonicalHeaderKey(name)
	for _, h := range f.Headers {
		if http.CanonicalHeaderKey(h.Name) == key {
			return h.Value
		}
	}
	return ""
}

// HTTPHeader converts the ordered headers into an http.Header.
func (f Fingerprint) HTTPHeader() http.Header {
	h := make(http.Header, len(f.Headers))
	for _, hdr := range f.Headers {
		h.Add(hdr.Name, hdr.Value)
	}
	return h
}

// Generator draws fingerprints from the curated pool. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a Generator over the given randomness source.
func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// NewSeeded builds a Generator seeded from the wall clock.
func NewSeeded() *Generator {
	seed := uint64(time.Now().UnixNano())
	return New(rand.New(rand.NewPCG(seed, seed>>1|1)))
}

// Generate picks a profile and fills every variable field independently.
func (g *Generator) Generate() Fingerprint {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := pool[g.rng.IntN(len(pool))]
	version := p.minVersion + g.rng.IntN(p.maxVersion-p.minVersion+1)
	osToken := p.osTokens[g.rng.IntN(len(p.osTokens))]
	lang := languages[g.rng.IntN(len(languages))]

	fp := Fingerprint{
		Browser:   p.browser,
		Platform:  p.platform,
		Mobile:    p.mobile,
		Version:   version,
		UserAgent: userAgent(p, osToken, version),
	}

	switch p.browser {
	case Chrome:
		fp.Headers = g.chromeHeaders(p, fp.UserAgent, version, lang)
	case Firefox:
		fp.Headers = firefoxHeaders(fp.UserAgent, lang)
	default:
		fp.Headers = safariHeaders(fp.UserAgent, lang)
	}
	return fp
}

func userAgent(p profile, osToken string, version int) string {
	switch p.browser {
	case Chrome:
		mobile := ""
		if p.mobile {
			mobile = "Mobile "
		}
		return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.0.0 %sSafari/537.36",
			osToken, version, mobile)
	case Firefox:
		return fmt.Sprintf("Mozilla/5.0 (%s; rv:%d.0) Gecko/20100101 Firefox/%d.0", osToken, version, version)
	default:
		if p.mobile {
			return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/%d.0 Mobile/15E148 Safari/604.1",
				osToken, version)
		}
		return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/%d.0 Safari/605.1.15",
			osToken, version)
	}
}

func (g *Generator) chromeHeaders(p profile, ua string, version int, lang string) []Header {
	mobile := "?0"
	if p.mobile {
		mobile = "?1"
	}
	brands := fmt.Sprintf(`"Google Chrome";v="%d", "Chromium";v="%d", "Not_A Brand";v="24"`, version, version)
	headers := []Header{
		{Name: "Sec-CH-UA", Value: brands},
		{Name: "Sec-CH-UA-Mobile", Value: mobile},
		{Name: "Sec-CH-UA-Platform", Value: strconv.Quote(p.platform)},
		{Name: "Upgrade-Insecure-Requests", Value: "1"},
		{Name: "User-Agent", Value: ua},
		{Name: "Accept", Value: acceptChrome},
		{Name: "Sec-Fetch-Site", Value: "none"},
		{Name: "Sec-Fetch-Mode", Value: "navigate"},
		{Name: "Sec-Fetch-User", Value: "?1"},
		{Name: "Sec-Fetch-Dest", Value: "document"},
		{Name: "Accept-Encoding", Value: acceptEncoding},
		{Name: "Accept-Language", Value: lang},
	}
	if !p.mobile {
		headers = append(headers,
			Header{Name: "Viewport-Width", Value: strconv.Itoa(viewportWidths[g.rng.IntN(len(viewportWidths))])},
			Header{Name: "Device-Memory", Value: strconv.Itoa(deviceMemory[g.rng.IntN(len(deviceMemory))])},
		)
	}
	return headers
}

func firefoxHeaders(ua, lang string) []Header {
	return []Header{
		{Name: "User-Agent", Value: ua},
		{Name: "Accept", Value: acceptFirefox},
		{Name: "Accept-Language", Value: lang},
		{Name: "Accept-Encoding", Value: acceptEncoding},
		{Name: "Upgrade-Insecure-Requests", Value: "1"},
		{Name: "Sec-Fetch-Dest", Value: "document"},
		{Name: "Sec-Fetch-Mode", Value: "navigate"},
		{Name: "Sec-Fetch-Site", Value: "none"},
		{Name: "Sec-Fetch-User", Value: "?1"},
	}
}

func safariHeaders(ua, lang string) []Header {
	return []Header{
		{Name: "Accept", Value: acceptSafari},
		{Name: "Sec-Fetch-Site", Value: "none"},
		{Name: "Sec-Fetch-Mode", Value: "navigate"},
		{Name: "Sec-Fetch-Dest", Value: "document"},
		{Name: "User-Agent", Value: ua},
		{Name: "Accept-Language", Value: lang},
		{Name: "Upgrade-Insecure-Requests", Value: "1"},
		{Name: "Accept-Encoding", Value: acceptEncoding},
	}
}
