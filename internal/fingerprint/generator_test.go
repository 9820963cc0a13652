package fingerprint

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed+1)))
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	t.Parallel()

	a, b := seeded(42), seeded(42)
	for i := 0; i < 20; i++ {
		require.Equal(t, a.Generate(), b.Generate())
	}
}

func TestGenerateCoversPool(t *testing.T) {
	t.Parallel()

	gen := seeded(7)
	browsers := map[string]bool{}
	agents := map[string]bool{}
	for i := 0; i < 300; i++ {
		fp := gen.Generate()
		browsers[fp.Browser] = true
		agents[fp.UserAgent] = true
	}
	require.True(t, browsers[Chrome])
	require.True(t, browsers[Firefox])
	require.True(t, browsers[Safari])
	require.Greater(t, len(agents), 10)
}

func TestGenerateHeadersAreConsistent(t *testing.T) {
	t.Parallel()

	gen := seeded(99)
	for i := 0; i < 500; i++ {
		fp := gen.Generate()

		for _, name := range []string{"User-Agent", "Accept", "Accept-Language", "Accept-Encoding"} {
			require.NotEmpty(t, fp.Get(name), "%s missing for %s/%s", name, fp.Browser, fp.Platform)
		}
		require.Equal(t, fp.UserAgent, fp.Get("User-Agent"))
		require.Equal(t, "gzip, deflate, br", fp.Get("Accept-Encoding"))
		require.Equal(t, fp.Mobile, strings.Contains(fp.UserAgent, "Mobile"), fp.UserAgent)

		hasClientHints := false
		for _, h := range fp.Headers {
			if strings.HasPrefix(strings.ToLower(h.Name), "sec-ch-ua") {
				hasClientHints = true
			}
		}
		if fp.Browser != Chrome {
			require.False(t, hasClientHints, "%s must not send client hints", fp.Browser)
			continue
		}

		require.True(t, hasClientHints)
		require.Contains(t, fp.Get("Sec-CH-UA"), `"Google Chrome"`)
		require.Equal(t, `"`+fp.Platform+`"`, fp.Get("Sec-CH-UA-Platform"))
		if fp.Mobile {
			require.Equal(t, "?1", fp.Get("Sec-CH-UA-Mobile"))
			require.Empty(t, fp.Get("Viewport-Width"))
			require.Empty(t, fp.Get("Device-Memory"))
		} else {
			require.Equal(t, "?0", fp.Get("Sec-CH-UA-Mobile"))
			require.NotEmpty(t, fp.Get("Viewport-Width"))
		}
	}
}

func TestHTTPHeaderKeepsValues(t *testing.T) {
	t.Parallel()

	fp := seeded(3).Generate()
	h := fp.HTTPHeader()
	require.Len(t, h, len(fp.Headers))
	for _, hdr := range fp.Headers {
		require.Equal(t, hdr.Value, h.Get(hdr.Name))
	}
}

func TestNewSeededGenerates(t *testing.T) {
	t.Parallel()

	fp := NewSeeded().Generate()
	require.NotEmpty(t, fp.UserAgent)
	require.NotEmpty(t, fp.Headers)
}
