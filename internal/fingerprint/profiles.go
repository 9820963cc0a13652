package fingerprint

// Browser families in the pool.
const (
	Chrome  = "Chrome"
	Firefox = "Firefox"
	Safari  = "Safari"
)

type profile struct {
	browser    string
	platform   string // Sec-CH-UA-Platform value and UA platform family.
	mobile     bool
	minVersion int
	maxVersion int
	osTokens   []string
}

// pool lists the supported browser/OS combinations. Versions are drawn from
// [minVersion, maxVersion].
var pool = []profile{
	{
		browser: Chrome, platform: "Windows", minVersion: 118, maxVersion: 131,
		osTokens: []string{"Windows NT 10.0; Win64; x64"},
	},
	{
		browser: Chrome, platform: "macOS", minVersion: 118, maxVersion: 131,
		osTokens: []string{"Macintosh; Intel Mac OS X 10_15_7"},
	},
	{
		browser: Chrome, platform: "Android", mobile: true, minVersion: 118, maxVersion: 131,
		osTokens: []string{"Linux; Android 13; Pixel 7", "Linux; Android 14; SM-S911B", "Linux; Android 14; Pixel 8"},
	},
	{
		browser: Firefox, platform: "Windows", minVersion: 115, maxVersion: 133,
		osTokens: []string{"Windows NT 10.0; Win64; x64"},
	},
	{
		browser: Firefox, platform: "macOS", minVersion: 115, maxVersion: 133,
		osTokens: []string{"Macintosh; Intel Mac OS X 10.15", "Macintosh; Intel Mac OS X 14.1"},
	},
	{
		browser: Safari, platform: "macOS", minVersion: 16, maxVersion: 18,
		osTokens: []string{"Macintosh; Intel Mac OS X 10_15_7", "Macintosh; Intel Mac OS X 14_1"},
	},
	{
		browser: Safari, platform: "iOS", mobile: true, minVersion: 16, maxVersion: 18,
		osTokens: []string{"iPhone; CPU iPhone OS 17_1 like Mac OS X", "iPhone; CPU iPhone OS 16_6 like Mac OS X"},
	},
}

var languages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9",
	"en-US,en;q=0.8,fr;q=0.6",
	"de-DE,de;q=0.9,en;q=0.8",
	"fr-FR,fr;q=0.9,en;q=0.8",
	"es-ES,es;q=0.9,en;q=0.8",
	"ja-JP,ja;q=0.9,en;q=0.8",
}

var viewportWidths = []int{1920, 1366, 1536, 1440, 1280}

var deviceMemory = []int{4, 8, 16}

const (
	acceptChrome  = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
	acceptFirefox = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	acceptSafari  = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	acceptEncoding = "gzip, deflate, br"
)
