// Package crawler defines core types shared across subsystems.
package crawler

import (
	"net/http"
	"strings"
	"time"
)

// DefaultMaxHeadingLevel is the deepest heading rendered with # markers when
// a request does not say otherwise.
const DefaultMaxHeadingLevel = 6

// CleaningRules controls the pre-pass that strips nodes before conversion.
type CleaningRules struct {
	RemoveScripts      bool `json:"remove_scripts" mapstructure:"remove_scripts"`
	RemoveStyles       bool `json:"remove_styles" mapstructure:"remove_styles"`
	RemoveComments     bool `json:"remove_comments" mapstructure:"remove_comments"`
	PreserveLineBreaks bool `json:"preserve_line_breaks" mapstructure:"preserve_line_breaks"`
}

// ConvertConfig is the per-request conversion policy.
type ConvertConfig struct {
	IncludeLinks       bool          `json:"include_links" mapstructure:"include_links"`
	CleanWhitespace    bool          `json:"clean_whitespace" mapstructure:"clean_whitespace"`
	PreserveHeadings   bool          `json:"preserve_headings" mapstructure:"preserve_headings"`
	IncludeMetadata    bool          `json:"include_metadata" mapstructure:"include_metadata"`
	ExtractMainContent bool          `json:"extract_main_content" mapstructure:"extract_main_content"`
	MaxHeadingLevel    int           `json:"max_heading_level" mapstructure:"max_heading_level"`
	CleaningRules      CleaningRules `json:"cleaning_rules" mapstructure:"cleaning_rules"`
}

// DefaultConvertConfig returns every flag off with the default heading level.
func DefaultConvertConfig() ConvertConfig {
	return ConvertConfig{MaxHeadingLevel: DefaultMaxHeadingLevel}
}

// FullConvertConfig enables every option. It backs the GET /{url} shortcut.
func FullConvertConfig() ConvertConfig {
	return ConvertConfig{
		IncludeLinks:     true,
		CleanWhitespace:  true,
		PreserveHeadings: true,
		IncludeMetadata:  true,
		MaxHeadingLevel:  DefaultMaxHeadingLevel,
		CleaningRules: CleaningRules{
			RemoveScripts:      true,
			RemoveStyles:       true,
			RemoveComments:     true,
			PreserveLineBreaks: true,
		},
	}
}

// HeadingLevel returns MaxHeadingLevel clamped to 1..6, with 0 meaning default.
func (c ConvertConfig) HeadingLevel() int {
	switch {
	case c.MaxHeadingLevel <= 0:
		return DefaultMaxHeadingLevel
	case c.MaxHeadingLevel > 6:
		return 6
	default:
		return c.MaxHeadingLevel
	}
}

// ConvertRequest asks for a single page as Markdown.
type ConvertRequest struct {
	URL    string
	Config ConvertConfig
}

// CrawlRequest captures the parameters of one crawl.
type CrawlRequest struct {
	URL            string
	Limit          int
	MaxDepth       int
	FollowRelative bool
	Config         ConvertConfig
}

// FrontierEntry is one pending URL with its distance from the start page.
type FrontierEntry struct {
	URL   string
	Depth int
}

// FetchRequest captures everything needed for one HTTP attempt.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the raw result of one HTTP attempt.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// FetchOutcome is the successful result of a logical page fetch.
type FetchOutcome struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	Attempts    int
}

// Metadata is the front matter extracted from a page. Empty fields are omitted.
type Metadata struct {
	Title         string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	Author        string   `json:"author,omitempty" yaml:"author,omitempty"`
	Date          string   `json:"date,omitempty" yaml:"date,omitempty"`
	Keywords      []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Canonical     string   `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	OGTitle       string   `json:"og:title,omitempty" yaml:"og:title,omitempty"`
	OGDescription string   `json:"og:description,omitempty" yaml:"og:description,omitempty"`
	OGImage       string   `json:"og:image,omitempty" yaml:"og:image,omitempty"`
	OGURL         string   `json:"og:url,omitempty" yaml:"og:url,omitempty"`
	OGSiteName    string   `json:"og:site_name,omitempty" yaml:"og:site_name,omitempty"`
	OGType        string   `json:"og:type,omitempty" yaml:"og:type,omitempty"`
}

// IsEmpty reports whether no field was extracted.
func (m Metadata) IsEmpty() bool {
	return m.Title == "" && m.Description == "" && m.Author == "" && m.Date == "" &&
		len(m.Keywords) == 0 && len(m.Tags) == 0 && m.Canonical == "" &&
		m.OGTitle == "" && m.OGDescription == "" && m.OGImage == "" &&
		m.OGURL == "" && m.OGSiteName == "" && m.OGType == ""
}

// ConversionResult is the output of converting one page.
type ConversionResult struct {
	// Markdown is the full document, front matter included.
	Markdown string
	Metadata *Metadata
}

// Page is one successfully converted crawl result.
type Page struct {
	URL    string
	Depth  int
	Result ConversionResult
}

// PageSeparator joins page bodies in crawl output.
const PageSeparator = "\n\n---\n\n"

// CrawlResult holds the pages of a crawl in fetch order.
type CrawlResult struct {
	ID         string
	Pages      []Page
	StartedAt  time.Time
	FinishedAt time.Time
}

// Markdown joins the pages' Markdown with PageSeparator.
func (r CrawlResult) Markdown() string {
	parts := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		parts = append(parts, p.Result.Markdown)
	}
	return strings.Join(parts, PageSeparator)
}
