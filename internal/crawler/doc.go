// Package crawler holds the shared types of the HTML-to-Markdown service and
// the orchestrator that composes a Fetcher and a Converter into single-page
// conversions and bounded breadth-first crawls.
package crawler
