// Command mdcrawler fetches web pages and renders them as Markdown, either
// once from the command line or as an HTTP service.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes the usage text, single-page
//     conversion (GET /{url} and POST /), breadth-first crawls (POST /crawl),
//     health probes and /metrics. Every response carries CORS headers and an
//     X-Request-ID.
//   - Fetch pipeline: each logical fetch draws a fresh browser fingerprint,
//     waits on the per-domain rate limiter and issues a Colly GET. 403, 429
//     and 503 responses and transport failures are retried with capped
//     exponential backoff.
//   - Conversion: pages are parsed with x/net/html, cleaned with goquery,
//     optionally narrowed to the main article with go-readability, and
//     rendered by internal/markdown with optional YAML front matter.
//   - Crawl: internal/crawler walks same-host links in FIFO order, visiting
//     batches of up to crawl.workers pages in parallel and keeping results in
//     fetch order. Cancellation returns the pages gathered so far.
//
// Subcommands:
//   - mdcrawler serve [--port N]
//   - mdcrawler convert <url> [conversion flags]
//   - mdcrawler crawl <url> [--limit N] [--depth N] [--follow-relative] [--out DIR]
//
// Configuration comes from an optional YAML file (--config) and environment
// overrides such as MDCRAWLER_SERVER_PORT or MDCRAWLER_CRAWL_WORKERS.
package main
