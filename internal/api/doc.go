// Package api hosts the HTTP server, middleware, and handlers of the
// HTML-to-Markdown service. Notable routes:
//   - GET /{http(s)://target} converts a page with every option enabled.
//   - POST / converts a page under a JSON ConvertConfig.
//   - POST /crawl runs a bounded crawl and returns the joined Markdown.
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
package api
